package preview

// Package preview splits an original and an edited sequence around the
// mutated residue so front ends can highlight it.

import "github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/mutation"

// StopMarker is drawn after a truncated sequence.
const StopMarker = "■"

// Segments is a sequence cut around one position. At is empty and Stop is
// set when the sequence was truncated there.
type Segments struct {
	Before string
	At     string
	After  string
	Stop   bool
}

// Diff pairs a sequence with its edited form.
type Diff struct {
	Code     mutation.Code
	original string
	mutated  string
}

// New assumes mutated is the result of code applied to original.
func New(original, mutated string, code mutation.Code) Diff {
	return Diff{Code: code, original: original, mutated: mutated}
}

func (d Diff) Original() Segments { return split(d.original, d.Code.Index()) }

func (d Diff) Mutated() Segments {
	if d.Code.IsTermination() {
		return Segments{Before: d.mutated, Stop: true}
	}
	return split(d.mutated, d.Code.Index())
}

func split(s string, idx int) Segments {
	if idx < 0 || idx >= len(s) {
		return Segments{Before: s}
	}
	return Segments{Before: s[:idx], At: s[idx : idx+1], After: s[idx+1:]}
}
