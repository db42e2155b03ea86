package mutation

// Package mutation parses single-residue mutation codes such as P30R or
// P30TER and applies them to protein sequences.

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Termination is the replacement value that truncates the sequence.
const Termination = "TER"

var codePattern = regexp.MustCompile(`^([A-Z])(\d+)([A-Z]{1,3})$`)

var (
	ErrInvalidFormat = errors.New("invalid mutation format, use a code like P30R or P30TER")
	ErrOutOfRange    = errors.New("position out of range")
	ErrMismatch      = errors.New("original amino acid mismatch")
)

// RangeError reports a position that falls outside the sequence.
type RangeError struct {
	Position int
	Length   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("position out of range: sequence length is %d", e.Length)
}

func (e *RangeError) Is(target error) bool { return target == ErrOutOfRange }

// MismatchError reports a code whose original residue differs from the
// sequence. Position is 1-based.
type MismatchError struct {
	Expected byte
	Found    byte
	Position int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("original amino acid mismatch: expected %c but found %c at position %d", e.Expected, e.Found, e.Position)
}

func (e *MismatchError) Is(target error) bool { return target == ErrMismatch }

// Code is a parsed mutation code.
type Code struct {
	Original    byte
	Position    int
	Replacement string
}

// Parse validates the text of a mutation code. It checks the grammar only;
// whether the code fits a sequence is decided by Apply.
func Parse(code string) (Code, error) {
	m := codePattern.FindStringSubmatch(code)
	if m == nil {
		return Code{}, fmt.Errorf("%q: %w", code, ErrInvalidFormat)
	}
	if len(m[3]) > 1 && m[3] != Termination {
		return Code{}, fmt.Errorf("%q: %w", code, ErrInvalidFormat)
	}
	pos, err := strconv.Atoi(m[2])
	if err != nil {
		// only reachable on overflow, the pattern guarantees digits
		return Code{}, &RangeError{Position: -1, Length: -1}
	}
	return Code{Original: m[1][0], Position: pos, Replacement: m[3]}, nil
}

func (c Code) String() string {
	return fmt.Sprintf("%c%d%s", c.Original, c.Position, c.Replacement)
}

// Index is the 0-based offset of the edited residue.
func (c Code) Index() int { return c.Position - 1 }

func (c Code) IsTermination() bool { return c.Replacement == Termination }

// Apply returns a new sequence with the code applied. A termination keeps
// everything strictly before the edited position.
func (c Code) Apply(sequence string) (string, error) {
	idx := c.Index()
	if idx < 0 || idx >= len(sequence) {
		return "", &RangeError{Position: c.Position, Length: len(sequence)}
	}
	if sequence[idx] != c.Original {
		return "", &MismatchError{Expected: c.Original, Found: sequence[idx], Position: c.Position}
	}
	if c.IsTermination() {
		return sequence[:idx], nil
	}
	return sequence[:idx] + c.Replacement + sequence[idx+1:], nil
}

// Apply parses code and applies it to sequence.
func Apply(sequence, code string) (string, error) {
	c, err := Parse(code)
	if err != nil {
		var re *RangeError
		if errors.As(err, &re) {
			re.Length = len(sequence)
		}
		return "", err
	}
	return c.Apply(sequence)
}
