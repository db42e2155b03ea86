package entry

// Package entry renders a fetched record, with or without a mutation, into
// the text and FASTA blocks that make up the collected list.

import (
	"fmt"
	"strings"

	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/fasta"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/uniprot"
)

// WildType is the tag used when no mutation was applied.
const WildType = "[WT]"

// Entry is one collected item. Text identifies the entry in the list.
type Entry struct {
	Label string `json:"label"`
	Text  string `json:"text"`
	FASTA string `json:"fasta"`
}

// Tag returns "[WT]" for an empty code, else the code in brackets.
func Tag(code string) string {
	if code == "" {
		return WildType
	}
	return "[" + code + "]"
}

// Comment is the one-line description placed above the quoted sequence.
func Comment(rec *uniprot.Record, code string) string {
	return fmt.Sprintf("# UniProt %s %s - %s (%s)", rec.Accession, Tag(code), rec.FullName, rec.ScientificName)
}

// Text is the comment line followed by the quoted sequence.
func Text(rec *uniprot.Record, seq, code string) string {
	return Comment(rec, code) + "\n\"" + seq + "\""
}

// Header is the FASTA header without the leading '>'.
func Header(rec *uniprot.Record, code string) string {
	return strings.Join([]string{rec.GeneName(), rec.DisplayOrganism(), rec.Accession, Tag(code)}, "|")
}

// FASTA returns the FASTA block for seq, wrapped at fasta.Width.
func FASTA(rec *uniprot.Record, seq, code string) string {
	return fasta.Format(Header(rec, code), seq)
}

// Label orders organism first and the mutation tag last.
func Label(rec *uniprot.Record, code string) string {
	return fmt.Sprintf("%s, %s, %s", rec.DisplayOrganism(), rec.GeneName(), Tag(code))
}

// New builds all three blocks. seq is the sequence actually collected,
// which differs from rec.Sequence when code applied.
func New(rec *uniprot.Record, seq, code string) Entry {
	return Entry{
		Label: Label(rec, code),
		Text:  Text(rec, seq, code),
		FASTA: FASTA(rec, seq, code),
	}
}

// SequencesListing renders the text blocks as a pasteable list literal.
func SequencesListing(entries []Entry) string {
	items := make([]string, len(entries))
	for i, e := range entries {
		items[i] = e.Text
	}
	return listing("sequences", items)
}

// LabelsListing renders the labels as a pasteable list literal.
func LabelsListing(entries []Entry) string {
	items := make([]string, len(entries))
	for i, e := range entries {
		items[i] = `"` + e.Label + `"`
	}
	return listing("labels", items)
}

func listing(name string, items []string) string {
	return name + " = [\n    " + strings.Join(items, ",\n    ") + "\n]"
}

// JoinFASTA concatenates FASTA blocks one after another.
func JoinFASTA(entries []Entry) string {
	blocks := make([]string, len(entries))
	for i, e := range entries {
		blocks[i] = e.FASTA
	}
	return strings.Join(blocks, "\n")
}
