package fasta

// Package fasta reads and writes the FASTA records exported by the
// collector. Writing goes through biogo so line wrapping matches other
// FASTA tooling.

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/biogo/biogo/alphabet"
	biofasta "github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Width is the number of residues per sequence line.
const Width = 60

// maxLine bounds a single line; titin-sized proteins fit unwrapped.
const maxLine = 1 << 20

// Record represents a single FASTA record (header and sequence).
type Record struct {
	Header   string
	Sequence string
}

// Parse reads FASTA records from r. Lines beginning with '>' denote headers;
// sequence lines are concatenated. Blank lines and text before the first
// header are ignored.
func Parse(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	var (
		records []Record
		current *Record
		seq     strings.Builder
	)
	flush := func() {
		if current != nil {
			current.Sequence = seq.String()
			records = append(records, *current)
		}
		seq.Reset()
	}
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, ">") {
			flush()
			current = &Record{Header: line[1:]}
			continue
		}
		if current == nil {
			continue
		}
		seq.WriteString(strings.TrimSpace(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return records, nil
}

// Write writes a single record with the sequence wrapped at Width.
func Write(w io.Writer, header, sequence string) error {
	if len(sequence) == 0 {
		_, err := io.WriteString(w, ">"+header+"\n")
		return err
	}
	s := linear.NewSeq(header, alphabet.BytesToLetters([]byte(sequence)), alphabet.Protein)
	_, err := biofasta.NewWriter(w, Width).Write(s)
	return err
}

// Format returns the record as text, without a trailing newline.
func Format(header, sequence string) string {
	var buf bytes.Buffer
	// writes to a bytes.Buffer do not fail
	_ = Write(&buf, header, sequence)
	return strings.TrimRight(buf.String(), "\n")
}
