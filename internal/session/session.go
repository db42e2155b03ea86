package session

// Package session holds the state behind the interactive front ends: the
// current record, the current mutation and the collected entries.

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/entry"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/mutation"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/preview"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/uniprot"
)

var (
	ErrNoRecord  = errors.New("no record fetched yet")
	ErrDuplicate = errors.New("sequence is already in the list")
	ErrEmpty     = errors.New("no sequences collected")
)

// Fetcher is satisfied by *uniprot.Client.
type Fetcher interface {
	Fetch(ctx context.Context, accession string) (*uniprot.Record, error)
}

// View is a snapshot of the current record and mutation.
type View struct {
	Record *uniprot.Record
	// Code is the applied mutation, empty for wild type.
	Code string
	// Sequence is what Add would collect.
	Sequence string
	// MutationErr is set when a requested mutation did not apply; the
	// view then shows the wild type.
	MutationErr error
	Preview     *preview.Diff
	Text        string
}

// Mutated reports whether the view carries an applied mutation.
func (v View) Mutated() bool { return v.Preview != nil }

// Session is safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	record  *uniprot.Record
	code    *mutation.Code
	mutated string
	mutErr  error
	entries []entry.Entry
}

func New() *Session { return &Session{} }

// Fetch retrieves accession and installs it with code. On a fetch error the
// previous state is kept and the error is returned for display.
func (s *Session) Fetch(ctx context.Context, f Fetcher, accession, code string) (View, error) {
	rec, err := f.Fetch(ctx, accession)
	if err != nil {
		return View{}, err
	}
	return s.Load(rec, code), nil
}

// Load replaces the current record and applies code to it. An empty code
// selects the wild type.
func (s *Session) Load(rec *uniprot.Record, code string) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = rec
	s.applyLocked(code)
	return s.viewLocked()
}

// Mutate applies code to the record already loaded, without fetching.
func (s *Session) Mutate(code string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return View{}, ErrNoRecord
	}
	s.applyLocked(code)
	return s.viewLocked(), nil
}

func (s *Session) applyLocked(code string) {
	s.code, s.mutated, s.mutErr = nil, "", nil
	code = strings.TrimSpace(code)
	if code == "" {
		return
	}
	c, err := mutation.Parse(code)
	if err == nil {
		s.mutated, err = c.Apply(s.record.Sequence)
	}
	if err != nil {
		var re *mutation.RangeError
		if errors.As(err, &re) {
			re.Length = len(s.record.Sequence)
		}
		s.mutErr = err
		return
	}
	s.code = &c
}

func (s *Session) viewLocked() View {
	if s.record == nil {
		return View{}
	}
	v := View{Record: s.record, Sequence: s.record.Sequence, MutationErr: s.mutErr}
	if s.code != nil {
		d := preview.New(s.record.Sequence, s.mutated, *s.code)
		v.Code = s.code.String()
		v.Sequence = s.mutated
		v.Preview = &d
	}
	v.Text = entry.Text(s.record, v.Sequence, v.Code)
	return v
}

// Current returns the current view; the zero View when nothing was fetched.
func (s *Session) Current() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Add appends the current view to the collected list.
func (s *Session) Add() (entry.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return entry.Entry{}, ErrNoRecord
	}
	v := s.viewLocked()
	e := entry.New(v.Record, v.Sequence, v.Code)
	for _, have := range s.entries {
		if have.Text == e.Text {
			return e, ErrDuplicate
		}
	}
	s.entries = append(s.entries, e)
	return e, nil
}

// Clear empties the collected list. The current record is kept.
func (s *Session) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
}

// Entries returns a copy of the collected list in insertion order.
func (s *Session) Entries() []entry.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entry.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Export writes every collected FASTA block to w.
func (s *Session) Export(w io.Writer) error {
	entries := s.Entries()
	if len(entries) == 0 {
		return ErrEmpty
	}
	_, err := io.WriteString(w, entry.JoinFASTA(entries)+"\n")
	return err
}
