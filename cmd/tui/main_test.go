package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/config"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/uniprot"
)

type stubFetcher map[string]*uniprot.Record

func (s stubFetcher) Fetch(_ context.Context, acc string) (*uniprot.Record, error) {
	if r, ok := s[acc]; ok {
		return r, nil
	}
	return nil, &uniprot.FetchError{Accession: acc, Err: uniprot.ErrNotFound}
}

func testModel(t *testing.T) model {
	t.Helper()
	cfg := config.Defaults()
	cfg.DefaultAccession = "P1"
	cfg.ExportFile = filepath.Join(t.TempDir(), "sequences.fasta")
	f := stubFetcher{"P1": {Accession: "P1", FullName: "Protein one", ScientificName: "Homo sapiens", CommonName: "Human", Gene: "ONE", Sequence: "MKVLA"}}
	m := newModel(f, cfg, log.New(io.Discard))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(model)
}

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

// press sends msg and, for enter, runs the fetch the model starts. Other
// commands are cursor blinks and are skipped.
func press(m model, msg tea.KeyMsg) model {
	next, cmd := m.Update(msg)
	m = next.(model)
	if cmd != nil && msg.Type == tea.KeyEnter {
		if fm, ok := cmd().(fetchedMsg); ok {
			next, _ = m.Update(fm)
			m = next.(model)
		}
	}
	return m
}

func typeText(m model, s string) model {
	for _, r := range s {
		m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestFetchAddExport(t *testing.T) {
	m := testModel(t)
	m = press(m, key(tea.KeyEnter))
	if cur := m.session.Current(); cur.Record == nil || cur.Record.Accession != "P1" {
		t.Fatalf("expected P1 loaded, status=%q", m.status)
	}
	if m.loading {
		t.Fatalf("loading flag not cleared")
	}

	m = press(m, key(tea.KeyCtrlA))
	if m.session.Len() != 1 || len(m.list.Items()) != 1 {
		t.Fatalf("expected one collected entry, got %d", m.session.Len())
	}
	m = press(m, key(tea.KeyCtrlA))
	if m.statusKind != statusWarning || m.session.Len() != 1 {
		t.Fatalf("expected duplicate warning, status=%q", m.status)
	}

	m = press(m, key(tea.KeyCtrlE))
	data, err := os.ReadFile(m.exportPath)
	if err != nil {
		t.Fatalf("export not written: %v (status=%q)", err, m.status)
	}
	if !strings.HasPrefix(string(data), ">ONE|Human|P1|[WT]\nMKVLA") {
		t.Fatalf("unexpected export %q", data)
	}

	m = press(m, key(tea.KeyCtrlX))
	if m.session.Len() != 0 || len(m.list.Items()) != 0 {
		t.Fatalf("expected list cleared")
	}
}

func TestMutationRetryWithoutFetch(t *testing.T) {
	m := testModel(t)
	m = press(m, key(tea.KeyEnter))
	m = press(m, key(tea.KeyTab))
	if m.focused != fieldMutation {
		t.Fatalf("expected mutation field focused")
	}
	m = typeText(m, "A2R")
	m = press(m, key(tea.KeyEnter))
	if m.statusKind != statusError || !strings.Contains(m.status, "mismatch") {
		t.Fatalf("expected mismatch status, got %q", m.status)
	}

	m.inputs[fieldMutation].SetValue("K2R")
	next, cmd := m.Update(key(tea.KeyEnter))
	m = next.(model)
	if cmd != nil {
		t.Fatalf("retry on the same accession should not fetch")
	}
	if v := m.session.Current(); v.Sequence != "MRVLA" {
		t.Fatalf("unexpected sequence %q", v.Sequence)
	}
	if view := m.View(); !strings.Contains(view, "Mutated (K2R)") {
		t.Fatalf("preview missing from view")
	}
}

func TestFetchErrorShown(t *testing.T) {
	m := testModel(t)
	m.inputs[fieldAccession].SetValue("NOPE")
	m = press(m, key(tea.KeyEnter))
	if m.statusKind != statusError || !strings.Contains(m.status, "not found") {
		t.Fatalf("expected visible fetch error, got %q", m.status)
	}
}

func TestAddWithoutRecord(t *testing.T) {
	m := press(testModel(t), key(tea.KeyCtrlA))
	if m.statusKind != statusWarning {
		t.Fatalf("expected warning, got %q", m.status)
	}
}

func TestHelpToggle(t *testing.T) {
	m := press(testModel(t), key(tea.KeyF1))
	if !m.showHelp || !strings.Contains(m.View(), "Help") {
		t.Fatalf("expected help modal")
	}
	m = press(m, key(tea.KeyEnter))
	if m.showHelp {
		t.Fatalf("any key should close help")
	}
}
