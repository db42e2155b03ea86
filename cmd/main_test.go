package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/fasta"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/mutation"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/uniprot"
)

type stubFetcher map[string]*uniprot.Record

func (s stubFetcher) Fetch(_ context.Context, acc string) (*uniprot.Record, error) {
	if r, ok := s[acc]; ok {
		return r, nil
	}
	return nil, &uniprot.FetchError{Accession: acc, Err: uniprot.ErrNotFound}
}

var stub = stubFetcher{
	"P1": {Accession: "P1", FullName: "Protein one", ScientificName: "Homo sapiens", CommonName: "Human", Gene: "ONE", Sequence: "MKVLA"},
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// keep the test independent of any config.json next to the package
	args = append([]string{"--config", filepath.Join(t.TempDir(), "none.json")}, args...)
	root := newRootCmd(&app{fetcher: stub})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFetchCommandText(t *testing.T) {
	out, err := run(t, "fetch", "P1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "# UniProt P1 [WT] - Protein one (Homo sapiens)\n\"MKVLA\"") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestFetchCommandFASTAAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.fasta")
	out, err := run(t, "fetch", "P1", "-m", "K2R", "--fasta", "-o", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, ">ONE|Human|P1|[K2R]\nMRVLA") {
		t.Fatalf("unexpected output %q", out)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	recs, err := fasta.Parse(f)
	if err != nil || len(recs) != 1 || recs[0].Sequence != "MRVLA" {
		t.Fatalf("unexpected file contents: %+v (%v)", recs, err)
	}
}

func TestFetchCommandMutationError(t *testing.T) {
	out, err := run(t, "fetch", "P1", "-m", "A2R")
	if !errors.Is(err, mutation.ErrMismatch) {
		t.Fatalf("expected mismatch error, got %v", err)
	}
	if exitCode(err) != 2 {
		t.Fatalf("expected exit code 2, got %d", exitCode(err))
	}
	// wild type is still printed
	if !strings.Contains(out, "[WT]") {
		t.Fatalf("expected wild-type output, got %q", out)
	}
}

func TestFetchCommandNotFound(t *testing.T) {
	_, err := run(t, "fetch", "NOPE")
	if !errors.Is(err, uniprot.ErrNotFound) || exitCode(err) != 1 {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMutateCommand(t *testing.T) {
	out, err := run(t, "mutate", "MKVLA", "V3TER")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "MK\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := run(t, "mutate", "MKVLA", "v3ter"); !errors.Is(err, mutation.ErrInvalidFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil || !strings.Contains(out, version) {
		t.Fatalf("unexpected version output %q (%v)", out, err)
	}
}
