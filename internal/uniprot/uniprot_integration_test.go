//go:build integration
// +build integration

package uniprot

import (
	"context"
	"testing"
	"time"
)

// Hits the live UniProt API. Run with `go test -tags=integration ./...`.
func TestIntegrationFetchLive(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	rec, err := NewClient().Fetch(ctx, "Q9Y5B6")
	if err != nil {
		t.Fatalf("live fetch failed: %v", err)
	}
	if rec.Accession != "Q9Y5B6" || rec.Sequence == "" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}
