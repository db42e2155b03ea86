package entry

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/fasta"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/uniprot"
)

func testRecord() *uniprot.Record {
	return &uniprot.Record{
		Accession:      "Q9Y5B6",
		FullName:       "PAX3- and PAX7-binding protein 1",
		ScientificName: "Homo sapiens",
		CommonName:     "Human",
		Gene:           "PAXBP1",
		Sequence:       strings.Repeat("MSKRC", 25),
	}
}

func TestTag(t *testing.T) {
	if Tag("") != "[WT]" {
		t.Fatalf("expected [WT], got %q", Tag(""))
	}
	if Tag("P30R") != "[P30R]" {
		t.Fatalf("expected [P30R], got %q", Tag("P30R"))
	}
}

func TestComment(t *testing.T) {
	rec := testRecord()
	want := "# UniProt Q9Y5B6 [WT] - PAX3- and PAX7-binding protein 1 (Homo sapiens)"
	if got := Comment(rec, ""); got != want {
		t.Fatalf("unexpected comment:\n got %q\nwant %q", got, want)
	}
	want = "# UniProt Q9Y5B6 [M1P] - PAX3- and PAX7-binding protein 1 (Homo sapiens)"
	if got := Comment(rec, "M1P"); got != want {
		t.Fatalf("unexpected comment:\n got %q\nwant %q", got, want)
	}
}

func TestText(t *testing.T) {
	rec := testRecord()
	got := Text(rec, "MKV", "")
	if got != Comment(rec, "")+"\n\"MKV\"" {
		t.Fatalf("unexpected text block %q", got)
	}
}

func TestFASTAHeaderAndWrap(t *testing.T) {
	rec := testRecord()
	block := FASTA(rec, rec.Sequence, "S2A")
	lines := strings.Split(block, "\n")
	if lines[0] != ">PAXBP1|Human|Q9Y5B6|[S2A]" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	// 125 residues: 60 + 60 + 5
	if len(lines) != 4 || len(lines[1]) != 60 || len(lines[2]) != 60 || len(lines[3]) != 5 {
		t.Fatalf("unexpected wrapping: %q", lines[1:])
	}
}

func TestFASTAFallbacks(t *testing.T) {
	rec := testRecord()
	rec.CommonName = ""
	rec.Gene = ""
	header := strings.SplitN(FASTA(rec, "MKV", ""), "\n", 2)[0]
	if header != ">Unknown|Homo sapiens|Q9Y5B6|[WT]" {
		t.Fatalf("unexpected header %q", header)
	}
	if got := Label(rec, ""); got != "Homo sapiens, Unknown, [WT]" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestFASTARoundTrip(t *testing.T) {
	rec := testRecord()
	recs, err := fasta.Parse(strings.NewReader(FASTA(rec, rec.Sequence, "")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0].Sequence != rec.Sequence {
		t.Fatalf("round trip mismatch: %+v", recs)
	}
}

func TestNewAndListings(t *testing.T) {
	rec := testRecord()
	wt := New(rec, rec.Sequence, "")
	mut := New(rec, "PSKRC", "M1P")
	if wt.Label != "Human, PAXBP1, [WT]" || mut.Label != "Human, PAXBP1, [M1P]" {
		t.Fatalf("unexpected labels: %q %q", wt.Label, mut.Label)
	}

	entries := []Entry{wt, mut}
	wantLabels := "labels = [\n    \"Human, PAXBP1, [WT]\",\n    \"Human, PAXBP1, [M1P]\"\n]"
	if diff := cmp.Diff(wantLabels, LabelsListing(entries)); diff != "" {
		t.Fatalf("unexpected labels listing (-want +got):\n%s", diff)
	}
	wantSeqs := "sequences = [\n    " + wt.Text + ",\n    " + mut.Text + "\n]"
	if diff := cmp.Diff(wantSeqs, SequencesListing(entries)); diff != "" {
		t.Fatalf("unexpected sequences listing (-want +got):\n%s", diff)
	}

	recs, err := fasta.Parse(strings.NewReader(JoinFASTA(entries)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 || recs[1].Sequence != "PSKRC" || recs[1].Header != "PAXBP1|Human|Q9Y5B6|[M1P]" {
		t.Fatalf("unexpected exported records: %+v", recs)
	}
}
