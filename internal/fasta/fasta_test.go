package fasta

import (
	"strings"
	"testing"
)

func TestParseSimple(t *testing.T) {
	input := ">seq1\nATGC\n>seq2 desc\nGGTT\n"
	recs := Parse(strings.NewReader(input))
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Header != "seq1" || recs[0].Sequence != "ATGC" {
		t.Fatalf("unexpected first record: %+v", recs[0])
	}
	if recs[1].Header != "seq2 desc" || recs[1].Sequence != "GGTT" {
		t.Fatalf("unexpected second record: %+v", recs[1])
	}
}

func TestParseMultilineAndBlankLines(t *testing.T) {
	input := ">acc1 some name\nATG\nCGT\n\n>acc2\nTTTT\n"
	recs := Parse(strings.NewReader(input))
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Sequence != "ATGCGT" {
		t.Fatalf("expected concatenated sequence, got %q", recs[0].Sequence)
	}
	if recs[0].Accession() != "acc1" || recs[1].Accession() != "acc2" {
		t.Fatalf("unexpected accessions: %q %q", recs[0].Accession(), recs[1].Accession())
	}
}

func TestAttribute(t *testing.T) {
	r := Record{Header: "AB123 DNA-binding protein translation=MKQRST"}
	if got := r.Attribute("translation"); got != "MKQRST" {
		t.Fatalf("expected translation attribute, got %q", got)
	}
	if got := r.Attribute("missing"); got != "" {
		t.Fatalf("expected empty attribute, got %q", got)
	}
}

func TestFormatWraps(t *testing.T) {
	r := Record{Header: "acc1", Sequence: "ATGCATGCAT"}
	got := Format(r, 4)
	want := ">acc1\nATGC\nATGC\nAT\n"
	if got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}
	if roundtrip := Parse(strings.NewReader(got)); roundtrip[0].Sequence != r.Sequence {
		t.Fatalf("round trip lost sequence: %+v", roundtrip)
	}
}
