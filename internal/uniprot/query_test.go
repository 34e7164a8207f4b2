package uniprot

import (
	"strings"
	"testing"
)

func TestBuildQueryShape(t *testing.T) {
	q := BuildQuery([]string{"0003677"}, false, 50, 100)

	for _, want := range []string{
		"PREFIX up: <http://purl.uniprot.org/core/>",
		"PREFIX go: <http://purl.obolibrary.org/obo/GO_>",
		"SELECT ?protein ?name ?link",
		"values ?go_terms { go:0003677 }",
		"up:classifiedWith|(up:classifiedWith/rdfs:subClassOf) ?go_terms",
		"'EMBL nucleotide sequence database'",
		"ORDER BY ?protein",
		"LIMIT 50",
		"OFFSET 100",
	} {
		if !strings.Contains(q, want) {
			t.Fatalf("query missing %q:\n%s", want, q)
		}
	}
	if strings.Contains(q, "aa_sequence") {
		t.Fatalf("amino acid variable present in nucleotide-only query:\n%s", q)
	}
}

func TestBuildQueryAminoAcids(t *testing.T) {
	q := BuildQuery([]string{"0003677", "0008150"}, true, 10, 0)
	for _, want := range []string{
		"SELECT ?protein ?name ?link ?aa_sequence",
		"?protein up:sequence ?seq .",
		"?seq rdf:value ?aa_sequence .",
		"values ?go_terms { go:0003677 go:0008150 }",
	} {
		if !strings.Contains(q, want) {
			t.Fatalf("query missing %q:\n%s", want, q)
		}
	}
}
