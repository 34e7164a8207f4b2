package uniprot

import (
	"fmt"
	"strings"
)

// queryPrefix returns the PREFIX block shared by every query.
func queryPrefix() string {
	prefixen := []string{
		"PREFIX xsd: <http://www.w3.org/2001/XMLSchema#>",
		"PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>",
		"PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>",
		"PREFIX up: <http://purl.uniprot.org/core/>",
		"PREFIX go: <http://purl.obolibrary.org/obo/GO_>",
	}
	return strings.Join(prefixen, "\n")
}

func querySelect(includeAminoAcids bool) string {
	aaVar := ""
	if includeAminoAcids {
		aaVar = " ?aa_sequence"
	}
	return "SELECT ?protein ?name ?link" + aaVar
}

// queryMatch builds the WHERE block: proteins classified with any of the GO
// terms (directly or via a subclass) that carry an EMBL nucleotide
// cross-reference.
func queryMatch(goTerms []string, includeAminoAcids bool) string {
	values := make([]string, 0, len(goTerms)+2)
	values = append(values, "{")
	for _, g := range goTerms {
		values = append(values, "go:"+g)
	}
	values = append(values, "}")

	aaSequenceQuery := ""
	if includeAminoAcids {
		aaSequenceQuery = "?protein up:sequence ?seq .\n?seq rdf:value ?aa_sequence ."
	}

	where := []string{
		"WHERE {",
		fmt.Sprintf("values ?go_terms %s", strings.Join(values, " ")),
		"?protein a up:Protein ;",
		"    rdfs:label ?name ;",
		"    up:classifiedWith|(up:classifiedWith/rdfs:subClassOf) ?go_terms .",
		aaSequenceQuery,
		"?protein rdfs:seeAlso ?link .",
		"?link up:database ?database .",
		"?database rdfs:label 'EMBL nucleotide sequence database' .",
		"}",
	}

	return strings.Join(where, "\n")
}

// BuildQuery assembles a complete paged SPARQL query. Deterministic ordering
// keeps LIMIT/OFFSET pagination stable across requests.
func BuildQuery(goTerms []string, includeAminoAcids bool, limit, offset int) string {
	parts := []string{
		queryPrefix(),
		querySelect(includeAminoAcids),
		queryMatch(goTerms, includeAminoAcids),
		"ORDER BY ?protein",
		fmt.Sprintf("LIMIT %d", limit),
		fmt.Sprintf("OFFSET %d", offset),
	}
	return strings.Join(parts, "\n")
}
