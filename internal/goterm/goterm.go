package goterm

// Package goterm normalizes Gene Ontology term identifiers. Terms arrive from
// the CLI in several spellings ("GO:0003677", "0003677", plain "3677") and the
// SPARQL layer needs the canonical zero-padded numeric code.

import (
	"errors"
	"fmt"
	"strings"
)

// Width is the number of digits in a canonical GO term code.
const Width = 7

// ErrMalformed reports a GO term that cannot be normalized.
var ErrMalformed = errors.New("malformed GO term")

// Normalize returns the canonical 7-digit numeric code for a GO term.
// Accepted inputs: "GO:0003677", "go:0003677", "0003677", "3677".
func Normalize(s string) (string, error) {
	t := strings.TrimSpace(s)
	if u := strings.ToUpper(t); strings.HasPrefix(u, "GO:") {
		t = t[3:]
	}
	if t == "" {
		return "", fmt.Errorf("%w: empty term", ErrMalformed)
	}
	if len(t) > Width {
		return "", fmt.Errorf("%w: %q is longer than %d digits", ErrMalformed, s, Width)
	}
	for _, r := range t {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q is not numeric", ErrMalformed, s)
		}
	}
	return strings.Repeat("0", Width-len(t)) + t, nil
}

// NormalizeAll normalizes every term, dropping duplicates after
// normalization. At least one term must survive.
func NormalizeAll(terms []string) ([]string, error) {
	out := make([]string, 0, len(terms))
	seen := make(map[string]bool, len(terms))
	for _, s := range terms {
		n, err := Normalize(s)
		if err != nil {
			return nil, err
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no terms given", ErrMalformed)
	}
	return out, nil
}
