package goterm

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0003677", "0003677"},
		{"3677", "0003677"},
		{"GO:0003677", "0003677"},
		{"go:3677", "0003677"},
		{" GO:0008150 ", "0008150"},
	}
	for _, c := range cases {
		got, err := Normalize(c.in)
		if err != nil {
			t.Fatalf("Normalize(%q) returned error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "GO:", "abc", "GO:12x45", "12345678"} {
		if _, err := Normalize(in); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Normalize(%q): expected ErrMalformed, got %v", in, err)
		}
	}
}

func TestNormalizeAllDeduplicates(t *testing.T) {
	got, err := NormalizeAll([]string{"3677", "GO:0003677", "0008150"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "0003677" || got[1] != "0008150" {
		t.Fatalf("unexpected result: %v", got)
	}
}
