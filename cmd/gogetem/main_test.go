package main

import (
	"reflect"
	"testing"
)

func TestSplitTerms(t *testing.T) {
	got := splitTerms(" GO:0003677, 0008150 ,,3677 ")
	want := []string{"GO:0003677", "0008150", "3677"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitTerms = %v, want %v", got, want)
	}
	if got := splitTerms(""); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}
