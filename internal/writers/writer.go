package writers

// Package writers persists accepted sequence records to a destination file.
// Writes are append-only and durable: a record is committed only after its
// bytes reach the file and a Sync completes, so an interrupted run never
// leaves a destination that cannot be resumed.

import (
	"fmt"
	"os"
	"sort"
)

// Record is one output entry.
type Record struct {
	Accession   string `json:"accession"`
	Protein     string `json:"protein,omitempty"`
	Name        string `json:"name,omitempty"`
	Sequence    string `json:"sequence"`
	Translation string `json:"translation,omitempty"`
}

// RecordWriter appends records to a destination.
type RecordWriter interface {
	Write(Record) error
	Close() error
}

// WriteError marks the destination as unwritable; it aborts the run while
// preserving records already flushed.
type WriteError struct {
	Path  string
	Cause error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write %s: %v", e.Path, e.Cause) }
func (e *WriteError) Unwrap() error { return e.Cause }

type factory func(path string) (RecordWriter, error)

var registry = map[string]factory{
	"jsonl": func(path string) (RecordWriter, error) { return NewJSONLWriter(path) },
	"fasta": func(path string) (RecordWriter, error) { return NewFASTAWriter(path) },
}

// New opens an append-mode writer for the named format at path.
func New(format, path string) (RecordWriter, error) {
	f, ok := registry[format]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (supported: %v)", format, Formats())
	}
	return f(path)
}

// Formats lists the supported destination formats.
func Formats() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, &WriteError{Path: path, Cause: err}
	}
	return f, nil
}
