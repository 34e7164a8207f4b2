package writers

import (
	"encoding/json"
	"os"
)

// JSONLWriter appends one JSON object per line. Each record is written with a
// single Write call followed by Sync, so a crash cannot interleave or split
// records.
type JSONLWriter struct {
	path string
	f    *os.File
}

func NewJSONLWriter(path string) (*JSONLWriter, error) {
	f, err := openAppend(path)
	if err != nil {
		return nil, err
	}
	return &JSONLWriter{path: path, f: f}, nil
}

func (w *JSONLWriter) Write(r Record) error {
	b, err := json.Marshal(r)
	if err != nil {
		return &WriteError{Path: w.path, Cause: err}
	}
	b = append(b, '\n')
	if _, err := w.f.Write(b); err != nil {
		return &WriteError{Path: w.path, Cause: err}
	}
	if err := w.f.Sync(); err != nil {
		return &WriteError{Path: w.path, Cause: err}
	}
	return nil
}

func (w *JSONLWriter) Close() error {
	return w.f.Close()
}
