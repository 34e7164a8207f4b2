package writers

import (
	"os"
	"strings"

	"github.com/dorbarker/gogetem/internal/fasta"
)

// fastaWrap is the sequence line width used for FASTA output.
const fastaWrap = 60

// FASTAWriter appends FASTA records. The translation, when present, rides in
// a header attribute since FASTA holds one sequence per record.
type FASTAWriter struct {
	path string
	f    *os.File
}

func NewFASTAWriter(path string) (*FASTAWriter, error) {
	f, err := openAppend(path)
	if err != nil {
		return nil, err
	}
	return &FASTAWriter{path: path, f: f}, nil
}

func (w *FASTAWriter) Write(r Record) error {
	header := r.Accession
	if r.Name != "" {
		header += " " + strings.Join(strings.Fields(r.Name), "_")
	}
	if r.Translation != "" {
		header += " translation=" + r.Translation
	}
	out := fasta.Format(fasta.Record{Header: header, Sequence: r.Sequence}, fastaWrap)
	if _, err := w.f.WriteString(out); err != nil {
		return &WriteError{Path: w.path, Cause: err}
	}
	if err := w.f.Sync(); err != nil {
		return &WriteError{Path: w.path, Cause: err}
	}
	return nil
}

func (w *FASTAWriter) Close() error {
	return w.f.Close()
}
