package fasta

// Package fasta contains minimal helpers to parse and emit FASTA formatted
// data used by the project. It intentionally keeps parsing simple and
// conservative: headers start with '>', sequence lines are concatenated.

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Record represents a single FASTA record (header and sequence).
type Record struct {
	Header   string
	Sequence string
}

// Accession returns the first whitespace-delimited token of the header,
// which is the accession identifier for records written by this tool.
func (r Record) Accession() string {
	fields := strings.Fields(r.Header)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Attribute extracts a "key=value" attribute from the header, or "" when the
// header carries no such attribute. Values must not contain whitespace.
func (r Record) Attribute(key string) string {
	prefix := key + "="
	for _, f := range strings.Fields(r.Header) {
		if strings.HasPrefix(f, prefix) {
			return f[len(prefix):]
		}
	}
	return ""
}

// Parse reads FASTA records from r. Lines beginning with '>' denote headers;
// sequence lines are concatenated. Blank lines are ignored.
func Parse(r io.Reader) []Record {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var records []Record
	var current Record
	open := false
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			if open {
				records = append(records, current)
			}
			current = Record{Header: strings.TrimSpace(line[1:])}
			open = true
		} else if open {
			current.Sequence += line
		}
	}
	if open {
		records = append(records, current)
	}
	return records
}

// Format renders one record with the sequence wrapped at width columns.
// width <= 0 leaves the sequence on a single line.
func Format(r Record, width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, ">%s\n", r.Header)
	seq := r.Sequence
	if width <= 0 || len(seq) <= width {
		b.WriteString(seq)
		b.WriteByte('\n')
		return b.String()
	}
	for len(seq) > width {
		b.WriteString(seq[:width])
		b.WriteByte('\n')
		seq = seq[width:]
	}
	if len(seq) > 0 {
		b.WriteString(seq)
		b.WriteByte('\n')
	}
	return b.String()
}
