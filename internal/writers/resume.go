package writers

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/dorbarker/gogetem/internal/fasta"
)

// ReadRecords reads every record already present in a destination file. The
// format is sniffed from the first non-blank byte: '>' means FASTA, anything
// else is treated as JSONL. A missing destination yields no records. A
// trailing JSONL line that does not parse is ignored: it can only be the torn
// tail of an interrupted write, and the record it belonged to was never
// committed.
func ReadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	first, err := firstByte(br)
	if err != nil {
		// empty file
		return nil, nil
	}

	if first == '>' {
		var out []Record
		for _, rec := range fasta.Parse(br) {
			r := Record{
				Accession:   rec.Accession(),
				Sequence:    rec.Sequence,
				Translation: rec.Attribute("translation"),
			}
			// header layout: accession, underscored name, optional attributes
			fields := strings.Fields(rec.Header)
			if len(fields) > 1 && !strings.Contains(fields[1], "=") {
				r.Name = strings.ReplaceAll(fields[1], "_", " ")
			}
			if r.Accession != "" {
				out = append(out, r)
			}
		}
		return out, nil
	}

	var out []Record
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			continue
		}
		if r.Accession != "" {
			out = append(out, r)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ScanAccessions re-reads an existing destination and returns the accessions
// already written, so a resumed run can seed its dedup set.
func ScanAccessions(path string) (map[string]bool, error) {
	recs, err := ReadRecords(path)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(recs))
	for _, r := range recs {
		seen[r.Accession] = true
	}
	return seen, nil
}

// firstByte peeks past leading whitespace without consuming the reader.
func firstByte(br *bufio.Reader) (byte, error) {
	for n := 1; ; n++ {
		b, err := br.Peek(n)
		if err != nil {
			return 0, err
		}
		c := b[n-1]
		if c == ' ' || c == '\n' || c == '\r' || c == '\t' {
			continue
		}
		return c, nil
	}
}
