package writers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	w, err := New("jsonl", path)
	require.NoError(t, err)

	require.NoError(t, w.Write(Record{Accession: "AB1", Name: "protein one", Sequence: "ATGC"}))
	require.NoError(t, w.Write(Record{Accession: "AB2", Sequence: "GGTT", Translation: "MK"}))
	require.NoError(t, w.Close())

	seen, err := ScanAccessions(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"AB1": true, "AB2": true}, seen)
}

func TestFASTARoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.fasta")
	w, err := New("fasta", path)
	require.NoError(t, err)

	require.NoError(t, w.Write(Record{Accession: "AB1", Name: "DNA binding protein", Sequence: "ATGCATGC", Translation: "MK"}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), ">AB1 DNA_binding_protein translation=MK\n")

	seen, err := ScanAccessions(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"AB1": true}, seen)
}

func TestAppendAcrossWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")

	w1, err := New("jsonl", path)
	require.NoError(t, err)
	require.NoError(t, w1.Write(Record{Accession: "AB1", Sequence: "A"}))
	require.NoError(t, w1.Close())

	w2, err := New("jsonl", path)
	require.NoError(t, err)
	require.NoError(t, w2.Write(Record{Accession: "AB2", Sequence: "C"}))
	require.NoError(t, w2.Close())

	seen, err := ScanAccessions(path)
	require.NoError(t, err)
	assert.Len(t, seen, 2)
}

func TestScanAccessionsIgnoresTornTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	body := `{"accession":"AB1","sequence":"ATGC"}
{"accession":"AB2","seq`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	seen, err := ScanAccessions(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"AB1": true}, seen)
}

func TestReadRecordsBothFormats(t *testing.T) {
	dir := t.TempDir()

	jp := filepath.Join(dir, "out.jsonl")
	w, err := New("jsonl", jp)
	require.NoError(t, err)
	require.NoError(t, w.Write(Record{Accession: "AB1", Name: "protein one", Sequence: "ATGC", Translation: "MK"}))
	require.NoError(t, w.Close())

	got, err := ReadRecords(jp)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "protein one", got[0].Name)
	assert.Equal(t, "MK", got[0].Translation)

	fp := filepath.Join(dir, "out.fasta")
	fw, err := New("fasta", fp)
	require.NoError(t, err)
	require.NoError(t, fw.Write(Record{Accession: "AB1", Name: "protein one", Sequence: "ATGC", Translation: "MK"}))
	require.NoError(t, fw.Close())

	got, err = ReadRecords(fp)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "AB1", got[0].Accession)
	assert.Equal(t, "protein one", got[0].Name)
	assert.Equal(t, "ATGC", got[0].Sequence)
	assert.Equal(t, "MK", got[0].Translation)
}

func TestScanAccessionsMissingFile(t *testing.T) {
	seen, err := ScanAccessions(filepath.Join(t.TempDir(), "absent.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestUnknownFormat(t *testing.T) {
	_, err := New("parquet", filepath.Join(t.TempDir(), "x"))
	assert.Error(t, err)
}
