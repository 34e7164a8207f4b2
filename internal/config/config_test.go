package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	// implicit path that does not exist -> defaults, no error
	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	os.Chdir(t.TempDir())

	c, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.SparqlEndpoint != DefaultSparqlEndpoint || c.PageSize != DefaultPageSize {
		t.Fatalf("defaults not applied: %+v", c)
	}
	if c.Concurrency != DefaultConcurrency || c.QPS != DefaultQPS || c.OutputFormat != DefaultOutputFormat {
		t.Fatalf("defaults not applied: %+v", c)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.json")
	body := `{"page_size": 25, "qps": 1, "ledger_path": "runs.db", "include_amino_acids": true}`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.PageSize != 25 || c.QPS != 1 || c.LedgerPath != "runs.db" || !c.IncludeAminoAcid {
		t.Fatalf("unexpected config: %+v", c)
	}
	// unset fields still get defaults
	if c.EnaBaseURL != DefaultEnaBaseURL || c.Concurrency != DefaultConcurrency {
		t.Fatalf("defaults not backfilled: %+v", c)
	}
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for explicit missing config path")
	}
}
