package config

import (
	"encoding/json"
	"os"
)

type Config struct {
	SparqlEndpoint   string `json:"sparql_endpoint"`
	EnaBaseURL       string `json:"ena_base_url"`
	PageSize         int    `json:"page_size"`
	Concurrency      int    `json:"concurrency"`
	QPS              int    `json:"qps"`
	MaxAttempts      int    `json:"max_attempts"`
	OutputFormat     string `json:"output_format"`
	EnaCachePath     string `json:"ena_cache_path"`
	EnaCacheTTLSecs  int64  `json:"ena_cache_ttl_seconds"`
	LedgerPath       string `json:"ledger_path"`
	LogFile          string `json:"log_file"`
	LogLevel         string `json:"log_level"`
	IncludeAminoAcid bool   `json:"include_amino_acids"`
}

// Defaults applied when neither the config file nor flags provide a value.
const (
	DefaultSparqlEndpoint = "https://sparql.uniprot.org/sparql"
	DefaultEnaBaseURL     = "https://www.ebi.ac.uk/ena/browser/api"
	DefaultPageSize       = 100
	DefaultConcurrency    = 4
	DefaultQPS            = 3
	DefaultMaxAttempts    = 3
	DefaultOutputFormat   = "jsonl"
)

// LoadConfig loads a JSON config from the given path. If path is empty, looks for ./config.json.
// A missing implicit file is not fatal: defaults are returned.
func LoadConfig(path string) (*Config, error) {
	c := &Config{}
	explicit := path != ""
	if path == "" {
		path = "config.json"
	}
	f, err := os.Open(path)
	if err != nil {
		if explicit {
			return nil, err
		}
		c.applyDefaults()
		return c, nil
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.SparqlEndpoint == "" {
		c.SparqlEndpoint = DefaultSparqlEndpoint
	}
	if c.EnaBaseURL == "" {
		c.EnaBaseURL = DefaultEnaBaseURL
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.QPS <= 0 {
		c.QPS = DefaultQPS
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.OutputFormat == "" {
		c.OutputFormat = DefaultOutputFormat
	}
}
