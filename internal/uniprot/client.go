package uniprot

// Package uniprot queries the UniProt SPARQL endpoint for proteins annotated
// with Gene Ontology terms that carry EMBL nucleotide cross-references.
// Responses use the standard SPARQL 1.1 JSON results format; fields this
// package does not know about are ignored so endpoint schema evolution does
// not break parsing.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// httpClient performs requests; tests may replace it with a mock transport.
var httpClient = &http.Client{Timeout: 60 * time.Second}

// sleep waits for d or until ctx is done. Tests replace it so backoff paths
// run without real delays.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

const backoffBase = 500 * time.Millisecond

// Record is one discovery result: a protein with an EMBL nucleotide
// cross-reference. Translation is present only when the query asked for it.
type Record struct {
	Protein     string
	Name        string
	Accession   string
	Translation string
}

// ParseError marks a response body this client could not interpret. It is
// permanent: the page is not retried.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string { return fmt.Sprintf("unparseable SPARQL response: %v", e.Cause) }
func (e *ParseError) Unwrap() error { return e.Cause }

// StatusError reports a non-2xx response after retries were exhausted.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sparql endpoint returned status %d: %s", e.Code, e.Body)
}

type Client struct {
	Endpoint    string
	MaxAttempts int
	UserAgent   string
}

func NewClient(endpoint string, maxAttempts int) *Client {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Client{
		Endpoint:    endpoint,
		MaxAttempts: maxAttempts,
		UserAgent:   "gogetem/1.0 (https://github.com/dorbarker/gogetem)",
	}
}

// FetchPage runs one paged query and returns the raw records of that page.
// Transient failures (network errors, 5xx) are retried with exponential
// backoff up to MaxAttempts; 429 responses honor a Retry-After seconds hint.
// Unparseable payloads fail permanently with *ParseError.
func (c *Client) FetchPage(ctx context.Context, goTerms []string, includeAminoAcids bool, limit, offset int) ([]Record, error) {
	query := BuildQuery(goTerms, includeAminoAcids, limit, offset)

	form := url.Values{}
	form.Set("query", query)
	form.Set("format", "json")

	backoff := retry.NewExponential(backoffBase)
	var lastErr error
	for attempt := 1; attempt <= c.MaxAttempts; attempt++ {
		if attempt > 1 {
			wait, _ := backoff.Next()
			if ra := retryAfterFrom(lastErr); ra > 0 {
				wait = ra
			}
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
		}

		recs, err := c.fetchOnce(ctx, form)
		if err == nil {
			return recs, nil
		}
		var pe *ParseError
		if errors.As(err, &pe) {
			return nil, err
		}
		// client errors other than 429 will not improve on retry
		var se *StatusError
		if errors.As(err, &se) && se.Code >= 400 && se.Code < 500 && se.Code != http.StatusTooManyRequests {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, form url.Values) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		serr := &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, &rateLimitedError{StatusError: serr, retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
		}
		return nil, serr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return parseResults(data)
}

// sparqlResults mirrors the SPARQL JSON results envelope. Only the pieces
// this client reads are declared.
type sparqlResults struct {
	Results struct {
		Bindings []map[string]sparqlValue `json:"bindings"`
	} `json:"results"`
}

type sparqlValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func parseResults(data []byte) ([]Record, error) {
	var res sparqlResults
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, &ParseError{Cause: err}
	}
	records := make([]Record, 0, len(res.Results.Bindings))
	for _, b := range res.Results.Bindings {
		r := Record{
			Protein:     b["protein"].Value,
			Name:        b["name"].Value,
			Accession:   accessionFromLink(b["link"].Value),
			Translation: b["aa_sequence"].Value,
		}
		if r.Accession == "" {
			// binding without a usable EMBL link carries nothing to fetch
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

// accessionFromLink extracts the EMBL accession from a cross-reference URI
// such as http://purl.uniprot.org/embl/AB123456.
func accessionFromLink(link string) string {
	link = strings.TrimRight(strings.TrimSpace(link), "/")
	if link == "" {
		return ""
	}
	if i := strings.LastIndex(link, "/"); i >= 0 {
		return link[i+1:]
	}
	return link
}

// rateLimitedError wraps a 429 with its Retry-After hint.
type rateLimitedError struct {
	*StatusError
	retryAfter time.Duration
}

func retryAfterFrom(err error) time.Duration {
	if rl, ok := err.(*rateLimitedError); ok {
		return rl.retryAfter
	}
	return 0
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
