package embl

// Package embl fetches nucleotide sequences from the ENA/EMBL browser API by
// accession. Successful fetches are cached on disk with a TTL so repeated and
// resumed runs avoid refetching sequences.

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dorbarker/gogetem/internal/fasta"
)

// httpClient performs requests; tests may replace it with a mock transport.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// sleep waits for d or until ctx is done; tests replace it.
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

const backoffBase = 300 * time.Millisecond

// Sequence is a nucleotide sequence fetched for one accession.
type Sequence struct {
	Accession   string
	Description string
	Nucleotides string
}

// Client talks to the ENA browser API.
type Client struct {
	BaseURL     string
	MaxAttempts int
	UserAgent   string
}

func NewClient(baseURL string, maxAttempts int) *Client {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		MaxAttempts: maxAttempts,
		UserAgent:   "gogetem/1.0 (https://github.com/dorbarker/gogetem)",
	}
}

// FetchSequence returns the nucleotide sequence for the given accession,
// serving from cache when possible. A 200 response whose body holds no FASTA
// record yields an empty Sequence and no error; callers treat that as a
// record without a usable sequence.
func (c *Client) FetchSequence(ctx context.Context, accession string) (Sequence, error) {
	if accession == "" {
		return Sequence{}, nil
	}

	if e, ok := getCached(accession); ok {
		return Sequence{Accession: accession, Description: e.Description, Nucleotides: e.Sequence}, nil
	}

	url := fmt.Sprintf("%s/fasta/%s", c.BaseURL, accession)

	backoff := retry.NewExponential(backoffBase)
	var lastErr error
	for attempt := 1; attempt <= c.MaxAttempts; attempt++ {
		if attempt > 1 {
			wait, _ := backoff.Next()
			if ra := retryAfterFrom(lastErr); ra > 0 {
				wait = ra
			}
			if err := sleep(ctx, wait); err != nil {
				return Sequence{}, err
			}
		}

		seq, err := c.fetchOnce(ctx, url, accession)
		if err == nil {
			return seq, nil
		}
		if ctx.Err() != nil {
			return Sequence{}, ctx.Err()
		}
		if !retryable(err) {
			return Sequence{}, err
		}
		lastErr = err
	}
	return Sequence{}, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, url, accession string) (Sequence, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Sequence{}, err
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return Sequence{}, &transientError{err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to parse
	case resp.StatusCode == http.StatusNotFound:
		// accession unknown to ENA: not an error, just no sequence
		return Sequence{Accession: accession}, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return Sequence{}, &rateLimitedError{
			err:        fmt.Errorf("ena returned 429 for %s", accession),
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode >= 500:
		return Sequence{}, &transientError{fmt.Errorf("ena returned status %d for %s", resp.StatusCode, accession)}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Sequence{}, fmt.Errorf("ena returned status %d for %s: %s", resp.StatusCode, accession, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Sequence{}, &transientError{err}
	}
	recs := fasta.Parse(strings.NewReader(string(data)))
	if len(recs) == 0 {
		return Sequence{Accession: accession}, nil
	}
	seq := Sequence{
		Accession:   accession,
		Description: strings.TrimSpace(strings.TrimPrefix(recs[0].Header, recs[0].Accession())),
		Nucleotides: recs[0].Sequence,
	}
	setCached(accession, seq.Nucleotides, seq.Description)
	return seq, nil
}

type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

type rateLimitedError struct {
	err        error
	retryAfter time.Duration
}

func (e *rateLimitedError) Error() string { return e.err.Error() }

func retryable(err error) bool {
	switch err.(type) {
	case *transientError, *rateLimitedError:
		return true
	}
	return false
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
