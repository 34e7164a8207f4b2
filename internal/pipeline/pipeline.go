package pipeline

// Package pipeline coordinates the four retrieval stages: planning query
// pages, fetching discovery results and sequences, filtering/deduplicating
// records, and writing them durably to the destination. Pages are fetched by
// a bounded worker pool behind a shared rate limiter; a single writer
// goroutine serializes destination access. Accession-based deduplication is
// the correctness guarantee, not output ordering.

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/atomic"

	"github.com/dorbarker/gogetem/internal/embl"
	"github.com/dorbarker/gogetem/internal/goterm"
	"github.com/dorbarker/gogetem/internal/uniprot"
	"github.com/dorbarker/gogetem/internal/writers"
)

// Discovery produces the raw records of one query page.
type Discovery interface {
	FetchPage(ctx context.Context, goTerms []string, includeAminoAcids bool, limit, offset int) ([]uniprot.Record, error)
}

// SequenceSource resolves an accession to its nucleotide sequence.
type SequenceSource interface {
	FetchSequence(ctx context.Context, accession string) (embl.Sequence, error)
}

type State string

const (
	StateComplete State = "complete"
	StatePartial  State = "partial"
)

type Options struct {
	Terms             []string
	Limit             int
	PageSize          int
	Concurrency       int
	QPS               int
	IncludeAminoAcids bool
	Destination       string
	Format            string

	// Pages overrides the planner with an explicit set of pages, used to
	// target pages a previous run could not fetch.
	Pages []QueryPage

	Logger *log.Logger
}

// FailedPage is a page that permanently failed after retries.
type FailedPage struct {
	Page  QueryPage
	Cause error
}

// Summary reports the outcome of one run.
type Summary struct {
	State       State
	Fetched     int
	Written     int
	Skipped     int
	Resumed     int
	FailedPages []FailedPage
	Err         error
}

type Pipeline struct {
	discovery Discovery
	sequences SequenceSource
	opts      Options
	logger    *log.Logger
}

func New(discovery Discovery, sequences SequenceSource, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Pipeline{discovery: discovery, sequences: sequences, opts: opts, logger: logger}
}

// Run executes the pipeline. The returned error is fatal (invalid parameters,
// unwritable destination, cancellation); permanently failed pages do not
// abort the run and are reported in the summary instead.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	terms, err := p.validateTerms()
	if err != nil {
		return sum, err
	}

	pages := p.opts.Pages
	if pages == nil {
		pages, err = plan(p.opts.Limit, p.opts.PageSize)
		if err != nil {
			return sum, err
		}
	} else if p.opts.Limit <= 0 {
		return sum, &InvalidParameterError{Param: "limit", Reason: "must be a positive integer"}
	}

	seen, err := writers.ScanAccessions(p.opts.Destination)
	if err != nil {
		return sum, &writers.WriteError{Path: p.opts.Destination, Cause: err}
	}
	sum.Resumed = len(seen)
	if sum.Resumed > 0 {
		p.logger.Info("resuming against existing destination", "path", p.opts.Destination, "accessions", sum.Resumed)
	}

	state := &runState{seen: seen, accepted: len(seen), limit: p.opts.Limit}
	if state.full() {
		p.logger.Info("destination already holds the record limit", "limit", p.opts.Limit)
		sum.State = StateComplete
		return sum, nil
	}

	w, err := writers.New(p.opts.Format, p.opts.Destination)
	if err != nil {
		return sum, err
	}
	defer w.Close()

	concurrency := p.opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	// shared rate limiter over all remote calls
	var tick <-chan time.Time
	if p.opts.QPS > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(p.opts.QPS))
		defer ticker.Stop()
		tick = ticker.C
	}
	gate := func(ctx context.Context) error {
		if tick == nil {
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			return nil
		}
	}

	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	defer stopDispatch()

	tasks := make(chan QueryPage)
	go func() {
		defer close(tasks)
		for _, pg := range pages {
			select {
			case tasks <- pg:
			case <-dispatchCtx.Done():
				return
			}
		}
	}()

	// single writer goroutine; workers hand accepted records over recordsCh.
	// The writer drains the channel even after a write failure so workers
	// never block on a dead consumer.
	recordsCh := make(chan writers.Record, 64)
	writerDone := make(chan struct{})
	written := atomic.NewInt64(0)
	var writeErr error
	go func() {
		defer close(writerDone)
		for rec := range recordsCh {
			if writeErr != nil {
				continue
			}
			if err := w.Write(rec); err != nil {
				writeErr = err
				p.logger.Error("destination write failed", "err", err)
				stopDispatch()
				continue
			}
			written.Inc()
		}
	}()

	fetched := atomic.NewInt64(0)
	skipped := atomic.NewInt64(0)
	var failMu sync.Mutex
	var failedPages []FailedPage

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pg := range tasks {
				if err := gate(ctx); err != nil {
					return
				}
				raws, err := p.discovery.FetchPage(ctx, terms, p.opts.IncludeAminoAcids, pg.Limit, pg.Offset)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					p.logger.Warn("page permanently failed", "offset", pg.Offset, "limit", pg.Limit, "err", err)
					failMu.Lock()
					failedPages = append(failedPages, FailedPage{Page: pg, Cause: &FetchError{Page: pg, Cause: err}})
					failMu.Unlock()
					continue
				}
				fetched.Add(int64(len(raws)))
				for _, raw := range raws {
					if ctx.Err() != nil {
						return
					}
					rec, ok := p.accept(ctx, state, raw, gate, skipped)
					if !ok {
						if state.full() {
							stopDispatch()
						}
						continue
					}
					recordsCh <- rec
				}
				if state.full() {
					stopDispatch()
				}
			}
		}()
	}

	wg.Wait()
	close(recordsCh)
	<-writerDone

	sum.Fetched = int(fetched.Load())
	sum.Written = int(written.Load())
	sum.Skipped = int(skipped.Load())
	sum.FailedPages = failedPages

	if writeErr != nil {
		sum.State = StatePartial
		return sum, writeErr
	}
	if err := ctx.Err(); err != nil {
		sum.State = StatePartial
		return sum, err
	}
	if len(failedPages) > 0 {
		sum.State = StatePartial
		var agg *multierror.Error
		for _, fp := range failedPages {
			agg = multierror.Append(agg, fp.Cause)
		}
		sum.Err = agg.ErrorOrNil()
		return sum, nil
	}
	sum.State = StateComplete
	return sum, nil
}

// accept applies the filter stage to one raw record: dedup and limit
// reservation, sequence resolution, and translation handling. Dropped records
// are counted as skipped; drops are never errors.
func (p *Pipeline) accept(ctx context.Context, state *runState, raw uniprot.Record, gate func(context.Context) error, skipped *atomic.Int64) (writers.Record, bool) {
	if !state.reserve(raw.Accession) {
		skipped.Inc()
		return writers.Record{}, false
	}

	if err := gate(ctx); err != nil {
		state.release(raw.Accession)
		return writers.Record{}, false
	}
	seq, err := p.sequences.FetchSequence(ctx, raw.Accession)
	if err != nil || seq.Nucleotides == "" {
		if err != nil {
			p.logger.Warn("sequence fetch failed, skipping record", "accession", raw.Accession, "err", err)
		}
		state.release(raw.Accession)
		skipped.Inc()
		return writers.Record{}, false
	}

	rec := writers.Record{
		Accession: raw.Accession,
		Protein:   raw.Protein,
		Name:      raw.Name,
		Sequence:  seq.Nucleotides,
	}
	if p.opts.IncludeAminoAcids {
		if !validTranslation(raw.Translation) {
			p.logger.Warn("record lacks a well-formed translation, skipping", "accession", raw.Accession)
			state.release(raw.Accession)
			skipped.Inc()
			return writers.Record{}, false
		}
		rec.Translation = raw.Translation
	}
	return rec, true
}

func (p *Pipeline) validateTerms() ([]string, error) {
	if len(p.opts.Terms) == 0 {
		return nil, &InvalidParameterError{Param: "go-term", Reason: "at least one term is required"}
	}
	terms := make([]string, 0, len(p.opts.Terms))
	for _, t := range p.opts.Terms {
		n, err := goterm.Normalize(t)
		if err != nil {
			if errors.Is(err, goterm.ErrMalformed) {
				return nil, &InvalidParameterError{Param: "go-term", Reason: err.Error()}
			}
			return nil, err
		}
		terms = append(terms, n)
	}
	return terms, nil
}

// aminoAlphabet covers the IUPAC amino acid codes plus ambiguity codes and
// the stop symbol.
const aminoAlphabet = "ACDEFGHIKLMNPQRSTVWYXBZJUO*"

func validTranslation(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range strings.ToUpper(s) {
		if !strings.ContainsRune(aminoAlphabet, r) {
			return false
		}
	}
	return true
}

// runState is the shared mutable state of one run: the dedup set and the
// accepted-record budget. Check-and-insert is serialized so the no-duplicate
// invariant holds under concurrent fetching.
type runState struct {
	mu       sync.Mutex
	seen     map[string]bool
	accepted int
	limit    int
}

// reserve claims an output slot for the accession. It fails when the
// accession was already accepted or the limit is reached.
func (s *runState) reserve(acc string) bool {
	if acc == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accepted >= s.limit || s.seen[acc] {
		return false
	}
	s.seen[acc] = true
	s.accepted++
	return true
}

// release returns a slot claimed by reserve when the record is dropped
// downstream of the dedup check.
func (s *runState) release(acc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[acc] {
		delete(s.seen, acc)
		s.accepted--
	}
}

func (s *runState) full() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted >= s.limit
}
