package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dorbarker/gogetem/internal/config"
	"github.com/dorbarker/gogetem/internal/embl"
	"github.com/dorbarker/gogetem/internal/goterm"
	"github.com/dorbarker/gogetem/internal/ledger"
	"github.com/dorbarker/gogetem/internal/pipeline"
	"github.com/dorbarker/gogetem/internal/uniprot"
)

// version is the program version. It can be overridden at build time with -ldflags "-X main.version=..."
var version = "0.2.0"

// Exit codes: partial completion is distinguished from total failure so retry
// tooling can tell "some pages failed" from "nothing was written".
const (
	exitOK      = 0
	exitFatal   = 1
	exitPartial = 2
)

// timestampWriter prefixes each flushed line with an RFC3339 timestamp.
type timestampWriter struct {
	w   io.Writer
	buf bytes.Buffer
	mu  sync.Mutex
}

// Write buffers bytes until a newline is found; for each full line, write a timestamped
// line to the underlying writer. Partial lines are kept in the buffer.
func (t *timestampWriter) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, _ := t.buf.Write(p)
	total := n
	for {
		line, err := t.buf.ReadString('\n')
		if err != nil {
			break
		}
		ts := time.Now().Format(time.RFC3339)
		if _, err := t.w.Write([]byte(ts + " " + line)); err != nil {
			return total, err
		}
	}
	return total, nil
}

// terminalWriter wraps an io.Writer and exposes an Fd method so libraries that
// inspect the file descriptor (for TTY detection) can work with wrapped writers.
type terminalWriter struct {
	w  io.Writer
	fd uintptr
}

func (tw *terminalWriter) Write(p []byte) (int, error) { return tw.w.Write(p) }

// Fd exposes the underlying file descriptor (e.g., os.Stderr.Fd()).
func (tw *terminalWriter) Fd() uintptr { return tw.fd }

func main() {
	os.Exit(run())
}

func run() int {
	// CLI flags
	termsFlag := flag.String("go-terms", "", "comma-separated GO terms to search for (e.g. GO:0003677,0008150)")
	limitFlag := flag.Int("limit", 0, "maximum number of records to download")
	outFlag := flag.String("out", "sequences.jsonl", "destination path for downloaded records")
	formatFlag := flag.String("format", "", "output format: jsonl or fasta")
	aminoFlag := flag.Bool("amino-acids", false, "include amino acid translations")
	configFlag := flag.String("config", "", "path to config.json (optional)")
	concurrencyFlag := flag.Int("concurrency", 0, "number of concurrent page fetchers")
	qpsFlag := flag.Int("qps", 0, "maximum remote requests per second")
	pageSizeFlag := flag.Int("page-size", 0, "records requested per remote query page")
	retryFailedFlag := flag.Bool("retry-failed", false, "fetch only the pages the previous run against this destination failed")
	dryRun := flag.Bool("dry-run", false, "plan the run and exit without any network call or write")
	verbose := flag.Bool("verbose", false, "enable verbose (debug) logging")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println("gogetem", version)
		return exitOK
	}

	// load config (optional file)
	cfg, err := config.LoadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gogetem: cannot load config: %v\n", err)
		return exitFatal
	}

	// merge CLI flags into config (flags override config when provided)
	if *formatFlag != "" {
		cfg.OutputFormat = *formatFlag
	}
	if *concurrencyFlag > 0 {
		cfg.Concurrency = *concurrencyFlag
	}
	if *qpsFlag > 0 {
		cfg.QPS = *qpsFlag
	}
	if *pageSizeFlag > 0 {
		cfg.PageSize = *pageSizeFlag
	}
	if *aminoFlag {
		cfg.IncludeAminoAcid = true
	}

	logger := newLogger(cfg, *verbose)

	terms, err := goterm.NormalizeAll(splitTerms(*termsFlag))
	if err != nil {
		logger.Error("bad GO terms", "err", err)
		return exitFatal
	}
	if *limitFlag <= 0 {
		logger.Error("a positive -limit is required")
		return exitFatal
	}

	logger.Info("starting gogetem",
		"terms", strings.Join(terms, ","), "limit", *limitFlag, "out", *outFlag,
		"format", cfg.OutputFormat, "amino_acids", cfg.IncludeAminoAcid,
		"concurrency", cfg.Concurrency, "qps", cfg.QPS, "page_size", cfg.PageSize)

	// apply sequence cache config
	if cfg.EnaCachePath != "" {
		if absPath, aerr := filepath.Abs(cfg.EnaCachePath); aerr == nil {
			embl.SetCacheFilePath(absPath)
			logger.Debug("ena cache path set from config", "path", absPath)
		} else {
			embl.SetCacheFilePath(cfg.EnaCachePath)
		}
	}
	if cfg.EnaCacheTTLSecs > 0 {
		embl.SetCacheTTLSeconds(cfg.EnaCacheTTLSecs)
	}
	defer embl.FlushCache()

	opts := pipeline.Options{
		Terms:             terms,
		Limit:             *limitFlag,
		PageSize:          cfg.PageSize,
		Concurrency:       cfg.Concurrency,
		QPS:               cfg.QPS,
		IncludeAminoAcids: cfg.IncludeAminoAcid,
		Destination:       *outFlag,
		Format:            cfg.OutputFormat,
		Logger:            logger,
	}

	// open the run ledger when configured; it records failed pages so a later
	// -retry-failed invocation can target them
	var lgr *ledger.Ledger
	if cfg.LedgerPath != "" {
		lgr, err = ledger.Open(cfg.LedgerPath)
		if err != nil {
			logger.Error("cannot open run ledger", "path", cfg.LedgerPath, "err", err)
			return exitFatal
		}
		defer lgr.Close()
	}

	if *retryFailedFlag {
		if lgr == nil {
			logger.Error("-retry-failed requires a ledger_path in config")
			return exitFatal
		}
		failed, err := lgr.FailedPages(*outFlag)
		if err != nil {
			logger.Error("cannot read failed pages from ledger", "err", err)
			return exitFatal
		}
		if len(failed) == 0 {
			logger.Info("no failed pages recorded for this destination; nothing to retry")
			return exitOK
		}
		for _, fp := range failed {
			opts.Pages = append(opts.Pages, pipeline.QueryPage{Offset: fp.Offset, Limit: fp.Limit})
		}
		logger.Info("retrying failed pages", "pages", len(opts.Pages))
	}

	if *dryRun {
		logger.Info("dry-run: no network calls or writes will be made",
			"terms", strings.Join(terms, ","), "limit", *limitFlag, "out", *outFlag)
		return exitOK
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	discovery := uniprot.NewClient(cfg.SparqlEndpoint, cfg.MaxAttempts)
	sequences := embl.NewClient(cfg.EnaBaseURL, cfg.MaxAttempts)

	started := time.Now()
	sum, runErr := pipeline.New(discovery, sequences, opts).Run(ctx)

	if lgr != nil {
		recordRun(logger, lgr, terms, *limitFlag, *outFlag, started, sum)
	}

	logger.Info("run finished",
		"state", string(sum.State), "written", sum.Written, "skipped", sum.Skipped,
		"fetched", sum.Fetched, "resumed", sum.Resumed, "pages_failed", len(sum.FailedPages),
		"duration", time.Since(started).Round(time.Millisecond))

	for _, fp := range sum.FailedPages {
		logger.Warn("failed page", "offset", fp.Page.Offset, "limit", fp.Page.Limit, "cause", fp.Cause)
	}

	if runErr != nil {
		if sum.Written > 0 {
			logger.Error("run aborted after partial progress; destination is resumable", "err", runErr)
			return exitPartial
		}
		logger.Error("run failed", "err", runErr)
		return exitFatal
	}
	if sum.State == pipeline.StatePartial {
		logger.Warn("run partially complete; re-run with -retry-failed to target the failed pages")
		return exitPartial
	}
	return exitOK
}

func recordRun(logger *log.Logger, lgr *ledger.Ledger, terms []string, limit int, dest string, started time.Time, sum pipeline.Summary) {
	failed := make([]ledger.FailedPage, 0, len(sum.FailedPages))
	for _, fp := range sum.FailedPages {
		failed = append(failed, ledger.FailedPage{Offset: fp.Page.Offset, Limit: fp.Page.Limit, Cause: fp.Cause.Error()})
	}
	id, err := lgr.RecordRun(ledger.Run{
		Term:        strings.Join(terms, ","),
		Limit:       limit,
		Destination: dest,
		State:       string(sum.State),
		Written:     sum.Written,
		Skipped:     sum.Skipped,
		StartedAt:   started,
		FinishedAt:  time.Now(),
	}, failed)
	if err != nil {
		logger.Warn("could not record run in ledger", "err", err)
		return
	}
	logger.Debug("run recorded", "run_id", id)
}

func newLogger(cfg *config.Config, verbose bool) *log.Logger {
	var loggerOut io.Writer = os.Stderr
	if cfg.LogFile != "" {
		if f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			// write to both stderr and file so running interactively still shows logs
			loggerOut = io.MultiWriter(os.Stderr, f)
		}
	}
	// If stderr is a terminal-like device, force colors for libraries that honor FORCE_COLOR.
	if fi, err := os.Stderr.Stat(); err == nil {
		if fi.Mode()&os.ModeCharDevice != 0 {
			_ = os.Setenv("FORCE_COLOR", "1")
		}
	}
	tw := &timestampWriter{w: loggerOut}
	termW := &terminalWriter{w: tw, fd: os.Stderr.Fd()}
	logger := log.New(termW)

	if verbose {
		logger.SetLevel(log.DebugLevel)
		return logger
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info", "":
		logger.SetLevel(log.InfoLevel)
	case "warn", "warning":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
		logger.Warn("unknown log_level in config.json, defaulting to info", "provided", cfg.LogLevel)
	}
	return logger
}

func splitTerms(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
