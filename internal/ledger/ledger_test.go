package ledger

import (
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecordAndLastRun(t *testing.T) {
	l := openTemp(t)

	now := time.Now().UTC().Truncate(time.Second)
	id, err := l.RecordRun(Run{
		Term:        "0003677",
		Limit:       50,
		Destination: "out.jsonl",
		State:       "complete",
		Written:     50,
		StartedAt:   now.Add(-time.Minute),
		FinishedAt:  now,
	}, nil)
	if err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated run id")
	}

	got, ok, err := l.LastRun("out.jsonl")
	if err != nil || !ok {
		t.Fatalf("LastRun failed: ok=%v err=%v", ok, err)
	}
	if got.ID != id || got.Term != "0003677" || got.Written != 50 || got.State != "complete" {
		t.Fatalf("unexpected run: %+v", got)
	}
	if !got.FinishedAt.Equal(now) {
		t.Fatalf("finished_at mismatch: %v vs %v", got.FinishedAt, now)
	}
}

func TestFailedPagesTargetsLatestRun(t *testing.T) {
	l := openTemp(t)
	base := time.Now().UTC().Truncate(time.Second)

	_, err := l.RecordRun(
		Run{Term: "0003677", Destination: "out.jsonl", State: "partial", StartedAt: base.Add(-2 * time.Hour), FinishedAt: base.Add(-time.Hour)},
		[]FailedPage{{Offset: 0, Limit: 100, Cause: "timeout"}},
	)
	if err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	_, err = l.RecordRun(
		Run{Term: "0003677", Destination: "out.jsonl", State: "partial", StartedAt: base.Add(-time.Minute), FinishedAt: base},
		[]FailedPage{{Offset: 200, Limit: 100, Cause: "parse failure"}, {Offset: 100, Limit: 100, Cause: "timeout"}},
	)
	if err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	pages, err := l.FailedPages("out.jsonl")
	if err != nil {
		t.Fatalf("FailedPages failed: %v", err)
	}
	if len(pages) != 2 || pages[0].Offset != 100 || pages[1].Offset != 200 {
		t.Fatalf("unexpected failed pages: %+v", pages)
	}
}

func TestFailedPagesNoRuns(t *testing.T) {
	l := openTemp(t)
	pages, err := l.FailedPages("never-seen.jsonl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 0 {
		t.Fatalf("expected no pages, got %+v", pages)
	}
}
