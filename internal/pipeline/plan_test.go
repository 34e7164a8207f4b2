package pipeline

import (
	"errors"
	"testing"
)

func TestPlanPagination(t *testing.T) {
	cases := []struct {
		limit, pageSize int
		want            []QueryPage
	}{
		{5, 2, []QueryPage{{0, 2}, {2, 2}, {4, 1}}},
		{4, 2, []QueryPage{{0, 2}, {2, 2}}},
		{1, 100, []QueryPage{{0, 1}}},
		{100, 100, []QueryPage{{0, 100}}},
	}
	for _, c := range cases {
		got, err := plan(c.limit, c.pageSize)
		if err != nil {
			t.Fatalf("plan(%d, %d) error: %v", c.limit, c.pageSize, err)
		}
		if len(got) != len(c.want) {
			t.Fatalf("plan(%d, %d) = %v, want %v", c.limit, c.pageSize, got, c.want)
		}
		total := 0
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("plan(%d, %d) = %v, want %v", c.limit, c.pageSize, got, c.want)
			}
			total += got[i].Limit
		}
		if total != c.limit {
			t.Fatalf("pages request %d records, want exactly %d", total, c.limit)
		}
	}
}

func TestPlanCapsPageSize(t *testing.T) {
	got, err := plan(MaxPageSize+10, MaxPageSize*2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Limit != MaxPageSize || got[1].Limit != 10 {
		t.Fatalf("expected page size capped at %d, got %v", MaxPageSize, got)
	}
}

func TestPlanRejectsBadParameters(t *testing.T) {
	for _, c := range []struct{ limit, pageSize int }{{0, 10}, {-1, 10}, {10, 0}, {10, -5}} {
		_, err := plan(c.limit, c.pageSize)
		var ipe *InvalidParameterError
		if !errors.As(err, &ipe) {
			t.Fatalf("plan(%d, %d): expected InvalidParameterError, got %v", c.limit, c.pageSize, err)
		}
	}
}
