package store

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"testops/internal/audit"
	"testops/internal/storage"
)

func TestSeedFallbackThenPersistedState(t *testing.T) {
	adapter := storage.NewAdapter(storage.NewMemory(), log.New(io.Discard, "", 0))
	ctx := context.Background()

	s1 := New(adapter, audit.NewLog(), Options{})
	if got := len(s1.Teams.List(ctx)); got != 2 {
		t.Fatalf("seeded teams = %d", got)
	}

	created, err := s1.Teams.Create(ctx, "tester", TeamCreate{Name: "Perf Team"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A second composition over the same backing store sees the persisted
	// collection, not the seed.
	s2 := New(adapter, audit.NewLog(), Options{})
	teams := s2.Teams.List(ctx)
	if len(teams) != 3 {
		t.Fatalf("reloaded teams = %d", len(teams))
	}
	got, err := s2.Teams.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get reloaded: %v", err)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at lost in round trip: %v != %v", got.CreatedAt, created.CreatedAt)
	}
}

func TestSkipSeedStartsEmpty(t *testing.T) {
	s := newEmptyStores(t)
	ctx := context.Background()
	if got := len(s.Teams.List(ctx)); got != 0 {
		t.Fatalf("teams = %d", got)
	}
	if got := len(s.Efforts.List(ctx, EffortFilters{})); got != 0 {
		t.Fatalf("efforts = %d", got)
	}
}

func TestInjectableClock(t *testing.T) {
	adapter := storage.NewAdapter(storage.NewMemory(), log.New(io.Discard, "", 0))
	frozen := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	s := New(adapter, audit.NewLog(), Options{Now: func() time.Time { return frozen }})

	team, err := s.Teams.Create(context.Background(), "tester", TeamCreate{Name: "Frozen"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !team.CreatedAt.Equal(frozen) {
		t.Fatalf("created_at = %v", team.CreatedAt)
	}
	if evt := s.Audit.Recent(1)[0]; !evt.CreatedAt.Equal(frozen) {
		t.Fatalf("audit created_at = %v", evt.CreatedAt)
	}
}

func TestCurrentPI(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	inside := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	pi, ok := s.PIs.Current(ctx, inside)
	if !ok || pi.ID != "pi-1" {
		t.Fatalf("current = %v ok=%v", pi.ID, ok)
	}

	gap := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	if _, ok := s.PIs.Current(ctx, gap); ok {
		t.Fatal("found a PI in the gap")
	}
}
