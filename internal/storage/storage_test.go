package storage

import (
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"testops/internal/domain"
)

func discardAdapter(store Store) *Adapter {
	return NewAdapter(store, log.New(io.Discard, "", 0))
}

func TestRoundTripRehydratesDates(t *testing.T) {
	a := discardAdapter(NewMemory())
	planned := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	in := []domain.TestEffort{{
		ID:               "effort-1",
		Title:            "Nightly regression",
		Status:           domain.StatusInProgress,
		PlannedStartDate: &planned,
		CreatedAt:        planned,
		UpdatedAt:        planned,
		Blockers: []domain.EffortBlocker{{
			ID:        "blocker-1",
			EffortID:  "effort-1",
			Title:     "Env down",
			Severity:  domain.PriorityHigh,
			CreatedAt: planned.Add(time.Hour),
		}},
		Links: []domain.EffortLink{{
			ID:        "link-1",
			EffortID:  "effort-1",
			URL:       "https://wiki.example.com",
			CreatedAt: planned.Add(2 * time.Hour),
		}},
	}}

	Save(a, "testops.efforts", in)
	out := Load(a, "testops.efforts", []domain.TestEffort(nil))
	if len(out) != 1 {
		t.Fatalf("len = %d", len(out))
	}
	e := out[0]
	if !e.CreatedAt.Equal(planned) {
		t.Fatalf("created_at = %v", e.CreatedAt)
	}
	if e.PlannedStartDate == nil || !e.PlannedStartDate.Equal(planned) {
		t.Fatalf("planned_start_date = %v", e.PlannedStartDate)
	}
	// Dates on embedded sub-entities come back as real times too.
	if !e.Blockers[0].CreatedAt.Equal(planned.Add(time.Hour)) {
		t.Fatalf("blocker created_at = %v", e.Blockers[0].CreatedAt)
	}
	if !e.Links[0].CreatedAt.Equal(planned.Add(2 * time.Hour)) {
		t.Fatalf("link created_at = %v", e.Links[0].CreatedAt)
	}
	if a.Degraded() {
		t.Fatalf("adapter degraded: %v", a.LastError())
	}
}

func TestLoadFallbackOnAbsence(t *testing.T) {
	a := discardAdapter(NewMemory())
	fallback := []domain.Team{{ID: "team-1", Name: "QA Team"}}
	got := Load(a, "testops.teams", fallback)
	if len(got) != 1 || got[0].ID != "team-1" {
		t.Fatalf("fallback not used: %v", got)
	}
}

func TestLoadFallbackOnCorruptPayload(t *testing.T) {
	mem := NewMemory()
	if err := mem.Set("testops.teams", []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	a := discardAdapter(mem)
	fallback := []domain.Team{{ID: "team-1", Name: "QA Team"}}
	got := Load(a, "testops.teams", fallback)
	if len(got) != 1 || got[0].ID != "team-1" {
		t.Fatalf("fallback not used: %v", got)
	}
	// A decode failure is not a storage failure.
	if a.Degraded() {
		t.Fatal("adapter degraded after decode failure")
	}
}

// failingStore rejects every operation.
type failingStore struct{ err error }

func (f failingStore) Get(string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingStore) Set(string, []byte) error         { return f.err }
func (f failingStore) Delete(string) error              { return f.err }

func TestSaveFailureIsSwallowedButObservable(t *testing.T) {
	boom := errors.New("disk full")
	a := discardAdapter(failingStore{err: boom})

	// Save must not panic or surface the error.
	Save(a, "testops.teams", []domain.Team{{ID: "team-1"}})

	if !a.Degraded() {
		t.Fatal("adapter not degraded after write failure")
	}
	if !errors.Is(a.LastError(), boom) {
		t.Fatalf("last error = %v", a.LastError())
	}
}

func TestLoadFailureFallsBackAndDegrades(t *testing.T) {
	boom := errors.New("io error")
	a := discardAdapter(failingStore{err: boom})
	fallback := []domain.Team{{ID: "team-1"}}
	got := Load(a, "testops.teams", fallback)
	if len(got) != 1 {
		t.Fatalf("fallback not used: %v", got)
	}
	if !a.Degraded() {
		t.Fatal("adapter not degraded after read failure")
	}
}

func TestSQLiteStore(t *testing.T) {
	workspace := t.TempDir()
	db, err := OpenSQLite(workspace)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, ok, err := db.Get("missing"); err != nil || ok {
		t.Fatalf("get missing = %v ok=%v", err, ok)
	}
	if err := db.Set("k", []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := db.Set("k", []byte("v2")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	v, ok, err := db.Get("k")
	if err != nil || !ok || string(v) != "v2" {
		t.Fatalf("get = %q ok=%v err=%v", v, ok, err)
	}
	if err := db.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := db.Get("k"); ok {
		t.Fatal("key survived delete")
	}
}
