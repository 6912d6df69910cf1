package store

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"testops/internal/audit"
	"testops/internal/domain"
	"testops/internal/storage"
)

func newTestStores(t *testing.T) *Stores {
	t.Helper()
	adapter := storage.NewAdapter(storage.NewMemory(), log.New(io.Discard, "", 0))
	return New(adapter, audit.NewLog(), Options{})
}

func newEmptyStores(t *testing.T) *Stores {
	t.Helper()
	adapter := storage.NewAdapter(storage.NewMemory(), log.New(io.Discard, "", 0))
	return New(adapter, audit.NewLog(), Options{SkipSeed: true})
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustReserve(t *testing.T, s *Stores, envID string, start, end time.Time) string {
	t.Helper()
	r, err := s.Environments.Reserve(context.Background(), "tester", ReservationCreate{
		EnvironmentID: envID,
		MemberID:      "member-1",
		StartDate:     start,
		EndDate:       end,
	})
	if err != nil {
		t.Fatalf("reserve %s [%s, %s): %v", envID, start, end, err)
	}
	return r.ID
}

func TestReservationConflictSemantics(t *testing.T) {
	s := newEmptyStores(t)
	ctx := context.Background()
	mustReserve(t, s, "env-1", date(2026, 1, 5), date(2026, 1, 10))

	cases := []struct {
		name     string
		envID    string
		start    time.Time
		end      time.Time
		conflict bool
	}{
		{"overlap tail", "env-1", date(2026, 1, 8), date(2026, 1, 12), true},
		{"overlap head", "env-1", date(2026, 1, 1), date(2026, 1, 6), true},
		{"contained", "env-1", date(2026, 1, 6), date(2026, 1, 7), true},
		{"containing", "env-1", date(2026, 1, 1), date(2026, 1, 20), true},
		{"identical", "env-1", date(2026, 1, 5), date(2026, 1, 10), true},
		{"touching end boundary", "env-1", date(2026, 1, 10), date(2026, 1, 12), false},
		{"touching start boundary", "env-1", date(2026, 1, 1), date(2026, 1, 5), false},
		{"zero-length inside", "env-1", date(2026, 1, 7), date(2026, 1, 7), false},
		{"other environment", "env-2", date(2026, 1, 5), date(2026, 1, 10), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Environments.HasConflict(tc.envID, tc.start, tc.end, "")
			if got != tc.conflict {
				t.Fatalf("HasConflict(%s, %s, %s) = %v, want %v", tc.envID, tc.start, tc.end, got, tc.conflict)
			}
			_, err := s.Environments.Reserve(ctx, "tester", ReservationCreate{
				EnvironmentID: tc.envID,
				MemberID:      "member-1",
				StartDate:     tc.start,
				EndDate:       tc.end,
			})
			var ce ConflictError
			if tc.conflict {
				if !errors.As(err, &ce) {
					t.Fatalf("Reserve: got err %v, want ConflictError", err)
				}
			} else {
				if err != nil {
					t.Fatalf("Reserve: %v", err)
				}
			}
		})
	}
}

func TestConflictCheckAbortsBeforeMutation(t *testing.T) {
	s := newEmptyStores(t)
	ctx := context.Background()
	mustReserve(t, s, "env-1", date(2026, 1, 5), date(2026, 1, 10))

	_, err := s.Environments.Reserve(ctx, "tester", ReservationCreate{
		EnvironmentID: "env-1",
		MemberID:      "member-2",
		StartDate:     date(2026, 1, 9),
		EndDate:       date(2026, 1, 11),
	})
	if err == nil {
		t.Fatal("expected conflict")
	}
	if got := len(s.Environments.Reservations(ctx, "")); got != 1 {
		t.Fatalf("reservations after rejected create = %d, want 1", got)
	}
}

func TestUpdateReservationExcludesSelf(t *testing.T) {
	s := newEmptyStores(t)
	ctx := context.Background()
	id := mustReserve(t, s, "env-1", date(2026, 1, 5), date(2026, 1, 10))
	mustReserve(t, s, "env-1", date(2026, 1, 10), date(2026, 1, 15))

	// Shrinking inside its own original window must not self-collide.
	newEnd := date(2026, 1, 9)
	r, err := s.Environments.UpdateReservation(ctx, "tester", id, ReservationPatch{EndDate: &newEnd})
	if err != nil {
		t.Fatalf("shrink: %v", err)
	}
	if !r.EndDate.Equal(newEnd) {
		t.Fatalf("end = %s, want %s", r.EndDate, newEnd)
	}

	// Extending into the neighbour does collide.
	badEnd := date(2026, 1, 12)
	_, err = s.Environments.UpdateReservation(ctx, "tester", id, ReservationPatch{EndDate: &badEnd})
	var ce ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("extend: got err %v, want ConflictError", err)
	}
}

func TestReserveValidation(t *testing.T) {
	s := newEmptyStores(t)
	ctx := context.Background()

	_, err := s.Environments.Reserve(ctx, "tester", ReservationCreate{
		MemberID:  "member-1",
		StartDate: date(2026, 1, 5),
		EndDate:   date(2026, 1, 10),
	})
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Field != "environment_id" {
		t.Fatalf("missing environment: got %v", err)
	}

	_, err = s.Environments.Reserve(ctx, "tester", ReservationCreate{
		EnvironmentID: "env-1",
		MemberID:      "member-1",
		StartDate:     date(2026, 1, 10),
		EndDate:       date(2026, 1, 5),
	})
	if !errors.As(err, &ve) || ve.Field != "end_date" {
		t.Fatalf("inverted interval: got %v", err)
	}
}

func TestConnectCanonicalizesPair(t *testing.T) {
	s := newEmptyStores(t)
	ctx := context.Background()

	c1, err := s.Environments.Connect(ctx, "tester", "env-2", "env-1")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if c1.FromEnvironmentID != "env-1" || c1.ToEnvironmentID != "env-2" {
		t.Fatalf("pair not canonicalized: %s -> %s", c1.FromEnvironmentID, c1.ToEnvironmentID)
	}
	if c1.Direction != "bidirectional" {
		t.Fatalf("direction = %q", c1.Direction)
	}

	// Same pair in either order is a no-op returning the existing record.
	c2, err := s.Environments.Connect(ctx, "tester", "env-1", "env-2")
	if err != nil {
		t.Fatalf("connect duplicate: %v", err)
	}
	if c2.ID != c1.ID {
		t.Fatalf("duplicate created new connection %s", c2.ID)
	}
	if got := len(s.Environments.Connections(ctx)); got != 1 {
		t.Fatalf("connections = %d, want 1", got)
	}

	if _, err := s.Environments.Connect(ctx, "tester", "env-1", "env-1"); err == nil {
		t.Fatal("self-connection accepted")
	}
}

func TestEnvironmentHealthUpdate(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	red := domain.HealthRed
	reason := "disk full"
	e, err := s.Environments.Update(ctx, "tester", "env-1", EnvironmentPatch{
		Health:       &red,
		HealthReason: &reason,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if e.Health != red || e.HealthReason != reason {
		t.Fatalf("health = %s reason = %q", e.Health, e.HealthReason)
	}
	if e.HealthUpdatedAt == nil {
		t.Fatal("health_updated_at not set")
	}
}
