package audit

import (
	"fmt"
	"testing"
	"time"

	"testops/internal/domain"
)

func TestRecordNewestFirst(t *testing.T) {
	l := NewLog()
	l.Record(Entry{Action: domain.ActionCreated, EntityType: domain.EntityTeam, EntityID: "team-1"})
	l.Record(Entry{Action: domain.ActionUpdated, EntityType: domain.EntityTeam, EntityID: "team-1"})
	l.Record(Entry{Action: domain.ActionDeleted, EntityType: domain.EntityTeam, EntityID: "team-1"})

	events := l.Recent(10)
	if len(events) != 3 {
		t.Fatalf("len = %d", len(events))
	}
	if events[0].Action != domain.ActionDeleted || events[2].Action != domain.ActionCreated {
		t.Fatalf("order = %s, %s, %s", events[0].Action, events[1].Action, events[2].Action)
	}
	for _, e := range events {
		if e.ID == "" || e.CreatedAt.IsZero() {
			t.Fatalf("event missing id or timestamp: %+v", e)
		}
	}
}

func TestBoundedAtMostRecentThousand(t *testing.T) {
	l := NewLog()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	i := 0
	l.Now = func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Second)
	}
	for n := 0; n < 1001; n++ {
		l.Record(Entry{
			Action:     domain.ActionUpdated,
			EntityType: domain.EntityEffort,
			EntityID:   fmt.Sprintf("effort-%d", n),
		})
	}
	if l.Len() != 1000 {
		t.Fatalf("len = %d, want 1000", l.Len())
	}
	// The newest entry survives at the head; the oldest was evicted.
	events := l.Recent(1000)
	if events[0].EntityID != "effort-1000" {
		t.Fatalf("head = %s", events[0].EntityID)
	}
	for _, e := range events {
		if e.EntityID == "effort-0" {
			t.Fatal("oldest event not evicted")
		}
	}
}

func TestByEntity(t *testing.T) {
	l := NewLog()
	l.Record(Entry{Action: domain.ActionCreated, EntityType: domain.EntityEffort, EntityID: "effort-1"})
	l.Record(Entry{Action: domain.ActionCreated, EntityType: domain.EntityTeam, EntityID: "team-1"})
	l.Record(Entry{Action: domain.ActionStatusChanged, EntityType: domain.EntityEffort, EntityID: "effort-1"})

	events := l.ByEntity(domain.EntityEffort, "effort-1")
	if len(events) != 2 {
		t.Fatalf("len = %d", len(events))
	}
	if events[0].Action != domain.ActionStatusChanged {
		t.Fatalf("not newest first: %s", events[0].Action)
	}
	if got := l.ByEntity(domain.EntityEffort, "effort-404"); len(got) != 0 {
		t.Fatalf("unknown entity = %d events", len(got))
	}
}

func TestRecentDefaultLimit(t *testing.T) {
	l := NewLog()
	for n := 0; n < 25; n++ {
		l.Record(Entry{Action: domain.ActionUpdated, EntityType: domain.EntityEffort, EntityID: "effort-1"})
	}
	if got := len(l.Recent(0)); got != 10 {
		t.Fatalf("default limit = %d, want 10", got)
	}
	if got := len(l.Recent(100)); got != 25 {
		t.Fatalf("over-limit = %d, want 25", got)
	}
}
