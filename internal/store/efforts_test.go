package store

import (
	"context"
	"errors"
	"testing"

	"testops/internal/domain"
)

func TestEffortFilterIdentity(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	all := s.Efforts.List(ctx, EffortFilters{})
	if len(all) != 4 {
		t.Fatalf("unfiltered list = %d efforts, want 4", len(all))
	}

	blocked := domain.StatusBlocked
	got := s.Efforts.List(ctx, EffortFilters{Status: &blocked})
	if len(got) != 1 || got[0].ID != "effort-4" {
		t.Fatalf("blocked filter = %v", ids(got))
	}

	team := "team-1"
	got = s.Efforts.List(ctx, EffortFilters{TeamID: &team, Status: &blocked})
	if len(got) != 1 || got[0].ID != "effort-4" {
		t.Fatalf("team+status filter = %v", ids(got))
	}

	// An explicit pointer to a value nothing matches is a real constraint,
	// not an identity predicate.
	missing := "team-nope"
	if got := s.Efforts.List(ctx, EffortFilters{TeamID: &missing}); len(got) != 0 {
		t.Fatalf("missing team filter = %v", ids(got))
	}
}

func TestEffortSearchCaseInsensitive(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	got := s.Efforts.List(ctx, EffortFilters{Search: "REGRESSION"})
	if len(got) != 1 || got[0].ID != "effort-1" {
		t.Fatalf("search = %v", ids(got))
	}
	if got := s.Efforts.List(ctx, EffortFilters{Search: "zzz"}); len(got) != 0 {
		t.Fatalf("no-match search = %v", ids(got))
	}
}

func TestEffortFilterEmptyInput(t *testing.T) {
	s := newEmptyStores(t)
	if got := s.Efforts.List(context.Background(), EffortFilters{}); len(got) != 0 {
		t.Fatalf("empty collection list = %v", ids(got))
	}
}

func TestEffortStatusChangeAudited(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	st := domain.StatusDone
	if _, err := s.Efforts.Update(ctx, "member-1", "effort-1", EffortPatch{Status: &st}); err != nil {
		t.Fatalf("update: %v", err)
	}
	events := s.Audit.Recent(1)
	if len(events) != 1 {
		t.Fatalf("no audit event recorded")
	}
	e := events[0]
	if e.Action != domain.ActionStatusChanged || e.EntityID != "effort-1" || e.UserID != "member-1" {
		t.Fatalf("event = %+v", e)
	}
	ch, ok := e.Changes["status"]
	if !ok {
		t.Fatalf("no status change recorded: %v", e.Changes)
	}
	if ch.Old != domain.StatusInProgress || ch.New != domain.StatusDone {
		t.Fatalf("status change = %v -> %v", ch.Old, ch.New)
	}
}

func TestEffortAssignmentAudited(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	assignee := "member-3"
	if _, err := s.Efforts.Update(ctx, "member-1", "effort-2", EffortPatch{AssigneeID: &assignee}); err != nil {
		t.Fatalf("update: %v", err)
	}
	e := s.Audit.Recent(1)[0]
	if e.Action != domain.ActionAssigned {
		t.Fatalf("action = %s, want assigned", e.Action)
	}
}

func TestEffortCreateDefaults(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	e, err := s.Efforts.Create(ctx, "tester", EffortCreate{
		Title:    "Exploratory session",
		SprintID: "sprint-1",
		TeamID:   "team-1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.Status != domain.StatusPlanned {
		t.Fatalf("status = %s, want planned", e.Status)
	}
	if e.Priority != domain.PriorityMedium {
		t.Fatalf("priority = %s, want medium", e.Priority)
	}

	_, err = s.Efforts.Create(ctx, "tester", EffortCreate{SprintID: "sprint-1", TeamID: "team-1"})
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Field != "title" {
		t.Fatalf("missing title: got %v", err)
	}
}

func TestEffortProgressBounds(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	bad := 101
	_, err := s.Efforts.Update(ctx, "tester", "effort-1", EffortPatch{Progress: &bad})
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Field != "progress" {
		t.Fatalf("progress 101: got %v", err)
	}
	ok := 100
	e, err := s.Efforts.Update(ctx, "tester", "effort-1", EffortPatch{Progress: &ok})
	if err != nil || e.Progress != 100 {
		t.Fatalf("progress 100: %v %d", err, e.Progress)
	}
}

func TestEffortBlockersAndLinks(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	b, err := s.Efforts.AddBlocker(ctx, "tester", "effort-1", "Env down", "", "environment", domain.PriorityHigh)
	if err != nil {
		t.Fatalf("add blocker: %v", err)
	}
	e, _ := s.Efforts.Get(ctx, "effort-1")
	if len(e.Blockers) != 1 || e.Blockers[0].ID != b.ID {
		t.Fatalf("blockers = %+v", e.Blockers)
	}
	if err := s.Efforts.RemoveBlocker(ctx, "tester", "effort-1", b.ID); err != nil {
		t.Fatalf("remove blocker: %v", err)
	}
	e, _ = s.Efforts.Get(ctx, "effort-1")
	if len(e.Blockers) != 0 {
		t.Fatalf("blockers after remove = %+v", e.Blockers)
	}

	l, err := s.Efforts.AddLink(ctx, "tester", "effort-1", "Test plan", "https://wiki.example.com/plan", "wiki")
	if err != nil {
		t.Fatalf("add link: %v", err)
	}
	if err := s.Efforts.RemoveLink(ctx, "tester", "effort-1", l.ID); err != nil {
		t.Fatalf("remove link: %v", err)
	}
	if _, err := s.Efforts.AddLink(ctx, "tester", "effort-1", "no url", "", ""); err == nil {
		t.Fatal("link without url accepted")
	}
}

func TestDeleteLeavesDanglingReferences(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	if err := s.Teams.Delete(ctx, "tester", "team-1"); err != nil {
		t.Fatalf("delete team: %v", err)
	}
	// No cascade: efforts keep the stale team id and display resolves to
	// the Unknown sentinel.
	e, err := s.Efforts.Get(ctx, "effort-1")
	if err != nil {
		t.Fatalf("get effort: %v", err)
	}
	if e.TeamID != "team-1" {
		t.Fatalf("team id rewritten to %q", e.TeamID)
	}
	if got := s.Teams.NameOf(e.TeamID); got != domain.UnknownLabel {
		t.Fatalf("NameOf dangling team = %q, want %q", got, domain.UnknownLabel)
	}
}

func ids(efforts []domain.TestEffort) []string {
	out := make([]string, len(efforts))
	for i, e := range efforts {
		out[i] = e.ID
	}
	return out
}
