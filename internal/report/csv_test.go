package report

import (
	"strings"
	"testing"
	"time"

	"testops/internal/domain"
)

type mapNamer map[string]string

func (m mapNamer) NameOf(id string) string {
	if name, ok := m[id]; ok {
		return name
	}
	return domain.UnknownLabel
}

func testData() ([]domain.Sprint, []domain.TestEffort) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)
	sprints := []domain.Sprint{
		{ID: "sprint-1", Name: "Sprint 1"},
		{ID: "sprint-2", Name: "Sprint 2"},
	}
	efforts := []domain.TestEffort{
		{
			ID: "effort-1", SprintID: "sprint-1", TeamID: "team-1", TestTypeDefinitionID: "tt-1",
			Title: `Say "hello"`, Status: domain.StatusInProgress, Priority: domain.PriorityHigh,
			PlannedStartDate: &start, PlannedEndDate: &end, Progress: 40,
		},
		{
			ID: "effort-2", SprintID: "sprint-2", TeamID: "team-gone", TestTypeDefinitionID: "tt-1",
			Title: "Smoke", Status: domain.StatusPlanned, Priority: domain.PriorityLow,
		},
	}
	return sprints, efforts
}

func TestWriteCSV(t *testing.T) {
	sprints, efforts := testData()
	types := mapNamer{"tt-1": "Regression"}
	teams := mapNamer{"team-1": "QA Team"}

	var sb strings.Builder
	if err := WriteCSV(&sb, sprints, efforts, types, teams); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d:\n%s", len(lines), sb.String())
	}

	wantHeader := `"Sprint","Effort Title","Status","Type","Priority","Team","Start Date","End Date","Progress %"`
	if lines[0] != wantHeader {
		t.Fatalf("header = %s", lines[0])
	}

	// Every cell is quote-wrapped, embedded quotes are doubled, and dates
	// use the dashboard format.
	want := `"Sprint 1","Say ""hello""","in_progress","Regression","high","QA Team","Jan 05, 2026","Jan 09, 2026","40%"`
	if lines[1] != want {
		t.Fatalf("row 1 = %s", lines[1])
	}

	// Dangling team reference renders the Unknown sentinel; nil dates
	// render empty (still quoted).
	want = `"Sprint 2","Smoke","planned","Regression","low","Unknown","","","0%"`
	if lines[2] != want {
		t.Fatalf("row 2 = %s", lines[2])
	}
}

func TestWriteCSVGroupsBySprint(t *testing.T) {
	sprints, efforts := testData()
	// Efforts appear under their sprint in sprint order, so swapping the
	// sprint slice reorders the rows.
	sprints[0], sprints[1] = sprints[1], sprints[0]

	var sb strings.Builder
	if err := WriteCSV(&sb, sprints, efforts, mapNamer{}, mapNamer{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if !strings.HasPrefix(lines[1], `"Sprint 2"`) {
		t.Fatalf("row 1 = %s", lines[1])
	}
}

func TestSummarize(t *testing.T) {
	sprints := []domain.Sprint{{ID: "sprint-1", Name: "Sprint 1"}}
	efforts := []domain.TestEffort{
		{SprintID: "sprint-1", Status: domain.StatusPlanned},
		{SprintID: "sprint-1", Status: domain.StatusBlocked},
		{SprintID: "sprint-1", Status: domain.StatusDone},
		{SprintID: "sprint-1", Status: domain.StatusVerified},
		{SprintID: "other", Status: domain.StatusDone},
	}
	got := Summarize(sprints, efforts)
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}
	s := got[0]
	if s.Total != 4 || s.Planned != 1 || s.Blocked != 1 || s.Completed != 2 {
		t.Fatalf("summary = %+v", s)
	}
	if s.CompletionRate != 50 {
		t.Fatalf("completion rate = %v", s.CompletionRate)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, 2, 3, 15, 4, 5, 0, time.UTC)
	if got := FormatDate(d); got != "Feb 03, 2026" {
		t.Fatalf("FormatDate = %q", got)
	}
}
