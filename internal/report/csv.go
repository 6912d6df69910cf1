// Package report renders derived, presentation-ready output: the sprint
// effort CSV export and per-sprint status summaries.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"testops/internal/domain"
)

// csvHeader is fixed; consumers depend on this column order.
var csvHeader = []string{
	"Sprint", "Effort Title", "Status", "Type", "Priority", "Team",
	"Start Date", "End Date", "Progress %",
}

// Namer resolves an entity ID to a display name, with an Unknown
// sentinel for dangling references.
type Namer interface {
	NameOf(id string) string
}

// FormatDate renders a date the way the dashboard did (e.g. "Jan 02, 2026").
func FormatDate(t time.Time) string {
	return t.Format("Jan 02, 2006")
}

// WriteCSV emits one row per (sprint, effort) pair. Every field is
// quote-wrapped; embedded quotes are doubled.
func WriteCSV(w io.Writer, sprints []domain.Sprint, efforts []domain.TestEffort, types, teams Namer) error {
	if err := writeRow(w, csvHeader); err != nil {
		return err
	}
	for _, sprint := range sprints {
		for _, e := range efforts {
			if e.SprintID != sprint.ID {
				continue
			}
			start, end := "", ""
			if e.PlannedStartDate != nil {
				start = FormatDate(*e.PlannedStartDate)
			}
			if e.PlannedEndDate != nil {
				end = FormatDate(*e.PlannedEndDate)
			}
			row := []string{
				sprint.Name,
				e.Title,
				string(e.Status),
				types.NameOf(e.TestTypeDefinitionID),
				string(e.Priority),
				teams.NameOf(e.TeamID),
				start,
				end,
				fmt.Sprintf("%d%%", e.Progress),
			}
			if err := writeRow(w, row); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeRow(w io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	_, err := io.WriteString(w, strings.Join(quoted, ",")+"\n")
	return err
}

// SprintSummary aggregates effort status counts for one sprint.
type SprintSummary struct {
	SprintID       string  `json:"sprint_id"`
	SprintName     string  `json:"sprint_name"`
	Total          int     `json:"total"`
	Planned        int     `json:"planned"`
	InProgress     int     `json:"in_progress"`
	Blocked        int     `json:"blocked"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
}

// Summarize computes per-sprint progress numbers for the report view.
func Summarize(sprints []domain.Sprint, efforts []domain.TestEffort) []SprintSummary {
	out := make([]SprintSummary, 0, len(sprints))
	for _, sprint := range sprints {
		sum := SprintSummary{SprintID: sprint.ID, SprintName: sprint.Name}
		for _, e := range efforts {
			if e.SprintID != sprint.ID {
				continue
			}
			sum.Total++
			switch e.Status {
			case domain.StatusPlanned:
				sum.Planned++
			case domain.StatusInProgress:
				sum.InProgress++
			case domain.StatusBlocked:
				sum.Blocked++
			case domain.StatusDone, domain.StatusVerified:
				sum.Completed++
			}
		}
		if sum.Total > 0 {
			sum.CompletionRate = float64(sum.Completed) / float64(sum.Total) * 100
		}
		out = append(out, sum)
	}
	return out
}
