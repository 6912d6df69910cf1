package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"testops/internal/audit"
	"testops/internal/domain"
	"testops/internal/storage"
)

type EffortStore struct {
	deps *deps
	mu   sync.RWMutex

	efforts []domain.TestEffort
}

type EffortCreate struct {
	PIID                 string
	SprintID             string
	TeamID               string
	TestTypeDefinitionID string
	Title                string
	Description          string
	Priority             domain.Priority
	AssigneeID           string
	EnvironmentIDs       []string
	PlannedStartDate     *time.Time
	PlannedEndDate       *time.Time
	Estimate             int
	EstimateUnit         string
	Tags                 []string
}

type EffortPatch struct {
	Title            *string
	Description      *string
	Status           *domain.Status
	Priority         *domain.Priority
	AssigneeID       *string
	EnvironmentIDs   *[]string
	PlannedStartDate *time.Time
	PlannedEndDate   *time.Time
	ActualStartDate  *time.Time
	ActualEndDate    *time.Time
	Estimate         *int
	EstimateUnit     *string
	Progress         *int
	Tags             *[]string
	SprintID         *string
	TeamID           *string
}

// EffortFilters is the filter specification for List. A nil pointer is the
// identity predicate for that field; a pointer to an empty string is a real
// constraint. Search matches the title as a case-insensitive substring.
type EffortFilters struct {
	PIID       *string
	SprintID   *string
	TeamID     *string
	AssigneeID *string
	Status     *domain.Status
	TestTypeID *string
	Search     string
}

func (f EffortFilters) match(e domain.TestEffort) bool {
	if f.PIID != nil && e.PIID != *f.PIID {
		return false
	}
	if f.SprintID != nil && e.SprintID != *f.SprintID {
		return false
	}
	if f.TeamID != nil && e.TeamID != *f.TeamID {
		return false
	}
	if f.AssigneeID != nil && e.AssigneeID != *f.AssigneeID {
		return false
	}
	if f.Status != nil && e.Status != *f.Status {
		return false
	}
	if f.TestTypeID != nil && e.TestTypeDefinitionID != *f.TestTypeID {
		return false
	}
	if f.Search != "" && !containsFold(e.Title, f.Search) {
		return false
	}
	return true
}

// List returns efforts matching every set predicate, in insertion order.
func (s *EffortStore) List(ctx context.Context, f EffortFilters) []domain.TestEffort {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.TestEffort
	for _, e := range s.efforts {
		if f.match(e) {
			out = append(out, e)
		}
	}
	return out
}

func (s *EffortStore) Get(ctx context.Context, id string) (domain.TestEffort, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.efforts {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.TestEffort{}, ErrNotFound
}

func (s *EffortStore) Create(ctx context.Context, actorID string, in EffortCreate) (domain.TestEffort, error) {
	if in.Title == "" {
		return domain.TestEffort{}, ValidationError{Field: "title", Reason: "required"}
	}
	if in.SprintID == "" {
		return domain.TestEffort{}, ValidationError{Field: "sprint_id", Reason: "required"}
	}
	if in.TeamID == "" {
		return domain.TestEffort{}, ValidationError{Field: "team_id", Reason: "required"}
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	now := s.deps.clock()
	e := domain.TestEffort{
		ID:                   s.deps.newID("effort"),
		WorkspaceID:          s.deps.workspaceID,
		PIID:                 in.PIID,
		SprintID:             in.SprintID,
		TeamID:               in.TeamID,
		TestTypeDefinitionID: in.TestTypeDefinitionID,
		Title:                in.Title,
		Description:          in.Description,
		Status:               domain.StatusPlanned,
		Priority:             priority,
		AssigneeID:           in.AssigneeID,
		EnvironmentIDs:       in.EnvironmentIDs,
		PlannedStartDate:     in.PlannedStartDate,
		PlannedEndDate:       in.PlannedEndDate,
		Estimate:             in.Estimate,
		EstimateUnit:         in.EstimateUnit,
		Tags:                 in.Tags,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	s.mu.Lock()
	s.efforts = append(s.efforts, e)
	s.persistLocked()
	s.mu.Unlock()
	s.deps.audit.Record(audit.Entry{
		WorkspaceID: s.deps.workspaceID,
		UserID:      actorID,
		Action:      domain.ActionCreated,
		EntityType:  domain.EntityEffort,
		EntityID:    e.ID,
		EntityName:  e.Title,
	})
	return e, nil
}

// Update merges a partial update. Status changes are audited as
// status_changed and assignee changes as assigned; anything else as a
// plain update with a field-level before/after map.
func (s *EffortStore) Update(ctx context.Context, actorID, id string, p EffortPatch) (domain.TestEffort, error) {
	s.mu.Lock()
	idx := -1
	for i := range s.efforts {
		if s.efforts[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return domain.TestEffort{}, ErrNotFound
	}
	e := s.efforts[idx]
	changes := map[string]domain.FieldChange{}
	statusChanged := false
	assigned := false

	if p.Title != nil && *p.Title != e.Title {
		if *p.Title == "" {
			s.mu.Unlock()
			return domain.TestEffort{}, ValidationError{Field: "title", Reason: "required"}
		}
		changes["title"] = domain.FieldChange{Old: e.Title, New: *p.Title}
		e.Title = *p.Title
	}
	if p.Description != nil && *p.Description != e.Description {
		changes["description"] = domain.FieldChange{Old: e.Description, New: *p.Description}
		e.Description = *p.Description
	}
	if p.Status != nil && *p.Status != e.Status {
		changes["status"] = domain.FieldChange{Old: e.Status, New: *p.Status}
		e.Status = *p.Status
		statusChanged = true
	}
	if p.Priority != nil && *p.Priority != e.Priority {
		changes["priority"] = domain.FieldChange{Old: e.Priority, New: *p.Priority}
		e.Priority = *p.Priority
	}
	if p.AssigneeID != nil && *p.AssigneeID != e.AssigneeID {
		changes["assignee_id"] = domain.FieldChange{Old: e.AssigneeID, New: *p.AssigneeID}
		e.AssigneeID = *p.AssigneeID
		assigned = true
	}
	if p.EnvironmentIDs != nil {
		changes["environment_ids"] = domain.FieldChange{Old: e.EnvironmentIDs, New: *p.EnvironmentIDs}
		e.EnvironmentIDs = *p.EnvironmentIDs
	}
	if p.PlannedStartDate != nil {
		changes["planned_start_date"] = domain.FieldChange{Old: e.PlannedStartDate, New: *p.PlannedStartDate}
		e.PlannedStartDate = p.PlannedStartDate
	}
	if p.PlannedEndDate != nil {
		changes["planned_end_date"] = domain.FieldChange{Old: e.PlannedEndDate, New: *p.PlannedEndDate}
		e.PlannedEndDate = p.PlannedEndDate
	}
	if p.ActualStartDate != nil {
		changes["actual_start_date"] = domain.FieldChange{Old: e.ActualStartDate, New: *p.ActualStartDate}
		e.ActualStartDate = p.ActualStartDate
	}
	if p.ActualEndDate != nil {
		changes["actual_end_date"] = domain.FieldChange{Old: e.ActualEndDate, New: *p.ActualEndDate}
		e.ActualEndDate = p.ActualEndDate
	}
	if p.Estimate != nil && *p.Estimate != e.Estimate {
		changes["estimate"] = domain.FieldChange{Old: e.Estimate, New: *p.Estimate}
		e.Estimate = *p.Estimate
	}
	if p.EstimateUnit != nil && *p.EstimateUnit != e.EstimateUnit {
		changes["estimate_unit"] = domain.FieldChange{Old: e.EstimateUnit, New: *p.EstimateUnit}
		e.EstimateUnit = *p.EstimateUnit
	}
	if p.Progress != nil && *p.Progress != e.Progress {
		if *p.Progress < 0 || *p.Progress > 100 {
			s.mu.Unlock()
			return domain.TestEffort{}, ValidationError{Field: "progress", Reason: "must be between 0 and 100"}
		}
		changes["progress"] = domain.FieldChange{Old: e.Progress, New: *p.Progress}
		e.Progress = *p.Progress
	}
	if p.Tags != nil {
		changes["tags"] = domain.FieldChange{Old: e.Tags, New: *p.Tags}
		e.Tags = *p.Tags
	}
	if p.SprintID != nil && *p.SprintID != e.SprintID {
		changes["sprint_id"] = domain.FieldChange{Old: e.SprintID, New: *p.SprintID}
		e.SprintID = *p.SprintID
	}
	if p.TeamID != nil && *p.TeamID != e.TeamID {
		changes["team_id"] = domain.FieldChange{Old: e.TeamID, New: *p.TeamID}
		e.TeamID = *p.TeamID
	}
	e.UpdatedAt = s.deps.clock()
	s.efforts[idx] = e
	s.persistLocked()
	s.mu.Unlock()

	if len(changes) > 0 {
		action := domain.ActionUpdated
		switch {
		case statusChanged:
			action = domain.ActionStatusChanged
		case assigned:
			action = domain.ActionAssigned
		}
		s.deps.audit.Record(audit.Entry{
			WorkspaceID: s.deps.workspaceID,
			UserID:      actorID,
			Action:      action,
			EntityType:  domain.EntityEffort,
			EntityID:    e.ID,
			EntityName:  e.Title,
			Changes:     changes,
		})
	}
	return e, nil
}

func (s *EffortStore) Delete(ctx context.Context, actorID, id string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.efforts {
		if s.efforts[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	title := s.efforts[idx].Title
	s.efforts = append(s.efforts[:idx], s.efforts[idx+1:]...)
	s.persistLocked()
	s.mu.Unlock()
	s.deps.audit.Record(audit.Entry{
		WorkspaceID: s.deps.workspaceID,
		UserID:      actorID,
		Action:      domain.ActionDeleted,
		EntityType:  domain.EntityEffort,
		EntityID:    id,
		EntityName:  title,
	})
	return nil
}

// AddBlocker attaches a blocker to an effort.
func (s *EffortStore) AddBlocker(ctx context.Context, actorID, effortID, title, description, category string, severity domain.Priority) (domain.EffortBlocker, error) {
	if title == "" {
		return domain.EffortBlocker{}, ValidationError{Field: "title", Reason: "required"}
	}
	s.mu.Lock()
	idx := -1
	for i := range s.efforts {
		if s.efforts[i].ID == effortID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return domain.EffortBlocker{}, ErrNotFound
	}
	b := domain.EffortBlocker{
		ID:          s.deps.newID("blocker"),
		EffortID:    effortID,
		Title:       title,
		Description: description,
		Category:    category,
		Severity:    severity,
		CreatedAt:   s.deps.clock(),
	}
	s.efforts[idx].Blockers = append(s.efforts[idx].Blockers, b)
	s.efforts[idx].UpdatedAt = b.CreatedAt
	s.persistLocked()
	name := s.efforts[idx].Title
	s.mu.Unlock()
	s.deps.audit.Record(audit.Entry{
		WorkspaceID: s.deps.workspaceID,
		UserID:      actorID,
		Action:      domain.ActionUpdated,
		EntityType:  domain.EntityEffort,
		EntityID:    effortID,
		EntityName:  name,
		Description: "blocker added: " + title,
	})
	return b, nil
}

func (s *EffortStore) RemoveBlocker(ctx context.Context, actorID, effortID, blockerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.efforts {
		if s.efforts[i].ID != effortID {
			continue
		}
		for j, b := range s.efforts[i].Blockers {
			if b.ID == blockerID {
				s.efforts[i].Blockers = append(s.efforts[i].Blockers[:j], s.efforts[i].Blockers[j+1:]...)
				s.efforts[i].UpdatedAt = s.deps.clock()
				s.persistLocked()
				return nil
			}
		}
		return ErrNotFound
	}
	return ErrNotFound
}

// AddLink attaches an external link to an effort.
func (s *EffortStore) AddLink(ctx context.Context, actorID, effortID, title, url, linkType string) (domain.EffortLink, error) {
	if url == "" {
		return domain.EffortLink{}, ValidationError{Field: "url", Reason: "required"}
	}
	s.mu.Lock()
	idx := -1
	for i := range s.efforts {
		if s.efforts[i].ID == effortID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return domain.EffortLink{}, ErrNotFound
	}
	l := domain.EffortLink{
		ID:        s.deps.newID("link"),
		EffortID:  effortID,
		Title:     title,
		URL:       url,
		Type:      linkType,
		CreatedAt: s.deps.clock(),
	}
	s.efforts[idx].Links = append(s.efforts[idx].Links, l)
	s.efforts[idx].UpdatedAt = l.CreatedAt
	s.persistLocked()
	s.mu.Unlock()
	return l, nil
}

func (s *EffortStore) RemoveLink(ctx context.Context, actorID, effortID, linkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.efforts {
		if s.efforts[i].ID != effortID {
			continue
		}
		for j, l := range s.efforts[i].Links {
			if l.ID == linkID {
				s.efforts[i].Links = append(s.efforts[i].Links[:j], s.efforts[i].Links[j+1:]...)
				s.efforts[i].UpdatedAt = s.deps.clock()
				s.persistLocked()
				return nil
			}
		}
		return ErrNotFound
	}
	return ErrNotFound
}

// CountByStatus summarizes efforts per status for reports.
func (s *EffortStore) CountByStatus(ctx context.Context, f EffortFilters) map[domain.Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := map[domain.Status]int{}
	for _, e := range s.efforts {
		if f.match(e) {
			res[e.Status]++
		}
	}
	return res
}

func (s *EffortStore) persistLocked() {
	storage.Save(s.deps.adapter, KeyEfforts, s.efforts)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
