package store

import (
	"context"
	"sync"
	"time"

	"testops/internal/audit"
	"testops/internal/domain"
	"testops/internal/storage"
)

type SprintStore struct {
	deps *deps
	mu   sync.RWMutex

	sprints []domain.Sprint
}

type SprintCreate struct {
	PIID         string
	Name         string
	SprintNumber int
	StartDate    time.Time
	EndDate      time.Time
	Goal         string
}

type SprintPatch struct {
	Name         *string
	SprintNumber *int
	StartDate    *time.Time
	EndDate      *time.Time
	Goal         *string
	Archived     *bool
}

// SprintFilters narrows List results; nil applies no constraint.
type SprintFilters struct {
	PIID     *string
	Archived *bool
	Search   string
}

func (s *SprintStore) List(ctx context.Context, f SprintFilters) []domain.Sprint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Sprint
	for _, sp := range s.sprints {
		if f.PIID != nil && sp.PIID != *f.PIID {
			continue
		}
		if f.Archived != nil && sp.Archived != *f.Archived {
			continue
		}
		if f.Search != "" && !containsFold(sp.Name, f.Search) {
			continue
		}
		out = append(out, sp)
	}
	return out
}

func (s *SprintStore) Get(ctx context.Context, id string) (domain.Sprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sp := range s.sprints {
		if sp.ID == id {
			return sp, nil
		}
	}
	return domain.Sprint{}, ErrNotFound
}

func (s *SprintStore) NameOf(id string) string {
	if sp, err := s.Get(context.Background(), id); err == nil {
		return sp.Name
	}
	return domain.UnknownLabel
}

func (s *SprintStore) Create(ctx context.Context, actorID string, in SprintCreate) (domain.Sprint, error) {
	if in.Name == "" {
		return domain.Sprint{}, ValidationError{Field: "name", Reason: "required"}
	}
	if in.PIID == "" {
		return domain.Sprint{}, ValidationError{Field: "pi_id", Reason: "required"}
	}
	if !in.EndDate.After(in.StartDate) {
		return domain.Sprint{}, ValidationError{Field: "end_date", Reason: "must be after start_date"}
	}
	now := s.deps.clock()
	sp := domain.Sprint{
		ID:           s.deps.newID("sprint"),
		WorkspaceID:  s.deps.workspaceID,
		PIID:         in.PIID,
		Name:         in.Name,
		SprintNumber: in.SprintNumber,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Goal:         in.Goal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.mu.Lock()
	s.sprints = append(s.sprints, sp)
	s.persistLocked()
	s.mu.Unlock()
	s.deps.audit.Record(audit.Entry{
		WorkspaceID: s.deps.workspaceID,
		UserID:      actorID,
		Action:      domain.ActionCreated,
		EntityType:  domain.EntitySprint,
		EntityID:    sp.ID,
		EntityName:  sp.Name,
	})
	return sp, nil
}

func (s *SprintStore) Update(ctx context.Context, actorID, id string, p SprintPatch) (domain.Sprint, error) {
	s.mu.Lock()
	idx := -1
	for i := range s.sprints {
		if s.sprints[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return domain.Sprint{}, ErrNotFound
	}
	sp := s.sprints[idx]
	changes := map[string]domain.FieldChange{}
	if p.Name != nil && *p.Name != sp.Name {
		changes["name"] = domain.FieldChange{Old: sp.Name, New: *p.Name}
		sp.Name = *p.Name
	}
	if p.SprintNumber != nil && *p.SprintNumber != sp.SprintNumber {
		changes["sprint_number"] = domain.FieldChange{Old: sp.SprintNumber, New: *p.SprintNumber}
		sp.SprintNumber = *p.SprintNumber
	}
	if p.StartDate != nil && !p.StartDate.Equal(sp.StartDate) {
		changes["start_date"] = domain.FieldChange{Old: sp.StartDate, New: *p.StartDate}
		sp.StartDate = *p.StartDate
	}
	if p.EndDate != nil && !p.EndDate.Equal(sp.EndDate) {
		changes["end_date"] = domain.FieldChange{Old: sp.EndDate, New: *p.EndDate}
		sp.EndDate = *p.EndDate
	}
	if p.Goal != nil && *p.Goal != sp.Goal {
		changes["goal"] = domain.FieldChange{Old: sp.Goal, New: *p.Goal}
		sp.Goal = *p.Goal
	}
	archived := false
	if p.Archived != nil && *p.Archived != sp.Archived {
		changes["archived"] = domain.FieldChange{Old: sp.Archived, New: *p.Archived}
		sp.Archived = *p.Archived
		archived = *p.Archived
	}
	sp.UpdatedAt = s.deps.clock()
	s.sprints[idx] = sp
	s.persistLocked()
	s.mu.Unlock()

	action := domain.ActionUpdated
	if archived {
		action = domain.ActionArchived
	}
	if len(changes) > 0 {
		s.deps.audit.Record(audit.Entry{
			WorkspaceID: s.deps.workspaceID,
			UserID:      actorID,
			Action:      action,
			EntityType:  domain.EntitySprint,
			EntityID:    sp.ID,
			EntityName:  sp.Name,
			Changes:     changes,
		})
	}
	return sp, nil
}

func (s *SprintStore) Delete(ctx context.Context, actorID, id string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.sprints {
		if s.sprints[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	name := s.sprints[idx].Name
	s.sprints = append(s.sprints[:idx], s.sprints[idx+1:]...)
	s.persistLocked()
	s.mu.Unlock()
	s.deps.audit.Record(audit.Entry{
		WorkspaceID: s.deps.workspaceID,
		UserID:      actorID,
		Action:      domain.ActionDeleted,
		EntityType:  domain.EntitySprint,
		EntityID:    id,
		EntityName:  name,
	})
	return nil
}

func (s *SprintStore) persistLocked() {
	storage.Save(s.deps.adapter, KeySprints, s.sprints)
}
