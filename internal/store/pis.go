package store

import (
	"context"
	"sync"
	"time"

	"testops/internal/audit"
	"testops/internal/domain"
	"testops/internal/storage"
)

type PIStore struct {
	deps *deps
	mu   sync.RWMutex

	pis []domain.ProgramIncrement
}

type PICreate struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Goal      string
}

type PIPatch struct {
	Name      *string
	StartDate *time.Time
	EndDate   *time.Time
	Goal      *string
	Archived  *bool
}

func (s *PIStore) List(ctx context.Context) []domain.ProgramIncrement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ProgramIncrement, len(s.pis))
	copy(out, s.pis)
	return out
}

func (s *PIStore) Get(ctx context.Context, id string) (domain.ProgramIncrement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.pis {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.ProgramIncrement{}, ErrNotFound
}

func (s *PIStore) NameOf(id string) string {
	if p, err := s.Get(context.Background(), id); err == nil {
		return p.Name
	}
	return domain.UnknownLabel
}

// Current returns the PI whose date range contains now, if any.
func (s *PIStore) Current(ctx context.Context, now time.Time) (domain.ProgramIncrement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.pis {
		if p.Archived {
			continue
		}
		if !now.Before(p.StartDate) && now.Before(p.EndDate) {
			return p, true
		}
	}
	return domain.ProgramIncrement{}, false
}

func (s *PIStore) Create(ctx context.Context, actorID string, in PICreate) (domain.ProgramIncrement, error) {
	if in.Name == "" {
		return domain.ProgramIncrement{}, ValidationError{Field: "name", Reason: "required"}
	}
	if !in.EndDate.After(in.StartDate) {
		return domain.ProgramIncrement{}, ValidationError{Field: "end_date", Reason: "must be after start_date"}
	}
	now := s.deps.clock()
	p := domain.ProgramIncrement{
		ID:          s.deps.newID("pi"),
		WorkspaceID: s.deps.workspaceID,
		Name:        in.Name,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Goal:        in.Goal,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.mu.Lock()
	s.pis = append(s.pis, p)
	s.persistLocked()
	s.mu.Unlock()
	s.deps.audit.Record(audit.Entry{
		WorkspaceID: s.deps.workspaceID,
		UserID:      actorID,
		Action:      domain.ActionCreated,
		EntityType:  domain.EntityPI,
		EntityID:    p.ID,
		EntityName:  p.Name,
	})
	return p, nil
}

func (s *PIStore) Update(ctx context.Context, actorID, id string, patch PIPatch) (domain.ProgramIncrement, error) {
	s.mu.Lock()
	idx := -1
	for i := range s.pis {
		if s.pis[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return domain.ProgramIncrement{}, ErrNotFound
	}
	p := s.pis[idx]
	changes := map[string]domain.FieldChange{}
	if patch.Name != nil && *patch.Name != p.Name {
		changes["name"] = domain.FieldChange{Old: p.Name, New: *patch.Name}
		p.Name = *patch.Name
	}
	if patch.StartDate != nil && !patch.StartDate.Equal(p.StartDate) {
		changes["start_date"] = domain.FieldChange{Old: p.StartDate, New: *patch.StartDate}
		p.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil && !patch.EndDate.Equal(p.EndDate) {
		changes["end_date"] = domain.FieldChange{Old: p.EndDate, New: *patch.EndDate}
		p.EndDate = *patch.EndDate
	}
	if patch.Goal != nil && *patch.Goal != p.Goal {
		changes["goal"] = domain.FieldChange{Old: p.Goal, New: *patch.Goal}
		p.Goal = *patch.Goal
	}
	archived := false
	if patch.Archived != nil && *patch.Archived != p.Archived {
		changes["archived"] = domain.FieldChange{Old: p.Archived, New: *patch.Archived}
		p.Archived = *patch.Archived
		archived = *patch.Archived
	}
	p.UpdatedAt = s.deps.clock()
	s.pis[idx] = p
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
			EntityType:  domain.EntityPI,
			EntityID:    p.ID,
			EntityName:  p.Name,
			Changes:     changes,
		})
	}
	return p, nil
}

func (s *PIStore) Delete(ctx context.Context, actorID, id string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.pis {
		if s.pis[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	name := s.pis[idx].Name
	s.pis = append(s.pis[:idx], s.pis[idx+1:]...)
	s.persistLocked()
	s.mu.Unlock()
	s.deps.audit.Record(audit.Entry{
		WorkspaceID: s.deps.workspaceID,
		UserID:      actorID,
		Action:      domain.ActionDeleted,
		EntityType:  domain.EntityPI,
		EntityID:    id,
		EntityName:  name,
	})
	return nil
}

func (s *PIStore) persistLocked() {
	storage.Save(s.deps.adapter, KeyPIs, s.pis)
}
