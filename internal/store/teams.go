package store

import (
	"context"
	"sync"

	"testops/internal/audit"
	"testops/internal/domain"
	"testops/internal/storage"
)

type TeamStore struct {
	deps *deps
	mu   sync.RWMutex

	teams []domain.Team
}

type TeamCreate struct {
	Name        string
	Description string
}

// TeamPatch is a field-level partial update; nil leaves a field unchanged.
type TeamPatch struct {
	Name        *string
	Description *string
	Archived    *bool
}

func (s *TeamStore) List(ctx context.Context) []domain.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Team, len(s.teams))
	copy(out, s.teams)
	return out
}

func (s *TeamStore) Get(ctx context.Context, id string) (domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.teams {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Team{}, ErrNotFound
}

// NameOf resolves a team ID for display; dangling references resolve to
// the Unknown sentinel.
func (s *TeamStore) NameOf(id string) string {
	if t, err := s.Get(context.Background(), id); err == nil {
		return t.Name
	}
	return domain.UnknownLabel
}

func (s *TeamStore) Create(ctx context.Context, actorID string, in TeamCreate) (domain.Team, error) {
	if in.Name == "" {
		return domain.Team{}, ValidationError{Field: "name", Reason: "required"}
	}
	now := s.deps.clock()
	t := domain.Team{
		ID:          s.deps.newID("team"),
		WorkspaceID: s.deps.workspaceID,
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.mu.Lock()
	s.teams = append(s.teams, t)
	s.persistLocked()
	s.mu.Unlock()
	s.deps.audit.Record(audit.Entry{
		WorkspaceID: s.deps.workspaceID,
		UserID:      actorID,
		Action:      domain.ActionCreated,
		EntityType:  domain.EntityTeam,
		EntityID:    t.ID,
		EntityName:  t.Name,
	})
	return t, nil
}

func (s *TeamStore) Update(ctx context.Context, actorID, id string, p TeamPatch) (domain.Team, error) {
	s.mu.Lock()
	idx := -1
	for i := range s.teams {
		if s.teams[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return domain.Team{}, ErrNotFound
	}
	t := s.teams[idx]
	changes := map[string]domain.FieldChange{}
	if p.Name != nil && *p.Name != t.Name {
		if *p.Name == "" {
			s.mu.Unlock()
			return domain.Team{}, ValidationError{Field: "name", Reason: "required"}
		}
		changes["name"] = domain.FieldChange{Old: t.Name, New: *p.Name}
		t.Name = *p.Name
	}
	if p.Description != nil && *p.Description != t.Description {
		changes["description"] = domain.FieldChange{Old: t.Description, New: *p.Description}
		t.Description = *p.Description
	}
	archived := false
	if p.Archived != nil && *p.Archived != t.Archived {
		changes["archived"] = domain.FieldChange{Old: t.Archived, New: *p.Archived}
		t.Archived = *p.Archived
		archived = *p.Archived
	}
	t.UpdatedAt = s.deps.clock()
	s.teams[idx] = t
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
			EntityType:  domain.EntityTeam,
			EntityID:    t.ID,
			EntityName:  t.Name,
			Changes:     changes,
		})
	}
	return t, nil
}

// Delete removes a team immediately and unconditionally; references held
// by members, test types and efforts are left dangling.
func (s *TeamStore) Delete(ctx context.Context, actorID, id string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.teams {
		if s.teams[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	name := s.teams[idx].Name
	s.teams = append(s.teams[:idx], s.teams[idx+1:]...)
	s.persistLocked()
	s.mu.Unlock()
	s.deps.audit.Record(audit.Entry{
		WorkspaceID: s.deps.workspaceID,
		UserID:      actorID,
		Action:      domain.ActionDeleted,
		EntityType:  domain.EntityTeam,
		EntityID:    id,
		EntityName:  name,
	})
	return nil
}

func (s *TeamStore) persistLocked() {
	storage.Save(s.deps.adapter, KeyTeams, s.teams)
}
