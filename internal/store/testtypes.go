package store

import (
	"context"
	"sync"

	"testops/internal/audit"
	"testops/internal/domain"
	"testops/internal/storage"
)

type TestTypeStore struct {
	deps *deps
	mu   sync.RWMutex

	types []domain.TestTypeDefinition
}

type TestTypeCreate struct {
	Name                 string
	Description          string
	OwnerTeamID          string
	ParticipatingTeamIDs []string
	Active               bool
}

type TestTypePatch struct {
	Name                 *string
	Description          *string
	OwnerTeamID          *string
	ParticipatingTeamIDs *[]string
	Active               *bool
}

func (s *TestTypeStore) List(ctx context.Context) []domain.TestTypeDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TestTypeDefinition, len(s.types))
	copy(out, s.types)
	return out
}

// ByTeam returns definitions a team owns or participates in.
func (s *TestTypeStore) ByTeam(ctx context.Context, teamID string) []domain.TestTypeDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.TestTypeDefinition
	for _, tt := range s.types {
		if tt.OwnerTeamID == teamID || contains(tt.ParticipatingTeamIDs, teamID) {
			out = append(out, tt)
		}
	}
	return out
}

func (s *TestTypeStore) Get(ctx context.Context, id string) (domain.TestTypeDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tt := range s.types {
		if tt.ID == id {
			return tt, nil
		}
	}
	return domain.TestTypeDefinition{}, ErrNotFound
}

func (s *TestTypeStore) NameOf(id string) string {
	if tt, err := s.Get(context.Background(), id); err == nil {
		return tt.Name
	}
	return domain.UnknownLabel
}

func (s *TestTypeStore) Create(ctx context.Context, actorID string, in TestTypeCreate) (domain.TestTypeDefinition, error) {
	if in.Name == "" {
		return domain.TestTypeDefinition{}, ValidationError{Field: "name", Reason: "required"}
	}
	now := s.deps.clock()
	tt := domain.TestTypeDefinition{
		ID:                   s.deps.newID("tt"),
		WorkspaceID:          s.deps.workspaceID,
		Name:                 in.Name,
		Description:          in.Description,
		OwnerTeamID:          in.OwnerTeamID,
		ParticipatingTeamIDs: in.ParticipatingTeamIDs,
		Active:               in.Active,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	s.mu.Lock()
	s.types = append(s.types, tt)
	s.persistLocked()
	s.mu.Unlock()
	s.deps.audit.Record(audit.Entry{
		WorkspaceID: s.deps.workspaceID,
		UserID:      actorID,
		Action:      domain.ActionCreated,
		EntityType:  domain.EntityTestType,
		EntityID:    tt.ID,
		EntityName:  tt.Name,
	})
	return tt, nil
}

func (s *TestTypeStore) Update(ctx context.Context, actorID, id string, p TestTypePatch) (domain.TestTypeDefinition, error) {
	s.mu.Lock()
	idx := -1
	for i := range s.types {
		if s.types[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return domain.TestTypeDefinition{}, ErrNotFound
	}
	tt := s.types[idx]
	changes := map[string]domain.FieldChange{}
	if p.Name != nil && *p.Name != tt.Name {
		changes["name"] = domain.FieldChange{Old: tt.Name, New: *p.Name}
		tt.Name = *p.Name
	}
	if p.Description != nil && *p.Description != tt.Description {
		changes["description"] = domain.FieldChange{Old: tt.Description, New: *p.Description}
		tt.Description = *p.Description
	}
	if p.OwnerTeamID != nil && *p.OwnerTeamID != tt.OwnerTeamID {
		changes["owner_team_id"] = domain.FieldChange{Old: tt.OwnerTeamID, New: *p.OwnerTeamID}
		tt.OwnerTeamID = *p.OwnerTeamID
	}
	if p.ParticipatingTeamIDs != nil {
		changes["participating_team_ids"] = domain.FieldChange{Old: tt.ParticipatingTeamIDs, New: *p.ParticipatingTeamIDs}
		tt.ParticipatingTeamIDs = *p.ParticipatingTeamIDs
	}
	if p.Active != nil && *p.Active != tt.Active {
		changes["active"] = domain.FieldChange{Old: tt.Active, New: *p.Active}
		tt.Active = *p.Active
	}
	tt.UpdatedAt = s.deps.clock()
	s.types[idx] = tt
	s.persistLocked()
	s.mu.Unlock()

	if len(changes) > 0 {
		s.deps.audit.Record(audit.Entry{
			WorkspaceID: s.deps.workspaceID,
			UserID:      actorID,
			Action:      domain.ActionUpdated,
			EntityType:  domain.EntityTestType,
			EntityID:    tt.ID,
			EntityName:  tt.Name,
			Changes:     changes,
		})
	}
	return tt, nil
}

func (s *TestTypeStore) Delete(ctx context.Context, actorID, id string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.types {
		if s.types[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	name := s.types[idx].Name
	s.types = append(s.types[:idx], s.types[idx+1:]...)
	s.persistLocked()
	s.mu.Unlock()
	s.deps.audit.Record(audit.Entry{
		WorkspaceID: s.deps.workspaceID,
		UserID:      actorID,
		Action:      domain.ActionDeleted,
		EntityType:  domain.EntityTestType,
		EntityID:    id,
		EntityName:  name,
	})
	return nil
}

func (s *TestTypeStore) persistLocked() {
	storage.Save(s.deps.adapter, KeyTestTypes, s.types)
}
