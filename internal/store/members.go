package store

import (
	"context"
	"strings"
	"sync"

	"testops/internal/audit"
	"testops/internal/domain"
	"testops/internal/storage"
)

type MemberStore struct {
	deps *deps
	mu   sync.RWMutex

	members []domain.Member
}

type MemberCreate struct {
	Name    string
	Email   string
	Roles   []domain.Role
	TeamIDs []string
	Active  bool
}

type MemberPatch struct {
	Name    *string
	Email   *string
	Roles   *[]domain.Role
	TeamIDs *[]string
	Active  *bool
}

// MemberFilters narrows List results. Nil pointers apply no constraint.
type MemberFilters struct {
	TeamID *string
	Active *bool
	Role   *domain.Role
	Search string
}

func (s *MemberStore) List(ctx context.Context, f MemberFilters) []domain.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Member
	for _, m := range s.members {
		if f.TeamID != nil && !contains(m.TeamIDs, *f.TeamID) {
			continue
		}
		if f.Active != nil && m.Active != *f.Active {
			continue
		}
		if f.Role != nil && !containsRole(m.Roles, *f.Role) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(m.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (s *MemberStore) Get(ctx context.Context, id string) (domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.Member{}, ErrNotFound
}

func (s *MemberStore) NameOf(id string) string {
	if m, err := s.Get(context.Background(), id); err == nil {
		return m.Name
	}
	return domain.UnknownLabel
}

func (s *MemberStore) Create(ctx context.Context, actorID string, in MemberCreate) (domain.Member, error) {
	if in.Name == "" {
		return domain.Member{}, ValidationError{Field: "name", Reason: "required"}
	}
	if in.Email == "" {
		return domain.Member{}, ValidationError{Field: "email", Reason: "required"}
	}
	now := s.deps.clock()
	roles := in.Roles
	if len(roles) == 0 {
		roles = []domain.Role{domain.RoleMember}
	}
	m := domain.Member{
		ID:          s.deps.newID("member"),
		WorkspaceID: s.deps.workspaceID,
		Name:        in.Name,
		Email:       in.Email,
		Roles:       roles,
		TeamIDs:     in.TeamIDs,
		Active:      in.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.mu.Lock()
	s.members = append(s.members, m)
	s.persistLocked()
	s.mu.Unlock()
	s.deps.audit.Record(audit.Entry{
		WorkspaceID: s.deps.workspaceID,
		UserID:      actorID,
		Action:      domain.ActionCreated,
		EntityType:  domain.EntityMember,
		EntityID:    m.ID,
		EntityName:  m.Name,
	})
	return m, nil
}

func (s *MemberStore) Update(ctx context.Context, actorID, id string, p MemberPatch) (domain.Member, error) {
	s.mu.Lock()
	idx := -1
	for i := range s.members {
		if s.members[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return domain.Member{}, ErrNotFound
	}
	m := s.members[idx]
	changes := map[string]domain.FieldChange{}
	if p.Name != nil && *p.Name != m.Name {
		changes["name"] = domain.FieldChange{Old: m.Name, New: *p.Name}
		m.Name = *p.Name
	}
	if p.Email != nil && *p.Email != m.Email {
		changes["email"] = domain.FieldChange{Old: m.Email, New: *p.Email}
		m.Email = *p.Email
	}
	if p.Roles != nil {
		changes["roles"] = domain.FieldChange{Old: m.Roles, New: *p.Roles}
		m.Roles = *p.Roles
	}
	if p.TeamIDs != nil {
		changes["team_ids"] = domain.FieldChange{Old: m.TeamIDs, New: *p.TeamIDs}
		m.TeamIDs = *p.TeamIDs
	}
	if p.Active != nil && *p.Active != m.Active {
		changes["active"] = domain.FieldChange{Old: m.Active, New: *p.Active}
		m.Active = *p.Active
	}
	m.UpdatedAt = s.deps.clock()
	s.members[idx] = m
	s.persistLocked()
	s.mu.Unlock()

	if len(changes) > 0 {
		s.deps.audit.Record(audit.Entry{
			WorkspaceID: s.deps.workspaceID,
			UserID:      actorID,
			Action:      domain.ActionUpdated,
			EntityType:  domain.EntityMember,
			EntityID:    m.ID,
			EntityName:  m.Name,
			Changes:     changes,
		})
	}
	return m, nil
}

func (s *MemberStore) Delete(ctx context.Context, actorID, id string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.members {
		if s.members[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	name := s.members[idx].Name
	s.members = append(s.members[:idx], s.members[idx+1:]...)
	s.persistLocked()
	s.mu.Unlock()
	s.deps.audit.Record(audit.Entry{
		WorkspaceID: s.deps.workspaceID,
		UserID:      actorID,
		Action:      domain.ActionDeleted,
		EntityType:  domain.EntityMember,
		EntityID:    id,
		EntityName:  name,
	})
	return nil
}

// FindByEmail supports the dev-login flow.
func (s *MemberStore) FindByEmail(ctx context.Context, email string) (domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if strings.EqualFold(m.Email, email) {
			return m, nil
		}
	}
	return domain.Member{}, ErrNotFound
}

func (s *MemberStore) persistLocked() {
	storage.Save(s.deps.adapter, KeyMembers, s.members)
}

func contains(items []string, v string) bool {
	for _, it := range items {
		if it == v {
			return true
		}
	}
	return false
}

func containsRole(items []domain.Role, v domain.Role) bool {
	for _, it := range items {
		if it == v {
			return true
		}
	}
	return false
}
