package store

import (
	"context"
	"sync"
	"time"

	"testops/internal/audit"
	"testops/internal/domain"
	"testops/internal/storage"
)

// EnvironmentStore owns environments plus their connections and
// reservations. Reservation intervals are half-open: [start, end).
type EnvironmentStore struct {
	deps *deps
	mu   sync.RWMutex

	environments []domain.Environment
	connections  []domain.EnvironmentConnection
	reservations []domain.EnvironmentReservation
}

type EnvironmentCreate struct {
	Name           string
	Type           domain.EnvironmentType
	Location       domain.EnvironmentLocation
	AWSAccountName string
	AWSAccountID   string
	AWSRegion      string
	InstanceGroup  string
	URL            string
	OwnerID        string
	Notes          string
	Active         bool
}

type EnvironmentPatch struct {
	Name          *string
	Type          *domain.EnvironmentType
	URL           *string
	OwnerID       *string
	Notes         *string
	Active        *bool
	Health        *domain.Health
	HealthReason  *string
	InstanceGroup *string
}

type ReservationCreate struct {
	EnvironmentID string
	MemberID      string
	EffortID      string
	StartDate     time.Time
	EndDate       time.Time
	Notes         string
}

type ReservationPatch struct {
	StartDate *time.Time
	EndDate   *time.Time
	Notes     *string
	EffortID  *string
}

func (s *EnvironmentStore) List(ctx context.Context) []domain.Environment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Environment, len(s.environments))
	copy(out, s.environments)
	return out
}

func (s *EnvironmentStore) Get(ctx context.Context, id string) (domain.Environment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.environments {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.Environment{}, ErrNotFound
}

func (s *EnvironmentStore) NameOf(id string) string {
	if e, err := s.Get(context.Background(), id); err == nil {
		return e.Name
	}
	return domain.UnknownLabel
}

func (s *EnvironmentStore) Create(ctx context.Context, actorID string, in EnvironmentCreate) (domain.Environment, error) {
	if in.Name == "" {
		return domain.Environment{}, ValidationError{Field: "name", Reason: "required"}
	}
	now := s.deps.clock()
	location := in.Location
	if location == "" {
		location = domain.LocationOnPrem
	}
	e := domain.Environment{
		ID:             s.deps.newID("env"),
		WorkspaceID:    s.deps.workspaceID,
		Name:           in.Name,
		Type:           in.Type,
		Location:       location,
		AWSAccountName: in.AWSAccountName,
		AWSAccountID:   in.AWSAccountID,
		AWSRegion:      in.AWSRegion,
		InstanceGroup:  in.InstanceGroup,
		URL:            in.URL,
		OwnerID:        in.OwnerID,
		Notes:          in.Notes,
		Active:         in.Active,
		Health:         domain.HealthGreen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.mu.Lock()
	s.environments = append(s.environments, e)
	s.persistEnvironmentsLocked()
	s.mu.Unlock()
	s.deps.audit.Record(audit.Entry{
		WorkspaceID: s.deps.workspaceID,
		UserID:      actorID,
		Action:      domain.ActionCreated,
		EntityType:  domain.EntityEnvironment,
		EntityID:    e.ID,
		EntityName:  e.Name,
	})
	return e, nil
}

func (s *EnvironmentStore) Update(ctx context.Context, actorID, id string, p EnvironmentPatch) (domain.Environment, error) {
	s.mu.Lock()
	idx := -1
	for i := range s.environments {
		if s.environments[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return domain.Environment{}, ErrNotFound
	}
	e := s.environments[idx]
	now := s.deps.clock()
	changes := map[string]domain.FieldChange{}
	if p.Name != nil && *p.Name != e.Name {
		changes["name"] = domain.FieldChange{Old: e.Name, New: *p.Name}
		e.Name = *p.Name
	}
	if p.Type != nil && *p.Type != e.Type {
		changes["type"] = domain.FieldChange{Old: e.Type, New: *p.Type}
		e.Type = *p.Type
	}
	if p.URL != nil && *p.URL != e.URL {
		changes["url"] = domain.FieldChange{Old: e.URL, New: *p.URL}
		e.URL = *p.URL
	}
	if p.OwnerID != nil && *p.OwnerID != e.OwnerID {
		changes["owner_id"] = domain.FieldChange{Old: e.OwnerID, New: *p.OwnerID}
		e.OwnerID = *p.OwnerID
	}
	if p.Notes != nil && *p.Notes != e.Notes {
		changes["notes"] = domain.FieldChange{Old: e.Notes, New: *p.Notes}
		e.Notes = *p.Notes
	}
	if p.InstanceGroup != nil && *p.InstanceGroup != e.InstanceGroup {
		changes["instance_group"] = domain.FieldChange{Old: e.InstanceGroup, New: *p.InstanceGroup}
		e.InstanceGroup = *p.InstanceGroup
	}
	if p.Active != nil && *p.Active != e.Active {
		changes["active"] = domain.FieldChange{Old: e.Active, New: *p.Active}
		e.Active = *p.Active
	}
	if p.Health != nil && *p.Health != e.Health {
		changes["health"] = domain.FieldChange{Old: e.Health, New: *p.Health}
		e.Health = *p.Health
		e.HealthUpdatedAt = &now
		if p.HealthReason != nil {
			e.HealthReason = *p.HealthReason
		} else {
			e.HealthReason = ""
		}
	} else if p.HealthReason != nil && *p.HealthReason != e.HealthReason {
		changes["health_reason"] = domain.FieldChange{Old: e.HealthReason, New: *p.HealthReason}
		e.HealthReason = *p.HealthReason
		e.HealthUpdatedAt = &now
	}
	e.UpdatedAt = now
	s.environments[idx] = e
	s.persistEnvironmentsLocked()
	s.mu.Unlock()

	if len(changes) > 0 {
		s.deps.audit.Record(audit.Entry{
			WorkspaceID: s.deps.workspaceID,
			UserID:      actorID,
			Action:      domain.ActionUpdated,
			EntityType:  domain.EntityEnvironment,
			EntityID:    e.ID,
			EntityName:  e.Name,
			Changes:     changes,
		})
	}
	return e, nil
}

func (s *EnvironmentStore) Delete(ctx context.Context, actorID, id string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.environments {
		if s.environments[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	name := s.environments[idx].Name
	s.environments = append(s.environments[:idx], s.environments[idx+1:]...)
	s.persistEnvironmentsLocked()
	s.mu.Unlock()
	s.deps.audit.Record(audit.Entry{
		WorkspaceID: s.deps.workspaceID,
		UserID:      actorID,
		Action:      domain.ActionDeleted,
		EntityType:  domain.EntityEnvironment,
		EntityID:    id,
		EntityName:  name,
	})
	return nil
}

// Connections returns all environment connections.
func (s *EnvironmentStore) Connections(ctx context.Context) []domain.EnvironmentConnection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.EnvironmentConnection, len(s.connections))
	copy(out, s.connections)
	return out
}

// Connect records a bidirectional integration between two environments.
// The pair is canonicalized lexically so (A,B) and (B,A) collapse to one
// record; duplicates and self-connections are no-ops.
func (s *EnvironmentStore) Connect(ctx context.Context, actorID, fromID, toID string) (domain.EnvironmentConnection, error) {
	if fromID == "" || toID == "" {
		return domain.EnvironmentConnection{}, ValidationError{Field: "environment_id", Reason: "required"}
	}
	if fromID == toID {
		return domain.EnvironmentConnection{}, ValidationError{Field: "environment_id", Reason: "cannot connect an environment to itself"}
	}
	left, right := fromID, toID
	if right < left {
		left, right = right, left
	}
	s.mu.Lock()
	for _, c := range s.connections {
		if c.FromEnvironmentID == left && c.ToEnvironmentID == right {
			s.mu.Unlock()
			return c, nil
		}
	}
	conn := domain.EnvironmentConnection{
		ID:                s.deps.newID("conn"),
		WorkspaceID:       s.deps.workspaceID,
		FromEnvironmentID: left,
		ToEnvironmentID:   right,
		Direction:         "bidirectional",
		CreatedAt:         s.deps.clock(),
	}
	s.connections = append(s.connections, conn)
	storage.Save(s.deps.adapter, KeyConnections, s.connections)
	s.mu.Unlock()
	return conn, nil
}

func (s *EnvironmentStore) Disconnect(ctx context.Context, actorID, connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.connections {
		if c.ID == connectionID {
			s.connections = append(s.connections[:i], s.connections[i+1:]...)
			storage.Save(s.deps.adapter, KeyConnections, s.connections)
			return nil
		}
	}
	return ErrNotFound
}

// Reservations returns all reservations, optionally limited to one
// environment.
func (s *EnvironmentStore) Reservations(ctx context.Context, environmentID string) []domain.EnvironmentReservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.EnvironmentReservation
	for _, r := range s.reservations {
		if environmentID != "" && r.EnvironmentID != environmentID {
			continue
		}
		out = append(out, r)
	}
	return out
}

// HasConflict reports whether [start, end) overlaps an existing
// reservation on the environment. Touching endpoints do not conflict, and
// a zero-length interval never conflicts. excludeID skips one reservation
// so an edit-in-place can revalidate without colliding with itself.
func (s *EnvironmentStore) HasConflict(environmentID string, start, end time.Time, excludeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasConflictLocked(environmentID, start, end, excludeID)
}

func (s *EnvironmentStore) hasConflictLocked(environmentID string, start, end time.Time, excludeID string) bool {
	for _, r := range s.reservations {
		if r.ID == excludeID {
			continue
		}
		if r.EnvironmentID != environmentID {
			continue
		}
		if start.Before(r.EndDate) && end.After(r.StartDate) {
			return true
		}
	}
	return false
}

// Reserve creates a reservation, aborting before mutation when the
// interval conflicts.
func (s *EnvironmentStore) Reserve(ctx context.Context, actorID string, in ReservationCreate) (domain.EnvironmentReservation, error) {
	if in.EnvironmentID == "" {
		return domain.EnvironmentReservation{}, ValidationError{Field: "environment_id", Reason: "required"}
	}
	if in.MemberID == "" {
		return domain.EnvironmentReservation{}, ValidationError{Field: "member_id", Reason: "required"}
	}
	if in.EndDate.Before(in.StartDate) {
		return domain.EnvironmentReservation{}, ValidationError{Field: "end_date", Reason: "must not precede start_date"}
	}
	s.mu.Lock()
	if s.hasConflictLocked(in.EnvironmentID, in.StartDate, in.EndDate, "") {
		s.mu.Unlock()
		return domain.EnvironmentReservation{}, ConflictError{EnvironmentID: in.EnvironmentID, Start: in.StartDate, End: in.EndDate}
	}
	now := s.deps.clock()
	r := domain.EnvironmentReservation{
		ID:            s.deps.newID("res"),
		WorkspaceID:   s.deps.workspaceID,
		EnvironmentID: in.EnvironmentID,
		MemberID:      in.MemberID,
		EffortID:      in.EffortID,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.reservations = append(s.reservations, r)
	storage.Save(s.deps.adapter, KeyReservations, s.reservations)
	s.mu.Unlock()
	s.deps.audit.Record(audit.Entry{
		WorkspaceID: s.deps.workspaceID,
		UserID:      actorID,
		Action:      domain.ActionCreated,
		EntityType:  domain.EntityReservation,
		EntityID:    r.ID,
	})
	return r, nil
}

// UpdateReservation revalidates the (possibly shifted) interval against
// all reservations except the one being edited.
func (s *EnvironmentStore) UpdateReservation(ctx context.Context, actorID, id string, p ReservationPatch) (domain.EnvironmentReservation, error) {
	s.mu.Lock()
	idx := -1
	for i := range s.reservations {
		if s.reservations[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return domain.EnvironmentReservation{}, ErrNotFound
	}
	r := s.reservations[idx]
	start, end := r.StartDate, r.EndDate
	if p.StartDate != nil {
		start = *p.StartDate
	}
	if p.EndDate != nil {
		end = *p.EndDate
	}
	if end.Before(start) {
		s.mu.Unlock()
		return domain.EnvironmentReservation{}, ValidationError{Field: "end_date", Reason: "must not precede start_date"}
	}
	if s.hasConflictLocked(r.EnvironmentID, start, end, r.ID) {
		s.mu.Unlock()
		return domain.EnvironmentReservation{}, ConflictError{EnvironmentID: r.EnvironmentID, Start: start, End: end}
	}
	r.StartDate, r.EndDate = start, end
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	if p.EffortID != nil {
		r.EffortID = *p.EffortID
	}
	r.UpdatedAt = s.deps.clock()
	s.reservations[idx] = r
	storage.Save(s.deps.adapter, KeyReservations, s.reservations)
	s.mu.Unlock()
	s.deps.audit.Record(audit.Entry{
		WorkspaceID: s.deps.workspaceID,
		UserID:      actorID,
		Action:      domain.ActionUpdated,
		EntityType:  domain.EntityReservation,
		EntityID:    r.ID,
	})
	return r, nil
}

func (s *EnvironmentStore) DeleteReservation(ctx context.Context, actorID, id string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.reservations {
		if s.reservations[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.reservations = append(s.reservations[:idx], s.reservations[idx+1:]...)
	storage.Save(s.deps.adapter, KeyReservations, s.reservations)
	s.mu.Unlock()
	s.deps.audit.Record(audit.Entry{
		WorkspaceID: s.deps.workspaceID,
		UserID:      actorID,
		Action:      domain.ActionDeleted,
		EntityType:  domain.EntityReservation,
		EntityID:    id,
	})
	return nil
}

func (s *EnvironmentStore) persistEnvironmentsLocked() {
	storage.Save(s.deps.adapter, KeyEnvironments, s.environments)
}
