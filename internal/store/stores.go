// Package store holds the in-memory entity collections and their
// operations. Each store is an explicit state object built here at the
// composition root; every mutation validates, updates the collection,
// writes through the persistence adapter, and appends an audit event.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"testops/internal/audit"
	"testops/internal/seed"
	"testops/internal/storage"
)

// Collection keys in the persisted key-value layout, one per entity type.
const (
	KeyTeams        = "testops.teams"
	KeyMembers      = "testops.members"
	KeyPIs          = "testops.pis"
	KeySprints      = "testops.sprints"
	KeyTestTypes    = "testops.test-types"
	KeyEnvironments = "testops.environments"
	KeyConnections  = "testops.environment-connections"
	KeyReservations = "testops.environment-reservations"
	KeyEfforts      = "testops.efforts"
)

var ErrNotFound = errors.New("not found")

// ValidationError reports a rejected mutation; the operation aborted
// before any state change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError reports a reservation overlapping an existing one on the
// same environment.
type ConflictError struct {
	EnvironmentID string
	Start, End    time.Time
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("reservation conflict on environment %s for [%s, %s)",
		e.EnvironmentID, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// deps are shared by every store: identity, clock, persistence and audit.
type deps struct {
	workspaceID string
	adapter     *storage.Adapter
	audit       *audit.Log
	now         func() time.Time
}

func (d *deps) clock() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now()
}

func (d *deps) newID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Stores is the full set of entity stores plus the audit log they feed.
type Stores struct {
	Teams        *TeamStore
	Members      *MemberStore
	PIs          *PIStore
	Sprints      *SprintStore
	TestTypes    *TestTypeStore
	Environments *EnvironmentStore
	Efforts      *EffortStore
	Audit        *audit.Log
	Adapter      *storage.Adapter

	// Now is the shared clock, injectable for tests.
	Now func() time.Time
}

// Options tune store construction.
type Options struct {
	WorkspaceID string
	Now         func() time.Time
	// SkipSeed loads empty collections instead of the seed dataset when
	// nothing is persisted yet.
	SkipSeed bool
}

// New builds every store, loading each collection from the adapter with
// the deterministic seed dataset as fallback.
func New(adapter *storage.Adapter, log *audit.Log, opts Options) *Stores {
	if log == nil {
		log = audit.NewLog()
	}
	ws := opts.WorkspaceID
	if ws == "" {
		ws = seed.WorkspaceID
	}
	d := &deps{workspaceID: ws, adapter: adapter, audit: log, now: opts.Now}
	if d.now != nil {
		log.Now = d.now
	}

	data := seed.Dataset()
	if opts.SkipSeed {
		data = seed.Data{}
	}
	s := &Stores{
		Teams:     &TeamStore{deps: d, teams: storage.Load(adapter, KeyTeams, data.Teams)},
		Members:   &MemberStore{deps: d, members: storage.Load(adapter, KeyMembers, data.Members)},
		PIs:       &PIStore{deps: d, pis: storage.Load(adapter, KeyPIs, data.PIs)},
		Sprints:   &SprintStore{deps: d, sprints: storage.Load(adapter, KeySprints, data.Sprints)},
		TestTypes: &TestTypeStore{deps: d, types: storage.Load(adapter, KeyTestTypes, data.TestTypes)},
		Environments: &EnvironmentStore{
			deps:         d,
			environments: storage.Load(adapter, KeyEnvironments, data.Environments),
			connections:  storage.Load(adapter, KeyConnections, data.Connections),
			reservations: storage.Load(adapter, KeyReservations, data.Reservations),
		},
		Efforts: &EffortStore{deps: d, efforts: storage.Load(adapter, KeyEfforts, data.Efforts)},
		Audit:   log,
		Adapter: adapter,
		Now:     d.clock,
	}
	return s
}
