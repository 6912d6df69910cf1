package domain

import "time"

// Role is a member role within the workspace.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleManager   Role = "MANAGER"
	RoleLead      Role = "LEAD"
	RoleQE        Role = "QE"
	RoleDeveloper Role = "DEVELOPER"
	RoleMember    Role = "MEMBER"
)

// Status is the effort lifecycle state. It is an enumerated field, not a
// guarded state machine: any status may be set to any other.
type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
	StatusVerified   Status = "verified"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type EnvironmentType string

const (
	EnvQA          EnvironmentType = "qa"
	EnvUAT         EnvironmentType = "uat"
	EnvStaging     EnvironmentType = "staging"
	EnvPerformance EnvironmentType = "performance"
	EnvOther       EnvironmentType = "other"
)

type EnvironmentLocation string

const (
	LocationAWS    EnvironmentLocation = "aws"
	LocationOnPrem EnvironmentLocation = "on_prem"
)

type Health string

const (
	HealthGreen  Health = "green"
	HealthYellow Health = "yellow"
	HealthRed    Health = "red"
)

type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Team struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Member struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Roles       []Role    `json:"roles"`
	TeamIDs     []string  `json:"team_ids"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProgramIncrement groups sprints under a shared goal and date range.
type ProgramIncrement struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Name        string    `json:"name"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Goal        string    `json:"goal,omitempty"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Sprint struct {
	ID           string    `json:"id"`
	WorkspaceID  string    `json:"workspace_id"`
	PIID         string    `json:"pi_id"`
	Name         string    `json:"name"`
	SprintNumber int       `json:"sprint_number"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Goal         string    `json:"goal,omitempty"`
	Archived     bool      `json:"archived"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type TestTypeDefinition struct {
	ID                   string    `json:"id"`
	WorkspaceID          string    `json:"workspace_id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description,omitempty"`
	OwnerTeamID          string    `json:"owner_team_id,omitempty"`
	ParticipatingTeamIDs []string  `json:"participating_team_ids"`
	Active               bool      `json:"active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type Environment struct {
	ID              string              `json:"id"`
	WorkspaceID     string              `json:"workspace_id"`
	Name            string              `json:"name"`
	Type            EnvironmentType     `json:"type"`
	Location        EnvironmentLocation `json:"location"`
	AWSAccountName  string              `json:"aws_account_name,omitempty"`
	AWSAccountID    string              `json:"aws_account_id,omitempty"`
	AWSRegion       string              `json:"aws_region,omitempty"`
	InstanceGroup   string              `json:"instance_group,omitempty"`
	URL             string              `json:"url,omitempty"`
	OwnerID         string              `json:"owner_id,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	Active          bool                `json:"active"`
	Health          Health              `json:"health"`
	HealthReason    string              `json:"health_reason,omitempty"`
	HealthUpdatedAt *time.Time          `json:"health_updated_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// EnvironmentConnection is an unordered pair of environments with a
// bidirectional integration. FromEnvironmentID is always the lexically
// smaller ID so that (A,B) and (B,A) collapse to one record.
type EnvironmentConnection struct {
	ID                string    `json:"id"`
	WorkspaceID       string    `json:"workspace_id"`
	FromEnvironmentID string    `json:"from_environment_id"`
	ToEnvironmentID   string    `json:"to_environment_id"`
	Direction         string    `json:"direction"`
	CreatedAt         time.Time `json:"created_at"`
}

// EnvironmentReservation blocks an environment for a member over
// [StartDate, EndDate). The end boundary is exclusive.
type EnvironmentReservation struct {
	ID            string    `json:"id"`
	WorkspaceID   string    `json:"workspace_id"`
	EnvironmentID string    `json:"environment_id"`
	MemberID      string    `json:"member_id"`
	EffortID      string    `json:"effort_id,omitempty"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TestEffort is the central trackable work item.
type TestEffort struct {
	ID                   string          `json:"id"`
	WorkspaceID          string          `json:"workspace_id"`
	PIID                 string          `json:"pi_id"`
	SprintID             string          `json:"sprint_id"`
	TeamID               string          `json:"team_id"`
	TestTypeDefinitionID string          `json:"test_type_definition_id"`
	Title                string          `json:"title"`
	Description          string          `json:"description,omitempty"`
	Status               Status          `json:"status"`
	Priority             Priority        `json:"priority"`
	AssigneeID           string          `json:"assignee_id,omitempty"`
	SecondaryAssigneeIDs []string        `json:"secondary_assignee_ids,omitempty"`
	EnvironmentIDs       []string        `json:"environment_ids"`
	PlannedStartDate     *time.Time      `json:"planned_start_date,omitempty"`
	PlannedEndDate       *time.Time      `json:"planned_end_date,omitempty"`
	ActualStartDate      *time.Time      `json:"actual_start_date,omitempty"`
	ActualEndDate        *time.Time      `json:"actual_end_date,omitempty"`
	Estimate             int             `json:"estimate,omitempty"`
	EstimateUnit         string          `json:"estimate_unit,omitempty"`
	Progress             int             `json:"progress"`
	Tags                 []string        `json:"tags,omitempty"`
	Blockers             []EffortBlocker `json:"blockers,omitempty"`
	Links                []EffortLink    `json:"links,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

type EffortBlocker struct {
	ID          string    `json:"id"`
	EffortID    string    `json:"effort_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Severity    Priority  `json:"severity"`
	CreatedAt   time.Time `json:"created_at"`
}

type EffortLink struct {
	ID        string    `json:"id"`
	EffortID  string    `json:"effort_id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Type      string    `json:"type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditAction is the kind of change an audit event records.
type AuditAction string

const (
	ActionCreated       AuditAction = "created"
	ActionUpdated       AuditAction = "updated"
	ActionDeleted       AuditAction = "deleted"
	ActionArchived      AuditAction = "archived"
	ActionStatusChanged AuditAction = "status_changed"
	ActionAssigned      AuditAction = "assigned"
)

// EntityType names an auditable entity collection.
type EntityType string

const (
	EntityTeam        EntityType = "team"
	EntityMember      EntityType = "member"
	EntityEnvironment EntityType = "environment"
	EntitySprint      EntityType = "sprint"
	EntityPI          EntityType = "pi"
	EntityTestType    EntityType = "test_type"
	EntityEffort      EntityType = "effort"
	EntityReservation EntityType = "reservation"
)

// FieldChange records a single field's before/after values.
type FieldChange struct {
	Old any `json:"old,omitempty"`
	New any `json:"new,omitempty"`
}

// AuditEvent is an immutable record of one change.
type AuditEvent struct {
	ID          string                 `json:"id"`
	WorkspaceID string                 `json:"workspace_id"`
	UserID      string                 `json:"user_id"`
	Action      AuditAction            `json:"action"`
	EntityType  EntityType             `json:"entity_type"`
	EntityID    string                 `json:"entity_id"`
	EntityName  string                 `json:"entity_name,omitempty"`
	Changes     map[string]FieldChange `json:"changes,omitempty"`
	Description string                 `json:"description,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// UnknownLabel is the sentinel shown when a referenced entity no longer
// exists. Deletes do not cascade, so dangling IDs resolve to this at read
// time.
const UnknownLabel = "Unknown"
