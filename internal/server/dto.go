package server

import (
	"time"

	"testops/internal/domain"
)

// Request bodies. Patch fields are pointers: absent means unchanged.

type CreateTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type PatchTeamRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Archived    *bool   `json:"archived,omitempty"`
}

type CreateMemberRequest struct {
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	Roles   []domain.Role `json:"roles,omitempty"`
	TeamIDs []string      `json:"team_ids,omitempty"`
	Active  bool          `json:"active"`
}

type PatchMemberRequest struct {
	Name    *string        `json:"name,omitempty"`
	Email   *string        `json:"email,omitempty"`
	Roles   *[]domain.Role `json:"roles,omitempty"`
	TeamIDs *[]string      `json:"team_ids,omitempty"`
	Active  *bool          `json:"active,omitempty"`
}

type CreatePIRequest struct {
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Goal      string    `json:"goal,omitempty"`
}

type PatchPIRequest struct {
	Name      *string    `json:"name,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Goal      *string    `json:"goal,omitempty"`
	Archived  *bool      `json:"archived,omitempty"`
}

type CreateSprintRequest struct {
	PIID         string    `json:"pi_id"`
	Name         string    `json:"name"`
	SprintNumber int       `json:"sprint_number"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Goal         string    `json:"goal,omitempty"`
}

type PatchSprintRequest struct {
	Name         *string    `json:"name,omitempty"`
	SprintNumber *int       `json:"sprint_number,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Goal         *string    `json:"goal,omitempty"`
	Archived     *bool      `json:"archived,omitempty"`
}

type CreateTestTypeRequest struct {
	Name                 string   `json:"name"`
	Description          string   `json:"description,omitempty"`
	OwnerTeamID          string   `json:"owner_team_id,omitempty"`
	ParticipatingTeamIDs []string `json:"participating_team_ids,omitempty"`
	Active               bool     `json:"active"`
}

type PatchTestTypeRequest struct {
	Name                 *string   `json:"name,omitempty"`
	Description          *string   `json:"description,omitempty"`
	OwnerTeamID          *string   `json:"owner_team_id,omitempty"`
	ParticipatingTeamIDs *[]string `json:"participating_team_ids,omitempty"`
	Active               *bool     `json:"active,omitempty"`
}

type CreateEnvironmentRequest struct {
	Name           string                     `json:"name"`
	Type           domain.EnvironmentType     `json:"type"`
	Location       domain.EnvironmentLocation `json:"location,omitempty"`
	AWSAccountName string                     `json:"aws_account_name,omitempty"`
	AWSAccountID   string                     `json:"aws_account_id,omitempty"`
	AWSRegion      string                     `json:"aws_region,omitempty"`
	InstanceGroup  string                     `json:"instance_group,omitempty"`
	URL            string                     `json:"url,omitempty"`
	OwnerID        string                     `json:"owner_id,omitempty"`
	Notes          string                     `json:"notes,omitempty"`
	Active         bool                       `json:"active"`
}

type PatchEnvironmentRequest struct {
	Name          *string                 `json:"name,omitempty"`
	Type          *domain.EnvironmentType `json:"type,omitempty"`
	URL           *string                 `json:"url,omitempty"`
	OwnerID       *string                 `json:"owner_id,omitempty"`
	Notes         *string                 `json:"notes,omitempty"`
	Active        *bool                   `json:"active,omitempty"`
	Health        *domain.Health          `json:"health,omitempty"`
	HealthReason  *string                 `json:"health_reason,omitempty"`
	InstanceGroup *string                 `json:"instance_group,omitempty"`
}

type ConnectEnvironmentsRequest struct {
	FromEnvironmentID string `json:"from_environment_id"`
	ToEnvironmentID   string `json:"to_environment_id"`
}

type CreateReservationRequest struct {
	EnvironmentID string    `json:"environment_id"`
	MemberID      string    `json:"member_id"`
	EffortID      string    `json:"effort_id,omitempty"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Notes         string    `json:"notes,omitempty"`
}

type PatchReservationRequest struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	EffortID  *string    `json:"effort_id,omitempty"`
}

type AvailabilityResponse struct {
	EnvironmentID string    `json:"environment_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Available     bool      `json:"available"`
}

type CreateEffortRequest struct {
	PIID                 string          `json:"pi_id,omitempty"`
	SprintID             string          `json:"sprint_id"`
	TeamID               string          `json:"team_id"`
	TestTypeDefinitionID string          `json:"test_type_definition_id,omitempty"`
	Title                string          `json:"title"`
	Description          string          `json:"description,omitempty"`
	Priority             domain.Priority `json:"priority,omitempty"`
	AssigneeID           string          `json:"assignee_id,omitempty"`
	EnvironmentIDs       []string        `json:"environment_ids,omitempty"`
	PlannedStartDate     *time.Time      `json:"planned_start_date,omitempty"`
	PlannedEndDate       *time.Time      `json:"planned_end_date,omitempty"`
	Estimate             int             `json:"estimate,omitempty"`
	EstimateUnit         string          `json:"estimate_unit,omitempty"`
	Tags                 []string        `json:"tags,omitempty"`
}

type PatchEffortRequest struct {
	Title            *string          `json:"title,omitempty"`
	Description      *string          `json:"description,omitempty"`
	Status           *domain.Status   `json:"status,omitempty"`
	Priority         *domain.Priority `json:"priority,omitempty"`
	AssigneeID       *string          `json:"assignee_id,omitempty"`
	EnvironmentIDs   *[]string        `json:"environment_ids,omitempty"`
	PlannedStartDate *time.Time       `json:"planned_start_date,omitempty"`
	PlannedEndDate   *time.Time       `json:"planned_end_date,omitempty"`
	ActualStartDate  *time.Time       `json:"actual_start_date,omitempty"`
	ActualEndDate    *time.Time       `json:"actual_end_date,omitempty"`
	Estimate         *int             `json:"estimate,omitempty"`
	EstimateUnit     *string          `json:"estimate_unit,omitempty"`
	Progress         *int             `json:"progress,omitempty"`
	Tags             *[]string        `json:"tags,omitempty"`
	SprintID         *string          `json:"sprint_id,omitempty"`
	TeamID           *string          `json:"team_id,omitempty"`
}

type AddBlockerRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Severity    domain.Priority `json:"severity,omitempty"`
}

type AddLinkRequest struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
	Type  string `json:"type,omitempty"`
}

type DevLoginRequest struct {
	Email string `json:"email"`
}

type DevLoginResponse struct {
	Token    string        `json:"token"`
	MemberID string        `json:"member_id"`
	Name     string        `json:"name"`
	Roles    []domain.Role `json:"roles"`
}

type WhoAmIResponse struct {
	ActorID string `json:"actor_id"`
	Email   string `json:"email,omitempty"`
	Source  string `json:"source"`
}

type HealthResponse struct {
	Status           string `json:"status"`
	StorageDegraded  bool   `json:"storage_degraded"`
	LastStorageError string `json:"last_storage_error,omitempty"`
}
