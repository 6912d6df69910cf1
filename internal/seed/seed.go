// Package seed provides the deterministic dataset used when nothing has
// been persisted yet.
package seed

import (
	"time"

	"testops/internal/domain"
)

// WorkspaceID is the single-tenant workspace every seeded entity belongs to.
const WorkspaceID = "ws-1"

// refTime anchors the dataset so repeated loads are identical.
var refTime = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return refTime.AddDate(0, 0, n) }

func dayPtr(n int) *time.Time {
	t := day(n)
	return &t
}

// Data is one instance of every seeded collection.
type Data struct {
	Teams        []domain.Team
	Members      []domain.Member
	PIs          []domain.ProgramIncrement
	Sprints      []domain.Sprint
	TestTypes    []domain.TestTypeDefinition
	Environments []domain.Environment
	Connections  []domain.EnvironmentConnection
	Reservations []domain.EnvironmentReservation
	Efforts      []domain.TestEffort
}

// Dataset returns a fresh copy of the seed data.
func Dataset() Data {
	return Data{
		Teams: []domain.Team{
			{ID: "team-1", WorkspaceID: WorkspaceID, Name: "QA Team", Description: "Quality assurance team", CreatedAt: refTime, UpdatedAt: refTime},
			{ID: "team-2", WorkspaceID: WorkspaceID, Name: "Automation Team", Description: "Test automation engineers", CreatedAt: refTime, UpdatedAt: refTime},
		},
		Members: []domain.Member{
			{ID: "member-1", WorkspaceID: WorkspaceID, Name: "Alice Johnson", Email: "alice@example.com", Roles: []domain.Role{domain.RoleLead, domain.RoleQE}, TeamIDs: []string{"team-1"}, Active: true, CreatedAt: refTime, UpdatedAt: refTime},
			{ID: "member-2", WorkspaceID: WorkspaceID, Name: "Bob Smith", Email: "bob@example.com", Roles: []domain.Role{domain.RoleQE}, TeamIDs: []string{"team-1"}, Active: true, CreatedAt: refTime, UpdatedAt: refTime},
			{ID: "member-3", WorkspaceID: WorkspaceID, Name: "Carol White", Email: "carol@example.com", Roles: []domain.Role{domain.RoleDeveloper}, TeamIDs: []string{"team-2"}, Active: true, CreatedAt: refTime, UpdatedAt: refTime},
		},
		PIs: []domain.ProgramIncrement{
			{ID: "pi-1", WorkspaceID: WorkspaceID, Name: "PI 2026-01", StartDate: day(0), EndDate: day(73), Goal: "Core platform features and API improvements", CreatedAt: refTime, UpdatedAt: refTime},
			{ID: "pi-2", WorkspaceID: WorkspaceID, Name: "PI 2026-02", StartDate: day(90), EndDate: day(165), Goal: "Performance optimization and scaling", CreatedAt: refTime, UpdatedAt: refTime},
		},
		Sprints: []domain.Sprint{
			{ID: "sprint-1", WorkspaceID: WorkspaceID, PIID: "pi-1", Name: "Sprint 0", SprintNumber: 0, StartDate: day(0), EndDate: day(14), Goal: "Core authentication and team setup", CreatedAt: refTime, UpdatedAt: refTime},
			{ID: "sprint-2", WorkspaceID: WorkspaceID, PIID: "pi-1", Name: "Sprint 1", SprintNumber: 1, StartDate: day(15), EndDate: day(28), Goal: "Environment management and reservations", CreatedAt: refTime, UpdatedAt: refTime},
			{ID: "sprint-3", WorkspaceID: WorkspaceID, PIID: "pi-1", Name: "Hardening Sprint", SprintNumber: 5, StartDate: day(29), EndDate: day(35), Goal: "Final testing and hardening", CreatedAt: refTime, UpdatedAt: refTime},
		},
		TestTypes: []domain.TestTypeDefinition{
			{ID: "tt-1", WorkspaceID: WorkspaceID, Name: "Regression Testing", Description: "Full regression test suite", OwnerTeamID: "team-1", ParticipatingTeamIDs: []string{"team-1", "team-2"}, Active: true, CreatedAt: refTime, UpdatedAt: refTime},
			{ID: "tt-2", WorkspaceID: WorkspaceID, Name: "Performance Testing", Description: "Load and stress testing", OwnerTeamID: "team-2", ParticipatingTeamIDs: []string{"team-2"}, Active: true, CreatedAt: refTime, UpdatedAt: refTime},
			{ID: "tt-3", WorkspaceID: WorkspaceID, Name: "System Integration", Description: "Integration with third-party systems", OwnerTeamID: "team-1", ParticipatingTeamIDs: []string{"team-1", "team-2"}, Active: true, CreatedAt: refTime, UpdatedAt: refTime},
			{ID: "tt-4", WorkspaceID: WorkspaceID, Name: "Security Testing", Description: "Security vulnerability scanning", OwnerTeamID: "team-2", ParticipatingTeamIDs: []string{"team-2"}, Active: true, CreatedAt: refTime, UpdatedAt: refTime},
		},
		Environments: []domain.Environment{
			{ID: "env-1", WorkspaceID: WorkspaceID, Name: "QA-1", Type: domain.EnvQA, Location: domain.LocationAWS, AWSAccountName: "QA Account", AWSAccountID: "123456789012", AWSRegion: "us-east-1", InstanceGroup: "qa", URL: "https://qa1.example.com", Active: true, Health: domain.HealthGreen, CreatedAt: refTime, UpdatedAt: refTime},
			{ID: "env-2", WorkspaceID: WorkspaceID, Name: "QA-2", Type: domain.EnvQA, Location: domain.LocationAWS, AWSAccountName: "QA Account", AWSAccountID: "123456789012", AWSRegion: "us-east-1", InstanceGroup: "qa", URL: "https://qa2.example.com", Active: true, Health: domain.HealthGreen, CreatedAt: refTime, UpdatedAt: refTime},
			{ID: "env-3", WorkspaceID: WorkspaceID, Name: "UAT", Type: domain.EnvUAT, Location: domain.LocationOnPrem, InstanceGroup: "uat", URL: "https://uat.example.com", Active: true, Health: domain.HealthGreen, CreatedAt: refTime, UpdatedAt: refTime},
		},
		Efforts: []domain.TestEffort{
			{
				ID: "effort-1", WorkspaceID: WorkspaceID, PIID: "pi-1", SprintID: "sprint-1", TeamID: "team-1", TestTypeDefinitionID: "tt-1",
				Title: "API Regression Testing", Description: "Full regression test suite for authentication API",
				Status: domain.StatusInProgress, Priority: domain.PriorityHigh, AssigneeID: "member-1",
				EnvironmentIDs: []string{"env-1"}, PlannedStartDate: dayPtr(-3), PlannedEndDate: dayPtr(4),
				Estimate: 16, EstimateUnit: "hours", Progress: 60, Tags: []string{"api", "authentication"},
				CreatedAt: refTime, UpdatedAt: refTime,
			},
			{
				ID: "effort-2", WorkspaceID: WorkspaceID, PIID: "pi-1", SprintID: "sprint-1", TeamID: "team-1", TestTypeDefinitionID: "tt-1",
				Title: "UI Smoke Tests", Description: "Basic UI smoke test coverage",
				Status: domain.StatusPlanned, Priority: domain.PriorityMedium, AssigneeID: "member-2",
				EnvironmentIDs: []string{"env-2"}, PlannedStartDate: dayPtr(2), PlannedEndDate: dayPtr(5),
				Estimate: 8, EstimateUnit: "hours", Progress: 0, Tags: []string{"ui", "smoke"},
				CreatedAt: refTime, UpdatedAt: refTime,
			},
			{
				ID: "effort-3", WorkspaceID: WorkspaceID, PIID: "pi-1", SprintID: "sprint-1", TeamID: "team-2", TestTypeDefinitionID: "tt-2",
				Title: "Performance Test Automation", Description: "Automation for performance benchmarks",
				Status: domain.StatusPlanned, Priority: domain.PriorityMedium, AssigneeID: "member-3",
				EnvironmentIDs: []string{"env-1", "env-2"}, PlannedStartDate: dayPtr(5), PlannedEndDate: dayPtr(12),
				Estimate: 32, EstimateUnit: "hours", Progress: 0, Tags: []string{"performance", "automation"},
				CreatedAt: refTime, UpdatedAt: refTime,
			},
			{
				ID: "effort-4", WorkspaceID: WorkspaceID, PIID: "pi-1", SprintID: "sprint-1", TeamID: "team-1", TestTypeDefinitionID: "tt-3",
				Title: "System Integration Testing", Description: "End-to-end system integration testing",
				Status: domain.StatusBlocked, Priority: domain.PriorityHigh, AssigneeID: "member-1",
				EnvironmentIDs: []string{"env-2"}, PlannedStartDate: dayPtr(1), PlannedEndDate: dayPtr(3),
				Estimate: 12, EstimateUnit: "hours", Progress: 10, Tags: []string{"integration"},
				Blockers: []domain.EffortBlocker{
					{ID: "blocker-1", EffortID: "effort-4", Title: "Environment down", Description: "UAT environment experiencing issues", Category: "environment", Severity: domain.PriorityHigh, CreatedAt: refTime},
				},
				CreatedAt: refTime, UpdatedAt: refTime,
			},
		},
	}
}
