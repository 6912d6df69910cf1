// Package server exposes the tracker over HTTP with a generated OpenAPI
// description. Every error uses a stable {code, message, details}
// envelope.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"testops/internal/domain"
	"testops/internal/report"
	"testops/internal/store"
	"testops/internal/view"
)

// Config for the HTTP API handler.
type Config struct {
	Stores   *store.Stores
	BasePath string
	Auth     AuthConfig
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"reservation_conflict"`
	Message string         `json:"message" example:"reservation conflict on environment env-1"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the TestOps API.
func New(cfg Config) (http.Handler, error) {
	if cfg.Stores == nil {
		return nil, errors.New("server: stores required")
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			// Schema/request validation errors should be 400 bad_request
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(newAuthMiddleware(basePath, cfg.Auth))
	hcfg := huma.DefaultConfig("TestOps API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = "" // custom Swagger UI below
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	s := cfg.Stores
	registerDocs(router, basePath)
	registerHealth(group, s)
	registerTeams(group, s)
	registerMembers(group, s)
	registerPIs(group, s)
	registerSprints(group, s)
	registerTestTypes(group, s)
	registerEnvironments(group, s)
	registerReservations(group, s)
	registerEfforts(group, s)
	registerAudit(group, s)
	registerReports(group, s)
	registerCSVExport(router, basePath, s)
	registerMe(group)
	registerDevAuth(group, s, cfg.Auth)
	registerOpenAPI(router, api, basePath)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// handleError maps store errors onto the envelope. Conflicts are 409,
// rejected mutations 400, unknown IDs 404.
func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	var ce store.ConflictError
	if errors.As(err, &ce) {
		return newAPIError(http.StatusConflict, "reservation_conflict", err.Error(), map[string]any{
			"environment_id": ce.EnvironmentID,
		})
	}
	var ve store.ValidationError
	if errors.As(err, &ve) {
		return newAPIError(http.StatusBadRequest, "bad_request", err.Error(), map[string]any{"field": ve.Field})
	}
	if errors.Is(err, store.ErrNotFound) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	}
	return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": err.Error()})
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

var crudErrors = []int{
	http.StatusBadRequest,
	http.StatusNotFound,
	http.StatusConflict,
	http.StatusInternalServerError,
}

// strFilter turns an empty query value into the identity predicate.
func strFilter(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func boolFilter(v string) *bool {
	switch v {
	case "true":
		b := true
		return &b
	case "false":
		b := false
		return &b
	}
	return nil
}

type IDPath struct {
	ID string `path:"id"`
}

type listBody[T any] struct {
	Body []T `json:"body"`
}

type itemBody[T any] struct {
	Body T `json:"body"`
}

func items[T any](v []T) *listBody[T] {
	if v == nil {
		v = []T{}
	}
	return &listBody[T]{Body: v}
}

func item[T any](v T) *itemBody[T] { return &itemBody[T]{Body: v} }

func registerHealth(api huma.API, s *store.Stores) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*itemBody[HealthResponse], error) {
		resp := HealthResponse{Status: "ok"}
		if s.Adapter != nil && s.Adapter.Degraded() {
			resp.Status = "degraded"
			resp.StorageDegraded = true
			if err := s.Adapter.LastError(); err != nil {
				resp.LastStorageError = err.Error()
			}
		}
		return item(resp), nil
	})
}

func registerTeams(api huma.API, s *store.Stores) {
	huma.Register(api, huma.Operation{
		OperationID: "list-teams",
		Method:      http.MethodGet,
		Path:        "/teams",
		Summary:     "List teams",
	}, func(ctx context.Context, _ *struct{}) (*listBody[domain.Team], error) {
		return items(s.Teams.List(ctx)), nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "create-team",
		Method:        http.MethodPost,
		Path:          "/teams",
		Summary:       "Create team",
		DefaultStatus: http.StatusCreated,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *struct {
		Body CreateTeamRequest `json:"body"`
	}) (*itemBody[domain.Team], error) {
		t, err := s.Teams.Create(ctx, actorID(ctx), store.TeamCreate{
			Name:        input.Body.Name,
			Description: input.Body.Description,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return item(t), nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "get-team",
		Method:      http.MethodGet,
		Path:        "/teams/{id}",
		Summary:     "Get team",
		Errors:      crudErrors,
	}, func(ctx context.Context, input *IDPath) (*itemBody[domain.Team], error) {
		t, err := s.Teams.Get(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return item(t), nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "update-team",
		Method:      http.MethodPatch,
		Path:        "/teams/{id}",
		Summary:     "Update team",
		Errors:      crudErrors,
	}, func(ctx context.Context, input *struct {
		IDPath
		Body PatchTeamRequest `json:"body"`
	}) (*itemBody[domain.Team], error) {
		t, err := s.Teams.Update(ctx, actorID(ctx), input.ID, store.TeamPatch{
			Name:        input.Body.Name,
			Description: input.Body.Description,
			Archived:    input.Body.Archived,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return item(t), nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "delete-team",
		Method:        http.MethodDelete,
		Path:          "/teams/{id}",
		Summary:       "Delete team",
		DefaultStatus: http.StatusNoContent,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *IDPath) (*struct{}, error) {
		if err := s.Teams.Delete(ctx, actorID(ctx), input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerMembers(api huma.API, s *store.Stores) {
	huma.Register(api, huma.Operation{
		OperationID: "list-members",
		Method:      http.MethodGet,
		Path:        "/members",
		Summary:     "List members",
	}, func(ctx context.Context, input *struct {
		TeamID string `query:"team_id"`
		Active string `query:"active" enum:"true,false,"`
		Role   string `query:"role"`
		Search string `query:"q"`
	}) (*listBody[domain.Member], error) {
		f := store.MemberFilters{
			TeamID: strFilter(input.TeamID),
			Active: boolFilter(input.Active),
			Search: input.Search,
		}
		if input.Role != "" {
			r := domain.Role(input.Role)
			f.Role = &r
		}
		return items(s.Members.List(ctx, f)), nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "create-member",
		Method:        http.MethodPost,
		Path:          "/members",
		Summary:       "Create member",
		DefaultStatus: http.StatusCreated,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *struct {
		Body CreateMemberRequest `json:"body"`
	}) (*itemBody[domain.Member], error) {
		m, err := s.Members.Create(ctx, actorID(ctx), store.MemberCreate{
			Name:    input.Body.Name,
			Email:   input.Body.Email,
			Roles:   input.Body.Roles,
			TeamIDs: input.Body.TeamIDs,
			Active:  input.Body.Active,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return item(m), nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "get-member",
		Method:      http.MethodGet,
		Path:        "/members/{id}",
		Summary:     "Get member",
		Errors:      crudErrors,
	}, func(ctx context.Context, input *IDPath) (*itemBody[domain.Member], error) {
		m, err := s.Members.Get(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return item(m), nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "update-member",
		Method:      http.MethodPatch,
		Path:        "/members/{id}",
		Summary:     "Update member",
		Errors:      crudErrors,
	}, func(ctx context.Context, input *struct {
		IDPath
		Body PatchMemberRequest `json:"body"`
	}) (*itemBody[domain.Member], error) {
		m, err := s.Members.Update(ctx, actorID(ctx), input.ID, store.MemberPatch{
			Name:    input.Body.Name,
			Email:   input.Body.Email,
			Roles:   input.Body.Roles,
			TeamIDs: input.Body.TeamIDs,
			Active:  input.Body.Active,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return item(m), nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "delete-member",
		Method:        http.MethodDelete,
		Path:          "/members/{id}",
		Summary:       "Delete member",
		DefaultStatus: http.StatusNoContent,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *IDPath) (*struct{}, error) {
		if err := s.Members.Delete(ctx, actorID(ctx), input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerPIs(api huma.API, s *store.Stores) {
	huma.Register(api, huma.Operation{
		OperationID: "list-pis",
		Method:      http.MethodGet,
		Path:        "/pis",
		Summary:     "List program increments",
	}, func(ctx context.Context, _ *struct{}) (*listBody[domain.ProgramIncrement], error) {
		return items(s.PIs.List(ctx)), nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "current-pi",
		Method:      http.MethodGet,
		Path:        "/pis/current",
		Summary:     "Program increment containing today",
		Errors:      crudErrors,
	}, func(ctx context.Context, _ *struct{}) (*itemBody[domain.ProgramIncrement], error) {
		p, ok := s.PIs.Current(ctx, s.Now())
		if !ok {
			return nil, newAPIError(http.StatusNotFound, "not_found", "no current program increment", nil)
		}
		return item(p), nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "create-pi",
		Method:        http.MethodPost,
		Path:          "/pis",
		Summary:       "Create program increment",
		DefaultStatus: http.StatusCreated,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *struct {
		Body CreatePIRequest `json:"body"`
	}) (*itemBody[domain.ProgramIncrement], error) {
		p, err := s.PIs.Create(ctx, actorID(ctx), store.PICreate{
			Name:      input.Body.Name,
			StartDate: input.Body.StartDate,
			EndDate:   input.Body.EndDate,
			Goal:      input.Body.Goal,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return item(p), nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "get-pi",
		Method:      http.MethodGet,
		Path:        "/pis/{id}",
		Summary:     "Get program increment",
		Errors:      crudErrors,
	}, func(ctx context.Context, input *IDPath) (*itemBody[domain.ProgramIncrement], error) {
		p, err := s.PIs.Get(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return item(p), nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "update-pi",
		Method:      http.MethodPatch,
		Path:        "/pis/{id}",
		Summary:     "Update program increment",
		Errors:      crudErrors,
	}, func(ctx context.Context, input *struct {
		IDPath
		Body PatchPIRequest `json:"body"`
	}) (*itemBody[domain.ProgramIncrement], error) {
		p, err := s.PIs.Update(ctx, actorID(ctx), input.ID, store.PIPatch{
			Name:      input.Body.Name,
			StartDate: input.Body.StartDate,
			EndDate:   input.Body.EndDate,
			Goal:      input.Body.Goal,
			Archived:  input.Body.Archived,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return item(p), nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "delete-pi",
		Method:        http.MethodDelete,
		Path:          "/pis/{id}",
		Summary:       "Delete program increment",
		DefaultStatus: http.StatusNoContent,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *IDPath) (*struct{}, error) {
		if err := s.PIs.Delete(ctx, actorID(ctx), input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerSprints(api huma.API, s *store.Stores) {
	huma.Register(api, huma.Operation{
		OperationID: "list-sprints",
		Method:      http.MethodGet,
		Path:        "/sprints",
		Summary:     "List sprints",
	}, func(ctx context.Context, input *struct {
		PIID     string `query:"pi_id"`
		Archived string `query:"archived" enum:"true,false,"`
		Search   string `query:"q"`
	}) (*listBody[domain.Sprint], error) {
		return items(s.Sprints.List(ctx, store.SprintFilters{
			PIID:     strFilter(input.PIID),
			Archived: boolFilter(input.Archived),
			Search:   input.Search,
		})), nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "create-sprint",
		Method:        http.MethodPost,
		Path:          "/sprints",
		Summary:       "Create sprint",
		DefaultStatus: http.StatusCreated,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *struct {
		Body CreateSprintRequest `json:"body"`
	}) (*itemBody[domain.Sprint], error) {
		sp, err := s.Sprints.Create(ctx, actorID(ctx), store.SprintCreate{
			PIID:         input.Body.PIID,
			Name:         input.Body.Name,
			SprintNumber: input.Body.SprintNumber,
			StartDate:    input.Body.StartDate,
			EndDate:      input.Body.EndDate,
			Goal:         input.Body.Goal,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return item(sp), nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "get-sprint",
		Method:      http.MethodGet,
		Path:        "/sprints/{id}",
		Summary:     "Get sprint",
		Errors:      crudErrors,
	}, func(ctx context.Context, input *IDPath) (*itemBody[domain.Sprint], error) {
		sp, err := s.Sprints.Get(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return item(sp), nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "update-sprint",
		Method:      http.MethodPatch,
		Path:        "/sprints/{id}",
		Summary:     "Update sprint",
		Errors:      crudErrors,
	}, func(ctx context.Context, input *struct {
		IDPath
		Body PatchSprintRequest `json:"body"`
	}) (*itemBody[domain.Sprint], error) {
		sp, err := s.Sprints.Update(ctx, actorID(ctx), input.ID, store.SprintPatch{
			Name:         input.Body.Name,
			SprintNumber: input.Body.SprintNumber,
			StartDate:    input.Body.StartDate,
			EndDate:      input.Body.EndDate,
			Goal:         input.Body.Goal,
			Archived:     input.Body.Archived,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return item(sp), nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "delete-sprint",
		Method:        http.MethodDelete,
		Path:          "/sprints/{id}",
		Summary:       "Delete sprint",
		DefaultStatus: http.StatusNoContent,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *IDPath) (*struct{}, error) {
		if err := s.Sprints.Delete(ctx, actorID(ctx), input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerTestTypes(api huma.API, s *store.Stores) {
	huma.Register(api, huma.Operation{
		OperationID: "list-test-types",
		Method:      http.MethodGet,
		Path:        "/test-types",
		Summary:     "List test type definitions",
	}, func(ctx context.Context, input *struct {
		TeamID string `query:"team_id"`
	}) (*listBody[domain.TestTypeDefinition], error) {
		if input.TeamID != "" {
			return items(s.TestTypes.ByTeam(ctx, input.TeamID)), nil
		}
		return items(s.TestTypes.List(ctx)), nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "create-test-type",
		Method:        http.MethodPost,
		Path:          "/test-types",
		Summary:       "Create test type definition",
		DefaultStatus: http.StatusCreated,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *struct {
		Body CreateTestTypeRequest `json:"body"`
	}) (*itemBody[domain.TestTypeDefinition], error) {
		tt, err := s.TestTypes.Create(ctx, actorID(ctx), store.TestTypeCreate{
			Name:                 input.Body.Name,
			Description:          input.Body.Description,
			OwnerTeamID:          input.Body.OwnerTeamID,
			ParticipatingTeamIDs: input.Body.ParticipatingTeamIDs,
			Active:               input.Body.Active,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return item(tt), nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "get-test-type",
		Method:      http.MethodGet,
		Path:        "/test-types/{id}",
		Summary:     "Get test type definition",
		Errors:      crudErrors,
	}, func(ctx context.Context, input *IDPath) (*itemBody[domain.TestTypeDefinition], error) {
		tt, err := s.TestTypes.Get(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return item(tt), nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "update-test-type",
		Method:      http.MethodPatch,
		Path:        "/test-types/{id}",
		Summary:     "Update test type definition",
		Errors:      crudErrors,
	}, func(ctx context.Context, input *struct {
		IDPath
		Body PatchTestTypeRequest `json:"body"`
	}) (*itemBody[domain.TestTypeDefinition], error) {
		tt, err := s.TestTypes.Update(ctx, actorID(ctx), input.ID, store.TestTypePatch{
			Name:                 input.Body.Name,
			Description:          input.Body.Description,
			OwnerTeamID:          input.Body.OwnerTeamID,
			ParticipatingTeamIDs: input.Body.ParticipatingTeamIDs,
			Active:               input.Body.Active,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return item(tt), nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "delete-test-type",
		Method:        http.MethodDelete,
		Path:          "/test-types/{id}",
		Summary:       "Delete test type definition",
		DefaultStatus: http.StatusNoContent,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *IDPath) (*struct{}, error) {
		if err := s.TestTypes.Delete(ctx, actorID(ctx), input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerEnvironments(api huma.API, s *store.Stores) {
	huma.Register(api, huma.Operation{
		OperationID: "list-environments",
		Method:      http.MethodGet,
		Path:        "/environments",
		Summary:     "List environments",
	}, func(ctx context.Context, _ *struct{}) (*listBody[domain.Environment], error) {
		return items(s.Environments.List(ctx)), nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "create-environment",
		Method:        http.MethodPost,
		Path:          "/environments",
		Summary:       "Create environment",
		DefaultStatus: http.StatusCreated,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *struct {
		Body CreateEnvironmentRequest `json:"body"`
	}) (*itemBody[domain.Environment], error) {
		e, err := s.Environments.Create(ctx, actorID(ctx), store.EnvironmentCreate{
			Name:           input.Body.Name,
			Type:           input.Body.Type,
			Location:       input.Body.Location,
			AWSAccountName: input.Body.AWSAccountName,
			AWSAccountID:   input.Body.AWSAccountID,
			AWSRegion:      input.Body.AWSRegion,
			InstanceGroup:  input.Body.InstanceGroup,
			URL:            input.Body.URL,
			OwnerID:        input.Body.OwnerID,
			Notes:          input.Body.Notes,
			Active:         input.Body.Active,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return item(e), nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "get-environment",
		Method:      http.MethodGet,
		Path:        "/environments/{id}",
		Summary:     "Get environment",
		Errors:      crudErrors,
	}, func(ctx context.Context, input *IDPath) (*itemBody[domain.Environment], error) {
		e, err := s.Environments.Get(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return item(e), nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "update-environment",
		Method:      http.MethodPatch,
		Path:        "/environments/{id}",
		Summary:     "Update environment",
		Errors:      crudErrors,
	}, func(ctx context.Context, input *struct {
		IDPath
		Body PatchEnvironmentRequest `json:"body"`
	}) (*itemBody[domain.Environment], error) {
		e, err := s.Environments.Update(ctx, actorID(ctx), input.ID, store.EnvironmentPatch{
			Name:          input.Body.Name,
			Type:          input.Body.Type,
			URL:           input.Body.URL,
			OwnerID:       input.Body.OwnerID,
			Notes:         input.Body.Notes,
			Active:        input.Body.Active,
			Health:        input.Body.Health,
			HealthReason:  input.Body.HealthReason,
			InstanceGroup: input.Body.InstanceGroup,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return item(e), nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "delete-environment",
		Method:        http.MethodDelete,
		Path:          "/environments/{id}",
		Summary:       "Delete environment",
		DefaultStatus: http.StatusNoContent,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *IDPath) (*struct{}, error) {
		if err := s.Environments.Delete(ctx, actorID(ctx), input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "list-environment-connections",
		Method:      http.MethodGet,
		Path:        "/environment-connections",
		Summary:     "List environment connections",
	}, func(ctx context.Context, _ *struct{}) (*listBody[domain.EnvironmentConnection], error) {
		return items(s.Environments.Connections(ctx)), nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "connect-environments",
		Method:        http.MethodPost,
		Path:          "/environment-connections",
		Summary:       "Connect two environments",
		DefaultStatus: http.StatusCreated,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *struct {
		Body ConnectEnvironmentsRequest `json:"body"`
	}) (*itemBody[domain.EnvironmentConnection], error) {
		c, err := s.Environments.Connect(ctx, actorID(ctx), input.Body.FromEnvironmentID, input.Body.ToEnvironmentID)
		if err != nil {
			return nil, handleError(err)
		}
		return item(c), nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "disconnect-environments",
		Method:        http.MethodDelete,
		Path:          "/environment-connections/{id}",
		Summary:       "Remove an environment connection",
		DefaultStatus: http.StatusNoContent,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *IDPath) (*struct{}, error) {
		if err := s.Environments.Disconnect(ctx, actorID(ctx), input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "environment-availability",
		Method:      http.MethodGet,
		Path:        "/environments/{id}/availability",
		Summary:     "Check an interval for reservation conflicts",
		Errors:      crudErrors,
	}, func(ctx context.Context, input *struct {
		IDPath
		Start     string `query:"start" required:"true" format:"date-time"`
		End       string `query:"end" required:"true" format:"date-time"`
		ExcludeID string `query:"exclude_reservation_id"`
	}) (*itemBody[AvailabilityResponse], error) {
		if _, err := s.Environments.Get(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		start, end, err := parseInterval(input.Start, input.End)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		conflict := s.Environments.HasConflict(input.ID, start, end, input.ExcludeID)
		return item(AvailabilityResponse{
			EnvironmentID: input.ID,
			StartDate:     start,
			EndDate:       end,
			Available:     !conflict,
		}), nil
	})
}

func registerReservations(api huma.API, s *store.Stores) {
	huma.Register(api, huma.Operation{
		OperationID: "list-reservations",
		Method:      http.MethodGet,
		Path:        "/reservations",
		Summary:     "List reservations",
	}, func(ctx context.Context, input *struct {
		EnvironmentID string `query:"environment_id"`
	}) (*listBody[domain.EnvironmentReservation], error) {
		return items(s.Environments.Reservations(ctx, input.EnvironmentID)), nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "create-reservation",
		Method:        http.MethodPost,
		Path:          "/reservations",
		Summary:       "Reserve an environment",
		DefaultStatus: http.StatusCreated,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *struct {
		Body CreateReservationRequest `json:"body"`
	}) (*itemBody[domain.EnvironmentReservation], error) {
		r, err := s.Environments.Reserve(ctx, actorID(ctx), store.ReservationCreate{
			EnvironmentID: input.Body.EnvironmentID,
			MemberID:      input.Body.MemberID,
			EffortID:      input.Body.EffortID,
			StartDate:     input.Body.StartDate,
			EndDate:       input.Body.EndDate,
			Notes:         input.Body.Notes,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return item(r), nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "update-reservation",
		Method:      http.MethodPatch,
		Path:        "/reservations/{id}",
		Summary:     "Update a reservation",
		Errors:      crudErrors,
	}, func(ctx context.Context, input *struct {
		IDPath
		Body PatchReservationRequest `json:"body"`
	}) (*itemBody[domain.EnvironmentReservation], error) {
		r, err := s.Environments.UpdateReservation(ctx, actorID(ctx), input.ID, store.ReservationPatch{
			StartDate: input.Body.StartDate,
			EndDate:   input.Body.EndDate,
			Notes:     input.Body.Notes,
			EffortID:  input.Body.EffortID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return item(r), nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "delete-reservation",
		Method:        http.MethodDelete,
		Path:          "/reservations/{id}",
		Summary:       "Delete a reservation",
		DefaultStatus: http.StatusNoContent,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *IDPath) (*struct{}, error) {
		if err := s.Environments.DeleteReservation(ctx, actorID(ctx), input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerEfforts(api huma.API, s *store.Stores) {
	huma.Register(api, huma.Operation{
		OperationID: "list-efforts",
		Method:      http.MethodGet,
		Path:        "/efforts",
		Summary:     "List test efforts",
	}, func(ctx context.Context, input *struct {
		PIID       string `query:"pi_id"`
		SprintID   string `query:"sprint_id"`
		TeamID     string `query:"team_id"`
		AssigneeID string `query:"assignee_id"`
		Status     string `query:"status" enum:"planned,in_progress,blocked,done,verified,"`
		TestTypeID string `query:"test_type_id"`
		Search     string `query:"q"`
		Sort       string `query:"sort"`
		Order      string `query:"order" enum:"asc,desc,"`
	}) (*listBody[domain.TestEffort], error) {
		f := store.EffortFilters{
			PIID:       strFilter(input.PIID),
			SprintID:   strFilter(input.SprintID),
			TeamID:     strFilter(input.TeamID),
			AssigneeID: strFilter(input.AssigneeID),
			TestTypeID: strFilter(input.TestTypeID),
			Search:     input.Search,
		}
		if input.Status != "" {
			st := domain.Status(input.Status)
			f.Status = &st
		}
		efforts := s.Efforts.List(ctx, f)
		if input.Sort != "" {
			dir := view.Ascending
			if input.Order == "desc" {
				dir = view.Descending
			}
			efforts = view.Sort(efforts, view.SortState{Key: input.Sort, Dir: dir}, effortComparators)
		}
		return items(efforts), nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "create-effort",
		Method:        http.MethodPost,
		Path:          "/efforts",
		Summary:       "Create test effort",
		DefaultStatus: http.StatusCreated,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *struct {
		Body CreateEffortRequest `json:"body"`
	}) (*itemBody[domain.TestEffort], error) {
		e, err := s.Efforts.Create(ctx, actorID(ctx), store.EffortCreate{
			PIID:                 input.Body.PIID,
			SprintID:             input.Body.SprintID,
			TeamID:               input.Body.TeamID,
			TestTypeDefinitionID: input.Body.TestTypeDefinitionID,
			Title:                input.Body.Title,
			Description:          input.Body.Description,
			Priority:             input.Body.Priority,
			AssigneeID:           input.Body.AssigneeID,
			EnvironmentIDs:       input.Body.EnvironmentIDs,
			PlannedStartDate:     input.Body.PlannedStartDate,
			PlannedEndDate:       input.Body.PlannedEndDate,
			Estimate:             input.Body.Estimate,
			EstimateUnit:         input.Body.EstimateUnit,
			Tags:                 input.Body.Tags,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return item(e), nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "get-effort",
		Method:      http.MethodGet,
		Path:        "/efforts/{id}",
		Summary:     "Get test effort",
		Errors:      crudErrors,
	}, func(ctx context.Context, input *IDPath) (*itemBody[domain.TestEffort], error) {
		e, err := s.Efforts.Get(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return item(e), nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "update-effort",
		Method:      http.MethodPatch,
		Path:        "/efforts/{id}",
		Summary:     "Update test effort",
		Errors:      crudErrors,
	}, func(ctx context.Context, input *struct {
		IDPath
		Body PatchEffortRequest `json:"body"`
	}) (*itemBody[domain.TestEffort], error) {
		e, err := s.Efforts.Update(ctx, actorID(ctx), input.ID, store.EffortPatch{
			Title:            input.Body.Title,
			Description:      input.Body.Description,
			Status:           input.Body.Status,
			Priority:         input.Body.Priority,
			AssigneeID:       input.Body.AssigneeID,
			EnvironmentIDs:   input.Body.EnvironmentIDs,
			PlannedStartDate: input.Body.PlannedStartDate,
			PlannedEndDate:   input.Body.PlannedEndDate,
			ActualStartDate:  input.Body.ActualStartDate,
			ActualEndDate:    input.Body.ActualEndDate,
			Estimate:         input.Body.Estimate,
			EstimateUnit:     input.Body.EstimateUnit,
			Progress:         input.Body.Progress,
			Tags:             input.Body.Tags,
			SprintID:         input.Body.SprintID,
			TeamID:           input.Body.TeamID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return item(e), nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "delete-effort",
		Method:        http.MethodDelete,
		Path:          "/efforts/{id}",
		Summary:       "Delete test effort",
		DefaultStatus: http.StatusNoContent,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *IDPath) (*struct{}, error) {
		if err := s.Efforts.Delete(ctx, actorID(ctx), input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "add-effort-blocker",
		Method:        http.MethodPost,
		Path:          "/efforts/{id}/blockers",
		Summary:       "Add a blocker to an effort",
		DefaultStatus: http.StatusCreated,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *struct {
		IDPath
		Body AddBlockerRequest `json:"body"`
	}) (*itemBody[domain.EffortBlocker], error) {
		b, err := s.Efforts.AddBlocker(ctx, actorID(ctx), input.ID,
			input.Body.Title, input.Body.Description, input.Body.Category, input.Body.Severity)
		if err != nil {
			return nil, handleError(err)
		}
		return item(b), nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "remove-effort-blocker",
		Method:        http.MethodDelete,
		Path:          "/efforts/{id}/blockers/{blocker_id}",
		Summary:       "Remove a blocker from an effort",
		DefaultStatus: http.StatusNoContent,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *struct {
		IDPath
		BlockerID string `path:"blocker_id"`
	}) (*struct{}, error) {
		if err := s.Efforts.RemoveBlocker(ctx, actorID(ctx), input.ID, input.BlockerID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "add-effort-link",
		Method:        http.MethodPost,
		Path:          "/efforts/{id}/links",
		Summary:       "Attach a link to an effort",
		DefaultStatus: http.StatusCreated,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *struct {
		IDPath
		Body AddLinkRequest `json:"body"`
	}) (*itemBody[domain.EffortLink], error) {
		l, err := s.Efforts.AddLink(ctx, actorID(ctx), input.ID,
			input.Body.Title, input.Body.URL, input.Body.Type)
		if err != nil {
			return nil, handleError(err)
		}
		return item(l), nil
	})
	huma.Register(api, huma.Operation{
		OperationID:   "remove-effort-link",
		Method:        http.MethodDelete,
		Path:          "/efforts/{id}/links/{link_id}",
		Summary:       "Remove a link from an effort",
		DefaultStatus: http.StatusNoContent,
		Errors:        crudErrors,
	}, func(ctx context.Context, input *struct {
		IDPath
		LinkID string `path:"link_id"`
	}) (*struct{}, error) {
		if err := s.Efforts.RemoveLink(ctx, actorID(ctx), input.ID, input.LinkID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

// effortComparators are the sortable effort columns. Unknown keys leave
// the insertion order unchanged.
var effortComparators = map[string]func(a, b domain.TestEffort) bool{
	"title":    func(a, b domain.TestEffort) bool { return a.Title < b.Title },
	"status":   func(a, b domain.TestEffort) bool { return a.Status < b.Status },
	"priority": func(a, b domain.TestEffort) bool { return a.Priority < b.Priority },
	"progress": func(a, b domain.TestEffort) bool { return a.Progress < b.Progress },
	"planned_start_date": func(a, b domain.TestEffort) bool {
		switch {
		case a.PlannedStartDate == nil:
			return b.PlannedStartDate != nil
		case b.PlannedStartDate == nil:
			return false
		default:
			return a.PlannedStartDate.Before(*b.PlannedStartDate)
		}
	},
}

func registerAudit(api huma.API, s *store.Stores) {
	huma.Register(api, huma.Operation{
		OperationID: "recent-audit-events",
		Method:      http.MethodGet,
		Path:        "/audit",
		Summary:     "Recent audit events, newest first",
	}, func(ctx context.Context, input *struct {
		Limit int `query:"limit" minimum:"0" maximum:"1000"`
	}) (*listBody[domain.AuditEvent], error) {
		return items(s.Audit.Recent(input.Limit)), nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "entity-audit-events",
		Method:      http.MethodGet,
		Path:        "/audit/{entity_type}/{entity_id}",
		Summary:     "Audit events for one entity, newest first",
	}, func(ctx context.Context, input *struct {
		EntityType string `path:"entity_type"`
		EntityID   string `path:"entity_id"`
	}) (*listBody[domain.AuditEvent], error) {
		return items(s.Audit.ByEntity(domain.EntityType(input.EntityType), input.EntityID)), nil
	})
}

func registerReports(api huma.API, s *store.Stores) {
	huma.Register(api, huma.Operation{
		OperationID: "sprint-summary",
		Method:      http.MethodGet,
		Path:        "/reports/sprint-summary",
		Summary:     "Per-sprint effort status rollup",
	}, func(ctx context.Context, input *struct {
		PIID string `query:"pi_id"`
	}) (*listBody[report.SprintSummary], error) {
		sprints := s.Sprints.List(ctx, store.SprintFilters{PIID: strFilter(input.PIID)})
		efforts := s.Efforts.List(ctx, store.EffortFilters{PIID: strFilter(input.PIID)})
		return items(report.Summarize(sprints, efforts)), nil
	})
}

// registerCSVExport serves the export outside huma: the payload is CSV,
// not JSON.
func registerCSVExport(r chi.Router, basePath string, s *store.Stores) {
	r.Get(path.Join(basePath, "reports/efforts.csv"), func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		q := req.URL.Query()
		sprints := s.Sprints.List(ctx, store.SprintFilters{PIID: strFilter(q.Get("pi_id"))})
		efforts := s.Efforts.List(ctx, store.EffortFilters{
			PIID:   strFilter(q.Get("pi_id")),
			TeamID: strFilter(q.Get("team_id")),
		})
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="test-efforts.csv"`)
		// A mid-stream write failure leaves nothing to recover; headers
		// are already out.
		_ = report.WriteCSV(w, sprints, efforts, s.TestTypes, s.Teams)
	})
}

func registerMe(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/me",
		Summary:     "Current principal",
	}, func(ctx context.Context, _ *struct{}) (*itemBody[WhoAmIResponse], error) {
		p := principalFromContext(ctx)
		return item(WhoAmIResponse{ActorID: p.ActorID, Email: p.Email, Source: p.Source}), nil
	})
}

func registerDevAuth(api huma.API, s *store.Stores, authCfg AuthConfig) {
	huma.Register(api, huma.Operation{
		OperationID: "dev-login",
		Method:      http.MethodPost,
		Path:        "/auth/dev/login",
		Summary:     "DEV ONLY: mint a JWT for a workspace member",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body DevLoginRequest `json:"body"`
	}) (*itemBody[DevLoginResponse], error) {
		email := strings.TrimSpace(input.Body.Email)
		if email == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "email is required", nil)
		}
		m, err := s.Members.FindByEmail(ctx, email)
		if err != nil {
			return nil, handleError(err)
		}
		token, err := signDevToken(authCfg.JWTSecret, m.ID, m.Email)
		if err != nil {
			return nil, newAPIError(http.StatusInternalServerError, "internal_error", err.Error(), nil)
		}
		return item(DevLoginResponse{
			Token:    token,
			MemberID: m.ID,
			Name:     m.Name,
			Roles:    m.Roles,
		}), nil
	})
}

func parseInterval(start, end string) (time.Time, time.Time, error) {
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start: %w", err)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end: %w", err)
	}
	return s, e, nil
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	var spec []byte
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		if spec == nil {
			spec, _ = json.Marshal(api.OpenAPI())
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>TestOps API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
  </body>
</html>`, specURL)
}
