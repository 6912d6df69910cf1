// Package testopssdk is a minimal TestOps HTTP API client.
package testopssdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"testops/internal/domain"
)

// Client talks to a TestOps server. Zero value plus BaseURL is usable.
type Client struct {
	BaseURL     string
	BearerToken string
	ActorID     string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// EffortFilters narrow ListEfforts. Empty strings apply no constraint.
type EffortFilters struct {
	PIID       string
	SprintID   string
	TeamID     string
	AssigneeID string
	Status     string
	TestTypeID string
	Search     string
}

// DevLogin mints a JWT for a seeded member and stores it on the client.
func (c *Client) DevLogin(ctx context.Context, email string) (string, error) {
	var resp struct {
		Token    string `json:"token"`
		MemberID string `json:"member_id"`
	}
	err := c.do(ctx, http.MethodPost, "v0/auth/dev/login", map[string]any{"email": email}, &resp)
	if err != nil {
		return "", err
	}
	c.BearerToken = resp.Token
	return resp.MemberID, nil
}

func (c *Client) ListTeams(ctx context.Context) ([]domain.Team, error) {
	var resp []domain.Team
	err := c.do(ctx, http.MethodGet, "v0/teams", nil, &resp)
	return resp, err
}

func (c *Client) CreateTeam(ctx context.Context, name, description string) (domain.Team, error) {
	var resp domain.Team
	err := c.do(ctx, http.MethodPost, "v0/teams", map[string]any{
		"name":        name,
		"description": description,
	}, &resp)
	return resp, err
}

func (c *Client) ListEfforts(ctx context.Context, f EffortFilters) ([]domain.TestEffort, error) {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("pi_id", f.PIID)
	set("sprint_id", f.SprintID)
	set("team_id", f.TeamID)
	set("assignee_id", f.AssigneeID)
	set("status", f.Status)
	set("test_type_id", f.TestTypeID)
	set("q", f.Search)
	endpoint := "v0/efforts"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp []domain.TestEffort
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) CreateEffort(ctx context.Context, title, sprintID, teamID string) (domain.TestEffort, error) {
	var resp domain.TestEffort
	err := c.do(ctx, http.MethodPost, "v0/efforts", map[string]any{
		"title":     title,
		"sprint_id": sprintID,
		"team_id":   teamID,
	}, &resp)
	return resp, err
}

func (c *Client) SetEffortStatus(ctx context.Context, id, status string) (domain.TestEffort, error) {
	var resp domain.TestEffort
	endpoint := fmt.Sprintf("v0/efforts/%s", url.PathEscape(id))
	err := c.do(ctx, http.MethodPatch, endpoint, map[string]any{"status": status}, &resp)
	return resp, err
}

func (c *Client) Reserve(ctx context.Context, environmentID, memberID string, start, end time.Time) (domain.EnvironmentReservation, error) {
	var resp domain.EnvironmentReservation
	err := c.do(ctx, http.MethodPost, "v0/reservations", map[string]any{
		"environment_id": environmentID,
		"member_id":      memberID,
		"start_date":     start.Format(time.RFC3339),
		"end_date":       end.Format(time.RFC3339),
	}, &resp)
	return resp, err
}

func (c *Client) ListReservations(ctx context.Context, environmentID string) ([]domain.EnvironmentReservation, error) {
	endpoint := "v0/reservations"
	if environmentID != "" {
		endpoint += "?environment_id=" + url.QueryEscape(environmentID)
	}
	var resp []domain.EnvironmentReservation
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// Availability reports whether [start, end) is free on an environment.
func (c *Client) Availability(ctx context.Context, environmentID string, start, end time.Time) (bool, error) {
	endpoint := fmt.Sprintf("v0/environments/%s/availability?start=%s&end=%s",
		url.PathEscape(environmentID),
		url.QueryEscape(start.Format(time.RFC3339)),
		url.QueryEscape(end.Format(time.RFC3339)))
	var resp struct {
		Available bool `json:"available"`
	}
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp.Available, err
}

func (c *Client) RecentAudit(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	endpoint := "v0/audit"
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	var resp []domain.AuditEvent
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	u := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case c.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	case c.ActorID != "":
		req.Header.Set("X-Actor-Id", c.ActorID)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
