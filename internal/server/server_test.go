package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"testops/internal/audit"
	"testops/internal/domain"
	"testops/internal/storage"
	"testops/internal/store"
	testopssdk "testops/sdk/go"
)

type testServer struct {
	URL    string
	client *http.Client
	close  func()
}

func (s *testServer) Close() { s.close() }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	adapter := storage.NewAdapter(storage.NewMemory(), log.New(io.Discard, "", 0))
	stores := store.New(adapter, audit.NewLog(), store.Options{})
	handler, err := New(Config{
		Stores:   stores,
		BasePath: "/v0",
		Auth: AuthConfig{
			JWTSecret:        "test-secret",
			AllowActorHeader: true,
			Logger:           log.New(io.Discard, "", 0),
		},
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	ts := &testServer{
		URL:    "http://" + ln.Addr().String(),
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
		},
	}
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func errorCode(t *testing.T, data []byte) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, data)
	}
	return env.Error.Code
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	res, data := doJSON(t, ts.client, http.MethodGet, ts.URL+"/v0/health", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", res.StatusCode, data)
	}
	var body struct {
		Status          string `json:"status"`
		StorageDegraded bool   `json:"storage_degraded"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.StorageDegraded {
		t.Fatalf("body = %+v", body)
	}
}

func TestTeamCRUD(t *testing.T) {
	ts := newTestServer(t)
	res, data := doJSON(t, ts.client, http.MethodPost, ts.URL+"/v0/teams",
		map[string]any{"name": "Perf Team"}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d: %s", res.StatusCode, data)
	}
	var team domain.Team
	if err := json.Unmarshal(data, &team); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if team.ID == "" || team.Name != "Perf Team" {
		t.Fatalf("team = %+v", team)
	}

	res, _ = doJSON(t, ts.client, http.MethodGet, ts.URL+"/v0/teams/"+team.ID, nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", res.StatusCode)
	}

	res, data = doJSON(t, ts.client, http.MethodPost, ts.URL+"/v0/teams", map[string]any{"name": ""}, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty name status = %d: %s", res.StatusCode, data)
	}
	if code := errorCode(t, data); code != "bad_request" {
		t.Fatalf("code = %s", code)
	}

	res, data = doJSON(t, ts.client, http.MethodGet, ts.URL+"/v0/efforts/effort-404", nil, nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("missing effort status = %d", res.StatusCode)
	}
	if code := errorCode(t, data); code != "not_found" {
		t.Fatalf("code = %s", code)
	}
}

func TestReservationConflictOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	mk := func(start, end string) (*http.Response, []byte) {
		return doJSON(t, ts.client, http.MethodPost, ts.URL+"/v0/reservations", map[string]any{
			"environment_id": "env-1",
			"member_id":      "member-1",
			"start_date":     start,
			"end_date":       end,
		}, nil)
	}

	res, data := mk("2026-01-05T00:00:00Z", "2026-01-10T00:00:00Z")
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("first reservation status = %d: %s", res.StatusCode, data)
	}

	res, data = mk("2026-01-08T00:00:00Z", "2026-01-12T00:00:00Z")
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("overlap status = %d: %s", res.StatusCode, data)
	}
	if code := errorCode(t, data); code != "reservation_conflict" {
		t.Fatalf("code = %s", code)
	}

	// Back-to-back intervals share a boundary instant without conflicting.
	res, data = mk("2026-01-10T00:00:00Z", "2026-01-12T00:00:00Z")
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("touching status = %d: %s", res.StatusCode, data)
	}
}

func TestEffortFiltersOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	res, data := doJSON(t, ts.client, http.MethodGet, ts.URL+"/v0/efforts?status=blocked", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", res.StatusCode, data)
	}
	var efforts []domain.TestEffort
	if err := json.Unmarshal(data, &efforts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(efforts) != 1 || efforts[0].ID != "effort-4" {
		t.Fatalf("blocked efforts = %d", len(efforts))
	}

	res, data = doJSON(t, ts.client, http.MethodGet, ts.URL+"/v0/efforts", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if err := json.Unmarshal(data, &efforts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(efforts) != 4 {
		t.Fatalf("unfiltered efforts = %d", len(efforts))
	}
}

func TestActorHeaderAttribution(t *testing.T) {
	ts := newTestServer(t)
	res, data := doJSON(t, ts.client, http.MethodPost, ts.URL+"/v0/teams",
		map[string]any{"name": "Header Team"}, map[string]string{"X-Actor-Id": "alice"})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d: %s", res.StatusCode, data)
	}

	res, data = doJSON(t, ts.client, http.MethodGet, ts.URL+"/v0/audit?limit=1", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("audit status = %d", res.StatusCode)
	}
	var events []domain.AuditEvent
	if err := json.Unmarshal(data, &events); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != 1 || events[0].UserID != "alice" {
		t.Fatalf("events = %+v", events)
	}
}

func TestDevLoginAndSDK(t *testing.T) {
	ts := newTestServer(t)
	client := testopssdk.New(ts.URL)

	memberID, err := client.DevLogin(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("dev login: %v", err)
	}
	if memberID != "member-1" {
		t.Fatalf("member id = %s", memberID)
	}

	// The minted token authenticates follow-up requests.
	res, data := doJSON(t, ts.client, http.MethodGet, ts.URL+"/v0/me", nil,
		map[string]string{"Authorization": "Bearer " + client.BearerToken})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d: %s", res.StatusCode, data)
	}
	var me WhoAmIResponse
	if err := json.Unmarshal(data, &me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.ActorID != "member-1" || me.Source != "jwt" {
		t.Fatalf("me = %+v", me)
	}

	efforts, err := client.ListEfforts(context.Background(), testopssdk.EffortFilters{Status: "blocked"})
	if err != nil {
		t.Fatalf("list efforts: %v", err)
	}
	if len(efforts) != 1 || efforts[0].ID != "effort-4" {
		t.Fatalf("efforts = %d", len(efforts))
	}

	if _, err := client.DevLogin(context.Background(), "nobody@example.com"); err == nil {
		t.Fatal("unknown email accepted")
	}

	// Garbage bearer tokens are rejected outright.
	res, _ = doJSON(t, ts.client, http.MethodGet, ts.URL+"/v0/me", nil,
		map[string]string{"Authorization": "Bearer not-a-token"})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d", res.StatusCode)
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	ts := newTestServer(t)
	client := testopssdk.New(ts.URL)
	ctx := context.Background()

	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	if _, err := client.Reserve(ctx, "env-1", "member-1", start, end); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	free, err := client.Availability(ctx, "env-1", start.AddDate(0, 0, 2), end.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if free {
		t.Fatal("overlapping interval reported available")
	}

	free, err = client.Availability(ctx, "env-1", end, end.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if !free {
		t.Fatal("touching interval reported unavailable")
	}
}

func TestCSVExportEndpoint(t *testing.T) {
	ts := newTestServer(t)
	res, data := doJSON(t, ts.client, http.MethodGet, ts.URL+"/v0/reports/efforts.csv", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %s", ct)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if lines[0] != `"Sprint","Effort Title","Status","Type","Priority","Team","Start Date","End Date","Progress %"` {
		t.Fatalf("header = %s", lines[0])
	}
	// Seeded sprint-1 holds all four efforts.
	if len(lines) != 5 {
		t.Fatalf("lines = %d", len(lines))
	}
}

func TestSprintSummaryEndpoint(t *testing.T) {
	ts := newTestServer(t)
	res, data := doJSON(t, ts.client, http.MethodGet, ts.URL+"/v0/reports/sprint-summary", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", res.StatusCode, data)
	}
	var summaries []struct {
		SprintID string `json:"sprint_id"`
		Total    int    `json:"total"`
		Blocked  int    `json:"blocked"`
	}
	if err := json.Unmarshal(data, &summaries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("summaries = %d", len(summaries))
	}
	if summaries[0].SprintID != "sprint-1" || summaries[0].Total != 4 || summaries[0].Blocked != 1 {
		t.Fatalf("sprint-1 summary = %+v", summaries[0])
	}
}
