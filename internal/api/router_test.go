package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/propeval/propeval/internal/middleware"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewRouter(NewMemoryStore()).Register(mux)
	srv := httptest.NewServer(middleware.WithAuth(mux))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func registerTeam(t *testing.T, base string) string {
	t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	status := doJSON(t, http.MethodPost, base+"/api/auth/register", "", map[string]string{
		"email":     "admin@example.com",
		"password":  "Secret123!",
		"team_name": "Test Team",
	}, &resp)
	if status != http.StatusOK || resp.Token == "" {
		t.Fatalf("register failed: status=%d token=%q", status, resp.Token)
	}
	return resp.Token
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/api/properties", "/api/questions", "/api/analytics/summary", "/api/export", "/api/notifications"} {
		if status := doJSON(t, http.MethodGet, srv.URL+path, "", nil, nil); status != http.StatusUnauthorized {
			t.Fatalf("GET %s without token: expected 401, got %d", path, status)
		}
	}
}

func TestEvaluationRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	token := registerTeam(t, srv.URL)

	var prop struct {
		ID int64 `json:"id"`
	}
	if status := doJSON(t, http.MethodPost, srv.URL+"/api/properties", token, map[string]any{
		"name": "Elm Street 12", "address": "Elm Street 12, Springfield",
	}, &prop); status != http.StatusOK || prop.ID == 0 {
		t.Fatalf("create property failed: status=%d id=%d", status, prop.ID)
	}

	var q struct {
		ID int64 `json:"id"`
	}
	if status := doJSON(t, http.MethodPost, srv.URL+"/api/questions", token, map[string]any{
		"category": "condition", "text": "Roof state?", "weight": 10,
	}, &q); status != http.StatusOK || q.ID == 0 {
		t.Fatalf("create question failed: status=%d id=%d", status, q.ID)
	}

	var good, bad struct {
		ID int64 `json:"id"`
	}
	choicesURL := fmt.Sprintf("%s/api/questions/%d/choices", srv.URL, q.ID)
	doJSON(t, http.MethodPost, choicesURL, token, map[string]any{"answer_text": "New", "answer_value": 100}, &good)
	doJSON(t, http.MethodPost, choicesURL, token, map[string]any{"answer_text": "Leaky", "answer_value": 0}, &bad)
	if good.ID == 0 || bad.ID == 0 {
		t.Fatalf("choice creation failed: %+v %+v", good, bad)
	}

	var ev struct {
		TotalScore int `json:"total_score"`
		StarRating int `json:"star_rating"`
	}
	if status := doJSON(t, http.MethodPost, srv.URL+"/api/evaluation/submit", "", map[string]any{
		"property_id": prop.ID,
		"answers":     []map[string]any{{"question_id": q.ID, "answer_choice_id": good.ID}},
	}, &ev); status != http.StatusOK {
		t.Fatalf("submit failed: status=%d", status)
	}
	if ev.TotalScore != 100 || ev.StarRating != 5 {
		t.Fatalf("expected 100/5 stars, got %d/%d", ev.TotalScore, ev.StarRating)
	}

	var fetched struct {
		TotalScore int `json:"total_score"`
	}
	evalURL := fmt.Sprintf("%s/api/properties/%d/evaluation", srv.URL, prop.ID)
	if status := doJSON(t, http.MethodGet, evalURL, token, nil, &fetched); status != http.StatusOK || fetched.TotalScore != 100 {
		t.Fatalf("fetch evaluation: status=%d score=%d", status, fetched.TotalScore)
	}

	// Resubmission replaces the stored result.
	doJSON(t, http.MethodPost, srv.URL+"/api/evaluation/submit", "", map[string]any{
		"property_id": prop.ID,
		"answers":     []map[string]any{{"question_id": q.ID, "answer_choice_id": bad.ID}},
	}, &ev)
	if ev.TotalScore != 0 || ev.StarRating != 1 {
		t.Fatalf("expected replacement to 0/1 star, got %d/%d", ev.TotalScore, ev.StarRating)
	}
}

func TestSubmitUnknownProperty(t *testing.T) {
	srv := newTestServer(t)
	status := doJSON(t, http.MethodPost, srv.URL+"/api/evaluation/submit", "", map[string]any{
		"property_id": 9999,
		"answers":     []map[string]any{},
	}, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown property, got %d", status)
	}
}

func TestNotificationsAndAnalytics(t *testing.T) {
	srv := newTestServer(t)
	token := registerTeam(t, srv.URL)

	var prop struct {
		ID int64 `json:"id"`
	}
	doJSON(t, http.MethodPost, srv.URL+"/api/properties", token, map[string]any{"name": "Oak Ave 3"}, &prop)
	var q struct {
		ID int64 `json:"id"`
	}
	doJSON(t, http.MethodPost, srv.URL+"/api/questions", token, map[string]any{"category": "location", "text": "Transit?", "weight": 5}, &q)
	var c struct {
		ID int64 `json:"id"`
	}
	doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/questions/%d/choices", srv.URL, q.ID), token, map[string]any{"answer_text": "Close", "answer_value": 80}, &c)
	doJSON(t, http.MethodPost, srv.URL+"/api/evaluation/submit", "", map[string]any{
		"property_id": prop.ID,
		"answers":     []map[string]any{{"question_id": q.ID, "answer_choice_id": c.ID}},
	}, nil)

	var feed struct {
		Notifications []struct {
			ID   string `json:"id"`
			Kind string `json:"kind"`
			Read bool   `json:"read"`
		} `json:"notifications"`
	}
	if status := doJSON(t, http.MethodGet, srv.URL+"/api/notifications", token, nil, &feed); status != http.StatusOK {
		t.Fatalf("list notifications: status=%d", status)
	}
	if len(feed.Notifications) != 1 || feed.Notifications[0].Kind != "evaluation_submitted" {
		t.Fatalf("unexpected notifications: %+v", feed.Notifications)
	}
	readURL := srv.URL + "/api/notifications/" + feed.Notifications[0].ID + "/read"
	if status := doJSON(t, http.MethodPost, readURL, token, nil, nil); status != http.StatusOK {
		t.Fatalf("mark read: status=%d", status)
	}

	var summary struct {
		TotalEvaluations int   `json:"total_evaluations"`
		StarHistogram    []int `json:"star_histogram"`
	}
	if status := doJSON(t, http.MethodGet, srv.URL+"/api/analytics/summary", token, nil, &summary); status != http.StatusOK {
		t.Fatalf("analytics: status=%d", status)
	}
	if summary.TotalEvaluations != 1 {
		t.Fatalf("expected one evaluation in summary, got %d", summary.TotalEvaluations)
	}
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(t)
	token := registerTeam(t, srv.URL)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/export?format=evaluations", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("export request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: status=%d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected csv content type, got %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(body), "property_id,property_name,total_score,star_rating,submitted_at") {
		t.Fatalf("unexpected csv header: %q", string(body))
	}

	if status := doJSON(t, http.MethodGet, srv.URL+"/api/export?format=bogus", token, nil, nil); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d", status)
	}
}

func TestTeamIsolation(t *testing.T) {
	srv := newTestServer(t)
	tokenA := registerTeam(t, srv.URL)

	var respB struct {
		Token string `json:"token"`
	}
	doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"email": "other@example.com", "password": "Secret123!", "team_name": "Other",
	}, &respB)

	var prop struct {
		ID int64 `json:"id"`
	}
	doJSON(t, http.MethodPost, srv.URL+"/api/properties", tokenA, map[string]any{"name": "Private"}, &prop)

	status := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/properties/%d", srv.URL, prop.ID), respB.Token, nil, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for cross-team access, got %d", status)
	}
}
