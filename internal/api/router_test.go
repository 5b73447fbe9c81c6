package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/isdelr/planforge-be/internal/auth"
	"github.com/isdelr/planforge-be/internal/database"
	"github.com/isdelr/planforge-be/internal/services"
)

func init() {
	auth.Init("test-secret")
}

const generatedPlanText = "1. Executive Summary\nA bakery in Austin.\n2. Market Analysis\nStrong demand."

type fakeProvider struct{}

func (fakeProvider) GeneratePlan(ctx context.Context, businessIdea, location string) (string, error) {
	return generatedPlanText, nil
}

func (fakeProvider) ExpandSection(ctx context.Context, sectionTitle, businessIdea, location string) (string, error) {
	return "Expanded detail for " + sectionTitle, nil
}

func (fakeProvider) AnswerQuestion(ctx context.Context, question, planContext string) (string, error) {
	return "Answer grounded in plan", nil
}

func (fakeProvider) TrendingIdeas(ctx context.Context) (string, error) {
	return "Idea one\nIdea two", nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	staticDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>app</html>"), 0644); err != nil {
		t.Fatalf("write index: %v", err)
	}

	router := NewRouter(
		services.NewUserService(db),
		services.NewPlanService(db, fakeProvider{}),
		services.NewTrendingService(),
		staticDir,
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, payload interface{}) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	decoded := map[string]json.RawMessage{}
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func str(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		t.Fatalf("expected string field, got %s", raw)
	}
	return s
}

func TestFullPlanLifecycle(t *testing.T) {
	srv := newTestServer(t)

	// Register
	resp, _ := doJSON(t, "POST", srv.URL+"/api/register", "", map[string]string{
		"email": "a@x.com", "password": "pw1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}

	// Login
	resp, body := doJSON(t, "POST", srv.URL+"/api/login", "", map[string]string{
		"email": "a@x.com", "password": "pw1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	token := str(t, body["token"])
	if token == "" {
		t.Fatalf("login returned no token")
	}
	if got := str(t, body["username"]); got != "a" {
		t.Fatalf("unexpected username %q", got)
	}

	// Generate a plan
	resp, body = doJSON(t, "POST", srv.URL+"/api/generate-plan", token, map[string]string{
		"businessIdea": "bakery", "location": "Austin",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate: expected 200, got %d", resp.StatusCode)
	}
	if plan := str(t, body["businessPlan"]); plan != generatedPlanText {
		t.Fatalf("unexpected plan text: %q", plan)
	}
	var sections []struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(body["sections"], &sections); err != nil {
		t.Fatalf("decode sections: %v", err)
	}
	if len(sections) != 2 || sections[0].Title != "1. Executive Summary" {
		t.Fatalf("unexpected sections: %+v", sections)
	}

	// Save a structured plan with two sections
	resp, _ = doJSON(t, "POST", srv.URL+"/api/save-plan", token, map[string]interface{}{
		"planContent": map[string]interface{}{
			"businessType": "bakery",
			"location":     "Austin",
			"dateCreated":  "2024-05-01T10:00:00Z",
			"sections": []map[string]string{
				{"title": "1. Executive Summary", "content": "A bakery in Austin."},
				{"title": "2. Market Analysis", "content": "Strong demand."},
			},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save: expected 200, got %d", resp.StatusCode)
	}

	// Profile shows one saved plan
	resp, body = doJSON(t, "GET", srv.URL+"/api/profile", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d", resp.StatusCode)
	}
	var saved []string
	if err := json.Unmarshal(body["savedPlans"], &saved); err != nil {
		t.Fatalf("decode savedPlans: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("expected 1 saved plan, got %d", len(saved))
	}

	// Delete it
	resp, _ = doJSON(t, "POST", srv.URL+"/api/delete-plan", token, map[string]int{"planIndex": 0})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}

	resp, body = doJSON(t, "GET", srv.URL+"/api/profile", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d", resp.StatusCode)
	}
	saved = nil
	json.Unmarshal(body["savedPlans"], &saved)
	if len(saved) != 0 {
		t.Fatalf("expected no saved plans after delete, got %d", len(saved))
	}
}

func TestDeleteOutOfRangeLeavesListUnchanged(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, "POST", srv.URL+"/api/register", "", map[string]string{"email": "a@x.com", "password": "pw1"})
	_, body := doJSON(t, "POST", srv.URL+"/api/login", "", map[string]string{"email": "a@x.com", "password": "pw1"})
	token := str(t, body["token"])

	doJSON(t, "POST", srv.URL+"/api/save-plan", token, map[string]interface{}{
		"planContent": map[string]interface{}{
			"businessType": "bakery",
			"sections":     []map[string]string{{"title": "1. Summary", "content": "Bread."}},
		},
	})

	resp, _ := doJSON(t, "POST", srv.URL+"/api/delete-plan", token, map[string]int{"planIndex": 5})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range index, got %d", resp.StatusCode)
	}

	_, body = doJSON(t, "GET", srv.URL+"/api/profile", token, nil)
	var saved []string
	json.Unmarshal(body["savedPlans"], &saved)
	if len(saved) != 1 {
		t.Fatalf("failed delete must leave the list unchanged, got %d", len(saved))
	}
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, "POST", srv.URL+"/api/register", "", map[string]string{"email": "a@x.com", "password": "pw1"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first register: expected 201, got %d", resp.StatusCode)
	}
	resp, body := doJSON(t, "POST", srv.URL+"/api/register", "", map[string]string{"email": "a@x.com", "password": "pw2"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("second register: expected 400, got %d", resp.StatusCode)
	}
	if len(body["error"]) == 0 {
		t.Fatalf("expected error body")
	}
}

func TestProtectedEndpointsRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	endpoints := []struct {
		method, path string
	}{
		{"GET", "/api/get-username"},
		{"POST", "/api/generate-plan"},
		{"POST", "/api/expand-section"},
		{"POST", "/api/chat"},
		{"POST", "/api/save-plan"},
		{"GET", "/api/profile"},
		{"GET", "/api/plans"},
		{"POST", "/api/delete-plan"},
	}

	for _, ep := range endpoints {
		resp, _ := doJSON(t, ep.method, srv.URL+ep.path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s %s without token: expected 401, got %d", ep.method, ep.path, resp.StatusCode)
		}
	}

	for _, ep := range endpoints {
		req, _ := http.NewRequest(ep.method, srv.URL+ep.path, nil)
		req.Header.Set("Authorization", "Bearer bogus-token")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", ep.method, ep.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s %s with bad token: expected 403, got %d", ep.method, ep.path, resp.StatusCode)
		}
	}
}

func TestExpandAndChat(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, "POST", srv.URL+"/api/register", "", map[string]string{"email": "a@x.com", "password": "pw1"})
	_, body := doJSON(t, "POST", srv.URL+"/api/login", "", map[string]string{"email": "a@x.com", "password": "pw1"})
	token := str(t, body["token"])

	resp, body := doJSON(t, "POST", srv.URL+"/api/expand-section", token, map[string]string{
		"sectionTitle": "2. Market Analysis", "businessIdea": "bakery", "location": "Austin",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expand: expected 200, got %d", resp.StatusCode)
	}
	if got := str(t, body["expandedContent"]); got != "Expanded detail for 2. Market Analysis" {
		t.Fatalf("unexpected expanded content: %q", got)
	}

	resp, body = doJSON(t, "POST", srv.URL+"/api/chat", token, map[string]string{
		"question": "What is the break-even point?", "context": generatedPlanText,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("chat: expected 200, got %d", resp.StatusCode)
	}
	if got := str(t, body["answer"]); got == "" {
		t.Fatalf("expected non-empty answer")
	}
}

func TestTrendingIdeasIsPublic(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, "GET", srv.URL+"/api/trending-ideas", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var ideas []string
	if err := json.Unmarshal(body["trendingIdeas"], &ideas); err != nil || len(ideas) == 0 {
		t.Fatalf("expected seeded trending ideas, got %s", body["trendingIdeas"])
	}
}

func TestSPAFallback(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/some/client/route")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected SPA fallback 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/no-such-endpoint")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown api route must 404, got %d", resp.StatusCode)
	}
}
