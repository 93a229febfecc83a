package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/larder/internal/database"
	"github.com/dukerupert/larder/internal/llm"
)

type stubGenerator struct{}

func (stubGenerator) GenerateContent(context.Context, llm.Prompt) (string, error) {
	return `["Toast"]`, nil
}

func newTestServer(t *testing.T, cfg Config) http.Handler {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(db, stubGenerator{}, cfg, logger).Router()
}

func TestHealthIsPublic(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("token"), bcrypt.MinCost)
	router := newTestServer(t, Config{TokenHash: string(hash)})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected request id header")
	}
}

func TestAPIRequiresToken(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("token"), bcrypt.MinCost)
	router := newTestServer(t, Config{TokenHash: string(hash)})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/categories", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	req := httptest.NewRequest("GET", "/api/categories", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("with token status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRoutesResolve(t *testing.T) {
	router := newTestServer(t, Config{})

	tests := []struct {
		method, path, body string
		want               int
	}{
		{"GET", "/api/categories", "", http.StatusOK},
		{"GET", "/api/pantry-items", "", http.StatusOK},
		{"GET", "/api/pantry-items/42", "", http.StatusNotFound},
		{"PUT", "/api/pantry-items/orders", `{"items":[]}`, http.StatusBadRequest},
		{"POST", "/api/pantry-items/orders/normalize", "", http.StatusOK},
		{"GET", "/api/grocery-list-items", "", http.StatusOK},
		{"DELETE", "/api/grocery-list-items/by-category", "", http.StatusOK},
		{"GET", "/api/meal-plan?week=2026-03-02", "", http.StatusOK},
		{"GET", "/api/meal-plan/export.ics", "", http.StatusOK},
		{"POST", "/api/meals/suggestions", `{"itemNames":["bread"]}`, http.StatusOK},
		{"GET", "/api/backups", "", http.StatusOK},
		{"POST", "/api/backups", "", http.StatusServiceUnavailable},
		{"PATCH", "/api/categories", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		var body io.Reader
		if tt.body != "" {
			body = strings.NewReader(tt.body)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, body))
		if rec.Code != tt.want {
			t.Errorf("%s %s: status = %d, want %d (%s)", tt.method, tt.path, rec.Code, tt.want, rec.Body)
		}
	}
}

func TestMealRoutesRateLimited(t *testing.T) {
	router := newTestServer(t, Config{MealRateLimit: 2})

	var last int
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/meals/suggestions", strings.NewReader(`{"itemNames":["bread"]}`)))
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("3rd request status = %d, want %d", last, http.StatusTooManyRequests)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/categories", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("non-meal route status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestMealDetailsRateLimitKeepsShape(t *testing.T) {
	router := newTestServer(t, Config{MealRateLimit: 1})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/meals/details?mealName=Toast", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/meals/details?mealName=Toast", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}

	var body struct {
		Error       string   `json:"error"`
		MealName    string   `json:"mealName"`
		Ingredients []string `json:"ingredients"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error == "" || body.MealName != "Toast" || body.Ingredients == nil || len(body.Ingredients) != 0 {
		t.Errorf("body = %+v, want error with mealName Toast and empty ingredients", body)
	}
}
