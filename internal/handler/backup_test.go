package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/larder/internal/backup"
	"github.com/dukerupert/larder/internal/database"
	"github.com/dukerupert/larder/internal/store"
)

func setupBackupMux(t *testing.T) *http.ServeMux {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := backup.NewManager(backup.Config{}, db, store.NewBackupStore(db), nil, logger)
	h := NewBackupHandler(m, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/backups", h.List)
	mux.HandleFunc("POST /api/backups", h.Create)
	mux.HandleFunc("GET /api/backups/{id}/download", h.Download)
	return mux
}

func TestBackupsDisabled(t *testing.T) {
	mux := setupBackupMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/backups", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var overview struct {
		Status struct {
			State string `json:"state"`
		} `json:"status"`
		Backups []json.RawMessage `json:"backups"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&overview); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if overview.Status.State != "disabled" {
		t.Errorf("state = %q, want disabled", overview.Status.State)
	}
	if overview.Backups == nil || len(overview.Backups) != 0 {
		t.Errorf("backups = %v, want empty array", overview.Backups)
	}

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodPost, "/api/backups", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/backups/1/download", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/backups/abc/download", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}
}
