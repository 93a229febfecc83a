package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/larder/internal/backup"
	"github.com/dukerupert/larder/internal/model"
)

type BackupHandler struct {
	manager *backup.Manager
	logger  *slog.Logger
}

func NewBackupHandler(m *backup.Manager, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, logger: logger.With("component", "backup_handler")}
}

type backupOverview struct {
	Status  backup.Status  `json:"status"`
	Backups []model.Backup `json:"backups"`
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	backups, err := h.manager.History(20)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "list backups")
		return
	}
	if backups == nil {
		backups = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, backupOverview{Status: h.manager.Status(), Backups: backups})
}

func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request) {
	b, err := h.manager.RunNow(r.Context())
	switch {
	case errors.Is(err, backup.ErrDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case errors.Is(err, backup.ErrInProgress):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeServiceError(w, r, h.logger, err, "run backup")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// Download serves the decrypted database snapshot of a completed backup.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	data, err := h.manager.Download(r.Context(), id)
	if errors.Is(err, backup.ErrDisabled) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		writeServiceError(w, r, h.logger, err, "download backup")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.sqlite3")
	w.Header().Set("Content-Disposition", `attachment; filename="larder-backup-`+strconv.FormatInt(id, 10)+`.db"`)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, data)
}
