// Package handler exposes the pantry, grocery, meal and planner operations
// as JSON routes.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/larder/internal/middleware"
	"github.com/dukerupert/larder/internal/ordering"
	"github.com/dukerupert/larder/internal/pantry"
	"github.com/dukerupert/larder/internal/store"
	"github.com/dukerupert/larder/internal/websocket"
)

const maxBodyBytes = 1 << 20

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// parseCategoryParam reads an optional categoryId query value. Empty or
// "null" selects the Uncategorized bucket.
func parseCategoryParam(r *http.Request) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("categoryId"))
	if raw == "" || raw == "null" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type validationResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// validationFields maps each failing field to the tag it failed. Nested
// fields keep their path below the top-level struct, e.g. items[0].name.
func validationFields(err error) map[string]string {
	fields := make(map[string]string)
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return fields
	}
	for _, ve := range ves {
		ns := ve.Namespace()
		if _, rest, ok := strings.Cut(ns, "."); ok {
			ns = rest
		}
		fields[ns] = ve.Tag()
	}
	return fields
}

// decodeAndValidate reads a JSON body into v and validates it. On failure
// it writes a 400 and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeJSON(w, http.StatusBadRequest, validationResponse{
			Error:  "validation failed",
			Fields: validationFields(err),
		})
		return false
	}
	return true
}

// writeServiceError translates a store or service error into a response.
// Unexpected errors are logged and reported as "failed to <action>".
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, action string) {
	var dup *store.DuplicateNameError
	switch {
	case errors.As(err, &dup):
		writeError(w, http.StatusBadRequest, dup.Error())
	case errors.Is(err, store.ErrNotFound), errors.Is(err, ordering.ErrUnknownItem):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ordering.ErrItemBeingEdited):
		writeError(w, http.StatusConflict, ordering.ErrItemBeingEdited.Error())
	case errors.Is(err, pantry.ErrMissingCategory):
		logger.Error(action, "error", err, "request_id", middleware.RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, pantry.ErrMissingCategory.Error())
	default:
		logger.Error(action, "error", err, "request_id", middleware.RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// notifier broadcasts change messages when a hub is attached.
type notifier struct {
	hub websocket.Broadcaster
}

func (n notifier) notify(entity, action string, id int64, extra map[string]any) {
	if n.hub != nil {
		n.hub.Broadcast(websocket.NewMessage(entity, action, id, extra))
	}
}

// categoryExists reports whether a nullable category reference resolves.
// Nil always resolves to Uncategorized.
func categoryExists(cs *store.CategoryStore, id *int64) (bool, error) {
	if id == nil {
		return true, nil
	}
	c, err := cs.GetByID(*id)
	if err != nil {
		return false, err
	}
	return c != nil, nil
}
