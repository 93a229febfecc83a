package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/larder/internal/grocery"
	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/store"
	"github.com/dukerupert/larder/internal/websocket"
)

type CategoryHandler struct {
	categoryStore *store.CategoryStore
	validate      *validator.Validate
	logger        *slog.Logger
	notifier
}

func NewCategoryHandler(cs *store.CategoryStore, validate *validator.Validate, hub websocket.Broadcaster, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryStore: cs,
		validate:      validate,
		logger:        logger.With("component", "category_handler"),
		notifier:      notifier{hub: hub},
	}
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryStore.List()
	if err != nil {
		writeServiceError(w, r, h.logger, err, "list categories")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	c, err := h.categoryStore.Create(req.Name)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "create category")
		return
	}

	h.notify(websocket.EntityCategory, websocket.ActionCreated, c.ID, nil)
	writeJSON(w, http.StatusCreated, c)
}

// Delete removes a category and, with it, every pantry item it holds.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	c, err := h.categoryStore.Delete(id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "delete category")
		return
	}

	h.notify(websocket.EntityCategory, websocket.ActionDeleted, c.ID, nil)
	h.notify(websocket.EntityPantry, websocket.ActionUpdated, 0, nil)
	h.notify(websocket.EntityGroceryList, websocket.ActionUpdated, 0, nil)
	writeJSON(w, http.StatusOK, c)
}

type categorySuggestion struct {
	Name       string          `json:"name"`
	Suggestion string          `json:"suggestion"`
	Category   *model.Category `json:"category"`
}

// Suggest guesses a category for an item name. Category is null when the
// guessed name has no matching category row.
func (h *CategoryHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	suggestion := grocery.Categorize(name)
	c, err := h.categoryStore.FindByName(suggestion)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "suggest category")
		return
	}
	writeJSON(w, http.StatusOK, categorySuggestion{Name: name, Suggestion: suggestion, Category: c})
}
