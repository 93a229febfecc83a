package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/ordering"
	"github.com/dukerupert/larder/internal/pantry"
	"github.com/dukerupert/larder/internal/store"
	"github.com/dukerupert/larder/internal/websocket"
)

type PantryHandler struct {
	pantryStore   *store.PantryStore
	categoryStore *store.CategoryStore
	reconcile     *pantry.Service
	ordering      *ordering.Service
	validate      *validator.Validate
	logger        *slog.Logger
	notifier
}

func NewPantryHandler(
	ps *store.PantryStore,
	cs *store.CategoryStore,
	reconcile *pantry.Service,
	ord *ordering.Service,
	validate *validator.Validate,
	hub websocket.Broadcaster,
	logger *slog.Logger,
) *PantryHandler {
	return &PantryHandler{
		pantryStore:   ps,
		categoryStore: cs,
		reconcile:     reconcile,
		ordering:      ord,
		validate:      validate,
		logger:        logger.With("component", "pantry_handler"),
		notifier:      notifier{hub: hub},
	}
}

func (h *PantryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.pantryStore.List()
	if err != nil {
		writeServiceError(w, r, h.logger, err, "list pantry items")
		return
	}
	if items == nil {
		items = []model.PantryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *PantryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := h.pantryStore.GetByID(id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get pantry item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "pantry item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// requireCategory writes a 400 and returns false when id names a missing
// category.
func (h *PantryHandler) requireCategory(w http.ResponseWriter, r *http.Request, id *int64) bool {
	ok, err := categoryExists(h.categoryStore, id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "check category")
		return false
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "category not found")
		return false
	}
	return true
}

func (h *PantryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.CreatePantryItemInput
	if !decodeAndValidate(w, r, h.validate, &in) {
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !h.requireCategory(w, r, in.CategoryID) {
		return
	}

	item, err := h.pantryStore.Create(in)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "create pantry item")
		return
	}

	h.notify(websocket.EntityPantryItem, websocket.ActionCreated, item.ID, nil)
	writeJSON(w, http.StatusCreated, item)
}

func (h *PantryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var in model.UpdatePantryItemInput
	if !decodeAndValidate(w, r, h.validate, &in) {
		return
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		in.Name = &name
	}
	if in.CategoryID.Set && !h.requireCategory(w, r, in.CategoryID.ID) {
		return
	}

	item, err := h.pantryStore.Update(id, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "update pantry item")
		return
	}

	h.notify(websocket.EntityPantryItem, websocket.ActionUpdated, item.ID, nil)
	writeJSON(w, http.StatusOK, item)
}

func (h *PantryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.pantryStore.GetByID(id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get pantry item")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "pantry item not found")
		return
	}

	if err := h.pantryStore.Delete(id); err != nil {
		writeServiceError(w, r, h.logger, err, "delete pantry item")
		return
	}

	h.notify(websocket.EntityPantryItem, websocket.ActionDeleted, id, nil)
	writeJSON(w, http.StatusOK, existing)
}

func (h *PantryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	result, err := h.pantryStore.Clear()
	if err != nil {
		writeServiceError(w, r, h.logger, err, "clear pantry")
		return
	}

	h.logger.Info("pantry cleared", "count", result.Count)
	h.notify(websocket.EntityPantry, websocket.ActionCleared, 0, map[string]any{"count": result.Count})
	writeJSON(w, http.StatusOK, result)
}

type orderChangesRequest struct {
	Items []model.PantryOrderChange `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrders applies a client-computed set of order changes atomically.
func (h *PantryHandler) UpdateOrders(w http.ResponseWriter, r *http.Request) {
	var req orderChangesRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	for _, c := range req.Items {
		if c.CategoryID.Set && !h.requireCategory(w, r, c.CategoryID.ID) {
			return
		}
	}

	items, err := h.pantryStore.Reorder(req.Items)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "update pantry item orders")
		return
	}

	h.notify(websocket.EntityPantry, websocket.ActionReordered, 0, map[string]any{"count": len(items)})
	writeJSON(w, http.StatusOK, items)
}

// Move resolves a drag-and-drop move server side and persists the changes.
func (h *PantryHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req ordering.MoveRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	items, err := h.ordering.Move(req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "move pantry item")
		return
	}

	if len(items) > 0 {
		h.notify(websocket.EntityPantry, websocket.ActionReordered, req.ItemID, map[string]any{"count": len(items)})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *PantryHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	items, err := h.ordering.Normalize()
	if err != nil {
		writeServiceError(w, r, h.logger, err, "normalize pantry order")
		return
	}

	if len(items) > 0 {
		h.notify(websocket.EntityPantry, websocket.ActionReordered, 0, map[string]any{"count": len(items)})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *PantryHandler) UpsertFromGrocery(w http.ResponseWriter, r *http.Request) {
	var in model.UpsertPantryItemFromGroceryInput
	if !decodeAndValidate(w, r, h.validate, &in) {
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if !h.requireCategory(w, r, &in.CategoryID) {
		return
	}

	item, err := h.reconcile.UpsertPantryItemFromGroceryItem(in)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "upsert pantry item")
		return
	}

	h.notify(websocket.EntityPantryItem, websocket.ActionUpdated, item.ID, nil)
	writeJSON(w, http.StatusOK, item)
}

type syncRequest struct {
	GroceryListItemID int64 `json:"groceryListItemId" validate:"required"`
}

// Sync marks a grocery item purchased and records it as in stock.
func (h *PantryHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	result, err := h.reconcile.SyncGroceryItemToPantry(req.GroceryListItemID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "sync grocery item to pantry")
		return
	}

	notifySync(h.notifier, result)
	writeJSON(w, http.StatusOK, result)
}

func notifySync(n notifier, result *model.SyncResult) {
	if result.PantryItem != nil {
		n.notify(websocket.EntityPantryItem, websocket.ActionSynced, result.PantryItem.ID, nil)
	}
	if result.GroceryListItem != nil {
		n.notify(websocket.EntityGroceryItem, websocket.ActionUpdated, result.GroceryListItem.ID, nil)
	}
}
