package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/pantry"
	"github.com/dukerupert/larder/internal/store"
	"github.com/dukerupert/larder/internal/websocket"
)

type GroceryHandler struct {
	groceryStore  *store.GroceryStore
	categoryStore *store.CategoryStore
	reconcile     *pantry.Service
	validate      *validator.Validate
	logger        *slog.Logger
	notifier
}

func NewGroceryHandler(
	gs *store.GroceryStore,
	cs *store.CategoryStore,
	reconcile *pantry.Service,
	validate *validator.Validate,
	hub websocket.Broadcaster,
	logger *slog.Logger,
) *GroceryHandler {
	return &GroceryHandler{
		groceryStore:  gs,
		categoryStore: cs,
		reconcile:     reconcile,
		validate:      validate,
		logger:        logger.With("component", "grocery_handler"),
		notifier:      notifier{hub: hub},
	}
}

func (h *GroceryHandler) requireCategory(w http.ResponseWriter, r *http.Request, id *int64) bool {
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

func (h *GroceryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.groceryStore.List()
	if err != nil {
		writeServiceError(w, r, h.logger, err, "list grocery items")
		return
	}
	if items == nil {
		items = []model.GroceryListItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *GroceryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := h.groceryStore.GetByID(id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get grocery item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "grocery item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *GroceryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.CreateGroceryListItemInput
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

	item, err := h.groceryStore.Create(in)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "create grocery item")
		return
	}

	h.notify(websocket.EntityGroceryItem, websocket.ActionCreated, item.ID, nil)
	writeJSON(w, http.StatusCreated, item)
}

func (h *GroceryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var in model.UpdateGroceryListItemInput
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

	item, err := h.groceryStore.Update(id, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "update grocery item")
		return
	}

	h.notify(websocket.EntityGroceryItem, websocket.ActionUpdated, item.ID, nil)
	writeJSON(w, http.StatusOK, item)
}

func (h *GroceryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.groceryStore.GetByID(id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get grocery item")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "grocery item not found")
		return
	}

	if err := h.groceryStore.Delete(id); err != nil {
		writeServiceError(w, r, h.logger, err, "delete grocery item")
		return
	}

	h.notify(websocket.EntityGroceryItem, websocket.ActionDeleted, id, nil)
	writeJSON(w, http.StatusOK, existing)
}

// Toggle flips the purchased flag. Marking an item purchased also stocks
// it in the pantry.
func (h *GroceryHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	result, err := h.reconcile.ToggleGroceryItem(id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "toggle grocery item")
		return
	}

	notifySync(h.notifier, result)
	writeJSON(w, http.StatusOK, result)
}

type batchCreateRequest struct {
	Items []model.CreateGroceryListItemInput `json:"items" validate:"required,min=1,dive"`
}

func (h *GroceryHandler) CreateMultiple(w http.ResponseWriter, r *http.Request) {
	var req batchCreateRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	for i := range req.Items {
		req.Items[i].Name = strings.TrimSpace(req.Items[i].Name)
		if !h.requireCategory(w, r, req.Items[i].CategoryID) {
			return
		}
	}

	result, err := h.reconcile.CreateMultipleGroceryListItems(req.Items)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "create grocery items")
		return
	}

	if result.AddedCount > 0 {
		h.notify(websocket.EntityGroceryList, websocket.ActionUpdated, 0, map[string]any{"added": result.AddedCount})
	}
	writeJSON(w, http.StatusOK, result)
}

type fromPantryRequest struct {
	Items []model.AddPantryItemToGroceryInput `json:"items" validate:"required,min=1,dive"`
}

// AddFromPantry puts pantry items on the grocery list in one transaction.
func (h *GroceryHandler) AddFromPantry(w http.ResponseWriter, r *http.Request) {
	var req fromPantryRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	for i := range req.Items {
		req.Items[i].Name = strings.TrimSpace(req.Items[i].Name)
	}

	result, err := h.reconcile.AddPantryItemsToGroceryList(req.Items)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "add pantry items to grocery list")
		return
	}

	if result.AddedCount > 0 {
		h.notify(websocket.EntityGroceryList, websocket.ActionUpdated, 0, map[string]any{"added": result.AddedCount})
	}
	writeJSON(w, http.StatusOK, result)
}

// DeleteByCategory clears one category from the list. Without a category
// nothing is deleted.
func (h *GroceryHandler) DeleteByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseCategoryParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid categoryId")
		return
	}

	count, err := h.groceryStore.DeleteByCategory(categoryID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "delete grocery items by category")
		return
	}

	if count > 0 {
		h.notify(websocket.EntityGroceryList, websocket.ActionUpdated, 0, map[string]any{"deleted": count})
	}
	writeJSON(w, http.StatusOK, model.BatchDeleteResult{Count: count})
}
