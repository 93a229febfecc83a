package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/larder/internal/llm"
	"github.com/dukerupert/larder/internal/meals"
	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/planner"
	"github.com/dukerupert/larder/internal/websocket"
)

type MealHandler struct {
	meals    *meals.Service
	planner  *planner.Service
	validate *validator.Validate
	logger   *slog.Logger
	notifier
}

func NewMealHandler(ms *meals.Service, ps *planner.Service, validate *validator.Validate, hub websocket.Broadcaster, logger *slog.Logger) *MealHandler {
	return &MealHandler{
		meals:    ms,
		planner:  ps,
		validate: validate,
		logger:   logger.With("component", "meal_handler"),
		notifier: notifier{hub: hub},
	}
}

type suggestRequest struct {
	ItemNames []string `json:"itemNames" validate:"required,min=1,max=100,dive,required"`
}

func (h *MealHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	suggestions, err := h.meals.Suggest(r.Context(), req.ItemNames)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "LLM service is not configured.")
		return
	case err != nil:
		writeError(w, http.StatusBadGateway, "Failed to get meal suggestions.")
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, http.StatusOK, suggestions)
}

// Details always answers with JSON; failures carry an error field and an
// empty ingredient list.
func (h *MealHandler) Details(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("mealName"))
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":       "mealName is required",
			"mealName":    "",
			"ingredients": []string{},
		})
		return
	}

	result := h.meals.Details(r.Context(), name)
	writeJSON(w, result.HTTPStatus(), result.Payload())
}

// DetailsRateLimited answers a throttled details request in the same
// {error, mealName, ingredients} shape as every other details failure.
func (h *MealHandler) DetailsRateLimited(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, map[string]any{
		"error":       "Too many meal requests. Please try again shortly.",
		"mealName":    strings.TrimSpace(r.URL.Query().Get("mealName")),
		"ingredients": []string{},
	})
}

// weekParam reads ?week=YYYY-MM-DD, defaulting to today.
func weekParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("week")
	if raw == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", raw)
}

func (h *MealHandler) Week(w http.ResponseWriter, r *http.Request) {
	day, err := weekParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid week, expected YYYY-MM-DD")
		return
	}

	plan, err := h.planner.Week(day)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "load meal plan")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *MealHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var in model.CreatePlannedMealInput
	if !decodeAndValidate(w, r, h.validate, &in) {
		return
	}
	in.MealName = strings.TrimSpace(in.MealName)

	meal, err := h.planner.Add(in)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "plan meal")
		return
	}

	h.notify(websocket.EntityPlannedMeal, websocket.ActionCreated, meal.ID, map[string]any{"date": meal.Date})
	writeJSON(w, http.StatusCreated, meal)
}

func (h *MealHandler) Unplan(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.planner.Remove(id); err != nil {
		writeServiceError(w, r, h.logger, err, "remove planned meal")
		return
	}

	h.notify(websocket.EntityPlannedMeal, websocket.ActionDeleted, id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// Export serves the week as an iCalendar file.
func (h *MealHandler) Export(w http.ResponseWriter, r *http.Request) {
	day, err := weekParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid week, expected YYYY-MM-DD")
		return
	}

	var buf bytes.Buffer
	if err := h.planner.Export(&buf, day); err != nil {
		writeServiceError(w, r, h.logger, err, "export meal plan")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="meal-plan-`+planner.WeekStart(day).Format("2006-01-02")+`.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
