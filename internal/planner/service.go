package planner

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/store"
)

type Service struct {
	store *store.MealPlanStore
	now   func() time.Time
}

func NewService(s *store.MealPlanStore) *Service {
	return &Service{store: s, now: time.Now}
}

// Week returns the plan for the week containing day.
func (s *Service) Week(day time.Time) (WeekPlan, error) {
	start := WeekStart(day)
	meals, err := s.store.ListRange(start.Format(dateLayout), start.AddDate(0, 0, 6).Format(dateLayout))
	if err != nil {
		return WeekPlan{}, fmt.Errorf("load week: %w", err)
	}
	return Week(start, meals), nil
}

// Add plans a meal. Each planned meal gets a stable UID for calendar export.
func (s *Service) Add(in model.CreatePlannedMealInput) (*model.PlannedMeal, error) {
	return s.store.Create(uuid.NewString(), in)
}

func (s *Service) Remove(id int64) error {
	return s.store.Delete(id)
}

// Export writes the week containing day as an iCalendar feed.
func (s *Service) Export(w io.Writer, day time.Time) error {
	start := WeekStart(day)
	meals, err := s.store.ListRange(start.Format(dateLayout), start.AddDate(0, 0, 6).Format(dateLayout))
	if err != nil {
		return fmt.Errorf("load week: %w", err)
	}
	return ExportICS(w, meals, s.now())
}
