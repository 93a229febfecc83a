// Package planner arranges planned meals into weeks and exports them as an
// iCalendar feed.
package planner

import (
	"time"

	"github.com/dukerupert/larder/internal/model"
)

const dateLayout = "2006-01-02"

// WeekStart returns midnight on the Monday of t's week.
func WeekStart(t time.Time) time.Time {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday
	}
	monday := t.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
}

type Day struct {
	Date  string                                `json:"date"`
	Meals map[model.MealType][]model.PlannedMeal `json:"meals"`
}

type WeekPlan struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  []Day  `json:"days"`
}

// Week lays meals out over the seven days starting at start. Meals outside
// the week are ignored; a slot may hold several meals.
func Week(start time.Time, meals []model.PlannedMeal) WeekPlan {
	start = WeekStart(start)
	plan := WeekPlan{
		Start: start.Format(dateLayout),
		End:   start.AddDate(0, 0, 6).Format(dateLayout),
		Days:  make([]Day, 7),
	}

	index := make(map[string]int, 7)
	for i := range plan.Days {
		date := start.AddDate(0, 0, i).Format(dateLayout)
		plan.Days[i] = Day{Date: date, Meals: make(map[model.MealType][]model.PlannedMeal)}
		index[date] = i
	}

	for _, m := range meals {
		i, ok := index[m.Date]
		if !ok {
			continue
		}
		plan.Days[i].Meals[m.MealType] = append(plan.Days[i].Meals[m.MealType], m)
	}
	return plan
}
