package planner

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/larder/internal/database"
	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/store"
)

func date(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-03-02", "2026-03-02"}, // Monday
		{"2026-03-04", "2026-03-02"}, // Wednesday
		{"2026-03-08", "2026-03-02"}, // Sunday
		{"2026-03-09", "2026-03-09"},
	}
	for _, tt := range tests {
		if got := WeekStart(date(tt.in)).Format(dateLayout); got != tt.want {
			t.Errorf("WeekStart(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestWeekGroupsBySlot(t *testing.T) {
	meals := []model.PlannedMeal{
		{ID: 1, Date: "2026-03-02", MealType: model.MealDinner, MealName: "Tacos"},
		{ID: 2, Date: "2026-03-02", MealType: model.MealDinner, MealName: "Salad"},
		{ID: 3, Date: "2026-03-05", MealType: model.MealBreakfast, MealName: "Oatmeal"},
		{ID: 4, Date: "2026-03-09", MealType: model.MealLunch, MealName: "Next week"},
	}

	plan := Week(date("2026-03-04"), meals)
	if plan.Start != "2026-03-02" || plan.End != "2026-03-08" {
		t.Errorf("range = %s..%s", plan.Start, plan.End)
	}
	if len(plan.Days) != 7 {
		t.Fatalf("days = %d, want 7", len(plan.Days))
	}
	if got := len(plan.Days[0].Meals[model.MealDinner]); got != 2 {
		t.Errorf("monday dinners = %d, want 2", got)
	}
	if got := plan.Days[3].Meals[model.MealBreakfast]; len(got) != 1 || got[0].MealName != "Oatmeal" {
		t.Errorf("thursday breakfast = %+v", got)
	}
	for _, d := range plan.Days {
		for _, ms := range d.Meals {
			for _, m := range ms {
				if m.ID == 4 {
					t.Error("meal from another week should be excluded")
				}
			}
		}
	}
}

func TestExportICS(t *testing.T) {
	meals := []model.PlannedMeal{
		{ID: 1, UID: "abc", Date: "2026-03-02", MealType: model.MealBreakfast, MealName: "Eggs, toast; jam"},
		{ID: 2, UID: "def", Date: "2026-03-02", MealType: model.MealDinner, MealName: "Stew"},
	}

	var buf bytes.Buffer
	now := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	if err := ExportICS(&buf, meals, now); err != nil {
		t.Fatalf("export: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"BEGIN:VCALENDAR\r\n",
		"PRODID:" + prodID + "\r\n",
		"DTSTAMP:20260301T103000Z\r\n",
		"UID:abc@larder\r\n",
		"DTSTART:20260302T080000\r\n",
		"DTEND:20260302T090000\r\n",
		`SUMMARY:Eggs\, toast\; jam` + "\r\n",
		"DTSTART:20260302T180000\r\n",
		"DESCRIPTION:Meal Type: dinner\r\n",
		"END:VCALENDAR\r\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if n := strings.Count(out, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("events = %d, want 2", n)
	}
	if strings.Contains(strings.ReplaceAll(out, "\r\n", ""), "\n") {
		t.Error("found bare LF line ending")
	}
}

func TestExportICSFoldsLongLines(t *testing.T) {
	meals := []model.PlannedMeal{
		{ID: 1, UID: "abc", Date: "2026-03-02", MealType: model.MealLunch, MealName: strings.Repeat("Long meal name ", 10)},
	}

	var buf bytes.Buffer
	if err := ExportICS(&buf, meals, time.Now()); err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, l := range strings.Split(buf.String(), "\r\n") {
		if len(l) > 75 {
			t.Errorf("line exceeds 75 octets: %q", l)
		}
	}
	if !strings.Contains(buf.String(), "\r\n ") {
		t.Error("expected a folded continuation line")
	}
}

func TestServiceAddAndExport(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := NewService(store.NewMealPlanStore(db))
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	a, err := svc.Add(model.CreatePlannedMealInput{Date: "2026-03-03", MealType: model.MealLunch, MealName: "Wraps"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	b, err := svc.Add(model.CreatePlannedMealInput{Date: "2026-03-03", MealType: model.MealDinner, MealName: "Curry"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if a.UID == "" || a.UID == b.UID {
		t.Errorf("uids = %q, %q, want distinct non-empty", a.UID, b.UID)
	}

	plan, err := svc.Week(date("2026-03-05"))
	if err != nil {
		t.Fatalf("week: %v", err)
	}
	if got := plan.Days[1].Meals[model.MealLunch]; len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("tuesday lunch = %+v", got)
	}

	if err := svc.Remove(b.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	var buf bytes.Buffer
	if err := svc.Export(&buf, date("2026-03-03")); err != nil {
		t.Fatalf("export: %v", err)
	}
	if n := strings.Count(buf.String(), "BEGIN:VEVENT"); n != 1 {
		t.Errorf("events = %d, want 1", n)
	}
	if !strings.Contains(buf.String(), "UID:"+a.UID+"@larder") {
		t.Error("export should use the stored uid")
	}
}
