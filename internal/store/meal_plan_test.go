package store

import (
	"errors"
	"testing"

	"github.com/dukerupert/larder/internal/model"
)

func TestMealPlanCreateAndList(t *testing.T) {
	ms := NewMealPlanStore(setupTestDB(t))

	inputs := []struct {
		uid string
		in  model.CreatePlannedMealInput
	}{
		{"u1", model.CreatePlannedMealInput{Date: "2026-03-03", MealType: model.MealDinner, MealName: "Tacos"}},
		{"u2", model.CreatePlannedMealInput{Date: "2026-03-02", MealType: model.MealDinner, MealName: "Soup"}},
		{"u3", model.CreatePlannedMealInput{Date: "2026-03-02", MealType: model.MealBreakfast, MealName: "Oatmeal"}},
		{"u4", model.CreatePlannedMealInput{Date: "2026-03-10", MealType: model.MealLunch, MealName: "Salad"}},
	}
	for _, tt := range inputs {
		if _, err := ms.Create(tt.uid, tt.in); err != nil {
			t.Fatalf("create %s: %v", tt.in.MealName, err)
		}
	}

	meals, err := ms.ListRange("2026-03-02", "2026-03-08")
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	want := []string{"Oatmeal", "Soup", "Tacos"}
	if len(meals) != len(want) {
		t.Fatalf("expected %d meals, got %d", len(want), len(meals))
	}
	for i, name := range want {
		if meals[i].MealName != name {
			t.Errorf("meals[%d] = %q, want %q", i, meals[i].MealName, name)
		}
	}
}

func TestMealPlanDelete(t *testing.T) {
	ms := NewMealPlanStore(setupTestDB(t))

	m, err := ms.Create("u1", model.CreatePlannedMealInput{Date: "2026-03-03", MealType: model.MealLunch, MealName: "Wraps"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := ms.Delete(m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := ms.Delete(m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestMealPlanUIDUnique(t *testing.T) {
	ms := NewMealPlanStore(setupTestDB(t))

	in := model.CreatePlannedMealInput{Date: "2026-03-03", MealType: model.MealLunch, MealName: "Wraps"}
	if _, err := ms.Create("same", in); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := ms.Create("same", in); err == nil {
		t.Error("expected unique constraint failure on duplicate uid")
	}
}
