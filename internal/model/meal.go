package model

import "time"

type Nutrients struct {
	Calories      string `json:"calories" validate:"required"`
	Protein       string `json:"protein" validate:"required"`
	Carbohydrates string `json:"carbohydrates" validate:"required"`
	Fat           string `json:"fat" validate:"required"`
}

type MealDetails struct {
	MealName    string    `json:"mealName" validate:"required"`
	Ingredients []string  `json:"ingredients" validate:"required,dive,required"`
	Nutrients   Nutrients `json:"nutrients"`
}

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// MealTypes lists meal slots in the order they occur during a day.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

type PlannedMeal struct {
	ID        int64     `json:"id"`
	UID       string    `json:"uid"`
	Date      string    `json:"date"`
	MealType  MealType  `json:"mealType"`
	MealName  string    `json:"mealName"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreatePlannedMealInput struct {
	Date     string   `json:"date" validate:"required,datetime=2006-01-02"`
	MealType MealType `json:"mealType" validate:"required,oneof=breakfast lunch dinner snack"`
	MealName string   `json:"mealName" validate:"required,max=200"`
}
