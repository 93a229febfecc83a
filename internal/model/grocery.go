package model

import "time"

type GroceryListItem struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	CategoryID *int64    `json:"categoryId"`
	Purchased  bool      `json:"purchased"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type CreateGroceryListItemInput struct {
	Name       string `json:"name" validate:"required,max=200"`
	CategoryID *int64 `json:"categoryId"`
	Purchased  *bool  `json:"purchased"`
}

// UpdateGroceryListItemInput is a partial update; nil fields are left untouched.
type UpdateGroceryListItemInput struct {
	Name       *string    `json:"name" validate:"omitempty,min=1,max=200"`
	CategoryID OptionalID `json:"categoryId"`
	Purchased  *bool      `json:"purchased"`
}

type AddPantryItemToGroceryInput struct {
	Name       string  `json:"name" validate:"required,max=200"`
	CategoryID *int64  `json:"categoryId"`
	Quantity   *string `json:"quantity"`
}

// BatchResult reports which inputs of a batch grocery operation produced
// a row and which were skipped as duplicates.
type BatchResult struct {
	AddedCount   int               `json:"addedCount"`
	SkippedCount int               `json:"skippedCount"`
	AddedItems   []GroceryListItem `json:"addedItems"`
	SkippedItems []string          `json:"skippedItems"`
}

type BatchDeleteResult struct {
	Count int64 `json:"count"`
}
