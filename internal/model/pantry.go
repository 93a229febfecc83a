package model

import "time"

type PantryStatus string

const (
	StatusInStock    PantryStatus = "InStock"
	StatusLowStock   PantryStatus = "LowStock"
	StatusOutOfStock PantryStatus = "OutOfStock"
)

func (s PantryStatus) Valid() bool {
	switch s {
	case StatusInStock, StatusLowStock, StatusOutOfStock:
		return true
	}
	return false
}

type PantryItem struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	Quantity   *string      `json:"quantity"`
	Notes      *string      `json:"notes"`
	Order      int          `json:"order"`
	Status     PantryStatus `json:"status"`
	CategoryID *int64       `json:"categoryId"`
	Category   *Category    `json:"category,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

type CreatePantryItemInput struct {
	Name       string       `json:"name" validate:"required,max=200"`
	CategoryID *int64       `json:"categoryId"`
	Order      *int         `json:"order" validate:"omitempty,min=0"`
	Quantity   *string      `json:"quantity" validate:"omitempty,max=100"`
	Notes      *string      `json:"notes" validate:"omitempty,max=1000"`
	Status     PantryStatus `json:"status" validate:"omitempty,oneof=InStock LowStock OutOfStock"`
}

// UpdatePantryItemInput is a partial update; nil fields are left untouched.
type UpdatePantryItemInput struct {
	Name       *string       `json:"name" validate:"omitempty,min=1,max=200"`
	CategoryID OptionalID    `json:"categoryId"`
	Quantity   *string       `json:"quantity" validate:"omitempty,max=100"`
	Notes      *string       `json:"notes" validate:"omitempty,max=1000"`
	Order      *int          `json:"order" validate:"omitempty,min=0"`
	Status     *PantryStatus `json:"status" validate:"omitempty,oneof=InStock LowStock OutOfStock"`
}

// PantryOrderChange moves one pantry item to a position, and optionally to
// another category. CategoryID.Set false keeps the current category.
type PantryOrderChange struct {
	ID         int64      `json:"id" validate:"required"`
	Order      int        `json:"order" validate:"min=0"`
	CategoryID OptionalID `json:"categoryId"`
}

type UpsertPantryItemFromGroceryInput struct {
	Name       string  `json:"name" validate:"required,max=200"`
	CategoryID int64   `json:"categoryId" validate:"required"`
	Quantity   *string `json:"quantity" validate:"omitempty,max=100"`
	Notes      *string `json:"notes" validate:"omitempty,max=1000"`
}

type ClearPantryResult struct {
	Count   int64  `json:"count"`
	Message string `json:"message"`
}

type SyncResult struct {
	PantryItem      *PantryItem      `json:"pantryItem"`
	GroceryListItem *GroceryListItem `json:"groceryListItem"`
	Message         string           `json:"message"`
}
