// Package pantry reconciles the grocery list with the pantry: marking a
// grocery item purchased stocks the pantry, and pantry shortages flow back
// onto the grocery list.
package pantry

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/store"
)

// ErrMissingCategory is returned when a grocery item without a category is
// synced to the pantry.
var ErrMissingCategory = errors.New("grocery item must have a category to sync to pantry")

const uncategorized = "Uncategorized"

type Service struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewService(db *sql.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger.With("component", "pantry")}
}

type statusTransition struct {
	itemID int64
	name   string
	from   model.PantryStatus
	to     model.PantryStatus
}

// SyncGroceryItemToPantry stocks the pantry from a purchased grocery item and
// marks the grocery item purchased, all in one transaction. The pantry is
// matched on name alone, ignoring case and category.
func (s *Service) SyncGroceryItemToPantry(groceryID int64) (*model.SyncResult, error) {
	var result model.SyncResult
	var transition *statusTransition

	err := store.WithTx(s.db, func(tx *sql.Tx) error {
		gs := store.NewGroceryStore(tx)
		ps := store.NewPantryStore(tx)

		g, err := gs.GetByID(groceryID)
		if err != nil {
			return err
		}
		if g == nil {
			return fmt.Errorf("sync grocery item %d: %w", groceryID, store.ErrNotFound)
		}
		if g.CategoryID == nil {
			return fmt.Errorf("sync grocery item %d: %w", groceryID, ErrMissingCategory)
		}

		match, err := ps.FindByNameFold(g.Name)
		if err != nil {
			return err
		}

		var item *model.PantryItem
		switch {
		case match != nil && match.Status != model.StatusInStock:
			item, err = ps.SetStatus(match.ID, model.StatusInStock)
			if err != nil {
				return err
			}
			transition = &statusTransition{itemID: match.ID, name: match.Name, from: match.Status, to: model.StatusInStock}
			result.Message = fmt.Sprintf("%s status updated to InStock in Pantry (Category: %s).", g.Name, categoryName(item))
		case match != nil:
			item = match
			result.Message = fmt.Sprintf("%s already exists in Pantry (Category: %s) with InStock status.", g.Name, categoryName(item))
		default:
			quantity, notes := "1", ""
			item, err = ps.Create(model.CreatePantryItemInput{
				Name:       g.Name,
				CategoryID: g.CategoryID,
				Quantity:   &quantity,
				Notes:      &notes,
				Status:     model.StatusInStock,
			})
			if err != nil {
				return err
			}
			result.Message = fmt.Sprintf("%s added to Pantry (Category: %s) with InStock status.", g.Name, categoryName(item))
		}

		purchased, err := gs.SetPurchased(g.ID, true)
		if err != nil {
			return err
		}

		result.PantryItem = item
		result.GroceryListItem = purchased
		return nil
	})
	if err != nil {
		return nil, err
	}

	if transition != nil {
		s.logger.Info("pantry status transition",
			"pantry_item_id", transition.itemID,
			"name", transition.name,
			"from", transition.from,
			"to", transition.to,
			"grocery_item_id", groceryID,
		)
	}
	return &result, nil
}

// ToggleGroceryItem flips a grocery item's purchased flag. Buying an item
// syncs it to the pantry; un-buying it only clears the flag.
func (s *Service) ToggleGroceryItem(groceryID int64) (*model.SyncResult, error) {
	g, err := store.NewGroceryStore(s.db).GetByID(groceryID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("toggle grocery item %d: %w", groceryID, store.ErrNotFound)
	}

	if !g.Purchased {
		return s.SyncGroceryItemToPantry(groceryID)
	}

	updated, err := store.NewGroceryStore(s.db).SetPurchased(groceryID, false)
	if err != nil {
		return nil, err
	}
	return &model.SyncResult{
		GroceryListItem: updated,
		Message:         fmt.Sprintf("%s marked as not purchased.", updated.Name),
	}, nil
}

// UpsertPantryItemFromGroceryItem restocks the pantry item with exactly this
// name and category, or appends a new one to the end of the category.
func (s *Service) UpsertPantryItemFromGroceryItem(in model.UpsertPantryItemFromGroceryInput) (*model.PantryItem, error) {
	quantity, notes := "1", ""
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	if in.Notes != nil {
		notes = *in.Notes
	}

	var item *model.PantryItem
	err := store.WithTx(s.db, func(tx *sql.Tx) error {
		ps := store.NewPantryStore(tx)

		existing, err := ps.FindExact(in.Name, &in.CategoryID)
		if err != nil {
			return err
		}

		if existing != nil {
			status := model.StatusInStock
			item, err = ps.Update(existing.ID, model.UpdatePantryItemInput{
				Quantity: &quantity,
				Notes:    &notes,
				Status:   &status,
			})
			return err
		}

		item, err = ps.Create(model.CreatePantryItemInput{
			Name:       in.Name,
			CategoryID: &in.CategoryID,
			Quantity:   &quantity,
			Notes:      &notes,
			Status:     model.StatusInStock,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("upsert pantry item %q: %w", in.Name, err)
	}
	return item, nil
}

// AddPantryItemsToGroceryList puts pantry shortages on the grocery list. A
// purchased match is flipped back to unpurchased and counts as added; an
// unpurchased match is skipped.
func (s *Service) AddPantryItemsToGroceryList(inputs []model.AddPantryItemToGroceryInput) (model.BatchResult, error) {
	result := model.BatchResult{
		AddedItems:   []model.GroceryListItem{},
		SkippedItems: []string{},
	}

	err := store.WithTx(s.db, func(tx *sql.Tx) error {
		gs := store.NewGroceryStore(tx)

		for _, in := range inputs {
			existing, err := gs.FindByIdentity(in.Name, in.CategoryID)
			if err != nil {
				return err
			}

			switch {
			case existing != nil && existing.Purchased:
				item, err := gs.SetPurchased(existing.ID, false)
				if err != nil {
					return err
				}
				result.AddedItems = append(result.AddedItems, *item)
			case existing != nil:
				result.SkippedItems = append(result.SkippedItems, in.Name)
			default:
				item, err := gs.Create(model.CreateGroceryListItemInput{Name: in.Name, CategoryID: in.CategoryID})
				if err != nil {
					return err
				}
				result.AddedItems = append(result.AddedItems, *item)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("add pantry items to grocery list failed", "items", len(inputs), "error", err)
		return model.BatchResult{}, fmt.Errorf("add pantry items to grocery list: %w", err)
	}

	result.AddedCount = len(result.AddedItems)
	result.SkippedCount = len(result.SkippedItems)
	return result, nil
}

// CreateMultipleGroceryListItems creates a batch of grocery items, dropping
// later duplicates within the batch and skipping items already on the list.
// A failed insert reports nothing added rather than an error.
func (s *Service) CreateMultipleGroceryListItems(inputs []model.CreateGroceryListItemInput) (model.BatchResult, error) {
	result := model.BatchResult{
		AddedItems:   []model.GroceryListItem{},
		SkippedItems: []string{},
	}

	existing, err := store.NewGroceryStore(s.db).IdentityKeys()
	if err != nil {
		return model.BatchResult{}, fmt.Errorf("create multiple grocery items: %w", err)
	}

	seen := make(map[string]struct{}, len(inputs))
	var toCreate []model.CreateGroceryListItemInput
	for _, in := range inputs {
		key := model.IdentityKey(in.Name, in.CategoryID)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if _, ok := existing[key]; ok {
			result.SkippedItems = append(result.SkippedItems, in.Name)
			continue
		}
		toCreate = append(toCreate, in)
	}
	result.SkippedCount = len(result.SkippedItems)

	if len(toCreate) == 0 {
		return result, nil
	}

	var created []model.GroceryListItem
	err = store.WithTx(s.db, func(tx *sql.Tx) error {
		gs := store.NewGroceryStore(tx)
		for _, in := range toCreate {
			item, err := gs.Create(in)
			if err != nil {
				return err
			}
			created = append(created, *item)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("create multiple grocery items failed", "items", len(toCreate), "error", err)
		return result, nil
	}

	result.AddedItems = created
	result.AddedCount = len(created)
	if result.SkippedCount > 0 {
		s.logger.Info("skipped duplicate grocery items", "count", result.SkippedCount, "names", result.SkippedItems)
	}
	return result, nil
}

func categoryName(item *model.PantryItem) string {
	if item == nil || item.Category == nil {
		return uncategorized
	}
	return item.Category.Name
}
