package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukerupert/larder/internal/model"
)

type GroceryStore struct {
	db DBTX
}

func NewGroceryStore(db DBTX) *GroceryStore {
	return &GroceryStore{db: db}
}

func scanGroceryItem(scanner interface{ Scan(...any) error }) (*model.GroceryListItem, error) {
	var item model.GroceryListItem
	var categoryID sql.NullInt64
	var purchased int

	err := scanner.Scan(&item.ID, &item.Name, &categoryID, &purchased, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}

	item.CategoryID = int64Ptr(categoryID)
	item.Purchased = purchased != 0
	return &item, nil
}

const groceryCols = `id, name, category_id, purchased, created_at, updated_at`

func (s *GroceryStore) queryItems(query string, args ...any) ([]model.GroceryListItem, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query grocery items: %w", err)
	}
	defer rows.Close()

	var items []model.GroceryListItem
	for rows.Next() {
		item, err := scanGroceryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grocery item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *GroceryStore) List() ([]model.GroceryListItem, error) {
	items, err := s.queryItems(`SELECT ` + groceryCols + ` FROM grocery_list_items ORDER BY purchased ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list grocery items: %w", err)
	}
	return items, nil
}

func (s *GroceryStore) GetByID(id int64) (*model.GroceryListItem, error) {
	row := s.db.QueryRow(`SELECT `+groceryCols+` FROM grocery_list_items WHERE id = ?`, id)
	item, err := scanGroceryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get grocery item: %w", err)
	}
	return item, nil
}

// FindByIdentity returns the first grocery item with a case-insensitive
// name match in exactly the given category bucket.
func (s *GroceryStore) FindByIdentity(name string, categoryID *int64) (*model.GroceryListItem, error) {
	items, err := s.queryItems(
		`SELECT `+groceryCols+` FROM grocery_list_items WHERE category_id IS ? ORDER BY id ASC`,
		nullInt64(categoryID),
	)
	if err != nil {
		return nil, fmt.Errorf("find grocery item: %w", err)
	}
	for i := range items {
		if model.SameName(items[i].Name, name) {
			return &items[i], nil
		}
	}
	return nil, nil
}

// IdentityKeys returns the de-duplication key of every grocery item.
func (s *GroceryStore) IdentityKeys() (map[string]struct{}, error) {
	rows, err := s.db.Query(`SELECT name, category_id FROM grocery_list_items`)
	if err != nil {
		return nil, fmt.Errorf("list grocery keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var name string
		var categoryID sql.NullInt64
		if err := rows.Scan(&name, &categoryID); err != nil {
			return nil, fmt.Errorf("scan grocery key: %w", err)
		}
		keys[model.IdentityKey(name, int64Ptr(categoryID))] = struct{}{}
	}
	return keys, rows.Err()
}

func (s *GroceryStore) Create(in model.CreateGroceryListItemInput) (*model.GroceryListItem, error) {
	purchased := in.Purchased != nil && *in.Purchased

	result, err := s.db.Exec(
		`INSERT INTO grocery_list_items (name, category_id, purchased) VALUES (?, ?, ?)`,
		in.Name, nullInt64(in.CategoryID), boolToInt(purchased),
	)
	if err != nil {
		return nil, fmt.Errorf("insert grocery item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *GroceryStore) Update(id int64, in model.UpdateGroceryListItemInput) (*model.GroceryListItem, error) {
	sets := []string{"updated_at = CURRENT_TIMESTAMP"}
	var args []any

	if in.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *in.Name)
	}
	if in.CategoryID.Set {
		sets = append(sets, "category_id = ?")
		args = append(args, nullInt64(in.CategoryID.ID))
	}
	if in.Purchased != nil {
		sets = append(sets, "purchased = ?")
		args = append(args, boolToInt(*in.Purchased))
	}
	args = append(args, id)

	result, err := s.db.Exec(`UPDATE grocery_list_items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update grocery item: %w", err)
	}
	if err := requireAffected(result, fmt.Sprintf("update grocery item %d", id)); err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *GroceryStore) SetPurchased(id int64, purchased bool) (*model.GroceryListItem, error) {
	return s.Update(id, model.UpdateGroceryListItemInput{Purchased: &purchased})
}

func (s *GroceryStore) Delete(id int64) error {
	result, err := s.db.Exec(`DELETE FROM grocery_list_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete grocery item: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("delete grocery item %d", id))
}

// DeleteByCategory removes every grocery item in the category. A nil
// category is a no-op.
func (s *GroceryStore) DeleteByCategory(categoryID *int64) (int64, error) {
	if categoryID == nil {
		return 0, nil
	}
	result, err := s.db.Exec(`DELETE FROM grocery_list_items WHERE category_id = ?`, *categoryID)
	if err != nil {
		return 0, fmt.Errorf("delete grocery items by category: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
