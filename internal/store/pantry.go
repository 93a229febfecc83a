package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukerupert/larder/internal/model"
)

type PantryStore struct {
	db DBTX
}

func NewPantryStore(db DBTX) *PantryStore {
	return &PantryStore{db: db}
}

func scanPantryItem(scanner interface{ Scan(...any) error }) (*model.PantryItem, error) {
	var item model.PantryItem
	var quantity, notes sql.NullString
	var categoryID sql.NullInt64
	var catID sql.NullInt64
	var catName sql.NullString
	var catCreated, catUpdated sql.NullTime

	err := scanner.Scan(
		&item.ID, &item.Name, &quantity, &notes, &item.Order, &item.Status,
		&categoryID, &item.CreatedAt, &item.UpdatedAt,
		&catID, &catName, &catCreated, &catUpdated,
	)
	if err != nil {
		return nil, err
	}

	item.Quantity = stringPtr(quantity)
	item.Notes = stringPtr(notes)
	item.CategoryID = int64Ptr(categoryID)
	if catID.Valid {
		item.Category = &model.Category{
			ID:        catID.Int64,
			Name:      catName.String,
			CreatedAt: catCreated.Time,
			UpdatedAt: catUpdated.Time,
		}
	}
	return &item, nil
}

const pantrySelect = `SELECT p.id, p.name, p.quantity, p.notes, p.sort_order, p.status,
	p.category_id, p.created_at, p.updated_at,
	c.id, c.name, c.created_at, c.updated_at
	FROM pantry_items p
	LEFT JOIN categories c ON c.id = p.category_id`

// pantryOrder sorts by category name with Uncategorized last, then by position.
const pantryOrder = ` ORDER BY c.name IS NULL, c.name ASC, p.sort_order ASC, p.id ASC`

func (s *PantryStore) queryItems(query string, args ...any) ([]model.PantryItem, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pantry items: %w", err)
	}
	defer rows.Close()

	var items []model.PantryItem
	for rows.Next() {
		item, err := scanPantryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pantry item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *PantryStore) List() ([]model.PantryItem, error) {
	items, err := s.queryItems(pantrySelect + pantryOrder)
	if err != nil {
		return nil, fmt.Errorf("list pantry items: %w", err)
	}
	return items, nil
}

// ListByCategory returns the items of one category bucket in position order.
// A nil categoryID selects the Uncategorized bucket.
func (s *PantryStore) ListByCategory(categoryID *int64) ([]model.PantryItem, error) {
	items, err := s.queryItems(pantrySelect+` WHERE p.category_id IS ?`+pantryOrder, nullInt64(categoryID))
	if err != nil {
		return nil, fmt.Errorf("list pantry items by category: %w", err)
	}
	return items, nil
}

func (s *PantryStore) GetByID(id int64) (*model.PantryItem, error) {
	row := s.db.QueryRow(pantrySelect+` WHERE p.id = ?`, id)
	item, err := scanPantryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pantry item: %w", err)
	}
	return item, nil
}

// NextOrder returns the position after the last item in the category
// bucket, or 0 when the bucket is empty.
func (s *PantryStore) NextOrder(categoryID *int64) (int, error) {
	var max sql.NullInt64
	err := s.db.QueryRow(
		`SELECT MAX(sort_order) FROM pantry_items WHERE category_id IS ?`,
		nullInt64(categoryID),
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max order: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

// FindByNameFold returns the first pantry item whose name matches
// case-insensitively, in any category.
func (s *PantryStore) FindByNameFold(name string) (*model.PantryItem, error) {
	items, err := s.queryItems(pantrySelect + ` ORDER BY p.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("find pantry item by name: %w", err)
	}
	for i := range items {
		if model.SameName(items[i].Name, name) {
			return &items[i], nil
		}
	}
	return nil, nil
}

// FindExact returns the pantry item with exactly this name in exactly
// this category.
func (s *PantryStore) FindExact(name string, categoryID *int64) (*model.PantryItem, error) {
	row := s.db.QueryRow(
		pantrySelect+` WHERE p.name = ? AND p.category_id IS ? ORDER BY p.id ASC LIMIT 1`,
		name, nullInt64(categoryID),
	)
	item, err := scanPantryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find pantry item: %w", err)
	}
	return item, nil
}

// Create inserts a pantry item. Without an explicit order the item is
// appended to the end of its category.
func (s *PantryStore) Create(in model.CreatePantryItemInput) (*model.PantryItem, error) {
	status := in.Status
	if status == "" {
		status = model.StatusInStock
	}

	var order int
	if in.Order != nil {
		order = *in.Order
	} else {
		next, err := s.NextOrder(in.CategoryID)
		if err != nil {
			return nil, err
		}
		order = next
	}

	result, err := s.db.Exec(
		`INSERT INTO pantry_items (name, quantity, notes, sort_order, status, category_id) VALUES (?, ?, ?, ?, ?, ?)`,
		in.Name, nullString(in.Quantity), nullString(in.Notes), order, status, nullInt64(in.CategoryID),
	)
	if err != nil {
		return nil, fmt.Errorf("insert pantry item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *PantryStore) Update(id int64, in model.UpdatePantryItemInput) (*model.PantryItem, error) {
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
	if in.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *in.Quantity)
	}
	if in.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *in.Notes)
	}
	if in.Order != nil {
		sets = append(sets, "sort_order = ?")
		args = append(args, *in.Order)
	}
	if in.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *in.Status)
	}
	args = append(args, id)

	result, err := s.db.Exec(`UPDATE pantry_items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update pantry item: %w", err)
	}
	if err := requireAffected(result, fmt.Sprintf("update pantry item %d", id)); err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// SetStatus changes only the stock status, keeping the item's position.
func (s *PantryStore) SetStatus(id int64, status model.PantryStatus) (*model.PantryItem, error) {
	return s.Update(id, model.UpdatePantryItemInput{Status: &status})
}

func (s *PantryStore) Delete(id int64) error {
	result, err := s.db.Exec(`DELETE FROM pantry_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete pantry item: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("delete pantry item %d", id))
}

// Reorder applies every change in one transaction. It trusts the caller to
// supply a consistent ordering.
func (s *PantryStore) Reorder(changes []model.PantryOrderChange) ([]model.PantryItem, error) {
	var updated []model.PantryItem
	err := inTx(s.db, func(q DBTX) error {
		txStore := NewPantryStore(q)
		for _, c := range changes {
			var result sql.Result
			var err error
			if c.CategoryID.Set {
				result, err = q.Exec(
					`UPDATE pantry_items SET sort_order = ?, category_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
					c.Order, nullInt64(c.CategoryID.ID), c.ID,
				)
			} else {
				result, err = q.Exec(
					`UPDATE pantry_items SET sort_order = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
					c.Order, c.ID,
				)
			}
			if err != nil {
				return fmt.Errorf("reorder pantry item %d: %w", c.ID, err)
			}
			if err := requireAffected(result, fmt.Sprintf("reorder pantry item %d", c.ID)); err != nil {
				return err
			}

			item, err := txStore.GetByID(c.ID)
			if err != nil {
				return err
			}
			updated = append(updated, *item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *PantryStore) Clear() (model.ClearPantryResult, error) {
	result, err := s.db.Exec(`DELETE FROM pantry_items`)
	if err != nil {
		return model.ClearPantryResult{}, fmt.Errorf("clear pantry: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return model.ClearPantryResult{}, fmt.Errorf("rows affected: %w", err)
	}
	return model.ClearPantryResult{
		Count:   count,
		Message: fmt.Sprintf("Successfully cleared %d item(s) from the pantry.", count),
	}, nil
}
