package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dukerupert/larder/internal/model"
)

type CategoryStore struct {
	db DBTX
}

func NewCategoryStore(db DBTX) *CategoryStore {
	return &CategoryStore{db: db}
}

func scanCategory(scanner interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	err := scanner.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const categoryCols = `id, name, created_at, updated_at`

func (s *CategoryStore) List() ([]model.Category, error) {
	rows, err := s.db.Query(`SELECT ` + categoryCols + ` FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (s *CategoryStore) GetByID(id int64) (*model.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryCols+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// FindByName looks a category up by name, ignoring case. Folding happens
// in Go because SQLite's NOCASE only folds ASCII letters.
func (s *CategoryStore) FindByName(name string) (*model.Category, error) {
	categories, err := s.List()
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	for i := range categories {
		if model.SameName(categories[i].Name, name) {
			return &categories[i], nil
		}
	}
	return nil, nil
}

func (s *CategoryStore) Create(name string) (*model.Category, error) {
	existing, err := s.FindByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &DuplicateNameError{Name: name}
	}

	result, err := s.db.Exec(`INSERT INTO categories (name, name_key) VALUES (?, ?)`, name, model.FoldName(name))
	if err != nil {
		// Lost a race with a concurrent insert of the same name.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, &DuplicateNameError{Name: name}
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes the category together with its pantry items in one
// transaction. Grocery items in the category become uncategorized.
func (s *CategoryStore) Delete(id int64) (*model.Category, error) {
	var deleted *model.Category
	err := inTx(s.db, func(q DBTX) error {
		c, err := NewCategoryStore(q).GetByID(id)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("delete category %d: %w", id, ErrNotFound)
		}

		if _, err := q.Exec(`DELETE FROM pantry_items WHERE category_id = ?`, id); err != nil {
			return fmt.Errorf("delete pantry items for category: %w", err)
		}
		if _, err := q.Exec(`UPDATE grocery_list_items SET category_id = NULL, updated_at = CURRENT_TIMESTAMP WHERE category_id = ?`, id); err != nil {
			return fmt.Errorf("uncategorize grocery items: %w", err)
		}

		result, err := q.Exec(`DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		if err := requireAffected(result, fmt.Sprintf("delete category %d", id)); err != nil {
			return err
		}
		deleted = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// IsDuplicateName reports whether err is a *DuplicateNameError.
func IsDuplicateName(err error) bool {
	var dup *DuplicateNameError
	return errors.As(err, &dup)
}
