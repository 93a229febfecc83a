package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/larder/internal/model"
)

type MealPlanStore struct {
	db DBTX
}

func NewMealPlanStore(db DBTX) *MealPlanStore {
	return &MealPlanStore{db: db}
}

func scanPlannedMeal(scanner interface{ Scan(...any) error }) (*model.PlannedMeal, error) {
	var m model.PlannedMeal
	err := scanner.Scan(&m.ID, &m.UID, &m.Date, &m.MealType, &m.MealName, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const plannedMealCols = `id, uid, meal_date, meal_type, meal_name, created_at`

// ListRange returns planned meals with from <= date <= to. Dates are
// YYYY-MM-DD strings, so lexical order is date order.
func (s *MealPlanStore) ListRange(from, to string) ([]model.PlannedMeal, error) {
	rows, err := s.db.Query(
		`SELECT `+plannedMealCols+` FROM planned_meals WHERE meal_date >= ? AND meal_date <= ?
		ORDER BY meal_date ASC, CASE meal_type WHEN 'breakfast' THEN 0 WHEN 'lunch' THEN 1 WHEN 'snack' THEN 2 ELSE 3 END, id ASC`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list planned meals: %w", err)
	}
	defer rows.Close()

	var meals []model.PlannedMeal
	for rows.Next() {
		m, err := scanPlannedMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan planned meal: %w", err)
		}
		meals = append(meals, *m)
	}
	return meals, rows.Err()
}

func (s *MealPlanStore) GetByID(id int64) (*model.PlannedMeal, error) {
	row := s.db.QueryRow(`SELECT `+plannedMealCols+` FROM planned_meals WHERE id = ?`, id)
	m, err := scanPlannedMeal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get planned meal: %w", err)
	}
	return m, nil
}

func (s *MealPlanStore) Create(uid string, in model.CreatePlannedMealInput) (*model.PlannedMeal, error) {
	result, err := s.db.Exec(
		`INSERT INTO planned_meals (uid, meal_date, meal_type, meal_name) VALUES (?, ?, ?, ?)`,
		uid, in.Date, in.MealType, in.MealName,
	)
	if err != nil {
		return nil, fmt.Errorf("insert planned meal: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *MealPlanStore) Delete(id int64) error {
	result, err := s.db.Exec(`DELETE FROM planned_meals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete planned meal: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("delete planned meal %d", id))
}
