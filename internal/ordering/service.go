package ordering

import (
	"fmt"
	"log/slog"

	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/store"
)

type Service struct {
	pantry *store.PantryStore
	logger *slog.Logger
}

func NewService(ps *store.PantryStore, logger *slog.Logger) *Service {
	return &Service{pantry: ps, logger: logger.With("component", "ordering")}
}

// Move plans a drag-and-drop move against the current pantry and persists
// the resulting changes in one transaction. It returns the updated items.
func (s *Service) Move(req MoveRequest) ([]model.PantryItem, error) {
	items, err := s.pantry.List()
	if err != nil {
		return nil, fmt.Errorf("move pantry item: %w", err)
	}

	changes, err := Plan(items, req)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return []model.PantryItem{}, nil
	}

	updated, err := s.pantry.Reorder(changes)
	if err != nil {
		return nil, fmt.Errorf("move pantry item %d: %w", req.ItemID, err)
	}
	s.logger.Debug("pantry item moved", "item_id", req.ItemID, "changes", len(changes))
	return updated, nil
}

// Normalize closes any gaps left in category orderings.
func (s *Service) Normalize() ([]model.PantryItem, error) {
	items, err := s.pantry.List()
	if err != nil {
		return nil, fmt.Errorf("normalize pantry order: %w", err)
	}

	changes := Normalize(items)
	if len(changes) == 0 {
		return []model.PantryItem{}, nil
	}

	updated, err := s.pantry.Reorder(changes)
	if err != nil {
		return nil, fmt.Errorf("normalize pantry order: %w", err)
	}
	s.logger.Info("pantry order normalized", "changes", len(changes))
	return updated, nil
}
