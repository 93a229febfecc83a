// Package ordering turns a drag-and-drop move of a pantry item into the
// smallest set of position changes that keeps every category densely
// numbered from zero.
package ordering

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dukerupert/larder/internal/model"
)

// ErrItemBeingEdited rejects moving the item that is open for inline editing.
var ErrItemBeingEdited = errors.New("cannot move an item while it is being edited")

// ErrUnknownItem is returned when the moved item or the drop target is not
// in the pantry.
var ErrUnknownItem = errors.New("unknown pantry item")

type TargetKind string

const (
	TargetCategory      TargetKind = "category"
	TargetItem          TargetKind = "item"
	TargetUncategorized TargetKind = "uncategorized"
)

// Target is where an item was dropped: onto a category container, onto
// another item, or onto the Uncategorized bucket.
type Target struct {
	Kind       TargetKind `json:"kind" validate:"required,oneof=category item uncategorized"`
	CategoryID *int64     `json:"categoryId" validate:"required_if=Kind category"`
	ItemID     int64      `json:"itemId" validate:"required_if=Kind item"`
}

type MoveRequest struct {
	ItemID int64  `json:"itemId" validate:"required"`
	Target Target `json:"target"`
	// Position is the insertion index for a container drop. Nil appends.
	Position *int `json:"position" validate:"omitempty,min=0"`
	// EditingItemID is the item currently open for inline editing, if any.
	EditingItemID *int64 `json:"editingItemId"`
}

type bucket struct {
	categoryID *int64
	items      []model.PantryItem
}

type layout struct {
	buckets map[string]*bucket
}

func bucketKey(categoryID *int64) string {
	if categoryID == nil {
		return "null"
	}
	return fmt.Sprint(*categoryID)
}

// newLayout groups items by category, each bucket sorted by its current order.
func newLayout(items []model.PantryItem) *layout {
	l := &layout{buckets: make(map[string]*bucket)}
	for _, item := range items {
		l.bucket(item.CategoryID).items = append(l.bucket(item.CategoryID).items, item)
	}
	for _, b := range l.buckets {
		sort.SliceStable(b.items, func(i, j int) bool {
			if b.items[i].Order != b.items[j].Order {
				return b.items[i].Order < b.items[j].Order
			}
			return b.items[i].ID < b.items[j].ID
		})
	}
	return l
}

func (l *layout) bucket(categoryID *int64) *bucket {
	key := bucketKey(categoryID)
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{categoryID: categoryID}
		l.buckets[key] = b
	}
	return b
}

func indexOf(items []model.PantryItem, id int64) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func find(items []model.PantryItem, id int64) (model.PantryItem, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return model.PantryItem{}, false
}

func insertAt(items []model.PantryItem, index int, item model.PantryItem) []model.PantryItem {
	if index < 0 || index > len(items) {
		index = len(items)
	}
	items = append(items, model.PantryItem{})
	copy(items[index+1:], items[index:])
	items[index] = item
	return items
}

// Plan computes the order changes produced by a move. Only items whose
// order or category actually changes are returned; the moved item's change
// always carries its category.
func Plan(items []model.PantryItem, req MoveRequest) ([]model.PantryOrderChange, error) {
	if req.EditingItemID != nil && *req.EditingItemID == req.ItemID {
		return nil, ErrItemBeingEdited
	}

	active, ok := find(items, req.ItemID)
	if !ok {
		return nil, fmt.Errorf("move item %d: %w", req.ItemID, ErrUnknownItem)
	}

	var targetCategory *int64
	overIndex := -1
	switch req.Target.Kind {
	case TargetItem:
		over, ok := find(items, req.Target.ItemID)
		if !ok {
			return nil, fmt.Errorf("drop on item %d: %w", req.Target.ItemID, ErrUnknownItem)
		}
		targetCategory = over.CategoryID
	case TargetCategory:
		targetCategory = req.Target.CategoryID
	case TargetUncategorized:
		targetCategory = nil
	default:
		return nil, fmt.Errorf("unknown drop target %q", req.Target.Kind)
	}

	l := newLayout(items)
	src := l.bucket(active.CategoryID)
	fromIndex := indexOf(src.items, active.ID)

	if model.SameCategory(active.CategoryID, targetCategory) {
		switch {
		case req.Target.Kind == TargetItem:
			overIndex = indexOf(src.items, req.Target.ItemID)
		case req.Position != nil:
			overIndex = *req.Position
		default:
			overIndex = len(src.items) - 1
		}
		if overIndex >= len(src.items) {
			overIndex = len(src.items) - 1
		}
		src.items = arrayMove(src.items, fromIndex, overIndex)
	} else {
		src.items = append(src.items[:fromIndex:fromIndex], src.items[fromIndex+1:]...)

		dst := l.bucket(targetCategory)
		switch {
		case req.Target.Kind == TargetItem:
			overIndex = indexOf(dst.items, req.Target.ItemID)
		case req.Position != nil:
			overIndex = *req.Position
		}
		moved := active
		moved.CategoryID = targetCategory
		dst.items = insertAt(dst.items, overIndex, moved)
	}

	return diff(items, l, active.ID, bucketKey(active.CategoryID), bucketKey(targetCategory)), nil
}

// arrayMove removes the element at from and reinserts it at to.
func arrayMove(items []model.PantryItem, from, to int) []model.PantryItem {
	out := make([]model.PantryItem, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)
	moved := items[from]
	return insertAt(out, to, moved)
}

// Normalize returns the changes that renumber every category densely from
// zero, keeping the current relative order.
func Normalize(items []model.PantryItem) []model.PantryOrderChange {
	l := newLayout(items)
	keys := make([]string, 0, len(l.buckets))
	for k := range l.buckets {
		keys = append(keys, k)
	}
	return diff(items, l, 0, keys...)
}

// diff compares each item in the named buckets with its last known order
// and category. Buckets not named are left alone even when they have gaps.
// Keys are visited in sorted order so the result is deterministic.
func diff(before []model.PantryItem, l *layout, movedID int64, touched ...string) []model.PantryOrderChange {
	prev := make(map[int64]model.PantryItem, len(before))
	for _, item := range before {
		prev[item.ID] = item
	}

	seen := make(map[string]bool, len(touched))
	keys := make([]string, 0, len(touched))
	for _, k := range touched {
		if _, ok := l.buckets[k]; ok && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var changes []model.PantryOrderChange
	for _, k := range keys {
		b := l.buckets[k]
		for i, item := range b.items {
			old := prev[item.ID]
			categoryChanged := !model.SameCategory(old.CategoryID, b.categoryID)
			if old.Order == i && !categoryChanged {
				continue
			}
			change := model.PantryOrderChange{ID: item.ID, Order: i}
			if categoryChanged || item.ID == movedID {
				change.CategoryID = model.SomeID(b.categoryID)
			}
			changes = append(changes, change)
		}
	}
	return changes
}
