package ordering

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dukerupert/larder/internal/database"
	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/store"
)

func id(v int64) *int64 { return &v }

func item(itemID int64, order int, categoryID *int64) model.PantryItem {
	return model.PantryItem{ID: itemID, Order: order, CategoryID: categoryID}
}

func TestPlanSameCategoryMoveToEnd(t *testing.T) {
	x := id(1)
	items := []model.PantryItem{item(10, 0, x), item(11, 1, x), item(12, 2, x)}

	got, err := Plan(items, MoveRequest{ItemID: 10, Target: Target{Kind: TargetItem, ItemID: 12}})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	want := []model.PantryOrderChange{
		{ID: 11, Order: 0},
		{ID: 12, Order: 1},
		{ID: 10, Order: 2, CategoryID: model.SomeID(x)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanSameCategoryMoveUp(t *testing.T) {
	x := id(1)
	items := []model.PantryItem{item(10, 0, x), item(11, 1, x), item(12, 2, x), item(13, 3, x)}

	got, err := Plan(items, MoveRequest{ItemID: 12, Target: Target{Kind: TargetItem, ItemID: 11}})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	want := []model.PantryOrderChange{
		{ID: 12, Order: 1, CategoryID: model.SomeID(x)},
		{ID: 11, Order: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanCrossCategoryOntoItem(t *testing.T) {
	x, y := id(1), id(2)
	items := []model.PantryItem{
		item(10, 0, x), item(11, 1, x), item(12, 2, x),
		item(20, 0, y), item(21, 1, y),
	}

	got, err := Plan(items, MoveRequest{ItemID: 11, Target: Target{Kind: TargetItem, ItemID: 21}})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	want := []model.PantryOrderChange{
		{ID: 12, Order: 1},
		{ID: 11, Order: 1, CategoryID: model.SomeID(y)},
		{ID: 21, Order: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanDropOnContainer(t *testing.T) {
	x, y := id(1), id(2)
	items := []model.PantryItem{item(10, 0, x), item(11, 1, x), item(20, 0, y)}

	tests := []struct {
		name string
		req  MoveRequest
		want []model.PantryOrderChange
	}{
		{
			name: "append to category",
			req:  MoveRequest{ItemID: 10, Target: Target{Kind: TargetCategory, CategoryID: y}},
			want: []model.PantryOrderChange{
				{ID: 11, Order: 0},
				{ID: 10, Order: 1, CategoryID: model.SomeID(y)},
			},
		},
		{
			name: "insert at position",
			req:  MoveRequest{ItemID: 10, Target: Target{Kind: TargetCategory, CategoryID: y}, Position: intPtr(0)},
			want: []model.PantryOrderChange{
				{ID: 11, Order: 0},
				{ID: 10, Order: 0, CategoryID: model.SomeID(y)},
				{ID: 20, Order: 1},
			},
		},
		{
			name: "uncategorized",
			req:  MoveRequest{ItemID: 11, Target: Target{Kind: TargetUncategorized}},
			want: []model.PantryOrderChange{
				{ID: 11, Order: 0, CategoryID: model.SomeID(nil)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Plan(items, tt.req)
			if err != nil {
				t.Fatalf("plan: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("changes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlanRejectsEditingItem(t *testing.T) {
	x := id(1)
	items := []model.PantryItem{item(10, 0, x), item(11, 1, x)}

	_, err := Plan(items, MoveRequest{ItemID: 10, Target: Target{Kind: TargetItem, ItemID: 11}, EditingItemID: id(10)})
	if !errors.Is(err, ErrItemBeingEdited) {
		t.Errorf("err = %v, want ErrItemBeingEdited", err)
	}

	// Editing a different item does not block the move.
	if _, err := Plan(items, MoveRequest{ItemID: 10, Target: Target{Kind: TargetItem, ItemID: 11}, EditingItemID: id(11)}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPlanUnknownItem(t *testing.T) {
	items := []model.PantryItem{item(10, 0, nil)}

	if _, err := Plan(items, MoveRequest{ItemID: 99, Target: Target{Kind: TargetUncategorized}}); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("unknown moved item = %v, want ErrUnknownItem", err)
	}
	if _, err := Plan(items, MoveRequest{ItemID: 10, Target: Target{Kind: TargetItem, ItemID: 99}}); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("unknown target = %v, want ErrUnknownItem", err)
	}
}

func TestPlanNoChange(t *testing.T) {
	x := id(1)
	items := []model.PantryItem{item(10, 0, x), item(11, 1, x)}

	got, err := Plan(items, MoveRequest{ItemID: 10, Target: Target{Kind: TargetItem, ItemID: 10}})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no changes, got %+v", got)
	}
}

func TestPlanLeavesOtherCategoriesAlone(t *testing.T) {
	x, z := id(1), id(3)
	items := []model.PantryItem{
		item(10, 0, x), item(11, 1, x), item(12, 2, x),
		item(30, 0, z), item(31, 5, z),
	}

	got, err := Plan(items, MoveRequest{ItemID: 10, Target: Target{Kind: TargetItem, ItemID: 12}})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	want := []model.PantryOrderChange{
		{ID: 11, Order: 0},
		{ID: 12, Order: 1},
		{ID: 10, Order: 2, CategoryID: model.SomeID(x)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize(t *testing.T) {
	x := id(1)
	items := []model.PantryItem{item(10, 0, x), item(11, 4, x), item(12, 9, x), item(20, 3, nil)}

	want := []model.PantryOrderChange{
		{ID: 11, Order: 1},
		{ID: 12, Order: 2},
		{ID: 20, Order: 0},
	}
	if diff := cmp.Diff(want, Normalize(items)); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestServiceMove(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	dairy, _ := store.NewCategoryStore(db).FindByName("Dairy")
	ps := store.NewPantryStore(db)
	a, _ := ps.Create(model.CreatePantryItemInput{Name: "A", CategoryID: &dairy.ID})
	b, _ := ps.Create(model.CreatePantryItemInput{Name: "B", CategoryID: &dairy.ID})
	c, _ := ps.Create(model.CreatePantryItemInput{Name: "C", CategoryID: &dairy.ID})

	svc := NewService(ps, slog.New(slog.NewTextHandler(io.Discard, nil)))
	updated, err := svc.Move(MoveRequest{ItemID: a.ID, Target: Target{Kind: TargetItem, ItemID: c.ID}})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if len(updated) != 3 {
		t.Errorf("updated = %d items, want 3", len(updated))
	}

	items, _ := ps.ListByCategory(&dairy.ID)
	var got []int64
	for i, it := range items {
		if it.Order != i {
			t.Errorf("item %s order = %d, want %d", it.Name, it.Order, i)
		}
		got = append(got, it.ID)
	}
	if diff := cmp.Diff([]int64{b.ID, c.ID, a.ID}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	_, err = svc.Move(MoveRequest{ItemID: a.ID, Target: Target{Kind: TargetUncategorized}, EditingItemID: &a.ID})
	if !errors.Is(err, ErrItemBeingEdited) {
		t.Errorf("err = %v, want ErrItemBeingEdited", err)
	}
}

func intPtr(i int) *int { return &i }
