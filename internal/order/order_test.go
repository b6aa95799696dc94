package order

import (
	"testing"
	"time"

	"boardsync/internal/model"
)

func proj(id string, col model.ColumnID, sortOrder int) model.Project {
	return model.Project{
		ID:        id,
		Title:     id,
		Column:    col,
		SortOrder: sortOrder,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func keysByID(updated []model.Project, col model.ColumnID) map[string]int {
	out := map[string]int{}
	for _, p := range updated {
		if p.Column == col {
			out[p.ID] = p.SortOrder
		}
	}
	return out
}

func assertContiguous(t *testing.T, updated []model.Project, col model.ColumnID, n int) {
	t.Helper()
	keys := keysByID(updated, col)
	if len(keys) != n {
		t.Fatalf("column %s: got %d rows, want %d", col, len(keys), n)
	}
	seen := map[int]string{}
	for id, k := range keys {
		if k < 0 || k >= n {
			t.Fatalf("column %s: key %d for %s out of range [0,%d)", col, k, id, n)
		}
		if prev, dup := seen[k]; dup {
			t.Fatalf("column %s: duplicate key %d (%s and %s)", col, k, prev, id)
		}
		seen[k] = id
	}
}

func TestPlanDrag_WithinColumn(t *testing.T) {
	projects := []model.Project{
		proj("a", model.ColumnNew, 0),
		proj("b", model.ColumnNew, 1),
		proj("c", model.ColumnNew, 2),
		proj("x", model.ColumnCurrent, 0),
	}

	res, err := PlanDrag(projects, "a", "c", model.ColumnNew)
	if err != nil {
		t.Fatalf("PlanDrag: %v", err)
	}
	assertContiguous(t, res.Updated, model.ColumnNew, 3)

	keys := keysByID(res.Updated, model.ColumnNew)
	if keys["b"] != 0 || keys["c"] != 1 || keys["a"] != 2 {
		t.Fatalf("unexpected order: %v", keys)
	}
	// The untouched column never appears in the result.
	if len(keysByID(res.Updated, model.ColumnCurrent)) != 0 {
		t.Fatalf("current column should be untouched: %v", res.Updated)
	}
}

func TestPlanDrag_WithinColumn_PreservesRelativeOrder(t *testing.T) {
	projects := []model.Project{
		proj("a", model.ColumnNew, 0),
		proj("b", model.ColumnNew, 1),
		proj("c", model.ColumnNew, 2),
		proj("d", model.ColumnNew, 3),
	}
	res, err := PlanDrag(projects, "d", "b", model.ColumnNew)
	if err != nil {
		t.Fatalf("PlanDrag: %v", err)
	}
	keys := keysByID(res.Updated, model.ColumnNew)
	// a, b, c keep their relative order with d inserted at b's slot.
	if !(keys["a"] < keys["b"] && keys["b"] < keys["c"]) {
		t.Fatalf("relative order broken: %v", keys)
	}
	if keys["d"] != 1 {
		t.Fatalf("d should land at b's position: %v", keys)
	}
}

func TestPlanDrag_CrossColumn(t *testing.T) {
	projects := []model.Project{
		proj("a", model.ColumnNew, 0),
		proj("b", model.ColumnNew, 1),
		proj("c", model.ColumnNew, 2),
		proj("x", model.ColumnCurrent, 0),
		proj("y", model.ColumnCurrent, 1),
	}

	res, err := PlanDrag(projects, "b", "y", model.ColumnCurrent)
	if err != nil {
		t.Fatalf("PlanDrag: %v", err)
	}
	// Source shrinks to 0..n-2, target grows to 0..m.
	assertContiguous(t, res.Updated, model.ColumnNew, 2)
	assertContiguous(t, res.Updated, model.ColumnCurrent, 3)

	target := keysByID(res.Updated, model.ColumnCurrent)
	if target["x"] != 0 || target["b"] != 1 || target["y"] != 2 {
		t.Fatalf("unexpected target order: %v", target)
	}
	for _, p := range res.Updated {
		if p.ID == "b" && p.Column != model.ColumnCurrent {
			t.Fatalf("moved project should carry the target column, got %s", p.Column)
		}
	}
}

func TestPlanDrag_EmptyColumnAppends(t *testing.T) {
	projects := []model.Project{
		proj("a", model.ColumnNew, 0),
	}
	res, err := PlanDrag(projects, "a", "", model.ColumnFinancial)
	if err != nil {
		t.Fatalf("PlanDrag: %v", err)
	}
	keys := keysByID(res.Updated, model.ColumnFinancial)
	if keys["a"] != 0 {
		t.Fatalf("expected a at key 0 in financial, got %v", keys)
	}
}

func TestPlanDrag_NoopOnSelfDrop(t *testing.T) {
	projects := []model.Project{proj("a", model.ColumnNew, 0)}
	res, err := PlanDrag(projects, "a", "a", model.ColumnNew)
	if err != nil {
		t.Fatalf("PlanDrag: %v", err)
	}
	if len(res.Updated) != 0 {
		t.Fatalf("self drop should be a no-op, got %v", res.Updated)
	}
}

func TestPlanDrag_MissingMoved(t *testing.T) {
	if _, err := PlanDrag(nil, "ghost", "", model.ColumnNew); err == nil {
		t.Fatal("expected error for unknown moved id")
	}
}

func TestPlanMoveToColumn(t *testing.T) {
	projects := []model.Project{
		proj("a", model.ColumnNew, 0),
		proj("x", model.ColumnCurrent, 0),
		proj("y", model.ColumnCurrent, 1),
	}
	res, err := PlanMoveToColumn(projects, "a", model.ColumnCurrent)
	if err != nil {
		t.Fatalf("PlanMoveToColumn: %v", err)
	}
	assertContiguous(t, res.Updated, model.ColumnCurrent, 3)
	keys := keysByID(res.Updated, model.ColumnCurrent)
	if keys["a"] != 2 {
		t.Fatalf("moved project should append at the end, got %v", keys)
	}
}

func TestPlanMoveToColumn_SameColumnIsNoop(t *testing.T) {
	projects := []model.Project{proj("a", model.ColumnNew, 0)}
	res, err := PlanMoveToColumn(projects, "a", model.ColumnNew)
	if err != nil {
		t.Fatalf("PlanMoveToColumn: %v", err)
	}
	if len(res.Updated) != 0 {
		t.Fatalf("same-column move should be a no-op, got %v", res.Updated)
	}
}

func TestPlanTaskReorder(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: "t1", ProjectID: "p", SortOrder: 0, CreatedAt: now},
		{ID: "t2", ProjectID: "p", SortOrder: 1, CreatedAt: now},
		{ID: "t3", ProjectID: "p", SortOrder: 2, CreatedAt: now},
	}
	next, err := PlanTaskReorder(tasks, "t3", 0)
	if err != nil {
		t.Fatalf("PlanTaskReorder: %v", err)
	}
	if next[0].ID != "t3" || next[1].ID != "t1" || next[2].ID != "t2" {
		t.Fatalf("unexpected order: %v", next)
	}
	for i, task := range next {
		if task.SortOrder != i {
			t.Fatalf("task %s has key %d, want %d", task.ID, task.SortOrder, i)
		}
	}
}

func TestPlanTaskReorder_ClampsInsertAt(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: "t1", SortOrder: 0, CreatedAt: now},
		{ID: "t2", SortOrder: 1, CreatedAt: now},
	}
	next, err := PlanTaskReorder(tasks, "t1", 99)
	if err != nil {
		t.Fatalf("PlanTaskReorder: %v", err)
	}
	if next[len(next)-1].ID != "t1" {
		t.Fatalf("expected t1 appended at end, got %v", next)
	}
}
