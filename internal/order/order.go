// Package order computes sort-key assignments for board gestures.
//
// All functions are pure: they take the current project/task lists and return
// copies of the affected rows with new (column, sort_order) values. Callers
// apply the result locally and persist it with a batch upsert.
package order

import (
	"errors"
	"sort"

	"boardsync/internal/model"
)

var ErrNotFound = errors.New("moved row not found")

// SortProjects sorts in place by sort_order, breaking ties by created_at then id
// so that concurrent inserts with equal keys still render deterministically.
func SortProjects(projects []model.Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		a, b := projects[i], projects[j]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// SortTasks sorts in place by sort_order with the same tie-breaking as projects.
func SortTasks(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// DragResult lists every project whose (column, sort_order) changed or was
// reassigned by a drag. Untouched columns never appear.
type DragResult struct {
	Updated []model.Project
}

// PlanDrag plans the outcome of dropping movedID onto overID (another card) or
// onto overColumn (an empty spot in a column).
//
// Same-column drops reassign that column's keys to 0..n-1 with the moved card
// at the reference position. Cross-column drops renumber the source column
// without the moved card (0..n-2) and the target column with it inserted at
// the reference position, or appended when there is no reference card.
func PlanDrag(projects []model.Project, movedID, overID string, overColumn model.ColumnID) (DragResult, error) {
	if movedID == "" || movedID == overID {
		return DragResult{}, nil
	}

	var moved *model.Project
	var over *model.Project
	for i := range projects {
		switch projects[i].ID {
		case movedID:
			moved = &projects[i]
		case overID:
			over = &projects[i]
		}
	}
	if moved == nil {
		return DragResult{}, ErrNotFound
	}

	targetColumn := overColumn
	if over != nil {
		targetColumn = over.Column
	}
	if !model.ValidColumn(targetColumn) {
		return DragResult{}, errors.New("invalid target column")
	}
	sourceColumn := moved.Column

	sourceList := columnProjects(projects, sourceColumn)
	if sourceColumn == targetColumn {
		oldIndex := indexOf(sourceList, movedID)
		newIndex := len(sourceList) - 1
		if over != nil {
			newIndex = indexOf(sourceList, over.ID)
		}
		if oldIndex < 0 || newIndex < 0 {
			return DragResult{}, ErrNotFound
		}
		reordered := arrayMove(sourceList, oldIndex, newIndex)
		return DragResult{Updated: renumberProjects(reordered, sourceColumn)}, nil
	}

	targetList := columnProjects(projects, targetColumn)
	insertAt := len(targetList)
	if over != nil {
		insertAt = indexOf(targetList, over.ID)
		if insertAt < 0 {
			insertAt = len(targetList)
		}
	}

	sourceWithout := make([]model.Project, 0, len(sourceList)-1)
	for _, p := range sourceList {
		if p.ID != movedID {
			sourceWithout = append(sourceWithout, p)
		}
	}

	nextTarget := make([]model.Project, 0, len(targetList)+1)
	nextTarget = append(nextTarget, targetList[:insertAt]...)
	nextTarget = append(nextTarget, *moved)
	nextTarget = append(nextTarget, targetList[insertAt:]...)

	updated := renumberProjects(sourceWithout, sourceColumn)
	updated = append(updated, renumberProjects(nextTarget, targetColumn)...)
	return DragResult{Updated: updated}, nil
}

// PlanMoveToColumn appends movedID to the end of column and renumbers only the
// destination. Used by the non-drag "move to column" action; source keys keep
// their existing gaps until the next drag touches that column.
func PlanMoveToColumn(projects []model.Project, movedID string, column model.ColumnID) (DragResult, error) {
	var moved *model.Project
	for i := range projects {
		if projects[i].ID == movedID {
			moved = &projects[i]
			break
		}
	}
	if moved == nil {
		return DragResult{}, ErrNotFound
	}
	if !model.ValidColumn(column) {
		return DragResult{}, errors.New("invalid target column")
	}
	if moved.Column == column {
		return DragResult{}, nil
	}
	target := columnProjects(projects, column)
	target = append(target, *moved)
	return DragResult{Updated: renumberProjects(target, column)}, nil
}

// PlanTaskReorder moves movedID within a single project's task list to
// insertAt (clamped), returning the whole list renumbered 0..n-1.
func PlanTaskReorder(tasks []model.Task, movedID string, insertAt int) ([]model.Task, error) {
	cur := append([]model.Task{}, tasks...)
	SortTasks(cur)

	movedIdx := -1
	for i := range cur {
		if cur[i].ID == movedID {
			movedIdx = i
			break
		}
	}
	if movedIdx < 0 {
		return nil, ErrNotFound
	}

	moved := cur[movedIdx]
	rest := append(cur[:movedIdx:movedIdx], cur[movedIdx+1:]...)
	if insertAt < 0 {
		insertAt = 0
	}
	if insertAt > len(rest) {
		insertAt = len(rest)
	}

	next := make([]model.Task, 0, len(cur))
	next = append(next, rest[:insertAt]...)
	next = append(next, moved)
	next = append(next, rest[insertAt:]...)
	for i := range next {
		next[i].SortOrder = i
	}
	return next, nil
}

// RenumberTasks returns copies of tasks with sort_order reassigned 0..n-1 in
// the given order. Used when duplicating a project's checklist.
func RenumberTasks(tasks []model.Task) []model.Task {
	next := append([]model.Task{}, tasks...)
	for i := range next {
		next[i].SortOrder = i
	}
	return next
}

func columnProjects(projects []model.Project, column model.ColumnID) []model.Project {
	list := make([]model.Project, 0)
	for _, p := range projects {
		if p.Column == column {
			list = append(list, p)
		}
	}
	SortProjects(list)
	return list
}

func renumberProjects(list []model.Project, column model.ColumnID) []model.Project {
	out := append([]model.Project{}, list...)
	for i := range out {
		out[i].Column = column
		out[i].SortOrder = i
	}
	return out
}

func indexOf(list []model.Project, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func arrayMove(list []model.Project, from, to int) []model.Project {
	out := append([]model.Project{}, list...)
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	if to > len(out) {
		to = len(out)
	}
	out = append(out[:to], append([]model.Project{moved}, out[to:]...)...)
	return out
}
