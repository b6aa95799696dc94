package mutate

import (
	"context"
	"strings"

	"boardsync/internal/model"
	"boardsync/internal/order"
	"boardsync/internal/remote"
)

// CreateProject inserts a fresh card into the "new" column with the next
// available sort key and returns it. The insert is optimistic: the card is on
// the board before the remote write resolves.
func (m *Mutator) CreateProject(ctx context.Context) model.Project {
	now := m.Now()
	count := 0
	for _, p := range m.Store.Projects() {
		if p.Column == model.ColumnNew {
			count++
		}
	}
	p := model.Project{
		ID:             m.NewID(),
		Title:          "New project",
		Column:         model.ColumnNew,
		ColorStatus:    model.ColorWhite,
		AssignedUserID: model.StrPtr(m.Session.UserID),
		SortOrder:      count,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	previous := m.Store.Projects()
	m.Exec.Run(ctx,
		func() { m.Store.UpsertProject(p) },
		func() { m.Store.ReplaceProjects(previous) },
		func(ctx context.Context) error { return m.Remote.InsertProject(ctx, p) },
	)
	return p
}

// UpdateProject replaces the card's fields. A title that trims to empty is
// ignored rather than persisted.
func (m *Mutator) UpdateProject(ctx context.Context, p model.Project) {
	if strings.TrimSpace(p.Title) == "" {
		return
	}
	if !m.CanEdit(p) {
		return
	}
	p.UpdatedAt = m.Now()

	previous := m.Store.Projects()
	m.Exec.Run(ctx,
		func() { m.Store.UpsertProject(p) },
		func() { m.Store.ReplaceProjects(previous) },
		func(ctx context.Context) error { return m.Remote.UpdateProject(ctx, p) },
	)
}

// DeleteProject removes the card and cascades its tasks locally. The remote
// cascade is the hub's job.
func (m *Mutator) DeleteProject(ctx context.Context, id string) {
	p, ok := m.Store.FindProject(id)
	if !ok || !m.CanEdit(p) {
		return
	}
	previous := m.Store.Projects()
	previousTasks := m.Store.Tasks()
	m.Exec.Run(ctx,
		func() { m.Store.RemoveProject(id) },
		func() {
			m.Store.ReplaceProjects(previous)
			m.Store.ReplaceTasks(previousTasks)
		},
		func(ctx context.Context) error { return m.Remote.DeleteProject(ctx, id) },
	)
}

// DuplicateProject clones the card with a new id, "(copy)" suffix, pin and
// task completion reset, and appends it to the same column. Tasks are copied
// with fresh ids and renumbered.
func (m *Mutator) DuplicateProject(ctx context.Context, id string) {
	p, ok := m.Store.FindProject(id)
	if !ok || !m.CanEdit(p) {
		return
	}
	now := m.Now()
	count := 0
	for _, other := range m.Store.Projects() {
		if other.Column == p.Column {
			count++
		}
	}
	clone := p
	clone.ID = m.NewID()
	clone.Title = p.Title + " (copy)"
	clone.Pinned = false
	clone.SortOrder = count
	clone.CreatedAt = now
	clone.UpdatedAt = now

	sourceTasks := m.Store.ProjectTasks(p.ID)
	cloneTasks := make([]model.Task, 0, len(sourceTasks))
	for _, t := range sourceTasks {
		ct := t
		ct.ID = m.NewID()
		ct.ProjectID = clone.ID
		ct.Done = false
		ct.CreatedAt = now
		cloneTasks = append(cloneTasks, ct)
	}
	cloneTasks = order.RenumberTasks(cloneTasks)

	previous := m.Store.Projects()
	previousTasks := m.Store.Tasks()
	m.Exec.Run(ctx,
		func() {
			m.Store.UpsertProject(clone)
			m.Store.ApplyTasks(cloneTasks)
		},
		func() {
			m.Store.ReplaceProjects(previous)
			m.Store.ReplaceTasks(previousTasks)
		},
		func(ctx context.Context) error {
			if err := m.Remote.InsertProject(ctx, clone); err != nil {
				return err
			}
			return m.Remote.InsertTasks(ctx, cloneTasks)
		},
	)
}

// MoveProject appends the card to another column, renumbering only the
// destination.
func (m *Mutator) MoveProject(ctx context.Context, id string, column model.ColumnID) {
	p, ok := m.Store.FindProject(id)
	if !ok || !m.CanEdit(p) {
		return
	}
	res, err := order.PlanMoveToColumn(m.Store.Projects(), id, column)
	if err != nil || len(res.Updated) == 0 {
		return
	}
	m.applyPositions(ctx, res.Updated)
}

// Drag applies a drag-and-drop gesture: movedID dropped onto overID (a card)
// or onto overColumn (an empty column area). All affected rows are written in
// one batch upsert preserving the per-row (column, sort_order) pair.
func (m *Mutator) Drag(ctx context.Context, movedID, overID string, overColumn model.ColumnID) {
	p, ok := m.Store.FindProject(movedID)
	if !ok || !m.CanEdit(p) {
		return
	}
	res, err := order.PlanDrag(m.Store.Projects(), movedID, overID, overColumn)
	if err != nil || len(res.Updated) == 0 {
		return
	}
	m.applyPositions(ctx, res.Updated)
}

func (m *Mutator) applyPositions(ctx context.Context, updated []model.Project) {
	positions := make([]remote.ProjectPosition, 0, len(updated))
	for _, p := range updated {
		positions = append(positions, remote.ProjectPosition{
			ID:        p.ID,
			Column:    p.Column,
			SortOrder: p.SortOrder,
		})
	}

	previous := m.Store.Projects()
	m.Exec.Run(ctx,
		func() { m.Store.ApplyProjects(updated) },
		func() { m.Store.ReplaceProjects(previous) },
		func(ctx context.Context) error { return m.Remote.UpsertProjectPositions(ctx, positions) },
	)
}

// CycleColor advances the card's color to the next value in the fixed cycle.
func (m *Mutator) CycleColor(ctx context.Context, id string) {
	p, ok := m.Store.FindProject(id)
	if !ok || !m.CanEdit(p) {
		return
	}
	p.ColorStatus = model.NextColor(p.ColorStatus)
	p.UpdatedAt = m.Now()

	previous := m.Store.Projects()
	m.Exec.Run(ctx,
		func() { m.Store.UpsertProject(p) },
		func() { m.Store.ReplaceProjects(previous) },
		func(ctx context.Context) error { return m.Remote.UpdateProject(ctx, p) },
	)
}

// TogglePin flips the card's pin flag.
func (m *Mutator) TogglePin(ctx context.Context, id string) {
	p, ok := m.Store.FindProject(id)
	if !ok || !m.CanEdit(p) {
		return
	}
	p.Pinned = !p.Pinned
	p.UpdatedAt = m.Now()

	previous := m.Store.Projects()
	m.Exec.Run(ctx,
		func() { m.Store.UpsertProject(p) },
		func() { m.Store.ReplaceProjects(previous) },
		func(ctx context.Context) error { return m.Remote.UpdateProject(ctx, p) },
	)
}
