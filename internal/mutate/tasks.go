package mutate

import (
	"context"
	"strings"

	"boardsync/internal/model"
	"boardsync/internal/order"
	"boardsync/internal/remote"
)

// AddTask appends a checklist entry to the project with the next sort key.
// New tasks inherit the project's assignee.
func (m *Mutator) AddTask(ctx context.Context, projectID, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	p, ok := m.Store.FindProject(projectID)
	if !ok || !m.CanEdit(p) {
		return
	}
	t := model.Task{
		ID:             m.NewID(),
		ProjectID:      projectID,
		Text:           text,
		ColorStatus:    model.ColorWhite,
		AssignedUserID: p.AssignedUserID,
		SortOrder:      len(m.Store.ProjectTasks(projectID)),
		CreatedAt:      m.Now(),
	}

	previous := m.Store.Tasks()
	m.Exec.Run(ctx,
		func() { m.Store.UpsertTask(t) },
		func() { m.Store.ReplaceTasks(previous) },
		func(ctx context.Context) error { return m.Remote.InsertTask(ctx, t) },
	)
}

// UpdateTask replaces the task record.
func (m *Mutator) UpdateTask(ctx context.Context, t model.Task) {
	p, ok := m.Store.FindProject(t.ProjectID)
	if !ok || !m.CanEdit(p) {
		return
	}
	previous := m.Store.Tasks()
	m.Exec.Run(ctx,
		func() { m.Store.UpsertTask(t) },
		func() { m.Store.ReplaceTasks(previous) },
		func(ctx context.Context) error { return m.Remote.UpdateTask(ctx, t) },
	)
}

// DeleteTask removes one checklist entry.
func (m *Mutator) DeleteTask(ctx context.Context, id string) {
	t, ok := m.Store.FindTask(id)
	if !ok {
		return
	}
	p, ok := m.Store.FindProject(t.ProjectID)
	if !ok || !m.CanEdit(p) {
		return
	}
	previous := m.Store.Tasks()
	m.Exec.Run(ctx,
		func() { m.Store.RemoveTask(id) },
		func() { m.Store.ReplaceTasks(previous) },
		func(ctx context.Context) error { return m.Remote.DeleteTask(ctx, id) },
	)
}

// ReorderTask moves one task to insertAt within its project and persists the
// whole renumbered list as a batch of (id, sort_order) rows.
func (m *Mutator) ReorderTask(ctx context.Context, projectID, taskID string, insertAt int) {
	p, ok := m.Store.FindProject(projectID)
	if !ok || !m.CanEdit(p) {
		return
	}
	next, err := order.PlanTaskReorder(m.Store.ProjectTasks(projectID), taskID, insertAt)
	if err != nil {
		return
	}
	positions := make([]remote.TaskPosition, 0, len(next))
	for _, t := range next {
		positions = append(positions, remote.TaskPosition{ID: t.ID, SortOrder: t.SortOrder})
	}

	previous := m.Store.Tasks()
	m.Exec.Run(ctx,
		func() { m.Store.ApplyTasks(next) },
		func() { m.Store.ReplaceTasks(previous) },
		func(ctx context.Context) error { return m.Remote.UpsertTaskPositions(ctx, positions) },
	)
}

// MarkAllTasksDone completes every task of the project in one write.
func (m *Mutator) MarkAllTasksDone(ctx context.Context, projectID string) {
	p, ok := m.Store.FindProject(projectID)
	if !ok || !m.CanEdit(p) {
		return
	}
	updated := make([]model.Task, 0)
	for _, t := range m.Store.Tasks() {
		if t.ProjectID == projectID && !t.Done {
			t.Done = true
			updated = append(updated, t)
		}
	}
	if len(updated) == 0 {
		return
	}

	previous := m.Store.Tasks()
	m.Exec.Run(ctx,
		func() { m.Store.ApplyTasks(updated) },
		func() { m.Store.ReplaceTasks(previous) },
		func(ctx context.Context) error { return m.Remote.MarkProjectTasksDone(ctx, projectID) },
	)
}
