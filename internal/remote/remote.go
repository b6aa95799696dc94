// Package remote defines the row-oriented boundary to the authoritative
// store. Implementations return either the written data or a structured
// error whose message is safe to surface in a toast.
package remote

import (
	"context"
	"fmt"

	"boardsync/internal/model"
)

// Error is a structured remote failure. Message is human-readable and is what
// the board shows when an optimistic write rolls back.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("remote error (status %d)", e.Status)
}

// Snapshot is a full-collection read used by the polling backstop. Settings
// and Config are nil when the remote has no row yet.
type Snapshot struct {
	Projects []model.Project     `json:"projects"`
	Tasks    []model.Task        `json:"tasks"`
	Profiles []model.Profile     `json:"profiles"`
	Settings *model.UserSettings `json:"user_settings"`
	Config   *model.AppSettings  `json:"app_settings"`
}

// ProjectPosition is one row of a batch sort-key upsert. The (column,
// sort_order) pair is written atomically per row.
type ProjectPosition struct {
	ID        string         `json:"id"`
	Column    model.ColumnID `json:"column"`
	SortOrder int            `json:"sort_order"`
}

// TaskPosition is one row of a task reorder batch.
type TaskPosition struct {
	ID        string `json:"id"`
	SortOrder int    `json:"sort_order"`
}

// Remote is the authoritative store. Every call may suspend; none are retried
// by the engine.
type Remote interface {
	FetchSnapshot(ctx context.Context) (Snapshot, error)

	InsertProject(ctx context.Context, p model.Project) error
	UpdateProject(ctx context.Context, p model.Project) error
	DeleteProject(ctx context.Context, id string) error
	UpsertProjectPositions(ctx context.Context, positions []ProjectPosition) error

	InsertTask(ctx context.Context, t model.Task) error
	InsertTasks(ctx context.Context, tasks []model.Task) error
	UpdateTask(ctx context.Context, t model.Task) error
	DeleteTask(ctx context.Context, id string) error
	UpsertTaskPositions(ctx context.Context, positions []TaskPosition) error
	MarkProjectTasksDone(ctx context.Context, projectID string) error

	UpsertUserSettings(ctx context.Context, settings model.UserSettings) error
	UpdateAppSettings(ctx context.Context, config model.AppSettings) error
}
