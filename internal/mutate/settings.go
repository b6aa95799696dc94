package mutate

import (
	"context"

	"boardsync/internal/model"
)

// SetDueSoonDays upserts the session user's due-soon threshold.
func (m *Mutator) SetDueSoonDays(ctx context.Context, days int) {
	if days < 1 {
		return
	}
	next := model.UserSettings{UserID: m.Session.UserID, DueSoonDays: days}

	previous := m.Store.Settings()
	m.Exec.Run(ctx,
		func() { m.Store.SetSettings(&next) },
		func() { m.Store.SetSettings(previous) },
		func(ctx context.Context) error { return m.Remote.UpsertUserSettings(ctx, next) },
	)
}

// SetAllowAllEdits flips the global edit-policy flag.
func (m *Mutator) SetAllowAllEdits(ctx context.Context, value bool) {
	next := m.Store.Config()
	next.AllowAllEdits = value

	previous := m.Store.Config()
	m.Exec.Run(ctx,
		func() { m.Store.SetConfig(next) },
		func() { m.Store.SetConfig(previous) },
		func(ctx context.Context) error { return m.Remote.UpdateAppSettings(ctx, next) },
	)
}
