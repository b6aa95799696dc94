package mutate

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"boardsync/internal/admin"
	"boardsync/internal/model"
	"boardsync/internal/remote"
	"boardsync/internal/session"
	"boardsync/internal/store"
)

// Mutator owns the mutation recipes. Every recipe captures a snapshot of the
// collections it touches before apply, so rollback restores the exact
// pre-mutation state.
type Mutator struct {
	Store   *store.Store
	Remote  remote.Remote
	Admin   admin.API
	Session session.Session
	Exec    *Executor

	// Now and NewID are swappable for deterministic tests.
	Now   func() time.Time
	NewID func() string
}

func New(st *store.Store, rem remote.Remote, adminAPI admin.API, sess session.Session, log *zap.Logger) *Mutator {
	return &Mutator{
		Store:   st,
		Remote:  rem,
		Admin:   adminAPI,
		Session: sess,
		Exec:    NewExecutor(st, log),
		Now:     time.Now,
		NewID:   uuid.NewString,
	}
}

// CanEdit reports whether the session user may edit the given project. The
// global allow-all-edits flag opens the board to everyone; otherwise edits
// are limited to admins and the assigned user. Authoritative enforcement
// stays on the hub; this only drives the UI.
func (m *Mutator) CanEdit(p model.Project) bool {
	if m.Store.Config().AllowAllEdits {
		return true
	}
	if profile, ok := m.Store.FindProfile(m.Session.UserID); ok && profile.Role == model.RoleAdmin {
		return true
	}
	return p.AssignedUserID != nil && *p.AssignedUserID == m.Session.UserID
}
