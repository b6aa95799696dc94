// Package mutate funnels every user-initiated write through one optimistic
// executor: apply locally, commit remotely, roll back and toast on failure.
package mutate

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"boardsync/internal/store"
)

const fallbackErrorMessage = "Something went wrong"

// Executor runs optimistic mutations. Apply and rollback are synchronous
// local state transitions; commit is the asynchronous remote write. Multiple
// mutations may be in flight at once; there is no queuing or serialization
// across independent mutations, so overlapping edits to the same record can
// produce write skew (last write observed wins).
type Executor struct {
	store *store.Store
	log   *zap.Logger
	wg    sync.WaitGroup
}

func NewExecutor(st *store.Store, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{store: st, log: log}
}

// Run applies the mutation locally, then commits it remotely in the
// background. The local apply is always visible before the commit is issued.
// A failed commit restores the pre-apply snapshot via rollback and records a
// transient notice carrying the error's message. Successful commits need no
// further action: local state is trusted until reconciliation says otherwise.
func (e *Executor) Run(ctx context.Context, apply, rollback func(), commit func(context.Context) error) {
	e.store.BeginSave()
	apply()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		err := commit(ctx)
		e.store.EndSave()
		if err == nil {
			return
		}
		rollback()
		msg := err.Error()
		if msg == "" {
			msg = fallbackErrorMessage
		}
		e.log.Warn("commit failed, rolled back", zap.Error(err))
		e.store.PushNotice(msg, store.NoticeError)
	}()
}

// Wait blocks until every in-flight commit has settled. Used on shutdown and
// by tests; the UI never waits.
func (e *Executor) Wait() {
	e.wg.Wait()
}
