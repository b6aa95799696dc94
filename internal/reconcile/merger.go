// Package reconcile folds inbound authoritative updates into the local store:
// single-entity change events from the push channel, and full snapshots from
// the polling backstop.
//
// Merging is intentionally "remote wins, whole-record overwrite": no
// field-level merge, no three-way diff. A snapshot fetched before an
// in-flight insert commit resolves will briefly drop the optimistic row; the
// next poll after the commit brings it back. That race is documented and
// bounded, not hidden.
package reconcile

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"boardsync/internal/model"
	"boardsync/internal/push"
	"boardsync/internal/remote"
	"boardsync/internal/store"
)

type Merger struct {
	Store *store.Store
	Log   *zap.Logger

	// sessionUserID filters user_settings events: only the session user's
	// preferences apply locally. Guarded: the subscription manager swaps it
	// on session change while a consume goroutine may be mid-Apply.
	mu            sync.RWMutex
	sessionUserID string
}

func NewMerger(st *store.Store, sessionUserID string, log *zap.Logger) *Merger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Merger{Store: st, sessionUserID: sessionUserID, Log: log}
}

// SetSessionUser swaps the id whose user_settings events apply locally.
func (m *Merger) SetSessionUser(id string) {
	m.mu.Lock()
	m.sessionUserID = id
	m.mu.Unlock()
}

func (m *Merger) sessionUser() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionUserID
}

// Apply merges one tagged change event. Unknown tables and undecodable
// payloads are dropped; the poll backstop corrects anything missed.
func (m *Merger) Apply(ev push.Event) {
	switch ev.Table {
	case push.TableProjects:
		m.applyProject(ev)
	case push.TableTasks:
		m.applyTask(ev)
	case push.TableProfiles:
		m.applyProfile(ev)
	case push.TableUserSettings:
		m.applyUserSettings(ev)
	case push.TableAppSettings:
		m.applyAppSettings(ev)
	default:
		m.Log.Debug("dropping event for unknown table", zap.String("table", string(ev.Table)))
	}
}

func (m *Merger) applyProject(ev push.Event) {
	if ev.Type == push.EventDelete {
		if id := ev.OldID(); id != "" {
			m.Store.RemoveProject(id)
		}
		return
	}
	var p model.Project
	if err := json.Unmarshal(ev.New, &p); err != nil || p.ID == "" {
		m.Log.Debug("undecodable project event", zap.Error(err))
		return
	}
	m.Store.UpsertProject(p)
}

func (m *Merger) applyTask(ev push.Event) {
	if ev.Type == push.EventDelete {
		if id := ev.OldID(); id != "" {
			m.Store.RemoveTask(id)
		}
		return
	}
	var t model.Task
	if err := json.Unmarshal(ev.New, &t); err != nil || t.ID == "" {
		m.Log.Debug("undecodable task event", zap.Error(err))
		return
	}
	m.Store.UpsertTask(t)
}

func (m *Merger) applyProfile(ev push.Event) {
	if ev.Type == push.EventDelete {
		if id := ev.OldID(); id != "" {
			m.Store.RemoveProfile(id)
		}
		return
	}
	var p model.Profile
	if err := json.Unmarshal(ev.New, &p); err != nil || p.ID == "" {
		m.Log.Debug("undecodable profile event", zap.Error(err))
		return
	}
	m.Store.UpsertProfile(p)
}

func (m *Merger) applyUserSettings(ev push.Event) {
	if ev.Type == push.EventDelete {
		if ev.OldID() == m.sessionUser() {
			m.Store.SetSettings(nil)
		}
		return
	}
	var s model.UserSettings
	if err := json.Unmarshal(ev.New, &s); err != nil {
		m.Log.Debug("undecodable settings event", zap.Error(err))
		return
	}
	if s.UserID != m.sessionUser() {
		return
	}
	m.Store.SetSettings(&s)
}

func (m *Merger) applyAppSettings(ev push.Event) {
	if ev.Type == push.EventDelete {
		return
	}
	var c model.AppSettings
	if err := json.Unmarshal(ev.New, &c); err != nil {
		m.Log.Debug("undecodable app settings event", zap.Error(err))
		return
	}
	m.Store.SetConfig(c)
}

// ApplySnapshot replaces the local collections with the fetched ones
// verbatim. This is stronger than incremental upsert/delete: it also discards
// local optimistic rows missing from the snapshot.
func (m *Merger) ApplySnapshot(snap remote.Snapshot) {
	m.Store.ReplaceProjects(snap.Projects)
	m.Store.ReplaceTasks(snap.Tasks)
	m.Store.ReplaceProfiles(snap.Profiles)
	if snap.Settings != nil {
		m.Store.SetSettings(snap.Settings)
	}
	if snap.Config != nil {
		m.Store.SetConfig(*snap.Config)
	}
}
