// Package store holds the locally cached board state shared by the mutation
// executor, the reconciliation merger, and the view layer.
//
// The store is an owned object, not ambient state: tests construct as many
// independent instances as they need. Records are treated as immutable values;
// every write replaces whole records, so readers always get copies. A single
// mutex serializes writers, which is the moral equivalent of the one-consumer
// update queue feeding the merger.
package store

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"boardsync/internal/model"
)

type NoticeKind string

const (
	NoticeError   NoticeKind = "error"
	NoticeSuccess NoticeKind = "success"
)

// Notice is a transient user-visible notification (a toast).
type Notice struct {
	ID      string
	Message string
	Kind    NoticeKind
	At      time.Time
}

type Store struct {
	mu       sync.Mutex
	projects []model.Project
	tasks    []model.Task
	profiles []model.Profile
	settings *model.UserSettings
	config   model.AppSettings
	notices  []Notice

	// inFlight drives the "saving" indicator only; it must never go negative.
	inFlight atomic.Int64

	version uint64
	watch   chan struct{}
}

func New() *Store {
	return &Store{
		config: model.AppSettings{ID: 1},
		watch:  make(chan struct{}, 1),
	}
}

// Watch returns a channel that coalesces change signals. Receivers drain one
// token per redraw; missed signals collapse into the pending one.
func (s *Store) Watch() <-chan struct{} {
	return s.watch
}

// Version increments on every visible change. Views use it as a memo key.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) bump() {
	s.version++
	select {
	case s.watch <- struct{}{}:
	default:
	}
}

// BeginSave marks an in-flight remote commit. Paired with EndSave.
func (s *Store) BeginSave() {
	s.inFlight.Add(1)
	s.signal()
}

func (s *Store) EndSave() {
	for {
		n := s.inFlight.Load()
		if n <= 0 {
			return
		}
		if s.inFlight.CompareAndSwap(n, n-1) {
			s.signal()
			return
		}
	}
}

func (s *Store) Saving() bool {
	return s.inFlight.Load() > 0
}

func (s *Store) signal() {
	select {
	case s.watch <- struct{}{}:
	default:
	}
}

// PushNotice records a transient notification and returns its id.
func (s *Store) PushNotice(message string, kind NoticeKind) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := Notice{ID: uuid.NewString(), Message: message, Kind: kind, At: time.Now()}
	s.notices = append(s.notices, n)
	s.bump()
	return n.ID
}

func (s *Store) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notice{}, s.notices...)
}

func (s *Store) DismissNotice(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notices {
		if s.notices[i].ID == id {
			s.notices = append(s.notices[:i], s.notices[i+1:]...)
			s.bump()
			return
		}
	}
}
