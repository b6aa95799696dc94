// Package subscribe owns the push-channel lifecycle and the polling
// backstop: two independent producers feeding the one reconciliation merger.
package subscribe

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"boardsync/internal/push"
	"boardsync/internal/reconcile"
	"boardsync/internal/remote"
	"boardsync/internal/session"
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// DefaultPollInterval matches the original board's 3-second refresh.
const DefaultPollInterval = 3 * time.Second

// Manager drives the channel state machine and the fixed-interval snapshot
// poll. The channel reconnects only on session-token change; a bare drop
// leaves the poll as the sole source of truth-sync until then.
type Manager struct {
	remote remote.Remote
	merger *reconcile.Merger
	dial   push.Dialer
	url    string
	log    *zap.Logger

	pollInterval time.Duration

	mu      sync.Mutex
	state   State
	channel push.Channel
	gen     int

	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

func NewManager(rem remote.Remote, merger *reconcile.Merger, dial push.Dialer, url string, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		remote:       rem,
		merger:       merger,
		dial:         dial,
		url:          url,
		log:          log,
		pollInterval: DefaultPollInterval,
		state:        StateDisconnected,
	}
}

// SetPollInterval must be called before Start.
func (m *Manager) SetPollInterval(d time.Duration) {
	if d > 0 {
		m.pollInterval = d
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetSession reacts to session availability or token change: any existing
// channel is torn down and a fresh one is opened with the new token. An empty
// token (session lost) leaves the manager disconnected.
func (m *Manager) SetSession(sess session.Session) {
	m.teardownChannel()
	m.merger.SetSessionUser(sess.UserID)
	if sess.Token == "" {
		return
	}

	m.setState(StateConnecting)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	ch, err := m.dial(ctx, m.url, sess.Token)
	if err != nil {
		// Not surfaced to the user: the poll keeps the board eventually
		// consistent until the next token change retries the channel.
		m.log.Warn("push channel open failed", zap.Error(err))
		m.setState(StateDisconnected)
		return
	}

	m.mu.Lock()
	m.channel = ch
	m.gen++
	gen := m.gen
	m.state = StateConnected
	m.mu.Unlock()

	go m.consume(ch, gen)
}

func (m *Manager) consume(ch push.Channel, gen int) {
	for ev := range ch.Events() {
		m.mu.Lock()
		stale := gen != m.gen
		m.mu.Unlock()
		if stale {
			return
		}
		m.merger.Apply(ev)
	}

	m.mu.Lock()
	if gen == m.gen {
		m.channel = nil
		m.state = StateDisconnected
		m.log.Info("push channel closed; polling backstop remains active")
	}
	m.mu.Unlock()
}

// Start launches the polling backstop: an immediate snapshot refresh, then
// one every poll interval, regardless of channel state. It returns
// immediately; cancel ctx or call Close to stop.
func (m *Manager) Start(ctx context.Context) {
	pollCtx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.pollCancel = cancel
	m.pollDone = make(chan struct{})
	done := m.pollDone
	m.mu.Unlock()

	go func() {
		defer close(done)
		m.pollOnce(pollCtx)
		ticker := time.NewTicker(m.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				m.pollOnce(pollCtx)
			}
		}
	}()
}

func (m *Manager) pollOnce(ctx context.Context) {
	snap, err := m.remote.FetchSnapshot(ctx)
	if err != nil {
		if ctx.Err() == nil {
			m.log.Warn("snapshot poll failed", zap.Error(err))
		}
		return
	}
	m.merger.ApplySnapshot(snap)
}

// Close tears everything down: the poll timer is canceled and the channel
// handle released.
func (m *Manager) Close() {
	m.mu.Lock()
	cancel := m.pollCancel
	done := m.pollDone
	m.pollCancel = nil
	m.pollDone = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	m.teardownChannel()
}

func (m *Manager) teardownChannel() {
	m.mu.Lock()
	ch := m.channel
	m.channel = nil
	m.gen++
	m.state = StateDisconnected
	m.mu.Unlock()

	if ch != nil {
		_ = ch.Close()
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}
