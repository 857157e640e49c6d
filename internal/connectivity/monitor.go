// Package connectivity tracks whether the network is usable. The state only
// changes through explicit notifications; nothing here polls.
package connectivity

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrOffline is returned by operations that need the network while offline.
var ErrOffline = errors.New("search requires an internet connection")

// State is the two-valued connectivity state.
type State int

const (
	Offline State = iota
	Online
)

func (s State) String() string {
	if s == Online {
		return "online"
	}
	return "offline"
}

// Monitor holds the current connectivity state and fans out transitions to
// subscribers. The zero value is not usable; call New.
type Monitor struct {
	mu     sync.Mutex
	state  State
	nextID int
	subs   map[int]func(online bool)
	log    *zap.Logger
}

// New creates a Monitor seeded with the host's initial signal.
func New(online bool, log *zap.Logger) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Monitor{subs: make(map[int]func(bool)), log: log}
	if online {
		m.state = Online
	}
	return m
}

// Online reports whether the monitor is in the Online state.
func (m *Monitor) Online() bool {
	return m.State() == Online
}

// State returns the current state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetOnline handles an online/offline notification from the environment.
// Subscribers are only called when the state actually changes.
func (m *Monitor) SetOnline(online bool) {
	next := Offline
	if online {
		next = Online
	}

	m.mu.Lock()
	if m.state == next {
		m.mu.Unlock()
		return
	}
	prev := m.state
	m.state = next
	subs := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	m.log.Info("connectivity changed", zap.Stringer("from", prev), zap.Stringer("to", next))
	for _, fn := range subs {
		fn(online)
	}
}

// Subscribe registers fn for state transitions and returns a function that
// removes the subscription.
func (m *Monitor) Subscribe(fn func(online bool)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Require returns ErrOffline unless the monitor is online.
func (m *Monitor) Require() error {
	if !m.Online() {
		return ErrOffline
	}
	return nil
}

// Probe performs a single TCP dial to address and reports whether it
// succeeded within timeout. It is the initial host signal, not a poller.
func Probe(ctx context.Context, address string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
