package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/lecturealert/internal/pkg/metrics"
)

// Listener receives the events of every managed provider
type Listener func(sessionID string, ev Event)

// Manager owns one Provider per signed-in browser session id
type Manager struct {
	backend AuthBackend
	store   Store
	log     zerolog.Logger
	now     func() time.Time

	mu        sync.Mutex
	providers map[string]*managed
	listeners []Listener
}

type managed struct {
	provider *Provider
	lastSeen time.Time
	stop     func()
}

// NewManager creates an empty Manager
func NewManager(backend AuthBackend, store Store, log zerolog.Logger) *Manager {
	return &Manager{
		backend:   backend,
		store:     store,
		log:       log,
		now:       time.Now,
		providers: make(map[string]*managed),
	}
}

// OnEvent registers a listener for providers registered afterwards
func (m *Manager) OnEvent(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

// Get returns the session's registered provider. Otherwise it restores the
// stored session into a new provider, which is registered only when the
// restore yields an identity. Anonymous providers live for one request.
func (m *Manager) Get(ctx context.Context, sessionID string) *Provider {
	if p, ok := m.touch(sessionID); ok {
		return p
	}

	p := NewProvider(sessionID, m.backend, m.store, m.log)
	p.Init(ctx)
	if p.Current().Status != StatusAuthenticated {
		return p
	}
	return m.Adopt(p)
}

// Anonymous returns an unregistered signed-out provider for a session id
// that was just issued and has nothing stored.
func (m *Manager) Anonymous(sessionID string) *Provider {
	p := NewProvider(sessionID, m.backend, m.store, m.log)
	p.startAnonymous()
	return p
}

// Adopt registers a provider created outside the registry and replays its
// latest identity change to the listeners. When the session id is already
// registered the existing provider wins and p is closed.
func (m *Manager) Adopt(p *Provider) *Provider {
	sessionID := p.ID()

	m.mu.Lock()
	if entry, ok := m.providers[sessionID]; ok {
		entry.lastSeen = m.now()
		m.mu.Unlock()
		if entry.provider != p {
			p.Close()
		}
		return entry.provider
	}

	replay := p.lastEvent()
	events, stop := p.Subscribe()
	m.providers[sessionID] = &managed{provider: p, lastSeen: m.now(), stop: stop}
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	metrics.ActiveSessions.Inc()
	go func() {
		for _, l := range listeners {
			l(sessionID, replay)
		}
		forward(sessionID, events, listeners)
	}()
	return p
}

func (m *Manager) touch(sessionID string) (*Provider, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.providers[sessionID]
	if !ok {
		return nil, false
	}
	entry.lastSeen = m.now()
	return entry.provider, true
}

// Lookup returns an existing provider without creating one
func (m *Manager) Lookup(sessionID string) (*Provider, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.providers[sessionID]
	if !ok {
		return nil, false
	}
	return entry.provider, true
}

// Remove closes and forgets the session's provider
func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	entry, ok := m.providers[sessionID]
	delete(m.providers, sessionID)
	m.mu.Unlock()

	if ok {
		entry.stop()
		entry.provider.Close()
		metrics.ActiveSessions.Dec()
	}
}

// Sweep removes providers not used for longer than idle and returns their ids
func (m *Manager) Sweep(idle time.Duration) []string {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	var expired []string
	for id, entry := range m.providers {
		if entry.lastSeen.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		m.Remove(id)
	}
	return expired
}

// Len returns the number of live providers
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.providers)
}

// Close tears down every provider
func (m *Manager) Close() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.providers))
	for id := range m.providers {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.Remove(id)
	}
}

func forward(sessionID string, events <-chan Event, listeners []Listener) {
	for ev := range events {
		for _, l := range listeners {
			l(sessionID, ev)
		}
	}
}
