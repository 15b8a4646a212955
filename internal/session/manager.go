// Package session keeps the live lookup sessions of the HTTP API: one
// lookup.Controller per browser tab, reachable by a random ID.
package session

import (
	"context"
	"sync"
	"time"

	"gsr_locator/internal/lookup"
	"gsr_locator/internal/notification/sse"
	"gsr_locator/platform/apperr"
	"gsr_locator/platform/config"
	"gsr_locator/platform/logger"
	"gsr_locator/platform/metrics"

	"github.com/google/uuid"
)

// Config is the subset of settings a Manager needs.
type Config interface {
	config.SessionConfig
	config.SupportConfig
}

// StatePublisher receives every UiState of every session. It is called on the
// session goroutine and must not block.
type StatePublisher interface {
	Publish(sessionID uuid.UUID, state lookup.UiState)
}

// Deps holds the collaborators of a Manager. Hub, Publisher and Metrics are optional.
type Deps struct {
	Places    lookup.PlaceResolver
	Offices   lookup.OfficeResolver
	Hub       *sse.Service
	Publisher StatePublisher
	Logger    *logger.Logger
	Metrics   *metrics.Metrics
}

type entry struct {
	id          uuid.UUID
	ctrl        *lookup.Controller
	unsubscribe func()
	lastSeen    time.Time
	streams     int
}

// Manager owns every open session.
type Manager struct {
	cfg  Config
	deps Deps
	log  *logger.Logger
	now  func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*entry
}

// NewManager creates an empty session table.
func NewManager(cfg Config, deps Deps) *Manager {
	log := deps.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Manager{
		cfg:      cfg,
		deps:     deps,
		log:      log,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*entry),
	}
}

// Create opens a new session in the idle state.
func (m *Manager) Create() (uuid.UUID, *lookup.Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.cfg.GetSessionMax() {
		return uuid.Nil, nil, apperr.Unavailable("too many open lookup sessions")
	}

	id := uuid.New()
	ctrl := lookup.NewController(m.deps.Places, m.deps.Offices, lookup.Options{
		MinLength:    m.cfg.GetQueryMinLength(),
		Debounce:     m.cfg.GetQueryDebounce(),
		BlurGrace:    m.cfg.GetBlurGrace(),
		SupportPhone: m.cfg.GetSupportPhone(),
		Logger:       m.log.WithSessionID(id.String()),
		Metrics:      m.deps.Metrics,
	})

	unsubscribe, err := ctrl.Subscribe(m.fanOut(id))
	if err != nil {
		ctrl.Close()
		return uuid.Nil, nil, apperr.Wrap(apperr.KindInternal, "session failed to start", err)
	}

	m.sessions[id] = &entry{
		id:          id,
		ctrl:        ctrl,
		unsubscribe: unsubscribe,
		lastSeen:    m.now(),
	}
	m.deps.Metrics.SessionOpened()
	m.log.SessionEvent("created", id.String())

	return id, ctrl, nil
}

func (m *Manager) fanOut(id uuid.UUID) lookup.Observer {
	return func(state lookup.UiState) {
		if m.deps.Hub != nil {
			m.deps.Hub.Publish(id, sse.Event{Type: sse.EventState, SessionID: id, Data: state})
		}
		if m.deps.Publisher != nil {
			m.deps.Publisher.Publish(id, state)
		}
	}
}

// Get returns the controller of an open session and marks it as used.
func (m *Manager) Get(id uuid.UUID) (*lookup.Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, apperr.NotFound("lookup session not found")
	}
	e.lastSeen = m.now()
	return e.ctrl, nil
}

// Attach marks a session as streamed. Streamed sessions are never swept; the
// returned func ends the attachment.
func (m *Manager) Attach(id uuid.UUID) (*lookup.Controller, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, nil, apperr.NotFound("lookup session not found")
	}
	e.streams++
	e.lastSeen = m.now()

	var once sync.Once
	release := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			e.streams--
			e.lastSeen = m.now()
		})
	}
	return e.ctrl, release, nil
}

// Close tears a session down and ends its streams.
func (m *Manager) Close(id uuid.UUID) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return apperr.NotFound("lookup session not found")
	}
	m.teardown(e, "closed")
	return nil
}

// CloseAll tears down every session. Used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	open := make([]*entry, 0, len(m.sessions))
	for id, e := range m.sessions {
		open = append(open, e)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, e := range open {
		m.teardown(e, "shutdown")
	}
}

// Sweep closes sessions idle for longer than the configured TTL and returns how many.
func (m *Manager) Sweep(now time.Time) int {
	ttl := m.cfg.GetSessionIdleTTL()

	m.mu.Lock()
	var expired []*entry
	for id, e := range m.sessions {
		if e.streams == 0 && now.Sub(e.lastSeen) > ttl {
			expired = append(expired, e)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, e := range expired {
		m.teardown(e, "expired")
	}
	return len(expired)
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Run sweeps idle sessions until ctx is done, then closes the rest.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.GetSessionSweepInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.CloseAll()
			return nil
		case <-ticker.C:
			if n := m.Sweep(m.now()); n > 0 {
				m.log.Info("swept idle lookup sessions", "count", n)
			}
		}
	}
}

func (m *Manager) teardown(e *entry, reason string) {
	e.unsubscribe()
	e.ctrl.Close()
	if m.deps.Hub != nil {
		m.deps.Hub.CloseSession(e.id)
	}
	m.deps.Metrics.SessionClosed()
	m.log.SessionEvent(reason, e.id.String())
}
