// Package sse provides Server-Sent Events support for live lookup session state.
package sse

import (
	"encoding/json"
	"sync"
	"time"

	"gsr_locator/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventType represents different types of SSE events
type EventType string

const (
	EventConnected EventType = "connected"
	EventState     EventType = "state"
	EventClosed    EventType = "closed"
)

const (
	clientBuffer      = 32
	heartbeatInterval = 25 * time.Second
)

// Event represents an SSE event payload
type Event struct {
	Type      EventType   `json:"type"`
	SessionID uuid.UUID   `json:"sessionId"`
	Data      interface{} `json:"data,omitempty"`
}

// client represents a connected SSE client
type client struct {
	sessionID uuid.UUID
	events    chan Event
	done      chan struct{}
}

// Service manages SSE connections and event broadcasting
type Service struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*client // sessionID -> clients
	log     *logger.Logger
}

// New creates a new SSE service
func New(log *logger.Logger) *Service {
	return &Service{
		clients: make(map[uuid.UUID][]*client),
		log:     log,
	}
}

// addClient registers a new client connection
func (s *Service) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[c.sessionID] = append(s.clients[c.sessionID], c)
}

// removeClient unregisters a client connection
func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients := s.clients[c.sessionID]
	for i, cl := range clients {
		if cl == c {
			s.clients[c.sessionID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(s.clients[c.sessionID]) == 0 {
		delete(s.clients, c.sessionID)
	}
}

// Publish sends an event to every stream of a session. A client whose buffer is
// full misses the event; every state carries a version so it can resync.
func (s *Service) Publish(sessionID uuid.UUID, event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.clients[sessionID] {
		select {
		case c.events <- event:
		default:
			s.log.Warn("sse event buffer full", "session_id", sessionID, "event", event.Type)
		}
	}
}

// Subscribers returns the number of open streams for a session.
func (s *Service) Subscribers(sessionID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients[sessionID])
}

// CloseSession ends every stream of a session with a closed event.
func (s *Service) CloseSession(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.clients[sessionID] {
		close(c.done)
	}
	delete(s.clients, sessionID)
}

// Stream serves one SSE connection for a session until the client leaves or
// the session closes, either through CloseSession or through sessionDone.
// snapshot is read after registration so no state is lost between the initial
// event and the live ones.
func (s *Service) Stream(c *gin.Context, sessionID uuid.UUID, snapshot func() interface{}, sessionDone <-chan struct{}) {
	// Set SSE headers
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	cl := &client{
		sessionID: sessionID,
		events:    make(chan Event, clientBuffer),
		done:      make(chan struct{}),
	}
	s.addClient(cl)
	defer s.removeClient(cl)

	c.SSEvent(string(EventConnected), gin.H{"sessionId": sessionID})
	s.write(c, Event{Type: EventState, SessionID: sessionID, Data: snapshot()})

	s.log.Debug("sse client connected", "session_id", sessionID)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			s.log.Debug("sse client disconnected", "session_id", sessionID)
			return
		case <-cl.done:
			s.write(c, Event{Type: EventClosed, SessionID: sessionID})
			return
		case <-sessionDone:
			s.write(c, Event{Type: EventClosed, SessionID: sessionID})
			return
		case <-heartbeat.C:
			_, _ = c.Writer.WriteString(": ping\n\n")
			c.Writer.Flush()
		case event := <-cl.events:
			s.write(c, event)
		}
	}
}

func (s *Service) write(c *gin.Context, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		s.log.Error("sse marshal failed", "error", err)
		return
	}
	c.SSEvent(string(event.Type), string(data))
	c.Writer.Flush()
}

// Close shuts down the SSE service
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, clients := range s.clients {
		for _, c := range clients {
			close(c.done)
		}
	}
	s.clients = make(map[uuid.UUID][]*client)
}
