package session

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"gsr_locator/internal/domain"
	"gsr_locator/internal/lookup"
	"gsr_locator/internal/notification/sse"
	"gsr_locator/platform/config"
	"gsr_locator/platform/logger"

	"github.com/google/uuid"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

var neuchatel = domain.Place{
	ID:       "commune-neuchatel",
	Label:    "Neuchâtel",
	Kind:     domain.LayerCommune,
	Geometry: json.RawMessage(`{"type":"Point","coordinates":[6.93,46.99]}`),
}

type stubPlaces struct{}

func (stubPlaces) Resolve(ctx context.Context, query string) ([]domain.Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []domain.Place{neuchatel}, nil
}

type stubOffices struct{}

func (stubOffices) Resolve(ctx context.Context, place domain.Place) (domain.OfficeInfo, error) {
	if err := ctx.Err(); err != nil {
		return domain.OfficeInfo{}, err
	}
	return domain.OfficeInfo{Name: "GSR Littoral", Phone: "032 886 80 10"}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	states map[uuid.UUID][]lookup.UiState
}

func (p *recordingPublisher) Publish(id uuid.UUID, state lookup.UiState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.states == nil {
		p.states = make(map[uuid.UUID][]lookup.UiState)
	}
	p.states[id] = append(p.states[id], state)
}

func (p *recordingPublisher) kinds(id uuid.UUID) []lookup.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	kinds := make([]lookup.Kind, 0, len(p.states[id]))
	for _, s := range p.states[id] {
		kinds = append(kinds, s.Kind)
	}
	return kinds
}

func testConfig(limit int) *config.Config {
	return &config.Config{
		QueryMinLength:       3,
		QueryDebounce:        300 * time.Millisecond,
		BlurGrace:            200 * time.Millisecond,
		SessionIdleTTL:       time.Minute,
		SessionSweepInterval: time.Minute,
		SessionMax:           limit,
		SupportPhone:         "8002-8080",
	}
}

func newTestManager(t *testing.T, limit int, pub StatePublisher) (*Manager, *sse.Service) {
	t.Helper()
	hub := sse.New(logger.Discard())
	mgr := NewManager(testConfig(limit), Deps{
		Places:    stubPlaces{},
		Offices:   stubOffices{},
		Hub:       hub,
		Publisher: pub,
		Logger:    logger.Discard(),
	})
	t.Cleanup(mgr.CloseAll)
	return mgr, hub
}
