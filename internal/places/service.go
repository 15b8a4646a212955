// Package places resolves free-text queries into ranked commune and locality suggestions.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gsr_locator/internal/domain"
	"gsr_locator/platform/logger"
	"gsr_locator/platform/metrics"
)

const (
	endpointName    = "search"
	maxResponseBody = 4 << 20
)

// Service calls the place-search endpoint and applies the filtering and ranking policy.
type Service struct {
	client         *http.Client
	baseURL        string
	partitionLimit int
	log            *logger.Logger
	metrics        *metrics.Metrics
}

// Config holds what the service needs from the application config.
type Config interface {
	GetPlaceSearchURL() string
	GetUpstreamTimeout() time.Duration
	GetSearchPartitionLimit() int
}

func NewService(cfg Config, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		client:         &http.Client{Timeout: cfg.GetUpstreamTimeout()},
		baseURL:        strings.TrimRight(cfg.GetPlaceSearchURL(), "/"),
		partitionLimit: cfg.GetSearchPartitionLimit(),
		log:            log,
		metrics:        m,
	}
}

// Resolve returns the ranked suggestions for query. An empty slice is not an error.
// Upstream failures come back as *domain.TransportError; a cancelled ctx comes back as ctx.Err().
func (s *Service) Resolve(ctx context.Context, query string) ([]domain.Place, error) {
	features, err := s.search(ctx, query)
	if err != nil {
		return nil, err
	}
	return rank(features), nil
}

func (s *Service) search(ctx context.Context, query string) ([]searchFeature, error) {
	params := url.Values{}
	params.Set("partitionlimit", strconv.Itoa(s.partitionLimit))
	params.Set("query", query)

	reqURL := fmt.Sprintf("%s/search?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, s.fail("build request", "transport", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, s.fail("request", "transport", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	latency := time.Since(start)
	s.metrics.ObserveUpstream(endpointName, latency)
	s.log.UpstreamCall(endpointName, resp.StatusCode, latency)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.metrics.IncrementUpstreamError(endpointName, "status")
		return nil, &domain.TransportError{Stage: domain.StagePlaces, Op: endpointName, StatusCode: resp.StatusCode}
	}

	var payload searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&payload); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, s.fail("decode", "decode", err)
	}

	return payload.Features, nil
}

func (s *Service) fail(op, reason string, err error) error {
	s.metrics.IncrementUpstreamError(endpointName, reason)
	s.log.UpstreamError(endpointName, err)
	return &domain.TransportError{Stage: domain.StagePlaces, Op: endpointName + " " + op, Err: err}
}

// rank keeps communes, localities and direct office matches. When at least one
// commune is present only communes are returned. Upstream order is preserved.
func rank(features []searchFeature) []domain.Place {
	kept := make([]domain.Place, 0, len(features))
	hasCommune := false
	seen := make(map[string]int, len(features))

	for _, feature := range features {
		place, ok := buildPlace(feature)
		if !ok {
			continue
		}
		place.ID = uniqueID(place.ID, seen)
		if place.Kind == domain.LayerCommune {
			hasCommune = true
		}
		kept = append(kept, place)
	}

	if !hasCommune {
		return kept
	}

	communes := kept[:0]
	for _, place := range kept {
		if place.Kind == domain.LayerCommune {
			communes = append(communes, place)
		}
	}
	return communes
}

func buildPlace(feature searchFeature) (domain.Place, bool) {
	kind, ok := domain.LayerKindFromName(feature.Properties.LayerName)
	if !ok {
		return domain.Place{}, false
	}

	label := strings.TrimSpace(feature.Properties.Label)
	if label == "" || len(feature.Geometry) == 0 || string(feature.Geometry) == "null" {
		return domain.Place{}, false
	}

	id := featureID(feature.ID)
	if id == "" {
		id = label
	}

	return domain.Place{
		ID:       id,
		Label:    label,
		Kind:     kind,
		Geometry: feature.Geometry,
		BBox:     feature.BBox,
	}, true
}

// featureID accepts string or numeric GeoJSON ids.
func featureID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return num.String()
	}
	return ""
}

func uniqueID(id string, seen map[string]int) string {
	seen[id]++
	if n := seen[id]; n > 1 {
		return id + "#" + strconv.Itoa(n)
	}
	return id
}
