// Package offices resolves a picked place to the regional social-service office covering it.
package offices

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gsr_locator/internal/domain"
	"gsr_locator/platform/logger"
	"gsr_locator/platform/metrics"
	"gsr_locator/platform/phone"
	"gsr_locator/platform/sanitize"
)

const (
	endpointName    = "intersection"
	maxResponseBody = 4 << 20
)

// Config holds what the service needs from the application config.
type Config interface {
	GetIntersectionURL() string
	GetUpstreamTimeout() time.Duration
	GetPhoneRegion() string
}

// Service calls the intersection endpoint and extracts the office contact card.
type Service struct {
	client      *http.Client
	baseURL     string
	phoneRegion string
	log         *logger.Logger
	metrics     *metrics.Metrics
}

func NewService(cfg Config, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		client:      &http.Client{Timeout: cfg.GetUpstreamTimeout()},
		baseURL:     strings.TrimRight(cfg.GetIntersectionURL(), "/"),
		phoneRegion: cfg.GetPhoneRegion(),
		log:         log,
		metrics:     m,
	}
}

// Resolve returns the office for place. The first returned feature wins.
// No feature, or a feature with only blank fields, is a *domain.OfficeNotFoundError.
func (s *Service) Resolve(ctx context.Context, place domain.Place) (domain.OfficeInfo, error) {
	features, err := s.intersect(ctx, place)
	if err != nil {
		return domain.OfficeInfo{}, err
	}

	if len(features) == 0 {
		return domain.OfficeInfo{}, &domain.OfficeNotFoundError{Coordinates: place.Coordinates()}
	}

	info := s.extract(features[0].Properties)
	if !info.HasValidInfo() {
		return domain.OfficeInfo{}, &domain.OfficeNotFoundError{Coordinates: place.Coordinates()}
	}
	return info, nil
}

func (s *Service) intersect(ctx context.Context, place domain.Place) ([]intersectionFeature, error) {
	body, err := json.Marshal(intersectionRequest{
		Type: "FeatureCollection",
		Features: []requestFeature{{
			Type:     "Feature",
			Geometry: place.Geometry,
			Properties: requestProperties{
				Label:     place.Label,
				LayerName: place.Kind.LayerName(),
			},
		}},
	})
	if err != nil {
		return nil, s.fail("encode", "transport", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/intersection", bytes.NewReader(body))
	if err != nil {
		return nil, s.fail("build request", "transport", err)
	}
	req.Header.Set("Content-Type", "application/json")
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
		return nil, &domain.TransportError{Stage: domain.StageOffice, Op: endpointName, StatusCode: resp.StatusCode}
	}

	var payload intersectionResponse
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
	return &domain.TransportError{Stage: domain.StageOffice, Op: fmt.Sprintf("%s %s", endpointName, op), Err: err}
}

func (s *Service) extract(props officeProperties) domain.OfficeInfo {
	addressLine, locality := domain.SplitAddress(sanitize.Text(string(props.Address)))
	phoneNumber := sanitize.Text(string(props.Phone))

	return domain.OfficeInfo{
		Name:           sanitize.Text(string(props.Name)),
		Phone:          phoneNumber,
		PhoneURI:       phone.TelURI(phoneNumber, s.phoneRegion),
		Email:          sanitize.Text(string(props.Email)),
		ContactFormURL: sanitize.Text(string(props.ContactFormURL)),
		InfoURL:        sanitize.Text(string(props.InfoURL)),
		AddressLine:    addressLine,
		Locality:       locality,
		MapURL:         sanitize.Text(string(props.MapURL)),
	}
}
