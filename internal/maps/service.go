package maps

import (
	"context"
	"errors"

	"gsr_locator/internal/domain"
	"gsr_locator/internal/lookup"
	"gsr_locator/platform/apperr"
)

// Service runs single place and office lookups outside of a session.
type Service struct {
	places  lookup.PlaceResolver
	offices lookup.OfficeResolver
}

func NewService(places lookup.PlaceResolver, offices lookup.OfficeResolver) *Service {
	return &Service{places: places, offices: offices}
}

// SearchPlaces returns the ranked suggestions for query. An empty list is not an error.
func (s *Service) SearchPlaces(ctx context.Context, query string) ([]domain.Place, error) {
	places, err := s.places.Resolve(ctx, query)
	if err != nil {
		return nil, mapLookupError(err)
	}
	if places == nil {
		places = []domain.Place{}
	}
	return places, nil
}

// FindOffice returns the office covering place.
func (s *Service) FindOffice(ctx context.Context, place domain.Place) (domain.OfficeInfo, error) {
	info, err := s.offices.Resolve(ctx, place)
	if err != nil {
		return domain.OfficeInfo{}, mapLookupError(err)
	}
	return info, nil
}

func mapLookupError(err error) error {
	var notFound *domain.OfficeNotFoundError
	switch {
	case errors.As(err, &notFound):
		return apperr.Wrap(apperr.KindNotFound, domain.OfficeNotFoundMessage(notFound.Coordinates), err)
	case domain.IsTransport(err):
		return apperr.Wrap(apperr.KindBadGateway, "geo service unavailable", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperr.Wrap(apperr.KindUnavailable, "lookup cancelled", err)
	default:
		return apperr.Wrap(apperr.KindInternal, "lookup failed", err)
	}
}
