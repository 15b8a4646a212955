package maps

import (
	"encoding/json"

	"gsr_locator/internal/domain"
)

// LookupRequest represents the query parameters of a one-shot place search.
// The minimum length is checked after normalisation.
type LookupRequest struct {
	Query string `form:"q" binding:"required,max=200"`
}

// PlaceLookupResponse lists the ranked suggestions for a query.
type PlaceLookupResponse struct {
	Query  string         `json:"query"`
	Places []domain.Place `json:"places"`
}

// OfficeLookupRequest is a place as returned by the place lookup.
type OfficeLookupRequest struct {
	ID       string          `json:"id" validate:"max=200"`
	Label    string          `json:"label" validate:"required,max=200"`
	Kind     string          `json:"kind" validate:"required,oneof=commune locality office"`
	Geometry json.RawMessage `json:"geometry" validate:"required"`
	BBox     []float64       `json:"bbox" validate:"omitempty,len=4"`
}

func (r OfficeLookupRequest) toPlace() domain.Place {
	return domain.Place{
		ID:       r.ID,
		Label:    r.Label,
		Kind:     domain.LayerKind(r.Kind),
		Geometry: r.Geometry,
		BBox:     r.BBox,
	}
}
