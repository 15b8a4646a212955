package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitAddress(t *testing.T) {
	cases := []struct {
		in           string
		wantLine     string
		wantLocality string
	}{
		{"Rue A 1 - Ville B", "Rue A 1", "Ville B"},
		{"Rue A 1", "Rue A 1", ""},
		{"", "", ""},
		{"Rue A 1 - Ville B - Extra", "Rue A 1", "Ville B"},
		{"Rue-A 1", "Rue-A 1", ""},
	}

	for _, tc := range cases {
		line, locality := SplitAddress(tc.in)
		assert.Equal(t, tc.wantLine, line, tc.in)
		assert.Equal(t, tc.wantLocality, locality, tc.in)
	}
}

func TestHasValidInfo(t *testing.T) {
	assert.False(t, OfficeInfo{}.HasValidInfo())
	assert.False(t, OfficeInfo{Name: "  ", Phone: "\t"}.HasValidInfo())
	assert.True(t, OfficeInfo{MapURL: "https://maps.example/x"}.HasValidInfo())
	// PhoneURI is derived and does not count on its own.
	assert.False(t, OfficeInfo{PhoneURI: "tel:+41328868010"}.HasValidInfo())
}

func TestLayerKindFromName(t *testing.T) {
	kind, ok := LayerKindFromName("communes")
	require.True(t, ok)
	assert.Equal(t, LayerCommune, kind)
	assert.Equal(t, "communes", kind.LayerName())

	_, ok = LayerKindFromName("addresses")
	assert.False(t, ok)
}

func TestCoordinatesPoint(t *testing.T) {
	p := Place{Geometry: json.RawMessage(`{"type":"Point","coordinates":[6.13,49.61]}`)}
	assert.Equal(t, "6.13, 49.61", p.Coordinates())
}

func TestCoordinatesUsesBBoxCentre(t *testing.T) {
	p := Place{
		Geometry: json.RawMessage(`{"type":"Polygon","coordinates":[[[0,0],[4,0],[4,2],[0,0]]]}`),
		BBox:     []float64{6, 49, 7, 50},
	}
	assert.Equal(t, "6.5, 49.5", p.Coordinates())
}

func TestCoordinatesComputesBoundsWithoutBBox(t *testing.T) {
	p := Place{Geometry: json.RawMessage(`{"type":"MultiPolygon","coordinates":[[[[0,0],[4,0],[4,2],[0,0]]]]}`)}
	assert.Equal(t, "2, 1", p.Coordinates())
}

func TestCoordinatesUnknown(t *testing.T) {
	assert.Equal(t, "?", Place{}.Coordinates())
}

func TestOfficeNotFoundErrorIs(t *testing.T) {
	err := fmt.Errorf("resolve: %w", &OfficeNotFoundError{Coordinates: "1, 2"})
	assert.True(t, errors.Is(err, ErrOfficeNotFound))
	assert.False(t, IsTransport(err))
}

func TestTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("wrapped: %w", &TransportError{Stage: StagePlaces, Op: "search", Err: cause})
	assert.True(t, IsTransport(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, (&TransportError{Stage: StageOffice, Op: "intersection", StatusCode: 500}).Error(), "500")
}

func TestMessages(t *testing.T) {
	assert.Contains(t, OfficeNotFoundMessage("6.13, 49.61"), "6.13, 49.61")
	assert.Contains(t, TransportMessage("8002-8080"), "8002-8080")
}
