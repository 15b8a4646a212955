package offices

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gsr_locator/internal/domain"
	"gsr_locator/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	baseURL string
}

func (c testConfig) GetIntersectionURL() string        { return c.baseURL }
func (c testConfig) GetUpstreamTimeout() time.Duration { return 2 * time.Second }
func (c testConfig) GetPhoneRegion() string            { return "CH" }

var testPlace = domain.Place{
	ID:       "com-1",
	Label:    "Neunhausen",
	Kind:     domain.LayerCommune,
	Geometry: json.RawMessage(`{"type":"Point","coordinates":[6.1,49.6]}`),
}

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(testConfig{baseURL: srv.URL}, logger.Discard(), nil)
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func TestResolvePostsSingleFeatureCollection(t *testing.T) {
	var gotMethod, gotPath, gotContentType string
	var gotBody map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		respond(`{"type":"FeatureCollection","features":[{"properties":{"nom_gsr":"Office social Nord"}}]}`)(w, r)
	})

	_, err := svc.Resolve(context.Background(), testPlace)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/intersection", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "FeatureCollection", gotBody["type"])

	features, ok := gotBody["features"].([]any)
	require.True(t, ok)
	require.Len(t, features, 1)
	first := features[0].(map[string]any)
	assert.Equal(t, "Feature", first["type"])
	geometry := first["geometry"].(map[string]any)
	assert.Equal(t, "Point", geometry["type"])
	props := first["properties"].(map[string]any)
	assert.Equal(t, "communes", props["layer_name"])
}

func TestResolveZeroFeaturesIsNotFoundWithCoordinates(t *testing.T) {
	svc := newTestService(t, respond(`{"type":"FeatureCollection","features":[]}`))

	_, err := svc.Resolve(context.Background(), testPlace)

	require.ErrorIs(t, err, domain.ErrOfficeNotFound)
	var nf *domain.OfficeNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "6.1, 49.6", nf.Coordinates)
}

func TestResolveNetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	svc := NewService(testConfig{baseURL: srv.URL}, logger.Discard(), nil)

	_, err := svc.Resolve(context.Background(), testPlace)

	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, domain.StageOffice, te.Stage)
}

func TestResolveStatusFailureIsTransportError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := svc.Resolve(context.Background(), testPlace)
	assert.True(t, domain.IsTransport(err))
	assert.False(t, errors.Is(err, domain.ErrOfficeNotFound))
}

func TestResolveExtractsContactCard(t *testing.T) {
	svc := newTestService(t, respond(`{
	  "type": "FeatureCollection",
	  "features": [
	    {"properties": {
	      "nom_gsr": "Office social <b>Nord</b>",
	      "numero_telephone": "",
	      "email": "nord@gsr.example.ch",
	      "form_prise_contact": "https://gsr.example.ch/contact",
	      "informations": "https://gsr.example.ch/info",
	      "adresse": "Rue A 1 - Ville B",
	      "google_maps": "https://maps.example/?q=gsr&amp;z=12"
	    }},
	    {"properties": {"nom_gsr": "Second office is ignored"}}
	  ]
	}`))

	info, err := svc.Resolve(context.Background(), testPlace)
	require.NoError(t, err)

	assert.Equal(t, domain.OfficeInfo{
		Name:           "Office social Nord",
		Email:          "nord@gsr.example.ch",
		ContactFormURL: "https://gsr.example.ch/contact",
		InfoURL:        "https://gsr.example.ch/info",
		AddressLine:    "Rue A 1",
		Locality:       "Ville B",
		MapURL:         "https://maps.example/?q=gsr&z=12",
	}, info)
	assert.True(t, info.HasValidInfo())
}

func TestResolveMissingFieldsDefaultToEmpty(t *testing.T) {
	svc := newTestService(t, respond(`{"features":[{"properties":{"adresse":"Route 2","numero_telephone":328868010,"email":null}}]}`))

	info, err := svc.Resolve(context.Background(), testPlace)
	require.NoError(t, err)

	assert.Equal(t, "Route 2", info.AddressLine)
	assert.Empty(t, info.Locality)
	assert.Empty(t, info.Name)
	assert.Empty(t, info.Email)
	assert.Equal(t, "328868010", info.Phone)
	assert.Equal(t, "tel:+41328868010", info.PhoneURI)
}

func TestResolveFormattedSwissPhoneGetsTelLink(t *testing.T) {
	svc := newTestService(t, respond(`{"features":[{"properties":{"nom_gsr":"GSR Littoral","numero_telephone":"032 886 80 10"}}]}`))

	info, err := svc.Resolve(context.Background(), testPlace)
	require.NoError(t, err)

	assert.Equal(t, "032 886 80 10", info.Phone)
	assert.Equal(t, "tel:+41328868010", info.PhoneURI)
}

func TestResolveBlankFeatureIsNotFound(t *testing.T) {
	svc := newTestService(t, respond(`{"features":[{"properties":{"nom_gsr":"  ","adresse":"<br>","email":null}}]}`))

	_, err := svc.Resolve(context.Background(), testPlace)
	assert.ErrorIs(t, err, domain.ErrOfficeNotFound)
}

func TestResolveMalformedBodyIsTransportError(t *testing.T) {
	svc := newTestService(t, respond(`{"features": [`))

	_, err := svc.Resolve(context.Background(), testPlace)
	assert.True(t, domain.IsTransport(err))
}

func TestFlexString(t *testing.T) {
	var props officeProperties
	err := json.Unmarshal([]byte(`{"nom_gsr":"A","numero_telephone":12345,"email":null,"informations":true}`), &props)
	require.NoError(t, err)

	assert.Equal(t, FlexString("A"), props.Name)
	assert.Equal(t, FlexString("12345"), props.Phone)
	assert.Equal(t, FlexString(""), props.Email)
	assert.Equal(t, FlexString("true"), props.InfoURL)

	var bad FlexString
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &bad))
}
