package places

import "encoding/json"

// searchResponse mirrors the FeatureCollection returned by the place-search endpoint.
type searchResponse struct {
	Type     string          `json:"type"`
	Features []searchFeature `json:"features"`
}

type searchFeature struct {
	ID         json.RawMessage  `json:"id,omitempty"`
	Geometry   json.RawMessage  `json:"geometry"`
	BBox       []float64        `json:"bbox,omitempty"`
	Properties searchProperties `json:"properties"`
}

type searchProperties struct {
	LayerName string `json:"layer_name"`
	Label     string `json:"label"`
}
