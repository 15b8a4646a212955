// Package domain holds the value types shared by the resolvers and the lookup session.
package domain

import (
	"encoding/json"
	"strconv"
)

// LayerKind is the category of a place-search result we keep.
type LayerKind string

const (
	LayerCommune  LayerKind = "commune"
	LayerLocality LayerKind = "locality"
	LayerOffice   LayerKind = "office"
)

// Upstream layer names.
const (
	LayerNameCommune  = "communes"
	LayerNameLocality = "localite"
	LayerNameOffice   = "gsr002_guichet_social_regional"
)

// LayerKindFromName maps an upstream layer_name to a kept kind.
// The second result is false for every layer outside the filter.
func LayerKindFromName(layerName string) (LayerKind, bool) {
	switch layerName {
	case LayerNameCommune:
		return LayerCommune, true
	case LayerNameLocality:
		return LayerLocality, true
	case LayerNameOffice:
		return LayerOffice, true
	default:
		return "", false
	}
}

// LayerName returns the upstream layer_name for the kind.
func (k LayerKind) LayerName() string {
	switch k {
	case LayerCommune:
		return LayerNameCommune
	case LayerLocality:
		return LayerNameLocality
	case LayerOffice:
		return LayerNameOffice
	default:
		return ""
	}
}

// Place is one suggestion produced from a single search response.
// Geometry is the raw GeoJSON geometry object and is forwarded untouched to the intersection call.
type Place struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	Kind     LayerKind       `json:"kind"`
	Geometry json.RawMessage `json:"geometry"`
	BBox     []float64       `json:"bbox,omitempty"`
}

// Coordinates renders the place position for diagnostics.
// Points give "x, y"; other shapes give the centre of their bounding box.
func (p Place) Coordinates() string {
	var g struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(p.Geometry, &g); err == nil && g.Type == "Point" {
		var xy []float64
		if err := json.Unmarshal(g.Coordinates, &xy); err == nil && len(xy) >= 2 {
			return formatPair(xy[0], xy[1])
		}
	}

	box := p.BBox
	if len(box) < 4 {
		box = geometryBounds(g.Coordinates)
	}
	if len(box) < 4 {
		return "?"
	}
	return formatPair((box[0]+box[2])/2, (box[1]+box[3])/2)
}

func formatPair(x, y float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64) + ", " + strconv.FormatFloat(y, 'f', -1, 64)
}

// geometryBounds walks nested coordinate arrays and returns [minX, minY, maxX, maxY].
func geometryBounds(raw json.RawMessage) []float64 {
	var box []float64
	var walk func(json.RawMessage)
	walk = func(node json.RawMessage) {
		var pair []float64
		if err := json.Unmarshal(node, &pair); err == nil {
			if len(pair) < 2 {
				return
			}
			if box == nil {
				box = []float64{pair[0], pair[1], pair[0], pair[1]}
				return
			}
			box[0] = min(box[0], pair[0])
			box[1] = min(box[1], pair[1])
			box[2] = max(box[2], pair[0])
			box[3] = max(box[3], pair[1])
			return
		}
		var children []json.RawMessage
		if err := json.Unmarshal(node, &children); err != nil {
			return
		}
		for _, child := range children {
			walk(child)
		}
	}
	if len(raw) > 0 {
		walk(raw)
	}
	return box
}
