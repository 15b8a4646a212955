package offices

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexString handles JSON values that can be a string, a number or null.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	// Try as string first
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*f = FlexString(str)
		return nil
	}
	// Try as number
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FlexString(num.String())
		return nil
	}
	var flag bool
	if err := json.Unmarshal(data, &flag); err == nil {
		*f = FlexString(strconv.FormatBool(flag))
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into FlexString", string(data))
}

// officeProperties holds the GSR layer attributes returned by the intersection endpoint.
type officeProperties struct {
	Name           FlexString `json:"nom_gsr"`
	Phone          FlexString `json:"numero_telephone"`
	Email          FlexString `json:"email"`
	ContactFormURL FlexString `json:"form_prise_contact"`
	InfoURL        FlexString `json:"informations"`
	Address        FlexString `json:"adresse"`
	MapURL         FlexString `json:"google_maps"`
}

type intersectionResponse struct {
	Type     string                `json:"type"`
	Features []intersectionFeature `json:"features"`
}

type intersectionFeature struct {
	Properties officeProperties `json:"properties"`
}

// intersectionRequest is the single-feature collection posted for a picked place.
type intersectionRequest struct {
	Type     string           `json:"type"`
	Features []requestFeature `json:"features"`
}

type requestFeature struct {
	Type       string            `json:"type"`
	Geometry   json.RawMessage   `json:"geometry"`
	Properties requestProperties `json:"properties"`
}

type requestProperties struct {
	Label     string `json:"label"`
	LayerName string `json:"layer_name"`
}
