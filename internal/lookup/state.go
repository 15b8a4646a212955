package lookup

import "gsr_locator/internal/domain"

// Kind tags the UiState variant.
type Kind string

const (
	KindIdle           Kind = "idle"
	KindLoading        Kind = "loading"
	KindSuggestions    Kind = "suggestions"
	KindNoResults      Kind = "no_results"
	KindOfficeFound    Kind = "office_found"
	KindOfficeNotFound Kind = "office_not_found"
	KindError          Kind = "error"
)

// UiState is everything a renderer needs. Exactly one variant is live; the
// payload fields that do not belong to Kind are empty.
type UiState struct {
	Kind    Kind               `json:"kind"`
	Stage   domain.Stage       `json:"stage,omitempty"`
	Query   string             `json:"query"`
	Places  []domain.Place     `json:"places,omitempty"`
	Office  *domain.OfficeInfo `json:"office,omitempty"`
	Message string             `json:"message,omitempty"`
	Version uint64             `json:"version"`
}

func idleState() UiState {
	return UiState{Kind: KindIdle}
}

func loadingState(stage domain.Stage) UiState {
	return UiState{Kind: KindLoading, Stage: stage}
}

func suggestionsState(places []domain.Place) UiState {
	return UiState{Kind: KindSuggestions, Places: places}
}

func noResultsState() UiState {
	return UiState{Kind: KindNoResults, Message: domain.MessageNoResults}
}

func officeFoundState(info domain.OfficeInfo) UiState {
	return UiState{Kind: KindOfficeFound, Office: &info}
}

func officeNotFoundState(coordinates string) UiState {
	return UiState{Kind: KindOfficeNotFound, Message: domain.OfficeNotFoundMessage(coordinates)}
}

func errorState(message string) UiState {
	return UiState{Kind: KindError, Message: message}
}

// ShowsDropdown reports whether the suggestion dropdown is open.
func (s UiState) ShowsDropdown() bool {
	return s.Kind == KindSuggestions || s.Kind == KindNoResults
}

// Loading reports whether the state waits on the given stage.
func (s UiState) Loading(stage domain.Stage) bool {
	return s.Kind == KindLoading && s.Stage == stage
}

// ShowsResult reports whether an office card, a not-found notice or an error is shown.
func (s UiState) ShowsResult() bool {
	return s.Kind == KindOfficeFound || s.Kind == KindOfficeNotFound || s.Kind == KindError
}

// Label renders the variant for logs and metrics, e.g. "loading(office)".
func (s UiState) Label() string {
	if s.Kind == KindLoading {
		return string(s.Kind) + "(" + string(s.Stage) + ")"
	}
	return string(s.Kind)
}

// same compares everything but Version. Places and Office are compared by identity.
func (s UiState) same(other UiState) bool {
	if s.Kind != other.Kind || s.Stage != other.Stage || s.Query != other.Query || s.Message != other.Message {
		return false
	}
	if s.Office != other.Office || len(s.Places) != len(other.Places) {
		return false
	}
	return len(s.Places) == 0 || &s.Places[0] == &other.Places[0]
}
