package domain

import (
	"errors"
	"fmt"
)

// Stage names one of the two lookup stages.
type Stage string

const (
	StagePlaces Stage = "places"
	StageOffice Stage = "office"
)

// ErrOfficeNotFound matches every *OfficeNotFoundError via errors.Is.
var ErrOfficeNotFound = errors.New("office not found")

// TransportError is a network, status or decode failure talking to an upstream endpoint.
type TransportError struct {
	Stage      Stage
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Stage, e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// OfficeNotFoundError means the intersection had no feature or only blank ones.
type OfficeNotFoundError struct {
	Coordinates string
}

func (e *OfficeNotFoundError) Error() string {
	return "no office found for coordinates " + e.Coordinates
}

func (e *OfficeNotFoundError) Is(target error) bool {
	return target == ErrOfficeNotFound
}

// IsTransport reports whether err carries a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
