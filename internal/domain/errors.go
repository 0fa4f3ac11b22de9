package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrNoOffersFound = errors.New("no flight offers found")
	ErrInvalidInput  = errors.New("invalid input")
)

// Provider call stages. A workflow that chains provider calls tags each
// failure with the stage it happened at so callers can tell a failed
// search apart from a failed pricing or seat-map call without parsing
// message text.
type ProviderStage string

const (
	StageSearch     ProviderStage = "search"
	StagePrice      ProviderStage = "price"
	StageSeatMap    ProviderStage = "seatmap"
	StagePrediction ProviderStage = "prediction"
	StageUpsell     ProviderStage = "upsell"
	StageOrder      ProviderStage = "order"
	StageReference  ProviderStage = "reference"
)

// ProviderError wraps any failure coming back from the flight-data
// provider. Status carries the provider's HTTP status when it supplied
// one, otherwise 0.
type ProviderError struct {
	Stage    ProviderStage
	Status   int
	Message  string
	TimedOut bool
}

func (e *ProviderError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("provider %s call timed out", e.Stage)
	}
	if e.Stage == "" {
		return fmt.Sprintf("provider call failed: %s", e.Message)
	}
	return fmt.Sprintf("provider %s call failed: %s", e.Stage, e.Message)
}
