package email

import (
	"context"
	"fmt"

	"github.com/rannerhq/ranner/internal/kafka"
)

// Sender delivers itinerary-change notifications to trip owners. The
// transport is stdout for now; swapping in a real mail provider only
// touches this type.
type Sender struct {
	from string
}

func NewSender(from string) *Sender {
	return &Sender{from: from}
}

func (s *Sender) Send(ctx context.Context, event kafka.FlightEvent) error {
	fmt.Printf("notify %s from %s: %s for trip %s (%s -> %s)\n",
		event.Owner, s.from, event.Type, event.TripID, event.Origin, event.Destination)
	return nil
}
