package flights

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rannerhq/ranner/internal/auth"
	"github.com/rannerhq/ranner/internal/domain"
	"github.com/rannerhq/ranner/internal/kafka"
	"github.com/rannerhq/ranner/internal/repository"
	"github.com/rs/zerolog"
)

type FlightUseCase interface {
	Save(ctx context.Context, input SaveFlightInput) (*domain.Flight, error)
	Find(ctx context.Context, filter repository.Filter) ([]domain.Flight, error)
	ListByTrip(ctx context.Context, tripID string) ([]domain.Flight, error)
	Remove(ctx context.Context, id string, actor auth.Identity) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type FlightService struct {
	flights  repository.FlightRepository
	producer Producer
	topic    string
	log      zerolog.Logger
}

type SaveFlightInput struct {
	TripID        string
	Owner         string
	Origin        string
	Destination   string
	DepartureDate time.Time
	ReturnDate    *time.Time
	Airline       string
	FlightNumber  string
	PriceAmount   string
	PriceCurrency string
}

func NewFlightService(flights repository.FlightRepository, producer Producer, topic string, log zerolog.Logger) *FlightService {
	return &FlightService{
		flights:  flights,
		producer: producer,
		topic:    topic,
		log:      log,
	}
}

func (s *FlightService) Save(ctx context.Context, input SaveFlightInput) (*domain.Flight, error) {
	flight := &domain.Flight{
		ID:            uuid.NewString(),
		TripID:        input.TripID,
		Owner:         input.Owner,
		Origin:        input.Origin,
		Destination:   input.Destination,
		DepartureDate: input.DepartureDate,
		ReturnDate:    input.ReturnDate,
		Airline:       input.Airline,
		FlightNumber:  input.FlightNumber,
		PriceAmount:   input.PriceAmount,
		PriceCurrency: input.PriceCurrency,
	}

	if err := s.flights.Create(ctx, flight); err != nil {
		return nil, err
	}

	s.publish(ctx, "flight_saved", flight)
	return flight, nil
}

func (s *FlightService) Find(ctx context.Context, filter repository.Filter) ([]domain.Flight, error) {
	return s.flights.FindAll(ctx, filter)
}

func (s *FlightService) ListByTrip(ctx context.Context, tripID string) ([]domain.Flight, error) {
	return s.flights.ListByTrip(ctx, tripID)
}

// Remove deletes a saved flight after checking the actor owns it or is
// an admin. The repository itself stays free of identity concerns.
func (s *FlightService) Remove(ctx context.Context, id string, actor auth.Identity) error {
	flight, err := s.flights.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanModify(actor.Username, flight.Owner, actor.IsAdmin) {
		return fmt.Errorf("flight %s: %w", id, domain.ErrForbidden)
	}

	if err := s.flights.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, "flight_removed", flight)
	return nil
}

func (s *FlightService) publish(ctx context.Context, eventType string, flight *domain.Flight) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event := kafka.FlightEvent{
		Type:        eventType,
		FlightID:    flight.ID,
		TripID:      flight.TripID,
		Owner:       flight.Owner,
		Origin:      flight.Origin,
		Destination: flight.Destination,
		OccurredAt:  time.Now(),
	}
	if err := s.producer.Publish(ctx, s.topic, flight.ID, event); err != nil {
		s.log.Warn().Err(err).Str("flight_id", flight.ID).Str("event", eventType).Msg("failed to publish flight event")
	}
}

var _ FlightUseCase = (*FlightService)(nil)
