package offers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rannerhq/ranner/internal/amadeus"
	"github.com/rannerhq/ranner/internal/domain"
	"github.com/rs/zerolog"
)

// Provider is the flight-data capability the orchestrator composes.
// *amadeus.Client satisfies it; tests substitute a fake.
type Provider interface {
	SearchOffers(ctx context.Context, params amadeus.SearchParams) (*amadeus.SearchResult, error)
	SearchOffersRaw(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	SearchDestinations(ctx context.Context, origin string) (json.RawMessage, error)
	SearchOfferDates(ctx context.Context, origin, destination string) (json.RawMessage, error)
	PriceOffers(ctx context.Context, payload json.RawMessage, include string) (json.RawMessage, error)
	SeatMapsForOffers(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	SeatMapsForOrder(ctx context.Context, orderID string) (json.RawMessage, error)
	PredictOffers(ctx context.Context, searchResponse json.RawMessage) (json.RawMessage, error)
	UpsellOffers(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	SearchAvailabilities(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	CreateOrder(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	GetOrder(ctx context.Context, orderID string) (json.RawMessage, error)
	CancelOrder(ctx context.Context, orderID string) error
	LookupLocations(ctx context.Context, keyword, subType string) (json.RawMessage, error)
	LookupCheckinLinks(ctx context.Context, airlineCode string) (json.RawMessage, error)
	GetFlightStatus(ctx context.Context, carrierCode, flightNumber, departureDate string) (json.RawMessage, error)
}

type Cache interface {
	GetSearch(ctx context.Context, key string) (json.RawMessage, error)
	SetSearch(ctx context.Context, key string, payload json.RawMessage) error
}

type OfferUseCase interface {
	SearchOffers(ctx context.Context, criteria SearchCriteria) ([]json.RawMessage, error)
	SearchOffersRaw(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	SearchDestinations(ctx context.Context, origin string) (json.RawMessage, error)
	SearchOfferDates(ctx context.Context, origin, destination string) (json.RawMessage, error)
	PriceConfirmedOffer(ctx context.Context, criteria SearchCriteria) (json.RawMessage, error)
	PriceOffersRaw(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	SeatMapForCriteria(ctx context.Context, criteria SearchCriteria) (json.RawMessage, error)
	SeatMapForOrder(ctx context.Context, orderID string) (json.RawMessage, error)
	PredictOffers(ctx context.Context, criteria SearchCriteria) (json.RawMessage, error)
	UpsellOffers(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	SearchAvailabilities(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	CreateOrder(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	GetOrder(ctx context.Context, orderID string) (json.RawMessage, error)
	CancelOrder(ctx context.Context, orderID string) error
	AirportSuggestions(ctx context.Context, keyword string) (json.RawMessage, error)
	CheckinLinks(ctx context.Context, airlineCode string) (json.RawMessage, error)
	FlightStatus(ctx context.Context, carrierCode, flightNumber, departureDate string) (json.RawMessage, error)
}

// OfferService composes provider calls into the multi-step shopping
// workflows. Dependent calls inside one workflow always reuse the search
// result already in hand; offers are ephemeral, so re-querying could
// price a different offer than the one shown.
type OfferService struct {
	provider    Provider
	cache       Cache
	callTimeout time.Duration
	log         zerolog.Logger
}

func NewOfferService(provider Provider, cache Cache, callTimeout time.Duration, log zerolog.Logger) *OfferService {
	return &OfferService{
		provider:    provider,
		cache:       cache,
		callTimeout: callTimeout,
		log:         log,
	}
}

// SearchOffers runs a plain search. An empty result is a valid answer,
// not an error. Responses are cached briefly; only this stand-alone
// search reads the cache, never the dependent workflows.
func (s *OfferService) SearchOffers(ctx context.Context, criteria SearchCriteria) ([]json.RawMessage, error) {
	params, err := criteria.normalize()
	if err != nil {
		return nil, err
	}

	key := cacheKey(params)
	if s.cache != nil {
		if cached, err := s.cache.GetSearch(ctx, key); err == nil && cached != nil {
			var offers []json.RawMessage
			if err := json.Unmarshal(cached, &offers); err == nil {
				return offers, nil
			}
		}
	}

	result, err := s.searchWithParams(ctx, params)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(result.Offers); err == nil {
			if err := s.cache.SetSearch(ctx, key, payload); err != nil {
				s.log.Warn().Err(err).Msg("failed to cache offer search")
			}
		}
	}
	return result.Offers, nil
}

// PriceConfirmedOffer searches, deterministically takes the first offer
// in provider order, and submits exactly that offer for pricing. The
// two failure points stay distinguishable through the error's stage.
func (s *OfferService) PriceConfirmedOffer(ctx context.Context, criteria SearchCriteria) (json.RawMessage, error) {
	result, err := s.search(ctx, criteria)
	if err != nil {
		return nil, err
	}
	primary, err := primaryOffer(result)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]any{
		"data": map[string]any{
			"type":         "flight-offers-pricing",
			"flightOffers": []json.RawMessage{primary},
		},
	})
	if err != nil {
		return nil, err
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	priced, err := s.provider.PriceOffers(callCtx, payload, "")
	if err != nil {
		return nil, tagStage(err, domain.StagePrice)
	}
	return priced, nil
}

func (s *OfferService) SeatMapForCriteria(ctx context.Context, criteria SearchCriteria) (json.RawMessage, error) {
	result, err := s.search(ctx, criteria)
	if err != nil {
		return nil, err
	}
	primary, err := primaryOffer(result)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]any{
		"data": []json.RawMessage{primary},
	})
	if err != nil {
		return nil, err
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	seatmaps, err := s.provider.SeatMapsForOffers(callCtx, payload)
	if err != nil {
		return nil, tagStage(err, domain.StageSeatMap)
	}
	return seatmaps, nil
}

// PredictOffers forwards the ENTIRE search response to the ranking
// call, not a single selection. Pricing and seat maps narrow to one
// offer; prediction ranks across all of them.
func (s *OfferService) PredictOffers(ctx context.Context, criteria SearchCriteria) (json.RawMessage, error) {
	result, err := s.search(ctx, criteria)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	prediction, err := s.provider.PredictOffers(callCtx, result.Raw)
	if err != nil {
		return nil, tagStage(err, domain.StagePrediction)
	}
	return prediction, nil
}

func (s *OfferService) UpsellOffers(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	upsell, err := s.provider.UpsellOffers(callCtx, payload)
	if err != nil {
		return nil, tagStage(err, domain.StageUpsell)
	}
	return upsell, nil
}

func (s *OfferService) SeatMapForOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	seatmaps, err := s.provider.SeatMapsForOrder(callCtx, orderID)
	if err != nil {
		return nil, tagStage(err, domain.StageSeatMap)
	}
	return seatmaps, nil
}

func (s *OfferService) SearchOffersRaw(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	result, err := s.provider.SearchOffersRaw(callCtx, payload)
	if err != nil {
		return nil, tagStage(err, domain.StageSearch)
	}
	return result, nil
}

// PriceOffersRaw prices a caller-built payload, asking the provider to
// include baggage options the way the original pricing route did.
func (s *OfferService) PriceOffersRaw(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	priced, err := s.provider.PriceOffers(callCtx, payload, "bags")
	if err != nil {
		return nil, tagStage(err, domain.StagePrice)
	}
	return priced, nil
}

func (s *OfferService) SearchAvailabilities(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	availabilities, err := s.provider.SearchAvailabilities(callCtx, payload)
	if err != nil {
		return nil, tagStage(err, domain.StageSearch)
	}
	return availabilities, nil
}

func (s *OfferService) SearchDestinations(ctx context.Context, origin string) (json.RawMessage, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	destinations, err := s.provider.SearchDestinations(callCtx, strings.ToUpper(strings.TrimSpace(origin)))
	if err != nil {
		return nil, tagStage(err, domain.StageSearch)
	}
	return destinations, nil
}

func (s *OfferService) SearchOfferDates(ctx context.Context, origin, destination string) (json.RawMessage, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	dates, err := s.provider.SearchOfferDates(callCtx,
		strings.ToUpper(strings.TrimSpace(origin)), strings.ToUpper(strings.TrimSpace(destination)))
	if err != nil {
		return nil, tagStage(err, domain.StageSearch)
	}
	return dates, nil
}

func (s *OfferService) CreateOrder(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	order, err := s.provider.CreateOrder(callCtx, payload)
	if err != nil {
		return nil, tagStage(err, domain.StageOrder)
	}
	return order, nil
}

func (s *OfferService) GetOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	order, err := s.provider.GetOrder(callCtx, orderID)
	if err != nil {
		return nil, tagStage(err, domain.StageOrder)
	}
	return order, nil
}

func (s *OfferService) CancelOrder(ctx context.Context, orderID string) error {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	if err := s.provider.CancelOrder(callCtx, orderID); err != nil {
		return tagStage(err, domain.StageOrder)
	}
	return nil
}

func (s *OfferService) AirportSuggestions(ctx context.Context, keyword string) (json.RawMessage, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	locations, err := s.provider.LookupLocations(callCtx, keyword, "AIRPORT,CITY")
	if err != nil {
		return nil, tagStage(err, domain.StageReference)
	}
	return locations, nil
}

func (s *OfferService) CheckinLinks(ctx context.Context, airlineCode string) (json.RawMessage, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	links, err := s.provider.LookupCheckinLinks(callCtx, strings.ToUpper(strings.TrimSpace(airlineCode)))
	if err != nil {
		return nil, tagStage(err, domain.StageReference)
	}
	return links, nil
}

func (s *OfferService) FlightStatus(ctx context.Context, carrierCode, flightNumber, departureDate string) (json.RawMessage, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	status, err := s.provider.GetFlightStatus(callCtx,
		strings.ToUpper(strings.TrimSpace(carrierCode)), strings.TrimSpace(flightNumber), strings.TrimSpace(departureDate))
	if err != nil {
		return nil, tagStage(err, domain.StageReference)
	}
	return status, nil
}

// search is the fresh first step of every dependent workflow. It never
// consults the cache.
func (s *OfferService) search(ctx context.Context, criteria SearchCriteria) (*amadeus.SearchResult, error) {
	params, err := criteria.normalize()
	if err != nil {
		return nil, err
	}
	return s.searchWithParams(ctx, params)
}

func (s *OfferService) searchWithParams(ctx context.Context, params amadeus.SearchParams) (*amadeus.SearchResult, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	result, err := s.provider.SearchOffers(callCtx, params)
	if err != nil {
		return nil, tagStage(err, domain.StageSearch)
	}
	return result, nil
}

func (s *OfferService) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.callTimeout)
}

// primaryOffer is the one selection rule shared by every workflow that
// narrows a search to a single offer: the first offer in provider order.
func primaryOffer(result *amadeus.SearchResult) (json.RawMessage, error) {
	if result == nil || len(result.Offers) == 0 {
		return nil, domain.ErrNoOffersFound
	}
	return result.Offers[0], nil
}

func tagStage(err error, stage domain.ProviderStage) error {
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		if perr.Stage == "" {
			perr.Stage = stage
		}
		return perr
	}
	return err
}

var _ OfferUseCase = (*OfferService)(nil)
