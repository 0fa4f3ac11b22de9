package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rannerhq/ranner/internal/domain"
	"github.com/rannerhq/ranner/internal/service/offers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockOfferUseCase struct {
	mock.Mock
}

func rawReturn(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	return v.(json.RawMessage)
}

func (m *MockOfferUseCase) SearchOffers(ctx context.Context, criteria offers.SearchCriteria) ([]json.RawMessage, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]json.RawMessage), args.Error(1)
}

func (m *MockOfferUseCase) SearchOffersRaw(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	args := m.Called(ctx, payload)
	return rawReturn(args.Get(0)), args.Error(1)
}

func (m *MockOfferUseCase) SearchDestinations(ctx context.Context, origin string) (json.RawMessage, error) {
	args := m.Called(ctx, origin)
	return rawReturn(args.Get(0)), args.Error(1)
}

func (m *MockOfferUseCase) SearchOfferDates(ctx context.Context, origin, destination string) (json.RawMessage, error) {
	args := m.Called(ctx, origin, destination)
	return rawReturn(args.Get(0)), args.Error(1)
}

func (m *MockOfferUseCase) PriceConfirmedOffer(ctx context.Context, criteria offers.SearchCriteria) (json.RawMessage, error) {
	args := m.Called(ctx, criteria)
	return rawReturn(args.Get(0)), args.Error(1)
}

func (m *MockOfferUseCase) PriceOffersRaw(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	args := m.Called(ctx, payload)
	return rawReturn(args.Get(0)), args.Error(1)
}

func (m *MockOfferUseCase) SeatMapForCriteria(ctx context.Context, criteria offers.SearchCriteria) (json.RawMessage, error) {
	args := m.Called(ctx, criteria)
	return rawReturn(args.Get(0)), args.Error(1)
}

func (m *MockOfferUseCase) SeatMapForOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	args := m.Called(ctx, orderID)
	return rawReturn(args.Get(0)), args.Error(1)
}

func (m *MockOfferUseCase) PredictOffers(ctx context.Context, criteria offers.SearchCriteria) (json.RawMessage, error) {
	args := m.Called(ctx, criteria)
	return rawReturn(args.Get(0)), args.Error(1)
}

func (m *MockOfferUseCase) UpsellOffers(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	args := m.Called(ctx, payload)
	return rawReturn(args.Get(0)), args.Error(1)
}

func (m *MockOfferUseCase) SearchAvailabilities(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	args := m.Called(ctx, payload)
	return rawReturn(args.Get(0)), args.Error(1)
}

func (m *MockOfferUseCase) CreateOrder(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	args := m.Called(ctx, payload)
	return rawReturn(args.Get(0)), args.Error(1)
}

func (m *MockOfferUseCase) GetOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	args := m.Called(ctx, orderID)
	return rawReturn(args.Get(0)), args.Error(1)
}

func (m *MockOfferUseCase) CancelOrder(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOfferUseCase) AirportSuggestions(ctx context.Context, keyword string) (json.RawMessage, error) {
	args := m.Called(ctx, keyword)
	return rawReturn(args.Get(0)), args.Error(1)
}

func (m *MockOfferUseCase) CheckinLinks(ctx context.Context, airlineCode string) (json.RawMessage, error) {
	args := m.Called(ctx, airlineCode)
	return rawReturn(args.Get(0)), args.Error(1)
}

func (m *MockOfferUseCase) FlightStatus(ctx context.Context, carrierCode, flightNumber, departureDate string) (json.RawMessage, error) {
	args := m.Called(ctx, carrierCode, flightNumber, departureDate)
	return rawReturn(args.Get(0)), args.Error(1)
}

func newOfferRouter(service offers.OfferUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/flights")
	NewOfferHandler(service).Register(group)
	return router
}

func TestOfferHandler_SearchOffers(t *testing.T) {
	mockService := &MockOfferUseCase{}
	router := newOfferRouter(mockService)

	expected := offers.SearchCriteria{
		Origin:        "JFK",
		Destination:   "LAX",
		DepartureDate: "2025-07-01",
		Adults:        "2",
	}
	mockService.On("SearchOffers", mock.Anything, expected).
		Return([]json.RawMessage{json.RawMessage(`{"id":"1"}`)}, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/flights/offers?origin=JFK&destination=LAX&departureDate=2025-07-01&adults=2", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":"1"}]`, w.Body.String())
	mockService.AssertExpectations(t)
}

func TestOfferHandler_SearchOffers_MissingParams(t *testing.T) {
	mockService := &MockOfferUseCase{}
	router := newOfferRouter(mockService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/flights/offers?origin=JFK", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"status":400`)
	mockService.AssertNotCalled(t, "SearchOffers")
}

func TestOfferHandler_SearchOffersRaw(t *testing.T) {
	mockService := &MockOfferUseCase{}
	router := newOfferRouter(mockService)

	payload := `{"currencyCode":"USD","originDestinations":[]}`
	mockService.On("SearchOffersRaw", mock.Anything, mock.MatchedBy(func(body json.RawMessage) bool {
		return string(body) == payload
	})).Return(json.RawMessage(`{"data":[]}`), nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/flights/offers", strings.NewReader(payload))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestOfferHandler_SearchOffersRaw_EmptyBody(t *testing.T) {
	mockService := &MockOfferUseCase{}
	router := newOfferRouter(mockService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/flights/offers", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "SearchOffersRaw")
}

func TestOfferHandler_PriceConfirmedOffer_NoOffers(t *testing.T) {
	mockService := &MockOfferUseCase{}
	router := newOfferRouter(mockService)

	mockService.On("PriceConfirmedOffer", mock.Anything, mock.Anything).
		Return(nil, domain.ErrNoOffersFound).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/flights/offers/price?origin=JFK&destination=LAX&departureDate=2025-07-01", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"status":404`)
}

func TestOfferHandler_PriceConfirmedOffer_ProviderStatusForwarded(t *testing.T) {
	mockService := &MockOfferUseCase{}
	router := newOfferRouter(mockService)

	mockService.On("PriceConfirmedOffer", mock.Anything, mock.Anything).
		Return(nil, &domain.ProviderError{Stage: domain.StagePrice, Status: 502, Message: "upstream error"}).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/flights/offers/price?origin=JFK&destination=LAX&departureDate=2025-07-01", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), `"status":502`)
}

func TestOfferHandler_PriceConfirmedOffer_ProviderErrorWithoutStatus(t *testing.T) {
	mockService := &MockOfferUseCase{}
	router := newOfferRouter(mockService)

	mockService.On("PriceConfirmedOffer", mock.Anything, mock.Anything).
		Return(nil, &domain.ProviderError{Stage: domain.StagePrice, Message: "connection refused", TimedOut: true}).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/flights/offers/price?origin=JFK&destination=LAX&departureDate=2025-07-01", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"status":500`)
}

func TestOfferHandler_PredictOffers(t *testing.T) {
	mockService := &MockOfferUseCase{}
	router := newOfferRouter(mockService)

	mockService.On("PredictOffers", mock.Anything, mock.Anything).
		Return(json.RawMessage(`{"data":[{"id":"ranked"}]}`), nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/flights/offers/prediction?origin=JFK&destination=LAX&departureDate=2025-07-01", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[{"id":"ranked"}]}`, w.Body.String())
}

func TestOfferHandler_SeatMapForCriteria(t *testing.T) {
	mockService := &MockOfferUseCase{}
	router := newOfferRouter(mockService)

	mockService.On("SeatMapForCriteria", mock.Anything, mock.Anything).
		Return(json.RawMessage(`{"decks":[]}`), nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/flights/seatmaps?origin=JFK&destination=LAX&departureDate=2025-07-01", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOfferHandler_Orders(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		mockService := &MockOfferUseCase{}
		router := newOfferRouter(mockService)

		mockService.On("CreateOrder", mock.Anything, mock.Anything).
			Return(json.RawMessage(`{"id":"order-1"}`), nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/flights/orders", strings.NewReader(`{"data":{}}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("get", func(t *testing.T) {
		mockService := &MockOfferUseCase{}
		router := newOfferRouter(mockService)

		mockService.On("GetOrder", mock.Anything, "order-1").
			Return(json.RawMessage(`{"id":"order-1"}`), nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/flights/orders/order-1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("cancel", func(t *testing.T) {
		mockService := &MockOfferUseCase{}
		router := newOfferRouter(mockService)

		mockService.On("CancelOrder", mock.Anything, "order-1").Return(nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/flights/orders/order-1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("order seatmap", func(t *testing.T) {
		mockService := &MockOfferUseCase{}
		router := newOfferRouter(mockService)

		mockService.On("SeatMapForOrder", mock.Anything, "order-1").
			Return(json.RawMessage(`{"decks":[]}`), nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/flights/orders/order-1/seatmap", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestOfferHandler_ReferenceRoutes(t *testing.T) {
	t.Run("destinations requires origin", func(t *testing.T) {
		router := newOfferRouter(&MockOfferUseCase{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/flights/destinations", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("airport suggestions", func(t *testing.T) {
		mockService := &MockOfferUseCase{}
		router := newOfferRouter(mockService)

		mockService.On("AirportSuggestions", mock.Anything, "new york").
			Return(json.RawMessage(`[{"iataCode":"JFK"}]`), nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/flights/airport-suggestions?keyword=new+york", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("checkin links", func(t *testing.T) {
		mockService := &MockOfferUseCase{}
		router := newOfferRouter(mockService)

		mockService.On("CheckinLinks", mock.Anything, "BA").
			Return(json.RawMessage(`[]`), nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/flights/airline/checkinLinks?airlineCode=BA", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("flight status requires all params", func(t *testing.T) {
		router := newOfferRouter(&MockOfferUseCase{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/flights/status?carrierCode=BA", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("flight status", func(t *testing.T) {
		mockService := &MockOfferUseCase{}
		router := newOfferRouter(mockService)

		mockService.On("FlightStatus", mock.Anything, "BA", "117", "2025-07-01").
			Return(json.RawMessage(`{"data":[]}`), nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/flights/status?carrierCode=BA&flightNumber=117&scheduledDepartureDate=2025-07-01", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestOfferHandler_InvalidCriteriaFromService(t *testing.T) {
	mockService := &MockOfferUseCase{}
	router := newOfferRouter(mockService)

	mockService.On("SearchOffers", mock.Anything, mock.Anything).
		Return(nil, domain.ErrInvalidInput).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/flights/offers?origin=JFK&destination=LAX&departureDate=junk", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
