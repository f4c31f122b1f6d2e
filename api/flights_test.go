package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/skybooker/internal/apperror"
	"github.com/Domenick1991/skybooker/internal/domain"
	"github.com/Domenick1991/skybooker/internal/provider/amadeus"
	"github.com/Domenick1991/skybooker/internal/service/flights"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) Search(ctx context.Context, input flights.SearchInput) (*flights.SearchResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flights.SearchResult), args.Error(1)
}

func (m *MockFlightUseCase) ConfirmPrice(ctx context.Context, offer json.RawMessage) (*amadeus.PricingResult, error) {
	args := m.Called(ctx, offer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*amadeus.PricingResult), args.Error(1)
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format(time.DateOnly)
}

func TestFlightHandler_search(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, Auth(""))
	departure := futureDate(30)
	c, w := newTestContext(t, http.MethodPost, "/api/flights/search", map[string]any{
		"origin":        "BLR",
		"destination":   "DEL",
		"departureDate": departure,
	})

	mockService.On("Search", mock.Anything, mock.MatchedBy(func(in flights.SearchInput) bool {
		cr := in.Criteria
		return cr.Origin == "BLR" && cr.Destination == "DEL" &&
			cr.DepartureDate.Format(time.DateOnly) == departure &&
			cr.ReturnDate == nil &&
			cr.Passengers == domain.PassengerCounts{Adults: 1} &&
			cr.CabinClass == domain.CabinEconomy &&
			cr.CurrencyCode == "INR"
	})).Return(&flights.SearchResult{SearchID: "s-1", Count: 0, Offers: []flights.PricedOffer{}}, nil)

	handler.search(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"searchId":"s-1","count":0,"offers":[]}`, string(env.Data))
	mockService.AssertExpectations(t)
}

func TestFlightHandler_searchUpperCasesAirports(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, Auth(""))
	c, w := newTestContext(t, http.MethodPost, "/api/flights/search", map[string]any{
		"origin":        "blr",
		"destination":   "Del",
		"departureDate": futureDate(30),
	})

	mockService.On("Search", mock.Anything, mock.MatchedBy(func(in flights.SearchInput) bool {
		return in.Criteria.Origin == "BLR" && in.Criteria.Destination == "DEL"
	})).Return(&flights.SearchResult{SearchID: "s-2", Offers: []flights.PricedOffer{}}, nil)

	handler.search(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_searchInvalid(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{name: "missing origin", body: map[string]any{"destination": "DEL", "departureDate": futureDate(3)}, code: "MISSING_REQUIRED_FIELDS"},
		{name: "digits in iata", body: map[string]any{"origin": "BL1", "destination": "DEL", "departureDate": futureDate(3)}, code: "VALIDATION_ERROR"},
		{name: "same airports in mixed case", body: map[string]any{"origin": "del", "destination": "DEL", "departureDate": futureDate(3)}, code: "VALIDATION_ERROR"},
		{name: "same airports", body: map[string]any{"origin": "DEL", "destination": "DEL", "departureDate": futureDate(3)}, code: "VALIDATION_ERROR"},
		{name: "past date", body: map[string]any{"origin": "BLR", "destination": "DEL", "departureDate": "2020-01-01"}, code: "VALIDATION_ERROR"},
		{name: "too many adults", body: map[string]any{"origin": "BLR", "destination": "DEL", "departureDate": futureDate(3), "adults": 10}, code: "VALIDATION_ERROR"},
		{name: "unknown class", body: map[string]any{"origin": "BLR", "destination": "DEL", "departureDate": futureDate(3), "class": "LUXURY"}, code: "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockFlightUseCase{}
			handler := NewFlightHandler(mockService, Auth(""))
			c, w := newTestContext(t, http.MethodPost, "/api/flights/search", tt.body)

			handler.search(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			env := decodeEnvelope(t, w)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
			mockService.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
		})
	}
}

func TestFlightHandler_searchUpstream(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, Auth(""))
	c, w := newTestContext(t, http.MethodPost, "/api/flights/search", map[string]any{
		"origin": "BLR", "destination": "DEL", "departureDate": futureDate(3),
	})
	mockService.On("Search", mock.Anything, mock.Anything).
		Return(nil, apperror.New(apperror.ErrUpstream, "provider timeout", context.DeadlineExceeded))

	handler.search(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "UPSTREAM_ERROR", env.Error.Code)
	assert.True(t, env.Error.Retryable)
}

func TestFlightHandler_price(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, Auth(""))
	c, w := newTestContext(t, http.MethodPost, "/api/flights/flight-price", `{"flightOffer":{"id":"1"}}`)

	mockService.On("ConfirmPrice", mock.Anything, json.RawMessage(`{"id":"1"}`)).
		Return(&amadeus.PricingResult{Raw: json.RawMessage(`{"data":{"type":"flight-offers-pricing"}}`)}, nil)

	handler.price(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.JSONEq(t, `{"data":{"type":"flight-offers-pricing"}}`, string(env.Data))
	mockService.AssertExpectations(t)
}

func TestFlightHandler_priceBareOffer(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, Auth(""))
	c, w := newTestContext(t, http.MethodPost, "/api/flights/flight-price", `{"id":"1","type":"flight-offer"}`)

	mockService.On("ConfirmPrice", mock.Anything, json.RawMessage(`{"id":"1","type":"flight-offer"}`)).
		Return(&amadeus.PricingResult{Raw: json.RawMessage(`{}`)}, nil)

	handler.price(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_priceWarning(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, Auth(""))
	c, w := newTestContext(t, http.MethodPost, "/api/flights/flight-price", `{"flightOffer":{"id":"1"}}`)

	mockService.On("ConfirmPrice", mock.Anything, mock.Anything).
		Return(nil, apperror.New(apperror.ErrPriceWarning, "Actual price is different from requested one", nil))

	handler.price(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "PRICE_WARNING", env.Error.Code)
	assert.Equal(t, "Actual price is different from requested one", env.Error.Message)
}

func TestFlightHandler_priceEmptyBody(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, Auth(""))
	c, w := newTestContext(t, http.MethodPost, "/api/flights/flight-price", nil)

	handler.price(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No data provided", decodeEnvelope(t, w).Error.Message)
	mockService.AssertNotCalled(t, "ConfirmPrice", mock.Anything, mock.Anything)
}

func TestFlightHandler_searchIsPublic(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, Auth("secret"))
	router := newRouterForTest()
	handler.Register(router.Group("/api/flights"))

	mockService.On("Search", mock.Anything, mock.Anything).Return(&flights.SearchResult{Offers: []flights.PricedOffer{}}, nil)

	w := serve(t, router, http.MethodPost, "/api/flights/search", map[string]any{
		"origin": "BLR", "destination": "DEL", "departureDate": futureDate(3),
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(t, router, http.MethodPost, "/api/flights/flight-price", map[string]any{"flightOffer": map[string]any{"id": "1"}}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Access token required", decodeEnvelope(t, w).Error.Message)
}
