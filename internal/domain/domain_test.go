package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCabinClass(t *testing.T) {
	c, err := ParseCabinClass("business")
	require.NoError(t, err)
	assert.Equal(t, CabinBusiness, c)

	c, err = ParseCabinClass(" Economy ")
	require.NoError(t, err)
	assert.Equal(t, CabinEconomy, c)

	_, err = ParseCabinClass("PREMIUM_ECONOMY")
	assert.Error(t, err)
}

func TestPassengerCounts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		counts  PassengerCounts
		wantErr bool
	}{
		{name: "single adult", counts: PassengerCounts{Adults: 1}},
		{name: "family", counts: PassengerCounts{Adults: 2, Children: 2, Infants: 1}},
		{name: "no adults", counts: PassengerCounts{Children: 1}, wantErr: true},
		{name: "negative children", counts: PassengerCounts{Adults: 1, Children: -1}, wantErr: true},
		{name: "negative infants", counts: PassengerCounts{Adults: 1, Infants: -2}, wantErr: true},
		{name: "over carrier limit", counts: PassengerCounts{Adults: 5, Children: 5}, wantErr: true},
		{name: "exactly nine", counts: PassengerCounts{Adults: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.counts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCountPassengers(t *testing.T) {
	got := CountPassengers([]PassengerDetail{
		{Type: PassengerAdult}, {Type: PassengerAdult}, {Type: PassengerChild}, {Type: PassengerInfant},
	})
	assert.Equal(t, PassengerCounts{Adults: 2, Children: 1, Infants: 1}, got)
}

func TestNewPriceQuote(t *testing.T) {
	q, err := NewPriceQuote(FromMajor(4500), FromMajor(890), FromMajor(200), FromMajor(225), "INR")
	require.NoError(t, err)
	assert.Equal(t, FromMajor(5815), q.TotalPrice)
	assert.Equal(t, q.BasePrice+q.Taxes+q.Fees+q.Markup, q.TotalPrice)

	_, err = NewPriceQuote(FromMajor(-1), 0, 0, 0, "INR")
	assert.Error(t, err)

	_, err = NewPriceQuote(FromMajor(1), 0, 0, 0, "")
	assert.Error(t, err)
}

func TestPriceQuote_ValidateDetectsTamperedTotal(t *testing.T) {
	q, err := NewPriceQuote(FromMajor(100), FromMajor(10), 0, 0, "INR")
	require.NoError(t, err)
	q.TotalPrice++
	assert.Error(t, q.Validate())
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(BookingStatusDraft, BookingStatusConfirmed))
	assert.True(t, CanTransition(BookingStatusConfirmed, BookingStatusCancelled))
	assert.True(t, CanTransition(BookingStatusConfirmed, BookingStatusCompleted))
	assert.False(t, CanTransition(BookingStatusCancelled, BookingStatusConfirmed))
	assert.False(t, CanTransition(BookingStatusCompleted, BookingStatusCancelled))
	assert.False(t, CanTransition(BookingStatusConfirmed, BookingStatusDraft))
}

func TestRoute_String(t *testing.T) {
	r := Route{Origin: Airport{Code: "BLR"}, Destination: Airport{Code: "DEL"}}
	assert.Equal(t, "BLR → DEL", r.String())
}
