package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	cause := errors.New("unique violation")
	err := New(ErrDuplicateBookingID, "booking BK1 already exists", cause)
	wrapped := fmt.Errorf("persist booking: %w", err)

	assert.True(t, errors.Is(wrapped, ErrDuplicateBookingID))
	assert.False(t, errors.Is(wrapped, ErrBookingPersistFailed))
	assert.True(t, errors.Is(wrapped, cause))
	assert.Contains(t, wrapped.Error(), "unique violation")
}

func TestNew_DoesNotMutateSentinel(t *testing.T) {
	_ = New(ErrFlightNotFound, "flight X not found", nil)
	assert.Equal(t, "flight not found", ErrFlightNotFound.Message)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(ErrUpstream, "timeout", nil)))
	assert.False(t, IsRetryable(New(ErrInvalidFareData, "", nil)))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   http.StatusBadRequest,
		KindNotFound:     http.StatusNotFound,
		KindUpstream:     http.StatusBadGateway,
		KindComputation:  http.StatusInternalServerError,
		KindPersistence:  http.StatusInternalServerError,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(kind), string(kind))
	}
}
