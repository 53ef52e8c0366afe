package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{Validation("bad", nil), http.StatusBadRequest},
		{NotFound("bed", nil), http.StatusNotFound},
		{PatientNotFound, http.StatusNotFound},
		{BedNotFound, http.StatusNotFound},
		{NoBedAvailable, http.StatusNotFound},
		{NoTargetBedAvailable, http.StatusNotFound},
		{Conflict("taken", nil), http.StatusConflict},
		{Unauthorized(nil), http.StatusUnauthorized},
		{Forbidden(nil), http.StatusForbidden},
		{StoreUnavailable(nil), http.StatusServiceUnavailable},
		{Internal(nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Message, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("discharge: %w", &AppError{Code: ErrPatientNotFound, Message: "gone"})

	assert.True(t, Is(err, PatientNotFound))
	assert.False(t, Is(err, BedNotFound))
	assert.True(t, HasCode(err, ErrPatientNotFound))
	assert.False(t, HasCode(stderrors.New("plain"), ErrPatientNotFound))
}

func TestErrorWrapsCause(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := StoreUnavailable(cause)

	assert.Equal(t, "record store unavailable: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	var appErr *AppError
	assert.True(t, As(fmt.Errorf("wrapped: %w", err), &appErr))
	assert.Equal(t, ErrStoreUnavailable, appErr.Code)
}
