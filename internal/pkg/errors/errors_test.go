package errors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carpark-service/internal/pkg/errors"
)

func TestAppError_Error(t *testing.T) {
	err := errors.New("SOME_CODE", "something failed", 500)
	assert.Equal(t, "SOME_CODE: something failed", err.Error())
}

func TestAppError_WithDetailsLeavesSentinelUntouched(t *testing.T) {
	first := errors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{"lat": 91.0})
	second := errors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{"lon": 200.0})

	assert.NotSame(t, errors.ErrInvalidCoordinates, first)
	assert.NotSame(t, first, second)

	// Each caller keeps its own details.
	assert.Equal(t, map[string]interface{}{"lat": 91.0}, first.Details)
	assert.Equal(t, map[string]interface{}{"lon": 200.0}, second.Details)
	assert.Empty(t, errors.ErrInvalidCoordinates.Details)

	// The copy still reports the sentinel's code and status.
	assert.Equal(t, errors.ErrInvalidCoordinates.Code, first.Code)
	assert.Equal(t, errors.ErrInvalidCoordinates.StatusCode, first.StatusCode)
}
