package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_StatusMapping(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name   string
		err    *Error
		typ    ErrorType
		status int
	}{
		{"validation", ValidationError("bad input"), TypeValidation, http.StatusBadRequest},
		{"unauthorized", UnauthorizedError("login required"), TypeUnauthorized, http.StatusUnauthorized},
		{"not found", NotFoundError("missing"), TypeNotFound, http.StatusNotFound},
		{"internal", InternalError("failed", cause), TypeInternal, http.StatusInternalServerError},
		{"external", ExternalError("provider down", cause), TypeExternal, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.err.Type)
			assert.Equal(t, tt.status, tt.err.HTTPStatus())
			assert.NotNil(t, tt.err.Context)
			assert.Contains(t, tt.err.Error(), string(tt.typ))
		})
	}
}

func TestError_UnwrapsCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := ExternalError("failed to fetch dashboard", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "dial tcp: refused")
}

func TestWithCodeAndField(t *testing.T) {
	err := UnauthorizedError("invalid username or password").
		WithCode("INVALID_CREDENTIALS").
		WithField("username", "admin")

	assert.Equal(t, "INVALID_CREDENTIALS", err.Code)
	assert.Equal(t, "admin", err.Context["username"])
}

func TestToResponse_HidesContextOutsideValidation(t *testing.T) {
	internal := InternalError("failed", nil).WithField("key", "cloud-ev-dashboard-auth")
	resp := internal.ToResponse()
	assert.Nil(t, resp.Context)
	assert.Equal(t, TypeInternal, resp.Type)

	validation := ValidationError("unknown usage range").WithField("range", "year")
	resp = validation.ToResponse()
	assert.Equal(t, "year", resp.Context["range"])
}

func TestAsStructuredError(t *testing.T) {
	assert.Nil(t, AsStructuredError(nil))

	original := NotFoundError("nope")
	assert.Same(t, original, AsStructuredError(fmt.Errorf("wrapped: %w", original)))

	plain := errors.New("plain")
	converted := AsStructuredError(plain)
	require.NotNil(t, converted)
	assert.Equal(t, TypeInternal, converted.Type)
	assert.ErrorIs(t, converted, plain)
}
