package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapsEveryKind(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{NewValidation("bad input"), http.StatusBadRequest},
		{NewBusy("cycle running"), http.StatusConflict},
		{NewNotFound("missing"), http.StatusNotFound},
		{NewDependencyDown("down", nil), http.StatusServiceUnavailable},
		{NewDeadlineExceeded("timeout", nil), http.StatusGatewayTimeout},
		{NewTransientNetwork("flaky", nil), http.StatusBadGateway},
		{NewRateLimited("too many", nil), http.StatusBadGateway},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.HTTPStatus())
	}
}

func TestIsMatchesWrappedError(t *testing.T) {
	base := NewNotFound("scan not found")
	wrapped := fmt.Errorf("load scan: %w", base)

	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(wrapped, KindBusy))
}

func TestIsReturnsFalseForPlainError(t *testing.T) {
	assert.False(t, Is(errors.New("plain"), KindNotFound))
}

func TestAsExtractsTypedError(t *testing.T) {
	base := NewRateLimited("slow down", errors.New("429"))
	wrapped := fmt.Errorf("fetch source: %w", base)

	extracted, ok := As(wrapped)
	require := assert.New(t)
	require.True(ok)
	require.Equal(KindRateLimited, extracted.Kind)
}

func TestErrorStringIncludesWrappedCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransientNetwork("fetch reuters", cause)

	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Error(), "fetch reuters")
}

func TestUnwrapExposesUnderlyingError(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := NewDependencyDown("market-data unreachable", cause)

	assert.Same(t, cause, errors.Unwrap(err))
}
