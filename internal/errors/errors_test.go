package errors_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greymere/keeper-api/internal/errors"
)

func TestNotFound(t *testing.T) {
	err := errors.NotFoundf("turn %s not found", "turn-abc")

	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, "turn turn-abc not found", errors.GetMessage(err))
	assert.Equal(t, http.StatusNotFound, errors.GetCode(err).HTTPStatus())
}

func TestWrapPreservesCode(t *testing.T) {
	inner := errors.NotFound("scene missing")
	wrapped := errors.Wrap(inner, "assembling context")

	assert.True(t, errors.IsNotFound(wrapped))
	assert.True(t, stderrors.Is(wrapped, inner))
}

func TestWrapPlainErrorDefaultsToInternal(t *testing.T) {
	wrapped := errors.Wrap(stderrors.New("boom"), "storing turn")

	assert.True(t, errors.IsInternal(wrapped))
	assert.Contains(t, wrapped.Error(), "boom")
}

func TestWrapWithCodeOverrides(t *testing.T) {
	inner := stderrors.New("connection refused")
	wrapped := errors.WrapWithCode(inner, errors.CodeUnavailable, "narrator unreachable")

	assert.True(t, errors.IsUnavailable(wrapped))
	assert.Equal(t, http.StatusServiceUnavailable, errors.GetCode(wrapped).HTTPStatus())
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, "no-op"))
}

func TestGetCodeNil(t *testing.T) {
	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
}

func TestAbortedMapsToConflict(t *testing.T) {
	err := errors.Aborted("turn already processing")
	assert.Equal(t, http.StatusConflict, errors.GetCode(err).HTTPStatus())
}

func TestWithMeta(t *testing.T) {
	err := errors.Internal("upstream error").WithMeta("status", 502)
	assert.Equal(t, 502, err.Meta["status"])
}
