package errors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greymere/keeper-api/internal/errors"
)

func TestValidationBuilderEmpty(t *testing.T) {
	err := errors.NewValidationBuilder().Build()
	assert.NoError(t, err)
}

func TestValidationBuilderRequiredFields(t *testing.T) {
	err := errors.NewValidationBuilder().
		RequiredField("TurnRepo").
		RequiredField("Relay").
		Build()

	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "TurnRepo: is required")
	assert.Contains(t, err.Error(), "Relay: is required")
}

func TestValidationBuilderFieldf(t *testing.T) {
	err := errors.NewValidationBuilder().
		Fieldf("MaxPreviousTurns", "must be positive, got %d", -1).
		Build()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive, got -1")
}
