package hierarchy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/taller-ecom/internal/apperr"
)

type row struct{ id int64 }

func TestValidateChain_ReportsShallowestMissing(t *testing.T) {
	var customer, service *row

	err := ValidateChain(
		Present("Customer", 1, customer),
		Present("Service", 2, service),
	)
	require.Error(t, err)
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.KindNotFound, ae.Kind)
	assert.Equal(t, "Customer", ae.Resource)
	assert.Equal(t, int64(1), ae.ID)

	customer = &row{id: 1}
	err = ValidateChain(
		Present("Customer", 1, customer),
		Present("Service", 2, service),
		Present("Repair", 3, (*row)(nil)),
	)
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "Service", ae.Resource)
	assert.Equal(t, int64(2), ae.ID)
}

func TestValidateChain_AllPresent(t *testing.T) {
	assert.NoError(t, ValidateChain(
		Present("Customer", 1, &row{1}),
		Present("Service", 2, &row{2}),
	))
	assert.NoError(t, ValidateChain())
}

type kind string

func TestValidateKind(t *testing.T) {
	assert.NoError(t, ValidateKind(kind("repair"), kind("repair")))

	err := ValidateKind(kind("repair"), kind("sale"))
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.KindTypeMismatch, ae.Kind)
	assert.Equal(t, "repair", ae.Expected)
	assert.Equal(t, "sale", ae.Actual)
}

func TestValidateOwnership(t *testing.T) {
	assert.NoError(t, ValidateOwnership(4, 4))
	assert.True(t, apperr.Is(ValidateOwnership(4, 5), apperr.KindForbidden))
}
