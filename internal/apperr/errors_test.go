package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessages(t *testing.T) {
	assert.Equal(t, "Customer with id 4 was not found", NotFound("Customer", 4).Error())
	assert.Equal(t, "Repair was not found", NotFound("Repair", 0).Error())
	assert.Equal(t, "expected service type: repair, type received: sale", TypeMismatch("repair", "sale").Error())
	assert.Equal(t, "not authorized to perform this action on this customer", Forbidden().Error())
	assert.Equal(t, "integrity violation: Repair 3 is missing its service", IntegrityViolation("Repair", 3, "service").Error())
	assert.Equal(t, "something went wrong", StoreFailure(errors.New("conn reset")).Error())
}

func TestKindOfThroughWrapping(t *testing.T) {
	base := errors.New("unique")
	err := fmt.Errorf("create item: %w", Conflict("duplicate", base))

	assert.Equal(t, KindConflict, KindOf(err))
	assert.True(t, Is(err, KindConflict))
	assert.True(t, errors.Is(err, base))
	assert.Equal(t, KindUnknown, KindOf(base))
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, "conflict", KindConflict.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
