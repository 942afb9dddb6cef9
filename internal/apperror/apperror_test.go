package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := NewNetwork(500, "Failed to load contacts", nil)
	assert.Equal(t, "Failed to load contacts", err.Error())

	cause := errors.New("connection refused")
	err = NewNetwork(0, "Failed to load contacts", cause)
	assert.Equal(t, "Failed to load contacts: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestKindHelpers(t *testing.T) {
	wrapped := fmt.Errorf("saving contact: %w", NewAuth(401, "Unauthorized"))

	assert.True(t, IsAuth(wrapped))
	assert.False(t, IsNetwork(wrapped))
	assert.Equal(t, "Unauthorized", Message(wrapped))

	v := NewValidation("email", "bad email")
	assert.True(t, IsValidation(v))
	assert.Equal(t, "email", v.Field)

	plain := errors.New("boom")
	assert.Equal(t, Kind(""), KindOf(plain))
	assert.Equal(t, "boom", Message(plain))
	assert.Equal(t, "", Message(nil))
}
