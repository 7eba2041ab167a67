package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	raw := fmt.Errorf("dial tcp: refused")
	appErr := FromError(raw)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, appErr, raw)
}

func TestCloneMatchesTemplate(t *testing.T) {
	clone := Clone(ErrNotFound, "course not found")
	assert.Equal(t, "course not found", clone.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
	assert.True(t, errors.Is(clone, ErrNotFound))
	assert.False(t, errors.Is(clone, ErrOperationFailed))
}
