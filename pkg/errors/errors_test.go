package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}

func TestCloneKeepsCode(t *testing.T) {
	err := Clone(ErrNotFound, "student not found")
	assert.Equal(t, "student not found", err.Message)
	assert.Equal(t, ErrNotFound.Code, err.Code)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
}

func TestPublicExposesCauseForServerErrors(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	pub := Public(Wrap(cause, ErrInternal.Code, ErrInternal.Status, "failed to list students"))
	assert.Equal(t, "connection refused", pub.Detail)
	assert.Equal(t, "failed to list students", pub.Message)

	pub = Public(Wrap(cause, ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
	assert.Empty(t, pub.Detail)
}
