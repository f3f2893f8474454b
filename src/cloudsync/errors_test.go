package cloudsync

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewError(KindNetwork, "fetching transactions", cause)

	assert.Equal(t, KindNetwork, KindOf(err))
	assert.ErrorIs(t, err, cause)

	// Classification survives wrapping.
	wrapped := fmt.Errorf("load failed: %w", err)
	assert.Equal(t, KindNetwork, KindOf(wrapped))

	// Foreign errors classify as unknown.
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NewError(KindNotFound, "missing collection", nil)))
	assert.False(t, IsNotFound(NewError(KindNetwork, "offline", nil)))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, KindNotAuthenticated, classifyStatus(http.StatusUnauthorized))
	assert.Equal(t, KindPermissionDenied, classifyStatus(http.StatusForbidden))
	assert.Equal(t, KindNotFound, classifyStatus(http.StatusNotFound))
	assert.Equal(t, KindUnknown, classifyStatus(http.StatusInternalServerError))
	assert.Equal(t, KindUnknown, classifyStatus(http.StatusTeapot))
}

func TestErrorMessage(t *testing.T) {
	err := NewError(KindNotAuthenticated, "session expired", nil)
	assert.Equal(t, "cloudsync: not_authenticated: session expired", err.Error())

	withCause := NewError(KindNetwork, "fetching", errors.New("dial tcp: timeout"))
	assert.Contains(t, withCause.Error(), "dial tcp: timeout")
}
