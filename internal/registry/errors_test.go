package registry

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Messages(t *testing.T) {
	assert.Equal(t, "DUPLICATE_GRANT: Grant already exists (grant=abc)", NewDuplicateError("abc").Error())
	assert.Equal(t, "TIMELOCKED: Grant is timelocked (grant=abc)", NewTimelockedError("abc").Error())
	assert.Equal(t, "INVALID_QUERY: Required argument: `owner` and/or `grantee`", NewInvalidQueryError().Error())

	cause := errors.New("too short")
	err := NewInvalidArgumentError("invalid caller", cause)
	assert.Equal(t, "INVALID_ARGUMENT: invalid caller: too short", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestError_PredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("cli: %w", NewTimelockedError("x"))

	assert.True(t, IsTimelocked(wrapped))
	assert.False(t, IsDuplicate(wrapped))
	assert.Equal(t, ErrCodeTimelocked, CodeOf(wrapped))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}
