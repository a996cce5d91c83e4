package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeInsufficientData, "only 12 closed deals")
	assert.Equal(t, "[ICP_001] only 12 closed deals", err.Error())

	withDetail := err.WithDetail("workspace ws-1")
	assert.Equal(t, "[ICP_001] only 12 closed deals: workspace ws-1", withDetail.Error())
	// WithDetail clones; the original is untouched.
	assert.Empty(t, err.Detail)
}

func TestWrapPreservesChain(t *testing.T) {
	root := stderrors.New("connection refused")
	wrapped := Wrap(root, ErrCodeDatabaseError, "query closed deals")

	require.ErrorIs(t, wrapped, root)
	assert.True(t, IsCode(wrapped, ErrCodeDatabaseError))
	assert.False(t, IsCode(wrapped, ErrCodeCacheError))

	// A second wrap with CodeUnknown keeps the original classification.
	outer := Wrap(wrapped, CodeUnknown, "discovery run failed")
	assert.Equal(t, ErrCodeDatabaseError, outer.Code)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeDatabaseError, "noop"))
}

func TestIsCodeTraversesFmtWrapping(t *testing.T) {
	inner := New(ErrCodeProfileNotFound, "no profile for workspace")
	outer := fmt.Errorf("loading weights: %w", inner)

	assert.True(t, IsCode(outer, ErrCodeProfileNotFound))
	assert.True(t, IsNotFound(outer))
	assert.False(t, IsCode(outer, ErrCodeInsufficientData))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, ErrCodeDiscoveryLocked, GetCode(New(ErrCodeDiscoveryLocked, "held")))
}

func TestConvenienceFactories(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, NotFound("missing").Code)
	assert.Equal(t, ErrCodeBadRequest, InvalidParam("bad").Code)
	assert.Equal(t, ErrCodeInternal, Internal("boom").Code)
	assert.Equal(t, ErrCodeConflict, Conflict("held").Code)
}

//Personal.AI order the ending
