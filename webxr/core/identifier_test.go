package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierAcquireReleaseReuse(t *testing.T) {
	ownerA := &struct{}{}
	ownerB := &struct{}{}

	a := IdentifierAcquireNewID(ownerA)
	b := IdentifierAcquireNewID(ownerB)
	assert.NotEqual(t, a, b)

	// A released id is the first candidate for reuse.
	require.NoError(t, IdentifierReleaseID(a))
	c := IdentifierAcquireNewID(ownerA)
	assert.Equal(t, a, c)

	require.NoError(t, IdentifierReleaseID(b))
	require.NoError(t, IdentifierReleaseID(c))
}

func TestIdentifierReleaseOutOfRange(t *testing.T) {
	assert.Error(t, IdentifierReleaseID(-1))
	assert.Error(t, IdentifierReleaseID(1 << 20))
}
