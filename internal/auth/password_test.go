package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasherRoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("hunter42")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter42", hash)

	assert.True(t, h.Compare(hash, "hunter42"))
	assert.False(t, h.Compare(hash, "hunter43"))
	assert.False(t, h.Compare("not-a-hash", "hunter42"))
}

func TestHasherClampsCost(t *testing.T) {
	h := NewHasher(-1)

	hash, err := h.Hash("hunter42")
	require.NoError(t, err)
	assert.True(t, h.Compare(hash, "hunter42"))
}
