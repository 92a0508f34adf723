package utils

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomHex(t *testing.T) {
	value, err := RandomHex(32)
	require.NoError(t, err)

	assert.Len(t, value, 64)
	_, err = hex.DecodeString(value)
	assert.NoError(t, err)

	other, err := RandomHex(32)
	require.NoError(t, err)
	assert.NotEqual(t, value, other)
}

func TestNewSigningKeyPair(t *testing.T) {
	keys, err := NewSigningKeyPair()
	require.NoError(t, err)

	assert.Len(t, keys.Access, 64)
	assert.Len(t, keys.Refresh, 64)
	assert.NotEqual(t, keys.Access, keys.Refresh)
}
