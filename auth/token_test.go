package auth

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashTokenDeterministic(t *testing.T) {
	first := HashToken("some-raw-token")
	second := HashToken("some-raw-token")
	assert.Equal(t, first, second, "re-hashing must reproduce the lookup key")
	assert.Len(t, first, 64)

	_, err := hex.DecodeString(first)
	require.NoError(t, err)

	assert.NotEqual(t, first, HashToken("some-other-token"))
}

func TestNewTokenEntropy(t *testing.T) {
	a, err := NewToken()
	require.NoError(t, err)
	b, err := NewToken()
	require.NoError(t, err)

	assert.Len(t, a, tokenBytes*2)
	assert.NotEqual(t, a, b)

	_, err = hex.DecodeString(a)
	require.NoError(t, err)
}

func TestNewJoinCodeShape(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := NewJoinCode()
		require.NoError(t, err)
		assert.Len(t, code, joinCodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(joinCodeAlphabet, r), "unexpected rune %q", r)
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1, "50 codes should not all collide")
}
