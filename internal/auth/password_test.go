package auth

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 4)
	assert.Equal(t, "pbkdf2-sha512", parts[0])

	iters, err := strconv.Atoi(parts[1])
	require.NoError(t, err)
	assert.Equal(t, 100_000, iters)

	// 16-byte salt and 64-byte digest, hex encoded.
	assert.Len(t, parts[2], 32)
	assert.Len(t, parts[3], 128)
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	first, err := HashPassword("Sup3rSecret")
	require.NoError(t, err)

	second, err := HashPassword("Sup3rSecret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same password must not produce the same encoded hash twice")
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret")
	require.NoError(t, err)

	ok, err := VerifyPassword("Sup3rSecret", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{name: "empty", hash: ""},
		{name: "missing parts", hash: "pbkdf2-sha512$100000"},
		{name: "unknown scheme", hash: "argon2id$100000$aabb$ccdd"},
		{name: "bad iteration count", hash: "pbkdf2-sha512$abc$aabb$ccdd"},
		{name: "bad salt hex", hash: "pbkdf2-sha512$100000$zz$ccdd"},
		{name: "bad digest hex", hash: "pbkdf2-sha512$100000$aabb$zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := VerifyPassword("Sup3rSecret", tt.hash)
			assert.Error(t, err)
			assert.False(t, ok)
		})
	}
}

func TestVerifyPassword_RespectsStoredIterations(t *testing.T) {
	// A structurally valid hash with a non-default iteration count is not an
	// error; it is verified against its stored parameters.
	legacy := "pbkdf2-sha512$1000$" + strings.Repeat("ab", 16) + "$" + strings.Repeat("cd", 64)

	ok, err := VerifyPassword("anything", legacy)
	require.NoError(t, err)
	assert.False(t, ok)
}
