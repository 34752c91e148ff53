package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("hunter2")
	require.NoError(t, err)
	h2, err := HashPassword("hunter2")
	require.NoError(t, err)

	// Per-call random salt: identical inputs never collide.
	assert.NotEqual(t, h1, h2)
	assert.True(t, CheckPassword(h1, "hunter2"))
	assert.True(t, CheckPassword(h2, "hunter2"))
}

func TestCheckPassword(t *testing.T) {
	h, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.True(t, CheckPassword(h, "hunter2"))
	assert.False(t, CheckPassword(h, "hunter3"))
	assert.False(t, CheckPassword(h, ""))
}

func TestCheckPasswordMalformedDigest(t *testing.T) {
	assert.False(t, CheckPassword("", "hunter2"))
	assert.False(t, CheckPassword("not-a-bcrypt-digest", "hunter2"))
}
