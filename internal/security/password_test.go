package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordOnce(t *testing.T) {
	hash, err := HashPassword("admin")
	require.NoError(t, err)
	assert.Len(t, hash, 60)
	assert.True(t, IsHashed(hash))
	assert.True(t, CheckPassword(hash, "admin"))

	again, err := HashPassword(hash)
	require.NoError(t, err)
	assert.Equal(t, hash, again)
	assert.True(t, CheckPassword(again, "admin"))
}

func TestIsHashed(t *testing.T) {
	assert.False(t, IsHashed("admin"))
	assert.False(t, IsHashed(strings.Repeat("x", 60)))
}

func TestCheckPasswordWrong(t *testing.T) {
	hash, err := HashPassword("admin")
	require.NoError(t, err)
	assert.False(t, CheckPassword(hash, "Admin"))
}
