package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	first, err := Generate()
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := Generate()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestHashAndVerify(t *testing.T) {
	t.Run("round trip verifies", func(t *testing.T) {
		hash, err := Hash("ops-key")
		require.NoError(t, err)
		assert.NotEqual(t, "ops-key", hash)
		assert.NoError(t, Verify("ops-key", hash))
	})

	t.Run("wrong secret fails verification", func(t *testing.T) {
		hash, err := Hash("ops-key")
		require.NoError(t, err)
		assert.Error(t, Verify("other-key", hash))
	})

	t.Run("empty secret cannot be hashed", func(t *testing.T) {
		_, err := Hash("")
		assert.Error(t, err)
	})
}
