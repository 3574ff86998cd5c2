package v1_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	logicv1 "github.com/duynhne/moodtunes-service/internal/logic/v1"
)

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := logicv1.NewBcryptHasher(bcrypt.MinCost)

	t.Run("produces bcrypt hash", func(t *testing.T) {
		hash, err := hasher.Hash("p1")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$2a$"))
	})

	t.Run("same password produces different hashes (salt)", func(t *testing.T) {
		h1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		h2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.ErrorIs(t, err, logicv1.ErrEmptyPassword)
	})

	t.Run("rejects password over 72 bytes", func(t *testing.T) {
		_, err := hasher.Hash(strings.Repeat("a", 73))
		assert.ErrorIs(t, err, logicv1.ErrPasswordTooLong)
	})

	t.Run("out of range cost falls back to default", func(t *testing.T) {
		hash, err := logicv1.NewBcryptHasher(99).Hash("p")
		require.NoError(t, err)
		cost, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, bcrypt.DefaultCost, cost)
	})
}

func TestBcryptHasher_Verify(t *testing.T) {
	hasher := logicv1.NewBcryptHasher(bcrypt.MinCost)

	passwords := []string{"p1", "correct horse battery staple", "ünïcødé", " spaced "}
	for _, p := range passwords {
		hash, err := hasher.Hash(p)
		require.NoError(t, err)

		ok, err := hasher.Verify(p, hash)
		require.NoError(t, err)
		assert.True(t, ok, "password %q should verify", p)

		ok, err = hasher.Verify(p+"x", hash)
		require.NoError(t, err)
		assert.False(t, ok, "password %q+x should not verify", p)
	}

	t.Run("malformed hashes return ErrInvalidHash", func(t *testing.T) {
		for _, bad := range []string{"", "not-a-hash", "$2a$10$short", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"} {
			ok, err := hasher.Verify("p1", bad)
			assert.False(t, ok)
			assert.ErrorIs(t, err, logicv1.ErrInvalidHash, "hash %q", bad)
		}
	})
}
