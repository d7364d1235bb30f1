package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundtrip(t *testing.T) {
	tokens := &Tokens{Secret: []byte("test-secret"), TTL: time.Hour}

	id := Identity{ID: 42, Email: "seller@example.com", Role: RoleSeller}
	tok, err := tokens.Sign(id)
	require.NoError(t, err)

	got, err := tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	a := &Tokens{Secret: []byte("secret-a"), TTL: time.Hour}
	b := &Tokens{Secret: []byte("secret-b"), TTL: time.Hour}

	tok, err := a.Sign(Identity{ID: 1, Role: RoleAdmin})
	require.NoError(t, err)

	_, err = b.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	tokens := &Tokens{Secret: []byte("test-secret"), TTL: -time.Minute}

	tok, err := tokens.Sign(Identity{ID: 1, Role: RoleCustomer})
	require.NoError(t, err)

	_, err = tokens.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tokens := &Tokens{Secret: []byte("test-secret"), TTL: time.Hour}
	_, err := tokens.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHasher(t *testing.T) {
	h := &Hasher{Cost: 4} // minimum cost keeps the test fast
	hash, err := h.Hash("hunter2")
	require.NoError(t, err)
	assert.True(t, h.Compare(hash, "hunter2"))
	assert.False(t, h.Compare(hash, "hunter3"))
}

func TestRandomPassword(t *testing.T) {
	a := RandomPassword()
	b := RandomPassword()
	assert.Len(t, a, 12)
	assert.NotEqual(t, a, b)
}
