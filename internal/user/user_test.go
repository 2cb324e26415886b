package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndCheckPassword(t *testing.T) {
	usr := &User{}

	err := usr.SetPassword("secret1")
	require.NoError(t, err)
	require.NotEmpty(t, usr.PasswordHash)
	assert.NotEqual(t, "secret1", usr.PasswordHash, "the plaintext password must never be stored")

	assert.True(t, usr.CheckPassword("secret1"))
	assert.False(t, usr.CheckPassword("secret2"))
}

func TestCheckPasswordWithoutStoredHash(t *testing.T) {
	usr := &User{}

	assert.False(t, usr.CheckPassword(""))
	assert.False(t, usr.CheckPassword("anything"))
}
