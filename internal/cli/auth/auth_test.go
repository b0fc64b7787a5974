package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestTokenRoundTrip(t *testing.T) {
	keyring.MockInit()

	_, err := Default.LoadToken("http://localhost:3001/api")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	require.NoError(t, Default.SaveToken("http://localhost:3001/api", "tok"))
	require.NoError(t, Default.SaveToken("https://prod.example.com/api", "prod-tok"))

	token, err := Default.LoadToken("http://localhost:3001/api")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	require.NoError(t, Default.DeleteToken("http://localhost:3001/api"))
	require.NoError(t, Default.DeleteToken("http://localhost:3001/api"), "deleting twice is fine")

	_, err = Default.LoadToken("http://localhost:3001/api")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	token, err = Default.LoadToken("https://prod.example.com/api")
	require.NoError(t, err)
	assert.Equal(t, "prod-tok", token)
}

func TestTokenKeyIgnoresTrailingSlash(t *testing.T) {
	keyring.MockInit()

	require.NoError(t, Default.SaveToken("http://localhost:3001/api/", "tok"))

	token, err := Default.LoadToken("http://localhost:3001/api")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	stored, err := keyring.Get(keyringService, "api-token:http://localhost:3001/api")
	require.NoError(t, err)
	assert.Equal(t, "tok", stored)
}
