// Package auth keeps the CLI's API tokens in the OS keyring, one entry per
// API base URL.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// keyringService groups every remotecfg entry in the keyring
const keyringService = "remotecfg"

// ErrNotAuthenticated is returned when no token is stored for an API
var ErrNotAuthenticated = errors.New("not authenticated. Please run 'remotecfg login' first")

// TokenStore saves, loads and deletes the token for an API base URL.
// Commands take one so tests can swap in an in-memory store.
type TokenStore interface {
	SaveToken(apiURL, token string) error
	LoadToken(apiURL string) (string, error)
	DeleteToken(apiURL string) error
}

// Keyring is the TokenStore backed by the OS keyring
type Keyring struct {
	Service string
}

// Default is the store the CLI uses outside tests
var Default TokenStore = Keyring{Service: keyringService}

// account names the keyring entry for an API. A trailing slash does not
// make a second entry.
func account(apiURL string) string {
	return "api-token:" + strings.TrimRight(apiURL, "/")
}

func (k Keyring) SaveToken(apiURL, token string) error {
	if err := keyring.Set(k.Service, account(apiURL), token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (k Keyring) LoadToken(apiURL string) (string, error) {
	token, err := keyring.Get(k.Service, account(apiURL))
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return "", ErrNotAuthenticated
	case err != nil:
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// DeleteToken is a no-op when nothing is stored
func (k Keyring) DeleteToken(apiURL string) error {
	err := keyring.Delete(k.Service, account(apiURL))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
