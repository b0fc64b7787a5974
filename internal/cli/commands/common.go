package commands

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/branchd-dev/remotecfg/internal/apiclient"
	"github.com/branchd-dev/remotecfg/internal/cli/auth"
	"github.com/branchd-dev/remotecfg/internal/cli/userconfig"
)

const (
	apiURLEnv   = "REMOTECFG_API_URL"
	usernameEnv = "REMOTECFG_USERNAME"
	passwordEnv = "REMOTECFG_PASSWORD"

	requestTimeout    = 30 * time.Second
	defaultConsoleURL = "http://localhost:8080"
)

// Options holds flags shared by every command
type Options struct {
	APIURL string
}

// Replaced in tests
var (
	tokenStore   auth.TokenStore = auth.Default
	readPassword                 = promptPassword
	openBrowser                  = openInBrowser
)

// resolveAPIURL picks the API URL from the flag, then REMOTECFG_API_URL, then
// the URL saved by the last login
func resolveAPIURL(flagValue string) (string, error) {
	apiURL := flagValue
	if apiURL == "" {
		apiURL = os.Getenv(apiURLEnv)
	}
	if apiURL == "" {
		cfg, err := userconfig.Load()
		if err != nil {
			return "", err
		}
		apiURL = cfg.APIURL
	}
	if apiURL == "" {
		return "", fmt.Errorf("no API URL configured. Use --api, set %s or run 'remotecfg login --api <url>'", apiURLEnv)
	}

	return normalizeURL(apiURL)
}

func normalizeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid URL %q: must be an absolute http(s) URL", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

func newAPIClient(apiURL string) *apiclient.Client {
	return apiclient.New(apiURL, requestTimeout)
}

// promptPassword reads a password from the terminal without echoing it
func promptPassword(prompt string) (string, error) {
	// Check if stdin is a terminal (not piped)
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("password is required in non-interactive mode (use --password flag or %s env var)", passwordEnv)
	}

	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(bytePassword), nil
}

func flagLabel(value bool) string {
	if value {
		return "ACTIVE"
	}
	return "INACTIVE"
}
