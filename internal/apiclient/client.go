// Package apiclient talks to the external remote-config API. It is shared by
// the web console and the CLI.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	remoteConfigsPath = "/remote-configs"
	usersPath         = "/users"
	defaultLoginPath  = "/auth/login"

	maxResponseBytes = 1 << 20
)

// ErrInvalidResponse is returned when the API answers 2xx with a body of the wrong shape
var ErrInvalidResponse = errors.New("invalid API response")

// APIError is returned for non-2xx responses
type APIError struct {
	StatusCode int
	Message    string // Server-provided "message" (or "error") field, may be empty
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// MessageOr returns the text a user should see for err: the server-provided
// message when there is one, the invalid-response text for shape errors, and
// fallback for everything else.
func MessageOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrInvalidResponse) {
		return "Invalid API response"
	}
	return fallback
}

// Client represents an HTTP client for the remote-config API
type Client struct {
	baseURL    string
	loginPath  string
	httpClient *http.Client
}

// New creates a new API client. baseURL is the API root, e.g. https://api.example.com/api
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		loginPath: defaultLoginPath,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetLoginPath overrides the path of the login endpoint
func (c *Client) SetLoginPath(path string) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	c.loginPath = path
}

// do sends a request and decodes a 2xx JSON body into out (when non-nil).
// token, when non-empty, is sent as a bearer token.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	data, err := c.send(ctx, method, path, token, body)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return nil
}

// send performs the request and returns the body of a 2xx response.
// Non-2xx responses become *APIError.
func (c *Client) send(ctx context.Context, method, path, token string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
		}
	}

	return data, nil
}

// errorMessage extracts {"message": ...} or {"error": ...} from an error body
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
