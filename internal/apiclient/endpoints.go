package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// GetRemoteConfig fetches the current flag value. No auth header is sent.
func (c *Client) GetRemoteConfig(ctx context.Context) (bool, error) {
	var payload remoteConfigPayload
	if err := c.do(ctx, http.MethodGet, remoteConfigsPath, "", nil, &payload); err != nil {
		return false, fmt.Errorf("failed to fetch remote config: %w", err)
	}
	return bool(payload.Value), nil
}

// SetRemoteConfig updates the flag and returns the value echoed by the
// server, which may differ from the requested one.
func (c *Client) SetRemoteConfig(ctx context.Context, value bool) (bool, error) {
	reqBody := remoteConfigRequest{Value: FlagValue(value).Int()}

	var payload remoteConfigPayload
	if err := c.do(ctx, http.MethodPost, remoteConfigsPath, "", reqBody, &payload); err != nil {
		return false, fmt.Errorf("failed to update remote config: %w", err)
	}
	return bool(payload.Value), nil
}

// ListUsers returns all users. The response must be {"users": [...]}.
func (c *Client) ListUsers(ctx context.Context, token string) ([]User, error) {
	var payload struct {
		Users json.RawMessage `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, usersPath, token, nil, &payload); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	raw := bytes.TrimSpace(payload.Users)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("failed to list users: %w", ErrInvalidResponse)
	}

	var users []User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("failed to list users: %w: %v", ErrInvalidResponse, err)
	}

	return users, nil
}

// CreateUser creates a new user. The API answers with the created user,
// either bare or wrapped in {"user": ...}; when the body carries neither the
// returned user is built from the request.
func (c *Client) CreateUser(ctx context.Context, token string, req CreateUserRequest) (*User, error) {
	raw, err := c.send(ctx, http.MethodPost, usersPath, token, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	var wrapped struct {
		User *User `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.User != nil {
		return wrapped.User, nil
	}

	var user User
	if err := json.Unmarshal(raw, &user); err == nil && user.Username != "" {
		return &user, nil
	}

	return &User{Username: req.Username, IsAdmin: req.IsAdmin}, nil
}

// Login authenticates against the API and returns its bearer token
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	reqBody := LoginRequest{
		Username: username,
		Password: password,
	}

	var loginResp LoginResponse
	if err := c.do(ctx, http.MethodPost, c.loginPath, "", reqBody, &loginResp); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	if loginResp.Token == "" {
		return nil, fmt.Errorf("login failed: %w: missing token", ErrInvalidResponse)
	}
	if loginResp.User.Username == "" {
		loginResp.User.Username = username
	}

	return &loginResp, nil
}
