package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient starts a mock API server and returns a client pointed at it
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(srv.URL+"/api", 5*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestGetRemoteConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "one", body: `{"value":1}`, want: true},
		{name: "zero", body: `{"value":0}`, want: false},
		{name: "bool true", body: `{"value":true}`, want: true},
		{name: "string one", body: `{"value":"1"}`, want: true},
		{name: "string zero", body: `{"value":"0"}`, want: false},
		{name: "null", body: `{"value":null}`, want: false},
		{name: "missing", body: `{}`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/remote-configs", r.URL.Path)
				assert.Empty(t, r.Header.Get("Authorization"))
				writeJSON(w, http.StatusOK, tt.body)
			})

			got, err := c.GetRemoteConfig(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetRemoteConfig_Failures(t *testing.T) {
	t.Run("non json body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `<html>`)
		})
		_, err := c.GetRemoteConfig(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})

	t.Run("server error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, `{"message":"db down"}`)
		})
		_, err := c.GetRemoteConfig(context.Background())

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.Equal(t, "db down", apiErr.Message)
	})

	t.Run("network error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		_, err := New(srv.URL, time.Second).GetRemoteConfig(context.Background())
		require.Error(t, err)
		assert.Equal(t, "Failed to fetch config value", MessageOr(err, "Failed to fetch config value"))
	})
}

func TestSetRemoteConfig_ReturnsServerValue(t *testing.T) {
	var received map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		// Server refuses the change and echoes the stored value
		writeJSON(w, http.StatusOK, `{"value":0}`)
	})

	got, err := c.SetRemoteConfig(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, got)
	assert.Equal(t, float64(1), received["value"])
}

func TestListUsers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"users":[
			{"id":1,"username":"root","isAdmin":true,"created_at":"2024-03-01T10:00:00Z"},
			{"id":2,"username":"ops","isAdmin":false,"created_at":"2024-03-02 11:30:00"}
		]}`)
	})

	users, err := c.ListUsers(context.Background(), "tok-123")
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, int64(1), users[0].ID)
	assert.Equal(t, "Admin", users[0].Role())
	assert.Equal(t, 2024, users[0].CreatedAt.Year())
	assert.Equal(t, "User", users[1].Role())
	assert.Equal(t, 30, users[1].CreatedAt.Minute())
}

func TestListUsers_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "users not an array", status: http.StatusOK, body: `{"users":{}}`, message: "Invalid API response"},
		{name: "users missing", status: http.StatusOK, body: `{"data":[]}`, message: "Invalid API response"},
		{name: "server message", status: http.StatusForbidden, body: `{"message":"Admin access required"}`, message: "Admin access required"},
		{name: "no message", status: http.StatusUnauthorized, body: ``, message: "Failed to load users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			users, err := c.ListUsers(context.Background(), "tok")
			require.Error(t, err)
			assert.Nil(t, users)
			assert.Equal(t, tt.message, MessageOr(err, "Failed to load users"))
		})
	}
}

func TestCreateUser(t *testing.T) {
	t.Run("wrapped response", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var req CreateUserRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, CreateUserRequest{Username: "new", Password: "pw", IsAdmin: true}, req)
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusCreated, `{"user":{"id":7,"username":"new","isAdmin":true}}`)
		})

		user, err := c.CreateUser(context.Background(), "tok", CreateUserRequest{Username: "new", Password: "pw", IsAdmin: true})
		require.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)
	})

	t.Run("empty body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		user, err := c.CreateUser(context.Background(), "tok", CreateUserRequest{Username: "new", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, "new", user.Username)
	})

	t.Run("conflict", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusConflict, `{"message":"Username already exists"}`)
		})

		_, err := c.CreateUser(context.Background(), "tok", CreateUserRequest{Username: "dup", Password: "pw"})
		require.Error(t, err)
		assert.Equal(t, "Username already exists", MessageOr(err, "Failed to add user"))
	})
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/session/login", r.URL.Path)

		var req LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, `{"error":"Invalid username or password"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"token":"jwt-abc","user":{"username":"root","isAdmin":true}}`)
	})
	c.SetLoginPath("session/login")

	resp, err := c.Login(context.Background(), "root", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", resp.Token)
	assert.True(t, resp.User.IsAdmin)

	_, err = c.Login(context.Background(), "root", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid username or password", MessageOr(err, "Login failed"))
}

func TestLogin_MissingToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"user":{"username":"root"}}`)
	})

	_, err := c.Login(context.Background(), "root", "pw")
	assert.True(t, errors.Is(err, ErrInvalidResponse))
}

func TestTimestamp_Unparsable(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.True(t, ts.Time.IsZero())
	assert.Equal(t, "yesterday", ts.String())

	out, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.JSONEq(t, `"yesterday"`, string(out))
}
