package apiclient

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// FlagValue decodes the remote config "value" field into a boolean.
// Numbers are true when non-zero, numeric strings by their value, other
// strings when non-empty, null is false, objects and arrays are true.
type FlagValue bool

func (v *FlagValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch val := raw.(type) {
	case nil:
		*v = false
	case bool:
		*v = FlagValue(val)
	case float64:
		*v = val != 0
	case string:
		s := strings.TrimSpace(val)
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			*v = n != 0
		} else {
			*v = FlagValue(s != "" && !strings.EqualFold(s, "false"))
		}
	default:
		*v = true
	}

	return nil
}

// Int returns the wire form of a flag value
func (v FlagValue) Int() int {
	if v {
		return 1
	}
	return 0
}

type remoteConfigPayload struct {
	Value FlagValue `json:"value"`
}

type remoteConfigRequest struct {
	Value int `json:"value"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp accepts the date formats the API is known to emit. Unparsable
// values are kept verbatim in Raw.
type Timestamp struct {
	time.Time
	Raw string
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	*t = Timestamp{Raw: s}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			break
		}
	}

	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		if t.Raw == "" {
			return []byte("null"), nil
		}
		return json.Marshal(t.Raw)
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// String formats the timestamp for display
func (t Timestamp) String() string {
	if t.Time.IsZero() {
		return t.Raw
	}
	return t.Time.Local().Format("2006-01-02 15:04:05")
}

// User represents an account managed by the API
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt Timestamp `json:"created_at"`
}

// Role returns the display role for a user
func (u User) Role() string {
	if u.IsAdmin {
		return "Admin"
	}
	return "User"
}

// CreateUserRequest represents the user creation request body
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionUser is the identity returned by a successful login
type SessionUser struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}
