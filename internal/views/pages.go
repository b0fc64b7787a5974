package views

import (
	"github.com/branchd-dev/remotecfg/internal/apiclient"
	"github.com/branchd-dev/remotecfg/internal/auth"
	"github.com/branchd-dev/remotecfg/internal/remoteconfig"
)

// State is the outcome a screen renders
type State int

const (
	StateLoading State = iota
	StateError
	StateReady
)

func (s State) String() string {
	switch s {
	case StateError:
		return "error"
	case StateReady:
		return "ready"
	default:
		return "loading"
	}
}

func (s State) IsLoading() bool { return s == StateLoading }
func (s State) IsError() bool   { return s == StateError }
func (s State) IsReady() bool   { return s == StateReady }

// Layout captures shared chrome data
type Layout struct {
	User *auth.SessionData
}

// LoginPage is the sign-in form
type LoginPage struct {
	Layout
	Error    string
	Username string
}

// DashboardPage shows the remote config flag
type DashboardPage struct {
	Layout
	State  State
	Error  string
	Config remoteconfig.Snapshot
}

// UserForm is the add-user form state echoed back after a failed submit.
// The password is never echoed.
type UserForm struct {
	Username string
	IsAdmin  bool
}

// UsersPage lists users and hosts the add-user form
type UsersPage struct {
	Layout
	State    State
	Error    string
	Users    []apiclient.User
	ShowForm bool
	Form     UserForm
}

// UnauthorizedPage is shown when a non-admin opens an admin-only page
type UnauthorizedPage struct {
	Layout
}
