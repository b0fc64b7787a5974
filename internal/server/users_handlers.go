package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/branchd-dev/remotecfg/internal/apiclient"
	"github.com/branchd-dev/remotecfg/internal/views"
)

const (
	loadUsersError = "Failed to load users"
	addUserError   = "Failed to add user"
)

// CreateUserForm is the add-user form body
type CreateUserForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	IsAdmin  bool   `form:"isAdmin"`
}

func (s *Server) usersPage(c *gin.Context) {
	sessionData, _ := GetSessionData(c)
	page := views.UsersPage{
		Layout:   views.Layout{User: sessionData},
		ShowForm: c.Query("add") == "1",
	}

	users, err := s.users.List(c.Request.Context(), sessionData)
	page.Users = users
	if err != nil {
		page.State = views.StateError
		page.Error = apiclient.MessageOr(err, loadUsersError)
		c.HTML(upstreamStatus(err), views.PageUsers, page)
		return
	}

	page.State = views.StateReady
	c.HTML(http.StatusOK, views.PageUsers, page)
}

func (s *Server) createUser(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var form CreateUserForm
	bindErr := c.ShouldBind(&form)

	// A failed submit keeps the list as it was and the form open
	page := views.UsersPage{
		Layout:   views.Layout{User: sessionData},
		State:    views.StateError,
		Users:    s.users.Previous(sessionData.SessionID),
		ShowForm: true,
		Form:     views.UserForm{Username: form.Username, IsAdmin: form.IsAdmin},
	}

	if bindErr != nil {
		page.Error = bindErrorMessage(bindErr)
		c.HTML(http.StatusBadRequest, views.PageUsers, page)
		return
	}

	_, err := s.users.Create(c.Request.Context(), sessionData, apiclient.CreateUserRequest{
		Username: form.Username,
		Password: form.Password,
		IsAdmin:  form.IsAdmin,
	})
	if err != nil {
		page.Error = apiclient.MessageOr(err, addUserError)
		c.HTML(upstreamStatus(err), views.PageUsers, page)
		return
	}

	c.Redirect(http.StatusSeeOther, usersPath)
}
