package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/branchd-dev/remotecfg/internal/apiclient"
	"github.com/branchd-dev/remotecfg/internal/views"
)

// LoginForm is the sign-in form body
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// SessionResponse describes the signed-in user
type SessionResponse struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// bindErrorMessage turns a form binding error into a message for the page
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", fe.Field())
		default:
			return fmt.Sprintf("Invalid %s", fe.Field())
		}
	}
	return "Invalid form submission"
}

// upstreamStatus maps an API failure to the status of the rendered page
func upstreamStatus(err error) int {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return apiErr.StatusCode
	}
	return http.StatusBadGateway
}

func (s *Server) loginPage(c *gin.Context) {
	if _, err := loadSession(c, s.sessions, s.signer, s.config.Session); err == nil {
		c.Redirect(http.StatusFound, dashboardPath)
		return
	}

	s.renderLogin(c, http.StatusOK, "", "")
}

func (s *Server) renderLogin(c *gin.Context, status int, message, username string) {
	c.HTML(status, views.PageLogin, views.LoginPage{
		Error:    message,
		Username: username,
	})
}

func (s *Server) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderLogin(c, http.StatusBadRequest, bindErrorMessage(err), form.Username)
		return
	}

	resp, err := s.authn.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		s.logger.Warn().Err(err).Str("username", form.Username).Msg("Login failed")
		s.renderLogin(c, upstreamStatus(err), apiclient.MessageOr(err, "Login failed"), form.Username)
		return
	}

	session, err := s.sessions.Create(c.Request.Context(), resp.User.Username, resp.User.IsAdmin, resp.Token, s.config.Session.TTL)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create session")
		s.renderLogin(c, http.StatusInternalServerError, "Internal server error", form.Username)
		return
	}

	token, err := s.signer.GenerateToken(session.ID, session.Username, session.IsAdmin, session.ExpiresAt)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign session cookie")
		s.renderLogin(c, http.StatusInternalServerError, "Internal server error", form.Username)
		return
	}

	setSessionCookie(c, s.config.Session, token)

	s.logger.Info().Str("username", session.Username).Bool("is_admin", session.IsAdmin).Msg("User logged in")

	c.Redirect(http.StatusSeeOther, dashboardPath)
}

func (s *Server) logout(c *gin.Context) {
	if sessionData, err := loadSession(c, s.sessions, s.signer, s.config.Session); err == nil {
		if err := s.sessions.Delete(c.Request.Context(), sessionData.SessionID); err != nil {
			s.logger.Error().Err(err).Msg("Failed to delete session")
		}
		s.users.Forget(sessionData.SessionID)
		s.logger.Info().Str("username", sessionData.Username).Msg("User logged out")
	}

	clearSessionCookie(c, s.config.Session)
	c.Redirect(http.StatusSeeOther, loginPath)
}

// unauthorizedPage needs no session; a signed-in user also gets a link back
func (s *Server) unauthorizedPage(c *gin.Context) {
	page := views.UnauthorizedPage{}
	if sessionData, err := loadSession(c, s.sessions, s.signer, s.config.Session); err == nil {
		page.User = sessionData
	}

	c.HTML(http.StatusForbidden, views.PageUnauthorized, page)
}

// @Summary Get current session
// @Description Get the user behind the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} SessionResponse
// @Failure 401 {object} map[string]interface{}
// @Router /api/session [get]
func (s *Server) getSession(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		Username: sessionData.Username,
		IsAdmin:  sessionData.IsAdmin,
	})
}
