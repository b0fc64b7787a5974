package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/branchd-dev/remotecfg/internal/auth"
	"github.com/branchd-dev/remotecfg/internal/config"
	"github.com/branchd-dev/remotecfg/internal/sessions"
)

const (
	loginPath        = "/login"
	logoutPath       = "/logout"
	dashboardPath    = "/dashboard"
	usersPath        = "/dashboard/users"
	unauthorizedPath = "/unauthorized"

	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	sessionKey      = "session"
)

var (
	ErrMissingCookie  = errors.New("missing session cookie")
	ErrInvalidSession = errors.New("invalid session cookie")
)

func setSession(c *gin.Context, sessionData *auth.SessionData) {
	c.Set(sessionKey, sessionData)
}

// GetSessionData returns the session attached by RequireSession
func GetSessionData(c *gin.Context) (*auth.SessionData, bool) {
	session, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}

	sessionData, ok := session.(*auth.SessionData)
	return sessionData, ok
}

// loadSession resolves the session cookie to a live session. Anything that
// is not a validly signed token naming an unexpired session is an error.
func loadSession(c *gin.Context, store *sessions.Store, signer *auth.Signer, cfg config.SessionConfig) (*auth.SessionData, error) {
	cookie, err := c.Cookie(cfg.CookieName)
	if err != nil || cookie == "" {
		return nil, ErrMissingCookie
	}

	claims, err := signer.ValidateToken(cookie)
	if err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}

	session, err := store.Get(c.Request.Context(), claims.SessionID)
	if err != nil {
		return nil, err
	}

	return auth.FromModel(session), nil
}

func setSessionCookie(c *gin.Context, cfg config.SessionConfig, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, token, int(cfg.TTL.Seconds()), "/", "", cfg.CookieSecure, true)
}

func clearSessionCookie(c *gin.Context, cfg config.SessionConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, "", -1, "/", "", cfg.CookieSecure, true)
}

// RequireSession sends visitors without a live session to the login page
func RequireSession(store *sessions.Store, signer *auth.Signer, cfg config.SessionConfig, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionData, err := loadSession(c, store, signer, cfg)
		if err != nil {
			if !errors.Is(err, ErrMissingCookie) {
				log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("Rejected session cookie")
				clearSessionCookie(c, cfg)
			}
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}

		setSession(c, sessionData)
		c.Next()
	}
}

// RequireSessionJSON is RequireSession for JSON endpoints
func RequireSessionJSON(store *sessions.Store, signer *auth.Signer, cfg config.SessionConfig, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionData, err := loadSession(c, store, signer, cfg)
		if err != nil {
			respondWithError(c, log, http.StatusUnauthorized, err, "Unauthorized")
			return
		}

		setSession(c, sessionData)
		c.Next()
	}
}

// RequireAdmin sends signed-in non-admins to the unauthorized page
func RequireAdmin(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionData, exists := GetSessionData(c)
		if !exists {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}

		if !sessionData.IsAdmin {
			log.Info().Str("username", sessionData.Username).Str("path", c.Request.URL.Path).Msg("Admin access denied")
			c.Redirect(http.StatusFound, unauthorizedPath)
			c.Abort()
			return
		}

		c.Next()
	}
}

// requestIDMiddleware keeps a client X-Request-ID only when it is a UUID
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if parsed, err := uuid.Parse(id); err == nil {
			id = parsed.String()
		} else {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func respondWithError(c *gin.Context, log zerolog.Logger, statusCode int, err error, message string) {
	log.Warn().Err(err).Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
	c.Abort()
}
