package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"basegraph.app/helpdesk/common/logger"
	"basegraph.app/helpdesk/internal/model"
	"basegraph.app/helpdesk/internal/service"
	"github.com/gin-gonic/gin"
)

type contextKey string

const (
	SessionCookieName = "portal_session"

	sessionContextKey contextKey = "session"
)

// RequireAuth resolves the session cookie and aborts with 401 when it is missing or stale.
// The session is attached to the request context for GetSession and GetIdentity.
func RequireAuth(authService service.AuthService, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		session, err := authService.ValidateSession(ctx, token)
		if err != nil {
			if errors.Is(err, service.ErrSessionExpired) || errors.Is(err, service.ErrInvalidSession) {
				ClearSessionCookie(c, secureCookies)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
				return
			}
			slog.ErrorContext(ctx, "failed to validate session", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to validate session"})
			return
		}

		ctx = WithSession(ctx, session)
		ctx = logger.WithLogFields(ctx, logger.LogFields{
			SessionID:      logger.Ptr(session.ID),
			ExternalUserID: logger.Ptr(session.Identity.ExternalID),
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func GetSession(ctx context.Context) *model.Session {
	session, _ := ctx.Value(sessionContextKey).(*model.Session)
	return session
}

// GetIdentity returns the identity of the authenticated caller, or nil.
func GetIdentity(ctx context.Context) *model.Identity {
	session := GetSession(ctx)
	if session == nil {
		return nil
	}
	return &session.Identity
}

// WithSession attaches session to ctx the way RequireAuth does.
func WithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

func SetSessionCookie(c *gin.Context, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", secure, true)
}
