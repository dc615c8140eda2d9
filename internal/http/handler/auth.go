package handler

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"basegraph.app/helpdesk/internal/http/dto"
	"basegraph.app/helpdesk/internal/http/middleware"
	"basegraph.app/helpdesk/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	stateCookieName   = "portal_oauth_state"
	stateCookieMaxAge = 600
)

type AuthConfig struct {
	SuccessURL    string
	FailureURL    string
	SessionMaxAge time.Duration
	IsProduction  bool
}

type AuthHandler struct {
	authService service.AuthService
	cfg         AuthConfig
}

func NewAuthHandler(authService service.AuthService, cfg AuthConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

func (h *AuthHandler) Login(c *gin.Context) {
	state, err := generateState()
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to generate state", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to initiate login"})
		return
	}

	authURL, err := h.authService.GetAuthorizationURL(state)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to get authorization URL", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to initiate login"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, state, stateCookieMaxAge, "/", "", h.cfg.IsProduction, true)

	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

func (h *AuthHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()

	code := c.Query("code")
	state := c.Query("state")

	if errorParam := c.Query("error"); errorParam != "" {
		slog.WarnContext(ctx, "identity provider returned an error",
			"error", errorParam,
			"description", c.Query("error_description"))
		h.fail(c, errorParam)
		return
	}

	storedState, err := c.Cookie(stateCookieName)
	if err != nil || storedState == "" || state != storedState {
		slog.WarnContext(ctx, "state mismatch")
		h.fail(c, "invalid_state")
		return
	}
	h.clearStateCookie(c)

	if code == "" {
		h.fail(c, "no_code")
		return
	}

	result, err := h.authService.HandleCallback(ctx, code)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCode) {
			h.fail(c, "invalid_code")
			return
		}
		slog.ErrorContext(ctx, "failed to handle callback", "error", err)
		h.fail(c, "callback_failed")
		return
	}

	middleware.SetSessionCookie(c, result.Token, int(h.cfg.SessionMaxAge.Seconds()), h.cfg.IsProduction)

	slog.InfoContext(ctx, "user logged in", "external_user_id", result.Identity.ExternalID)

	c.Redirect(http.StatusTemporaryRedirect, h.cfg.SuccessURL)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	if token, err := c.Cookie(middleware.SessionCookieName); err == nil && token != "" {
		if err := h.authService.Logout(ctx, token); err != nil {
			slog.WarnContext(ctx, "failed to delete session", "error", err)
		}
	}

	middleware.ClearSessionCookie(c, h.cfg.IsProduction)

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the signed-in identity. It runs behind RequireAuth.
func (h *AuthHandler) Me(c *gin.Context) {
	identity := middleware.GetIdentity(c.Request.Context())
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, dto.ToIdentityResponse(identity))
}

func (h *AuthHandler) fail(c *gin.Context, reason string) {
	target, err := url.Parse(h.cfg.FailureURL)
	if err != nil {
		c.Redirect(http.StatusTemporaryRedirect, h.cfg.FailureURL+"?auth_error="+url.QueryEscape(reason))
		return
	}
	q := target.Query()
	q.Set("auth_error", reason)
	target.RawQuery = q.Encode()
	c.Redirect(http.StatusTemporaryRedirect, target.String())
}

func (h *AuthHandler) clearStateCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, "", -1, "/", "", h.cfg.IsProduction, true)
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
