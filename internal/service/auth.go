package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"basegraph.app/helpdesk/common/id"
	"basegraph.app/helpdesk/common/logger"
	"basegraph.app/helpdesk/core/config"
	"basegraph.app/helpdesk/internal/model"
	"basegraph.app/helpdesk/internal/store"
	"github.com/workos/workos-go/v6/pkg/usermanagement"
)

const defaultSessionMaxAge = 7 * 24 * time.Hour

var (
	ErrInvalidCode    = errors.New("invalid authorization code")
	ErrInvalidSession = errors.New("invalid session token")
	ErrSessionExpired = errors.New("session expired")
)

// IdentityProvider is the slice of WorkOS user management the portal relies on.
type IdentityProvider interface {
	AuthorizationURL(opts usermanagement.GetAuthorizationURLOpts) (string, error)
	AuthenticateWithCode(ctx context.Context, opts usermanagement.AuthenticateWithCodeOpts) (usermanagement.AuthenticateResponse, error)
}

type workosProvider struct{}

// NewWorkOSProvider sets the process-wide WorkOS API key and returns a provider backed by it.
func NewWorkOSProvider(apiKey string) IdentityProvider {
	usermanagement.SetAPIKey(apiKey)
	return workosProvider{}
}

func (workosProvider) AuthorizationURL(opts usermanagement.GetAuthorizationURLOpts) (string, error) {
	u, err := usermanagement.GetAuthorizationURL(opts)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (workosProvider) AuthenticateWithCode(ctx context.Context, opts usermanagement.AuthenticateWithCodeOpts) (usermanagement.AuthenticateResponse, error) {
	return usermanagement.AuthenticateWithCode(ctx, opts)
}

type CallbackResult struct {
	Session  *model.Session
	Identity *model.Identity
	// Token is the signed cookie value for the session.
	Token string
}

type AuthService interface {
	GetAuthorizationURL(state string) (string, error)
	HandleCallback(ctx context.Context, code string) (*CallbackResult, error)
	ValidateSession(ctx context.Context, token string) (*model.Session, error)
	Logout(ctx context.Context, token string) error
}

type AuthConfig struct {
	WorkOS        config.WorkOSConfig
	SessionSecret string
	SessionMaxAge time.Duration
}

type authService struct {
	provider     IdentityProvider
	sessionStore store.SessionStore
	cfg          AuthConfig
	now          func() time.Time
}

func NewAuthService(provider IdentityProvider, sessionStore store.SessionStore, cfg AuthConfig) AuthService {
	if cfg.SessionMaxAge <= 0 {
		cfg.SessionMaxAge = defaultSessionMaxAge
	}
	return &authService{
		provider:     provider,
		sessionStore: sessionStore,
		cfg:          cfg,
		now:          time.Now,
	}
}

func (s *authService) GetAuthorizationURL(state string) (string, error) {
	url, err := s.provider.AuthorizationURL(usermanagement.GetAuthorizationURLOpts{
		ClientID:    s.cfg.WorkOS.ClientID,
		RedirectURI: s.cfg.WorkOS.RedirectURI,
		State:       state,
		Provider:    "authkit",
	})
	if err != nil {
		return "", fmt.Errorf("generating authorization URL: %w", err)
	}
	return url, nil
}

func (s *authService) HandleCallback(ctx context.Context, code string) (*CallbackResult, error) {
	if code == "" {
		return nil, ErrInvalidCode
	}

	authResponse, err := s.provider.AuthenticateWithCode(ctx, usermanagement.AuthenticateWithCodeOpts{
		ClientID: s.cfg.WorkOS.ClientID,
		Code:     code,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to authenticate with code", "error", err)
		return nil, ErrInvalidCode
	}

	identity := buildIdentity(authResponse.User)
	if identity.ExternalID == "" {
		slog.ErrorContext(ctx, "identity provider returned a user without id")
		return nil, ErrInvalidCode
	}

	now := s.now()
	session := &model.Session{
		ID:        id.New(),
		Identity:  identity,
		CreatedAt: now.UTC(),
		ExpiresAt: now.Add(s.cfg.SessionMaxAge).UTC(),
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SessionID:      logger.Ptr(session.ID),
		ExternalUserID: logger.Ptr(identity.ExternalID),
		Component:      "portal.service.auth",
	})

	if err := s.sessionStore.Create(ctx, session); err != nil {
		slog.ErrorContext(ctx, "failed to create session", "error", err)
		return nil, fmt.Errorf("creating session: %w", err)
	}

	slog.InfoContext(ctx, "user authenticated", "email", identity.PrimaryEmail())

	return &CallbackResult{
		Session:  session,
		Identity: &session.Identity,
		Token:    s.signToken(session.ID),
	}, nil
}

func (s *authService) ValidateSession(ctx context.Context, token string) (*model.Session, error) {
	sessionID, err := s.verifyToken(token)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionStore.GetValid(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return session, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	sessionID, err := s.verifyToken(token)
	if err != nil {
		// Nothing we issued; there is no session to remove.
		return nil
	}
	if err := s.sessionStore.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// signToken renders the cookie value "<id>.<hex hmac-sha256(id)>".
func (s *authService) signToken(sessionID int64) string {
	raw := id.Format(sessionID)
	return raw + "." + s.mac(raw)
}

func (s *authService) verifyToken(token string) (int64, error) {
	raw, sig, ok := strings.Cut(token, ".")
	if !ok || raw == "" || sig == "" {
		return 0, ErrInvalidSession
	}
	if !hmac.Equal([]byte(sig), []byte(s.mac(raw))) {
		return 0, ErrInvalidSession
	}
	sessionID, err := id.Parse(raw)
	if err != nil {
		return 0, ErrInvalidSession
	}
	return sessionID, nil
}

func (s *authService) mac(value string) string {
	h := hmac.New(sha256.New, []byte(s.cfg.SessionSecret))
	h.Write([]byte(value))
	return hex.EncodeToString(h.Sum(nil))
}

func buildIdentity(user usermanagement.User) model.Identity {
	identity := model.Identity{
		ExternalID:  user.ID,
		DisplayName: buildDisplayName(user),
		Emails:      []string{},
	}
	if user.Email != "" {
		identity.Emails = append(identity.Emails, user.Email)
	}
	return identity
}

// buildDisplayName leaves the name empty when WorkOS has none; the helpdesk applies its own fallback.
func buildDisplayName(user usermanagement.User) string {
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}
