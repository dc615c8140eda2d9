package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"basegraph.app/helpdesk/internal/model"
)

// MessengerBoot is what the embedded chat widget needs to identify the signed-in user.
type MessengerBoot struct {
	AppID     string
	UserID    string
	Name      string
	Email     string
	CreatedAt int64
	// UserHash is set only when identity verification is configured.
	UserHash string
}

type MessengerService interface {
	Boot(session *model.Session) (*MessengerBoot, error)
}

type MessengerConfig struct {
	AppID          string
	IdentitySecret string
}

type messengerService struct {
	cfg MessengerConfig
}

func NewMessengerService(cfg MessengerConfig) MessengerService {
	return &messengerService{cfg: cfg}
}

func (s *messengerService) Boot(session *model.Session) (*MessengerBoot, error) {
	if session == nil || session.Identity.ExternalID == "" {
		return nil, ErrUnauthenticated
	}

	identity := session.Identity
	boot := &MessengerBoot{
		AppID:     s.cfg.AppID,
		UserID:    identity.ExternalID,
		Name:      identity.DisplayName,
		Email:     identity.PrimaryEmail(),
		CreatedAt: session.CreatedAt.Unix(),
	}
	if s.cfg.IdentitySecret != "" {
		h := hmac.New(sha256.New, []byte(s.cfg.IdentitySecret))
		h.Write([]byte(identity.ExternalID))
		boot.UserHash = hex.EncodeToString(h.Sum(nil))
	}
	return boot, nil
}
