package service

import (
	"basegraph.app/helpdesk/core/config"
	"basegraph.app/helpdesk/internal/metrics"
	"basegraph.app/helpdesk/internal/service/helpdesk"
	"basegraph.app/helpdesk/internal/store"
)

type Services struct {
	stores   *store.Stores
	bridge   helpdesk.Bridge
	provider IdentityProvider
	metrics  *metrics.Metrics
	cfg      config.Config
}

func NewServices(stores *store.Stores, bridge helpdesk.Bridge, provider IdentityProvider, m *metrics.Metrics, cfg config.Config) *Services {
	return &Services{
		stores:   stores,
		bridge:   bridge,
		provider: provider,
		metrics:  m,
		cfg:      cfg,
	}
}

func (s *Services) Auth() AuthService {
	return NewAuthService(s.provider, s.stores.Sessions(), AuthConfig{
		WorkOS:        s.cfg.WorkOS,
		SessionSecret: s.cfg.Session.Secret,
		SessionMaxAge: s.cfg.Session.MaxAge,
	})
}

func (s *Services) Requests() RequestService {
	return NewRequestService(s.stores.Requests(), s.bridge, s.metrics, RequestServiceConfig{
		AssigneeID: s.cfg.Intercom.AdminID,
	})
}

func (s *Services) Messenger() MessengerService {
	return NewMessengerService(MessengerConfig{
		AppID:          s.cfg.Intercom.AppID,
		IdentitySecret: s.cfg.Intercom.IdentitySecret,
	})
}

func (s *Services) Health() HealthService {
	return NewHealthService(s.stores.Requests(), s.bridge)
}
