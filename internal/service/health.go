package service

import (
	"context"
	"log/slog"
	"time"

	"basegraph.app/helpdesk/internal/service/helpdesk"
	"basegraph.app/helpdesk/internal/store"
)

const (
	StoreStateConnected    = "connected"
	StoreStateDisconnected = "disconnected"

	healthPingTimeout = 2 * time.Second
)

type HealthReport struct {
	Status           string
	StoreState       string
	BridgeConfigured bool
}

type HealthService interface {
	Check(ctx context.Context) HealthReport
}

type healthService struct {
	requests store.RequestStore
	bridge   helpdesk.Bridge
}

func NewHealthService(requests store.RequestStore, bridge helpdesk.Bridge) HealthService {
	return &healthService{requests: requests, bridge: bridge}
}

// Check always reports status "ok"; a failed store ping only downgrades storeState.
func (s *healthService) Check(ctx context.Context) HealthReport {
	report := HealthReport{
		Status:           "ok",
		StoreState:       StoreStateConnected,
		BridgeConfigured: s.bridge.Configured(),
	}

	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()

	if err := s.requests.Ping(ctx); err != nil {
		slog.WarnContext(ctx, "store ping failed", "error", err)
		report.StoreState = StoreStateDisconnected
	}
	return report
}
