package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"basegraph.app/helpdesk/common/id"
	"basegraph.app/helpdesk/common/logger"
	"basegraph.app/helpdesk/internal/metrics"
	"basegraph.app/helpdesk/internal/model"
	"basegraph.app/helpdesk/internal/service/helpdesk"
	"basegraph.app/helpdesk/internal/store"
)

const (
	MaxCommentLength = 5000

	fallbackContactName  = "Guest"
	fallbackContactEmail = "no-email@example.com"
)

var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrEmptyComment    = errors.New("comment is required")
	ErrCommentTooLong  = errors.New("comment is too long")
	ErrUnauthenticated = errors.New("not authenticated")
)

// SubmitResult describes a persisted request. BridgeSynced is false whenever the helpdesk
// step failed at any point; the request itself is stored either way.
type SubmitResult struct {
	RequestID    int64
	BridgeSynced bool
	Lookup       helpdesk.LookupStatus
}

type RequestService interface {
	Submit(ctx context.Context, category, comment string, identity *model.Identity) (*SubmitResult, error)
	List(ctx context.Context, category string, identity *model.Identity) ([]model.Request, error)
}

type RequestServiceConfig struct {
	// AssigneeID is the helpdesk admin new conversations are routed to.
	AssigneeID string
}

type requestService struct {
	requests store.RequestStore
	bridge   helpdesk.Bridge
	metrics  *metrics.Metrics
	cfg      RequestServiceConfig
	now      func() time.Time
}

func NewRequestService(requests store.RequestStore, bridge helpdesk.Bridge, m *metrics.Metrics, cfg RequestServiceConfig) RequestService {
	return &requestService{
		requests: requests,
		bridge:   bridge,
		metrics:  m,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *requestService) Submit(ctx context.Context, category, comment string, identity *model.Identity) (*SubmitResult, error) {
	if identity == nil || identity.ExternalID == "" {
		return nil, ErrUnauthenticated
	}

	cat, ok := model.ParseCategory(category)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	if strings.TrimSpace(comment) == "" {
		return nil, ErrEmptyComment
	}
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		return nil, ErrCommentTooLong
	}

	req := &model.Request{
		ID:        id.New(),
		Category:  cat,
		Comment:   comment,
		Requester: identity.Snapshot(),
		Status:    model.RequestStatusOpen,
		CreatedAt: s.now().UTC(),
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RequestID:      logger.Ptr(req.ID),
		ExternalUserID: logger.Ptr(identity.ExternalID),
		Category:       logger.Ptr(string(cat)),
		Component:      "portal.service.request",
	})

	if err := s.requests.Create(ctx, req); err != nil {
		slog.ErrorContext(ctx, "failed to store request", "error", err)
		return nil, fmt.Errorf("creating request: %w", err)
	}
	s.metrics.RecordSubmitted(string(cat))
	slog.InfoContext(ctx, "request stored")

	refs, lookup, err := s.syncToHelpdesk(ctx, req, identity)
	result := &SubmitResult{RequestID: req.ID, Lookup: lookup}
	if err != nil {
		slog.WarnContext(ctx, "helpdesk sync failed, request left unsynced", "error", err)
		s.metrics.RecordBridgeSync(false)
		return result, nil
	}

	if err := s.requests.SetExternalRefs(ctx, req.ID, refs.contactID, refs.conversationID); err != nil {
		slog.ErrorContext(ctx, "failed to record helpdesk ids",
			"error", err,
			"contact_id", refs.contactID,
			"conversation_id", refs.conversationID,
		)
		s.metrics.RecordBridgeSync(false)
		return result, nil
	}

	slog.InfoContext(ctx, "request synced to helpdesk",
		"contact_id", refs.contactID,
		"conversation_id", refs.conversationID,
	)
	s.metrics.RecordBridgeSync(true)
	result.BridgeSynced = true
	return result, nil
}

type helpdeskRefs struct {
	contactID      string
	conversationID string
}

// syncToHelpdesk finds or creates the contact and opens a conversation for req.
// A failed lookup falls through to contact creation; only create and open failures end the sync.
func (s *requestService) syncToHelpdesk(ctx context.Context, req *model.Request, identity *model.Identity) (*helpdeskRefs, helpdesk.LookupStatus, error) {
	email := identity.PrimaryEmail()
	if email == "" {
		email = fallbackContactEmail
	}
	name := identity.DisplayName
	if name == "" {
		name = fallbackContactName
	}

	lookup := s.bridge.FindContactByEmail(ctx, email)

	var contact *helpdesk.Contact
	switch lookup.Status {
	case helpdesk.LookupFound:
		contact = lookup.Contact
	case helpdesk.LookupTransientError:
		slog.InfoContext(ctx, "contact lookup failed, creating contact", "error", lookup.Err)
	}

	if contact == nil {
		created, err := s.bridge.CreateContact(ctx, helpdesk.ContactParams{
			Role:       helpdesk.ContactRoleUser,
			Email:      email,
			Name:       name,
			ExternalID: identity.ExternalID,
		})
		if err != nil {
			return nil, lookup.Status, err
		}
		contact = created
	}

	body := fmt.Sprintf("%s: %s", req.Category, req.Comment)
	conversationID, err := s.bridge.OpenConversation(ctx, contact.ID, body, s.cfg.AssigneeID)
	if err != nil {
		return nil, lookup.Status, err
	}

	return &helpdeskRefs{contactID: contact.ID, conversationID: conversationID}, lookup.Status, nil
}

func (s *requestService) List(ctx context.Context, category string, identity *model.Identity) ([]model.Request, error) {
	if identity == nil || identity.ExternalID == "" {
		return nil, ErrUnauthenticated
	}

	cat, ok := model.ParseCategory(category)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	requests, err := s.requests.ListByRequester(ctx, cat, identity.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	return requests, nil
}
