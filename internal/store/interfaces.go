package store

import (
	"context"
	"errors"

	"basegraph.app/helpdesk/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrAlreadySynced is returned when a request already carries helpdesk correlation ids.
var ErrAlreadySynced = errors.New("request already synced")

// RequestStore defines the contract for support request persistence.
// Requests are append-only apart from a single correlation-id patch.
type RequestStore interface {
	Create(ctx context.Context, req *model.Request) error
	// SetExternalRefs records both helpdesk ids at once. It never overwrites existing ids.
	SetExternalRefs(ctx context.Context, id int64, contactID, conversationID string) error
	// ListByRequester returns the requester's requests in a category, newest first.
	ListByRequester(ctx context.Context, category model.Category, externalID string) ([]model.Request, error)
	Ping(ctx context.Context) error
}

// SessionStore defines the contract for portal session data access
type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	GetValid(ctx context.Context, id int64) (*model.Session, error) // checks expiry
	Delete(ctx context.Context, id int64) error
}
