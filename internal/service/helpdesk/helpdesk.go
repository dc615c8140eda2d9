package helpdesk

import (
	"context"
	"errors"
)

var (
	// ErrBridge wraps every create-contact and open-conversation failure.
	ErrBridge = errors.New("helpdesk bridge error")
	// ErrNotConfigured is returned by all calls when no API token is set.
	ErrNotConfigured = errors.New("helpdesk not configured")
)

type Contact struct {
	ID         string
	Role       string
	Email      string
	Name       string
	ExternalID string
}

type ContactParams struct {
	Role       string
	Email      string
	Name       string
	ExternalID string
}

const ContactRoleUser = "user"

type LookupStatus string

const (
	LookupFound          LookupStatus = "found"
	LookupNotFound       LookupStatus = "not_found"
	LookupTransientError LookupStatus = "transient_error"
)

// LookupResult is the outcome of a contact search. A failed search is not an error
// for the caller: it is reported as LookupTransientError with Err set.
type LookupResult struct {
	Status  LookupStatus
	Contact *Contact
	Err     error
}

func Found(c *Contact) LookupResult {
	return LookupResult{Status: LookupFound, Contact: c}
}

func NotFound() LookupResult {
	return LookupResult{Status: LookupNotFound}
}

func TransientError(err error) LookupResult {
	return LookupResult{Status: LookupTransientError, Err: err}
}

// Bridge maps portal users to helpdesk contacts and opens conversations for them.
// Implementations hold no per-user state and never retry.
type Bridge interface {
	FindContactByEmail(ctx context.Context, email string) LookupResult
	CreateContact(ctx context.Context, params ContactParams) (*Contact, error)
	// OpenConversation starts a thread from the contact and returns the remote conversation id.
	OpenConversation(ctx context.Context, contactID, body, assigneeID string) (string, error)
	Configured() bool
}
