package model

import (
	"time"

	"basegraph.app/helpdesk/common"
)

// Category is the fixed set of support request categories offered by the portal.
type Category string

const (
	CategoryGeneral               Category = "General Queries"
	CategoryProductFeatures       Category = "Product Features Queries"
	CategoryProductPricing        Category = "Product Pricing Queries"
	CategoryFeatureImplementation Category = "Product Feature Implementation Requests"
)

var Categories = []Category{
	CategoryGeneral,
	CategoryProductFeatures,
	CategoryProductPricing,
	CategoryFeatureImplementation,
}

// ParseCategory resolves the display name or its slug ("product-pricing-queries").
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	for _, c := range Categories {
		if common.SameSlug(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// RequestStatus has a single value today. No transition to a closed state exists;
// a closing workflow would add constants here.
type RequestStatus string

const (
	RequestStatusOpen RequestStatus = "open"
)

// Requester is the identity snapshot captured when a request is submitted.
// It is not refreshed when the identity provider profile changes.
type Requester struct {
	ExternalID  string `json:"external_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

type Request struct {
	ID                     int64         `json:"id"`
	Category               Category      `json:"category"`
	Comment                string        `json:"comment"`
	Requester              Requester     `json:"requester"`
	Status                 RequestStatus `json:"status"`
	ExternalContactID      *string       `json:"external_contact_id,omitempty"`
	ExternalConversationID *string       `json:"external_conversation_id,omitempty"`
	CreatedAt              time.Time     `json:"created_at"`
}

// Synced reports whether the helpdesk correlation ids have been recorded.
func (r *Request) Synced() bool {
	return r.ExternalContactID != nil && r.ExternalConversationID != nil
}
