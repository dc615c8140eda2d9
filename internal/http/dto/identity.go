package dto

import "basegraph.app/helpdesk/internal/model"

type EmailValue struct {
	Value string `json:"value"`
}

// IdentityResponse mirrors the identity provider profile shape the frontend reads.
type IdentityResponse struct {
	ID          string       `json:"id"`
	DisplayName string       `json:"displayName"`
	Emails      []EmailValue `json:"emails"`
}

func ToIdentityResponse(i *model.Identity) IdentityResponse {
	emails := make([]EmailValue, 0, len(i.Emails))
	for _, e := range i.Emails {
		emails = append(emails, EmailValue{Value: e})
	}
	return IdentityResponse{
		ID:          i.ExternalID,
		DisplayName: i.DisplayName,
		Emails:      emails,
	}
}

type MessengerResponse struct {
	AppID     string `json:"appId"`
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"createdAt"`
	UserHash  string `json:"userHash,omitempty"`
}

type HealthResponse struct {
	Status           string `json:"status"`
	StoreState       string `json:"storeState"`
	BridgeConfigured bool   `json:"bridgeConfigured"`
}
