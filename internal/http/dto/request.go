package dto

import (
	"time"

	"basegraph.app/helpdesk/internal/model"
)

// SubmitRequest is the body of POST /api/requests. The frontend still sends a user
// object; it is accepted and ignored since the requester comes from the session.
type SubmitRequest struct {
	Category string         `json:"category"`
	Comment  string         `json:"comment"`
	User     map[string]any `json:"user,omitempty"`
}

type SubmitResponse struct {
	Success         bool  `json:"success"`
	RequestID       int64 `json:"requestId,string"`
	IntercomSuccess bool  `json:"intercomSuccess"`
}

type RequesterResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RequestResponse struct {
	ID                     int64             `json:"id,string"`
	Category               string            `json:"category"`
	Comment                string            `json:"comment"`
	User                   RequesterResponse `json:"user"`
	Status                 string            `json:"status"`
	IntercomContactID      *string           `json:"intercomContactId,omitempty"`
	IntercomConversationID *string           `json:"intercomConversationId,omitempty"`
	CreatedAt              time.Time         `json:"createdAt"`
}

func ToRequestResponse(r *model.Request) RequestResponse {
	return RequestResponse{
		ID:       r.ID,
		Category: string(r.Category),
		Comment:  r.Comment,
		User: RequesterResponse{
			ID:    r.Requester.ExternalID,
			Name:  r.Requester.DisplayName,
			Email: r.Requester.Email,
		},
		Status:                 string(r.Status),
		IntercomContactID:      r.ExternalContactID,
		IntercomConversationID: r.ExternalConversationID,
		CreatedAt:              r.CreatedAt,
	}
}

func ToRequestResponses(requests []model.Request) []RequestResponse {
	out := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, ToRequestResponse(&requests[i]))
	}
	return out
}
