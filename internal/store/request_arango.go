package store

import (
	"context"
	"fmt"
	"time"

	"basegraph.app/helpdesk/common/arangodb"
	"basegraph.app/helpdesk/common/id"
	"basegraph.app/helpdesk/internal/model"
)

const requestCollection = "support_requests"

const (
	setExternalRefsAQL = `
FOR r IN support_requests
  FILTER r._key == @key
  LET synced = r.external_contact_id != null || r.external_conversation_id != null
  FILTER !synced
  UPDATE r WITH { external_contact_id: @contact, external_conversation_id: @conversation } IN support_requests
  RETURN NEW._key`

	requestExistsAQL = `
FOR r IN support_requests
  FILTER r._key == @key
  LIMIT 1
  RETURN r._key`

	listRequestsAQL = `
FOR r IN support_requests
  FILTER r.category == @category AND r.requester.external_id == @external_id
  SORT r.created_at_ms DESC, r._key DESC
  RETURN r`
)

// arangoRequest is the stored document. The snowflake id lives in _key as a string
// because ArangoDB numbers are doubles and cannot hold every int64.
type arangoRequest struct {
	Key                    string          `json:"_key"`
	Category               string          `json:"category"`
	Comment                string          `json:"comment"`
	Requester              model.Requester `json:"requester"`
	Status                 string          `json:"status"`
	ExternalContactID      *string         `json:"external_contact_id"`
	ExternalConversationID *string         `json:"external_conversation_id"`
	CreatedAt              time.Time       `json:"created_at"`
	CreatedAtMs            int64           `json:"created_at_ms"`
}

type arangoRequestStore struct {
	client arangodb.Client
}

// NewArangoRequestStore keeps requests as documents in the support_requests collection.
// The client must already have run EnsureDatabase and EnsureCollection.
func NewArangoRequestStore(client arangodb.Client) RequestStore {
	return &arangoRequestStore{client: client}
}

func (s *arangoRequestStore) Create(ctx context.Context, req *model.Request) error {
	doc := arangoRequest{
		Key:         id.Format(req.ID),
		Category:    string(req.Category),
		Comment:     req.Comment,
		Requester:   req.Requester,
		Status:      string(req.Status),
		CreatedAt:   req.CreatedAt,
		CreatedAtMs: req.CreatedAt.UnixMilli(),
	}
	if _, err := s.client.CreateDocument(ctx, requestCollection, doc); err != nil {
		return fmt.Errorf("inserting request: %w", err)
	}
	return nil
}

func (s *arangoRequestStore) SetExternalRefs(ctx context.Context, reqID int64, contactID, conversationID string) error {
	key := id.Format(reqID)

	updated, err := s.countKeys(ctx, setExternalRefsAQL, map[string]any{
		"key":          key,
		"contact":      contactID,
		"conversation": conversationID,
	})
	if err != nil {
		return fmt.Errorf("updating request external refs: %w", err)
	}
	if updated > 0 {
		return nil
	}

	found, err := s.countKeys(ctx, requestExistsAQL, map[string]any{"key": key})
	if err != nil {
		return fmt.Errorf("checking request exists: %w", err)
	}
	if found == 0 {
		return ErrNotFound
	}
	return ErrAlreadySynced
}

func (s *arangoRequestStore) ListByRequester(ctx context.Context, category model.Category, externalID string) ([]model.Request, error) {
	cursor, err := s.client.Query(ctx, listRequestsAQL, map[string]any{
		"category":    string(category),
		"external_id": externalID,
	})
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	defer cursor.Close()

	requests := []model.Request{}
	for cursor.HasMore() {
		var doc arangoRequest
		if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
			return nil, fmt.Errorf("reading request document: %w", err)
		}
		reqID, err := id.Parse(doc.Key)
		if err != nil {
			return nil, fmt.Errorf("decoding request key: %w", err)
		}
		requests = append(requests, model.Request{
			ID:                     reqID,
			Category:               model.Category(doc.Category),
			Comment:                doc.Comment,
			Requester:              doc.Requester,
			Status:                 model.RequestStatus(doc.Status),
			ExternalContactID:      doc.ExternalContactID,
			ExternalConversationID: doc.ExternalConversationID,
			CreatedAt:              doc.CreatedAt,
		})
	}
	return requests, nil
}

func (s *arangoRequestStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *arangoRequestStore) countKeys(ctx context.Context, query string, bindVars map[string]any) (int, error) {
	cursor, err := s.client.Query(ctx, query, bindVars)
	if err != nil {
		return 0, err
	}
	defer cursor.Close()

	n := 0
	for cursor.HasMore() {
		var key string
		if _, err := cursor.ReadDocument(ctx, &key); err != nil {
			return 0, fmt.Errorf("reading key: %w", err)
		}
		n++
	}
	return n, nil
}
