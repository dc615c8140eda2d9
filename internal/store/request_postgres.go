package store

import (
	"context"
	"errors"
	"fmt"

	"basegraph.app/helpdesk/core/db"
	"basegraph.app/helpdesk/internal/model"
	"github.com/jackc/pgx/v5"
)

const (
	insertRequestSQL = `
INSERT INTO support_requests (id, category, comment, requester, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	setExternalRefsSQL = `
UPDATE support_requests
SET external_contact_id = $2, external_conversation_id = $3
WHERE id = $1 AND external_contact_id IS NULL AND external_conversation_id IS NULL`

	requestExistsSQL = `SELECT EXISTS (SELECT 1 FROM support_requests WHERE id = $1)`

	listRequestsSQL = `
SELECT id, category, comment, requester, status, external_contact_id, external_conversation_id, created_at
FROM support_requests
WHERE category = $1 AND requester ->> 'external_id' = $2
ORDER BY created_at DESC, id DESC`
)

type postgresRequestStore struct {
	db *db.DB
}

// NewPostgresRequestStore stores requests in the support_requests table with the
// requester snapshot kept as a JSONB document.
func NewPostgresRequestStore(database *db.DB) RequestStore {
	return &postgresRequestStore{db: database}
}

func (s *postgresRequestStore) Create(ctx context.Context, req *model.Request) error {
	_, err := s.db.Querier().Exec(ctx, insertRequestSQL,
		req.ID,
		string(req.Category),
		req.Comment,
		req.Requester,
		string(req.Status),
		req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting request: %w", err)
	}
	return nil
}

func (s *postgresRequestStore) SetExternalRefs(ctx context.Context, id int64, contactID, conversationID string) error {
	tag, err := s.db.Querier().Exec(ctx, setExternalRefsSQL, id, contactID, conversationID)
	if err != nil {
		return fmt.Errorf("updating request external refs: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := s.db.Querier().QueryRow(ctx, requestExistsSQL, id).Scan(&exists); err != nil {
		return fmt.Errorf("checking request exists: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrAlreadySynced
}

func (s *postgresRequestStore) ListByRequester(ctx context.Context, category model.Category, externalID string) ([]model.Request, error) {
	rows, err := s.db.Querier().Query(ctx, listRequestsSQL, string(category), externalID)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	defer rows.Close()

	requests := []model.Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating requests: %w", err)
	}
	return requests, nil
}

func (s *postgresRequestStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func scanRequest(row pgx.Row) (*model.Request, error) {
	var (
		req      model.Request
		category string
		status   string
	)
	err := row.Scan(
		&req.ID,
		&category,
		&req.Comment,
		&req.Requester,
		&status,
		&req.ExternalContactID,
		&req.ExternalConversationID,
		&req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning request: %w", err)
	}
	req.Category = model.Category(category)
	req.Status = model.RequestStatus(status)
	return &req, nil
}
