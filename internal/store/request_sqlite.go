package store

import (
	"context"
	"fmt"
	"time"

	"basegraph.app/helpdesk/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqliteRequest is the flattened row layout used by the gorm backend.
type sqliteRequest struct {
	ID                     int64  `gorm:"primaryKey;autoIncrement:false"`
	Category               string `gorm:"not null;index:idx_requester_category,priority:2"`
	Comment                string `gorm:"type:text;not null"`
	RequesterExternalID    string `gorm:"not null;index:idx_requester_category,priority:1"`
	RequesterDisplayName   string `gorm:"not null;default:''"`
	RequesterEmail         string `gorm:"not null;default:''"`
	Status                 string `gorm:"not null;default:open"`
	ExternalContactID      *string
	ExternalConversationID *string
	CreatedAt              time.Time `gorm:"not null;index"`
}

func (sqliteRequest) TableName() string {
	return "support_requests"
}

type sqliteRequestStore struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the database at path and migrates the request table.
// ":memory:" is accepted for tests.
func OpenSQLite(path string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if err := gdb.AutoMigrate(&sqliteRequest{}); err != nil {
		return nil, fmt.Errorf("migrating sqlite database: %w", err)
	}
	return gdb, nil
}

// NewSQLiteRequestStore is the development backend. gdb must come from OpenSQLite.
func NewSQLiteRequestStore(gdb *gorm.DB) RequestStore {
	return &sqliteRequestStore{db: gdb}
}

func (s *sqliteRequestStore) Create(ctx context.Context, req *model.Request) error {
	row := sqliteRequest{
		ID:                   req.ID,
		Category:             string(req.Category),
		Comment:              req.Comment,
		RequesterExternalID:  req.Requester.ExternalID,
		RequesterDisplayName: req.Requester.DisplayName,
		RequesterEmail:       req.Requester.Email,
		Status:               string(req.Status),
		CreatedAt:            req.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("inserting request: %w", err)
	}
	return nil
}

func (s *sqliteRequestStore) SetExternalRefs(ctx context.Context, id int64, contactID, conversationID string) error {
	result := s.db.WithContext(ctx).
		Model(&sqliteRequest{}).
		Where("id = ? AND external_contact_id IS NULL AND external_conversation_id IS NULL", id).
		Updates(map[string]any{
			"external_contact_id":      contactID,
			"external_conversation_id": conversationID,
		})
	if result.Error != nil {
		return fmt.Errorf("updating request external refs: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&sqliteRequest{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("checking request exists: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrAlreadySynced
}

func (s *sqliteRequestStore) ListByRequester(ctx context.Context, category model.Category, externalID string) ([]model.Request, error) {
	var rows []sqliteRequest
	err := s.db.WithContext(ctx).
		Where("category = ? AND requester_external_id = ?", string(category), externalID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}

	requests := make([]model.Request, len(rows))
	for i, row := range rows {
		requests[i] = model.Request{
			ID:       row.ID,
			Category: model.Category(row.Category),
			Comment:  row.Comment,
			Requester: model.Requester{
				ExternalID:  row.RequesterExternalID,
				DisplayName: row.RequesterDisplayName,
				Email:       row.RequesterEmail,
			},
			Status:                 model.RequestStatus(row.Status),
			ExternalContactID:      row.ExternalContactID,
			ExternalConversationID: row.ExternalConversationID,
			CreatedAt:              row.CreatedAt,
		}
	}
	return requests, nil
}

func (s *sqliteRequestStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting sqlite handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
