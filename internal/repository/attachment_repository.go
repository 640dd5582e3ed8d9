package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classdesk/classdesk-api/internal/models"
)

// AttachmentRepository handles persistence of file attachment records.
type AttachmentRepository struct {
	db *sqlx.DB
}

// NewAttachmentRepository constructs the repository.
func NewAttachmentRepository(db *sqlx.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// ListByParent returns attachments of a parent, oldest first.
func (r *AttachmentRepository) ListByParent(ctx context.Context, parentType models.ParentType, parentID string) ([]models.Attachment, error) {
	const query = `SELECT id, parent_type, parent_id, name, url, file_type, file_size, uploaded_by, created_at
        FROM attachments WHERE parent_type = $1 AND parent_id = $2 ORDER BY created_at ASC`
	var attachments []models.Attachment
	if err := r.db.SelectContext(ctx, &attachments, query, parentType, parentID); err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return attachments, nil
}

// Create persists a new attachment record.
func (r *AttachmentRepository) Create(ctx context.Context, attachment *models.Attachment) error {
	if attachment.ID == "" {
		attachment.ID = uuid.NewString()
	}
	if attachment.CreatedAt.IsZero() {
		attachment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attachments (id, parent_type, parent_id, name, url, file_type, file_size, uploaded_by, created_at)
        VALUES (:id, :parent_type, :parent_id, :name, :url, :file_type, :file_size, :uploaded_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, attachment); err != nil {
		return fmt.Errorf("create attachment: %w", err)
	}
	return nil
}
