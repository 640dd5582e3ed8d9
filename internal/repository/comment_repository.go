package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classdesk/classdesk-api/internal/models"
)

// CommentRepository handles persistence of polymorphic comments.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository constructs the repository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// ListByParent returns the comment thread of a parent, oldest first.
func (r *CommentRepository) ListByParent(ctx context.Context, parentType models.ParentType, parentID string) ([]models.Comment, error) {
	const query = `SELECT id, parent_type, parent_id, author_id, content, is_private, created_at, updated_at
        FROM comments WHERE parent_type = $1 AND parent_id = $2 ORDER BY created_at ASC`
	var comments []models.Comment
	if err := r.db.SelectContext(ctx, &comments, query, parentType, parentID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Create persists a new comment.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now
	}
	comment.UpdatedAt = now
	const query = `INSERT INTO comments (id, parent_type, parent_id, author_id, content, is_private, created_at, updated_at)
        VALUES (:id, :parent_type, :parent_id, :author_id, :content, :is_private, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}
