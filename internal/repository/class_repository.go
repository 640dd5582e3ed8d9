package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classdesk/classdesk-api/internal/models"
)

// ClassRepository handles persistence of classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// ListForUser returns classes the user owns or is a member of, newest first.
func (r *ClassRepository) ListForUser(ctx context.Context, userID string) ([]models.Class, error) {
	const query = `SELECT c.id, c.title, c.section, c.subject, c.room, c.description, c.banner_color, c.class_code, c.owner_id, c.created_at, c.updated_at
        FROM classes c
        WHERE c.owner_id = $1
           OR EXISTS (SELECT 1 FROM class_memberships m WHERE m.class_id = c.id AND m.user_id = $1)
        ORDER BY c.created_at DESC`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, userID); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID returns a class by its id.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT id, title, section, subject, room, description, banner_color, class_code, owner_id, created_at, updated_at
        FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// FindByCode returns a class by its join code. Codes are stored lowercase.
func (r *ClassRepository) FindByCode(ctx context.Context, code string) (*models.Class, error) {
	const query = `SELECT id, title, section, subject, room, description, banner_color, class_code, owner_id, created_at, updated_at
        FROM classes WHERE class_code = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, strings.ToLower(code)); err != nil {
		return nil, err
	}
	return &class, nil
}

// Create persists a new class row.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now
	const query = `INSERT INTO classes (id, title, section, subject, room, description, banner_color, class_code, owner_id, created_at, updated_at)
        VALUES (:id, :title, :section, :subject, :room, :description, :banner_color, :class_code, :owner_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update rewrites the editable class fields.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classes SET title = :title, section = :section, subject = :subject, room = :room,
        description = :description, banner_color = :banner_color, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

// Delete removes a class. Dependent rows cascade via foreign keys.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM classes WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return nil
}

// CodeExists reports whether a join code is already taken.
func (r *ClassRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	const query = `SELECT COUNT(*) FROM classes WHERE class_code = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, strings.ToLower(code)); err != nil {
		return false, fmt.Errorf("check class code: %w", err)
	}
	return count > 0, nil
}
