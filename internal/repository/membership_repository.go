package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classdesk/classdesk-api/internal/models"
)

// MembershipRepository handles persistence of class memberships.
type MembershipRepository struct {
	db *sqlx.DB
}

// NewMembershipRepository constructs the repository.
func NewMembershipRepository(db *sqlx.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// ListByClass returns all memberships of a class, oldest first.
func (r *MembershipRepository) ListByClass(ctx context.Context, classID string) ([]models.ClassMembership, error) {
	const query = `SELECT id, class_id, user_id, role, invited_by, created_at
        FROM class_memberships WHERE class_id = $1 ORDER BY created_at ASC`
	var memberships []models.ClassMembership
	if err := r.db.SelectContext(ctx, &memberships, query, classID); err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return memberships, nil
}

// FindByID returns a membership row by id.
func (r *MembershipRepository) FindByID(ctx context.Context, id string) (*models.ClassMembership, error) {
	const query = `SELECT id, class_id, user_id, role, invited_by, created_at FROM class_memberships WHERE id = $1`
	var membership models.ClassMembership
	if err := r.db.GetContext(ctx, &membership, query, id); err != nil {
		return nil, err
	}
	return &membership, nil
}

// Exists reports whether the user already holds a membership for the class.
func (r *MembershipRepository) Exists(ctx context.Context, classID, userID string) (bool, error) {
	const query = `SELECT 1 FROM class_memberships WHERE class_id = $1 AND user_id = $2 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, classID, userID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check membership: %w", err)
	}
	return true, nil
}

// HasTeacherRole reports whether the user holds a teacher membership.
func (r *MembershipRepository) HasTeacherRole(ctx context.Context, classID, userID string) (bool, error) {
	const query = `SELECT 1 FROM class_memberships WHERE class_id = $1 AND user_id = $2 AND role = $3 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, classID, userID, models.ClassRoleTeacher); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher role: %w", err)
	}
	return true, nil
}

// Create persists a new membership row.
func (r *MembershipRepository) Create(ctx context.Context, membership *models.ClassMembership) error {
	if membership.ID == "" {
		membership.ID = uuid.NewString()
	}
	if membership.CreatedAt.IsZero() {
		membership.CreatedAt = time.Now().UTC()
	}
	if membership.Role == "" {
		membership.Role = models.ClassRoleStudent
	}
	const query = `INSERT INTO class_memberships (id, class_id, user_id, role, invited_by, created_at)
        VALUES (:id, :class_id, :user_id, :role, :invited_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, membership); err != nil {
		return fmt.Errorf("create membership: %w", err)
	}
	return nil
}

// Delete removes a membership row.
func (r *MembershipRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM class_memberships WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	return nil
}
