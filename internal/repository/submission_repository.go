package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classdesk/classdesk-api/internal/models"
)

// SubmissionRepository handles persistence of submissions and grades.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// ListByAssignment returns submissions for an assignment, newest first.
func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]models.Submission, error) {
	const query = `SELECT id, assignment_id, student_id, content, status, submitted_at, created_at, updated_at
        FROM submissions WHERE assignment_id = $1 ORDER BY created_at DESC`
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, assignmentID); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}

// FindByID returns a submission by id.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	const query = `SELECT id, assignment_id, student_id, content, status, submitted_at, created_at, updated_at
        FROM submissions WHERE id = $1`
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		return nil, err
	}
	return &submission, nil
}

// FindByAssignmentAndStudent returns the single submission for the natural key.
func (r *SubmissionRepository) FindByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (*models.Submission, error) {
	const query = `SELECT id, assignment_id, student_id, content, status, submitted_at, created_at, updated_at
        FROM submissions WHERE assignment_id = $1 AND student_id = $2`
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, assignmentID, studentID); err != nil {
		return nil, err
	}
	return &submission, nil
}

// Upsert inserts or updates the submission for (assignment_id, student_id) in
// one statement, relying on the unique constraint on the natural key. The
// last write wins on content; the status moves to turned_in either way.
func (r *SubmissionRepository) Upsert(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = now
	}
	submission.UpdatedAt = now
	if submission.SubmittedAt == nil {
		submission.SubmittedAt = &now
	}
	if submission.Status == "" {
		submission.Status = models.SubmissionStatusTurnedIn
	}
	const query = `INSERT INTO submissions (id, assignment_id, student_id, content, status, submitted_at, created_at, updated_at)
        VALUES (:id, :assignment_id, :student_id, :content, :status, :submitted_at, :created_at, :updated_at)
        ON CONFLICT (assignment_id, student_id) DO UPDATE
        SET content = EXCLUDED.content, status = EXCLUDED.status,
            submitted_at = EXCLUDED.submitted_at, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("upsert submission: %w", err)
	}
	return nil
}

// GradesBySubmissionIDs fetches grades for the given submissions in one batch.
// An empty id list short-circuits without touching the database.
func (r *SubmissionRepository) GradesBySubmissionIDs(ctx context.Context, submissionIDs []string) (map[string]models.Grade, error) {
	result := make(map[string]models.Grade, len(submissionIDs))
	if len(submissionIDs) == 0 {
		return result, nil
	}
	query, args, err := sqlx.In(`SELECT id, submission_id, grade, feedback, graded_by, graded_at, created_at
        FROM grades WHERE submission_id IN (?)`, submissionIDs)
	if err != nil {
		return nil, fmt.Errorf("build grades query: %w", err)
	}
	query = r.db.Rebind(query)
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("fetch grades: %w", err)
	}
	for _, g := range grades {
		result[g.SubmissionID] = g
	}
	return result, nil
}

// GradeParams describes one grading action.
type GradeParams struct {
	SubmissionID string
	Grade        float64
	Feedback     *string
	GradedBy     string
}

// Grade upserts the grade row for a submission and marks the submission
// graded inside a single transaction, so a grade can never land without the
// matching status change. Re-grading updates the existing row in place.
func (r *SubmissionRepository) Grade(ctx context.Context, params GradeParams) (*models.Grade, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin grade tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	grade := &models.Grade{
		ID:           uuid.NewString(),
		SubmissionID: params.SubmissionID,
		Grade:        &params.Grade,
		Feedback:     params.Feedback,
		GradedBy:     &params.GradedBy,
		GradedAt:     &now,
		CreatedAt:    now,
	}

	const upsert = `INSERT INTO grades (id, submission_id, grade, feedback, graded_by, graded_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (submission_id) DO UPDATE
        SET grade = EXCLUDED.grade, feedback = EXCLUDED.feedback,
            graded_by = EXCLUDED.graded_by, graded_at = EXCLUDED.graded_at
        RETURNING id, created_at`
	if err := tx.QueryRowxContext(ctx, upsert,
		grade.ID, grade.SubmissionID, grade.Grade, grade.Feedback, grade.GradedBy, grade.GradedAt, grade.CreatedAt,
	).Scan(&grade.ID, &grade.CreatedAt); err != nil {
		return nil, fmt.Errorf("upsert grade: %w", err)
	}

	const markGraded = `UPDATE submissions SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, markGraded, params.SubmissionID, models.SubmissionStatusGraded, now); err != nil {
		return nil, fmt.Errorf("mark submission graded: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit grade tx: %w", err)
	}
	return grade, nil
}
