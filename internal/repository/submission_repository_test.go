package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classdesk/classdesk-api/internal/models"
)

func TestUpsertSubmission(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (assignment_id, student_id) DO UPDATE")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	content := "my essay"
	submission := &models.Submission{
		AssignmentID: "a1",
		StudentID:    "s1",
		Content:      &content,
	}
	err := repo.Upsert(context.Background(), submission)
	require.NoError(t, err)

	assert.NotEmpty(t, submission.ID)
	assert.Equal(t, models.SubmissionStatusTurnedIn, submission.Status)
	assert.NotNil(t, submission.SubmittedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeUpsertsAndMarksGradedInOneTx(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (submission_id) DO UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("g1", now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE submissions SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("s1", string(models.SubmissionStatusGraded), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	feedback := "good work"
	grade, err := repo.Grade(context.Background(), GradeParams{
		SubmissionID: "s1",
		Grade:        92.5,
		Feedback:     &feedback,
		GradedBy:     "teacher-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "g1", grade.ID)
	assert.Equal(t, "s1", grade.SubmissionID)
	require.NotNil(t, grade.Grade)
	assert.Equal(t, 92.5, *grade.Grade)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRollsBackWhenStatusUpdateFails(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (submission_id) DO UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("g1", time.Now()))
	mock.ExpectExec("UPDATE submissions SET status").
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	_, err := repo.Grade(context.Background(), GradeParams{SubmissionID: "s1", Grade: 80, GradedBy: "teacher-1"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradesBySubmissionIDsEmptySkipsDatabase(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	grades, err := repo.GradesBySubmissionIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, grades)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradesBySubmissionIDsBatches(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "submission_id", "grade", "feedback", "graded_by", "graded_at", "created_at"}).
		AddRow("g1", "s1", 95.0, nil, "teacher-1", now, now).
		AddRow("g2", "s2", 71.0, nil, "teacher-1", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM grades WHERE submission_id IN ($1, $2)")).
		WithArgs("s1", "s2").
		WillReturnRows(rows)

	grades, err := repo.GradesBySubmissionIDs(context.Background(), []string{"s1", "s2"})
	require.NoError(t, err)
	assert.Len(t, grades, 2)
	require.NotNil(t, grades["s1"].Grade)
	assert.Equal(t, 95.0, *grades["s1"].Grade)
	assert.NoError(t, mock.ExpectationsWereMet())
}
