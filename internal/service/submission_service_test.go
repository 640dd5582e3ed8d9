package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/repository"
)

type mockSubmissionRepo struct {
	byID       map[string]models.Submission
	byNatural  map[string]models.Submission
	list       []models.Submission
	grades     map[string]models.Grade
	upserted   *models.Submission
	gradedWith *repository.GradeParams
}

func (m *mockSubmissionRepo) ListByAssignment(ctx context.Context, assignmentID string) ([]models.Submission, error) {
	return m.list, nil
}

func (m *mockSubmissionRepo) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (m *mockSubmissionRepo) FindByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (*models.Submission, error) {
	s, ok := m.byNatural[assignmentID+":"+studentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (m *mockSubmissionRepo) Upsert(ctx context.Context, submission *models.Submission) error {
	submission.ID = "s1"
	now := time.Now()
	submission.SubmittedAt = &now
	m.upserted = submission
	if m.byNatural == nil {
		m.byNatural = make(map[string]models.Submission)
	}
	m.byNatural[submission.AssignmentID+":"+submission.StudentID] = *submission
	return nil
}

func (m *mockSubmissionRepo) GradesBySubmissionIDs(ctx context.Context, submissionIDs []string) (map[string]models.Grade, error) {
	result := make(map[string]models.Grade)
	for _, id := range submissionIDs {
		if g, ok := m.grades[id]; ok {
			result[id] = g
		}
	}
	return result, nil
}

func (m *mockSubmissionRepo) Grade(ctx context.Context, params repository.GradeParams) (*models.Grade, error) {
	m.gradedWith = &params
	return &models.Grade{ID: "g1", SubmissionID: params.SubmissionID, Grade: &params.Grade}, nil
}

type mockAssignmentReader struct {
	assignments map[string]models.Assignment
}

func (m *mockAssignmentReader) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	a, ok := m.assignments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &a, nil
}

func TestSubmitUpsertsAndReloads(t *testing.T) {
	submissions := &mockSubmissionRepo{}
	assignments := &mockAssignmentReader{assignments: map[string]models.Assignment{"a1": {ID: "a1", ClassID: "c1"}}}
	svc := NewSubmissionService(submissions, assignments, &mockProfileDir{}, &mockTeacherChecker{}, nil, nil)

	content := "first draft"
	saved, err := svc.Submit(context.Background(), "a1", "student-1", SubmitRequest{Content: &content})
	require.NoError(t, err)

	require.NotNil(t, submissions.upserted)
	assert.Equal(t, models.SubmissionStatusTurnedIn, submissions.upserted.Status)
	assert.Equal(t, "s1", saved.ID)
	assert.Equal(t, "student-1", saved.StudentID)
}

func TestSubmitRejectsUnknownAssignment(t *testing.T) {
	submissions := &mockSubmissionRepo{}
	svc := NewSubmissionService(submissions, &mockAssignmentReader{}, &mockProfileDir{}, &mockTeacherChecker{}, nil, nil)

	_, err := svc.Submit(context.Background(), "missing", "student-1", SubmitRequest{})
	require.Error(t, err)
	assert.Nil(t, submissions.upserted)
}

func TestGetOwnReturnsNilWhenNothingTurnedIn(t *testing.T) {
	svc := NewSubmissionService(&mockSubmissionRepo{}, &mockAssignmentReader{}, &mockProfileDir{}, &mockTeacherChecker{}, nil, nil)

	submission, err := svc.GetOwn(context.Background(), "a1", "student-1")
	require.NoError(t, err)
	assert.Nil(t, submission)
}

func TestGetOwnAttachesGrade(t *testing.T) {
	score := 88.0
	submissions := &mockSubmissionRepo{
		byNatural: map[string]models.Submission{"a1:student-1": {ID: "s1", AssignmentID: "a1", StudentID: "student-1"}},
		grades:    map[string]models.Grade{"s1": {ID: "g1", SubmissionID: "s1", Grade: &score}},
	}
	svc := NewSubmissionService(submissions, &mockAssignmentReader{}, &mockProfileDir{}, &mockTeacherChecker{}, nil, nil)

	submission, err := svc.GetOwn(context.Background(), "a1", "student-1")
	require.NoError(t, err)
	require.NotNil(t, submission)
	require.NotNil(t, submission.Grade)
	assert.Equal(t, 88.0, *submission.Grade.Grade)
}

func TestListByAssignmentRequiresTeacher(t *testing.T) {
	assignments := &mockAssignmentReader{assignments: map[string]models.Assignment{"a1": {ID: "a1", ClassID: "c1"}}}
	svc := NewSubmissionService(&mockSubmissionRepo{}, assignments, &mockProfileDir{}, &mockTeacherChecker{}, nil, nil)

	_, err := svc.ListByAssignment(context.Background(), "a1", "student-1")
	require.Error(t, err)
}

func TestListByAssignmentAttachesStudentsAndGrades(t *testing.T) {
	score := 95.0
	submissions := &mockSubmissionRepo{
		list: []models.Submission{
			{ID: "s1", AssignmentID: "a1", StudentID: "student-1"},
			{ID: "s2", AssignmentID: "a1", StudentID: "student-2"},
		},
		grades: map[string]models.Grade{"s1": {ID: "g1", SubmissionID: "s1", Grade: &score}},
	}
	assignments := &mockAssignmentReader{assignments: map[string]models.Assignment{"a1": {ID: "a1", ClassID: "c1"}}}
	profiles := &mockProfileDir{profiles: map[string]models.Profile{
		"student-1": {ID: "student-1", FullName: "Alice"},
		"student-2": {ID: "student-2", FullName: "Bob"},
	}}
	teachers := &mockTeacherChecker{teachers: map[string]bool{"c1:teacher-1": true}}
	svc := NewSubmissionService(submissions, assignments, profiles, teachers, nil, nil)

	listed, err := svc.ListByAssignment(context.Background(), "a1", "teacher-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)

	require.NotNil(t, listed[0].Student)
	assert.Equal(t, "Alice", listed[0].Student.FullName)
	require.NotNil(t, listed[0].Grade)
	assert.Equal(t, 95.0, *listed[0].Grade.Grade)
	assert.Nil(t, listed[1].Grade, "ungraded submission keeps a nil grade")
	assert.Equal(t, 1, profiles.calls)
}

func TestGradeRequiresTeacher(t *testing.T) {
	submissions := &mockSubmissionRepo{byID: map[string]models.Submission{"s1": {ID: "s1", AssignmentID: "a1"}}}
	assignments := &mockAssignmentReader{assignments: map[string]models.Assignment{"a1": {ID: "a1", ClassID: "c1"}}}
	svc := NewSubmissionService(submissions, assignments, &mockProfileDir{}, &mockTeacherChecker{}, nil, nil)

	_, err := svc.Grade(context.Background(), "s1", "student-1", GradeRequest{Grade: 90})
	require.Error(t, err)
	assert.Nil(t, submissions.gradedWith)
}

func TestGradeRecordsForTeacher(t *testing.T) {
	submissions := &mockSubmissionRepo{byID: map[string]models.Submission{"s1": {ID: "s1", AssignmentID: "a1"}}}
	assignments := &mockAssignmentReader{assignments: map[string]models.Assignment{"a1": {ID: "a1", ClassID: "c1"}}}
	teachers := &mockTeacherChecker{teachers: map[string]bool{"c1:teacher-1": true}}
	svc := NewSubmissionService(submissions, assignments, &mockProfileDir{}, teachers, nil, nil)

	feedback := "solid"
	grade, err := svc.Grade(context.Background(), "s1", "teacher-1", GradeRequest{Grade: 90, Feedback: &feedback})
	require.NoError(t, err)

	assert.Equal(t, "g1", grade.ID)
	require.NotNil(t, submissions.gradedWith)
	assert.Equal(t, "teacher-1", submissions.gradedWith.GradedBy)
	assert.Equal(t, 90.0, submissions.gradedWith.Grade)
}
