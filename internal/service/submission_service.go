package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/repository"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

type submissionRepository interface {
	ListByAssignment(ctx context.Context, assignmentID string) ([]models.Submission, error)
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	FindByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (*models.Submission, error)
	Upsert(ctx context.Context, submission *models.Submission) error
	GradesBySubmissionIDs(ctx context.Context, submissionIDs []string) (map[string]models.Grade, error)
	Grade(ctx context.Context, params repository.GradeParams) (*models.Grade, error)
}

type submissionAssignmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
}

// SubmissionService handles student hand-ins and teacher grading.
type SubmissionService struct {
	submissions submissionRepository
	assignments submissionAssignmentReader
	profiles    profileDirectory
	teachers    teacherChecker
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSubmissionService constructs the service.
func NewSubmissionService(submissions submissionRepository, assignments submissionAssignmentReader, profiles profileDirectory, teachers teacherChecker, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{submissions: submissions, assignments: assignments, profiles: profiles, teachers: teachers, validator: validate, logger: logger}
}

// SubmitRequest describes a student hand-in.
type SubmitRequest struct {
	Content *string `json:"content"`
}

// GradeRequest describes a grading action.
type GradeRequest struct {
	Grade    float64 `json:"grade" validate:"gte=0"`
	Feedback *string `json:"feedback"`
}

// ListByAssignment returns all submissions for an assignment with student
// profiles and grades attached. Teacher-only.
func (s *SubmissionService) ListByAssignment(ctx context.Context, assignmentID, callerID string) ([]models.Submission, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	isTeacher, err := s.teachers.IsTeacher(ctx, assignment.ClassID, callerID)
	if err != nil {
		return nil, err
	}
	if !isTeacher {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only class teachers can list submissions")
	}

	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}

	if err := attachProfiles(ctx, s.profiles, submissions,
		func(sub *models.Submission) string { return sub.StudentID },
		func(sub *models.Submission, p *models.Profile) { sub.Student = p },
	); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach student profiles")
	}

	ids := make([]string, 0, len(submissions))
	for _, sub := range submissions {
		ids = append(ids, sub.ID)
	}
	grades, err := s.submissions.GradesBySubmissionIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch grades")
	}
	for i := range submissions {
		if grade, ok := grades[submissions[i].ID]; ok {
			g := grade
			submissions[i].Grade = &g
		}
	}

	return submissions, nil
}

// GetOwn returns the caller's submission for an assignment, with the grade
// attached when present. A missing submission is not an error: the student
// simply has not turned anything in yet.
func (s *SubmissionService) GetOwn(ctx context.Context, assignmentID, studentID string) (*models.Submission, error) {
	submission, err := s.submissions.FindByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}

	grades, err := s.submissions.GradesBySubmissionIDs(ctx, []string{submission.ID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch grade")
	}
	if grade, ok := grades[submission.ID]; ok {
		g := grade
		submission.Grade = &g
	}

	return submission, nil
}

// Submit turns in work for an assignment. A resubmission overwrites the
// previous content in place; there is never more than one submission per
// (assignment, student) pair.
func (s *SubmissionService) Submit(ctx context.Context, assignmentID, studentID string, req SubmitRequest) (*models.Submission, error) {
	if _, err := s.assignments.FindByID(ctx, assignmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	submission := &models.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Content:      req.Content,
		Status:       models.SubmissionStatusTurnedIn,
	}
	if err := s.submissions.Upsert(ctx, submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save submission")
	}

	saved, err := s.submissions.FindByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload submission")
	}

	s.logger.Info("submission turned in",
		zap.String("assignment_id", assignmentID),
		zap.String("student_id", studentID),
	)
	return saved, nil
}

// Grade records a grade for a submission and marks it graded in one
// transaction. Teacher-only; re-grading overwrites the previous grade.
func (s *SubmissionService) Grade(ctx context.Context, submissionID, graderID string, req GradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	submission, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}

	assignment, err := s.assignments.FindByID(ctx, submission.AssignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	isTeacher, err := s.teachers.IsTeacher(ctx, assignment.ClassID, graderID)
	if err != nil {
		return nil, err
	}
	if !isTeacher {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only class teachers can grade submissions")
	}

	grade, err := s.submissions.Grade(ctx, repository.GradeParams{
		SubmissionID: submissionID,
		Grade:        req.Grade,
		Feedback:     req.Feedback,
		GradedBy:     graderID,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record grade")
	}

	s.logger.Info("submission graded",
		zap.String("submission_id", submissionID),
		zap.String("graded_by", graderID),
	)
	return grade, nil
}
