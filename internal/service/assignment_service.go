package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

type assignmentRepository interface {
	ListByClass(ctx context.Context, classID string) ([]models.Assignment, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id string) error
}

// AssignmentService manages gradable classwork.
type AssignmentService struct {
	assignments assignmentRepository
	teachers    teacherChecker
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAssignmentService constructs the service.
func NewAssignmentService(assignments assignmentRepository, teachers teacherChecker, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{assignments: assignments, teachers: teachers, validator: validate, logger: logger}
}

// CreateAssignmentRequest describes the create payload.
type CreateAssignmentRequest struct {
	Title        string     `json:"title" validate:"required"`
	Description  *string    `json:"description"`
	Instructions *string    `json:"instructions"`
	DueDate      *time.Time `json:"due_date"`
	Points       int        `json:"points" validate:"gte=0"`
	Topic        *string    `json:"topic"`
}

// UpdateAssignmentRequest describes the update payload.
type UpdateAssignmentRequest struct {
	Title        string     `json:"title" validate:"required"`
	Description  *string    `json:"description"`
	Instructions *string    `json:"instructions"`
	DueDate      *time.Time `json:"due_date"`
	Points       int        `json:"points" validate:"gte=0"`
	Topic        *string    `json:"topic"`
}

// List returns the assignments of a class, newest first.
func (s *AssignmentService) List(ctx context.Context, classID string) ([]models.Assignment, error) {
	assignments, err := s.assignments.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// Get returns an assignment by id.
func (s *AssignmentService) Get(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// Create adds an assignment. Only class teachers may create.
func (s *AssignmentService) Create(ctx context.Context, classID, callerID string, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	if err := s.requireTeacher(ctx, classID, callerID); err != nil {
		return nil, err
	}

	points := req.Points
	if points == 0 {
		points = models.DefaultAssignmentPoints
	}

	assignment := &models.Assignment{
		ClassID:      classID,
		Title:        req.Title,
		Description:  req.Description,
		Instructions: req.Instructions,
		DueDate:      req.DueDate,
		Points:       points,
		Topic:        req.Topic,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}

	s.logger.Info("assignment created", zap.String("assignment_id", assignment.ID), zap.String("class_id", classID))
	return assignment, nil
}

// Update edits an assignment. Only class teachers may update.
func (s *AssignmentService) Update(ctx context.Context, assignmentID, callerID string, req UpdateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	assignment, err := s.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if err := s.requireTeacher(ctx, assignment.ClassID, callerID); err != nil {
		return nil, err
	}

	assignment.Title = req.Title
	assignment.Description = req.Description
	assignment.Instructions = req.Instructions
	assignment.DueDate = req.DueDate
	if req.Points > 0 {
		assignment.Points = req.Points
	}
	assignment.Topic = req.Topic

	if err := s.assignments.Update(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}
	return assignment, nil
}

// Delete removes an assignment. Only class teachers may delete.
func (s *AssignmentService) Delete(ctx context.Context, assignmentID, callerID string) error {
	assignment, err := s.Get(ctx, assignmentID)
	if err != nil {
		return err
	}

	if err := s.requireTeacher(ctx, assignment.ClassID, callerID); err != nil {
		return err
	}

	if err := s.assignments.Delete(ctx, assignmentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}

func (s *AssignmentService) requireTeacher(ctx context.Context, classID, callerID string) error {
	isTeacher, err := s.teachers.IsTeacher(ctx, classID, callerID)
	if err != nil {
		return err
	}
	if !isTeacher {
		return appErrors.Clone(appErrors.ErrForbidden, "only class teachers can manage classwork")
	}
	return nil
}
