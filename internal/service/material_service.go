package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

type materialRepository interface {
	ListByClass(ctx context.Context, classID string) ([]models.Material, error)
	FindByID(ctx context.Context, id string) (*models.Material, error)
	Create(ctx context.Context, material *models.Material) error
	Delete(ctx context.Context, id string) error
}

// MaterialService manages non-gradable classwork items.
type MaterialService struct {
	materials materialRepository
	teachers  teacherChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMaterialService constructs the service.
func NewMaterialService(materials materialRepository, teachers teacherChecker, validate *validator.Validate, logger *zap.Logger) *MaterialService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaterialService{materials: materials, teachers: teachers, validator: validate, logger: logger}
}

// CreateMaterialRequest describes the create payload.
type CreateMaterialRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	Topic       *string `json:"topic"`
}

// List returns the materials of a class, newest first.
func (s *MaterialService) List(ctx context.Context, classID string) ([]models.Material, error) {
	materials, err := s.materials.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list materials")
	}
	return materials, nil
}

// Create adds a material. Only class teachers may create.
func (s *MaterialService) Create(ctx context.Context, classID, callerID string, req CreateMaterialRequest) (*models.Material, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid material payload")
	}

	isTeacher, err := s.teachers.IsTeacher(ctx, classID, callerID)
	if err != nil {
		return nil, err
	}
	if !isTeacher {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only class teachers can manage classwork")
	}

	material := &models.Material{
		ClassID:     classID,
		Title:       req.Title,
		Description: req.Description,
		Topic:       req.Topic,
	}
	if err := s.materials.Create(ctx, material); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create material")
	}
	return material, nil
}

// Delete removes a material. Only class teachers may delete.
func (s *MaterialService) Delete(ctx context.Context, materialID, callerID string) error {
	material, err := s.materials.FindByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load material")
	}

	isTeacher, err := s.teachers.IsTeacher(ctx, material.ClassID, callerID)
	if err != nil {
		return err
	}
	if !isTeacher {
		return appErrors.Clone(appErrors.ErrForbidden, "only class teachers can manage classwork")
	}

	if err := s.materials.Delete(ctx, materialID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete material")
	}
	return nil
}
