package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

// Join rejections carry the exact wording the classroom clients display.
var (
	ErrClassCodeNotFound = appErrors.New("CLASS_NOT_FOUND", http.StatusNotFound, "Class not found. Check the code and try again.")
	ErrAlreadyEnrolled   = appErrors.New("ALREADY_ENROLLED", http.StatusConflict, "You are already enrolled in this class.")
	ErrOwnerCannotJoin   = appErrors.New("OWNER_CANNOT_JOIN", http.StatusConflict, "You are the teacher of this class.")
)

const classCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

type classRepository interface {
	ListForUser(ctx context.Context, userID string) ([]models.Class, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	FindByCode(ctx context.Context, code string) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error
	CodeExists(ctx context.Context, code string) (bool, error)
}

type classMembershipRepository interface {
	Exists(ctx context.Context, classID, userID string) (bool, error)
	HasTeacherRole(ctx context.Context, classID, userID string) (bool, error)
	Create(ctx context.Context, membership *models.ClassMembership) error
}

// ClassService handles classroom lifecycle and enrollment.
type ClassService struct {
	classes     classRepository
	memberships classMembershipRepository
	profiles    profileDirectory
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewClassService constructs the service.
func NewClassService(classes classRepository, memberships classMembershipRepository, profiles profileDirectory, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{classes: classes, memberships: memberships, profiles: profiles, validator: validate, logger: logger}
}

// CreateClassRequest describes the create payload.
type CreateClassRequest struct {
	Title       string  `json:"title" validate:"required"`
	Section     *string `json:"section"`
	Subject     *string `json:"subject"`
	Room        *string `json:"room"`
	Description *string `json:"description"`
	BannerColor string  `json:"banner_color"`
}

// UpdateClassRequest describes the update payload.
type UpdateClassRequest struct {
	Title       string  `json:"title" validate:"required"`
	Section     *string `json:"section"`
	Subject     *string `json:"subject"`
	Room        *string `json:"room"`
	Description *string `json:"description"`
	BannerColor string  `json:"banner_color"`
}

// List returns the classes the user owns or is enrolled in, newest first,
// each with the owner profile attached.
func (s *ClassService) List(ctx context.Context, userID string) ([]models.Class, error) {
	classes, err := s.classes.ListForUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}

	if err := attachProfiles(ctx, s.profiles, classes,
		func(c *models.Class) string { return c.OwnerID },
		func(c *models.Class, p *models.Profile) { c.Owner = p },
	); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach class owners")
	}

	return classes, nil
}

// Get returns a single class with the owner profile attached.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.classes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	single := []models.Class{*class}
	if err := attachProfiles(ctx, s.profiles, single,
		func(c *models.Class) string { return c.OwnerID },
		func(c *models.Class, p *models.Profile) { c.Owner = p },
	); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach class owner")
	}

	return &single[0], nil
}

// Create provisions a class owned by the caller with a fresh join code.
func (s *ClassService) Create(ctx context.Context, ownerID string, req CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	code, err := s.generateClassCode(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate class code")
	}

	banner := req.BannerColor
	if banner == "" {
		banner = models.DefaultBannerColor
	}

	class := &models.Class{
		Title:       req.Title,
		Section:     req.Section,
		Subject:     req.Subject,
		Room:        req.Room,
		Description: req.Description,
		BannerColor: banner,
		ClassCode:   code,
		OwnerID:     ownerID,
	}
	if err := s.classes.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}

	s.logger.Info("class created", zap.String("class_id", class.ID), zap.String("owner_id", ownerID))
	return class, nil
}

// Update edits class metadata. Only the owner may update.
func (s *ClassService) Update(ctx context.Context, classID, callerID string, req UpdateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if class.OwnerID != callerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the class owner can update the class")
	}

	class.Title = req.Title
	class.Section = req.Section
	class.Subject = req.Subject
	class.Room = req.Room
	class.Description = req.Description
	if req.BannerColor != "" {
		class.BannerColor = req.BannerColor
	}

	if err := s.classes.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	return class, nil
}

// Delete removes a class. Only the owner may delete.
func (s *ClassService) Delete(ctx context.Context, classID, callerID string) error {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if class.OwnerID != callerID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the class owner can delete the class")
	}

	if err := s.classes.Delete(ctx, classID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	s.logger.Info("class deleted", zap.String("class_id", classID))
	return nil
}

// JoinByCode enrolls the caller as a student using a class code. Codes are
// matched case-insensitively. The three rejections keep their exact wording
// and none of them inserts a membership row.
func (s *ClassService) JoinByCode(ctx context.Context, userID, code string) (*models.Class, error) {
	class, err := s.classes.FindByCode(ctx, strings.ToLower(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClassCodeNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up class code")
	}

	enrolled, err := s.memberships.Exists(ctx, class.ID, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if enrolled {
		return nil, ErrAlreadyEnrolled
	}

	if class.OwnerID == userID {
		return nil, ErrOwnerCannotJoin
	}

	membership := &models.ClassMembership{
		ClassID: class.ID,
		UserID:  userID,
		Role:    models.ClassRoleStudent,
	}
	if err := s.memberships.Create(ctx, membership); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create membership")
	}

	s.logger.Info("student joined class", zap.String("class_id", class.ID), zap.String("user_id", userID))
	return class, nil
}

// IsTeacher reports whether the user owns the class or holds a teacher
// membership in it.
func (s *ClassService) IsTeacher(ctx context.Context, classID, userID string) (bool, error) {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if class.OwnerID == userID {
		return true, nil
	}

	isTeacher, err := s.memberships.HasTeacherRole(ctx, classID, userID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher role")
	}
	return isTeacher, nil
}

// generateClassCode draws a fresh lowercase code, retrying on the rare
// collision with an existing class.
func (s *ClassService) generateClassCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := randomClassCode()
		if err != nil {
			return "", err
		}
		exists, err := s.classes.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("exhausted class code attempts")
}

func randomClassCode() (string, error) {
	buf := make([]byte, models.ClassCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = classCodeAlphabet[int(b)%len(classCodeAlphabet)]
	}
	return string(buf), nil
}
