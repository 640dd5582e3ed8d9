package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

type commentRepository interface {
	ListByParent(ctx context.Context, parentType models.ParentType, parentID string) ([]models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
}

// CommentService manages comment threads under posts, assignments,
// submissions and classes.
type CommentService struct {
	comments  commentRepository
	profiles  profileDirectory
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCommentService constructs the service.
func NewCommentService(comments commentRepository, profiles profileDirectory, validate *validator.Validate, logger *zap.Logger) *CommentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{comments: comments, profiles: profiles, validator: validate, logger: logger}
}

// CreateCommentRequest describes the create payload.
type CreateCommentRequest struct {
	Content   string `json:"content" validate:"required"`
	IsPrivate bool   `json:"is_private"`
}

// List returns the thread under a parent, oldest first, authors attached.
func (s *CommentService) List(ctx context.Context, parentType models.ParentType, parentID string) ([]models.Comment, error) {
	if !parentType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown comment parent type")
	}

	comments, err := s.comments.ListByParent(ctx, parentType, parentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list comments")
	}

	if err := attachProfiles(ctx, s.profiles, comments,
		func(c *models.Comment) string { return c.AuthorID },
		func(c *models.Comment, p *models.Profile) { c.Author = p },
	); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach comment authors")
	}

	return comments, nil
}

// Create appends a comment to the parent's thread.
func (s *CommentService) Create(ctx context.Context, parentType models.ParentType, parentID, authorID string, req CreateCommentRequest) (*models.Comment, error) {
	if !parentType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown comment parent type")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}

	comment := &models.Comment{
		ParentType: parentType,
		ParentID:   parentID,
		AuthorID:   authorID,
		Content:    req.Content,
		IsPrivate:  req.IsPrivate,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create comment")
	}

	return comment, nil
}
