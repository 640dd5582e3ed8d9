package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

type postRepository interface {
	ListByClass(ctx context.Context, classID string) ([]models.Post, error)
	FindByID(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
}

type streamCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// PostService manages the class announcement stream. Reads go through a
// short-lived Redis cache which every write invalidates.
type PostService struct {
	posts     postRepository
	profiles  profileDirectory
	teachers  teacherChecker
	cache     streamCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPostService constructs the service. A nil cache disables caching.
func NewPostService(posts postRepository, profiles profileDirectory, teachers teacherChecker, cache streamCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *PostService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &PostService{posts: posts, profiles: profiles, teachers: teachers, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// CreatePostRequest describes the create payload.
type CreatePostRequest struct {
	Content string `json:"content" validate:"required"`
}

func streamCacheKey(classID string) string {
	return fmt.Sprintf("stream:%s:posts", classID)
}

// List returns the class stream, newest first, authors attached. Repeated
// reads against unchanged state return the same ordered list whether served
// from cache or the database.
func (s *PostService) List(ctx context.Context, classID string) ([]models.Post, error) {
	key := streamCacheKey(classID)
	if s.cache != nil {
		var cached []models.Post
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("stream cache read failed", zap.String("class_id", classID), zap.Error(err))
		}
	}

	posts, err := s.posts.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list posts")
	}

	if err := attachProfiles(ctx, s.profiles, posts,
		func(p *models.Post) string { return p.AuthorID },
		func(p *models.Post, profile *models.Profile) { p.Author = profile },
	); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach post authors")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, posts, s.cacheTTL); err != nil {
			s.logger.Warn("stream cache write failed", zap.String("class_id", classID), zap.Error(err))
		}
	}

	return posts, nil
}

// Create publishes an announcement to the class stream.
func (s *PostService) Create(ctx context.Context, classID, authorID string, req CreatePostRequest) (*models.Post, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid post payload")
	}

	post := &models.Post{
		ClassID:  classID,
		AuthorID: authorID,
		Content:  req.Content,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create post")
	}

	s.invalidate(ctx, classID)
	return post, nil
}

// Delete removes a post. Allowed for the author or a class teacher.
func (s *PostService) Delete(ctx context.Context, postID, callerID string) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load post")
	}

	if post.AuthorID != callerID {
		isTeacher, err := s.teachers.IsTeacher(ctx, post.ClassID, callerID)
		if err != nil {
			return err
		}
		if !isTeacher {
			return appErrors.Clone(appErrors.ErrForbidden, "only the author or a class teacher can delete a post")
		}
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete post")
	}

	s.invalidate(ctx, post.ClassID)
	return nil
}

func (s *PostService) invalidate(ctx context.Context, classID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, streamCacheKey(classID)); err != nil {
		s.logger.Warn("stream cache invalidation failed", zap.String("class_id", classID), zap.Error(err))
	}
}
