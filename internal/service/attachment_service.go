package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

type attachmentRepository interface {
	ListByParent(ctx context.Context, parentType models.ParentType, parentID string) ([]models.Attachment, error)
	Create(ctx context.Context, attachment *models.Attachment) error
}

type fileStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Delete(filename string) error
	PublicURL(filename string) string
}

// AttachmentService stores uploaded files and records attachment rows.
type AttachmentService struct {
	attachments attachmentRepository
	store       fileStore
	maxFileSize int64
	logger      *zap.Logger
}

// NewAttachmentService constructs the service.
func NewAttachmentService(attachments attachmentRepository, store fileStore, maxFileSize int64, logger *zap.Logger) *AttachmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttachmentService{attachments: attachments, store: store, maxFileSize: maxFileSize, logger: logger}
}

// UploadRequest describes one file upload bound to a parent entity.
type UploadRequest struct {
	ParentType models.ParentType
	ParentID   string
	FileName   string
	FileSize   int64
	FileType   string
	Body       io.Reader
}

// List returns the attachments of a parent, oldest first.
func (s *AttachmentService) List(ctx context.Context, parentType models.ParentType, parentID string) ([]models.Attachment, error) {
	if !parentType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attachment parent type")
	}
	attachments, err := s.attachments.ListByParent(ctx, parentType, parentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attachments")
	}
	return attachments, nil
}

// Upload stores the binary and records the attachment row. If the row insert
// fails the stored binary is deleted again so no orphaned file survives a
// partial upload.
func (s *AttachmentService) Upload(ctx context.Context, uploaderID string, req UploadRequest) (*models.Attachment, error) {
	if !req.ParentType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attachment parent type")
	}
	if req.FileName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file name is required")
	}
	if s.maxFileSize > 0 && req.FileSize > s.maxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file exceeds the maximum upload size")
	}

	storedName := storedFileName(uploaderID, req.ParentType, req.ParentID, req.FileName)
	if _, err := s.store.SaveStream(storedName, req.Body); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}

	fileType := req.FileType
	fileSize := req.FileSize
	attachment := &models.Attachment{
		ParentType: req.ParentType,
		ParentID:   req.ParentID,
		Name:       req.FileName,
		URL:        s.store.PublicURL(storedName),
		UploadedBy: &uploaderID,
	}
	if fileType != "" {
		attachment.FileType = &fileType
	}
	if fileSize > 0 {
		attachment.FileSize = &fileSize
	}

	if err := s.attachments.Create(ctx, attachment); err != nil {
		if delErr := s.store.Delete(storedName); delErr != nil {
			s.logger.Error("failed to remove orphaned upload",
				zap.String("file", storedName),
				zap.Error(delErr),
			)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attachment")
	}

	s.logger.Info("attachment uploaded",
		zap.String("attachment_id", attachment.ID),
		zap.String("parent_type", string(req.ParentType)),
		zap.String("parent_id", req.ParentID),
	)
	return attachment, nil
}

// storedFileName namespaces uploads by uploader and parent so unrelated
// uploads can never collide.
func storedFileName(uploaderID string, parentType models.ParentType, parentID, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%s/%s/%s/%d%s", uploaderID, parentType, parentID, time.Now().UnixNano(), ext)
}
