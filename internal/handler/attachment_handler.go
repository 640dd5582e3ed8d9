package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/service"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
	"github.com/classdesk/classdesk-api/pkg/response"
)

// AttachmentHandler exposes file upload and listing endpoints.
type AttachmentHandler struct {
	service *service.AttachmentService
}

// NewAttachmentHandler constructs an attachment handler.
func NewAttachmentHandler(svc *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: svc}
}

// List godoc
// @Summary List attachments under a parent
// @Tags Attachments
// @Produce json
// @Param parentType path string true "post, assignment, submission or class"
// @Param parentId path string true "Parent ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attachments/{parentType}/{parentId} [get]
func (h *AttachmentHandler) List(c *gin.Context) {
	attachments, err := h.service.List(c.Request.Context(), models.ParentType(c.Param("parentType")), c.Param("parentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attachments, nil)
}

// Upload godoc
// @Summary Upload a file attachment under a parent
// @Tags Attachments
// @Accept multipart/form-data
// @Produce json
// @Param parentType path string true "post, assignment, submission or class"
// @Param parentId path string true "Parent ID"
// @Param file formData file true "File to upload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /attachments/{parentType}/{parentId} [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "missing file field"))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload"))
		return
	}
	defer src.Close()

	attachment, err := h.service.Upload(c.Request.Context(), claims.UserID, service.UploadRequest{
		ParentType: models.ParentType(c.Param("parentType")),
		ParentID:   c.Param("parentId"),
		FileName:   fileHeader.Filename,
		FileSize:   fileHeader.Size,
		FileType:   fileHeader.Header.Get("Content-Type"),
		Body:       src,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, attachment)
}
