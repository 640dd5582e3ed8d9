package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-api/internal/service"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
	"github.com/classdesk/classdesk-api/pkg/response"
)

// ClassworkHandler exposes assignment and material endpoints.
type ClassworkHandler struct {
	assignments *service.AssignmentService
	materials   *service.MaterialService
}

// NewClassworkHandler constructs a classwork handler.
func NewClassworkHandler(assignments *service.AssignmentService, materials *service.MaterialService) *ClassworkHandler {
	return &ClassworkHandler{assignments: assignments, materials: materials}
}

// ListAssignments godoc
// @Summary List class assignments
// @Tags Classwork
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /classes/{id}/assignments [get]
func (h *ClassworkHandler) ListAssignments(c *gin.Context) {
	assignments, err := h.assignments.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// GetAssignment godoc
// @Summary Get assignment detail
// @Tags Classwork
// @Produce json
// @Param assignmentId path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /assignments/{assignmentId} [get]
func (h *ClassworkHandler) GetAssignment(c *gin.Context) {
	assignment, err := h.assignments.Get(c.Request.Context(), c.Param("assignmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// CreateAssignment godoc
// @Summary Create an assignment
// @Tags Classwork
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /classes/{id}/assignments [post]
func (h *ClassworkHandler) CreateAssignment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.assignments.Create(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// UpdateAssignment godoc
// @Summary Update an assignment
// @Tags Classwork
// @Accept json
// @Produce json
// @Param assignmentId path string true "Assignment ID"
// @Param payload body service.UpdateAssignmentRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /assignments/{assignmentId} [put]
func (h *ClassworkHandler) UpdateAssignment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.assignments.Update(c.Request.Context(), c.Param("assignmentId"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// DeleteAssignment godoc
// @Summary Delete an assignment
// @Tags Classwork
// @Param assignmentId path string true "Assignment ID"
// @Success 204
// @Security BearerAuth
// @Router /assignments/{assignmentId} [delete]
func (h *ClassworkHandler) DeleteAssignment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.assignments.Delete(c.Request.Context(), c.Param("assignmentId"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListMaterials godoc
// @Summary List class materials
// @Tags Classwork
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /classes/{id}/materials [get]
func (h *ClassworkHandler) ListMaterials(c *gin.Context) {
	materials, err := h.materials.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, materials, nil)
}

// CreateMaterial godoc
// @Summary Create a material
// @Tags Classwork
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.CreateMaterialRequest true "Material payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /classes/{id}/materials [post]
func (h *ClassworkHandler) CreateMaterial(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	material, err := h.materials.Create(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, material)
}

// DeleteMaterial godoc
// @Summary Delete a material
// @Tags Classwork
// @Param materialId path string true "Material ID"
// @Success 204
// @Security BearerAuth
// @Router /materials/{materialId} [delete]
func (h *ClassworkHandler) DeleteMaterial(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.materials.Delete(c.Request.Context(), c.Param("materialId"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
