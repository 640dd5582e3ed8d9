package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-api/internal/service"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
	"github.com/classdesk/classdesk-api/pkg/response"
)

// MemberHandler exposes class roster endpoints.
type MemberHandler struct {
	service *service.MemberService
}

// NewMemberHandler constructs a member handler.
func NewMemberHandler(svc *service.MemberService) *MemberHandler {
	return &MemberHandler{service: svc}
}

// List godoc
// @Summary List class members
// @Tags Members
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /classes/{id}/members [get]
func (h *MemberHandler) List(c *gin.Context) {
	members, err := h.service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, nil)
}

// Remove godoc
// @Summary Remove a class member
// @Tags Members
// @Param id path string true "Class ID"
// @Param memberId path string true "Membership ID"
// @Success 204
// @Security BearerAuth
// @Router /classes/{id}/members/{memberId} [delete]
func (h *MemberHandler) Remove(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Remove(c.Request.Context(), c.Param("memberId"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
