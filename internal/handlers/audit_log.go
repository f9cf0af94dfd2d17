package handlers

import (
	"github.com/arborhq/arbor/internal/middleware"
	"github.com/arborhq/arbor/internal/services"
	"github.com/arborhq/arbor/pkg/response"
	"github.com/gin-gonic/gin"
)

// AuditLogHandler exposes the privacy audit log's query side.
type AuditLogHandler struct {
	audit *services.PrivacyAuditService
}

func NewAuditLogHandler(audit *services.PrivacyAuditService) *AuditLogHandler {
	return &AuditLogHandler{audit: audit}
}

// List returns a tree's audit entries, newest first. Admin/editor only.
// GET /api/trees/:id/audit-log
func (h *AuditLogHandler) List(c *gin.Context) {
	var req services.AuditLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.audit.List(c.Param("id"), middleware.GetUserID(c), &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, resp)
}
