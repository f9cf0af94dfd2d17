package handlers

import (
	"github.com/arborhq/arbor/internal/middleware"
	"github.com/arborhq/arbor/internal/services"
	"github.com/arborhq/arbor/pkg/response"
	"github.com/gin-gonic/gin"
)

// MemberPrivacyHandler exposes per-person visibility overrides.
type MemberPrivacyHandler struct {
	privacy *services.MemberPrivacyService
}

func NewMemberPrivacyHandler(privacy *services.MemberPrivacyService) *MemberPrivacyHandler {
	return &MemberPrivacyHandler{privacy: privacy}
}

// Get returns a person's override settings, null when none exist.
// GET /api/persons/:id/privacy
func (h *MemberPrivacyHandler) Get(c *gin.Context) {
	settings, err := h.privacy.Get(c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, settings)
}

// Upsert creates or updates a person's override settings. Controller or
// tree admin only.
// PUT /api/persons/:id/privacy
func (h *MemberPrivacyHandler) Upsert(c *gin.Context) {
	var patch services.MemberPrivacyPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	settings, err := h.privacy.Upsert(c.Param("id"), middleware.GetUserID(c), &patch)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, settings)
}
