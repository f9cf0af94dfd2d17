package handlers

import (
	"github.com/arborhq/arbor/internal/middleware"
	"github.com/arborhq/arbor/internal/services"
	"github.com/arborhq/arbor/pkg/response"
	"github.com/gin-gonic/gin"
)

// TreePrivacyHandler exposes the tree-level privacy settings store.
type TreePrivacyHandler struct {
	privacy *services.TreePrivacyService
}

func NewTreePrivacyHandler(privacy *services.TreePrivacyService) *TreePrivacyHandler {
	return &TreePrivacyHandler{privacy: privacy}
}

// Get returns a tree's privacy settings (defaults when none stored).
// GET /api/trees/:id/privacy
func (h *TreePrivacyHandler) Get(c *gin.Context) {
	settings, err := h.privacy.Get(c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, settings)
}

// Update applies a settings patch. Admin/editor only.
// PUT /api/trees/:id/privacy
func (h *TreePrivacyHandler) Update(c *gin.Context) {
	var patch services.TreePrivacyPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	settings, err := h.privacy.Update(c.Param("id"), middleware.GetUserID(c), &patch)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, settings)
}
