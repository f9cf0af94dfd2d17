package handlers

import (
	"github.com/arborhq/arbor/internal/middleware"
	"github.com/arborhq/arbor/internal/services"
	"github.com/arborhq/arbor/pkg/response"
	"github.com/gin-gonic/gin"
)

// AccessHandler exposes the authorization engine's read side. Both routes
// run under optional auth: an anonymous caller gets the public view.
type AccessHandler struct {
	access *services.AccessService
}

func NewAccessHandler(access *services.AccessService) *AccessHandler {
	return &AccessHandler{access: access}
}

// GetTreeAccess returns the caller's resolved standing on a tree plus
// whether the tree is viewable at all.
// GET /api/trees/:id/access
func (h *AccessHandler) GetTreeAccess(c *gin.Context) {
	treeID := c.Param("id")
	userID := middleware.GetUserID(c)

	canView, err := h.access.CanViewTree(treeID, userID)
	if err != nil {
		serviceError(c, err)
		return
	}

	result, err := h.access.ResolveAccess(treeID, userID)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"can_view": canView,
		"access":   result,
	})
}

// GetPersonVisibility returns whether the caller may view a person and
// which fields are visible.
// GET /api/persons/:id/visibility
func (h *AccessHandler) GetPersonVisibility(c *gin.Context) {
	visibility, err := h.access.CanViewPerson(c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, visibility)
}
