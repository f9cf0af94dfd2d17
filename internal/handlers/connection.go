package handlers

import (
	"github.com/arborhq/arbor/internal/middleware"
	"github.com/arborhq/arbor/internal/services"
	"github.com/arborhq/arbor/pkg/response"
	"github.com/gin-gonic/gin"
)

// ConnectionHandler exposes the access grant registry.
type ConnectionHandler struct {
	connections *services.ConnectionService
}

func NewConnectionHandler(connections *services.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connections: connections}
}

// List returns a tree's grants, highest level first. Admin/editor only.
// GET /api/trees/:id/connections
func (h *ConnectionHandler) List(c *gin.Context) {
	conns, err := h.connections.ListForTree(c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, conns)
}

// Invite grants access directly to a registered user by email.
// POST /api/trees/:id/connections
func (h *ConnectionHandler) Invite(c *gin.Context) {
	var input services.InviteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if input.Email == "" {
		response.BadRequest(c, "email is required")
		return
	}

	conn, err := h.connections.InviteDirect(c.Param("id"), middleware.GetUserID(c), &input)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Created(c, conn)
}

// Update changes a grant's level, linked person, relationship or verifies
// it. Admin/editor only.
// PUT /api/connections/:id
func (h *ConnectionHandler) Update(c *gin.Context) {
	var patch services.ConnectionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	conn, err := h.connections.Update(c.Param("id"), middleware.GetUserID(c), &patch)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, conn)
}

// Remove deletes a grant. Admin/editor, or the grant holder removing
// themself.
// DELETE /api/connections/:id
func (h *ConnectionHandler) Remove(c *gin.Context) {
	if err := h.connections.Remove(c.Param("id"), middleware.GetUserID(c)); err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, nil)
}
