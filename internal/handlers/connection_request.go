package handlers

import (
	"github.com/arborhq/arbor/internal/middleware"
	"github.com/arborhq/arbor/internal/services"
	"github.com/arborhq/arbor/pkg/response"
	"github.com/gin-gonic/gin"
)

// ConnectionRequestHandler exposes the access request workflow.
type ConnectionRequestHandler struct {
	requests *services.ConnectionRequestService
}

func NewConnectionRequestHandler(requests *services.ConnectionRequestService) *ConnectionRequestHandler {
	return &ConnectionRequestHandler{requests: requests}
}

// Create opens a pending connection request on a tree.
// POST /api/trees/:id/connection-requests
func (h *ConnectionRequestHandler) Create(c *gin.Context) {
	var input services.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	request, err := h.requests.Create(middleware.GetUserID(c), c.Param("id"), &input)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Created(c, request)
}

// List returns a tree's requests, pending first. Admin/editor only.
// GET /api/trees/:id/connection-requests
func (h *ConnectionRequestHandler) List(c *gin.Context) {
	requests, err := h.requests.ListForTree(c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, requests)
}

// Review closes a pending request with a decision. Admin/editor only.
// PUT /api/connection-requests/:id/review
func (h *ConnectionRequestHandler) Review(c *gin.Context) {
	var input services.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	request, err := h.requests.Review(c.Param("id"), middleware.GetUserID(c), &input)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, request)
}
