package handlers

import (
	"github.com/arborhq/arbor/internal/middleware"
	"github.com/arborhq/arbor/internal/services"
	"github.com/arborhq/arbor/pkg/response"
	"github.com/gin-gonic/gin"
)

// BlockListHandler exposes the block list. Blocks are only created through
// request review; this surface reads and lifts them.
type BlockListHandler struct {
	blocks *services.BlockListService
}

func NewBlockListHandler(blocks *services.BlockListService) *BlockListHandler {
	return &BlockListHandler{blocks: blocks}
}

// List returns a tree's blocked users. Admin only.
// GET /api/trees/:id/blocked-users
func (h *BlockListHandler) List(c *gin.Context) {
	blocks, err := h.blocks.ListForTree(c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, blocks)
}

// Remove lifts a block on a user. Admin only.
// DELETE /api/trees/:id/blocked-users/:userID
func (h *BlockListHandler) Remove(c *gin.Context) {
	err := h.blocks.Remove(c.Param("id"), c.Param("userID"), middleware.GetUserID(c))
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, nil)
}
