package handlers

import (
	"errors"

	"github.com/arborhq/arbor/internal/services"
	"github.com/arborhq/arbor/pkg/response"
	"github.com/gin-gonic/gin"
)

// serviceError maps engine error kinds to HTTP responses. Unknown errors
// surface as a generic 500 without storage detail.
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		response.Unauthorized(c, "authentication required")
	case errors.Is(err, services.ErrUnauthorized):
		response.Forbidden(c, "not allowed")
	case errors.Is(err, services.ErrNotFound):
		response.NotFound(c, "not found")
	case errors.Is(err, services.ErrDuplicateRequest):
		response.Error(c, response.NewConflict("a request for this tree is already open"))
	case errors.Is(err, services.ErrAlreadyConnected):
		response.Error(c, response.NewConflict("already connected to this tree"))
	case errors.Is(err, services.ErrBlocked):
		response.Forbidden(c, "blocked from this tree")
	case errors.Is(err, services.ErrUserNotFound):
		response.NotFound(c, "no registered user with that email")
	case errors.Is(err, services.ErrInvalidState):
		response.Error(c, response.NewConflict("operation not valid in the current state"))
	case errors.Is(err, services.ErrInvalidInput):
		response.BadRequest(c, "invalid input")
	case errors.Is(err, services.ErrEmailTaken):
		response.Error(c, response.NewConflict("email already registered"))
	case errors.Is(err, services.ErrInvalidCredentials):
		response.Unauthorized(c, "invalid email or password")
	default:
		response.ServerError(c, "internal error")
	}
}
