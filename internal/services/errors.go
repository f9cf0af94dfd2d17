package services

import "errors"

// Error kinds returned by the engine. Handlers map these to HTTP statuses;
// the values never carry storage detail.
var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrUnauthorized     = errors.New("not allowed for this tree or resource")
	ErrNotFound         = errors.New("not found")
	ErrDuplicateRequest = errors.New("a request for this tree is already open")
	ErrAlreadyConnected = errors.New("user already has a connection to this tree")
	ErrBlocked          = errors.New("user is blocked from this tree")
	ErrUserNotFound     = errors.New("no registered user with that email")
	ErrInvalidState     = errors.New("operation not valid in the current state")
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmailTaken       = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
