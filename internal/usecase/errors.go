package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrIllegalGameState      = errors.New("competition is not accepting teams")
	ErrCaptainAlreadyHasTeam = errors.New("captain already has a team")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
