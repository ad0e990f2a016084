package usecase

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/komiti/internal/domain/committee"
	"github.com/riskibarqy/komiti/internal/domain/user"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrConflict              = errors.New("conflict")
	ErrInvalidState          = errors.New("invalid state")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// domainError tags committee and user errors with the matching usecase sentinel
// while keeping the original error in the chain.
func domainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, committee.ErrValidation):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, committee.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, committee.ErrDuplicateDraw), errors.Is(err, committee.ErrAlreadyExists),
		errors.Is(err, user.ErrAlreadyExists):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, committee.ErrInvalidState):
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	default:
		return err
	}
}
