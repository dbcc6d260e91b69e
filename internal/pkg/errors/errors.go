package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal")
	ErrInvalidToken = errors.New("invalid share token")
	ErrExpired      = errors.New("share link expired")
	ErrRandomness   = errors.New("random source unavailable")

	// ErrPublished is a Forbidden case the owner UI reports on its own.
	ErrPublished       = fmt.Errorf("%w: document already published", ErrForbidden)
	ErrUnsupportedType = fmt.Errorf("%w: document type cannot be shared", ErrForbidden)
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}
