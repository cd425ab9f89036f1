package store

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for input the store refuses to persist:
	// empty note content, empty user ids, non-positive retention windows.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorageUnavailable wraps every driver or I/O failure. The store never
	// retries; callers decide.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

func invalid(op, reason string) error {
	return fmt.Errorf("%s: %w: %s", op, ErrInvalidArgument, reason)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
