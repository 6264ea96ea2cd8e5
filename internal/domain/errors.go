package domain

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrSourceNotFound   = errors.New("source not found")
	ErrHeadlineNotFound = errors.New("headline not found")
	ErrRewriteNotFound  = errors.New("rewrite not found")

	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("unique constraint violated")
)
