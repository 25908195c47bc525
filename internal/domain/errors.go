package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotComposing = errors.New("no composition in progress")
	ErrComposing    = errors.New("composition already in progress")
)
