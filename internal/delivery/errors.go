package delivery

import "errors"

var (
	ErrNotFound   = errors.New("delivery job not found")
	ErrValidation = errors.New("delivery validation failed")
)
