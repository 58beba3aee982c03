package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation")          // 400
	ErrDuplicateIdentity  = errors.New("duplicate identity")  // 400
	ErrInvalidCredentials = errors.New("invalid credentials") // 401
	ErrNotFound           = errors.New("not found")           // 404
)

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"path"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Details[0].Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func missingFields(msg string) error {
	return &ValidationError{Message: msg}
}
