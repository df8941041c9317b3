package pipeline

import (
	"errors"
	"fmt"

	"github.com/zhaobenny/costopt/internal/store"
)

// ValidationError is rejected user input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// MissingInputError means an earlier stage's artifact is absent or unreadable
type MissingInputError struct {
	File string

	// Hint names the menu step that produces File
	Hint  string
	Cause error
}

func (e *MissingInputError) Error() string {
	if errors.Is(e.Cause, store.ErrNotFound) {
		return fmt.Sprintf("%s not found: %s first", e.File, e.Hint)
	}
	return fmt.Sprintf("%s is unreadable (%v): %s again", e.File, e.Cause, e.Hint)
}

func (e *MissingInputError) Unwrap() error {
	return e.Cause
}
