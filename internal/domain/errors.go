package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrCacheMiss indicates a cache miss
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheLocked indicates the cache directory is held by another process
	ErrCacheLocked = errors.New("cache directory locked")
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ManifestError ties an error to the manifest it occurred in
type ManifestError struct {
	Name string
	Err  error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.Name, e.Err)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

// NewManifestError creates a new ManifestError
func NewManifestError(name string, err error) *ManifestError {
	return &ManifestError{
		Name: name,
		Err:  err,
	}
}
