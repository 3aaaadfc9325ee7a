package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that a referenced anime does not exist.
	ErrNotFound = errors.New("anime not found")
	// ErrDuplicateExternalID reports that an external identifier already belongs to another anime.
	ErrDuplicateExternalID = errors.New("external id already linked to another anime")
	// ErrSchemaMismatch indicates the database was written by a newer schema than this binary knows.
	ErrSchemaMismatch = errors.New("schema version mismatch")
)

// ErrorClassifier allows errors to declare their classification for status mapping.
type ErrorClassifier interface {
	// ErrorKind returns "validation", "not_found", "conflict" or "internal".
	ErrorKind() string
}

// ValidationError reports a record rejected before it reached the database.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) ErrorKind() string { return "validation" }

// Kind classifies err for callers that map failures onto transport status codes.
func Kind(err error) string {
	var classifier ErrorClassifier
	switch {
	case err == nil:
		return ""
	case errors.As(err, &classifier):
		return classifier.ErrorKind()
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateExternalID):
		return "conflict"
	default:
		return "internal"
	}
}
