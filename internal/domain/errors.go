package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidID means the identifier is not a well-formed UUID.
	ErrInvalidID = errors.New("invalid id format")

	// ErrNotFound means no record matched. Storage-level absence;
	// the usecases translate it into ErrNotOwned where ownership
	// must stay unobservable.
	ErrNotFound = errors.New("record not found")

	// ErrNotOwned covers both "does not exist" and "belongs to
	// another user". The two cases are deliberately
	// indistinguishable so callers cannot probe other tenants' data.
	ErrNotOwned = errors.New("not found or does not belong to the user")

	// ErrDuplicate means a unique constraint rejected the write.
	ErrDuplicate = errors.New("duplicate value for unique column")

	ErrEmailTaken     = errors.New("email is already registered")
	ErrBadCredentials = errors.New("invalid email or password")
)

// ValidationError aggregates every structural violation found in a
// document, keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		parts = append(parts, field+" "+e.Fields[field])
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, ", ")
}

// ReferenceError means a foreign identifier points to a record that
// is missing or owned by someone else.
type ReferenceError struct {
	Field string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("the specified %s does not exist or does not belong to the user", e.Field)
}
