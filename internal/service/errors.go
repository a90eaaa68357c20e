package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound means the referenced recipe, user, tag or ingredient
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists means the unique (actor, target) row is already
	// present: duplicate favorite, cart entry or subscription.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotInList means a toggle delete targeted a row that is not there.
	ErrNotInList = errors.New("not in list")

	// ErrSelfFollow means a user tried to subscribe to themselves.
	ErrSelfFollow = errors.New("cannot subscribe to yourself")

	// ErrForbidden means the actor does not own the target recipe.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials covers login failures without leaking which
	// part was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrWrongPassword means the supplied current password did not match.
	ErrWrongPassword = errors.New("current password is incorrect")

	// ErrSamePassword means the new password equals the current one.
	ErrSamePassword = errors.New("new password must differ from the current one")
)

// ValidationError carries field-scoped messages for malformed payloads.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = message
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return strings.Join(parts, "; ")
}
