package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthenticated    = errors.New("authentication credentials were not provided")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
	ErrInvalidPage        = errors.New("invalid page")
	// ErrAlreadyExists is a write rejected by a uniqueness constraint.
	ErrAlreadyExists = errors.New("already exists")
)

// FieldErrors maps a payload field to the list of problems found with it.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

func (fe FieldErrors) Merge(other FieldErrors) {
	for field, messages := range other {
		fe[field] = append(fe[field], messages...)
	}
}

func (fe FieldErrors) HasErrors() bool {
	return len(fe) > 0
}

// Err returns nil when no field failed so callers never see a typed nil.
func (fe FieldErrors) Err() error {
	if !fe.HasErrors() {
		return nil
	}

	return fe
}

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))

	for field := range fe {
		fields = append(fields, field)
	}

	sort.Strings(fields)

	parts := make([]string, 0, len(fields))

	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(fe[field], ", ")))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

func IsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors

	if errors.As(err, &fe) {
		return fe, true
	}

	return nil, false
}
