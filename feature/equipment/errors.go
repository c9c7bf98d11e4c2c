package equipment

import "errors"

var (
	// ErrNotFound is returned when a record does not exist or is soft-deleted.
	ErrNotFound = errors.New("equipment not found")
	// ErrValidation is returned when a record is missing required fields.
	ErrValidation = errors.New("invalid equipment")
)
