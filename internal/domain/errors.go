package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ValidationError reports client input that cannot be applied.
type ValidationError struct {
	Message       string            `json:"error"`
	MissingFields []string          `json:"missingFields,omitempty"`
	InvalidFields []string          `json:"invalidFields,omitempty"`
	InvalidRooms  []json.RawMessage `json:"invalidRooms,omitempty"`
}

func (e *ValidationError) Error() string {
	switch {
	case len(e.MissingFields) > 0:
		return fmt.Sprintf("%s: %v", e.Message, e.MissingFields)
	case len(e.InvalidFields) > 0:
		return fmt.Sprintf("%s: %v", e.Message, e.InvalidFields)
	}
	return e.Message
}

// NotFoundError means no hotel matched the lookup key.
type NotFoundError struct{ Key string }

func (e *NotFoundError) Error() string { return "hotel not found: " + e.Key }

// StorageError wraps a failure of the persistence backend. Op is "read" or "write".
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "storage " + e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

func ReadError(err error) error  { return &StorageError{Op: "read", Err: err} }
func WriteError(err error) error { return &StorageError{Op: "write", Err: err} }

// UploadLimitError is returned when a request carries more files than allowed.
type UploadLimitError struct{ Max int }

func (e *UploadLimitError) Error() string {
	return fmt.Sprintf("Too many files uploaded. Maximum allowed is %d.", e.Max)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
