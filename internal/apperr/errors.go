package apperr

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by services and the HTTP boundary.
//
// - ErrValidation: missing/empty required input. Surfaced as 400.
// - ErrNotFound: no matching row. Surfaced as 404, never logged as a failure.
// - StoreError: connection/query failure. Surfaced as a generic 500; details stay in server logs.
// - ConfigurationError: fatal at startup; the process must not serve traffic.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// Validation returns an error that matches ErrValidation and names the missing field.
func Validation(field string) error {
	return fmt.Errorf("%w: %s is required", ErrValidation, field)
}

type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store wraps a driver error. A nil err stays nil.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

type ConfigurationError struct {
	Key string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %v", e.Key, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func Configuration(key string, err error) error {
	return &ConfigurationError{Key: key, Err: err}
}
