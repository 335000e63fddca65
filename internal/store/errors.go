package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrTxRetriesExhausted is returned when an optimistic read-modify-write
// update could not commit within its retry budget. No partial state is
// committed when it is returned.
var ErrTxRetriesExhausted = errors.New("transaction retries exhausted")

// ValidationError reports a missing or empty required field. It is always
// caller-fixable and never retried.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required field(%s) missing", e.Field)
}

// DuplicateKeyError reports that a (scope, value) pair is already reserved.
// It means "the value is taken", not a transient fault.
type DuplicateKeyError struct {
	Scope string
	Value string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("'%s' already registered in the system", e.Value)
}

// DuplicateTranslationError reports that a translation already exists for an
// (original, language) pair.
type DuplicateTranslationError struct {
	OriginalID int64
	LangCode   string
}

func (e *DuplicateTranslationError) Error() string {
	return fmt.Sprintf("original %d already has a %q translation", e.OriginalID, e.LangCode)
}

// IsDuplicate reports whether err is either kind of duplicate rejection.
func IsDuplicate(err error) bool {
	var dk *DuplicateKeyError
	var dt *DuplicateTranslationError
	return errors.As(err, &dk) || errors.As(err, &dt)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
