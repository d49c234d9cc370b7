package storage

import (
	"errors"
	"fmt"
)

// OpenError reports that the storage engine could not be opened or initialized.
type OpenError struct {
	Engine string
	Err    error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s storage: %v", e.Engine, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// ReadError reports a failed read against a collection.
type ReadError struct {
	Op         string
	Collection string
	ID         string
	Err        error
}

func (e *ReadError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Collection, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a failed write against a collection, including
// duplicate keys.
type WriteError struct {
	Op         string
	Collection string
	ID         string
	Err        error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Collection, e.ID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func IsOpenError(err error) bool {
	var target *OpenError
	return errors.As(err, &target)
}

func IsReadError(err error) bool {
	var target *ReadError
	return errors.As(err, &target)
}

func IsWriteError(err error) bool {
	var target *WriteError
	return errors.As(err, &target)
}

func IsDuplicateKey(err error) bool { return errors.Is(err, ErrDuplicateKey) }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
