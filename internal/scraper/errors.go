package scraper

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors shared across the pipeline.
var (
	// ErrNotFound marks a non-transient "resource is gone" condition, such as
	// a 404 on a chapter URL. The engine reads it as end-of-sequence.
	ErrNotFound = errors.New("resource not found")

	// ErrEmptyContent is returned when normalization strips a chapter body
	// down to nothing. It is a step failure, never a zero-word chapter.
	ErrEmptyContent = errors.New("no content after normalization")

	// ErrAlreadyExists marks a unique-key collision in storage, expected when
	// another writer raced this run.
	ErrAlreadyExists = errors.New("record already exists")
)

// FetchError reports a failed page retrieval after the fetch client's retry
// budget is spent (or immediately, for non-transient failures).
type FetchError struct {
	URL        string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: status %d after %d attempt(s): %v", e.URL, e.StatusCode, e.Attempts, e.Err)
	}
	return fmt.Sprintf("fetch %s: %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Transient reports whether the failure was worth retrying. Not-found and
// context errors are terminal; everything else was retried before escalation.
func (e *FetchError) Transient() bool {
	return !errors.Is(e.Err, ErrNotFound) &&
		!errors.Is(e.Err, context.Canceled) &&
		!errors.Is(e.Err, context.DeadlineExceeded)
}

// ParseError reports an unrecognized page structure. What names the element
// the adapter was looking for.
type ParseError struct {
	URL  string
	What string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s: %v", e.URL, e.What, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError wraps persistence-layer failures with the operation name.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsNotFound reports whether err signals a missing resource anywhere in its
// chain.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransient reports whether err stems from a fetch failure that was worth
// retrying. Non-fetch errors are never transient.
func IsTransient(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Transient()
}
