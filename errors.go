package cache

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when a cache-only read misses.
	ErrNotFound = errors.New("cache: entry not found")
	// ErrEmptyBatch is returned by BatchCoordinator.Run for an empty item list.
	ErrEmptyBatch = errors.New("cache: batch has no items")
	// ErrEmptyChain is returned by Chain.Run when no links were added.
	ErrEmptyChain = errors.New("cache: chain has no links")
	// ErrChainStarted is returned when a chain is modified or run after Run was called.
	ErrChainStarted = errors.New("cache: chain already started")
	// ErrCancelled is delivered when the caller cancels before a terminal result.
	ErrCancelled = errors.New("cache: request cancelled")
	// ErrNoTransport is returned when a request needs the network but no transport is set.
	ErrNoTransport = errors.New("cache: transport is not defined")
)

// TransportError wraps a failure reported by the Transport.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return "cache: transport failure: " + e.Cause.Error()
}

func (e *TransportError) Unwrap() error { return e.Cause }

// StatusError is the cause used by HTTPTransport for non-2xx responses.
type StatusError struct {
	StatusCode int
	Response   *Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.StatusCode)
}

// DecodeError wraps a payload decoding failure.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return "cache: decode failure: " + e.Cause.Error()
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// BatchItemError identifies the batch item whose failure terminated the batch.
type BatchItemError struct {
	Index int
	Tag   string
	Err   error
}

func (e *BatchItemError) Error() string {
	return fmt.Sprintf("cache: batch item %d (%s) failed: %v", e.Index, e.Tag, e.Err)
}

func (e *BatchItemError) Unwrap() error { return e.Err }

// ChainLinkError identifies the failing link of a chain. Index is zero-based, Link
// returns the one-based position: in a three link chain whose second link fails, Index
// is 1 and Link is 2.
type ChainLinkError struct {
	Index int
	Err   error
}

// Link is the one-based position of the failing link.
func (e *ChainLinkError) Link() int { return e.Index + 1 }

func (e *ChainLinkError) Error() string {
	return fmt.Sprintf("cache: chain link %d failed: %v", e.Index, e.Err)
}

func (e *ChainLinkError) Unwrap() error { return e.Err }

func transportFailure(err error) error {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Cause: err}
}
