// Package registry maintains the set of registered drivers: an unordered
// membership backed by an arena-style list with O(1) swap-remove, plus the
// batch operations bounded by a remaining-work budget.
package registry

import (
	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
	dErrors "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain-errors"
)

// MaxBatchSize bounds a single batch call.
const MaxBatchSize = 100

var (
	// ErrInvalidDriver rejects the null identifier as a subject. Shared with
	// the confidential and threshold services so errors.Is holds across
	// packages.
	ErrInvalidDriver = id.ErrNilPrincipal

	// ErrAlreadyRegistered rejects a second registration for the same driver.
	ErrAlreadyRegistered = dErrors.New(dErrors.CodeConflict, "driver is already registered")

	// ErrNotRegistered rejects deregistration of a non-member. This is an
	// access violation, not a no-op, hence the unauthorized code rather
	// than not-found.
	ErrNotRegistered = dErrors.New(dErrors.CodeUnauthorized, "driver is not registered")

	ErrEmptyBatch    = dErrors.New(dErrors.CodeBadRequest, "batch must not be empty")
	ErrBatchTooLarge = dErrors.New(dErrors.CodeBadRequest, "batch exceeds the maximum size")

	// ErrOutOfBounds rejects a list offset at or past the current count.
	ErrOutOfBounds = dErrors.New(dErrors.CodeOutOfRange, "offset is out of bounds")
)

// BatchResult reports what a batch call actually did. Complete is false when
// the work budget forced an early, committed stop; callers must then confirm
// state with IsRegistered or Count rather than assume full processing.
type BatchResult struct {
	Requested int  `json:"requested"`
	Processed int  `json:"processed"`
	Skipped   int  `json:"skipped"`
	Complete  bool `json:"complete"`
}
