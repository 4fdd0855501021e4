package audit

import (
	"time"

	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance around
	// confidential data: value submissions and threshold evaluations.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers lifecycle and ownership changes.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine registry bookkeeping.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic on every mutating operation. It names
// the operation, the driver concerned, and the acting principal — never a
// plaintext value and never a ciphertext body. Handles and values do not
// belong here; that property is load-bearing and pinned by tests.
type Event struct {
	ID        string         `json:"id"`
	Kind      Kind           `json:"kind"`
	Category  EventCategory  `json:"category"`
	Driver    id.PrincipalID `json:"driver"`
	Actor     id.PrincipalID `json:"actor"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Kind names a mutating operation.
type Kind string

const (
	// Registry events
	KindDriverRegistered   Kind = "driver_registered"
	KindDriverDeregistered Kind = "driver_deregistered"
	KindBatchPartial       Kind = "batch_partial_commit"

	// Confidential data events
	KindValueSubmitted     Kind = "value_submitted"
	KindThresholdEvaluated Kind = "threshold_evaluated"

	// Lifecycle events
	KindThresholdUpdated     Kind = "threshold_updated"
	KindPaused               Kind = "paused"
	KindUnpaused             Kind = "unpaused"
	KindOwnershipTransferred Kind = "ownership_transferred"
	KindOwnershipRenounced   Kind = "ownership_renounced"
)

// eventCategories is the source of truth for routing; unknown kinds fall back
// to operations.
var eventCategories = map[Kind]EventCategory{
	KindDriverRegistered:   CategoryOperations,
	KindDriverDeregistered: CategoryOperations,
	KindBatchPartial:       CategoryOperations,

	KindValueSubmitted:     CategoryCompliance,
	KindThresholdEvaluated: CategoryCompliance,

	KindThresholdUpdated:     CategorySecurity,
	KindPaused:               CategorySecurity,
	KindUnpaused:             CategorySecurity,
	KindOwnershipTransferred: CategorySecurity,
	KindOwnershipRenounced:   CategorySecurity,
}

// Category returns the routing category for a kind.
func (k Kind) Category() EventCategory {
	if c, ok := eventCategories[k]; ok {
		return c
	}
	return CategoryOperations
}
