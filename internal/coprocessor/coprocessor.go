// Package coprocessor defines the boundary to the confidential coprocessor:
// the external engine that imports, encodes, and compares ciphertexts and
// enforces decryption rights. The core never sees plaintext; everything
// crosses this boundary as an opaque Handle.
package coprocessor

import (
	"context"
	"errors"

	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
)

// Handle is an opaque reference to a ciphertext held by the coprocessor.
// The zero value is the distinguishable "unset" state; it is never a valid
// ciphertext reference.
type Handle string

// IsZero reports whether the handle is the unset state.
func (h Handle) IsZero() bool {
	return h == ""
}

func (h Handle) String() string {
	return string(h)
}

// Errors surfaced by coprocessor implementations. The core propagates these
// verbatim; it never generates them locally and never masks them.
var (
	// ErrProofRejected means the ciphertext's accompanying proof failed
	// verification during import.
	ErrProofRejected = errors.New("coprocessor: proof rejected")

	// ErrInvalidCiphertext means the ciphertext blob itself is malformed.
	ErrInvalidCiphertext = errors.New("coprocessor: invalid ciphertext")

	// ErrUnknownHandle means a handle does not reference any ciphertext the
	// coprocessor knows about.
	ErrUnknownHandle = errors.New("coprocessor: unknown handle")
)

// Coprocessor is the black-box confidential compute engine. Latency and
// failures propagate to callers unchanged.
type Coprocessor interface {
	// ImportCiphertext converts an externally produced ciphertext blob plus
	// proof into an internally usable handle. Proof verification happens
	// here; a bad proof fails with ErrProofRejected.
	ImportCiphertext(ctx context.Context, blob []byte, proof string) (Handle, error)

	// EncodePublic trivially encrypts a public value into a handle of the
	// same width as imported values, so it can participate in comparisons.
	EncodePublic(ctx context.Context, value uint32) (Handle, error)

	// GreaterThan produces a ciphertext boolean handle for a > b.
	GreaterThan(ctx context.Context, a, b Handle) (Handle, error)

	// GreaterOrEqual produces a ciphertext boolean handle for a >= b.
	GreaterOrEqual(ctx context.Context, a, b Handle) (Handle, error)

	// GrantAccess makes principal eligible to request decryption of handle.
	// Grants are additive; there is no revocation.
	GrantAccess(ctx context.Context, h Handle, principal id.PrincipalID) error
}
