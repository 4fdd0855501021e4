// Package domain holds the typed identifiers shared across the service.
//
// IDs are UUID-backed and validated at trust boundaries: parsing rejects
// empty strings, malformed input, and the nil UUID. The nil UUID is the
// "null principal" and is never a valid driver or actor identity; after
// ownership renouncement it is the permanent owner value, which is exactly
// why no operation may accept it as a caller.
package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain-errors"
)

// PrincipalID identifies any party known to the registry: drivers, submitters,
// the owner, and the service's own operating identity. Drivers are principals;
// there is deliberately no separate driver type because the same identifier
// space is used for access grants.
type PrincipalID uuid.UUID

// NilPrincipal is the null identifier. It is never registered, never granted
// access, and is the owner value after renouncement.
var NilPrincipal = PrincipalID(uuid.Nil)

// ErrNilPrincipal is the shared precondition failure for operations handed
// the null identifier as a subject.
var ErrNilPrincipal = dErrors.New(dErrors.CodeInvalidInput, "principal must not be the null identifier")

// ParsePrincipalID validates and returns a PrincipalID.
func ParsePrincipalID(s string) (PrincipalID, error) {
	if s == "" {
		return NilPrincipal, dErrors.New(dErrors.CodeInvalidInput, "principal id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return NilPrincipal, dErrors.Wrap(err, dErrors.CodeInvalidInput, "malformed principal id")
	}
	if u == uuid.Nil {
		return NilPrincipal, dErrors.New(dErrors.CodeInvalidInput, "principal id must not be the nil uuid")
	}
	return PrincipalID(u), nil
}

// NewPrincipalID returns a fresh random principal identity.
func NewPrincipalID() PrincipalID {
	return PrincipalID(uuid.New())
}

func (p PrincipalID) IsNil() bool {
	return uuid.UUID(p) == uuid.Nil
}

func (p PrincipalID) String() string {
	return uuid.UUID(p).String()
}

// MarshalText renders the canonical UUID form so JSON bodies and audit
// records carry the string representation, not a byte array.
func (p PrincipalID) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts any well-formed UUID, nil included; whether the nil
// principal is acceptable is a service-level decision, not a codec one.
func (p *PrincipalID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*p = PrincipalID(u)
	return nil
}
