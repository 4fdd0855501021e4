package httptransport

import (
	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
	dErrors "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain-errors"
)

// RegisterRequest registers a single driver.
type RegisterRequest struct {
	DriverID id.PrincipalID `json:"driver_id"`
}

func (r RegisterRequest) Validate() error {
	// The nil check belongs to the service so the error carries the domain
	// code; only structural problems are rejected here.
	return nil
}

// BatchRequest carries identifiers for batch registration or deregistration.
type BatchRequest struct {
	DriverIDs []id.PrincipalID `json:"driver_ids"`
}

func (r BatchRequest) Validate() error {
	return nil
}

// SubmitValueRequest submits an externally encrypted shipment count.
// Ciphertext travels base64-encoded in JSON; the proof is the submitting
// wallet's attestation string, opaque to this service.
type SubmitValueRequest struct {
	Ciphertext []byte `json:"ciphertext"`
	Proof      string `json:"proof"`
}

func (r SubmitValueRequest) Validate() error {
	if len(r.Ciphertext) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "ciphertext is required")
	}
	if r.Proof == "" {
		return dErrors.New(dErrors.CodeBadRequest, "proof is required")
	}
	return nil
}

// SetThresholdRequest updates the public shipment target.
type SetThresholdRequest struct {
	Threshold uint32 `json:"threshold"`
}

func (r SetThresholdRequest) Validate() error {
	return nil
}

// TransferOwnershipRequest hands the admin role to another principal.
type TransferOwnershipRequest struct {
	NewOwner id.PrincipalID `json:"new_owner"`
}

func (r TransferOwnershipRequest) Validate() error {
	return nil
}
