package httptransport

import (
	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
)

// BatchResponse reports batch progress so callers can detect a partial
// commit and resubmit the remainder.
type BatchResponse struct {
	Requested int  `json:"requested"`
	Processed int  `json:"processed"`
	Skipped   int  `json:"skipped"`
	Complete  bool `json:"complete"`
}

// DriverStatusResponse answers a membership probe.
type DriverStatusResponse struct {
	DriverID   id.PrincipalID `json:"driver_id"`
	Registered bool           `json:"registered"`
}

// CountResponse carries the cached registry count.
type CountResponse struct {
	Count int `json:"count"`
}

// ListResponse is one page of registered drivers in backing order.
type ListResponse struct {
	Drivers []id.PrincipalID `json:"drivers"`
	Offset  int              `json:"offset"`
}

// HandleResponse returns an opaque ciphertext handle. The zero handle is
// rendered as an explicit unset marker rather than an empty string.
type HandleResponse struct {
	DriverID id.PrincipalID `json:"driver_id"`
	Handle   string         `json:"handle,omitempty"`
	Set      bool           `json:"set"`
}

// ThresholdResponse exposes the public target and the comparison in force.
type ThresholdResponse struct {
	Threshold uint32 `json:"threshold"`
	Policy    string `json:"policy"`
}

// StatusResponse is the operational snapshot: no confidential data, ever.
type StatusResponse struct {
	Drivers   int    `json:"drivers"`
	Paused    bool   `json:"paused"`
	Threshold uint32 `json:"threshold"`
	Policy    string `json:"policy"`
	Owner     string `json:"owner,omitempty"`
}
