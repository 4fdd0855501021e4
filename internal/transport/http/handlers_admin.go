package httptransport

import (
	"net/http"

	"github.com/ClarenceRuth/cipher-shipment-stream/pkg/platform/httputil"
)

// HandleGetThreshold handles GET /v1/threshold.
func (h *Handler) HandleGetThreshold(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, ThresholdResponse{
		Threshold: h.threshold.Threshold(),
		Policy:    string(h.threshold.PolicyInForce()),
	})
}

// HandleSetThreshold handles PUT /v1/threshold.
func (h *Handler) HandleSetThreshold(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[SetThresholdRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.threshold.SetThreshold(r.Context(), req.Threshold); err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ThresholdResponse{
		Threshold: h.threshold.Threshold(),
		Policy:    string(h.threshold.PolicyInForce()),
	})
}

// HandlePause handles POST /v1/admin/pause.
func (h *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	if err := h.lifecycle.Pause(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUnpause handles POST /v1/admin/unpause.
func (h *Handler) HandleUnpause(w http.ResponseWriter, r *http.Request) {
	if err := h.lifecycle.Unpause(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleTransferOwnership handles POST /v1/admin/ownership/transfer.
func (h *Handler) HandleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[TransferOwnershipRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.lifecycle.TransferOwnership(r.Context(), req.NewOwner); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRenounceOwnership handles POST /v1/admin/ownership/renounce.
func (h *Handler) HandleRenounceOwnership(w http.ResponseWriter, r *http.Request) {
	if err := h.lifecycle.RenounceOwnership(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleStatus handles GET /v1/status: the operational snapshot, without any
// confidential data.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Drivers:   h.registry.Count(r.Context()),
		Paused:    h.lifecycle.IsPaused(),
		Threshold: h.threshold.Threshold(),
		Policy:    string(h.threshold.PolicyInForce()),
	}
	if owner := h.lifecycle.Owner(); !owner.IsNil() {
		resp.Owner = owner.String()
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
