package httptransport

import (
	"net/http"
	"time"

	"github.com/ClarenceRuth/cipher-shipment-stream/pkg/platform/httputil"
	"github.com/ClarenceRuth/cipher-shipment-stream/pkg/requestcontext"
)

// HandleSubmitValue handles PUT /v1/drivers/{driverID}/value.
func (h *Handler) HandleSubmitValue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	driver, err := driverParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[SubmitValueRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.values.SubmitValue(ctx, driver, req.Ciphertext, req.Proof); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "value submitted",
		"request_id", requestcontext.RequestID(ctx),
		"driver", driver.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleReadValue handles GET /v1/drivers/{driverID}/value.
func (h *Handler) HandleReadValue(w http.ResponseWriter, r *http.Request) {
	driver, err := driverParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	handle, err := h.values.ReadValue(r.Context(), driver)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HandleResponse{
		DriverID: driver,
		Handle:   handle.String(),
		Set:      !handle.IsZero(),
	})
}

// HandleReadResult handles GET /v1/drivers/{driverID}/result.
func (h *Handler) HandleReadResult(w http.ResponseWriter, r *http.Request) {
	driver, err := driverParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	handle, err := h.values.ReadResult(r.Context(), driver)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HandleResponse{
		DriverID: driver,
		Handle:   handle.String(),
		Set:      !handle.IsZero(),
	})
}

// HandleEvaluate handles POST /v1/drivers/{driverID}/evaluate.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	driver, err := driverParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.threshold.Evaluate(ctx, driver)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "threshold evaluated",
		"request_id", requestcontext.RequestID(ctx),
		"driver", driver.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, HandleResponse{
		DriverID: driver,
		Handle:   result.String(),
		Set:      true,
	})
}
