package httptransport

import (
	"net/http"
	"strconv"

	dErrors "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain-errors"
	"github.com/ClarenceRuth/cipher-shipment-stream/pkg/platform/httputil"
)

// HandleRegister handles POST /v1/drivers.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.registry.Register(r.Context(), req.DriverID); err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, DriverStatusResponse{
		DriverID:   req.DriverID,
		Registered: true,
	})
}

// HandleDeregister handles DELETE /v1/drivers/{driverID}.
func (h *Handler) HandleDeregister(w http.ResponseWriter, r *http.Request) {
	driver, err := driverParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.registry.Deregister(r.Context(), driver); err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DriverStatusResponse{
		DriverID:   driver,
		Registered: false,
	})
}

// HandleBatchRegister handles POST /v1/drivers/batch-register.
func (h *Handler) HandleBatchRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[BatchRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.registry.BatchRegister(r.Context(), req.DriverIDs, h.newBatchBudget())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BatchResponse(result))
}

// HandleBatchDeregister handles POST /v1/drivers/batch-deregister.
func (h *Handler) HandleBatchDeregister(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[BatchRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.registry.BatchDeregister(r.Context(), req.DriverIDs, h.newBatchBudget())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BatchResponse(result))
}

// HandleDriverStatus handles GET /v1/drivers/{driverID}.
func (h *Handler) HandleDriverStatus(w http.ResponseWriter, r *http.Request) {
	driver, err := driverParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DriverStatusResponse{
		DriverID:   driver,
		Registered: h.registry.IsRegistered(r.Context(), driver),
	})
}

// HandleCount handles GET /v1/drivers/count.
func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, CountResponse{Count: h.registry.Count(r.Context())})
}

// HandleList handles GET /v1/drivers?offset=&limit=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	drivers, err := h.registry.List(r.Context(), offset, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Drivers: drivers, Offset: offset})
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, key+" must be a non-negative integer")
	}
	return v, nil
}
