// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// the domain services, and encode; business rules never live here.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ClarenceRuth/cipher-shipment-stream/internal/confidential"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/lifecycle"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/registry"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/threshold"
	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
	dErrors "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain-errors"
	"github.com/ClarenceRuth/cipher-shipment-stream/pkg/platform/httputil"
	"github.com/ClarenceRuth/cipher-shipment-stream/pkg/workbudget"
)

// Handler wires the public endpoints to the domain services.
type Handler struct {
	registry  *registry.Service
	values    *confidential.Service
	threshold *threshold.Service
	lifecycle *lifecycle.Service
	logger    *slog.Logger

	// batchBudget caps per-request batch work; 0 means unlimited.
	batchBudget int
}

func NewHandler(
	reg *registry.Service,
	values *confidential.Service,
	thresh *threshold.Service,
	life *lifecycle.Service,
	logger *slog.Logger,
	batchBudget int,
) *Handler {
	return &Handler{
		registry:    reg,
		values:      values,
		threshold:   thresh,
		lifecycle:   life,
		logger:      logger,
		batchBudget: batchBudget,
	}
}

// newBatchBudget builds the per-request work budget for batch endpoints.
func (h *Handler) newBatchBudget() workbudget.Budget {
	if h.batchBudget <= 0 {
		return workbudget.Unlimited{}
	}
	return workbudget.NewOpBudget(h.batchBudget, 0)
}

// driverParam parses the {driverID} path segment.
func driverParam(r *http.Request) (id.PrincipalID, error) {
	raw := chi.URLParam(r, "driverID")
	driver, err := id.ParsePrincipalID(raw)
	if err != nil {
		return id.NilPrincipal, dErrors.New(dErrors.CodeInvalidInput, "malformed driver identifier")
	}
	return driver, nil
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal {
		h.logger.ErrorContext(r.Context(), "request failed", "error", err, "path", r.URL.Path)
	}
	httputil.WriteError(w, err)
}
