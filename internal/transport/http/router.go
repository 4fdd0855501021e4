package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ClarenceRuth/cipher-shipment-stream/internal/platform/middleware"
)

// NewRouter wires the public API. Everything under /v1 requires an
// authenticated actor; /healthz and /metrics stay open for probes and
// scrapers.
func NewRouter(h *Handler, validator middleware.ActorValidator, devActorHeader bool) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.RequireActor(validator, devActorHeader, h.logger))

		r.Route("/drivers", func(r chi.Router) {
			r.Post("/", h.HandleRegister)
			r.Get("/", h.HandleList)
			r.Get("/count", h.HandleCount)
			r.Post("/batch-register", h.HandleBatchRegister)
			r.Post("/batch-deregister", h.HandleBatchDeregister)

			r.Route("/{driverID}", func(r chi.Router) {
				r.Get("/", h.HandleDriverStatus)
				r.Delete("/", h.HandleDeregister)
				r.Put("/value", h.HandleSubmitValue)
				r.Get("/value", h.HandleReadValue)
				r.Get("/result", h.HandleReadResult)
				r.Post("/evaluate", h.HandleEvaluate)
			})
		})

		r.Get("/threshold", h.HandleGetThreshold)
		r.Put("/threshold", h.HandleSetThreshold)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/pause", h.HandlePause)
			r.Post("/unpause", h.HandleUnpause)
			r.Post("/ownership/transfer", h.HandleTransferOwnership)
			r.Post("/ownership/renounce", h.HandleRenounceOwnership)
		})

		r.Get("/status", h.HandleStatus)
	})

	return r
}
