// Package confidential owns the per-driver ciphertext state: the submitted
// value handle, the evaluation result handle, and the access-grant ledger.
// Plaintext never enters this package; everything arrives as an external
// ciphertext blob and leaves as an opaque handle.
package confidential

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ClarenceRuth/cipher-shipment-stream/internal/audit"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/coprocessor"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/lifecycle"
	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
	dErrors "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain-errors"
	"github.com/ClarenceRuth/cipher-shipment-stream/pkg/requestcontext"
)

// Service coordinates value submission and reads. Mutations are serialized;
// a submit either lands fully (import, store, grants, audit) or not at all
// from the caller's point of view.
type Service struct {
	mu sync.Mutex

	serviceID id.PrincipalID
	gate      *lifecycle.Service
	copro     coprocessor.Coprocessor
	store     *Store
	ledger    *Ledger
	auditP    *audit.Publisher
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewService builds the confidential-value service. serviceID is the
// registry's own operating identity; every handle written here is granted to
// it and to the driver it concerns before any other party.
func NewService(
	serviceID id.PrincipalID,
	gate *lifecycle.Service,
	copro coprocessor.Coprocessor,
	store *Store,
	ledger *Ledger,
	auditP *audit.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		serviceID: serviceID,
		gate:      gate,
		copro:     copro,
		store:     store,
		ledger:    ledger,
		auditP:    auditP,
		logger:    logger,
		tracer:    otel.Tracer("confidential"),
	}
}

// SubmitValue imports an externally encrypted value for a driver, replacing
// any prior value. Proof verification happens inside the coprocessor; its
// rejections propagate unchanged. Decryption rights on the new handle go to
// the service identity and the driver first, then the submitting actor.
func (s *Service) SubmitValue(ctx context.Context, driver id.PrincipalID, blob []byte, proof string) error {
	ctx, span := s.tracer.Start(ctx, "confidential.SubmitValue")
	defer span.End()

	if driver.IsNil() {
		return id.ErrNilPrincipal
	}
	if err := s.gate.RequireActive(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	handle, err := s.copro.ImportCiphertext(ctx, blob, proof)
	if err != nil {
		// The coprocessor's verdict is the error; no local rewording.
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "ciphertext import failed")
	}

	actor := requestcontext.ActorID(ctx)
	for _, principal := range grantees(s.serviceID, driver, actor) {
		if err := s.copro.GrantAccess(ctx, handle, principal); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "grant decryption access")
		}
		s.ledger.Grant(ctx, handle, principal)
	}

	s.store.SetValue(ctx, driver, handle)

	s.logger.InfoContext(ctx, "confidential value submitted",
		"driver", driver.String(),
		"actor", actor.String(),
	)
	return s.auditP.Emit(ctx, audit.Event{Kind: audit.KindValueSubmitted, Driver: driver, Actor: actor})
}

// ReadValue returns the driver's value handle; the zero handle when unset.
// Pure accessor: no grants are created.
func (s *Service) ReadValue(ctx context.Context, driver id.PrincipalID) (coprocessor.Handle, error) {
	if driver.IsNil() {
		return "", id.ErrNilPrincipal
	}
	return s.store.Value(ctx, driver), nil
}

// ReadResult returns the driver's evaluation result handle; the zero handle
// when never evaluated. Pure accessor.
func (s *Service) ReadResult(ctx context.Context, driver id.PrincipalID) (coprocessor.Handle, error) {
	if driver.IsNil() {
		return "", id.ErrNilPrincipal
	}
	return s.store.Result(ctx, driver), nil
}

// StoreResult records an evaluation result handle and grants it to the
// driver. Called by the threshold evaluator, which has already talked to the
// coprocessor.
func (s *Service) StoreResult(ctx context.Context, driver id.PrincipalID, handle coprocessor.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, principal := range grantees(s.serviceID, driver) {
		if err := s.copro.GrantAccess(ctx, handle, principal); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "grant decryption access")
		}
		s.ledger.Grant(ctx, handle, principal)
	}
	s.store.SetResult(ctx, driver, handle)
	return nil
}

// ValueOrZero returns the driver's value handle, or an encrypted zero when
// unset. The evaluator compares against this zero-equivalent; an unset value
// does not abort evaluation.
func (s *Service) ValueOrZero(ctx context.Context, driver id.PrincipalID) (coprocessor.Handle, error) {
	handle := s.store.Value(ctx, driver)
	if !handle.IsZero() {
		return handle, nil
	}
	zero, err := s.copro.EncodePublic(ctx, 0)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "encode zero value")
	}
	return zero, nil
}

// Wipe clears a driver's value and result entries. Grants on the old handles
// remain in the ledger (additive model); the handles themselves are
// unreachable once wiped.
func (s *Service) Wipe(ctx context.Context, driver id.PrincipalID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Wipe(ctx, driver)
}

// HasGrant answers whether a principal may request decryption of a handle.
func (s *Service) HasGrant(ctx context.Context, h coprocessor.Handle, principal id.PrincipalID) bool {
	return s.ledger.HasGrant(ctx, h, principal)
}

// grantees folds out duplicate principals while preserving order: service
// identity and driver always come first.
func grantees(ordered ...id.PrincipalID) []id.PrincipalID {
	seen := make(map[id.PrincipalID]struct{}, len(ordered))
	out := make([]id.PrincipalID, 0, len(ordered))
	for _, p := range ordered {
		if p.IsNil() {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
