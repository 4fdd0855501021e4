package registry

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ClarenceRuth/cipher-shipment-stream/internal/audit"
	registrymetrics "github.com/ClarenceRuth/cipher-shipment-stream/internal/registry/metrics"
	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
	"github.com/ClarenceRuth/cipher-shipment-stream/pkg/requestcontext"
	"github.com/ClarenceRuth/cipher-shipment-stream/pkg/workbudget"
)

// Wiper clears a driver's confidential state. Deregistration owns this
// cascade: membership and ciphertext bindings leave together.
type Wiper interface {
	Wipe(ctx context.Context, driver id.PrincipalID)
}

// Service is the driver registry. Mutations take the service lock so each
// external call is atomic relative to registry state; reads go straight to
// the store and observe the latest committed mutation.
type Service struct {
	mu sync.Mutex

	store   *Store
	wiper   Wiper
	auditP  *audit.Publisher
	logger  *slog.Logger
	metrics *registrymetrics.Metrics
	tracer  trace.Tracer
}

func NewService(store *Store, wiper Wiper, auditP *audit.Publisher, logger *slog.Logger, metrics *registrymetrics.Metrics) *Service {
	return &Service{
		store:   store,
		wiper:   wiper,
		auditP:  auditP,
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer("registry"),
	}
}

// Register adds one driver. No side effects beyond membership, the cached
// count, and the audit record.
func (s *Service) Register(ctx context.Context, driver id.PrincipalID) error {
	ctx, span := s.tracer.Start(ctx, "registry.Register")
	defer span.End()

	if driver.IsNil() {
		return ErrInvalidDriver
	}

	s.mu.Lock()
	err := s.store.Add(ctx, driver)
	s.mu.Unlock()
	if err != nil {
		return ErrAlreadyRegistered
	}

	s.observeRegistered(1)
	return s.auditP.Emit(ctx, audit.Event{
		Kind:   audit.KindDriverRegistered,
		Driver: driver,
		Actor:  requestcontext.ActorID(ctx),
	})
}

// Deregister removes one driver and wipes its confidential bindings.
// Deregistering a non-member is an access violation, not a no-op.
func (s *Service) Deregister(ctx context.Context, driver id.PrincipalID) error {
	ctx, span := s.tracer.Start(ctx, "registry.Deregister")
	defer span.End()

	if driver.IsNil() {
		return ErrInvalidDriver
	}

	s.mu.Lock()
	err := s.store.Remove(ctx, driver)
	if err == nil {
		s.wiper.Wipe(ctx, driver)
	}
	s.mu.Unlock()
	if err != nil {
		return ErrNotRegistered
	}

	s.observeDeregistered(1)
	return s.auditP.Emit(ctx, audit.Event{
		Kind:   audit.KindDriverDeregistered,
		Driver: driver,
		Actor:  requestcontext.ActorID(ctx),
	})
}

// BatchRegister registers many drivers in one call. A null identifier
// anywhere fails the whole call before any mutation; already-registered
// entries are skipped silently. When the budget runs out mid-loop the work
// done so far commits and Complete is false — callers confirm final state
// with IsRegistered or Count.
func (s *Service) BatchRegister(ctx context.Context, drivers []id.PrincipalID, budget workbudget.Budget) (BatchResult, error) {
	ctx, span := s.tracer.Start(ctx, "registry.BatchRegister")
	defer span.End()

	if err := validateBatch(drivers, true); err != nil {
		return BatchResult{}, err
	}
	if budget == nil {
		budget = workbudget.Unlimited{}
	}

	result := BatchResult{Requested: len(drivers), Complete: true}
	toAdd := make([]id.PrincipalID, 0, len(drivers))
	seen := make(map[id.PrincipalID]struct{}, len(drivers))

	s.mu.Lock()
	for _, driver := range drivers {
		if !budget.Spend() {
			result.Complete = false
			break
		}
		if _, dup := seen[driver]; dup || s.store.Contains(ctx, driver) {
			result.Skipped++
			continue
		}
		seen[driver] = struct{}{}
		toAdd = append(toAdd, driver)
		result.Processed++
	}
	// Single commit: the cached count syncs once, after the loop.
	s.store.AddBatch(ctx, toAdd)
	s.mu.Unlock()

	s.observeRegistered(len(toAdd))
	return result, s.emitBatchEvents(ctx, audit.KindDriverRegistered, toAdd, result)
}

// BatchDeregister mirrors BatchRegister but skips null and unregistered
// entries instead of failing the call. Removed drivers lose their
// confidential bindings.
func (s *Service) BatchDeregister(ctx context.Context, drivers []id.PrincipalID, budget workbudget.Budget) (BatchResult, error) {
	ctx, span := s.tracer.Start(ctx, "registry.BatchDeregister")
	defer span.End()

	if err := validateBatch(drivers, false); err != nil {
		return BatchResult{}, err
	}
	if budget == nil {
		budget = workbudget.Unlimited{}
	}

	result := BatchResult{Requested: len(drivers), Complete: true}
	toRemove := make([]id.PrincipalID, 0, len(drivers))

	s.mu.Lock()
	for _, driver := range drivers {
		if !budget.Spend() {
			result.Complete = false
			break
		}
		if driver.IsNil() || !s.store.Contains(ctx, driver) {
			result.Skipped++
			continue
		}
		toRemove = append(toRemove, driver)
	}
	removed := s.store.RemoveBatch(ctx, toRemove)
	for _, driver := range removed {
		s.wiper.Wipe(ctx, driver)
	}
	s.mu.Unlock()

	result.Processed = len(removed)
	s.observeDeregistered(len(removed))
	return result, s.emitBatchEvents(ctx, audit.KindDriverDeregistered, removed, result)
}

// IsRegistered reports membership; the null identifier is never a member.
func (s *Service) IsRegistered(ctx context.Context, driver id.PrincipalID) bool {
	return s.store.Contains(ctx, driver)
}

// Count returns the cached registration count.
func (s *Service) Count(ctx context.Context) int {
	return s.store.Count(ctx)
}

// List pages through the backing list in its current order. Order is not
// stable across deregistrations; two calls may disagree after a removal.
func (s *Service) List(ctx context.Context, offset, limit int) ([]id.PrincipalID, error) {
	page, err := s.store.Page(ctx, offset, limit)
	if err != nil {
		return nil, ErrOutOfBounds
	}
	return page, nil
}

// validateBatch applies the shared size checks. Register batches hard-stop
// on a null identifier; deregister batches tolerate them.
func validateBatch(drivers []id.PrincipalID, rejectNil bool) error {
	if len(drivers) == 0 {
		return ErrEmptyBatch
	}
	if len(drivers) > MaxBatchSize {
		return ErrBatchTooLarge
	}
	if rejectNil {
		for _, driver := range drivers {
			if driver.IsNil() {
				return ErrInvalidDriver
			}
		}
	}
	return nil
}

func (s *Service) emitBatchEvents(ctx context.Context, kind audit.Kind, drivers []id.PrincipalID, result BatchResult) error {
	actor := requestcontext.ActorID(ctx)
	for _, driver := range drivers {
		if err := s.auditP.Emit(ctx, audit.Event{Kind: kind, Driver: driver, Actor: actor}); err != nil {
			return err
		}
	}
	if !result.Complete {
		if s.metrics != nil {
			s.metrics.BatchPartials.Inc()
		}
		s.logger.WarnContext(ctx, "batch committed partially on exhausted budget",
			"requested", result.Requested,
			"processed", result.Processed,
			"skipped", result.Skipped,
		)
		return s.auditP.Emit(ctx, audit.Event{Kind: audit.KindBatchPartial, Actor: actor})
	}
	return nil
}

func (s *Service) observeRegistered(n int) {
	if s.metrics == nil || n == 0 {
		return
	}
	s.metrics.Registered.Add(float64(n))
	s.metrics.RegisteredDrivers.Add(float64(n))
}

func (s *Service) observeDeregistered(n int) {
	if s.metrics == nil || n == 0 {
		return
	}
	s.metrics.Deregistered.Add(float64(n))
	s.metrics.RegisteredDrivers.Sub(float64(n))
}
