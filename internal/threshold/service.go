// Package threshold evaluates a driver's confidential shipment count against
// the public target. The comparison itself happens inside the coprocessor;
// this package only moves handles and records the outcome.
package threshold

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ClarenceRuth/cipher-shipment-stream/internal/audit"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/confidential"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/coprocessor"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/lifecycle"
	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
	dErrors "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain-errors"
	"github.com/ClarenceRuth/cipher-shipment-stream/pkg/requestcontext"
)

// Policy names the comparison in force. Deployments disagree on whether a
// driver "meets" the target at exactly the threshold value, so the choice is
// explicit configuration. Tests pin both behaviors.
type Policy string

const (
	// PolicyStrict is value > threshold: the target must be exceeded.
	PolicyStrict Policy = "strict"

	// PolicyInclusive is value >= threshold: reaching the target counts.
	PolicyInclusive Policy = "inclusive"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyStrict, PolicyInclusive:
		return Policy(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "comparison policy must be strict or inclusive")
	}
}

// Service evaluates drivers and owns the public threshold value.
type Service struct {
	mu        sync.RWMutex
	threshold uint32

	policy    Policy
	adminOnly bool

	gate   *lifecycle.Service
	values *confidential.Service
	copro  coprocessor.Coprocessor
	auditP *audit.Publisher
	logger *slog.Logger
	tracer trace.Tracer
}

// NewService builds the evaluator. adminOnly gates SetThreshold behind the
// owner; the default wiring leaves it open.
func NewService(
	initial uint32,
	policy Policy,
	adminOnly bool,
	gate *lifecycle.Service,
	values *confidential.Service,
	copro coprocessor.Coprocessor,
	auditP *audit.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		threshold: initial,
		policy:    policy,
		adminOnly: adminOnly,
		gate:      gate,
		values:    values,
		copro:     copro,
		auditP:    auditP,
		logger:    logger,
		tracer:    otel.Tracer("threshold"),
	}
}

// Threshold returns the public target.
func (s *Service) Threshold() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threshold
}

// PolicyInForce reports which comparison this deployment runs.
func (s *Service) PolicyInForce() Policy {
	return s.policy
}

// SetThreshold updates the public target. Owner-gated only when the
// deployment opted in via adminOnly.
func (s *Service) SetThreshold(ctx context.Context, value uint32) error {
	actor := requestcontext.ActorID(ctx)
	if s.adminOnly && (actor.IsNil() || actor != s.gate.Owner()) {
		return lifecycle.ErrNotOwner
	}

	s.mu.Lock()
	s.threshold = value
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "threshold updated", "actor", actor.String())
	return s.auditP.Emit(ctx, audit.Event{Kind: audit.KindThresholdUpdated, Actor: actor})
}

// Evaluate compares a driver's confidential value to the threshold and
// stores the ciphertext boolean result, overwriting any previous result.
// An unset value is compared as an encrypted zero; the evaluation still runs
// rather than failing. The result is granted to the driver, not automatically
// to the caller.
func (s *Service) Evaluate(ctx context.Context, driver id.PrincipalID) (coprocessor.Handle, error) {
	ctx, span := s.tracer.Start(ctx, "threshold.Evaluate")
	defer span.End()

	if driver.IsNil() {
		return "", id.ErrNilPrincipal
	}
	if err := s.gate.RequireActive(ctx); err != nil {
		return "", err
	}

	value, err := s.values.ValueOrZero(ctx, driver)
	if err != nil {
		return "", err
	}
	encoded, err := s.copro.EncodePublic(ctx, s.Threshold())
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "encode threshold")
	}

	var result coprocessor.Handle
	switch s.policy {
	case PolicyInclusive:
		result, err = s.copro.GreaterOrEqual(ctx, value, encoded)
	default:
		result, err = s.copro.GreaterThan(ctx, value, encoded)
	}
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "confidential comparison")
	}

	if err := s.values.StoreResult(ctx, driver, result); err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "threshold evaluated", "driver", driver.String())
	if err := s.auditP.Emit(ctx, audit.Event{
		Kind:   audit.KindThresholdEvaluated,
		Driver: driver,
		Actor:  requestcontext.ActorID(ctx),
	}); err != nil {
		return "", err
	}
	return result, nil
}
