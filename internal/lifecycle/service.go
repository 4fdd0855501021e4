// Package lifecycle holds the administrative state machine: the owning
// principal and the Active/Paused toggle that gates confidential-value
// mutation. Registry bookkeeping is deliberately not gated; pausing protects
// ciphertext state, not membership lists.
package lifecycle

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ClarenceRuth/cipher-shipment-stream/internal/audit"
	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
	dErrors "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain-errors"
	"github.com/ClarenceRuth/cipher-shipment-stream/pkg/requestcontext"
)

var (
	// ErrNotOwner covers every owner-gated call by a non-owner, including
	// every call after ownership has been renounced.
	ErrNotOwner = dErrors.New(dErrors.CodeUnauthorized, "caller is not the owner")

	// ErrPaused is returned by confidential operations while paused.
	ErrPaused = dErrors.New(dErrors.CodeInvalidState, "confidential operations are paused")

	ErrAlreadyPaused = dErrors.New(dErrors.CodeConflict, "already paused")
	ErrNotPaused     = dErrors.New(dErrors.CodeConflict, "not paused")

	ErrInvalidOwner = dErrors.New(dErrors.CodeInvalidInput, "new owner must not be the null principal")
)

// Service is the admin/lifecycle controller. All transitions are serialized
// under one lock; reads take the shared side.
type Service struct {
	mu     sync.RWMutex
	owner  id.PrincipalID
	paused bool

	logger *slog.Logger
	auditP *audit.Publisher
}

func NewService(owner id.PrincipalID, logger *slog.Logger, auditP *audit.Publisher) *Service {
	return &Service{owner: owner, logger: logger, auditP: auditP}
}

// Owner returns the current owning principal; nil after renouncement.
func (s *Service) Owner() id.PrincipalID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

// IsPaused reports the current gate state.
func (s *Service) IsPaused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused
}

// RequireActive fails with ErrPaused while the controller is paused. Called
// by the confidential store and the evaluator before any mutation.
func (s *Service) RequireActive(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.paused {
		return ErrPaused
	}
	return nil
}

// requireOwner checks the acting principal against the owner. A renounced
// controller (nil owner) rejects everyone: no caller may be the nil principal.
func (s *Service) requireOwner(ctx context.Context) (id.PrincipalID, error) {
	actor := requestcontext.ActorID(ctx)
	if actor.IsNil() || actor != s.owner {
		return actor, ErrNotOwner
	}
	return actor, nil
}

// Pause transitions Active -> Paused.
func (s *Service) Pause(ctx context.Context) error {
	s.mu.Lock()
	actor, err := s.requireOwner(ctx)
	if err == nil && s.paused {
		err = ErrAlreadyPaused
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.paused = true
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "lifecycle paused", "actor", actor.String())
	return s.auditP.Emit(ctx, audit.Event{Kind: audit.KindPaused, Actor: actor})
}

// Unpause transitions Paused -> Active.
func (s *Service) Unpause(ctx context.Context) error {
	s.mu.Lock()
	actor, err := s.requireOwner(ctx)
	if err == nil && !s.paused {
		err = ErrNotPaused
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.paused = false
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "lifecycle unpaused", "actor", actor.String())
	return s.auditP.Emit(ctx, audit.Event{Kind: audit.KindUnpaused, Actor: actor})
}

// TransferOwnership atomically swaps the owner.
func (s *Service) TransferOwnership(ctx context.Context, newOwner id.PrincipalID) error {
	if newOwner.IsNil() {
		return ErrInvalidOwner
	}

	s.mu.Lock()
	actor, err := s.requireOwner(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.owner = newOwner
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "ownership transferred",
		"actor", actor.String(),
		"new_owner", newOwner.String(),
	)
	return s.auditP.Emit(ctx, audit.Event{Kind: audit.KindOwnershipTransferred, Driver: newOwner, Actor: actor})
}

// RenounceOwnership sets the owner to the null principal. Irreversible: no
// operation can restore an owner afterwards.
func (s *Service) RenounceOwnership(ctx context.Context) error {
	s.mu.Lock()
	actor, err := s.requireOwner(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.owner = id.NilPrincipal
	s.mu.Unlock()

	s.logger.WarnContext(ctx, "ownership renounced", "actor", actor.String())
	return s.auditP.Emit(ctx, audit.Event{Kind: audit.KindOwnershipRenounced, Actor: actor})
}
