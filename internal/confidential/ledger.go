package confidential

import (
	"context"
	"sort"
	"sync"

	"github.com/ClarenceRuth/cipher-shipment-stream/internal/coprocessor"
	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
)

// Ledger is the access-grant relation: which principals may request
// decryption of which handle. It mirrors the grants pushed to the
// coprocessor so operators and tests can query eligibility without a
// coprocessor round trip. Grants are additive; there is no revocation path.
type Ledger struct {
	mu     sync.RWMutex
	grants map[coprocessor.Handle]map[id.PrincipalID]struct{}
}

func NewLedger() *Ledger {
	return &Ledger{grants: make(map[coprocessor.Handle]map[id.PrincipalID]struct{})}
}

func (l *Ledger) Grant(_ context.Context, h coprocessor.Handle, principal id.PrincipalID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	set, ok := l.grants[h]
	if !ok {
		set = make(map[id.PrincipalID]struct{})
		l.grants[h] = set
	}
	set[principal] = struct{}{}
}

func (l *Ledger) HasGrant(_ context.Context, h coprocessor.Handle, principal id.PrincipalID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.grants[h][principal]
	return ok
}

// Grants lists the principals eligible for a handle, in stable order.
func (l *Ledger) Grants(_ context.Context, h coprocessor.Handle) []id.PrincipalID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	principals := make([]id.PrincipalID, 0, len(l.grants[h]))
	for p := range l.grants[h] {
		principals = append(principals, p)
	}
	sort.Slice(principals, func(i, j int) bool {
		return principals[i].String() < principals[j].String()
	})
	return principals
}
