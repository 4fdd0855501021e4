// Package workbudget abstracts a remaining-work budget for batch loops.
//
// Batch operations in the registry commit partial progress when the budget
// runs low instead of failing the whole call. The budget is injected so the
// same loop is testable with a plain counter, bounded by wall-clock time in a
// server, or left unlimited.
package workbudget

import "time"

// Budget answers whether there is enough headroom left to process one more
// item. Implementations are not required to be safe for concurrent use; a
// budget belongs to a single batch call.
type Budget interface {
	// Spend consumes one unit of work. It returns false when the remaining
	// budget is below the safety margin, in which case the caller must stop
	// and commit what it has.
	Spend() bool
}

// Unlimited never exhausts. A nil Budget is treated the same way by callers.
type Unlimited struct{}

func (Unlimited) Spend() bool { return true }

// OpBudget is a simple operation counter with a safety margin, the in-memory
// stand-in for an execution-metering runtime.
type OpBudget struct {
	remaining int
	margin    int
}

// NewOpBudget builds a counter budget. margin is the headroom kept in
// reserve: Spend refuses once remaining would drop below it.
func NewOpBudget(total, margin int) *OpBudget {
	return &OpBudget{remaining: total, margin: margin}
}

func (b *OpBudget) Spend() bool {
	if b.remaining-1 < b.margin {
		return false
	}
	b.remaining--
	return true
}

// Remaining reports the unspent units, margin included.
func (b *OpBudget) Remaining() int {
	return b.remaining
}

// DeadlineBudget stops spending once the deadline minus the margin has
// passed. now is injectable for tests.
type DeadlineBudget struct {
	deadline time.Time
	margin   time.Duration
	now      func() time.Time
}

func NewDeadlineBudget(deadline time.Time, margin time.Duration) *DeadlineBudget {
	return &DeadlineBudget{deadline: deadline, margin: margin, now: time.Now}
}

// WithClock overrides the clock source, for tests.
func (b *DeadlineBudget) WithClock(now func() time.Time) *DeadlineBudget {
	b.now = now
	return b
}

func (b *DeadlineBudget) Spend() bool {
	return b.now().Before(b.deadline.Add(-b.margin))
}
