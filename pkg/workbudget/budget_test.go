package workbudget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOpBudget(t *testing.T) {
	t.Run("spends down to the margin and no further", func(t *testing.T) {
		b := NewOpBudget(5, 2)
		spent := 0
		for b.Spend() {
			spent++
		}
		assert.Equal(t, 3, spent)
		assert.Equal(t, 2, b.Remaining())
	})

	t.Run("zero margin allows the full budget", func(t *testing.T) {
		b := NewOpBudget(3, 0)
		spent := 0
		for b.Spend() {
			spent++
		}
		assert.Equal(t, 3, spent)
	})

	t.Run("budget below margin spends nothing", func(t *testing.T) {
		b := NewOpBudget(1, 2)
		assert.False(t, b.Spend())
		assert.Equal(t, 1, b.Remaining())
	})
}

func TestDeadlineBudget(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("allows spend before deadline margin", func(t *testing.T) {
		clock := base
		b := NewDeadlineBudget(base.Add(time.Second), 100*time.Millisecond).
			WithClock(func() time.Time { return clock })
		assert.True(t, b.Spend())

		clock = base.Add(850 * time.Millisecond)
		assert.True(t, b.Spend())
	})

	t.Run("refuses spend inside the margin window", func(t *testing.T) {
		clock := base.Add(950 * time.Millisecond)
		b := NewDeadlineBudget(base.Add(time.Second), 100*time.Millisecond).
			WithClock(func() time.Time { return clock })
		assert.False(t, b.Spend())
	})
}

func TestUnlimited(t *testing.T) {
	b := Unlimited{}
	for range 1000 {
		assert.True(t, b.Spend())
	}
}
