package estimator

import (
	"testing"
	"time"

	"speedmeter/model"

	"github.com/stretchr/testify/require"
)

func TestRateWindow_PushAndEvict(t *testing.T) {
	t.Parallel()

	w := NewRateWindow(3)
	require.Equal(t, 3, w.Cap())
	require.Equal(t, model.Rates{}, w.Mean())

	w.Push(model.Rates{In: 1, Out: 10})
	w.Push(model.Rates{In: 2, Out: 20})
	require.Equal(t, model.Rates{In: 1.5, Out: 15}, w.Mean())

	for i := 3; i <= 5; i++ {
		w.Push(model.Rates{In: float64(i), Out: float64(10 * i)})
	}
	// 只剩 3, 4, 5
	require.Equal(t, model.Rates{In: 4, Out: 40}, w.Mean())
}

func TestRateWindow_MinimumCapacity(t *testing.T) {
	t.Parallel()

	w := NewRateWindow(0)
	require.Equal(t, 1, w.Cap())
	w.Push(model.Rates{In: 1})
	w.Push(model.Rates{In: 2})
	require.Equal(t, model.Rates{In: 2}, w.Mean())
}

func TestCapacityFor(t *testing.T) {
	t.Parallel()

	require.Equal(t, 10, CapacityFor(10*time.Second, time.Second))
	require.Equal(t, 20, CapacityFor(10*time.Second, 500*time.Millisecond))
	require.Equal(t, 4, CapacityFor(10*time.Second, 3*time.Second))
	require.Equal(t, 1, CapacityFor(time.Second, 5*time.Second))
	require.Equal(t, 1, CapacityFor(0, time.Second))
	require.Equal(t, 1, CapacityFor(time.Second, 0))
}
