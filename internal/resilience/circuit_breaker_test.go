package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func failing(context.Context) error { return errBoom }
func succeeding(context.Context) error { return nil }

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(Config{
		Name:    "test",
		Timeout: time.Minute,
		ReadyToTrip: func(c Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(ctx, failing), errBoom)
	}
	assert.Equal(t, StateOpen, cb.State())

	err := cb.Execute(ctx, succeeding)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(Config{
		Name:        "test",
		MaxRequests: 1,
		Timeout:     20 * time.Millisecond,
		ReadyToTrip: func(c Counts) bool {
			return c.ConsecutiveFailures >= 1
		},
	})

	ctx := context.Background()
	require.ErrorIs(t, cb.Execute(ctx, failing), errBoom)
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(30 * time.Millisecond)
	require.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(ctx, succeeding))
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(Config{
		Name:        "test",
		MaxRequests: 1,
		Timeout:     20 * time.Millisecond,
		ReadyToTrip: func(c Counts) bool {
			return c.ConsecutiveFailures >= 1
		},
	})

	ctx := context.Background()
	require.ErrorIs(t, cb.Execute(ctx, failing), errBoom)

	time.Sleep(30 * time.Millisecond)
	require.ErrorIs(t, cb.Execute(ctx, failing), errBoom)
	assert.Equal(t, StateOpen, cb.State())
}

func TestBreakerStateChangeCallback(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(Config{
		Name:    "providers",
		Timeout: time.Minute,
		ReadyToTrip: func(c Counts) bool {
			return c.ConsecutiveFailures >= 1
		},
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	_ = cb.Execute(context.Background(), failing)
	require.Len(t, transitions, 1)
	assert.Equal(t, "closed->open", transitions[0])
}

func TestManagerReusesBreakers(t *testing.T) {
	m := NewManager()

	a := m.Get("anthropic", ProviderConfig("anthropic"))
	b := m.Get("anthropic", ProviderConfig("anthropic"))
	assert.Same(t, a, b)

	states := m.AllStates()
	assert.Len(t, states, 1)
	assert.Equal(t, StateClosed, states["anthropic"])
}
