package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream down")

func failing() error { return errUpstream }
func succeeding() error { return nil }

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	cb := New(Config{MaxFailures: 3, Timeout: time.Hour})

	for i := 0; i < 3; i++ {
		err := cb.Call(failing)
		require.ErrorIs(t, err, errUpstream)
	}

	assert.Equal(t, StateOpen, cb.State())

	err := cb.Call(succeeding)
	assert.ErrorIs(t, err, ErrCircuitOpen, "open breaker fails fast")
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := New(Config{MaxFailures: 3, Timeout: time.Hour})

	_ = cb.Call(failing)
	_ = cb.Call(failing)
	_ = cb.Call(succeeding)
	_ = cb.Call(failing)
	_ = cb.Call(failing)

	assert.Equal(t, StateClosed, cb.State(), "interleaved successes keep the circuit closed")
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	cb := New(Config{MaxFailures: 1, Timeout: 10 * time.Millisecond})

	_ = cb.Call(failing)
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)

	err := cb.Call(succeeding)
	require.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State(), "a half-open success closes the circuit")
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := New(Config{MaxFailures: 1, Timeout: 10 * time.Millisecond})

	_ = cb.Call(failing)
	time.Sleep(20 * time.Millisecond)

	err := cb.Call(failing)
	require.ErrorIs(t, err, errUpstream)
	assert.Equal(t, StateOpen, cb.State())
}

func TestBreakerManualReset(t *testing.T) {
	cb := New(Config{MaxFailures: 1, Timeout: time.Hour})

	_ = cb.Call(failing)
	require.Equal(t, StateOpen, cb.State())

	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())

	err := cb.Call(succeeding)
	assert.NoError(t, err)
}

func TestBreakerMetrics(t *testing.T) {
	cb := New(Config{MaxFailures: 5, Timeout: time.Hour})

	_ = cb.Call(failing)
	_ = cb.Call(failing)

	m := cb.Metrics()
	assert.Equal(t, StateClosed, m.State)
	assert.Equal(t, 2, m.FailureCount)
	assert.False(t, m.LastFailureTime.IsZero())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(99).String())
}
