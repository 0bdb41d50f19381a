package healthcheck

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckerMarksHealthyTarget(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	checker := NewChecker(&Config{
		Targets:     []string{upstream.URL},
		MaxFailures: 1,
	}, nil)

	checker.checkAll()

	statuses := checker.Statuses()
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].IsHealthy)
	assert.Equal(t, Healthy, checker.Overall())
}

func TestCheckerMarksUnreachableTargetUnhealthy(t *testing.T) {
	checker := NewChecker(&Config{
		Targets:     []string{"http://127.0.0.1:1/health"},
		Timeout:     200 * time.Millisecond,
		MaxFailures: 2,
	}, nil)

	checker.checkAll()
	statuses := checker.Statuses()
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].IsHealthy, "below the failure threshold the target keeps its standing")

	checker.checkAll()
	statuses = checker.Statuses()
	assert.False(t, statuses[0].IsHealthy)
	assert.Equal(t, Unhealthy, checker.Overall())
}

func TestCheckerRecovery(t *testing.T) {
	healthy := false
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if healthy {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer upstream.Close()

	checker := NewChecker(&Config{
		Targets:     []string{upstream.URL},
		MaxFailures: 1,
	}, nil)

	checker.checkAll()
	assert.Equal(t, Unhealthy, checker.Overall())

	healthy = true
	checker.checkAll()
	assert.Equal(t, Healthy, checker.Overall())

	statuses := checker.Statuses()
	assert.Equal(t, 0, statuses[0].FailureCount)
}

func TestCheckerNoTargets(t *testing.T) {
	checker := NewChecker(&Config{}, nil)
	checker.Start() // no-op
	assert.Empty(t, checker.Statuses())
	assert.Equal(t, Healthy, checker.Overall())
}

func TestCheckerStartStopIdempotent(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	checker := NewChecker(&Config{
		Targets:  []string{upstream.URL},
		Interval: time.Hour,
	}, nil)

	checker.Start()
	checker.Start()
	checker.Stop()
	checker.Stop()
}

func TestCheckerRestartsAfterStop(t *testing.T) {
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	checker := NewChecker(&Config{
		Targets:  []string{upstream.URL},
		Interval: time.Hour,
	}, nil)

	checker.Start()
	checker.Stop()

	before := hits.Load()
	checker.Start()
	defer checker.Stop()

	assert.Greater(t, hits.Load(), before, "a stopped checker can be started again")
}
