package healthcheck

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Checker performs periodic reachability checks against the configured
// external probe targets and keeps the latest status per target.
type Checker struct {
	mu           sync.RWMutex
	targets      []string
	healthStatus map[string]*Status
	interval     time.Duration
	timeout      time.Duration
	maxFailures  int
	logger       *zap.Logger
	stopChan     chan struct{}
	running      bool
}

// Config holds health checker configuration
type Config struct {
	Targets     []string
	Interval    time.Duration // How often to check (default: 30s)
	Timeout     time.Duration // Request timeout (default: 5s)
	MaxFailures int           // Failures before marking unhealthy (default: 3)
}

func NewChecker(cfg *Config, logger *zap.Logger) *Checker {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	checker := &Checker{
		targets:      cfg.Targets,
		healthStatus: make(map[string]*Status),
		interval:     cfg.Interval,
		timeout:      cfg.Timeout,
		maxFailures:  cfg.MaxFailures,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}

	for _, target := range cfg.Targets {
		checker.healthStatus[target] = &Status{
			Target:    target,
			IsHealthy: true, // Assume healthy initially
			LastCheck: time.Now(),
		}
	}

	return checker
}

// Start begins periodic checks. It is a no-op with zero targets.
func (c *Checker) Start() {
	if len(c.targets) == 0 {
		return
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	// Stop closed the previous channel; a restart needs a fresh one.
	c.stopChan = make(chan struct{})
	stop := c.stopChan
	c.mu.Unlock()

	c.logger.Info("starting external target health checks",
		zap.Int("targets", len(c.targets)),
		zap.Duration("interval", c.interval))

	c.checkAll()

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.checkAll()
			case <-stop:
				return
			}
		}
	}()
}

// Stop halts the periodic checks.
func (c *Checker) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		close(c.stopChan)
		c.running = false
	}
}

func (c *Checker) checkAll() {
	var wg sync.WaitGroup

	for _, target := range c.targets {
		wg.Add(1)
		go func(t string) {
			defer wg.Done()
			c.checkTarget(t)
		}(target)
	}

	wg.Wait()
}

func (c *Checker) checkTarget(target string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	healthy := false
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err == nil {
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			resp.Body.Close()
			healthy = resp.StatusCode < http.StatusInternalServerError
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	status := c.healthStatus[target]
	status.LastCheck = time.Now()

	if healthy {
		status.LastSuccess = status.LastCheck
		status.FailureCount = 0
		if !status.IsHealthy {
			c.logger.Info("external target recovered", zap.String("target", target))
		}
		status.IsHealthy = true
		return
	}

	status.LastFailure = status.LastCheck
	status.FailureCount++
	if status.FailureCount >= c.maxFailures && status.IsHealthy {
		status.IsHealthy = false
		c.logger.Warn("external target marked unhealthy",
			zap.String("target", target),
			zap.Int("failures", status.FailureCount))
	}
}

// Statuses returns a copy of the per-target statuses.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	statuses := make([]Status, 0, len(c.targets))
	for _, target := range c.targets {
		statuses = append(statuses, *c.healthStatus[target])
	}
	return statuses
}

// Overall reduces target statuses to a single health level. No targets means
// nothing external to degrade on.
func (c *Checker) Overall() HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.targets) == 0 {
		return Healthy
	}

	unhealthy := 0
	for _, status := range c.healthStatus {
		if !status.IsHealthy {
			unhealthy++
		}
	}

	switch {
	case unhealthy == 0:
		return Healthy
	case unhealthy < len(c.targets):
		return Degraded
	default:
		return Unhealthy
	}
}
