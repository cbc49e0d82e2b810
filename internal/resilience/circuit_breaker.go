// Package resilience implements the circuit breaker and retry policy the
// repository layer uses for transient infrastructure failures (spec §7),
// grounded on the teacher's atomic-state CircuitBreaker.
package resilience

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/devmesh-org/taskmesh/internal/observability"
	"github.com/pkg/errors"
)

// State is one of closed/open/half-open.
type State int32

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	ErrOpen              = errors.New("circuit breaker is open")
	ErrHalfOpenSaturated = errors.New("circuit breaker half-open request budget exceeded")
)

// Config tunes the breaker's thresholds.
type Config struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	SuccessThreshold    int
	MaxRequestsHalfOpen int
}

func (c *Config) applyDefaults() {
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
	if c.ResetTimeout == 0 {
		c.ResetTimeout = 30 * time.Second
	}
	if c.SuccessThreshold == 0 {
		c.SuccessThreshold = 2
	}
	if c.MaxRequestsHalfOpen == 0 {
		c.MaxRequestsHalfOpen = 5
	}
}

// CircuitBreaker protects a single downstream dependency (a database pool,
// a cache client) from repeated calls while it is failing.
type CircuitBreaker struct {
	name   string
	config Config
	logger observability.Logger

	mu                  sync.Mutex
	state               State
	consecutiveFailures int
	consecutiveSucc     int
	halfOpenInFlight    int32
	lastStateChange     time.Time
}

// New creates a circuit breaker named for logging/metrics purposes.
func New(name string, config Config, logger observability.Logger) *CircuitBreaker {
	config.applyDefaults()
	return &CircuitBreaker{
		name:            name,
		config:          config,
		logger:          logger,
		state:           StateClosed,
		lastStateChange: time.Now(),
	}
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Allow reports whether a call may proceed, transitioning open->half-open
// once ResetTimeout has elapsed.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil
	case StateOpen:
		if time.Since(cb.lastStateChange) > cb.config.ResetTimeout {
			cb.transitionLocked(StateHalfOpen)
			return nil
		}
		return ErrOpen
	case StateHalfOpen:
		if int(atomic.LoadInt32(&cb.halfOpenInFlight)) >= cb.config.MaxRequestsHalfOpen {
			return ErrHalfOpenSaturated
		}
		return nil
	default:
		return fmt.Errorf("resilience: unknown state %v", cb.state)
	}
}

// Execute runs fn under the breaker's protection.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := cb.Allow(); err != nil {
		return errors.Wrap(err, cb.name)
	}

	if cb.State() == StateHalfOpen {
		atomic.AddInt32(&cb.halfOpenInFlight, 1)
		defer atomic.AddInt32(&cb.halfOpenInFlight, -1)
	}

	err := fn(ctx)
	if err != nil {
		cb.recordFailure()
		return err
	}
	cb.recordSuccess()
	return nil
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.consecutiveSucc = 0
	cb.consecutiveFailures++
	if cb.state == StateHalfOpen || cb.consecutiveFailures >= cb.config.FailureThreshold {
		cb.transitionLocked(StateOpen)
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.consecutiveFailures = 0
	switch cb.state {
	case StateHalfOpen:
		cb.consecutiveSucc++
		if cb.consecutiveSucc >= cb.config.SuccessThreshold {
			cb.transitionLocked(StateClosed)
		}
	case StateOpen:
		cb.transitionLocked(StateClosed)
	}
}

func (cb *CircuitBreaker) transitionLocked(to State) {
	from := cb.state
	cb.state = to
	cb.lastStateChange = time.Now()
	cb.consecutiveFailures = 0
	cb.consecutiveSucc = 0
	if cb.logger != nil {
		cb.logger.Info("circuit breaker transition", map[string]interface{}{
			"name": cb.name, "from": from.String(), "to": to.String(),
		})
	}
}
