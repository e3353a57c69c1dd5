package resilience

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig is read from <PREFIX>_CIRCUIT_* variables.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func (c CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = 5
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 30 * time.Second
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = 1
	}
	return c
}

func (c CircuitBreakerConfig) Validate(prefix string) error {
	switch {
	case !c.Enabled:
		return nil
	case c.FailureThreshold < 1:
		return fmt.Errorf("%s_CIRCUIT_FAILURE_COUNT must be >= 1", prefix)
	case c.OpenTimeout <= 0:
		return fmt.Errorf("%s_CIRCUIT_OPEN_TIMEOUT must be > 0", prefix)
	case c.HalfOpenMaxReq < 1:
		return fmt.Errorf("%s_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1", prefix)
	}
	return nil
}

type CircuitState uint8

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// StateChangeFunc observes transitions. It runs with the breaker lock held and must not call back into it.
type StateChangeFunc func(name string, from, to CircuitState)

type BreakerOption func(*CircuitBreaker)

func WithClock(now func() time.Time) BreakerOption {
	return func(b *CircuitBreaker) {
		if now != nil {
			b.now = now
		}
	}
}

func WithStateChange(fn StateChangeFunc) BreakerOption {
	return func(b *CircuitBreaker) { b.onChange = fn }
}

// CircuitBreaker trips after FailureThreshold consecutive failures, rejects calls for
// OpenTimeout, then lets HalfOpenMaxReq probes through. All probes must succeed to close.
type CircuitBreaker struct {
	name     string
	cfg      CircuitBreakerConfig
	now      func() time.Time
	onChange StateChangeFunc

	mu        sync.Mutex
	state     CircuitState
	failures  int
	probes    int
	passed    int
	openUntil time.Time
}

func NewCircuitBreaker(name string, cfg CircuitBreakerConfig, opts ...BreakerOption) *CircuitBreaker {
	b := &CircuitBreaker{name: name, cfg: cfg.withDefaults(), now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *CircuitBreaker) Name() string { return b.name }

// Execute runs fn unless the circuit is open. isFailure decides which errors count
// against the circuit; nil counts every error. A disabled breaker always runs fn.
func (b *CircuitBreaker) Execute(fn func() error, isFailure func(error) bool) error {
	if !b.cfg.Enabled {
		return fn()
	}
	if err := b.admit(); err != nil {
		return err
	}
	err := fn()
	b.settle(err != nil && (isFailure == nil || isFailure(err)))
	return err
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expire()
	return b.state
}

func (b *CircuitBreaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.expire()
	switch b.state {
	case CircuitOpen:
		return ErrCircuitOpen
	case CircuitHalfOpen:
		if b.probes >= b.cfg.HalfOpenMaxReq {
			return ErrCircuitOpen
		}
		b.probes++
	}
	return nil
}

func (b *CircuitBreaker) settle(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitClosed:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.trip()
		}
	case CircuitHalfOpen:
		if b.probes > 0 {
			b.probes--
		}
		if failed {
			b.trip()
			return
		}
		b.passed++
		if b.passed >= b.cfg.HalfOpenMaxReq && b.probes == 0 {
			b.moveTo(CircuitClosed)
		}
	case CircuitOpen:
		// A call admitted before the trip failed late.
		if failed {
			b.openUntil = b.now().Add(b.cfg.OpenTimeout)
		}
	}
}

func (b *CircuitBreaker) expire() {
	if b.state == CircuitOpen && !b.now().Before(b.openUntil) {
		b.moveTo(CircuitHalfOpen)
	}
}

func (b *CircuitBreaker) trip() {
	b.moveTo(CircuitOpen)
	b.openUntil = b.now().Add(b.cfg.OpenTimeout)
}

func (b *CircuitBreaker) moveTo(to CircuitState) {
	from := b.state
	b.state = to
	b.failures, b.probes, b.passed = 0, 0, 0
	if from != to && b.onChange != nil {
		b.onChange(b.name, from, to)
	}
}
