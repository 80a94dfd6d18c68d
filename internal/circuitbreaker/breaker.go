package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State represents circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Config configures a breaker
type Config struct {
	Name         string
	MaxFailures  int           // consecutive failures before opening; default 5
	ResetTimeout time.Duration // time spent open before a trial call; default 5m
	// OnStateChange is called with the breaker lock released
	OnStateChange func(name string, from, to State)
}

// CircuitBreaker guards calls to an unreliable dependency such as a
// language model provider.
type CircuitBreaker struct {
	name          string
	maxFailures   int
	resetTimeout  time.Duration
	onStateChange func(name string, from, to State)
	now           func() time.Time

	mu              sync.Mutex
	state           State
	failures        int
	halfOpenInUse   bool
	openedAt        time.Time
	lastStateChange time.Time
}

// NewCircuitBreaker creates a breaker with the given thresholds
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return New(Config{MaxFailures: maxFailures, ResetTimeout: resetTimeout})
}

// New creates a breaker from a Config
func New(cfg Config) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 5 * time.Minute
	}
	return &CircuitBreaker{
		name:            cfg.Name,
		maxFailures:     cfg.MaxFailures,
		resetTimeout:    cfg.ResetTimeout,
		onStateChange:   cfg.OnStateChange,
		now:             time.Now,
		state:           StateClosed,
		lastStateChange: time.Now(),
	}
}

// Name returns the breaker's label
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Call executes fn with circuit breaker protection. When the circuit is open
// fn is not run and ErrCircuitOpen is returned.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}

	err := fn()
	cb.afterCall(err)

	return err
}

func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.resetTimeout {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		from := cb.setState(StateHalfOpen)
		cb.halfOpenInUse = true
		cb.mu.Unlock()
		cb.notify(from, StateHalfOpen)
		return nil

	case StateHalfOpen:
		// One trial call at a time
		if cb.halfOpenInUse {
			cb.mu.Unlock()
			return ErrTooManyRequests
		}
		cb.halfOpenInUse = true
	}

	cb.mu.Unlock()
	return nil
}

func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()

	from := cb.state
	to := from

	if err != nil {
		cb.failures++
		switch cb.state {
		case StateClosed:
			if cb.failures >= cb.maxFailures {
				to = StateOpen
			}
		case StateHalfOpen:
			to = StateOpen
		}
	} else {
		cb.failures = 0
		if cb.state == StateHalfOpen {
			to = StateClosed
		}
	}

	if cb.state == StateHalfOpen {
		cb.halfOpenInUse = false
	}
	if to != from {
		cb.setState(to)
		if to == StateOpen {
			cb.openedAt = cb.now()
		}
	}
	cb.mu.Unlock()

	if to != from {
		cb.notify(from, to)
	}
}

// setState must be called with mu held; it returns the previous state
func (cb *CircuitBreaker) setState(s State) State {
	prev := cb.state
	cb.state = s
	cb.lastStateChange = cb.now()
	if s == StateClosed {
		cb.failures = 0
	}
	return prev
}

func (cb *CircuitBreaker) notify(from, to State) {
	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, from, to)
	}
}

// State returns current circuit breaker state
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats returns the current state and consecutive failure count
func (cb *CircuitBreaker) Stats() (state State, failures int) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state, cb.failures
}

// Reset forces the circuit closed
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	from := cb.setState(StateClosed)
	cb.halfOpenInUse = false
	cb.mu.Unlock()

	if from != StateClosed {
		cb.notify(from, StateClosed)
	}
}
