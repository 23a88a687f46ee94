// Package circuitbreaker implements a three-state circuit breaker used
// to shed load from a failing venue API.
package circuitbreaker

import (
	"sync"
	"sync/atomic"
	"time"
)

// State is the breaker state.
type State int32

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config holds the breaker thresholds.
type Config struct {
	FailThreshold    int           `json:"fail_threshold"`
	SuccessThreshold int           `json:"success_threshold"`
	Timeout          time.Duration `json:"timeout"`
}

// Breaker trips open after FailThreshold consecutive failures, probes
// half-open after Timeout, and closes again after SuccessThreshold
// consecutive successes. Safe for concurrent use.
type Breaker struct {
	state            atomic.Int32
	failures         atomic.Int32
	successes        atomic.Int32
	failThreshold    int
	successThreshold int
	timeout          time.Duration
	lastFailTime     atomic.Int64
	mu               sync.Mutex
}

// New creates a closed breaker with the given thresholds.
func New(config Config) *Breaker {
	b := &Breaker{
		failThreshold:    config.FailThreshold,
		successThreshold: config.SuccessThreshold,
		timeout:          config.Timeout,
	}
	b.state.Store(int32(StateClosed))
	return b
}

// Allow reports whether a request may proceed. An open breaker
// transitions to half-open once the timeout has elapsed.
func (b *Breaker) Allow() bool {
	switch State(b.state.Load()) {
	case StateClosed:
		return true
	case StateOpen:
		lastFail := time.Unix(0, b.lastFailTime.Load())
		if time.Since(lastFail) >= b.timeout {
			b.state.Store(int32(StateHalfOpen))
			return true
		}
		return false
	case StateHalfOpen:
		return true
	}
	return false
}

// Record registers the outcome of a request and advances the state machine.
func (b *Breaker) Record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch State(b.state.Load()) {
	case StateClosed:
		if success {
			b.failures.Store(0)
			return
		}
		b.failures.Add(1)
		if int(b.failures.Load()) >= b.failThreshold {
			b.lastFailTime.Store(time.Now().UnixNano())
			b.state.Store(int32(StateOpen))
		}
	case StateHalfOpen:
		if !success {
			b.lastFailTime.Store(time.Now().UnixNano())
			b.successes.Store(0)
			b.state.Store(int32(StateOpen))
			return
		}
		b.successes.Add(1)
		if int(b.successes.Load()) >= b.successThreshold {
			b.state.Store(int32(StateClosed))
			b.failures.Store(0)
			b.successes.Store(0)
		}
	case StateOpen:
		if !success {
			b.lastFailTime.Store(time.Now().UnixNano())
		}
	}
}

// State returns the current breaker state.
func (b *Breaker) State() State {
	return State(b.state.Load())
}

// Reset forces the breaker back to closed with cleared counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Store(int32(StateClosed))
	b.failures.Store(0)
	b.successes.Store(0)
}

// Failures returns the current consecutive-failure count.
func (b *Breaker) Failures() int {
	return int(b.failures.Load())
}
