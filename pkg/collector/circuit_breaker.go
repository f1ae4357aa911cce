package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/andreweacott/ens-prometheus-exporter/pkg/ens"
	"github.com/andreweacott/ens-prometheus-exporter/pkg/logger"
)

// CircuitBreakerConfig configures the circuit breaker behavior
type CircuitBreakerConfig struct {
	// MaxConsecutiveFailures is the number of consecutive failures before opening
	MaxConsecutiveFailures uint32
	// Timeout is how long the circuit breaker stays open before trying half-open
	Timeout time.Duration
	// Logger receives state changes; optional
	Logger *logger.Logger
}

// DefaultCircuitBreakerConfig returns sensible defaults
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxConsecutiveFailures: 5,
		Timeout:                30 * time.Second,
	}
}

// CircuitBreakerState represents the circuit breaker state
type CircuitBreakerState int

const (
	CircuitClosed CircuitBreakerState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// ErrCircuitOpen is returned while the breaker rejects calls
var ErrCircuitOpen = errors.New("circuit breaker is open")

// circuitBreakerAPI wraps ENSAPI with circuit breaker protection
type circuitBreakerAPI struct {
	api     ENSAPI
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration

	mu       sync.Mutex
	lastErr  error
	lastTime time.Time
}

// NewENSAPIWithCircuitBreaker wraps an ENSAPI with circuit breaker protection.
// Not-found answers are successful calls and never trip the breaker.
func NewENSAPIWithCircuitBreaker(api ENSAPI, config CircuitBreakerConfig) ENSAPI {
	log := config.Logger
	if log == nil {
		log = logger.Discard()
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ENSAPI",
		MaxRequests: 1,
		Interval:    config.Timeout,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.MaxConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ens.ErrNotFound)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &circuitBreakerAPI{
		api:     api,
		breaker: cb,
		timeout: config.Timeout,
	}
}

// execute runs fn through the breaker, keeping the result type
func execute[T any](cb *circuitBreakerAPI, fn func() (T, error)) (T, error) {
	result, err := cb.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		cb.recordError(err)
		var zero T
		return zero, cb.wrapError(err)
	}
	return result.(T), nil
}

// GetPages implements ENSAPI.GetPages with circuit breaker protection
func (cb *circuitBreakerAPI) GetPages(ctx context.Context, pageType ens.PageType, status *ens.PageStatus) ([]ens.Page, error) {
	return execute(cb, func() ([]ens.Page, error) {
		return cb.api.GetPages(ctx, pageType, status)
	})
}

// GetSupporterFields implements ENSAPI.GetSupporterFields with circuit breaker protection
func (cb *circuitBreakerAPI) GetSupporterFields(ctx context.Context) (map[string]ens.SupporterField, error) {
	return execute(cb, func() (map[string]ens.SupporterField, error) {
		return cb.api.GetSupporterFields(ctx)
	})
}

// GetSupporterQuestions implements ENSAPI.GetSupporterQuestions with circuit breaker protection
func (cb *circuitBreakerAPI) GetSupporterQuestions(ctx context.Context) (map[int]ens.SupporterQuestion, error) {
	return execute(cb, func() (map[int]ens.SupporterQuestion, error) {
		return cb.api.GetSupporterQuestions(ctx)
	})
}

func (cb *circuitBreakerAPI) recordError(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.lastErr = err
	cb.lastTime = time.Now()
}

// wrapError converts circuit breaker errors to user-friendly messages
func (cb *circuitBreakerAPI) wrapError(err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		return fmt.Errorf("%w: ENS API is temporarily unavailable (will retry after %v)", ErrCircuitOpen, cb.timeout)
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("circuit breaker is half-open: testing ENS API recovery")
	default:
		return err
	}
}

// State returns the current circuit breaker state
func (cb *circuitBreakerAPI) State() CircuitBreakerState {
	switch cb.breaker.State() {
	case gobreaker.StateOpen:
		return CircuitOpen
	case gobreaker.StateHalfOpen:
		return CircuitHalfOpen
	default:
		return CircuitClosed
	}
}

// LastError returns the last error that occurred
func (cb *circuitBreakerAPI) LastError() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.lastErr
}

// LastErrorTime returns when the last error occurred
func (cb *circuitBreakerAPI) LastErrorTime() time.Time {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.lastTime
}
