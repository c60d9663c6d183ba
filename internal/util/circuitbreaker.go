package util

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// CircuitState represents the state of the circuit breaker
type CircuitState string

const (
	CircuitStateClosed   CircuitState = "CLOSED"
	CircuitStateOpen     CircuitState = "OPEN"
	CircuitStateHalfOpen CircuitState = "HALF_OPEN"
)

func (s CircuitState) String() string {
	return string(s)
}

// HealthCheckFunction reports whether the guarded dependency answers again.
type HealthCheckFunction func() bool

// CircuitBreaker stops calls to a failing dependency until a health check or the reset
// timeout lets one trial call through (HALF_OPEN). A failed trial reopens the circuit.
type CircuitBreaker struct {
	name                string
	state               CircuitState
	failureCount        int
	failureThreshold    int
	resetTimeout        time.Duration
	nextRetryTime       time.Time
	nextHealthCheckTime time.Time
	healthCheckInterval time.Duration
	isHealthChecking    bool
	healthCheckFn       HealthCheckFunction
	now                 func() time.Time
	logger              *zap.Logger
	mu                  sync.Mutex
}

func NewCircuitBreaker(
	name string,
	failureThreshold int,
	resetTimeout time.Duration,
	healthCheckInterval time.Duration,
	healthCheckFn HealthCheckFunction,
	logger *zap.Logger,
) *CircuitBreaker {
	return &CircuitBreaker{
		name:                name,
		state:               CircuitStateClosed,
		failureThreshold:    failureThreshold,
		resetTimeout:        resetTimeout,
		healthCheckInterval: healthCheckInterval,
		healthCheckFn:       healthCheckFn,
		now:                 time.Now,
		logger:              logger.With(zap.String("circuit", name)),
	}
}

func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitStateOpen {
		now := cb.now()
		if cb.healthCheckFn != nil {
			if now.After(cb.nextHealthCheckTime) && !cb.isHealthChecking {
				cb.isHealthChecking = true
				go cb.runHealthCheck()
			}
		} else if now.After(cb.nextRetryTime) {
			cb.transitionTo(CircuitStateHalfOpen)
		}
	}

	return cb.state
}

func (cb *CircuitBreaker) CanExecute() bool {
	return cb.GetState() != CircuitStateOpen
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch {
	case cb.state == CircuitStateHalfOpen:
		cb.logger.Info("Circuit Breaker: Service recovered")
		cb.failureCount = 0
		cb.transitionTo(CircuitStateClosed)
	case cb.failureCount > 0:
		cb.logger.Debug("Circuit Breaker: Resetting failure count", zap.Int("was", cb.failureCount))
		cb.failureCount = 0
	}
}

// RecordFailure counts a failure. customTimeout overrides the reset timeout (rate limits).
func (cb *CircuitBreaker) RecordFailure(customTimeout time.Duration) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++

	timeout := cb.resetTimeout
	if customTimeout > 0 {
		timeout = customTimeout
	}

	cb.logger.Warn("Circuit Breaker: Failure recorded",
		zap.Int("count", cb.failureCount),
		zap.Int("threshold", cb.failureThreshold),
		zap.Duration("timeout", timeout),
	)

	if cb.state == CircuitStateHalfOpen || cb.failureCount >= cb.failureThreshold {
		cb.open(timeout)
	}
}

func (cb *CircuitBreaker) open(timeout time.Duration) {
	now := cb.now()
	cb.nextRetryTime = now.Add(timeout)
	if cb.healthCheckFn != nil {
		cb.nextHealthCheckTime = now.Add(cb.healthCheckInterval)
	}
	cb.transitionTo(CircuitStateOpen)
}

func (cb *CircuitBreaker) runHealthCheck() {
	cb.logger.Info("Circuit Breaker: Running health check")
	healthy := cb.healthCheckFn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.isHealthChecking = false
	if healthy {
		cb.transitionTo(CircuitStateHalfOpen)
		return
	}
	cb.logger.Warn("Circuit Breaker: Health check failed")
	cb.nextHealthCheckTime = cb.now().Add(cb.healthCheckInterval)
}

// must be called with lock held
func (cb *CircuitBreaker) transitionTo(newState CircuitState) {
	oldState := cb.state
	cb.state = newState

	nextRetry := "n/a"
	if newState == CircuitStateOpen {
		nextRetry = cb.nextRetryTime.Format(time.RFC3339)
	}

	cb.logger.Info("Circuit Breaker: State transition",
		zap.String("from", oldState.String()),
		zap.String("to", newState.String()),
		zap.Int("failure_count", cb.failureCount),
		zap.String("next_retry", nextRetry),
	)
}

func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.logger.Info("Circuit Breaker: Manual reset")
	cb.state = CircuitStateClosed
	cb.failureCount = 0
	cb.nextRetryTime = time.Time{}
}

func (cb *CircuitBreaker) GetStatus() CircuitBreakerStatus {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	status := CircuitBreakerStatus{
		Name:         cb.name,
		State:        cb.state,
		FailureCount: cb.failureCount,
	}
	if cb.state == CircuitStateOpen {
		next := cb.nextRetryTime
		status.NextRetryTime = &next
	}
	return status
}

type CircuitBreakerStatus struct {
	Name          string       `json:"name"`
	State         CircuitState `json:"state"`
	FailureCount  int          `json:"failure_count"`
	NextRetryTime *time.Time   `json:"next_retry_time,omitempty"`
}
