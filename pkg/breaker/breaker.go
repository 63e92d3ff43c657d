package breaker

import (
	"context"
	"time"

	"github.com/pawfund/pawfund-backend/pkg/logger"
	"github.com/sony/gobreaker"
)

const (
	defaultMaxRequests = 3
	defaultInterval    = 10 * time.Second
	defaultTimeout     = 30 * time.Second
	tripAfter          = 3
)

// New builds a circuit breaker that opens after consecutive failures of an
// outbound dependency and logs every state change.
func New(name string, timeout time.Duration, logg *logger.Logger) *gobreaker.CircuitBreaker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: defaultMaxRequests,
		Interval:    defaultInterval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= tripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logg == nil {
				return
			}
			ctx := logg.WithFields(context.Background(), map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			logg.Warn(ctx, "circuit_breaker.state_change")
		},
	})
}
