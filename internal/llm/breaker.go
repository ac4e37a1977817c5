package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes the circuit breaker wrapped around a provider.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

// DefaultBreakerConfig returns conservative breaker settings: trip after a
// 60% failure ratio over at least 5 requests, probe again after 30s.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      2,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		MinRequests:      5,
		FailureThreshold: 0.6,
	}
}

// BreakerProvider wraps a Provider with a circuit breaker so a failing
// upstream is skipped quickly and the chain can advance to its fallback
// without waiting out a full timeout on every request.
type BreakerProvider struct {
	inner Provider
	cb    *gobreaker.CircuitBreaker[string]
}

// WithBreaker wraps the provider in a circuit breaker.
func WithBreaker(inner Provider, cfg BreakerConfig, logger zerolog.Logger) *BreakerProvider {
	settings := gobreaker.Settings{
		Name:        "llm-" + inner.Name(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	return &BreakerProvider{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[string](settings),
	}
}

// Name implements Provider.
func (b *BreakerProvider) Name() string {
	return b.inner.Name()
}

// Complete implements Provider.
func (b *BreakerProvider) Complete(ctx context.Context, msgs []Message, opts Options) (string, error) {
	return b.cb.Execute(func() (string, error) {
		return b.inner.Complete(ctx, msgs, opts)
	})
}

// Close implements Provider.
func (b *BreakerProvider) Close() error {
	return b.inner.Close()
}
