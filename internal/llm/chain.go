package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCallTimeout bounds a single provider call so a hung upstream cannot
// stall a request indefinitely.
const DefaultCallTimeout = 90 * time.Second

// Chain tries an ordered list of providers until one succeeds. If every
// provider fails, the error of the first (primary) provider is returned;
// later failures are logged only, preserving a stable error identity for
// callers.
type Chain struct {
	providers []Provider
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewChain builds a fallback chain over the given providers, in priority
// order. At least one provider is required.
func NewChain(logger zerolog.Logger, timeout time.Duration, providers ...Provider) (*Chain, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one provider is required")
	}
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &Chain{
		providers: providers,
		timeout:   timeout,
		logger:    logger,
	}, nil
}

// Complete implements Completer.
func (c *Chain) Complete(ctx context.Context, msgs []Message, opts Options) (string, error) {
	var primaryErr error

	for i, provider := range c.providers {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		content, err := provider.Complete(callCtx, msgs, opts)
		cancel()

		if err == nil {
			if i > 0 {
				c.logger.Info().
					Str("provider", provider.Name()).
					Int("attempt", i+1).
					Msg("fallback provider succeeded")
			}
			return content, nil
		}

		if i == 0 {
			primaryErr = &ProviderError{Provider: provider.Name(), Cause: err}
			c.logger.Warn().
				Err(err).
				Str("provider", provider.Name()).
				Msg("primary provider failed, trying fallback")
		} else {
			c.logger.Error().
				Err(err).
				Str("provider", provider.Name()).
				Msg("fallback provider failed")
		}

		// Do not bother with fallbacks once the caller has gone away.
		if ctx.Err() != nil {
			break
		}
	}

	return "", primaryErr
}

// Close closes every provider in the chain.
func (c *Chain) Close() error {
	var firstErr error
	for _, p := range c.providers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
