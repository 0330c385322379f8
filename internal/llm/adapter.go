package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cloo-solutions/shopmate/internal/logging"
	"github.com/cloo-solutions/shopmate/internal/telemetry"
)

// DefaultCallTimeout bounds a single provider call.
const DefaultCallTimeout = 30 * time.Second

// Generation is a successful completion and the provider that produced it.
type Generation struct {
	Text     string
	Provider string
}

// Generator produces a completion or reports that every provider failed.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Generation, bool)
}

// Chain tries providers in order. A failed call falls through to the next
// provider immediately; there are no retries.
type Chain struct {
	providers   []Provider
	callTimeout time.Duration
}

// NewChain builds a chain. The first provider is the primary one; its output
// has a whole-response code fence stripped.
func NewChain(callTimeout time.Duration, providers ...Provider) *Chain {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &Chain{providers: providers, callTimeout: callTimeout}
}

// Providers returns the provider names in fallback order.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Generate returns the first non-empty completion. The second result is
// false when every provider failed.
func (c *Chain) Generate(ctx context.Context, prompt string) (Generation, bool) {
	for i, p := range c.providers {
		text, err := c.call(ctx, p, prompt)
		if err == nil && i == 0 {
			text = StripCodeFence(text)
		}
		if err == nil && strings.TrimSpace(text) == "" {
			err = ErrEmptyCompletion
		}
		if err != nil {
			logging.L().Warn("llm provider failed",
				zap.String("provider", p.Name()),
				zap.Int("position", i),
				zap.Error(err),
			)
			continue
		}
		return Generation{Text: text, Provider: p.Name()}, true
	}
	return Generation{}, false
}

func (c *Chain) call(ctx context.Context, p Provider, prompt string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "llm.complete", telemetry.SpanAttributes{
		Provider:  p.Name(),
		Operation: "complete",
	})
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	text, err := p.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.Name(), err)
	}
	return text, nil
}

// Adapter selects a provider chain for a request hint.
type Adapter struct {
	auto  *Chain
	local *Chain
}

// NewAdapter creates an adapter whose auto chain is providers in order.
func NewAdapter(callTimeout time.Duration, providers ...Provider) *Adapter {
	return &Adapter{
		auto:  NewChain(callTimeout, providers...),
		local: NewChain(callTimeout, LocalProvider{}),
	}
}

// For returns the chain for hint. An empty hint means auto.
func (a *Adapter) For(hint string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "", HintAuto:
		return a.auto, nil
	case HintLocal:
		return a.local, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHint, hint)
	}
}

// Generate runs the auto chain.
func (a *Adapter) Generate(ctx context.Context, prompt string) (Generation, bool) {
	return a.auto.Generate(ctx, prompt)
}

// Providers returns the auto chain's provider names.
func (a *Adapter) Providers() []string {
	return a.auto.Providers()
}
