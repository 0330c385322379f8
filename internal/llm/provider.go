// Package llm adapts external language-model services behind one
// completion contract and chains them with ordered fallback.
package llm

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyCompletion is returned when a provider answers with no text.
	ErrEmptyCompletion = errors.New("provider returned empty completion")
	// ErrLocalUnavailable is returned by the local placeholder provider.
	ErrLocalUnavailable = errors.New("local provider is not available")
	// ErrUnknownHint is returned for provider hints other than auto or local.
	ErrUnknownHint = errors.New("unknown provider hint")
)

// Provider hints accepted by Adapter.For.
const (
	HintAuto  = "auto"
	HintLocal = "local"
)

// Provider is one completion backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

var codeFenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// StripCodeFence removes a fenced code block wrapping the whole text.
// Text that is not entirely fenced is returned trimmed.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if m := codeFenceRe.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

// LocalProvider is the recognized placeholder for the "local" hint.
// It always fails.
type LocalProvider struct{}

func (LocalProvider) Name() string { return HintLocal }

func (LocalProvider) Complete(context.Context, string) (string, error) {
	return "", ErrLocalUnavailable
}
