package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name  string
	text  string
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Complete(ctx context.Context, _ string) (string, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.text, s.err
}

func TestChain_PrimarySuccessStripsFence(t *testing.T) {
	primary := &stubProvider{name: "gemini", text: "```json\n{\"tool\": \"x\"}\n```"}
	secondary := &stubProvider{name: "groq", text: "unused"}

	gen, ok := NewChain(time.Second, primary, secondary).Generate(context.Background(), "p")

	require.True(t, ok)
	assert.Equal(t, `{"tool": "x"}`, gen.Text)
	assert.Equal(t, "gemini", gen.Provider)
	assert.Equal(t, int32(0), secondary.calls.Load())
}

func TestChain_FallsThroughWithoutRetry(t *testing.T) {
	primary := &stubProvider{name: "gemini", err: errors.New("429 quota exceeded")}
	secondary := &stubProvider{name: "groq", text: "```\nfenced\n```"}

	gen, ok := NewChain(time.Second, primary, secondary).Generate(context.Background(), "p")

	require.True(t, ok)
	assert.Equal(t, "groq", gen.Provider)
	assert.Equal(t, "```\nfenced\n```", gen.Text)
	assert.Equal(t, int32(1), primary.calls.Load())
}

func TestChain_EmptyCompletionFallsThrough(t *testing.T) {
	primary := &stubProvider{name: "gemini", text: "   "}
	secondary := &stubProvider{name: "groq", text: "odpowiedź"}

	gen, ok := NewChain(time.Second, primary, secondary).Generate(context.Background(), "p")
	require.True(t, ok)
	assert.Equal(t, "groq", gen.Provider)
}

func TestChain_AllFail(t *testing.T) {
	chain := NewChain(time.Second,
		&stubProvider{name: "gemini", err: errors.New("down")},
		&stubProvider{name: "groq", err: errors.New("down")},
	)

	gen, ok := chain.Generate(context.Background(), "p")
	assert.False(t, ok)
	assert.Equal(t, Generation{}, gen)

	_, ok = NewChain(time.Second).Generate(context.Background(), "p")
	assert.False(t, ok)
}

func TestChain_CallTimeout(t *testing.T) {
	slow := &stubProvider{name: "gemini", text: "late", delay: time.Second}
	fast := &stubProvider{name: "groq", text: "fast"}

	start := time.Now()
	gen, ok := NewChain(20*time.Millisecond, slow, fast).Generate(context.Background(), "p")

	require.True(t, ok)
	assert.Equal(t, "groq", gen.Provider)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestAdapter_For(t *testing.T) {
	a := NewAdapter(time.Second, &stubProvider{name: "gemini", text: "hej"})
	assert.Equal(t, []string{"gemini"}, a.Providers())

	for _, hint := range []string{"", "auto", "AUTO"} {
		g, err := a.For(hint)
		require.NoError(t, err)
		gen, ok := g.Generate(context.Background(), "p")
		require.True(t, ok)
		assert.Equal(t, "hej", gen.Text)
	}

	g, err := a.For("local")
	require.NoError(t, err)
	_, ok := g.Generate(context.Background(), "p")
	assert.False(t, ok)

	_, err = a.For("openrouter")
	assert.ErrorIs(t, err, ErrUnknownHint)
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\ntekst\n```", "tekst"},
		{"  ```json {\"a\":1} ```  ", `{"a":1}`},
		{"Oto ```json {} ``` w środku", "Oto ```json {} ``` w środku"},
		{"  zwykły tekst  ", "zwykły tekst"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StripCodeFence(tt.in), tt.in)
	}
}

func TestLocalProvider(t *testing.T) {
	_, err := LocalProvider{}.Complete(context.Background(), "p")
	assert.ErrorIs(t, err, ErrLocalUnavailable)
	assert.Equal(t, "local", LocalProvider{}.Name())
}
