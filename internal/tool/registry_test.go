package tool

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/shopmate/internal/domain"
)

type noArgs struct{}

func (noArgs) Validate() error { return nil }

// funcTool adapts a function to the Tool interface.
type funcTool struct {
	name    string
	timeout time.Duration
	fn      func(ctx context.Context) (string, error)
}

func (f *funcTool) Name() string                                        { return f.name }
func (f *funcTool) Signature() string                                   { return f.name + "()" }
func (f *funcTool) Description() string                                 { return "test tool" }
func (f *funcTool) Timeout() time.Duration                              { return f.timeout }
func (f *funcTool) Decode(map[string]any) (Args, error)                 { return noArgs{}, nil }
func (f *funcTool) Execute(ctx context.Context, _ Args) (string, error) { return f.fn(ctx) }

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewInstallmentTool()))

	got, err := r.Get(InstallmentToolName)
	require.NoError(t, err)
	assert.Equal(t, InstallmentToolName, got.Name())
	assert.True(t, r.Has(InstallmentToolName))

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrToolNotRegistered)
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewInstallmentTool()))
	assert.ErrorIs(t, r.Register(NewInstallmentTool()), ErrToolAlreadyRegistered)
	assert.ErrorIs(t, r.Register(nil), ErrToolNotRegistered)
}

func TestRegistry_Catalog(t *testing.T) {
	r, err := NewShoppingRegistry(nil, nil, nil)
	require.NoError(t, err)

	catalog := r.Catalog()
	lines := strings.Split(strings.TrimSpace(catalog), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "DOSTĘPNE NARZĘDZIA:", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1. get_product_details(product_name: str) - "))
	assert.True(t, strings.HasPrefix(lines[2], "2. calculate_installment(price: float, months: int) - "))
}

func TestRegistry_InvokeUnknownTool(t *testing.T) {
	res := NewRegistry().Invoke(context.Background(), "nope", nil, 0)
	assert.Equal(t, domain.ErrCodeToolError, res.Code)
	assert.Contains(t, res.Message, "nope")
}

func TestRegistry_InvokeTimeout(t *testing.T) {
	r := NewRegistry()
	release := make(chan struct{})
	defer close(release)
	require.NoError(t, r.Register(&funcTool{
		name:    "slow",
		timeout: 50 * time.Millisecond,
		fn: func(ctx context.Context) (string, error) {
			select {
			case <-release:
			case <-time.After(5 * time.Second):
			}
			return "late", nil
		},
	}))

	start := time.Now()
	res := r.Invoke(context.Background(), "slow", nil, 0)
	elapsed := time.Since(start)

	assert.Equal(t, domain.ErrCodeTimeout, res.Code)
	assert.Empty(t, res.Payload)
	assert.Less(t, elapsed, time.Second)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
}

func TestRegistry_InvokeExplicitTimeoutOverridesTool(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&funcTool{
		name:    "ctxaware",
		timeout: time.Hour,
		fn: func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}))

	start := time.Now()
	res := r.Invoke(context.Background(), "ctxaware", nil, 30*time.Millisecond)
	assert.Equal(t, domain.ErrCodeTimeout, res.Code)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRegistry_InvokePanicIsToolError(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&funcTool{
		name:    "boom",
		timeout: time.Second,
		fn: func(context.Context) (string, error) {
			panic("nil map")
		},
	}))

	res := r.Invoke(context.Background(), "boom", nil, 0)
	assert.Equal(t, domain.ErrCodeToolError, res.Code)
	assert.Contains(t, res.Message, "nil map")
}

func TestRegistry_InvokeErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"not found", domain.ErrProductNotFound, domain.ErrCodeNotFound},
		{"domain validation", domain.ErrInvalidPrice, domain.ErrCodeValidation},
		{"generic", errors.New("disk full"), domain.ErrCodeToolError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			require.NoError(t, r.Register(&funcTool{
				name:    "t",
				timeout: time.Second,
				fn:      func(context.Context) (string, error) { return "", tt.err },
			}))
			res := r.Invoke(context.Background(), "t", nil, 0)
			assert.Equal(t, tt.code, res.Code)
		})
	}
}

func TestRunWithTimeout_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunWithTimeout(ctx, time.Second, func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestRunWithTimeout_Success(t *testing.T) {
	out, err := RunWithTimeout(context.Background(), time.Second, func(context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}
