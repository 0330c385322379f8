// Package tool holds the functions the language model may call, and the
// registry that validates, time-bounds and executes them.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloo-solutions/shopmate/internal/domain"
	"github.com/cloo-solutions/shopmate/internal/telemetry"
)

var (
	ErrToolAlreadyRegistered = errors.New("tool already registered")
	ErrToolNotRegistered     = errors.New("tool not registered")
)

// Args are decoded tool arguments. Validate runs before any external read.
type Args interface {
	Validate() error
}

// Tool is one callable function.
type Tool interface {
	Name() string
	// Signature is the call shape shown to the model, e.g. "f(x: float)".
	Signature() string
	Description() string
	Timeout() time.Duration
	Decode(raw map[string]any) (Args, error)
	Execute(ctx context.Context, args Args) (string, error)
}

// Registry maps tool names to tools. Registration happens at startup;
// lookups and invocations are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool under its unique name.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return ErrToolNotRegistered
	}
	name := strings.TrimSpace(t.Name())
	if name == "" {
		return ErrToolNotRegistered
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, name)
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, ErrToolNotRegistered
	}
	return t, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, err := r.Get(name)
	return err == nil
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Catalog renders the numbered tool list embedded in model prompts.
func (r *Registry) Catalog() string {
	var sb strings.Builder
	sb.WriteString("DOSTĘPNE NARZĘDZIA:\n")
	for i, t := range r.Tools() {
		fmt.Fprintf(&sb, "%d. %s - %s\n", i+1, t.Signature(), t.Description())
	}
	return sb.String()
}

// Invoke decodes, validates and executes the named tool. Raw arguments may
// be a JSON string, a decoded mapping, or nil for no arguments. A
// non-positive timeout uses the tool's own bound. Invoke never panics and
// never returns an error: every failure is a Failure result.
func (r *Registry) Invoke(ctx context.Context, name string, rawArgs any, timeout time.Duration) Result {
	t, err := r.Get(name)
	if err != nil {
		return Failure(domain.ErrCodeToolError, fmt.Sprintf("unknown tool: %s", name))
	}

	ctx, span := telemetry.StartSpan(ctx, "tool.invoke", telemetry.SpanAttributes{
		Tool:      name,
		Operation: "invoke",
	})
	defer span.End()

	argMap, err := coerceArgs(rawArgs)
	if err != nil {
		return validationFailure(err.Error())
	}

	args, err := t.Decode(argMap)
	if err != nil {
		return validationFailure(err.Error())
	}
	if err := args.Validate(); err != nil {
		return validationFailure(err.Error())
	}

	if timeout <= 0 {
		timeout = t.Timeout()
	}

	payload, err := RunWithTimeout(ctx, timeout, func(ctx context.Context) (string, error) {
		return t.Execute(ctx, args)
	})
	if err != nil {
		res := classify(name, timeout, err)
		if res.Code == domain.ErrCodeToolError {
			span.SetError(err)
		}
		return res
	}
	return Success(payload)
}

func classify(name string, timeout time.Duration, err error) Result {
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return Failure(domain.ErrCodeTimeout, fmt.Sprintf("%s exceeded %s", name, timeout))
	case errors.Is(err, domain.ErrProductNotFound):
		return Failure(domain.ErrCodeNotFound, err.Error())
	case domain.CodeOf(err) == domain.ErrCodeValidation:
		return validationFailure(err.Error())
	default:
		return Failure(domain.ErrCodeToolError, err.Error())
	}
}

func coerceArgs(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case string:
		return decodeObject([]byte(v))
	case []byte:
		return decodeObject(v)
	case json.RawMessage:
		return decodeObject(v)
	default:
		return nil, fmt.Errorf("arguments must be a JSON object, got %T", raw)
	}
}

func decodeObject(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("arguments are not valid JSON: %v", err)
	}
	if m == nil {
		return nil, errors.New("arguments must be a JSON object")
	}
	return m, nil
}
