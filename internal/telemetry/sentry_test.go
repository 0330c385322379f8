package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_EmptyDSNIsNoop(t *testing.T) {
	shutdown, err := Init(Config{})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	shutdown()
}

func TestStartSpan_SetsTags(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "tool.invoke", SpanAttributes{
		ProductID: 42,
		Tool:      "get_product_details",
		Provider:  "gemini",
		Operation: "invoke",
	})
	defer span.End()

	inner := sentry.SpanFromContext(ctx)
	require.NotNil(t, inner)
	assert.Equal(t, "42", inner.Tags["product_id"])
	assert.Equal(t, "get_product_details", inner.Tags["tool"])
	assert.Equal(t, "gemini", inner.Tags["llm_provider"])
	assert.Equal(t, "invoke", inner.Data["operation"])
}

func TestStartSpan_ChildOfExisting(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "chat", SpanAttributes{})
	defer parent.End()

	childCtx, child := StartSpan(ctx, "llm.generate", SpanAttributes{})
	defer child.End()

	inner := sentry.SpanFromContext(childCtx)
	require.NotNil(t, inner)
	assert.Equal(t, parent.inner.SpanID, inner.ParentSpanID)
}

func TestSpan_NilSafe(t *testing.T) {
	s := &Span{}
	s.End()
	s.SetTag("k", "v")
	s.SetStatus(sentry.SpanStatusOK)
	s.SetError(errors.New("boom"))
	assert.NotNil(t, s.Context())
}
