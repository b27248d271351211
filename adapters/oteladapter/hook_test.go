package oteladapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-openfeature/client"
	"github.com/goliatone/go-openfeature/feature"
	"github.com/goliatone/go-openfeature/logger"
	"github.com/goliatone/go-openfeature/provider"
)

func setupTestTracer(t *testing.T) (trace.Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp.Tracer("test-tracer"), exporter
}

func newClient(hook feature.Hook) *client.Client {
	p := provider.NewStatic(provider.WithBool(feature.Resolution[bool]{Value: true, Variant: "on"}))
	return client.New(client.WithProvider(p), client.WithHooks(hook), client.WithLogger(logger.Nop()))
}

func attributeValue(attrs []attribute.KeyValue, key attribute.Key) (string, bool) {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Value.AsString(), true
		}
	}
	return "", false
}

func singleSpan(t *testing.T, exporter *tracetest.InMemoryExporter) tracetest.SpanStub {
	t.Helper()
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	return spans[0]
}

func TestHookAddsEventOnSuccess(t *testing.T) {
	tracer, exporter := setupTestTracer(t)
	c := newClient(New())

	ctx, span := tracer.Start(context.Background(), "request")
	assert.True(t, c.BoolValue(ctx, "checkout.v2", false))
	span.End()

	stub := singleSpan(t, exporter)
	require.Len(t, stub.Events, 1)
	event := stub.Events[0]
	assert.Equal(t, EventName, event.Name)

	key, _ := attributeValue(event.Attributes, AttrFlagKey)
	assert.Equal(t, "checkout.v2", key)
	name, _ := attributeValue(event.Attributes, AttrProviderName)
	assert.Equal(t, provider.StaticProviderName, name)
	variant, _ := attributeValue(event.Attributes, AttrVariant)
	assert.Equal(t, "on", variant)
	assert.Equal(t, codes.Unset, stub.Status.Code)
}

func TestHookRecordsErrors(t *testing.T) {
	tracer, exporter := setupTestTracer(t)
	c := newClient(New(WithSpanStatusOnError(true)))

	ctx, span := tracer.Start(context.Background(), "request")
	assert.Equal(t, "fallback", c.StringValue(ctx, "banner.text", "fallback"))
	span.End()

	stub := singleSpan(t, exporter)
	require.Len(t, stub.Events, 1)
	errType, ok := attributeValue(stub.Events[0].Attributes, AttrErrorType)
	require.True(t, ok)
	assert.Equal(t, "flag_not_found", errType)
	key, _ := attributeValue(stub.Events[0].Attributes, AttrFlagKey)
	assert.Equal(t, "banner.text", key)

	assert.Equal(t, codes.Error, stub.Status.Code)
	assert.Equal(t, `Error evaluating flag "banner.text" of type "string".`, stub.Status.Description)
}

func TestHookLeavesStatusByDefault(t *testing.T) {
	tracer, exporter := setupTestTracer(t)
	c := newClient(New())

	ctx, span := tracer.Start(context.Background(), "request")
	c.IntValue(ctx, "limit", 1)
	span.End()

	stub := singleSpan(t, exporter)
	require.Len(t, stub.Events, 1)
	assert.Equal(t, codes.Unset, stub.Status.Code)
}

func TestHookIgnoresMissingSpan(t *testing.T) {
	c := newClient(New(WithSpanStatusOnError(true)))
	assert.True(t, c.BoolValue(context.Background(), "checkout.v2", false))
	assert.Equal(t, "fallback", c.StringValue(context.Background(), "banner.text", "fallback"))
}

func TestErrorType(t *testing.T) {
	assert.Equal(t, "type_mismatch", errorType(feature.NewResolutionError(feature.ErrorTypeMismatch, "")))
	assert.Equal(t, "general", errorType(assert.AnError))
}
