package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpanWrapperRecordsErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	defer otel.SetTracerProvider(previous)

	failure := errors.New("boom")

	var traceID string
	err := SpanWrapper(context.Background(), "work", []attribute.KeyValue{attribute.String("k", "v")}, func(ctx context.Context) error {
		traceID = GetTraceID(ctx)
		assert.NotEmpty(t, GetSpanID(ctx))
		return failure
	})

	assert.ErrorIs(t, err, failure)
	assert.NotEmpty(t, traceID)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "work", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestIDsWithoutSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetSpanID(context.Background()))
}
