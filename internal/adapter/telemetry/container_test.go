package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"tasksapi/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestNewContainer(t *testing.T) {
	ctx := context.Background()

	container, err := NewContainer(ctx, config.TelemetryConfig{
		ServiceName:    "tasksapi-test",
		ServiceVersion: "test",
		MetricsPort:    "0",
	}, "test", config.NewNopLogger())
	require.NoError(t, err)

	assert.Equal(t, container.TracerProvider, otel.GetTracerProvider())
	assert.Equal(t, ":0", container.MetricsServer.Addr)

	container.AppMetrics.RecordTaskOperation(ctx, "create")

	rr := httptest.NewRecorder()
	container.MetricsServer.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `task_operations_total{operation="create"} 1`)
	assert.Contains(t, rr.Body.String(), "go_goroutines")

	probe := container.NewTelemetryProbe()
	_, span := probe.StartServiceSpan(ctx, "task", "Create", 1, nil)
	span.End()

	assert.NoError(t, container.Shutdown(ctx))
}
