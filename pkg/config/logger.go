package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the application logger. Lines carry the active trace and span
// ids and, when a Loki URL is configured, are also pushed to Loki.
type Logger struct {
	*otelzap.Logger
	serviceName string
	lokiURL     string
	httpClient  *http.Client
}

type LokiLogEntry struct {
	Streams []LokiStream `json:"streams"`
}

type LokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

func NewLogger(logConfig LogConfig, telemetry TelemetryConfig) (*Logger, error) {
	level, err := zapcore.ParseLevel(logConfig.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logConfig.Level, err)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"

	zapLogger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	logger := &Logger{
		Logger:      otelzap.New(zapLogger.With(zap.String("service", telemetry.ServiceName))),
		serviceName: telemetry.ServiceName,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}

	if telemetry.LokiURL != "" {
		logger.lokiURL = telemetry.LokiURL + "/loki/api/v1/push"
	}

	return logger, nil
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{
		Logger:     otelzap.New(zap.NewNop()),
		httpClient: http.DefaultClient,
	}
}

func (l *Logger) Sync() error {
	return l.Logger.Sync()
}

func (l *Logger) InfoWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithTrace(ctx, zapcore.InfoLevel, msg, fields...)
}

func (l *Logger) WarnWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithTrace(ctx, zapcore.WarnLevel, msg, fields...)
}

func (l *Logger) ErrorWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithTrace(ctx, zapcore.ErrorLevel, msg, fields...)
}

func (l *Logger) logWithTrace(ctx context.Context, level zapcore.Level, msg string, fields ...zap.Field) {
	switch level {
	case zapcore.ErrorLevel:
		l.Logger.Ctx(ctx).Error(msg, fields...)
	case zapcore.WarnLevel:
		l.Logger.Ctx(ctx).Warn(msg, fields...)
	default:
		l.Logger.Ctx(ctx).Info(msg, fields...)
	}

	if l.lokiURL == "" {
		return
	}

	entry, err := l.buildLokiEntry(ctx, level, msg, fields)
	if err != nil {
		l.Logger.Ctx(ctx).Error("Failed to marshal log data", zap.Error(err))
		return
	}

	go l.sendToLoki(entry)
}

func (l *Logger) buildLokiEntry(ctx context.Context, level zapcore.Level, msg string, fields []zap.Field) (LokiLogEntry, error) {
	encoder := zapcore.NewMapObjectEncoder()
	for _, field := range fields {
		field.AddTo(encoder)
	}

	logData := encoder.Fields
	logData["timestamp"] = time.Now().Format(time.RFC3339Nano)
	logData["level"] = level.String()
	logData["message"] = msg
	logData["service"] = l.serviceName

	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if spanContext.IsValid() {
		logData["trace_id"] = spanContext.TraceID().String()
		logData["span_id"] = spanContext.SpanID().String()
	}

	line, err := json.Marshal(logData)
	if err != nil {
		return LokiLogEntry{}, err
	}

	return LokiLogEntry{
		Streams: []LokiStream{
			{
				Stream: map[string]string{
					"service": l.serviceName,
					"level":   level.String(),
				},
				Values: [][]string{
					{strconv.FormatInt(time.Now().UnixNano(), 10), string(line)},
				},
			},
		},
	}, nil
}

func (l *Logger) sendToLoki(entry LokiLogEntry) {
	body, err := json.Marshal(entry)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, l.lokiURL, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)
}
