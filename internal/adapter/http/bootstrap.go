package http

import (
	"context"
	"errors"
	"net/http"

	"tasksapi/internal/adapter/http/middleware"
	"tasksapi/internal/adapter/http/routes"
	"tasksapi/internal/adapter/telemetry"
	"tasksapi/internal/core/port"
	"tasksapi/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg        *config.Config
	logger     *config.Logger
	container  *Container
	httpServer *http.Server
}

func ginMode(environment string) string {
	switch environment {
	case "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

// NewServer wires the API from cfg. tel may be nil, in which case no
// metrics are recorded and spans go to the global provider.
func NewServer(ctx context.Context, cfg *config.Config, logger *config.Logger, tel *telemetry.Container) (*Server, error) {
	gin.SetMode(ginMode(cfg.Server.Environment))

	var probe port.Telemetry
	opts := routes.Options{
		ServiceName:  cfg.Telemetry.ServiceName,
		Logger:       logger,
		EnforceHTTPS: cfg.Server.EnforceHTTPS || cfg.IsProduction(),
	}

	if tel != nil {
		probe = tel.NewTelemetryProbe()
		opts.Metrics = tel.AppMetrics
	}

	container, err := NewContainer(ctx, cfg, logger, probe)
	if err != nil {
		return nil, err
	}

	if cfg.RateLimit.Enabled {
		store, err := middleware.NewRateLimitStore(cfg.RateLimit)
		if err != nil {
			container.Close()
			return nil, err
		}

		opts.RateLimiter = middleware.NewRateLimiter(cfg.RateLimit, store, logger.Logger.Logger, opts.Metrics)
	}

	router := routes.SetupRouter(container.Handlers(), opts)

	return &Server{
		cfg:       cfg,
		logger:    logger,
		container: container,
		httpServer: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	s.logger.InfoWithTrace(ctx, "Server starting",
		zap.String("port", s.cfg.Server.Port),
		zap.String("environment", s.cfg.Server.Environment),
		zap.String("database_driver", s.cfg.Database.Driver),
		zap.Bool("rate_limit_enabled", s.cfg.RateLimit.Enabled),
		zap.Bool("https_enforced", s.cfg.Server.EnforceHTTPS || s.cfg.IsProduction()))

	errCh := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.container.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.DefaultTimeout)
	defer cancel()

	s.logger.InfoWithTrace(shutdownCtx, "Server shutting down")

	return errors.Join(
		s.httpServer.Shutdown(shutdownCtx),
		s.container.Close(),
	)
}
