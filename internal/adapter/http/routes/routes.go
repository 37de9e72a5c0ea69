package routes

import (
	"time"

	"tasksapi/internal/adapter/http/handler"
	"tasksapi/internal/adapter/http/middleware"
	"tasksapi/internal/core/port"
	"tasksapi/internal/core/telemetry"
	"tasksapi/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type HandlersConfig struct {
	AuthHandler   *handler.AuthHandler
	TaskHandler   *handler.TaskHandler
	UserHandler   *handler.UserHandler
	HealthHandler *handler.HealthHandler
	AuthService   port.AuthService
}

// Options carries the cross-cutting pieces of the router. Metrics and
// RateLimiter are optional.
type Options struct {
	ServiceName  string
	Logger       *config.Logger
	Metrics      *telemetry.AppMetrics
	RateLimiter  *middleware.RateLimiter
	EnforceHTTPS bool
}

func SetupRouter(handlers HandlersConfig, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = config.NewNopLogger()
	}

	router := gin.New()

	httpsEnforcer := middleware.NewHTTPSEnforcer(opts.EnforceHTTPS, opts.Logger.Logger.Logger)
	router.Use(httpsEnforcer.HTTPSMiddleware())

	if opts.ServiceName != "" {
		router.Use(otelgin.Middleware(opts.ServiceName))
	}

	router.Use(middleware.CurrentMiddleware())
	router.Use(middleware.LoggingMiddleware(opts.Logger))

	if opts.Metrics != nil {
		router.Use(middleware.MetricsMiddleware(opts.Metrics))
	}

	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	limit := func(c *gin.Context) { c.Next() }
	if opts.RateLimiter != nil {
		limit = opts.RateLimiter.RateLimitMiddleware()
	}

	if handlers.HealthHandler != nil {
		router.GET("/healthz", handlers.HealthHandler.Healthz)
	}

	if handlers.AuthHandler != nil {
		setupPublicRoutes(router, handlers.AuthHandler, limit)
	}

	if handlers.AuthService != nil {
		setupProtectedRoutes(router, handlers, limit)
	}

	return router
}

func setupPublicRoutes(router *gin.Engine, authHandler *handler.AuthHandler, limit gin.HandlerFunc) {
	public := router.Group("/")
	public.Use(limit)
	{
		public.POST("/api-token-auth/", authHandler.ObtainToken)
	}
}

// setupProtectedRoutes authenticates before rate limiting so resource routes
// are limited per user.
func setupProtectedRoutes(router *gin.Engine, handlers HandlersConfig, limit gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(middleware.JWTMiddleware(handlers.AuthService))
	protected.Use(limit)

	if tasks := handlers.TaskHandler; tasks != nil {
		protected.GET("/tasks/", tasks.ListTasks)
		protected.POST("/tasks/", tasks.CreateTask)
		protected.GET("/tasks/:id/", tasks.GetTask)
		protected.PUT("/tasks/:id/", tasks.UpdateTask)
		protected.DELETE("/tasks/:id/", tasks.DeleteTask)
	}

	if users := handlers.UserHandler; users != nil {
		protected.GET("/users/", users.ListUsers)
		protected.POST("/users/", users.CreateUser)
		protected.GET("/users/:id/", users.GetUser)
		protected.PUT("/users/:id/", users.UpdateUser)
		protected.DELETE("/users/:id/", users.DeleteUser)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{
			"Content-Length",
			middleware.RequestIDHeader,
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		MaxAge: 12 * time.Hour,
	})
}
