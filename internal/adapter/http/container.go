package http

import (
	"context"

	"tasksapi/internal/adapter/database"
	"tasksapi/internal/adapter/http/handler"
	"tasksapi/internal/adapter/http/routes"
	"tasksapi/internal/core/port"
	"tasksapi/internal/core/service"
	"tasksapi/pkg/auth"
	"tasksapi/pkg/config"
)

type Container struct {
	Repositories *database.Repositories
	UserRepo     port.UserRepository
	TaskRepo     port.TaskRepository

	AuthService port.AuthService
	UserService port.UserService
	TaskService port.TaskService

	AuthHandler   *handler.AuthHandler
	UserHandler   *handler.UserHandler
	TaskHandler   *handler.TaskHandler
	HealthHandler *handler.HealthHandler
}

// NewContainer opens the configured database and wires repositories,
// services and handlers. probe may be nil.
func NewContainer(ctx context.Context, cfg *config.Config, logger *config.Logger, probe port.Telemetry) (*Container, error) {
	repos, err := database.Open(ctx, cfg.Database, probe)
	if err != nil {
		return nil, err
	}

	tokens := auth.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	authSvc := service.NewAuthService(repos.Users, tokens, probe)
	userSvc := service.NewUserService(repos.Users, probe)
	taskSvc := service.NewTaskService(repos.Tasks, repos.Users, probe)

	return &Container{
		Repositories: repos,
		UserRepo:     repos.Users,
		TaskRepo:     repos.Tasks,

		AuthService: authSvc,
		UserService: userSvc,
		TaskService: taskSvc,

		AuthHandler:   handler.NewAuthHandler(authSvc),
		UserHandler:   handler.NewUserHandler(userSvc, logger, cfg.Server.PageSize),
		TaskHandler:   handler.NewTaskHandler(taskSvc, logger, cfg.Server.PageSize),
		HealthHandler: handler.NewHealthHandler(repos.Health),
	}, nil
}

func (c *Container) Handlers() routes.HandlersConfig {
	return routes.HandlersConfig{
		AuthHandler:   c.AuthHandler,
		TaskHandler:   c.TaskHandler,
		UserHandler:   c.UserHandler,
		HealthHandler: c.HealthHandler,
		AuthService:   c.AuthService,
	}
}

func (c *Container) Close() error {
	return c.Repositories.Close()
}
