package port

import (
	"context"

	"tasksapi/internal/core/domain"
	"tasksapi/internal/core/model/request"
)

type TaskRepository interface {
	List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, int, error)
	GetByID(ctx context.Context, id int) (domain.Task, error)
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	Update(ctx context.Context, task domain.Task) (domain.Task, error)
	DeleteByID(ctx context.Context, id int) error
}

// TaskService scopes every item operation to the tasks owned by ownerID.
type TaskService interface {
	List(ctx context.Context, filter domain.TaskFilter) (domain.Page[domain.Task], error)
	Get(ctx context.Context, ownerID int, id int) (domain.Task, error)
	Create(ctx context.Context, req request.TaskRequest) (domain.Task, error)
	Update(ctx context.Context, ownerID int, id int, req request.TaskRequest) (domain.Task, error)
	Delete(ctx context.Context, ownerID int, id int) error
}
