package port

import (
	"context"

	"tasksapi/internal/core/domain"
	"tasksapi/internal/core/model/request"
)

type UserRepository interface {
	List(ctx context.Context, pagination domain.Pagination) ([]domain.User, int, error)
	GetByID(ctx context.Context, id int) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	DeleteByID(ctx context.Context, id int) error
}

type UserService interface {
	List(ctx context.Context, pagination domain.Pagination) (domain.Page[domain.User], error)
	Get(ctx context.Context, id int) (domain.User, error)
	Create(ctx context.Context, req request.UserRequest) (domain.User, error)
	Update(ctx context.Context, id int, req request.UserRequest) (domain.User, error)
	Delete(ctx context.Context, id int) error
}
