package port

import (
	"context"

	"tasksapi/internal/core/domain"
	"tasksapi/internal/core/model/request"
)

type TokenManager interface {
	CreateToken(userID int, username string) (string, error)
	VerifyToken(token string) (int, error)
}

type AuthService interface {
	Authenticate(ctx context.Context, req *request.LoginRequest) (domain.User, error)
	IssueToken(user domain.User) (string, error)
	ResolveToken(ctx context.Context, token string) (domain.User, error)
}
