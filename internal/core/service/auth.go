package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tasksapi/internal/core/domain"
	"tasksapi/internal/core/model/request"
	"tasksapi/internal/core/port"
	tel "tasksapi/internal/core/telemetry"
	"tasksapi/internal/core/util"
)

type AuthService struct {
	repo      port.UserRepository
	tokens    port.TokenManager
	telemetry port.Telemetry
}

func NewAuthService(repo port.UserRepository, tokens port.TokenManager, telemetry port.Telemetry) *AuthService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &AuthService{repo: repo, tokens: tokens, telemetry: telemetry}
}

// Authenticate checks username and password. Unknown users and wrong
// passwords fail the same way.
func (as *AuthService) Authenticate(ctx context.Context, req *request.LoginRequest) (domain.User, error) {
	user, err := as.repo.GetByUsername(ctx, req.Username)

	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	if err != nil {
		return domain.User{}, fmt.Errorf("auth: get user: %w", err)
	}

	if err := util.ComparePassword(req.Password, user.EncryptedPassword); err != nil {
		slog.DebugContext(ctx, "Auth#Authenticate", "compare_password", err)
		return domain.User{}, domain.ErrInvalidCredentials
	}

	as.telemetry.RecordBusinessEvent(ctx, "authenticated", "user", fmt.Sprint(user.ID), user.ID, nil)

	return user, nil
}

func (as *AuthService) IssueToken(user domain.User) (string, error) {
	token, err := as.tokens.CreateToken(user.ID, user.Username)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}

	return token, nil
}

// ResolveToken returns the user a token was issued to. Tokens of deleted
// users are invalid.
func (as *AuthService) ResolveToken(ctx context.Context, token string) (domain.User, error) {
	userID, err := as.tokens.VerifyToken(token)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	user, err := as.repo.GetByID(ctx, userID)

	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, fmt.Errorf("%w: user not found", domain.ErrInvalidToken)
	}

	if err != nil {
		return domain.User{}, fmt.Errorf("auth: get user: %w", err)
	}

	return user, nil
}
