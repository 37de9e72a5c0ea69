package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tasksapi/internal/core/domain"
	"tasksapi/internal/core/model/request"
	"tasksapi/internal/core/port"
	tel "tasksapi/internal/core/telemetry"
	"tasksapi/internal/core/util"
)

const (
	usernameTakenMessage   = "Ya existe un usuario con este nombre de usuario."
	passwordTooLongMessage = "Contraseña debe ocupar como máximo 72 bytes"
)

type UserService struct {
	repo      port.UserRepository
	telemetry port.Telemetry
}

func NewUserService(repo port.UserRepository, telemetry port.Telemetry) *UserService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserService{repo: repo, telemetry: telemetry}
}

func (us *UserService) List(ctx context.Context, pagination domain.Pagination) (domain.Page[domain.User], error) {
	pagination = pagination.Normalize(domain.DefaultPageSize)

	users, count, err := us.repo.List(ctx, pagination)
	if err != nil {
		return domain.Page[domain.User]{}, fmt.Errorf("user: list: %w", err)
	}

	page := domain.Page[domain.User]{Items: users, Count: count, Pagination: pagination}
	if page.OutOfRange() {
		return domain.Page[domain.User]{}, domain.ErrInvalidPage
	}

	return page, nil
}

func (us *UserService) Get(ctx context.Context, id int) (domain.User, error) {
	return us.repo.GetByID(ctx, id)
}

func (us *UserService) Create(ctx context.Context, req request.UserRequest) (domain.User, error) {
	ctx, span := us.telemetry.StartServiceSpan(ctx, "user", "Create", 0, nil)
	defer span.End()

	startTime := time.Now()

	user, err := us.create(ctx, req)
	us.telemetry.RecordServiceOperation(ctx, "user", "Create", user.ID, time.Since(startTime), err)

	return user, err
}

func (us *UserService) create(ctx context.Context, req request.UserRequest) (domain.User, error) {
	if err := us.ensureUsernameAvailable(ctx, req.Username, 0); err != nil {
		return domain.User{}, err
	}

	encrypted, err := hashPassword(req.Password)
	if err != nil {
		return domain.User{}, err
	}

	user, err := us.repo.Create(ctx, domain.User{
		Username:          req.Username,
		Email:             req.Email,
		EncryptedPassword: encrypted,
		Name:              req.Name,
		LastName:          req.LastName,
	})
	if err != nil {
		return domain.User{}, usernameConflict(err, "user: create")
	}

	us.telemetry.RecordBusinessEvent(ctx, "created", "user", fmt.Sprint(user.ID), user.ID, map[string]interface{}{
		"username": user.Username,
	})

	return user, nil
}

// Update replaces every writable field of the user, password included.
func (us *UserService) Update(ctx context.Context, id int, req request.UserRequest) (domain.User, error) {
	ctx, span := us.telemetry.StartServiceSpan(ctx, "user", "Update", id, nil)
	defer span.End()

	startTime := time.Now()

	user, err := us.update(ctx, id, req)
	us.telemetry.RecordServiceOperation(ctx, "user", "Update", id, time.Since(startTime), err)

	return user, err
}

func (us *UserService) update(ctx context.Context, id int, req request.UserRequest) (domain.User, error) {
	current, err := us.repo.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if err := us.ensureUsernameAvailable(ctx, req.Username, id); err != nil {
		return domain.User{}, err
	}

	encrypted, err := hashPassword(req.Password)
	if err != nil {
		return domain.User{}, err
	}

	current.Username = req.Username
	current.Email = req.Email
	current.EncryptedPassword = encrypted
	current.Name = req.Name
	current.LastName = req.LastName

	user, err := us.repo.Update(ctx, current)
	if err != nil {
		return domain.User{}, usernameConflict(err, "user: update")
	}

	us.telemetry.RecordBusinessEvent(ctx, "updated", "user", fmt.Sprint(user.ID), user.ID, nil)

	return user, nil
}

// Delete removes the user and, through the store, every task they own.
func (us *UserService) Delete(ctx context.Context, id int) error {
	if err := us.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	us.telemetry.RecordBusinessEvent(ctx, "deleted", "user", fmt.Sprint(id), id, nil)

	return nil
}

// ensureUsernameAvailable fails with a field error when another user than
// exceptID already has username.
func (us *UserService) ensureUsernameAvailable(ctx context.Context, username string, exceptID int) error {
	existing, err := us.repo.GetByUsername(ctx, username)

	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("user: lookup username: %w", err)
	}

	if existing.ID == exceptID {
		return nil
	}

	return domain.FieldErrors{"username": {usernameTakenMessage}}
}

// hashPassword reports a password bcrypt cannot hash as a field error.
func hashPassword(password string) (string, error) {
	encrypted, err := util.GenerateEncrypt(password)

	if errors.Is(err, util.ErrPasswordTooLong) {
		return "", domain.FieldErrors{"password": {passwordTooLongMessage}}
	}

	if err != nil {
		return "", fmt.Errorf("user: hash password: %w", err)
	}

	return encrypted, nil
}

// usernameConflict turns a write that lost a race on the unique username
// into the same field error as ensureUsernameAvailable.
func usernameConflict(err error, op string) error {
	if errors.Is(err, domain.ErrAlreadyExists) {
		return domain.FieldErrors{"username": {usernameTakenMessage}}
	}

	return fmt.Errorf("%s: %w", op, err)
}
