package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"tasksapi/internal/core/domain"
	"tasksapi/internal/core/model/request"
	"tasksapi/internal/core/port"
	tel "tasksapi/internal/core/telemetry"
	"tasksapi/internal/core/util"
)

type TaskService struct {
	repo      port.TaskRepository
	users     port.UserRepository
	telemetry port.Telemetry
}

func NewTaskService(repo port.TaskRepository, users port.UserRepository, telemetry port.Telemetry) *TaskService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TaskService{repo: repo, users: users, telemetry: telemetry}
}

func (ts *TaskService) List(ctx context.Context, filter domain.TaskFilter) (domain.Page[domain.Task], error) {
	filter.Pagination = filter.Pagination.Normalize(domain.DefaultPageSize)

	tasks, count, err := ts.repo.List(ctx, filter)
	if err != nil {
		return domain.Page[domain.Task]{}, fmt.Errorf("task: list: %w", err)
	}

	page := domain.Page[domain.Task]{Items: tasks, Count: count, Pagination: filter.Pagination}
	if page.OutOfRange() {
		return domain.Page[domain.Task]{}, domain.ErrInvalidPage
	}

	return page, nil
}

// Get returns the task only when ownerID owns it; otherwise the task is
// reported as not found.
func (ts *TaskService) Get(ctx context.Context, ownerID int, id int) (domain.Task, error) {
	task, err := ts.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}

	if !task.BelongsToUser(ownerID) {
		return domain.Task{}, domain.ErrNotFound
	}

	return task, nil
}

func (ts *TaskService) Create(ctx context.Context, req request.TaskRequest) (domain.Task, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "task", "Create", 0, nil)
	defer span.End()

	startTime := time.Now()

	task, err := ts.create(ctx, req)
	ts.telemetry.RecordServiceOperation(ctx, "task", "Create", task.UserID, time.Since(startTime), err)

	return task, err
}

func (ts *TaskService) create(ctx context.Context, req request.TaskRequest) (domain.Task, error) {
	task, err := ts.buildTask(ctx, req)
	if err != nil {
		return domain.Task{}, err
	}

	saved, err := ts.repo.Create(ctx, task)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task: create: %w", err)
	}

	ts.telemetry.RecordBusinessEvent(ctx, "created", "task", strconv.Itoa(saved.ID), saved.UserID, map[string]interface{}{
		"done": saved.Done,
	})

	return saved, nil
}

// Update replaces the task. The lookup runs first so a task the caller
// cannot see is a 404 even when the payload is invalid.
func (ts *TaskService) Update(ctx context.Context, ownerID int, id int, req request.TaskRequest) (domain.Task, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "task", "Update", ownerID, map[string]interface{}{"task.id": id})
	defer span.End()

	startTime := time.Now()

	task, err := ts.update(ctx, ownerID, id, req)
	ts.telemetry.RecordServiceOperation(ctx, "task", "Update", ownerID, time.Since(startTime), err)

	return task, err
}

func (ts *TaskService) update(ctx context.Context, ownerID int, id int, req request.TaskRequest) (domain.Task, error) {
	current, err := ts.Get(ctx, ownerID, id)
	if err != nil {
		return domain.Task{}, err
	}

	task, err := ts.buildTask(ctx, req)
	if err != nil {
		return domain.Task{}, err
	}

	task.ID = current.ID
	task.CreatedAt = current.CreatedAt

	saved, err := ts.repo.Update(ctx, task)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task: update: %w", err)
	}

	ts.telemetry.RecordBusinessEvent(ctx, "updated", "task", strconv.Itoa(saved.ID), saved.UserID, map[string]interface{}{
		"done": saved.Done,
	})

	return saved, nil
}

func (ts *TaskService) Delete(ctx context.Context, ownerID int, id int) error {
	if _, err := ts.Get(ctx, ownerID, id); err != nil {
		return err
	}

	if err := ts.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "deleted", "task", strconv.Itoa(id), ownerID, nil)

	return nil
}

// buildTask converts a structurally valid request into a task and resolves
// the owning user.
func (ts *TaskService) buildTask(ctx context.Context, req request.TaskRequest) (domain.Task, error) {
	fieldErrors := domain.FieldErrors{}

	datetime, err := util.ParseDatetime(req.Datetime)
	if err != nil {
		fieldErrors.Add("datetime", "Fecha y hora con formato erróneo.")
	}

	userID, err := ts.resolveUser(ctx, req.User)
	if err != nil {
		var fe domain.FieldErrors
		if !errors.As(err, &fe) {
			return domain.Task{}, err
		}
		fieldErrors.Merge(fe)
	}

	if err := fieldErrors.Err(); err != nil {
		return domain.Task{}, err
	}

	return domain.Task{
		Title:       req.Title,
		Description: req.Description,
		Datetime:    datetime,
		Done:        req.Done,
		UserID:      userID,
	}, nil
}

func (ts *TaskService) resolveUser(ctx context.Context, raw string) (int, error) {
	invalid := domain.FieldErrors{"user": {fmt.Sprintf("Clave primaria %q inválida - objeto no existe.", raw)}}

	userID, err := strconv.Atoi(raw)
	if err != nil || userID <= 0 {
		return 0, invalid
	}

	if _, err := ts.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, invalid
		}
		return 0, fmt.Errorf("task: resolve user: %w", err)
	}

	return userID, nil
}
