package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	database "tasksapi/internal/adapter/database/postgres"
	"tasksapi/internal/core/domain"
	"tasksapi/internal/core/port"
	tel "tasksapi/internal/core/telemetry"
)

var taskColumns = []string{"id", "title", "description", "datetime", "done", "user_id", "created_at", "updated_at"}

type TaskRepository struct {
	db        *database.DB
	telemetry port.Telemetry
}

func NewTaskRepository(db *database.DB, telemetry port.Telemetry) port.TaskRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TaskRepository{db: db, telemetry: telemetry}
}

func (tr *TaskRepository) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, int, error) {
	ctx, op := observe(ctx, tr.telemetry, "List", "task", map[string]interface{}{
		"db.table":        "tasks",
		"user.id":         filter.UserID,
		"filter.search":   filter.Search != "",
		"pagination.page": filter.Page,
		"pagination.size": filter.PageSize,
	})

	conditions := taskConditions(filter)

	countSQL, countArgs, err := tr.db.QueryBuilder.Select("COUNT(*)").
		From("tasks").
		Where(conditions).
		ToSql()
	if err != nil {
		return nil, 0, op.end(err)
	}

	var count int
	if err := tr.db.QueryRow(ctx, countSQL, countArgs...).Scan(&count); err != nil {
		return nil, 0, op.end(err)
	}

	query, args, err := tr.db.QueryBuilder.Select(taskColumns...).
		From("tasks").
		Where(conditions).
		OrderBy("id ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(filter.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, op.end(err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "List", "task", query, args)

	rows, err := tr.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, op.end(err)
	}

	tasks, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Task])
	if err != nil {
		return nil, 0, op.end(err)
	}

	return tasks, count, op.end(nil)
}

func (tr *TaskRepository) GetByID(ctx context.Context, id int) (domain.Task, error) {
	ctx, op := observe(ctx, tr.telemetry, "GetByID", "task", map[string]interface{}{
		"db.table": "tasks",
		"task.id":  id,
	})

	query, args, err := tr.db.QueryBuilder.Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return domain.Task{}, op.end(err)
	}

	task, err := tr.queryOne(ctx, query, args)

	return task, op.end(err)
}

func (tr *TaskRepository) queryOne(ctx context.Context, query string, args []interface{}) (domain.Task, error) {
	rows, err := tr.db.Query(ctx, query, args...)
	if err != nil {
		return domain.Task{}, err
	}

	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[domain.Task])
}

func (tr *TaskRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, op := observe(ctx, tr.telemetry, "Create", "task", map[string]interface{}{
		"db.table":     "tasks",
		"db.operation": "INSERT",
		"user.id":      task.UserID,
	})

	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	query, args, err := tr.db.QueryBuilder.Insert("tasks").
		Columns("title", "description", "datetime", "done", "user_id", "created_at", "updated_at").
		Values(task.Title, task.Description, task.Datetime.UTC(), task.Done, task.UserID, task.CreatedAt, task.UpdatedAt).
		Suffix(returning(taskColumns)).
		ToSql()
	if err != nil {
		return domain.Task{}, op.end(err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Create", "task", query, args)

	saved, err := tr.queryOne(ctx, query, args)

	return saved, op.end(err)
}

func (tr *TaskRepository) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, op := observe(ctx, tr.telemetry, "Update", "task", map[string]interface{}{
		"db.table":     "tasks",
		"db.operation": "UPDATE",
		"task.id":      task.ID,
	})

	task.UpdatedAt = time.Now().UTC()
	task.Datetime = task.Datetime.UTC()

	query, args, err := tr.db.QueryBuilder.Update("tasks").
		SetMap(task.ToMap()).
		Where(sq.Eq{"id": task.ID}).
		Suffix(returning(taskColumns)).
		ToSql()
	if err != nil {
		return domain.Task{}, op.end(err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Update", "task", query, args)

	saved, err := tr.queryOne(ctx, query, args)

	return saved, op.end(err)
}

func (tr *TaskRepository) DeleteByID(ctx context.Context, id int) error {
	ctx, op := observe(ctx, tr.telemetry, "DeleteByID", "task", map[string]interface{}{
		"db.table":     "tasks",
		"db.operation": "DELETE",
		"task.id":      id,
	})

	query, args, err := tr.db.QueryBuilder.Delete("tasks").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return op.end(err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "DeleteByID", "task", query, args)

	tag, err := tr.db.Exec(ctx, query, args...)
	if err != nil {
		return op.end(err)
	}

	if tag.RowsAffected() == 0 {
		return op.end(domain.ErrNotFound)
	}

	return op.end(nil)
}
