package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"tasksapi/internal/adapter/database/sqlite"
	"tasksapi/internal/core/domain"
	"tasksapi/internal/core/port"
	tel "tasksapi/internal/core/telemetry"
)

var taskColumns = []string{"id", "title", "description", "datetime", "done", "user_id", "created_at", "updated_at"}

type TaskRepository struct {
	db        *sqlite.DB
	scanner   *sqlite.Scanner
	telemetry port.Telemetry
}

func NewTaskRepository(db *sqlite.DB, telemetry port.Telemetry) port.TaskRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TaskRepository{
		db:        db,
		scanner:   sqlite.NewScanner(),
		telemetry: telemetry,
	}
}

func taskConditions(filter domain.TaskFilter) sq.And {
	conditions := sq.And{}

	if filter.UserID > 0 {
		conditions = append(conditions, sq.Eq{"user_id": filter.UserID})
	}

	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		conditions = append(conditions, sq.Or{
			lowerLike("title", pattern),
			lowerLike("description", pattern),
		})
	}

	return conditions
}

// List returns one page of the tasks matching filter, ordered by id, and
// the total number of matches.
func (tr *TaskRepository) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, int, error) {
	ctx, op := observe(ctx, tr.telemetry, "List", "task", map[string]interface{}{
		"db.system":       "sqlite",
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
	if err := tr.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&count); err != nil {
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

	rows, err := tr.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, op.end(err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	if err := tr.scanner.ScanRowsToSlice(rows, &tasks); err != nil {
		return nil, 0, op.end(err)
	}

	op.span.SetAttributes(map[string]interface{}{
		"db.rows_returned": len(tasks),
		"db.total_count":   count,
	})

	return tasks, count, op.end(nil)
}

func (tr *TaskRepository) GetByID(ctx context.Context, id int) (domain.Task, error) {
	ctx, op := observe(ctx, tr.telemetry, "GetByID", "task", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "tasks",
		"task.id":   id,
	})

	task, err := tr.getByID(ctx, tr.db, int64(id))

	return task, op.end(err)
}

func (tr *TaskRepository) getByID(ctx context.Context, q querier, id int64) (domain.Task, error) {
	query, args, err := tr.db.QueryBuilder.Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return domain.Task{}, err
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.Task{}, err
	}
	defer rows.Close()

	var task domain.Task
	if err := tr.scanner.ScanOne(rows, &task); err != nil {
		return domain.Task{}, err
	}

	return task, nil
}

func (tr *TaskRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, op := observe(ctx, tr.telemetry, "Create", "task", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "tasks",
		"db.operation": "INSERT",
		"user.id":      task.UserID,
	})

	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	tx, err := tr.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, op.end(err)
	}
	defer tx.Rollback()

	query, args, err := tr.db.QueryBuilder.Insert("tasks").
		Columns("title", "description", "datetime", "done", "user_id", "created_at", "updated_at").
		Values(task.Title, task.Description, task.Datetime.UTC(), task.Done, task.UserID, task.CreatedAt, task.UpdatedAt).
		ToSql()
	if err != nil {
		return domain.Task{}, op.end(err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Create", "task", query, args)

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.Task{}, op.end(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return domain.Task{}, op.end(err)
	}

	saved, err := tr.getByID(ctx, tx, id)
	if err != nil {
		return domain.Task{}, op.end(err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Task{}, op.end(err)
	}

	return saved, op.end(nil)
}

func (tr *TaskRepository) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, op := observe(ctx, tr.telemetry, "Update", "task", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "tasks",
		"db.operation": "UPDATE",
		"task.id":      task.ID,
		"user.id":      task.UserID,
	})

	task.Datetime = task.Datetime.UTC()
	task.UpdatedAt = time.Now().UTC()

	tx, err := tr.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, op.end(err)
	}
	defer tx.Rollback()

	query, args, err := tr.db.QueryBuilder.Update("tasks").
		SetMap(task.ToMap()).
		Where(sq.Eq{"id": task.ID}).
		ToSql()
	if err != nil {
		return domain.Task{}, op.end(err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Update", "task", query, args)

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.Task{}, op.end(err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.Task{}, op.end(domain.ErrNotFound)
	}

	saved, err := tr.getByID(ctx, tx, int64(task.ID))
	if err != nil {
		return domain.Task{}, op.end(err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Task{}, op.end(err)
	}

	return saved, op.end(nil)
}

func (tr *TaskRepository) DeleteByID(ctx context.Context, id int) error {
	ctx, op := observe(ctx, tr.telemetry, "DeleteByID", "task", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "tasks",
		"db.operation": "DELETE",
		"task.id":      id,
	})

	query, args, err := tr.db.QueryBuilder.Delete("tasks").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return op.end(err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "DeleteByID", "task", query, args)

	result, err := tr.db.ExecContext(ctx, query, args...)
	if err != nil {
		return op.end(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return op.end(err)
	}

	if affected == 0 {
		return op.end(domain.ErrNotFound)
	}

	return op.end(nil)
}
