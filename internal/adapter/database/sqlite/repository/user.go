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

var userColumns = []string{"id", "username", "email", "encrypted_password", "name", "last_name", "created_at", "updated_at"}

type UserRepository struct {
	db        *sqlite.DB
	scanner   *sqlite.Scanner
	telemetry port.Telemetry
}

func NewUserRepository(db *sqlite.DB, telemetry port.Telemetry) port.UserRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserRepository{
		db:        db,
		scanner:   sqlite.NewScanner(),
		telemetry: telemetry,
	}
}

func (ur *UserRepository) List(ctx context.Context, pagination domain.Pagination) ([]domain.User, int, error) {
	ctx, op := observe(ctx, ur.telemetry, "List", "user", map[string]interface{}{
		"db.system":       "sqlite",
		"db.table":        "users",
		"pagination.page": pagination.Page,
		"pagination.size": pagination.PageSize,
	})

	var count int
	countSQL, countArgs, err := ur.db.QueryBuilder.Select("COUNT(*)").From("users").ToSql()
	if err != nil {
		return nil, 0, op.end(err)
	}

	if err := ur.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&count); err != nil {
		return nil, 0, op.end(err)
	}

	query, args, err := ur.db.QueryBuilder.Select(userColumns...).
		From("users").
		OrderBy("id ASC").
		Limit(uint64(pagination.PageSize)).
		Offset(uint64(pagination.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, op.end(err)
	}

	ur.telemetry.RecordRepositoryQuery(ctx, "List", "user", query, args)

	rows, err := ur.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, op.end(err)
	}
	defer rows.Close()

	users := []domain.User{}
	if err := ur.scanner.ScanRowsToSlice(rows, &users); err != nil {
		return nil, 0, op.end(err)
	}

	return users, count, op.end(nil)
}

func (ur *UserRepository) GetByID(ctx context.Context, id int) (domain.User, error) {
	ctx, op := observe(ctx, ur.telemetry, "GetByID", "user", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "users",
		"user.id":   id,
	})

	user, err := ur.getOne(ctx, ur.db, sq.Eq{"id": id})

	return user, op.end(err)
}

func (ur *UserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	ctx, op := observe(ctx, ur.telemetry, "GetByUsername", "user", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "users",
	})

	user, err := ur.getOne(ctx, ur.db, sq.Eq{"username": username})

	return user, op.end(err)
}

func (ur *UserRepository) getOne(ctx context.Context, q querier, where sq.Eq) (domain.User, error) {
	query, args, err := ur.db.QueryBuilder.Select(userColumns...).
		From("users").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return domain.User{}, err
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.User{}, err
	}
	defer rows.Close()

	var user domain.User
	if err := ur.scanner.ScanOne(rows, &user); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, op := observe(ctx, ur.telemetry, "Create", "user", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "users",
		"db.operation": "INSERT",
	})

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	// the insert and the read back share one connection
	tx, err := ur.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, op.end(err)
	}
	defer tx.Rollback()

	query, args, err := ur.db.QueryBuilder.Insert("users").
		Columns("username", "email", "encrypted_password", "name", "last_name", "created_at", "updated_at").
		Values(user.Username, user.Email, user.EncryptedPassword, user.Name, user.LastName, user.CreatedAt, user.UpdatedAt).
		ToSql()
	if err != nil {
		return domain.User{}, op.end(err)
	}

	ur.telemetry.RecordRepositoryQuery(ctx, "Create", "user", query, args)

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.User{}, op.end(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return domain.User{}, op.end(err)
	}

	saved, err := ur.getOne(ctx, tx, sq.Eq{"id": id})
	if err != nil {
		return domain.User{}, op.end(err)
	}

	if err := tx.Commit(); err != nil {
		return domain.User{}, op.end(err)
	}

	return saved, op.end(nil)
}

func (ur *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, op := observe(ctx, ur.telemetry, "Update", "user", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "users",
		"db.operation": "UPDATE",
		"user.id":      user.ID,
	})

	user.UpdatedAt = time.Now().UTC()

	tx, err := ur.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, op.end(err)
	}
	defer tx.Rollback()

	query, args, err := ur.db.QueryBuilder.Update("users").
		SetMap(user.ToMap()).
		Where(sq.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return domain.User{}, op.end(err)
	}

	ur.telemetry.RecordRepositoryQuery(ctx, "Update", "user", query, args)

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.User{}, op.end(err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.User{}, op.end(domain.ErrNotFound)
	}

	saved, err := ur.getOne(ctx, tx, sq.Eq{"id": user.ID})
	if err != nil {
		return domain.User{}, op.end(err)
	}

	if err := tx.Commit(); err != nil {
		return domain.User{}, op.end(err)
	}

	return saved, op.end(nil)
}

// DeleteByID removes the user; the foreign key cascades to their tasks.
func (ur *UserRepository) DeleteByID(ctx context.Context, id int) error {
	ctx, op := observe(ctx, ur.telemetry, "DeleteByID", "user", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "users",
		"db.operation": "DELETE",
		"user.id":      id,
	})

	query, args, err := ur.db.QueryBuilder.Delete("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return op.end(err)
	}

	ur.telemetry.RecordRepositoryQuery(ctx, "DeleteByID", "user", query, args)

	result, err := ur.db.ExecContext(ctx, query, args...)
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
