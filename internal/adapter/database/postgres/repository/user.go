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

var userColumns = []string{"id", "username", "email", "encrypted_password", "name", "last_name", "created_at", "updated_at"}

type UserRepository struct {
	db        *database.DB
	telemetry port.Telemetry
}

func NewUserRepository(db *database.DB, telemetry port.Telemetry) port.UserRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserRepository{db: db, telemetry: telemetry}
}

func (ur *UserRepository) List(ctx context.Context, pagination domain.Pagination) ([]domain.User, int, error) {
	ctx, op := observe(ctx, ur.telemetry, "List", "user", map[string]interface{}{
		"db.table":        "users",
		"pagination.page": pagination.Page,
		"pagination.size": pagination.PageSize,
	})

	countSQL, countArgs, err := ur.db.QueryBuilder.Select("COUNT(*)").From("users").ToSql()
	if err != nil {
		return nil, 0, op.end(err)
	}

	var count int
	if err := ur.db.QueryRow(ctx, countSQL, countArgs...).Scan(&count); err != nil {
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

	rows, err := ur.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, op.end(err)
	}

	users, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.User])
	if err != nil {
		return nil, 0, op.end(err)
	}

	return users, count, op.end(nil)
}

func (ur *UserRepository) GetByID(ctx context.Context, id int) (domain.User, error) {
	ctx, op := observe(ctx, ur.telemetry, "GetByID", "user", map[string]interface{}{
		"db.table": "users",
		"user.id":  id,
	})

	user, err := ur.getOne(ctx, sq.Eq{"id": id})

	return user, op.end(err)
}

func (ur *UserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	ctx, op := observe(ctx, ur.telemetry, "GetByUsername", "user", map[string]interface{}{
		"db.table": "users",
	})

	user, err := ur.getOne(ctx, sq.Eq{"username": username})

	return user, op.end(err)
}

func (ur *UserRepository) getOne(ctx context.Context, where sq.Eq) (domain.User, error) {
	query, args, err := ur.db.QueryBuilder.Select(userColumns...).
		From("users").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return domain.User{}, err
	}

	return ur.queryOne(ctx, query, args)
}

func (ur *UserRepository) queryOne(ctx context.Context, query string, args []interface{}) (domain.User, error) {
	rows, err := ur.db.Query(ctx, query, args...)
	if err != nil {
		return domain.User{}, err
	}

	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[domain.User])
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, op := observe(ctx, ur.telemetry, "Create", "user", map[string]interface{}{
		"db.table":     "users",
		"db.operation": "INSERT",
	})

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	query, args, err := ur.db.QueryBuilder.Insert("users").
		Columns("username", "email", "encrypted_password", "name", "last_name", "created_at", "updated_at").
		Values(user.Username, user.Email, user.EncryptedPassword, user.Name, user.LastName, user.CreatedAt, user.UpdatedAt).
		Suffix(returning(userColumns)).
		ToSql()
	if err != nil {
		return domain.User{}, op.end(err)
	}

	ur.telemetry.RecordRepositoryQuery(ctx, "Create", "user", query, args)

	saved, err := ur.queryOne(ctx, query, args)

	return saved, op.end(err)
}

func (ur *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, op := observe(ctx, ur.telemetry, "Update", "user", map[string]interface{}{
		"db.table":     "users",
		"db.operation": "UPDATE",
		"user.id":      user.ID,
	})

	user.UpdatedAt = time.Now().UTC()

	query, args, err := ur.db.QueryBuilder.Update("users").
		SetMap(user.ToMap()).
		Where(sq.Eq{"id": user.ID}).
		Suffix(returning(userColumns)).
		ToSql()
	if err != nil {
		return domain.User{}, op.end(err)
	}

	ur.telemetry.RecordRepositoryQuery(ctx, "Update", "user", query, args)

	saved, err := ur.queryOne(ctx, query, args)

	return saved, op.end(err)
}

// DeleteByID removes the user; the foreign key cascades to their tasks.
func (ur *UserRepository) DeleteByID(ctx context.Context, id int) error {
	ctx, op := observe(ctx, ur.telemetry, "DeleteByID", "user", map[string]interface{}{
		"db.table":     "users",
		"db.operation": "DELETE",
		"user.id":      id,
	})

	query, args, err := ur.db.QueryBuilder.Delete("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return op.end(err)
	}

	ur.telemetry.RecordRepositoryQuery(ctx, "DeleteByID", "user", query, args)

	tag, err := ur.db.Exec(ctx, query, args...)
	if err != nil {
		return op.end(err)
	}

	if tag.RowsAffected() == 0 {
		return op.end(domain.ErrNotFound)
	}

	return op.end(nil)
}
