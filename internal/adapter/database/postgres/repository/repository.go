package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"tasksapi/internal/core/domain"
	"tasksapi/internal/core/port"
)

type observation struct {
	ctx       context.Context
	span      port.Span
	telemetry port.Telemetry
	operation string
	entity    string
	startTime time.Time
}

func observe(ctx context.Context, telemetry port.Telemetry, operation, entity string, attrs map[string]interface{}) (context.Context, *observation) {
	attrs["db.system"] = "postgresql"

	ctx, span := telemetry.StartRepositorySpan(ctx, operation, entity, attrs)

	return ctx, &observation{
		ctx:       ctx,
		span:      span,
		telemetry: telemetry,
		operation: operation,
		entity:    entity,
		startTime: time.Now(),
	}
}

// uniqueViolation is the SQLSTATE of a unique_violation.
const uniqueViolation = "23505"

// end closes the span and returns err with pgx.ErrNoRows mapped to
// domain.ErrNotFound and unique violations to domain.ErrAlreadyExists.
func (o *observation) end(err error) error {
	defer o.span.End()

	var pgErr *pgconn.PgError

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		err = domain.ErrNotFound
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		err = domain.ErrAlreadyExists
	}

	duration := time.Since(o.startTime)
	o.span.SetAttributes(map[string]interface{}{
		"operation.duration_ns": duration.Nanoseconds(),
	})

	if err != nil && !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrAlreadyExists) {
		o.span.SetStatus("error", err.Error())
		o.span.RecordError(err)
		o.telemetry.RecordRepositoryOperation(o.ctx, o.operation, o.entity, duration, err)
		return err
	}

	o.span.SetStatus("ok", "")
	o.telemetry.RecordRepositoryOperation(o.ctx, o.operation, o.entity, duration, nil)

	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func taskConditions(filter domain.TaskFilter) sq.And {
	conditions := sq.And{}

	if filter.UserID > 0 {
		conditions = append(conditions, sq.Eq{"user_id": filter.UserID})
	}

	if filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(filter.Search) + "%"
		conditions = append(conditions, sq.Or{
			sq.Expr(`title ILIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`description ILIKE ? ESCAPE '\'`, pattern),
		})
	}

	return conditions
}

func returning(columns []string) string {
	return "RETURNING " + strings.Join(columns, ", ")
}
