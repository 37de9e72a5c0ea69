package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"tasksapi/internal/adapter/database/sqlite"
	"tasksapi/internal/core/domain"
	"tasksapi/internal/core/port"
)

// querier is satisfied by both *sql.DB and *sql.Tx, so lookups can run
// inside the transaction of a write.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

type observation struct {
	ctx       context.Context
	span      port.Span
	telemetry port.Telemetry
	operation string
	entity    string
	startTime time.Time
}

func observe(ctx context.Context, telemetry port.Telemetry, operation, entity string, attrs map[string]interface{}) (context.Context, *observation) {
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

// end closes the span and returns err with sql.ErrNoRows mapped to
// domain.ErrNotFound and UNIQUE violations to domain.ErrAlreadyExists.
func (o *observation) end(err error) error {
	defer o.span.End()

	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = domain.ErrNotFound
	case sqlite.IsUniqueViolation(err):
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

// containsPattern builds a LIKE pattern matching value anywhere, with LIKE
// wildcards in value taken literally. It is compared against columns folded
// with sqlite.LowerFunc, so both sides are lowercased the same way.
func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(value)) + "%"
}

// lowerLike matches column, Unicode lowercased, against a containsPattern.
func lowerLike(column, pattern string) sq.Sqlizer {
	return sq.Expr(sqlite.LowerFunc+"("+column+`) LIKE ? ESCAPE '\'`, pattern)
}
