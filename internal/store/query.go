package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"
)

// builder renders SQLite statements with ent's SQL builder.
var builder = entsql.Dialect(dialect.SQLite)

// queryRows runs query and calls scan once per row.
func queryRows(ctx context.Context, q dialect.ExecQuerier, query string, args []any, scan func(*entsql.Rows) error) error {
	var rows entsql.Rows
	if err := q.Query(ctx, query, args, &rows); err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(&rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// execAffected runs a statement and returns the number of affected rows.
func execAffected(ctx context.Context, q dialect.ExecQuerier, query string, args []any) (int64, error) {
	var res sql.Result
	if err := q.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// countRows runs a single-value COUNT query.
func countRows(ctx context.Context, q dialect.ExecQuerier, sel *entsql.Selector) (int, error) {
	query, args := sel.Query()
	var n int
	err := queryRows(ctx, q, query, args, func(rows *entsql.Rows) error {
		return rows.Scan(&n)
	})
	return n, err
}

func isUniqueViolation(err error, column string) bool {
	return sqlgraph.IsUniqueConstraintError(err) && strings.Contains(err.Error(), column)
}

// nullableTime converts an optional instant into a driver value.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
