package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// SQLClient implements Client over database/sql. Table and column names
// come from the fixed schema, values are always bound parameters.
type SQLClient struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

func NewSQLClient(db *sql.DB, dialect Dialect) *SQLClient {
	return &SQLClient{db: db, dialect: dialect, now: time.Now}
}

func (c *SQLClient) Select(ctx context.Context, q Query, dest any) error {
	rows, err := c.query(ctx, q)
	if err != nil {
		return err
	}
	return decodeRows(rows, dest)
}

func (c *SQLClient) Single(ctx context.Context, q Query, dest any) error {
	rows, err := c.query(ctx, q)
	if err != nil {
		return err
	}
	return decodeSingle(rows, dest)
}

func (c *SQLClient) Insert(ctx context.Context, tableName string, row any, dest any) error {
	t, err := lookupTable(tableName)
	if err != nil {
		return err
	}
	r, err := prepareInsert(t, row, c.now())
	if err != nil {
		return err
	}

	cols := make([]string, 0, len(r))
	for k := range r {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	marks := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		marks[i] = c.dialect.placeholder(i + 1)
		args[i] = r[col]
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		t.name, strings.Join(cols, ", "), strings.Join(marks, ", "), strings.Join(t.columns, ", "))
	rows, err := c.scan(ctx, t, stmt, args...)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", t.name, err)
	}
	return decodeSingle(rows, dest)
}

func (c *SQLClient) Update(ctx context.Context, q Query, values map[string]any, dest any) error {
	t, err := q.validate()
	if err != nil {
		return err
	}
	set, err := prepareUpdate(t, values, c.now())
	if err != nil {
		return err
	}
	if len(set) == 0 {
		return c.Single(ctx, q, dest)
	}

	cols := make([]string, 0, len(set))
	for k := range set {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	assigns := make([]string, len(cols))
	args := make([]any, 0, len(cols)+len(q.Filters))
	for i, col := range cols {
		assigns[i] = col + " = " + c.dialect.placeholder(i+1)
		args = append(args, set[col])
	}
	where, whereArgs := c.where(q.Filters, len(args))
	args = append(args, whereArgs...)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt := fmt.Sprintf("UPDATE %s SET %s%s RETURNING %s",
		t.name, strings.Join(assigns, ", "), where, strings.Join(t.columns, ", "))
	rows, err := scanRows(ctx, tx, t, stmt, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", t.name, err)
	}
	if len(rows) > 1 {
		return ErrMultipleRows
	}
	if err := decodeSingle(rows, dest); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (c *SQLClient) Delete(ctx context.Context, q Query) error {
	t, err := q.validate()
	if err != nil {
		return err
	}
	where, args := c.where(q.Filters, 0)
	if _, err := c.db.ExecContext(ctx, "DELETE FROM "+t.name+where, args...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", t.name, err)
	}
	return nil
}

func (c *SQLClient) query(ctx context.Context, q Query) ([]Row, error) {
	t, err := q.validate()
	if err != nil {
		return nil, err
	}
	where, args := c.where(q.Filters, 0)
	stmt := "SELECT " + strings.Join(t.columns, ", ") + " FROM " + t.name + where
	if len(q.Orders) > 0 {
		parts := make([]string, len(q.Orders))
		for i, o := range q.Orders {
			dir := "DESC"
			if o.Ascending {
				dir = "ASC"
			}
			parts[i] = o.Column + " " + dir
		}
		stmt += " ORDER BY " + strings.Join(parts, ", ")
	}
	rows, err := c.scan(ctx, t, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.name, err)
	}
	return rows, nil
}

func (c *SQLClient) where(filters []Filter, offset int) (string, []any) {
	if len(filters) == 0 {
		return "", nil
	}
	conds := make([]string, len(filters))
	args := make([]any, len(filters))
	for i, f := range filters {
		conds[i] = f.Column + " = " + c.dialect.placeholder(offset+i+1)
		args[i] = filterArg(f.Value)
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func filterArg(v any) any {
	switch val := v.(type) {
	case Priority:
		return string(val)
	case time.Time:
		return val.UTC()
	default:
		return v
	}
}

func (c *SQLClient) scan(ctx context.Context, t *table, stmt string, args ...any) ([]Row, error) {
	return scanRows(ctx, c.db, t, stmt, args...)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanRows(ctx context.Context, db queryer, t *table, stmt string, args ...any) ([]Row, error) {
	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		vals := make([]any, len(t.columns))
		ptrs := make([]any, len(t.columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		r := make(Row, len(t.columns))
		for i, col := range t.columns {
			v := vals[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			if s, ok := v.(string); ok && t.timeCols[col] {
				if ts, err := parseStoredTime(s); err == nil {
					v = ts
				}
			}
			r[col] = v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

var storedTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseStoredTime(s string) (time.Time, error) {
	var err error
	for _, layout := range storedTimeLayouts {
		var ts time.Time
		if ts, err = time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, err
}
