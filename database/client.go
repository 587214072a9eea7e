package database

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoRows        = errors.New("no rows in result set")
	ErrMultipleRows  = errors.New("multiple rows in result set")
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")
)

// Client is the query-and-mutate interface over named tables. Rows are
// decoded into dest through their JSON field names.
type Client interface {
	// Select loads every row matching q into dest, a pointer to a slice.
	Select(ctx context.Context, q Query, dest any) error
	// Single loads exactly one row into dest, a pointer to a struct.
	Single(ctx context.Context, q Query, dest any) error
	// Insert stores row, assigning id and timestamps, and loads the stored
	// row into dest.
	Insert(ctx context.Context, table string, row any, dest any) error
	// Update sets values on the one row matching q and loads it into dest.
	Update(ctx context.Context, q Query, values map[string]any, dest any) error
	Delete(ctx context.Context, q Query) error
}

type Filter struct {
	Column string
	Value  any
}

type Order struct {
	Column    string
	Ascending bool
}

// Query describes a read or write target: a table, equality filters and an
// ordering. Builder methods return copies so a base query can be shared.
type Query struct {
	Table   string
	Filters []Filter
	Orders  []Order
}

func From(table string) Query {
	return Query{Table: table}
}

func (q Query) Eq(column string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: column, Value: value})
	return q
}

func (q Query) Order(column string, ascending bool) Query {
	q.Orders = append(append([]Order(nil), q.Orders...), Order{Column: column, Ascending: ascending})
	return q
}

func (q Query) validate() (*table, error) {
	t, err := lookupTable(q.Table)
	if err != nil {
		return nil, err
	}
	for _, f := range q.Filters {
		if !t.has(f.Column) {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, q.Table, f.Column)
		}
	}
	for _, o := range q.Orders {
		if !t.has(o.Column) {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, q.Table, o.Column)
		}
	}
	return t, nil
}

// Row is a stored record keyed by column name.
type Row map[string]any

type table struct {
	name       string
	columns    []string
	timeCols   map[string]bool
	hasUpdated bool
}

func (t *table) has(column string) bool {
	for _, c := range t.columns {
		if c == column {
			return true
		}
	}
	return false
}

var schema = map[string]*table{
	"users": {
		name:     "users",
		columns:  []string{"id", "email", "created_at"},
		timeCols: map[string]bool{"created_at": true},
	},
	"boards": {
		name:       "boards",
		columns:    []string{"id", "title", "description", "color", "user_id", "created_at", "updated_at"},
		timeCols:   map[string]bool{"created_at": true, "updated_at": true},
		hasUpdated: true,
	},
	"columns": {
		name:     "columns",
		columns:  []string{"id", "title", "board_id", "sort_order", "created_at"},
		timeCols: map[string]bool{"created_at": true},
	},
	"tasks": {
		name: "tasks",
		columns: []string{"id", "column_id", "title", "description", "assignee", "due_date",
			"priority", "sort_order", "created_at", "updated_at"},
		timeCols:   map[string]bool{"due_date": true, "created_at": true, "updated_at": true},
		hasUpdated: true,
	},
}

func lookupTable(name string) (*table, error) {
	t, ok := schema[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return t, nil
}

// prepareInsert turns a caller's row into a storable Row with generated
// fields filled in. Callers may not supply id or timestamps.
func prepareInsert(t *table, row any, now time.Time) (Row, error) {
	r, err := encodeRow(row)
	if err != nil {
		return nil, err
	}
	delete(r, "id")
	delete(r, "created_at")
	delete(r, "updated_at")
	if err := normalise(t, r); err != nil {
		return nil, err
	}
	r["id"] = uuid.NewString()
	r["created_at"] = now
	if t.hasUpdated {
		r["updated_at"] = now
	}
	return r, nil
}

func prepareUpdate(t *table, values map[string]any, now time.Time) (Row, error) {
	r := Row{}
	for k, v := range values {
		switch k {
		case "id", "created_at", "updated_at":
			continue
		}
		r[k] = v
	}
	if err := normalise(t, r); err != nil {
		return nil, err
	}
	if t.hasUpdated {
		r["updated_at"] = now
	}
	return r, nil
}

// normalise checks column names and converts values to the types both
// clients store: string, int64, float64, bool, time.Time or nil.
func normalise(t *table, r Row) error {
	for k, v := range r {
		if !t.has(k) {
			return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.name, k)
		}
		switch val := v.(type) {
		case json.Number:
			if i, err := val.Int64(); err == nil {
				r[k] = i
			} else if f, err := val.Float64(); err == nil {
				r[k] = f
			} else {
				return fmt.Errorf("invalid number for %s: %w", k, err)
			}
		case int:
			r[k] = int64(val)
		case Priority:
			r[k] = string(val)
		case *time.Time:
			if val == nil {
				r[k] = nil
			} else {
				r[k] = val.UTC()
			}
		case time.Time:
			r[k] = val.UTC()
		case string:
			if t.timeCols[k] {
				ts, err := time.Parse(time.RFC3339Nano, val)
				if err != nil {
					return fmt.Errorf("invalid time for %s: %w", k, err)
				}
				r[k] = ts.UTC()
			}
		}
	}
	return nil
}

func encodeRow(row any) (Row, error) {
	if r, ok := row.(Row); ok {
		out := Row{}
		for k, v := range r {
			out[k] = v
		}
		return out, nil
	}
	data, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("failed to encode row: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var r Row
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to encode row: %w", err)
	}
	return r, nil
}

func decodeRows(rows []Row, dest any) error {
	if rows == nil {
		rows = []Row{}
	}
	return decodeInto(rows, dest)
}

func decodeSingle(rows []Row, dest any) error {
	switch len(rows) {
	case 0:
		return ErrNoRows
	case 1:
		return decodeInto(rows[0], dest)
	default:
		return ErrMultipleRows
	}
}

func decodeInto(v any, dest any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to decode rows: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode rows: %w", err)
	}
	return nil
}
