package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryClient keeps tables in process memory. It backs STORE=memory and
// the service tests.
type MemoryClient struct {
	mu     sync.RWMutex
	tables map[string][]Row
	// Now stamps created_at/updated_at; replace it for deterministic tests.
	Now func() time.Time
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		tables: make(map[string][]Row),
		Now:    time.Now,
	}
}

func (c *MemoryClient) Select(ctx context.Context, q Query, dest any) error {
	rows, err := c.find(ctx, q)
	if err != nil {
		return err
	}
	return decodeRows(rows, dest)
}

func (c *MemoryClient) Single(ctx context.Context, q Query, dest any) error {
	rows, err := c.find(ctx, q)
	if err != nil {
		return err
	}
	return decodeSingle(rows, dest)
}

func (c *MemoryClient) Insert(ctx context.Context, tableName string, row any, dest any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t, err := lookupTable(tableName)
	if err != nil {
		return err
	}
	r, err := prepareInsert(t, row, c.Now())
	if err != nil {
		return err
	}
	for _, col := range t.columns {
		if _, ok := r[col]; !ok {
			r[col] = nil
		}
	}

	c.mu.Lock()
	c.tables[t.name] = append(c.tables[t.name], r)
	c.mu.Unlock()

	return decodeInto(r, dest)
}

func (c *MemoryClient) Update(ctx context.Context, q Query, values map[string]any, dest any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t, err := q.validate()
	if err != nil {
		return err
	}
	set, err := prepareUpdate(t, values, c.Now())
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var hit Row
	for _, r := range c.tables[t.name] {
		if !matches(r, q.Filters) {
			continue
		}
		if hit != nil {
			return ErrMultipleRows
		}
		hit = r
	}
	if hit == nil {
		return ErrNoRows
	}
	for k, v := range set {
		hit[k] = v
	}
	return decodeInto(hit, dest)
}

func (c *MemoryClient) Delete(ctx context.Context, q Query) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t, err := q.validate()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.tables[t.name][:0]
	for _, r := range c.tables[t.name] {
		if !matches(r, q.Filters) {
			kept = append(kept, r)
		}
	}
	c.tables[t.name] = kept
	return nil
}

func (c *MemoryClient) find(ctx context.Context, q Query) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := q.validate(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	var out []Row
	for _, r := range c.tables[q.Table] {
		if matches(r, q.Filters) {
			cp := make(Row, len(r))
			for k, v := range r {
				cp[k] = v
			}
			out = append(out, cp)
		}
	}
	c.mu.RUnlock()

	if len(q.Orders) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, o := range q.Orders {
				cmp := compareValues(out[i][o.Column], out[j][o.Column])
				if cmp == 0 {
					continue
				}
				if o.Ascending {
					return cmp < 0
				}
				return cmp > 0
			}
			return false
		})
	}
	return out, nil
}

func matches(r Row, filters []Filter) bool {
	for _, f := range filters {
		if compareValues(r[f.Column], f.Value) != 0 {
			return false
		}
	}
	return true
}

// compareValues orders nils first, then times, numbers and strings by their
// natural order. Mixed types fall back to their printed form.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if na, ok := toFloat(a); ok {
		if nb, ok := toFloat(b); ok {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			default:
				return 0
			}
		}
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
