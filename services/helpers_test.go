package services

import (
	"context"
	"errors"
	"time"

	"github.com/CrowderSoup/kanban/database"
)

var errBoom = errors.New("connection reset")

func newTestClient() *database.MemoryClient {
	c := database.NewMemoryClient()
	t := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	c.Now = func() time.Time {
		t = t.Add(time.Second)
		return t
	}
	return c
}

// flakyClient wraps a client and fails chosen calls.
type flakyClient struct {
	database.Client
	// failInsertAfter fails inserts into failTable once that many have
	// succeeded. Negative disables.
	failTable       string
	failInsertAfter int
	inserted        int
	failSelect      bool
	failDelete      bool
	calls           []string
}

func (c *flakyClient) Select(ctx context.Context, q database.Query, dest any) error {
	c.calls = append(c.calls, "select:"+q.Table)
	if c.failSelect {
		return errBoom
	}
	return c.Client.Select(ctx, q, dest)
}

func (c *flakyClient) Insert(ctx context.Context, table string, row any, dest any) error {
	c.calls = append(c.calls, "insert:"+table)
	if table == c.failTable && c.failInsertAfter >= 0 {
		if c.inserted >= c.failInsertAfter {
			return errBoom
		}
		c.inserted++
	}
	return c.Client.Insert(ctx, table, row, dest)
}

func (c *flakyClient) Delete(ctx context.Context, q database.Query) error {
	c.calls = append(c.calls, "delete:"+q.Table)
	if c.failDelete {
		return errors.New("delete refused")
	}
	return c.Client.Delete(ctx, q)
}
