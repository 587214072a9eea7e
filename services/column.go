package services

import (
	"context"

	"github.com/CrowderSoup/kanban/database"
)

type ColumnService struct {
	client database.Client
}

func NewColumnService(client database.Client) *ColumnService {
	return &ColumnService{client: client}
}

// GetColumns returns a board's columns in display order.
func (s *ColumnService) GetColumns(ctx context.Context, boardID string) ([]database.Column, error) {
	columns := []database.Column{}
	q := database.From("columns").Eq("board_id", boardID).Order("sort_order", true)
	if err := s.client.Select(ctx, q, &columns); err != nil {
		return nil, queryError("columns", err)
	}
	return columns, nil
}

func (s *ColumnService) CreateColumn(ctx context.Context, column database.NewColumn) (*database.Column, error) {
	var created database.Column
	if err := s.client.Insert(ctx, "columns", column, &created); err != nil {
		return nil, queryError("columns", err)
	}
	return &created, nil
}

func (s *ColumnService) deleteColumns(ctx context.Context, boardID string) error {
	if err := s.client.Delete(ctx, database.From("columns").Eq("board_id", boardID)); err != nil {
		return queryError("columns", err)
	}
	return nil
}
