package services

import (
	"context"

	"github.com/CrowderSoup/kanban/database"
)

// BoardService reads and writes the boards collection. Each method issues
// exactly one client call.
type BoardService struct {
	client database.Client
}

func NewBoardService(client database.Client) *BoardService {
	return &BoardService{client: client}
}

// GetBoards returns the user's boards, newest first. The result is never nil.
func (s *BoardService) GetBoards(ctx context.Context, userID string) ([]database.Board, error) {
	boards := []database.Board{}
	q := database.From("boards").Eq("user_id", userID).Order("created_at", false)
	if err := s.client.Select(ctx, q, &boards); err != nil {
		return nil, queryError("boards", err)
	}
	return boards, nil
}

func (s *BoardService) GetBoard(ctx context.Context, id string) (*database.Board, error) {
	var board database.Board
	if err := s.client.Single(ctx, database.From("boards").Eq("id", id), &board); err != nil {
		return nil, queryError("boards", err)
	}
	return &board, nil
}

// CreateBoard inserts board and returns it with its generated id and
// timestamps.
func (s *BoardService) CreateBoard(ctx context.Context, board database.NewBoard) (*database.Board, error) {
	var created database.Board
	if err := s.client.Insert(ctx, "boards", board, &created); err != nil {
		return nil, queryError("boards", err)
	}
	return &created, nil
}

// BoardUpdate holds the fields the edit dialog can change. Nil fields are
// left untouched.
type BoardUpdate struct {
	Title *string `json:"title"`
	Color *string `json:"color"`
}

func (s *BoardService) UpdateBoard(ctx context.Context, id string, upd BoardUpdate) (*database.Board, error) {
	values := map[string]any{}
	if upd.Title != nil {
		values["title"] = *upd.Title
	}
	if upd.Color != nil {
		values["color"] = *upd.Color
	}
	var updated database.Board
	if err := s.client.Update(ctx, database.From("boards").Eq("id", id), values, &updated); err != nil {
		return nil, queryError("boards", err)
	}
	return &updated, nil
}

// deleteBoard exists only to undo a partially created board.
func (s *BoardService) deleteBoard(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, database.From("boards").Eq("id", id)); err != nil {
		return queryError("boards", err)
	}
	return nil
}
