package services

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/CrowderSoup/kanban/database"
)

// DefaultColumns are the starter columns of a new board, in display order.
var DefaultColumns = []string{"To Do", "In Progress", "Done"}

const rollbackTimeout = 10 * time.Second

type NewBoardInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Color       string   `json:"color"`
	UserID      string   `json:"user_id"`
	Columns     []string `json:"columns"`
}

type BoardWithColumns struct {
	Board   *database.Board   `json:"board"`
	Columns []database.Column `json:"columns"`
}

type ColumnWithTasks struct {
	database.Column
	Tasks []database.Task `json:"tasks"`
}

type BoardData struct {
	Board   *database.Board   `json:"board"`
	Columns []ColumnWithTasks `json:"columns"`
}

// BoardDataService combines the entity services into board-level operations.
type BoardDataService struct {
	boards  *BoardService
	columns *ColumnService
	tasks   *TaskService
}

func NewBoardDataService(client database.Client) *BoardDataService {
	return &BoardDataService{
		boards:  NewBoardService(client),
		columns: NewColumnService(client),
		tasks:   NewTaskService(client),
	}
}

// CreateBoardWithDefaultColumns creates a board and its starter columns.
// If any column insert fails the board and the columns created so far are
// deleted and the column error is returned, so callers never see a board
// without its columns.
func (s *BoardDataService) CreateBoardWithDefaultColumns(ctx context.Context, in NewBoardInput) (*BoardWithColumns, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = database.DefaultBoardColor
	}
	if !database.IsBoardColor(color) {
		return nil, ErrInvalidColor
	}
	titles := DefaultColumns
	if len(in.Columns) > 0 {
		titles = make([]string, len(in.Columns))
		for i, t := range in.Columns {
			if titles[i] = strings.TrimSpace(t); titles[i] == "" {
				return nil, ErrEmptyTitle
			}
		}
	}

	board, err := s.boards.CreateBoard(ctx, database.NewBoard{
		Title:       title,
		Description: in.Description,
		Color:       color,
		UserID:      in.UserID,
	})
	if err != nil {
		return nil, err
	}

	columns := make([]database.Column, 0, len(titles))
	for i, t := range titles {
		col, err := s.columns.CreateColumn(ctx, database.NewColumn{
			Title:     t,
			BoardID:   board.ID,
			SortOrder: i,
		})
		if err != nil {
			return nil, s.rollback(ctx, board.ID, err)
		}
		columns = append(columns, *col)
	}

	return &BoardWithColumns{Board: board, Columns: columns}, nil
}

// rollback still runs when ctx has been cancelled.
func (s *BoardDataService) rollback(ctx context.Context, boardID string, cause error) error {
	logger := log.WithFields(log.Fields{"board_id": boardID}).WithError(cause)
	logger.Warn("Column creation failed, removing board")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	// Columns go first so the rollback also works without ON DELETE CASCADE.
	rbErr := s.columns.deleteColumns(ctx, boardID)
	if rbErr == nil {
		rbErr = s.boards.deleteBoard(ctx, boardID)
	}
	if rbErr != nil {
		logger.WithField("rollback_error", rbErr).Error("Failed to remove partially created board")
		return errors.Join(cause, &RollbackError{BoardID: boardID, Err: rbErr})
	}
	return cause
}

// GetBoardWithColumns loads a board with its columns and each column's tasks.
func (s *BoardDataService) GetBoardWithColumns(ctx context.Context, boardID string) (*BoardData, error) {
	board, err := s.boards.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	columns, err := s.columns.GetColumns(ctx, boardID)
	if err != nil {
		return nil, err
	}

	data := &BoardData{Board: board, Columns: make([]ColumnWithTasks, 0, len(columns))}
	for _, col := range columns {
		tasks, err := s.tasks.GetTasks(ctx, col.ID)
		if err != nil {
			return nil, err
		}
		data.Columns = append(data.Columns, ColumnWithTasks{Column: col, Tasks: tasks})
	}
	return data, nil
}
