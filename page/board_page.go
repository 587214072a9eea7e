// Package page holds the board page's UI state and turns user actions into
// service calls.
package page

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CrowderSoup/kanban/database"
	"github.com/CrowderSoup/kanban/services"
)

type Mode int

const (
	Viewing Mode = iota
	EditingTitle
	Filtering
)

func (m Mode) String() string {
	switch m {
	case EditingTitle:
		return "editing-title"
	case Filtering:
		return "filtering"
	default:
		return "viewing"
	}
}

var ErrNoColumns = errors.New("board has no columns to add a task to")

type BoardLoader interface {
	GetBoardWithColumns(ctx context.Context, boardID string) (*services.BoardData, error)
}

type BoardUpdater interface {
	UpdateBoard(ctx context.Context, id string, upd services.BoardUpdate) (*database.Board, error)
}

type TaskCreator interface {
	CreateTask(ctx context.Context, task database.NewTask) (*database.Task, error)
}

// EditDraft is the edit dialog's working copy.
type EditDraft struct {
	Title string `json:"title"`
	Color string `json:"color"`
}

// TaskForm carries the create-task form's raw field values.
type TaskForm struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Assignee    string `json:"assignee"`
	DueDate     string `json:"dueDate"`
	Priority    string `json:"priority"`
	ColumnID    string `json:"columnId"`
}

// BoardPage is the state behind one rendering of a board. It is not safe for
// concurrent use.
type BoardPage struct {
	BoardID string
	Board   *database.Board
	Columns []services.ColumnWithTasks
	Mode    Mode
	Draft   EditDraft
	Filter  services.TaskFilter
	// Err is the last failure, kept for display until the next action.
	Err error

	loader BoardLoader
	boards BoardUpdater
	tasks  TaskCreator
}

func New(boardID string, loader BoardLoader, boards BoardUpdater, tasks TaskCreator) *BoardPage {
	return &BoardPage{
		BoardID: boardID,
		loader:  loader,
		boards:  boards,
		tasks:   tasks,
	}
}

func (p *BoardPage) Load(ctx context.Context) error {
	data, err := p.loader.GetBoardWithColumns(ctx, p.BoardID)
	if err != nil {
		return p.fail(err)
	}
	p.Board = data.Board
	p.Columns = data.Columns
	p.Err = nil
	return nil
}

func (p *BoardPage) OpenEdit() {
	p.Draft = EditDraft{}
	if p.Board != nil {
		p.Draft = EditDraft{Title: p.Board.Title, Color: p.Board.Color}
	}
	p.Err = nil
	p.Mode = EditingTitle
}

// SaveEdit stores the draft. The dialog stays open when saving fails.
func (p *BoardPage) SaveEdit(ctx context.Context) error {
	title := strings.TrimSpace(p.Draft.Title)
	if title == "" {
		return p.fail(services.ErrEmptyTitle)
	}
	if p.Board == nil {
		return p.fail(fmt.Errorf("board %s is not loaded", p.BoardID))
	}
	color := strings.TrimSpace(p.Draft.Color)
	if color == "" {
		color = p.Board.Color
	}
	if !database.IsBoardColor(color) {
		return p.fail(services.ErrInvalidColor)
	}

	updated, err := p.boards.UpdateBoard(ctx, p.Board.ID, services.BoardUpdate{Title: &title, Color: &color})
	if err != nil {
		return p.fail(err)
	}
	p.Board = updated
	p.Err = nil
	p.Mode = Viewing
	return nil
}

func (p *BoardPage) CancelEdit() {
	p.Draft = EditDraft{}
	p.Mode = Viewing
}

func (p *BoardPage) OpenFilter() {
	p.Mode = Filtering
}

func (p *BoardPage) ApplyFilter(f services.TaskFilter) {
	p.Filter = f
	p.Mode = Viewing
}

// CancelFilter closes the dialog and keeps the filter already applied.
func (p *BoardPage) CancelFilter() {
	p.Mode = Viewing
}

func (p *BoardPage) ClearFilter() {
	p.Filter = services.TaskFilter{}
}

// SubmitTask validates form and creates the task. Nothing is sent when the
// title is blank.
func (p *BoardPage) SubmitTask(ctx context.Context, form TaskForm) (*database.Task, error) {
	title := strings.TrimSpace(form.Title)
	if title == "" {
		return nil, p.fail(services.ErrEmptyTitle)
	}
	priority, err := database.ParsePriority(form.Priority)
	if err != nil {
		return nil, p.fail(services.ErrInvalidPriority)
	}

	var due *time.Time
	if d := strings.TrimSpace(form.DueDate); d != "" {
		t, err := time.Parse(time.DateOnly, d)
		if err != nil {
			return nil, p.fail(services.ErrInvalidDueDate)
		}
		due = &t
	}
	var assignee *string
	if a := strings.TrimSpace(form.Assignee); a != "" {
		assignee = &a
	}

	idx, err := p.targetColumn(form.ColumnID)
	if err != nil {
		return nil, p.fail(err)
	}
	col := &p.Columns[idx]

	task, err := p.tasks.CreateTask(ctx, database.NewTask{
		ColumnID:    col.ID,
		Title:       title,
		Description: strings.TrimSpace(form.Description),
		Assignee:    assignee,
		DueDate:     due,
		Priority:    priority,
		SortOrder:   len(col.Tasks),
	})
	if err != nil {
		return nil, p.fail(err)
	}
	col.Tasks = append(col.Tasks, *task)
	p.Err = nil
	return task, nil
}

func (p *BoardPage) targetColumn(columnID string) (int, error) {
	if len(p.Columns) == 0 {
		return 0, ErrNoColumns
	}
	if columnID == "" {
		return 0, nil
	}
	for i, c := range p.Columns {
		if c.ID == columnID {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %s: %w", columnID, database.ErrNoRows)
}

func (p *BoardPage) fail(err error) error {
	p.Err = err
	return err
}

type ColumnView struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	TaskCount  int             `json:"task_count"`
	TaskTitles []string        `json:"task_titles"`
	Tasks      []database.Task `json:"tasks"`
}

// View is what the board page displays.
type View struct {
	BoardID     string       `json:"board_id"`
	Title       string       `json:"title"`
	Color       string       `json:"color"`
	Description string       `json:"description"`
	Mode        string       `json:"mode"`
	Columns     []ColumnView `json:"columns"`
	TotalTasks  int          `json:"total_tasks"`
	FilterCount int          `json:"filter_count"`
	Error       string       `json:"error,omitempty"`
}

// View renders the current state with the active filter applied.
func (p *BoardPage) View() View {
	v := View{
		BoardID:     p.BoardID,
		Mode:        p.Mode.String(),
		Columns:     []ColumnView{},
		FilterCount: p.Filter.Active(),
	}
	if p.Board != nil {
		v.Title = p.Board.Title
		v.Color = p.Board.Color
		v.Description = p.Board.Description
	}
	if p.Err != nil {
		v.Error = p.Err.Error()
	}
	for _, col := range p.Filter.Apply(p.Columns) {
		cv := ColumnView{
			ID:         col.ID,
			Title:      col.Title,
			TaskCount:  len(col.Tasks),
			TaskTitles: make([]string, 0, len(col.Tasks)),
			Tasks:      col.Tasks,
		}
		for _, t := range col.Tasks {
			cv.TaskTitles = append(cv.TaskTitles, t.Title)
		}
		v.TotalTasks += cv.TaskCount
		v.Columns = append(v.Columns, cv)
	}
	return v
}
