package page

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CrowderSoup/kanban/database"
	"github.com/CrowderSoup/kanban/services"
)

var errOffline = errors.New("network unreachable")

type fakeLoader struct {
	data *services.BoardData
	err  error
}

func (f *fakeLoader) GetBoardWithColumns(_ context.Context, _ string) (*services.BoardData, error) {
	return f.data, f.err
}

type fakeBoards struct {
	calls []services.BoardUpdate
	err   error
}

func (f *fakeBoards) UpdateBoard(_ context.Context, id string, upd services.BoardUpdate) (*database.Board, error) {
	f.calls = append(f.calls, upd)
	if f.err != nil {
		return nil, f.err
	}
	return &database.Board{ID: id, Title: *upd.Title, Color: *upd.Color}, nil
}

type fakeTasks struct {
	calls []database.NewTask
	err   error
}

func (f *fakeTasks) CreateTask(_ context.Context, nt database.NewTask) (*database.Task, error) {
	f.calls = append(f.calls, nt)
	if f.err != nil {
		return nil, f.err
	}
	return &database.Task{
		ID:          "t" + nt.Title,
		ColumnID:    nt.ColumnID,
		Title:       nt.Title,
		Description: nt.Description,
		Assignee:    nt.Assignee,
		DueDate:     nt.DueDate,
		Priority:    nt.Priority,
		SortOrder:   nt.SortOrder,
	}, nil
}

func testData() *services.BoardData {
	who := "Sam"
	return &services.BoardData{
		Board: &database.Board{ID: "b1", Title: "Roadmap", Color: "bg-blue-500", UserID: "u1"},
		Columns: []services.ColumnWithTasks{
			{Column: database.Column{ID: "c1", Title: "To Do"}, Tasks: []database.Task{
				{ID: "t1", Title: "Draft", Priority: database.PriorityLow},
				{ID: "t2", Title: "Review", Priority: database.PriorityHigh, Assignee: &who},
			}},
			{Column: database.Column{ID: "c2", Title: "Done", SortOrder: 1}, Tasks: []database.Task{}},
		},
	}
}

func loadedPage(t *testing.T) (*BoardPage, *fakeBoards, *fakeTasks) {
	t.Helper()
	boards, tasks := &fakeBoards{}, &fakeTasks{}
	p := New("b1", &fakeLoader{data: testData()}, boards, tasks)
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return p, boards, tasks
}

func TestLoadFailureIsSurfaced(t *testing.T) {
	p := New("b1", &fakeLoader{err: errOffline}, &fakeBoards{}, &fakeTasks{})
	if err := p.Load(context.Background()); !errors.Is(err, errOffline) {
		t.Fatalf("expected errOffline, got %v", err)
	}
	if v := p.View(); v.Error != errOffline.Error() || v.Mode != "viewing" {
		t.Fatalf("unexpected view: %+v", v)
	}
}

func TestEditTitleFlow(t *testing.T) {
	p, boards, _ := loadedPage(t)
	ctx := context.Background()

	p.OpenEdit()
	if p.Mode != EditingTitle || p.Draft.Title != "Roadmap" || p.Draft.Color != "bg-blue-500" {
		t.Fatalf("edit not seeded from board: %+v", p)
	}

	p.Draft.Title = "   "
	if err := p.SaveEdit(ctx); !errors.Is(err, services.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if len(boards.calls) != 0 || p.Mode != EditingTitle {
		t.Fatalf("blank title must not save: calls=%d mode=%v", len(boards.calls), p.Mode)
	}

	p.Draft = EditDraft{Title: " Q3 Roadmap ", Color: "bg-red-500"}
	if err := p.SaveEdit(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if p.Mode != Viewing || p.Board.Title != "Q3 Roadmap" || p.Board.Color != "bg-red-500" || p.Err != nil {
		t.Fatalf("unexpected state after save: %+v", p)
	}
}

func TestSaveEditKeepsColorWhenBlank(t *testing.T) {
	p, boards, _ := loadedPage(t)
	p.OpenEdit()
	p.Draft.Color = ""
	if err := p.SaveEdit(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := *boards.calls[0].Color; got != "bg-blue-500" {
		t.Fatalf("color = %q, want the board's color", got)
	}
}

func TestSaveEditRejectsColorOutsidePalette(t *testing.T) {
	p, boards, _ := loadedPage(t)
	p.OpenEdit()
	p.Draft.Color = "bg-chartreuse-900"
	if err := p.SaveEdit(context.Background()); !errors.Is(err, services.ErrInvalidColor) {
		t.Fatalf("expected ErrInvalidColor, got %v", err)
	}
	if len(boards.calls) != 0 || p.Mode != EditingTitle {
		t.Fatalf("calls=%d mode=%v", len(boards.calls), p.Mode)
	}
}

func TestSaveEditFailureKeepsDialogOpen(t *testing.T) {
	p, boards, _ := loadedPage(t)
	boards.err = errOffline
	p.OpenEdit()
	p.Draft.Title = "New"
	if err := p.SaveEdit(context.Background()); !errors.Is(err, errOffline) {
		t.Fatalf("expected errOffline, got %v", err)
	}
	if p.Mode != EditingTitle || p.Board.Title != "Roadmap" || !errors.Is(p.Err, errOffline) {
		t.Fatalf("unexpected state: %+v", p)
	}
}

func TestCancelEdit(t *testing.T) {
	p, boards, _ := loadedPage(t)
	p.OpenEdit()
	p.Draft.Title = "Discarded"
	p.CancelEdit()
	if p.Mode != Viewing || p.Board.Title != "Roadmap" || len(boards.calls) != 0 {
		t.Fatalf("cancel changed state: %+v", p)
	}
}

func TestSubmitTaskBlankTitleSendsNothing(t *testing.T) {
	for _, title := range []string{"", "   "} {
		p, _, tasks := loadedPage(t)
		if _, err := p.SubmitTask(context.Background(), TaskForm{Title: title}); !errors.Is(err, services.ErrEmptyTitle) {
			t.Fatalf("title %q: expected ErrEmptyTitle, got %v", title, err)
		}
		if len(tasks.calls) != 0 {
			t.Fatalf("title %q: create was called", title)
		}
	}
}

func TestSubmitTaskDefaults(t *testing.T) {
	p, _, tasks := loadedPage(t)
	task, err := p.SubmitTask(context.Background(), TaskForm{Title: "Write plan"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(tasks.calls) != 1 {
		t.Fatalf("expected one create call, got %d", len(tasks.calls))
	}
	nt := tasks.calls[0]
	if nt.Priority != database.PriorityMedium || nt.ColumnID != "c1" || nt.SortOrder != 2 {
		t.Fatalf("unexpected new task: %+v", nt)
	}
	if nt.Assignee != nil || nt.DueDate != nil {
		t.Fatalf("blank optional fields must be nil: %+v", nt)
	}
	if got := p.Columns[0].Tasks; len(got) != 3 || got[2].ID != task.ID {
		t.Fatalf("task not appended to column: %+v", got)
	}
}

func TestSubmitTaskFields(t *testing.T) {
	p, _, tasks := loadedPage(t)
	_, err := p.SubmitTask(context.Background(), TaskForm{
		Title:    "Ship",
		Assignee: " Kim ",
		DueDate:  "2024-09-01",
		Priority: "High",
		ColumnID: "c2",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	nt := tasks.calls[0]
	want := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	if nt.ColumnID != "c2" || nt.SortOrder != 0 || nt.Priority != database.PriorityHigh {
		t.Fatalf("unexpected new task: %+v", nt)
	}
	if nt.Assignee == nil || *nt.Assignee != "Kim" || nt.DueDate == nil || !nt.DueDate.Equal(want) {
		t.Fatalf("optional fields not parsed: %+v", nt)
	}
}

func TestSubmitTaskValidation(t *testing.T) {
	tests := []struct {
		name string
		form TaskForm
		want error
	}{
		{"bad priority", TaskForm{Title: "x", Priority: "urgent"}, services.ErrInvalidPriority},
		{"bad due date", TaskForm{Title: "x", DueDate: "09/01/2024"}, services.ErrInvalidDueDate},
		{"unknown column", TaskForm{Title: "x", ColumnID: "nope"}, database.ErrNoRows},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, tasks := loadedPage(t)
			if _, err := p.SubmitTask(context.Background(), tt.form); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(tasks.calls) != 0 || !errors.Is(p.Err, tt.want) {
				t.Fatalf("calls=%d err=%v", len(tasks.calls), p.Err)
			}
		})
	}
}

func TestSubmitTaskWithoutColumns(t *testing.T) {
	data := testData()
	data.Columns = nil
	p := New("b1", &fakeLoader{data: data}, &fakeBoards{}, &fakeTasks{})
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := p.SubmitTask(context.Background(), TaskForm{Title: "x"}); !errors.Is(err, ErrNoColumns) {
		t.Fatalf("expected ErrNoColumns, got %v", err)
	}
}

func TestSubmitTaskFailureIsSurfaced(t *testing.T) {
	p, _, tasks := loadedPage(t)
	tasks.err = errOffline
	if _, err := p.SubmitTask(context.Background(), TaskForm{Title: "x"}); !errors.Is(err, errOffline) {
		t.Fatalf("expected errOffline, got %v", err)
	}
	if len(p.Columns[0].Tasks) != 2 {
		t.Fatal("failed task was added to the column")
	}
	if v := p.View(); v.Error != errOffline.Error() {
		t.Fatalf("view error = %q", v.Error)
	}
}

func TestFilterFlow(t *testing.T) {
	p, _, _ := loadedPage(t)

	p.OpenFilter()
	if p.Mode != Filtering {
		t.Fatalf("mode = %v", p.Mode)
	}
	p.ApplyFilter(services.TaskFilter{Priorities: []database.Priority{database.PriorityHigh}})
	v := p.View()
	if v.Mode != "viewing" || v.FilterCount != 1 || v.TotalTasks != 1 {
		t.Fatalf("unexpected filtered view: %+v", v)
	}
	if len(v.Columns) != 2 || v.Columns[0].TaskTitles[0] != "Review" {
		t.Fatalf("unexpected columns: %+v", v.Columns)
	}

	p.OpenFilter()
	p.CancelFilter()
	if p.Filter.Active() != 1 {
		t.Fatal("cancel dropped the applied filter")
	}

	p.ClearFilter()
	if v := p.View(); v.TotalTasks != 2 || v.FilterCount != 0 {
		t.Fatalf("unexpected view after clear: %+v", v)
	}
}

func TestView(t *testing.T) {
	p, _, _ := loadedPage(t)
	v := p.View()
	if v.BoardID != "b1" || v.Title != "Roadmap" || v.Color != "bg-blue-500" || v.Error != "" {
		t.Fatalf("unexpected view: %+v", v)
	}
	if len(v.Columns) != 2 || v.Columns[0].TaskCount != 2 || v.Columns[1].TaskCount != 0 {
		t.Fatalf("unexpected columns: %+v", v.Columns)
	}
	if v.Columns[1].TaskTitles == nil {
		t.Fatal("empty column should render an empty title list")
	}
}
