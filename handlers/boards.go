package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/CrowderSoup/kanban/database"
	"github.com/CrowderSoup/kanban/page"
	"github.com/CrowderSoup/kanban/services"
)

// BoardHandler serves the board list and the board page actions.
type BoardHandler struct {
	boards    *services.BoardService
	columns   *services.ColumnService
	tasks     *services.TaskService
	boardData *services.BoardDataService
}

func NewBoardHandler(client database.Client) *BoardHandler {
	return &BoardHandler{
		boards:    services.NewBoardService(client),
		columns:   services.NewColumnService(client),
		tasks:     services.NewTaskService(client),
		boardData: services.NewBoardDataService(client),
	}
}

// ListBoards returns the caller's boards, newest first.
func (h *BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user not found")
		return
	}

	boards, err := h.boards.GetBoards(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "list boards")
		return
	}
	writeData(w, http.StatusOK, boards)
}

// CreateBoard creates a board with its starter columns.
func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user not found")
		return
	}

	var in services.NewBoardInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	in.UserID = userID

	created, err := h.boardData.CreateBoardWithDefaultColumns(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, "create board")
		return
	}
	writeData(w, http.StatusCreated, created)
}

// GetBoard renders the board page, filtered by the query string.
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPage(w, r)
	if !ok {
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.Active() > 0 {
		p.OpenFilter()
		p.ApplyFilter(filter)
	}
	writeData(w, http.StatusOK, p.View())
}

// UpdateBoard saves the edit dialog.
func (h *BoardHandler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	var req services.BoardUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	p, ok := h.loadPage(w, r)
	if !ok {
		return
	}

	p.OpenEdit()
	if req.Title != nil {
		p.Draft.Title = *req.Title
	}
	if req.Color != nil {
		p.Draft.Color = *req.Color
	}
	if err := p.SaveEdit(r.Context()); err != nil {
		writeServiceError(w, err, "update board")
		return
	}
	writeData(w, http.StatusOK, p.View())
}

// CreateColumn appends a column to the board.
func (h *BoardHandler) CreateColumn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		writeServiceError(w, services.ErrEmptyTitle, "create column")
		return
	}

	board, ok := h.ownedBoard(w, r)
	if !ok {
		return
	}
	existing, err := h.columns.GetColumns(r.Context(), board.ID)
	if err != nil {
		writeServiceError(w, err, "create column")
		return
	}

	col, err := h.columns.CreateColumn(r.Context(), database.NewColumn{
		Title:     title,
		BoardID:   board.ID,
		SortOrder: len(existing),
	})
	if err != nil {
		writeServiceError(w, err, "create column")
		return
	}
	writeData(w, http.StatusCreated, col)
}

// CreateTask submits the create-task form. Both JSON and form-encoded
// bodies are accepted.
func (h *BoardHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	form, err := readTaskForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	p, ok := h.loadPage(w, r)
	if !ok {
		return
	}

	task, err := p.SubmitTask(r.Context(), form)
	if err != nil {
		writeServiceError(w, err, "create task")
		return
	}
	writeData(w, http.StatusCreated, task)
}

// loadPage loads the board named in the route and checks that the caller
// owns it. Boards of other users are reported as missing.
func (h *BoardHandler) loadPage(w http.ResponseWriter, r *http.Request) (*page.BoardPage, bool) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user not found")
		return nil, false
	}

	p := page.New(mux.Vars(r)["id"], h.boardData, h.boards, h.tasks)
	if err := p.Load(r.Context()); err != nil {
		writeServiceError(w, err, "load board")
		return nil, false
	}
	if p.Board.UserID != userID {
		writeError(w, http.StatusNotFound, "not found")
		return nil, false
	}
	return p, true
}

func (h *BoardHandler) ownedBoard(w http.ResponseWriter, r *http.Request) (*database.Board, bool) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user not found")
		return nil, false
	}

	board, err := h.boards.GetBoard(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err, "load board")
		return nil, false
	}
	if board.UserID != userID {
		writeError(w, http.StatusNotFound, "not found")
		return nil, false
	}
	return board, true
}

func readTaskForm(r *http.Request) (page.TaskForm, error) {
	var form page.TaskForm
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return form, err
		}
		form = page.TaskForm{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			Assignee:    r.FormValue("assignee"),
			DueDate:     r.FormValue("dueDate"),
			Priority:    r.FormValue("priority"),
			ColumnID:    r.FormValue("columnId"),
		}
		return form, nil
	default:
		err := json.NewDecoder(r.Body).Decode(&form)
		return form, err
	}
}

func parseFilter(r *http.Request) (services.TaskFilter, error) {
	q := r.URL.Query()
	var f services.TaskFilter

	for _, raw := range q["priority"] {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			p, err := database.ParsePriority(part)
			if err != nil {
				return f, services.ErrInvalidPriority
			}
			f.Priorities = append(f.Priorities, p)
		}
	}
	f.Assignee = strings.TrimSpace(q.Get("assignee"))

	for key, dst := range map[string]**time.Time{"due_from": &f.DueFrom, "due_to": &f.DueTo} {
		v := strings.TrimSpace(q.Get(key))
		if v == "" {
			continue
		}
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return f, services.ErrInvalidDueDate
		}
		*dst = &t
	}
	return f, nil
}
