package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/CrowderSoup/kanban/database"
	"github.com/CrowderSoup/kanban/services"
)

type testServer struct {
	handler http.Handler
	auth    *services.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerMode(t, false)
}

func newTestServerMode(t *testing.T, devMode bool) *testServer {
	t.Helper()
	client := database.NewMemoryClient()
	auth := services.NewAuthService("test-secret", services.SMTPConfig{}, services.NewMemoryTokenStore(), services.NewUserService(client))
	router := NewRouter(NewAuthHandler(auth, devMode), NewBoardHandler(client), NewAuthMiddleware(auth), []string{"*"})
	return &testServer{handler: router, auth: auth}
}

func (s *testServer) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := s.auth.CreateJWT(userID, userID+"@example.com")
	if err != nil {
		t.Fatalf("create jwt: %v", err)
	}
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	if data != nil {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data %q: %v", env.Data, err)
		}
	}
	return env
}

type boardView struct {
	BoardID     string `json:"board_id"`
	Title       string `json:"title"`
	Color       string `json:"color"`
	Mode        string `json:"mode"`
	TotalTasks  int    `json:"total_tasks"`
	FilterCount int    `json:"filter_count"`
	Columns     []struct {
		ID         string   `json:"id"`
		Title      string   `json:"title"`
		TaskCount  int      `json:"task_count"`
		TaskTitles []string `json:"task_titles"`
	} `json:"columns"`
}

func (s *testServer) createBoard(t *testing.T, token, title string) services.BoardWithColumns {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/boards", token, map[string]any{"title": title})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create board: status %d body %s", rec.Code, rec.Body.String())
	}
	var created services.BoardWithColumns
	decode(t, rec, &created)
	return created
}

func TestBoardRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/boards", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	rec = s.do(t, http.MethodGet, "/api/boards", "garbage", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCreateAndListBoards(t *testing.T) {
	s := newTestServer(t)
	alice, bob := s.token(t, "alice"), s.token(t, "bob")

	created := s.createBoard(t, alice, "Launch")
	if created.Board.Color != database.DefaultBoardColor || len(created.Columns) != 3 {
		t.Fatalf("unexpected board: %+v", created)
	}
	s.createBoard(t, bob, "Other")

	rec := s.do(t, http.MethodGet, "/api/boards", alice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	var boards []database.Board
	decode(t, rec, &boards)
	if len(boards) != 1 || boards[0].ID != created.Board.ID {
		t.Fatalf("unexpected boards: %+v", boards)
	}

	rec = s.do(t, http.MethodPost, "/api/boards", alice, map[string]any{"title": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank title: status %d", rec.Code)
	}
	rec = s.do(t, http.MethodPost, "/api/boards", alice, map[string]any{"title": "Cols", "columns": []string{"", "   "}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank columns: status %d", rec.Code)
	}
}

func TestBoardsOfOtherUsersAreHidden(t *testing.T) {
	s := newTestServer(t)
	alice, bob := s.token(t, "alice"), s.token(t, "bob")
	created := s.createBoard(t, alice, "Private")

	rec := s.do(t, http.MethodGet, "/api/boards/"+created.Board.ID, bob, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	rec = s.do(t, http.MethodPatch, "/api/boards/"+created.Board.ID, bob, map[string]any{"title": "mine"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	rec = s.do(t, http.MethodGet, "/api/boards/missing", alice, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateBoard(t *testing.T) {
	s := newTestServer(t)
	alice := s.token(t, "alice")
	created := s.createBoard(t, alice, "Old")

	rec := s.do(t, http.MethodPatch, "/api/boards/"+created.Board.ID, alice, map[string]any{"title": "New", "color": "bg-red-500"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	var v boardView
	decode(t, rec, &v)
	if v.Title != "New" || v.Color != "bg-red-500" || v.Mode != "viewing" {
		t.Fatalf("unexpected view: %+v", v)
	}

	rec = s.do(t, http.MethodPatch, "/api/boards/"+created.Board.ID, alice, map[string]any{"title": ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank title: status %d", rec.Code)
	}
	rec = s.do(t, http.MethodPatch, "/api/boards/"+created.Board.ID, alice, map[string]any{"title": "New", "color": "#ff00ff"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("off-palette color: status %d", rec.Code)
	}
}

func TestCreateColumnAndTasks(t *testing.T) {
	s := newTestServer(t)
	alice := s.token(t, "alice")
	created := s.createBoard(t, alice, "Work")
	base := "/api/boards/" + created.Board.ID

	rec := s.do(t, http.MethodPost, base+"/columns", alice, map[string]any{"title": "Blocked"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create column: status %d body %s", rec.Code, rec.Body.String())
	}
	var col database.Column
	decode(t, rec, &col)
	if col.SortOrder != 3 || col.BoardID != created.Board.ID {
		t.Fatalf("unexpected column: %+v", col)
	}

	rec = s.do(t, http.MethodPost, base+"/tasks", alice, map[string]any{"title": "Write plan"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task: status %d body %s", rec.Code, rec.Body.String())
	}
	var task database.Task
	decode(t, rec, &task)
	if task.Priority != database.PriorityMedium || task.ColumnID != created.Columns[0].ID {
		t.Fatalf("unexpected task: %+v", task)
	}

	form := url.Values{
		"title":    {"Fix login"},
		"priority": {"high"},
		"assignee": {"Sam"},
		"dueDate":  {"2024-09-01"},
		"columnId": {col.ID},
	}
	req := httptest.NewRequest(http.MethodPost, base+"/tasks", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+alice)
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("form task: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, base+"/tasks", alice, map[string]any{"title": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank task: status %d", rec.Code)
	}
	rec = s.do(t, http.MethodPost, base+"/tasks", alice, map[string]any{"title": "x", "priority": "urgent"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad priority: status %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, base, alice, nil)
	var v boardView
	decode(t, rec, &v)
	if v.TotalTasks != 2 || len(v.Columns) != 4 || v.Columns[3].TaskTitles[0] != "Fix login" {
		t.Fatalf("unexpected board view: %+v", v)
	}

	rec = s.do(t, http.MethodGet, base+"?priority=high&assignee=sam&due_from=2024-09-01&due_to=2024-09-30", alice, nil)
	decode(t, rec, &v)
	if v.TotalTasks != 1 || v.FilterCount != 3 {
		t.Fatalf("unexpected filtered view: %+v", v)
	}

	rec = s.do(t, http.MethodGet, base+"?due_from=tomorrow", alice, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad due_from: status %d", rec.Code)
	}
}

func TestLoginHidesMagicLinkOutsideDevMode(t *testing.T) {
	s := newTestServerMode(t, false)

	rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "victim@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := resp["magicLink"]; ok || strings.Contains(rec.Body.String(), "token=") {
		t.Fatalf("login response leaked the magic link: %s", rec.Body.String())
	}
	if resp["status"] != "success" {
		t.Fatalf("unexpected response: %v", resp)
	}
}

func TestMagicLinkLogin(t *testing.T) {
	s := newTestServerMode(t, true)

	rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "pat@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d", rec.Code)
	}
	var resp struct {
		MagicLink string `json:"magicLink"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	link, err := url.Parse(resp.MagicLink)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}

	rec = s.do(t, http.MethodGet, link.RequestURI(), "", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("redeem: status %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	session := loc.Query().Get("token")

	rec = s.do(t, http.MethodGet, "/api/auth/verify", session, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "pat@example.com") {
		t.Fatalf("verify: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, link.RequestURI(), "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second redeem: status %d", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nope"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad email: status %d", rec.Code)
	}
}
