package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/testutil"
	"github.com/starford/jera/internal/todostore"
)

// testEnv sets up a temp content dir, SQLite DB, store and router.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) (*todostore.Store, http.Handler) {
	t.Helper()
	return testEnvWithSSE(t, authToken, nil)
}

func testEnvWithSSE(t *testing.T, authToken string, sse http.Handler) (*todostore.Store, http.Handler) {
	t.Helper()
	store := testutil.TestStore(t, testutil.TestDB(t), testutil.TestContent(t))
	return store, NewRouter(store, authToken != "", authToken, sse, nil)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T: %v (body %s)", v, err, w.Body.String())
	}
	return v
}

func createTodo(t *testing.T, h http.Handler, id, title, tag string) {
	t.Helper()
	req := map[string]any{"id": id, "title": title, "content": "body " + id}
	if tag != "" {
		req["tags"] = []string{tag}
	}
	if w := do(t, h, http.MethodPost, "/todos", req); w.Code != http.StatusCreated {
		t.Fatalf("create %s = %d, body = %s", id, w.Code, w.Body.String())
	}
}

func todoIDs(items []models.TodoItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestCreateAndGetTodo(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/todos", map[string]any{"title": "Buy milk", "content": "2L"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	created := decode[models.Todo](t, w)
	if created.ID == "" || created.Title != "Buy milk" {
		t.Fatalf("created = %+v", created)
	}

	w = do(t, router, http.MethodGet, "/todos/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	got := decode[models.Todo](t, w)
	if got.Content != "2L" {
		t.Errorf("content = %q, want 2L", got.Content)
	}
	if !reflect.DeepEqual(got.Tags, []string{models.NoTag}) {
		t.Errorf("tags = %v", got.Tags)
	}
}

func TestCreateTodo_Validation(t *testing.T) {
	_, router := testEnv(t, "")

	if w := do(t, router, http.MethodPost, "/todos", map[string]any{}); w.Code != http.StatusBadRequest {
		t.Errorf("empty create = %d, want 400", w.Code)
	}
	w := do(t, router, http.MethodPost, "/todos", map[string]any{"title": "x", "tags": []string{"nope"}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown tag = %d, want 400", w.Code)
	}
	req := httptest.NewRequest(http.MethodPost, "/todos", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad json = %d, want 400", rec.Code)
	}
}

func TestCreateTodo_Duplicate(t *testing.T) {
	_, router := testEnv(t, "")
	createTodo(t, router, "dup", "dup", "")
	w := do(t, router, http.MethodPost, "/todos", map[string]any{"id": "dup", "title": "again"})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", w.Code)
	}
}

func TestGetTodo_NotFound(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/todos/ghost", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing todo = %d, want 404", w.Code)
	}
}

func TestUpdateTodo(t *testing.T) {
	_, router := testEnv(t, "")
	createTodo(t, router, "a", "Old", "todo")

	w := do(t, router, http.MethodPatch, "/todos/a", map[string]any{"title": "New"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d, body = %s", w.Code, w.Body.String())
	}
	got := decode[models.Todo](t, w)
	if got.Title != "New" || got.Content != "body a" || !reflect.DeepEqual(got.Tags, []string{"todo"}) {
		t.Errorf("patched = %+v", got)
	}

	if w := do(t, router, http.MethodPatch, "/todos/ghost", map[string]any{"title": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("patch missing = %d, want 404", w.Code)
	}
}

func TestListTodos_Filter(t *testing.T) {
	store, router := testEnv(t, "")
	createTodo(t, router, "a", "A", "todo")
	createTodo(t, router, "b", "B", "done")

	w := do(t, router, http.MethodGet, "/todos?tag=done", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	resp := decode[TodoListResponse](t, w)
	if resp.Filter != "done" || !reflect.DeepEqual(todoIDs(resp.Todos), []string{"b"}) {
		t.Errorf("list = %+v", resp)
	}
	if store.Filter() != "done" {
		t.Errorf("store filter = %q", store.Filter())
	}

	// Without the tag parameter the active filter stays.
	resp = decode[TodoListResponse](t, do(t, router, http.MethodGet, "/todos", nil))
	if resp.Filter != "done" {
		t.Errorf("filter = %q, want done", resp.Filter)
	}

	if w := do(t, router, http.MethodGet, "/todos?tag=nope", nil); w.Code != http.StatusBadRequest {
		t.Errorf("unknown filter = %d, want 400", w.Code)
	}
}

func TestReorderTodos(t *testing.T) {
	_, router := testEnv(t, "")
	for _, id := range []string{"A", "B", "C"} {
		createTodo(t, router, id, id, "")
	}

	w := do(t, router, http.MethodPost, "/todos/reorder", map[string]any{"from": 0, "to": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("reorder = %d, body = %s", w.Code, w.Body.String())
	}
	if got := todoIDs(decode[TodoListResponse](t, w).Todos); !reflect.DeepEqual(got, []string{"B", "C", "A"}) {
		t.Errorf("order = %v, want [B C A]", got)
	}

	w = do(t, router, http.MethodPost, "/todos/reorder", map[string]any{"fromId": "A", "toId": "B"})
	if got := todoIDs(decode[TodoListResponse](t, w).Todos); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("order after id move = %v", got)
	}

	cases := []map[string]any{
		{},
		{"from": 0},
		{"from": 0, "to": 1, "fromId": "A"},
		{"fromId": "A"},
	}
	for _, body := range cases {
		if w := do(t, router, http.MethodPost, "/todos/reorder", body); w.Code != http.StatusBadRequest {
			t.Errorf("reorder %v = %d, want 400", body, w.Code)
		}
	}
	if w := do(t, router, http.MethodPost, "/todos/reorder", map[string]any{"from": 0, "to": 9}); w.Code != http.StatusBadRequest {
		t.Errorf("out of range = %d, want 400", w.Code)
	}
}

func TestSelectionAndDeleteSelected(t *testing.T) {
	_, router := testEnv(t, "")
	createTodo(t, router, "A", "A", "todo")
	createTodo(t, router, "B", "B", "done")
	createTodo(t, router, "C", "C", "todo")

	do(t, router, http.MethodGet, "/todos?tag=todo", nil)
	w := do(t, router, http.MethodPost, "/todos/selection", map[string]any{"status": true})
	if got := decode[SelectionResponse](t, w).Selected; !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Errorf("selected = %v, want [A C]", got)
	}

	w = do(t, router, http.MethodDelete, "/todos/selection", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete selected = %d, body = %s", w.Code, w.Body.String())
	}
	if res := decode[models.Result](t, w); !res.Status {
		t.Errorf("result = %+v", res)
	}

	resp := decode[TodoListResponse](t, do(t, router, http.MethodGet, "/todos?tag=*", nil))
	if got := todoIDs(resp.Todos); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("remaining = %v, want [B]", got)
	}
	if len(resp.Selected) != 0 {
		t.Errorf("selection = %v, want empty", resp.Selected)
	}

	w = do(t, router, http.MethodDelete, "/todos/selection", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty selection delete = %d, want 422", w.Code)
	}
}

func TestDeleteTodos(t *testing.T) {
	_, router := testEnv(t, "")
	createTodo(t, router, "A", "A", "")
	createTodo(t, router, "B", "B", "")

	if w := do(t, router, http.MethodDelete, "/todos", map[string]any{"ids": []string{"A", "ghost"}}); w.Code != http.StatusNotFound {
		t.Errorf("batch with unknown id = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/todos", map[string]any{"ids": []string{}}); w.Code != http.StatusBadRequest {
		t.Errorf("empty batch = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/todos", map[string]any{"ids": []string{"A"}}); w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/todos/A", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestDraftWorkflow(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPatch, "/draft", map[string]any{"title": "Buy milk", "content": "2L"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch draft = %d", w.Code)
	}
	if d := decode[models.TempTodo](t, w); d.Title != "Buy milk" || d.ID != "" {
		t.Errorf("draft = %+v", d)
	}

	w = do(t, router, http.MethodPost, "/draft/save", nil)
	if res := decode[models.Result](t, w); w.Code != http.StatusOK || !res.Status {
		t.Fatalf("save = %d %+v", w.Code, res)
	}
	d := decode[models.TempTodo](t, do(t, router, http.MethodGet, "/draft", nil))
	if d.ID == "" {
		t.Fatal("draft did not adopt the new id")
	}

	// Saving again updates the same todo.
	do(t, router, http.MethodPost, "/draft/save", nil)
	if n := len(decode[TodoListResponse](t, do(t, router, http.MethodGet, "/todos", nil)).Todos); n != 1 {
		t.Errorf("todos = %d, want 1", n)
	}

	w = do(t, router, http.MethodPost, "/draft/new", nil)
	if res := decode[models.Result](t, w); !res.Status {
		t.Errorf("new draft = %+v", res)
	}
	if d := decode[models.TempTodo](t, do(t, router, http.MethodGet, "/draft", nil)); d.ID != "" || d.Title != "" {
		t.Errorf("draft after new = %+v", d)
	}

	// Blank drafts are refused.
	if w := do(t, router, http.MethodPost, "/draft/save", nil); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("blank save = %d, want 422", w.Code)
	}
}

func TestOpenDraft(t *testing.T) {
	_, router := testEnv(t, "")
	createTodo(t, router, "A", "A", "todo")

	w := do(t, router, http.MethodPost, "/draft/open/A", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("open = %d, body = %s", w.Code, w.Body.String())
	}
	d := decode[models.TempTodo](t, do(t, router, http.MethodGet, "/draft", nil))
	if d.ID != "A" || d.Content != "body A" {
		t.Errorf("draft = %+v", d)
	}
	if w := do(t, router, http.MethodPost, "/draft/open/ghost", nil); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("open missing = %d, want 422", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/draft", nil); w.Code != http.StatusNoContent {
		t.Errorf("reset = %d, want 204", w.Code)
	}
}

func TestTagsAndBoard(t *testing.T) {
	_, router := testEnv(t, "")

	tags := decode[TagsResponse](t, do(t, router, http.MethodGet, "/tags?selectable=true", nil)).Tags
	for _, tag := range tags {
		if tag.ID == models.NoTag {
			t.Error("selectable tags include NoTag")
		}
	}

	w := do(t, router, http.MethodPost, "/tags/reorder", map[string]any{"fromId": "done", "toId": "todo"})
	if w.Code != http.StatusOK {
		t.Fatalf("reorder tags = %d, body = %s", w.Code, w.Body.String())
	}
	var ids []string
	for _, tag := range decode[TagsResponse](t, w).Tags {
		ids = append(ids, tag.ID)
	}
	if want := []string{models.NoTag, "done", "todo", "doing"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("tags = %v, want %v", ids, want)
	}

	w = do(t, router, http.MethodPost, "/board/items", map[string]any{"title": "Ship it", "tags": []string{"doing"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("save item = %d, body = %s", w.Code, w.Body.String())
	}
	if w := do(t, router, http.MethodPost, "/board/items", map[string]any{"title": ""}); w.Code != http.StatusBadRequest {
		t.Errorf("blank item = %d, want 400", w.Code)
	}

	board := decode[BoardResponse](t, do(t, router, http.MethodGet, "/board", nil))
	found := false
	for _, col := range board.Columns {
		if col.Tag.ID == "doing" && len(col.Items) == 1 && col.Items[0].Title == "Ship it" {
			found = true
		}
	}
	if !found {
		t.Errorf("board = %+v", board.Columns)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	createTodo(t, router, "milk", "Groceries", "")

	w := do(t, router, http.MethodGet, "/search?q=milk", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d", w.Code)
	}
	results := decode[SearchResponse](t, w).Results
	if len(results) != 1 || results[0].ID != "milk" {
		t.Errorf("results = %+v", results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("missing q = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	body, _ := json.Marshal(map[string]string{"title": "auth"})
	req := httptest.NewRequest(http.MethodPost, "/todos", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("authed create = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	if w := do(t, router, http.MethodGet, "/todos", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/todos", nil); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	sse := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	_, router := testEnvWithSSE(t, "tok", sse)

	if w := do(t, router, http.MethodGet, "/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with token = %d, want 200", w.Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	_, router := testEnv(t, "")
	h := CORSMiddleware([]string{"http://app.example"})(router)

	req := httptest.NewRequest(http.MethodOptions, "/todos", nil)
	req.Header.Set("Origin", "http://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://app.example" {
		t.Errorf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin allowed: %q", got)
	}
}

func TestMCPEndpoint_AuthProtected(t *testing.T) {
	mcp := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) })
	store := testutil.TestStore(t, testutil.TestDB(t), testutil.TestContent(t))
	router := NewRouter(store, true, "tok", nil, mcp)

	if w := do(t, router, http.MethodPost, "/mcp", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("mcp no auth = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusAccepted {
		t.Errorf("mcp authed = %d, want 202", w.Code)
	}
}
