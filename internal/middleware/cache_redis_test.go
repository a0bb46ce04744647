package middleware

import (
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strconv"
    "strings"
    "sync"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/todo-list-api/internal/config"
)

// listStore is an in-memory per-user list served through the cache.
type listStore struct {
    mu    sync.Mutex
    items map[uint64][]string
    reads int
    // afterRead runs inside GET once the list has been read, before the
    // response is written.
    afterRead func()
}

func (s *listStore) snapshot(uid uint64) []string {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.reads++
    return append([]string{}, s.items[uid]...)
}

func (s *listStore) add(uid uint64, text string) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.items[uid] = append(s.items[uid], text)
}

func (s *listStore) readCount() int {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.reads
}

// newCachedApp serves /todos behind NewTodoListCache. The caller's id comes
// from the X-User header in place of a verified token.
func newCachedApp(t *testing.T) (*echo.Echo, *listStore) {
    t.Helper()
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = rdb.Close() })

    store := &listStore{items: map[uint64][]string{}}
    identity := func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if id, err := strconv.ParseUint(c.Request().Header.Get("X-User"), 10, 64); err == nil {
                c.Set(CtxUserID, id)
            }
            return next(c)
        }
    }
    cfg := config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "todos", MaxBodyBytes: 1 << 20}

    e := echo.New()
    g := e.Group("/todos", identity, NewTodoListCache(cfg, rdb))
    g.GET("", func(c echo.Context) error {
        uid, _ := UserID(c)
        list := store.snapshot(uid)
        if store.afterRead != nil {
            store.afterRead()
        }
        return c.JSON(http.StatusOK, list)
    })
    g.POST("", func(c echo.Context) error {
        uid, _ := UserID(c)
        var req struct {
            Text string `json:"text"`
        }
        if err := c.Bind(&req); err != nil || req.Text == "" {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "text is required"})
        }
        store.add(uid, req.Text)
        return c.JSON(http.StatusOK, echo.Map{"text": req.Text})
    })
    g.DELETE("/:id", func(c echo.Context) error {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "todo not found"})
    })
    return e, store
}

func serve(e *echo.Echo, method, path string, uid uint64, body string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(method, path, strings.NewReader(body))
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    req.Header.Set("X-User", strconv.FormatUint(uid, 10))
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func getList(t *testing.T, e *echo.Echo, uid uint64) ([]string, string) {
    t.Helper()
    rec := serve(e, http.MethodGet, "/todos", uid, "")
    if rec.Code != http.StatusOK {
        t.Fatalf("GET status = %d, body %s", rec.Code, rec.Body.String())
    }
    var list []string
    if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
        t.Fatalf("decode %q: %v", rec.Body.String(), err)
    }
    return list, rec.Header().Get("X-Cache")
}

func addTodo(t *testing.T, e *echo.Echo, uid uint64, text string) {
    t.Helper()
    if rec := serve(e, http.MethodPost, "/todos", uid, `{"text":"`+text+`"}`); rec.Code != http.StatusOK {
        t.Fatalf("POST status = %d, body %s", rec.Code, rec.Body.String())
    }
}

func TestTodoListCacheMissThenHit(t *testing.T) {
    e, store := newCachedApp(t)
    store.add(1, "milk")

    list, state := getList(t, e, 1)
    if state != "MISS" || len(list) != 1 {
        t.Fatalf("first GET: %v %s", list, state)
    }
    list, state = getList(t, e, 1)
    if state != "HIT" || len(list) != 1 || list[0] != "milk" {
        t.Fatalf("second GET: %v %s", list, state)
    }
    if n := store.readCount(); n != 1 {
        t.Errorf("store reads = %d, want 1", n)
    }
}

func TestTodoListCacheSuccessfulWriteEvicts(t *testing.T) {
    e, _ := newCachedApp(t)
    getList(t, e, 1)
    addTodo(t, e, 1, "bread")

    list, state := getList(t, e, 1)
    if state != "MISS" || len(list) != 1 || list[0] != "bread" {
        t.Fatalf("GET after write: %v %s", list, state)
    }
}

func TestTodoListCacheFailedWriteKeepsEntry(t *testing.T) {
    e, _ := newCachedApp(t)
    getList(t, e, 1)

    if rec := serve(e, http.MethodDelete, "/todos/9", 1, ""); rec.Code != http.StatusNotFound {
        t.Fatalf("DELETE status = %d", rec.Code)
    }
    if rec := serve(e, http.MethodPost, "/todos", 1, `{"text":""}`); rec.Code != http.StatusBadRequest {
        t.Fatalf("POST status = %d", rec.Code)
    }
    if _, state := getList(t, e, 1); state != "HIT" {
        t.Fatalf("GET after failed writes: X-Cache = %s, want HIT", state)
    }
}

func TestTodoListCacheIsPerUser(t *testing.T) {
    e, store := newCachedApp(t)
    store.add(1, "alice's")
    store.add(2, "bob's")

    getList(t, e, 1)
    list, state := getList(t, e, 2)
    if state != "MISS" || len(list) != 1 || list[0] != "bob's" {
        t.Fatalf("user 2 GET: %v %s", list, state)
    }

    // A write by user 2 leaves user 1's entry alone.
    addTodo(t, e, 2, "more")
    if list, state := getList(t, e, 1); state != "HIT" || len(list) != 1 || list[0] != "alice's" {
        t.Fatalf("user 1 GET: %v %s", list, state)
    }
}

func TestTodoListCacheWriteDuringReadIsNotLost(t *testing.T) {
    e, store := newCachedApp(t)
    store.add(1, "old")

    // The write commits and finishes after the GET has read the list but
    // before the GET stores its snapshot.
    store.afterRead = func() {
        store.afterRead = nil
        addTodo(t, e, 1, "new")
    }
    if list, _ := getList(t, e, 1); len(list) != 1 {
        t.Fatalf("interleaved GET: %v", list)
    }

    list, state := getList(t, e, 1)
    if len(list) != 2 || list[1] != "new" {
        t.Fatalf("stale list served after committed write: %v (X-Cache %s)", list, state)
    }
}
