// Package handler defines HTTP handlers for the todo API. Every todo
// handler runs behind JWTAuth and scopes its service call to the verified
// caller; the owner id never comes from the request body or path.
package handler

import (
    "context"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/todo-list-api/internal/middleware"
    "github.com/iliyamo/todo-list-api/internal/model"
)

// Todos is the part of the todo service the handlers call.
type Todos interface {
    List(ctx context.Context, ownerID uint64) ([]model.Todo, error)
    Create(ctx context.Context, ownerID uint64, text string) (model.Todo, error)
    SetCompleted(ctx context.Context, id, ownerID uint64, completed bool) error
    Delete(ctx context.Context, id, ownerID uint64) error
}

// TodoHandler serves /api/todos.
type TodoHandler struct {
    Todos   Todos
    Timeout time.Duration
}

func NewTodoHandler(t Todos, timeout time.Duration) *TodoHandler {
    return &TodoHandler{Todos: t, Timeout: timeout}
}

type todoResp struct {
    ID        uint64 `json:"id"`
    Text      string `json:"text"`
    Completed bool   `json:"completed"`
}

type createTodoReq struct {
    Text string `json:"text"`
}

type updateTodoReq struct {
    Completed *bool `json:"completed"`
}

func toResp(t model.Todo) todoResp {
    return todoResp{ID: t.ID, Text: t.Text, Completed: t.Completed}
}

// List handles GET /api/todos.
func (h *TodoHandler) List(c echo.Context) error {
    ownerID, ok := middleware.UserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
    defer cancel()

    todos, err := h.Todos.List(ctx, ownerID)
    if err != nil {
        return respondError(c, err)
    }
    out := make([]todoResp, 0, len(todos))
    for _, t := range todos {
        out = append(out, toResp(t))
    }
    return c.JSON(http.StatusOK, out)
}

// Create handles POST /api/todos.
func (h *TodoHandler) Create(c echo.Context) error {
    ownerID, ok := middleware.UserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createTodoReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
    defer cancel()

    t, err := h.Todos.Create(ctx, ownerID, req.Text)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, toResp(t))
}

// Update handles PATCH /api/todos/:id. Only the completed flag can change.
func (h *TodoHandler) Update(c echo.Context) error {
    ownerID, ok := middleware.UserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req updateTodoReq
    if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Completed == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "completed is required"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
    defer cancel()

    if err := h.Todos.SetCompleted(ctx, id, ownerID, *req.Completed); err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"id": id, "completed": *req.Completed})
}

// Delete handles DELETE /api/todos/:id.
func (h *TodoHandler) Delete(c echo.Context) error {
    ownerID, ok := middleware.UserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
    defer cancel()

    if err := h.Todos.Delete(ctx, id, ownerID); err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"id": id, "deleted": true})
}
