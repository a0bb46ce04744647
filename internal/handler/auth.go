package handler

import (
    "context"  // provides context with cancellation for DB calls
    "net/http" // HTTP status codes and primitives
    "time"     // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/todo-list-api/internal/model" // user record
    "github.com/iliyamo/todo-list-api/internal/utils" // access token type
)

// Authenticator is the part of the auth service the handlers call.
type Authenticator interface {
    Register(ctx context.Context, username, password string) (model.User, error)
    Authenticate(ctx context.Context, username, password string) (utils.AccessToken, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Auth    Authenticator
    Timeout time.Duration
}

func NewAuthHandler(a Authenticator, timeout time.Duration) *AuthHandler {
    return &AuthHandler{Auth: a, Timeout: timeout}
}

// ----- DTOs -----

type credentialsReq struct {
    Username string `json:"username"`
    Password string `json:"password"`
}

type userResp struct {
    ID       uint64 `json:"id"`
    Username string `json:"username"`
}

type tokenResp struct {
    Token string `json:"token"`
}

// Register: create a user and return its public fields.
func (h *AuthHandler) Register(c echo.Context) error {
    var req credentialsReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
    defer cancel()

    u, err := h.Auth.Register(ctx, req.Username, req.Password)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, userResp{ID: u.ID, Username: u.Username})
}

// Login: verify credentials and return a signed access token.
func (h *AuthHandler) Login(c echo.Context) error {
    var req credentialsReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
    defer cancel()

    tok, err := h.Auth.Authenticate(ctx, req.Username, req.Password)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, tokenResp{Token: tok.Token})
}
