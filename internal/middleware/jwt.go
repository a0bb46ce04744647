package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/todo-list-api/internal/utils" // token identity type
)

// Context keys set by JWTAuth.
const (
    CtxUserID   = "user_id"
    CtxUsername = "username"
)

// TokenVerifier validates a raw bearer token.  It never errors: a failed
// verification simply reports ok=false.
type TokenVerifier interface {
    Verify(raw string) (utils.Identity, bool)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the verified user id and username into the request context.
// Requests without a valid token are answered with 401 and never reach the
// wrapped handler.
func JWTAuth(v TokenVerifier) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            id, ok := v.Verify(raw)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            c.Set(CtxUserID, id.UserID)
            c.Set(CtxUsername, id.Username)
            return next(c)
        }
    }
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header.  The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
    const prefix = "bearer "
    if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
        return "", false
    }
    raw := strings.TrimSpace(header[len(prefix):])
    return raw, raw != ""
}
