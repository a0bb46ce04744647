package middleware

// identity.go provides the accessor handlers and other middleware use to
// read the caller identity stored by JWTAuth.

import "github.com/labstack/echo/v4"

// UserID returns the authenticated user id. ok is false when JWTAuth did
// not run or stored nothing usable.
func UserID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(CtxUserID).(uint64)
    return id, ok && id != 0
}
