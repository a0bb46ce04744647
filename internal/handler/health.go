package handler // declare the package name; contains HTTP handlers

import (
    "context"      // bounds the database ping
    "database/sql" // the pinged connection pool
    "net/http"     // net/http provides status codes and response helpers
    "time"         // ping timeout

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health returns a health-check handler used by load balancers and
// monitoring systems.  It answers "ok" when the database responds to a
// ping and 503 otherwise.
func Health(db *sql.DB) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if err := db.PingContext(ctx); err != nil {
            c.Logger().Errorf("health: database ping failed: %v", err)
            return c.String(http.StatusServiceUnavailable, "database unavailable")
        }
        return c.String(http.StatusOK, "ok")
    }
}
