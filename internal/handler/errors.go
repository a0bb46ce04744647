package handler

import (
    "errors"   // errors.Is classifies service failures
    "net/http" // status code constants

    "github.com/labstack/echo/v4"     // echo provides request/response handling
    "github.com/labstack/gommon/log" // structured log fields

    "github.com/iliyamo/todo-list-api/internal/service" // service error taxonomy
)

// respondError maps a service error onto a status code and a JSON body.
// Storage and unexpected failures are logged with their details while the
// client only sees a generic message.
func respondError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, service.ErrValidation):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": publicMessage(err)})
    case errors.Is(err, service.ErrConflict):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "username already exists"})
    case errors.Is(err, service.ErrInvalidCredentials):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid credentials"})
    case errors.Is(err, service.ErrUnauthenticated):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    case errors.Is(err, service.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "todo not found"})
    default:
        c.Logger().Errorj(log.JSON{
            "message": "request failed",
            "method":  c.Request().Method,
            "path":    c.Path(),
            "error":   err.Error(),
        })
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
    }
}

// publicMessage strips the sentinel prefix from a validation error, leaving
// the human readable reason ("text is required").
func publicMessage(err error) string {
    msg := err.Error()
    prefix := service.ErrValidation.Error() + ": "
    if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
        return msg[len(prefix):]
    }
    return msg
}
