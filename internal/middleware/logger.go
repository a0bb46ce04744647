package middleware

import (
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/labstack/gommon/log"
)

// RequestLogger logs one structured entry per request.  Headers and bodies
// are never logged, so tokens and passwords stay out of the log.
func RequestLogger(logger *log.Logger) echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:    true,
        LogURIPath:   true,
        LogStatus:    true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogRequestID: true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            entry := log.JSON{
                "message":    "request",
                "method":     v.Method,
                "path":       v.URIPath,
                "status":     v.Status,
                "latency_ms": v.Latency.Milliseconds(),
                "remote_ip":  v.RemoteIP,
            }
            if v.RequestID != "" {
                entry["request_id"] = v.RequestID
            }
            if uid, ok := UserID(c); ok {
                entry["user_id"] = uid
            }
            switch {
            case v.Status >= 500:
                logger.Errorj(entry)
            case v.Status >= 400:
                logger.Warnj(entry)
            default:
                logger.Infoj(entry)
            }
            return nil
        },
    })
}
