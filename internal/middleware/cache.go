package middleware

import (
    "bytes"
    "context"
    "encoding/binary"
    "encoding/json"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/todo-list-api/internal/config"
)

// captureWriter forwards the response to the client and keeps a copy of up
// to limit bytes of the body (no limit when limit <= 0).
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    keep := int64(len(b))
    if cw.limit > 0 {
        keep = max(0, min(keep, cw.limit-cw.size))
    }
    cw.buf.Write(b[:keep])
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// listGenKey holds a per-user generation counter. Every successful write
// increments it, which retires all list snapshots taken before the write.
func listGenKey(cfg config.CacheConfig, userID uint64) string {
    return strings.Join([]string{cfg.Prefix, "user", strconv.FormatUint(userID, 10), "gen"}, ":")
}

// listCacheKey is the key of a user's cached todo list at generation gen.
// Keying on the verified user id keeps one user's list from ever being
// served to another.
func listCacheKey(cfg config.CacheConfig, userID uint64, gen int64) string {
    return strings.Join([]string{cfg.Prefix, "user", strconv.FormatUint(userID, 10), "list", strconv.FormatInt(gen, 10)}, ":")
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    total := 4 + 4 + len(hdrJSON) + len(body)
    out := make([]byte, total)
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:8+len(hdrJSON)], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    hdr := make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &hdr); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, hdr, bs[8+hlen:], true
}

// NewTodoListCache caches GET responses of the todo collection per user in
// Redis.  Snapshots are stored under the generation read before the handler
// ran; a successful write bumps the generation, so a list read before that
// write can never be served after it.  It must run after JWTAuth.  Redis
// failures fall through to the handler.
func NewTodoListCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    maxBody := int64(cfg.MaxBodyBytes)
    // Outlives every snapshot, so an expired counter never revives one.
    genTTL := max(24*time.Hour, 2*cfg.TTL)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            uid, ok := UserID(c)
            if !ok {
                return next(c)
            }
            genKey := listGenKey(cfg, uid)
            ctx := c.Request().Context()

            if c.Request().Method != http.MethodGet {
                if err := next(c); err != nil {
                    return err
                }
                if s := c.Response().Status; s >= 200 && s < 300 {
                    bg := context.WithoutCancel(ctx)
                    pipe := rdb.TxPipeline()
                    pipe.Incr(bg, genKey)
                    pipe.Expire(bg, genKey, genTTL)
                    if _, err := pipe.Exec(bg); err != nil {
                        c.Logger().Warnf("todo cache: bump %s: %v", genKey, err)
                    }
                }
                return nil
            }

            gen, err := rdb.Get(ctx, genKey).Int64()
            if err != nil && !errors.Is(err, redis.Nil) {
                c.Logger().Warnf("todo cache: read %s: %v", genKey, err)
                return next(c)
            }
            key := listCacheKey(cfg, uid, gen)

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, body, ok := decodePayload(bs); ok {
                    for k, vals := range hdr {
                        // Content-Length is recomputed by the server.
                        if strings.EqualFold(k, echo.HeaderContentLength) {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(status, c.Response().Header().Get(echo.HeaderContentType), body)
                }
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            // Truncated bodies are not cached.
            if cw.status == http.StatusOK && (maxBody <= 0 || cw.size <= maxBody) {
                hdr := c.Response().Header().Clone()
                hdr.Del("X-Cache")
                if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
                    _ = rdb.SetEx(context.WithoutCancel(ctx), key, payload, cfg.TTL).Err()
                }
            }
            return nil
        }
    }
}
