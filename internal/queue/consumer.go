// Package queue contains the background consumer that listens to the todo
// activity queue and appends one line per event to an activity log file.
package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    "github.com/labstack/gommon/log"
    amqp "github.com/rabbitmq/amqp091-go"
)

// ActivityConsumer reads TodoEvents from a durable queue and writes them to
// LogPath.
type ActivityConsumer struct {
    URL     string
    Queue   string
    LogPath string
    Logger  *log.Logger
}

// Run connects to the broker and consumes until ctx is cancelled. It keeps
// reconnecting with backoff; a message that cannot be handled is rejected
// without requeue so the consumer keeps operating.
func (c *ActivityConsumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.Logger.Warnj(log.JSON{"message": "activity consumer: dial failed", "error": err.Error(), "retry_in": backoff.String()})
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.Logger.Warnj(log.JSON{"message": "activity consumer: loop ended, reconnecting", "error": fmt.Sprint(err)})
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *ActivityConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Logger.Warnf("activity consumer: set QoS failed: %v", err)
    }

    if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.ConsumeWithContext(ctx, c.Queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := c.HandleMessage(d.Body); err != nil {
            c.Logger.Errorj(log.JSON{"message": "activity consumer: handle message failed", "error": err.Error()})
            _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

// HandleMessage decodes one event and appends it to the activity log.
func (c *ActivityConsumer) HandleMessage(body []byte) error {
    var ev TodoEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" || ev.TodoID == 0 || ev.UserID == 0 {
        return fmt.Errorf("incomplete event: %+v", ev)
    }
    if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
        return fmt.Errorf("mkdir log dir: %w", err)
    }
    f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatEvent(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatEvent renders the single-line activity log entry for ev. The todo
// text is quoted so embedded newlines cannot forge extra entries.
func FormatEvent(ev TodoEvent) string {
    return fmt.Sprintf("[%s] %s | todo_id=%d | user_id=%d | completed=%t | text=%q\n",
        ev.OccurredAt, ev.Type, ev.TodoID, ev.UserID, ev.Completed, ev.Text)
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
