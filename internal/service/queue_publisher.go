package service

import (
    "context"
    "encoding/json"
    "time"

    "github.com/labstack/gommon/log"
    amqp "github.com/rabbitmq/amqp091-go"

    q "github.com/iliyamo/todo-list-api/internal/queue"
)

// EventPublisher delivers todo activity events. Implementations must not
// block a request for long; failures are logged and dropped.
type EventPublisher interface {
    Publish(ctx context.Context, event q.TodoEvent)
}

// NopPublisher discards events. It is used when publishing is disabled.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(context.Context, q.TodoEvent) {}

// AMQPPublisher publishes TodoEvents to a durable RabbitMQ queue. A fresh
// connection is dialed per message.
type AMQPPublisher struct {
    URL    string
    Queue  string
    Logger *log.Logger
}

// NewAMQPPublisher constructs a publisher for the given broker and queue.
func NewAMQPPublisher(url, queue string, logger *log.Logger) *AMQPPublisher {
    return &AMQPPublisher{URL: url, Queue: queue, Logger: logger}
}

// Publish sends the event as a persistent JSON message within ctx's
// deadline. Any error is logged and swallowed so the caller's request is
// unaffected.
func (p *AMQPPublisher) Publish(ctx context.Context, event q.TodoEvent) {
    if err := p.publish(ctx, event); err != nil {
        p.Logger.Warnj(log.JSON{
            "message": "publish todo event failed",
            "type":    event.Type,
            "todo_id": event.TodoID,
            "error":   err.Error(),
        })
    }
}

func (p *AMQPPublisher) publish(ctx context.Context, event q.TodoEvent) error {
    // The TCP dial and the AMQP handshake share the caller's deadline.
    timeout := publishTimeout
    if deadline, ok := ctx.Deadline(); ok {
        timeout = time.Until(deadline)
    }
    if timeout <= 0 {
        return context.DeadlineExceeded
    }
    conn, err := amqp.DialConfig(p.URL, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(timeout),
    })
    if err != nil {
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        p.Queue, // name
        true,    // durable
        false,   // autoDelete
        false,   // exclusive
        false,   // noWait
        nil,     // args
    ); err != nil {
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        return err
    }

    return ch.PublishWithContext(ctx,
        "",      // default exchange
        p.Queue, // routing key = queue name
        false,   // mandatory
        false,   // immediate
        amqp.Publishing{
            ContentType:  "application/json",
            DeliveryMode: amqp.Persistent, // store on disk
            Timestamp:    time.Now().UTC(),
            Body:         body,
        },
    )
}
