// Package queue defines message payloads exchanged over the message broker.
package queue

// Activity event types.
const (
    TodoCreated = "todo.created"
    TodoUpdated = "todo.updated"
    TodoDeleted = "todo.deleted"
)

// TodoEvent is published after a todo is created, updated or deleted.
// It carries enough for downstream consumers to write an audit trail
// without querying the primary database.
type TodoEvent struct {
    Type       string `json:"type"`
    TodoID     uint64 `json:"todo_id"`
    UserID     uint64 `json:"user_id"`
    Text       string `json:"text,omitempty"`
    Completed  bool   `json:"completed"`
    OccurredAt string `json:"occurred_at"`
}
