package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/todo-list-api/internal/model"
	q "github.com/iliyamo/todo-list-api/internal/queue"
	"github.com/iliyamo/todo-list-api/internal/repository"
)

// MaxTodoTextLen bounds the text of a single todo in characters.
const MaxTodoTextLen = 1000

const publishTimeout = 2 * time.Second

// TodoStore is the owner-scoped persistence the todo service needs.
type TodoStore interface {
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Todo, error)
	Create(ctx context.Context, ownerID uint64, text string) (model.Todo, error)
	UpdateCompleted(ctx context.Context, id, ownerID uint64, completed bool) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error
}

// TodoService applies validation and error classification on top of the
// todo store and announces every successful mutation.
type TodoService struct {
	todos  TodoStore
	events EventPublisher
	now    func() time.Time
}

// NewTodoService wires the service. A nil publisher disables events.
func NewTodoService(todos TodoStore, events EventPublisher) *TodoService {
	if events == nil {
		events = NopPublisher{}
	}
	return &TodoService{todos: todos, events: events, now: time.Now}
}

// List returns the owner's todos; an owner without todos gets an empty slice.
func (s *TodoService) List(ctx context.Context, ownerID uint64) ([]model.Todo, error) {
	todos, err := s.todos.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: list todos: %w", ErrStorage, err)
	}
	return todos, nil
}

// Create stores a new, incomplete todo. Blank text is rejected.
func (s *TodoService) Create(ctx context.Context, ownerID uint64, text string) (model.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Todo{}, fmt.Errorf("%w: text is required", ErrValidation)
	}
	if utf8.RuneCountInString(text) > MaxTodoTextLen {
		return model.Todo{}, fmt.Errorf("%w: text exceeds %d characters", ErrValidation, MaxTodoTextLen)
	}
	t, err := s.todos.Create(ctx, ownerID, text)
	if err != nil {
		return model.Todo{}, classify("create todo", err)
	}
	s.emit(ctx, q.TodoCreated, t)
	return t, nil
}

// SetCompleted updates the completed flag of one of the owner's todos.
func (s *TodoService) SetCompleted(ctx context.Context, id, ownerID uint64, completed bool) error {
	if err := s.todos.UpdateCompleted(ctx, id, ownerID, completed); err != nil {
		return classify("update todo", err)
	}
	s.emit(ctx, q.TodoUpdated, model.Todo{ID: id, OwnerID: ownerID, Completed: completed})
	return nil
}

// Delete removes one of the owner's todos.
func (s *TodoService) Delete(ctx context.Context, id, ownerID uint64) error {
	if err := s.todos.DeleteByIDAndOwner(ctx, id, ownerID); err != nil {
		return classify("delete todo", err)
	}
	s.emit(ctx, q.TodoDeleted, model.Todo{ID: id, OwnerID: ownerID})
	return nil
}

func classify(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrTodoNotFound):
		return fmt.Errorf("%w: %s: %w", ErrNotFound, op, err)
	case errors.Is(err, repository.ErrOwnerNotFound):
		// A valid token for a user that has since been removed.
		return fmt.Errorf("%w: %s: %w", ErrUnauthenticated, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// emit publishes with its own deadline, detached from the request's.
func (s *TodoService) emit(ctx context.Context, kind string, t model.Todo) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	s.events.Publish(ctx, q.TodoEvent{
		Type:       kind,
		TodoID:     t.ID,
		UserID:     t.OwnerID,
		Text:       t.Text,
		Completed:  t.Completed,
		OccurredAt: s.now().UTC().Format(time.RFC3339),
	})
}
