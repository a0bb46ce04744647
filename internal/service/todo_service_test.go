package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/iliyamo/todo-list-api/internal/model"
	q "github.com/iliyamo/todo-list-api/internal/queue"
	"github.com/iliyamo/todo-list-api/internal/repository"
)

type mockTodoStore struct {
	listFn   func(ctx context.Context, ownerID uint64) ([]model.Todo, error)
	createFn func(ctx context.Context, ownerID uint64, text string) (model.Todo, error)
	updateFn func(ctx context.Context, id, ownerID uint64, completed bool) error
	deleteFn func(ctx context.Context, id, ownerID uint64) error
}

func (m *mockTodoStore) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Todo, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerID)
	}
	return []model.Todo{}, nil
}

func (m *mockTodoStore) Create(ctx context.Context, ownerID uint64, text string) (model.Todo, error) {
	if m.createFn != nil {
		return m.createFn(ctx, ownerID, text)
	}
	return model.Todo{ID: 1, OwnerID: ownerID, Text: text}, nil
}

func (m *mockTodoStore) UpdateCompleted(ctx context.Context, id, ownerID uint64, completed bool) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, ownerID, completed)
	}
	return nil
}

func (m *mockTodoStore) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, ownerID)
	}
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []q.TodoEvent
}

func (r *recordingPublisher) Publish(_ context.Context, ev q.TodoEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func TestCreateValidatesText(t *testing.T) {
	svc := NewTodoService(&mockTodoStore{}, nil)
	for _, text := range []string{"", "   ", strings.Repeat("é", MaxTodoTextLen+1)} {
		if _, err := svc.Create(context.Background(), 1, text); !errors.Is(err, ErrValidation) {
			t.Errorf("Create(%.10q) err = %v, want ErrValidation", text, err)
		}
	}
	if _, err := svc.Create(context.Background(), 1, strings.Repeat("é", MaxTodoTextLen)); err != nil {
		t.Errorf("Create at limit: %v", err)
	}
}

func TestCreatePublishesEvent(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewTodoService(&mockTodoStore{}, pub)

	got, err := svc.Create(context.Background(), 9, "  Buy milk ")
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "Buy milk" || got.Completed {
		t.Fatalf("created = %+v", got)
	}
	if len(pub.events) != 1 {
		t.Fatalf("events = %d, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.Type != q.TodoCreated || ev.UserID != 9 || ev.Text != "Buy milk" || ev.OccurredAt == "" {
		t.Errorf("event = %+v", ev)
	}
}

func TestMutationsClassifyErrors(t *testing.T) {
	boom := errors.New("disk full")
	cases := []struct {
		name  string
		store error
		want  error
	}{
		{"not found", repository.ErrTodoNotFound, ErrNotFound},
		{"storage", boom, ErrStorage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pub := &recordingPublisher{}
			store := &mockTodoStore{
				updateFn: func(context.Context, uint64, uint64, bool) error { return tc.store },
				deleteFn: func(context.Context, uint64, uint64) error { return tc.store },
			}
			svc := NewTodoService(store, pub)
			if err := svc.SetCompleted(context.Background(), 1, 2, true); !errors.Is(err, tc.want) {
				t.Errorf("SetCompleted err = %v, want %v", err, tc.want)
			}
			if err := svc.Delete(context.Background(), 1, 2); !errors.Is(err, tc.want) {
				t.Errorf("Delete err = %v, want %v", err, tc.want)
			}
			if len(pub.events) != 0 {
				t.Errorf("failed mutations published %d events", len(pub.events))
			}
		})
	}
}

func TestListPassesOwnerAndWrapsErrors(t *testing.T) {
	var seen uint64
	store := &mockTodoStore{listFn: func(_ context.Context, ownerID uint64) ([]model.Todo, error) {
		seen = ownerID
		return nil, errors.New("timeout")
	}}
	svc := NewTodoService(store, nil)
	if _, err := svc.List(context.Background(), 42); !errors.Is(err, ErrStorage) {
		t.Fatalf("err = %v, want ErrStorage", err)
	}
	if seen != 42 {
		t.Errorf("owner = %d, want 42", seen)
	}
}

func TestSetCompletedAndDeletePublish(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewTodoService(&mockTodoStore{}, pub)
	if err := svc.SetCompleted(context.Background(), 3, 4, true); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(context.Background(), 3, 4); err != nil {
		t.Fatal(err)
	}
	if len(pub.events) != 2 || pub.events[0].Type != q.TodoUpdated || !pub.events[0].Completed || pub.events[1].Type != q.TodoDeleted {
		t.Fatalf("events = %+v", pub.events)
	}
}

func TestCreateForRemovedOwnerIsUnauthenticated(t *testing.T) {
	pub := &recordingPublisher{}
	store := &mockTodoStore{createFn: func(context.Context, uint64, string) (model.Todo, error) {
		return model.Todo{}, repository.ErrOwnerNotFound
	}}
	svc := NewTodoService(store, pub)
	if _, err := svc.Create(context.Background(), 77, "orphan"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("failed create published %d events", len(pub.events))
	}
}
