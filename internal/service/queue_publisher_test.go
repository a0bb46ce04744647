package service

import (
	"bytes"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/gommon/log"

	q "github.com/iliyamo/todo-list-api/internal/queue"
)

// silentBroker accepts TCP connections and never answers the AMQP
// handshake.
func silentBroker(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return "amqp://guest:guest@" + ln.Addr().String() + "/"
}

func TestAMQPPublisherHonoursDeadline(t *testing.T) {
	var logs bytes.Buffer
	logger := log.New("test")
	logger.SetOutput(&logs)
	pub := NewAMQPPublisher(silentBroker(t), "todo.activity", logger)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	start := time.Now()
	pub.Publish(ctx, q.TodoEvent{Type: q.TodoCreated, TodoID: 1, UserID: 2, Text: "buy milk"})
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("Publish blocked for %v with a 300ms deadline", elapsed)
	}
	if !strings.Contains(logs.String(), "publish todo event failed") {
		t.Fatalf("failure not logged: %q", logs.String())
	}
}

func TestCreateIsNotHeldByUnresponsiveBroker(t *testing.T) {
	logger := log.New("test")
	logger.SetOutput(&bytes.Buffer{})
	svc := NewTodoService(&mockTodoStore{}, NewAMQPPublisher(silentBroker(t), "todo.activity", logger))

	start := time.Now()
	if _, err := svc.Create(context.Background(), 1, "buy milk"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if elapsed := time.Since(start); elapsed > publishTimeout+time.Second {
		t.Fatalf("Create took %v, publish timeout is %v", elapsed, publishTimeout)
	}
}
