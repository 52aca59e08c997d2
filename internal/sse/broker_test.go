package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func countType(msgs []string, typ string) int {
	n := 0
	for _, m := range msgs {
		if strings.HasPrefix(m, "event: "+typ+"\n") {
			n++
		}
	}
	return n
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: TypeScanProgress, Data: map[string]int{"progress": 45}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: scan.progress") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"progress":45`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestStoreChange_DashboardThrottle(t *testing.T) {
	b := NewBroker(200 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishStoreChange(Event{Type: TypeScanCreated, Data: map[string]string{"id": "a"}}, map[string]int{"scanCount": 1})
	b.PublishStoreChange(Event{Type: TypeScanCreated, Data: map[string]string{"id": "b"}}, map[string]int{"scanCount": 2})
	b.PublishStoreChange(Event{Type: TypeScanDeleted, Data: map[string]string{"id": "a"}}, map[string]int{"scanCount": 1})

	time.Sleep(50 * time.Millisecond)
	msgs := drain(ch)
	if n := countType(msgs, TypeScanCreated) + countType(msgs, TypeScanDeleted); n != 3 {
		t.Errorf("store events = %d, want 3", n)
	}
	if n := countType(msgs, TypeDashboardUpdated); n != 1 {
		t.Errorf("dashboard events = %d, want 1 (throttled)", n)
	}

	// The latest figures arrive once the interval ends.
	time.Sleep(300 * time.Millisecond)
	msgs = drain(ch)
	if n := countType(msgs, TypeDashboardUpdated); n != 1 {
		t.Fatalf("trailing dashboard events = %d, want 1", n)
	}
	if !strings.Contains(msgs[0], `"scanCount":1`) {
		t.Errorf("trailing event carries stale data: %q", msgs[0])
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: TypeTaskUpdated, Data: map[string]string{"id": "t1"}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	if body := w.Body.String(); !strings.Contains(body, "event: task.updated") {
		t.Errorf("handler output missing event: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content-type = %q", ct)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Buffer holds 64; the rest must be dropped without blocking.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: TypeScanProgress, Data: map[string]int{"i": i}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	b.Publish(Event{Type: TypeStoreCleared})
	b.PublishStoreChange(Event{Type: TypeStoreCleared}, nil)
}
