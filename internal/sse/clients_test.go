package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMessageString(t *testing.T) {
	got := Message{Event: EventContent, Data: "<p>a</p>\n<p>b</p>"}.String()
	want := "event: content\ndata: <p>a</p>\ndata: <p>b</p>\n\n"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	if got := (Message{Data: "x"}).String(); got != "data: x\n\n" {
		t.Errorf("Expected bare data frame, got %q", got)
	}
}

func TestBroadcastBySession(t *testing.T) {
	clients := NewSSEClients()
	a, b := NewClient("s1"), NewClient("s2")
	clients.Add(a)
	clients.Add(b)

	if n := clients.Broadcast("s1", Message{Event: EventNotice, Data: "saved"}); n != 1 {
		t.Errorf("Expected 1 delivery, got %d", n)
	}
	select {
	case msg := <-a.Msg:
		if msg.Data != "saved" {
			t.Errorf("Unexpected message %+v", msg)
		}
	default:
		t.Error("Expected s1 client to receive the message")
	}
	select {
	case msg := <-b.Msg:
		t.Errorf("Did not expect s2 to receive %+v", msg)
	default:
	}

	if clients.Count("s1") != 1 {
		t.Errorf("Expected 1 client on s1, got %d", clients.Count("s1"))
	}
	clients.Delete(a)
	clients.Delete(a)
	if clients.Count("s1") != 0 {
		t.Error("Expected s1 client removed")
	}
}

func TestBroadcastDoesNotBlock(t *testing.T) {
	clients := NewSSEClients()
	c := NewClient("s")
	clients.Add(c)
	for i := 0; i < cap(c.Msg)+5; i++ {
		clients.Broadcast("s", Message{Data: "x"})
	}
	if len(c.Msg) != cap(c.Msg) {
		t.Errorf("Expected a full buffer, got %d", len(c.Msg))
	}
}

func TestServe(t *testing.T) {
	clients := NewSSEClients()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clients.Serve(w, r, r.URL.Query().Get("session"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?session=abc", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected event stream, got %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readFrame := func() string {
		var b strings.Builder
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if line == "\n" {
				return b.String()
			}
			b.WriteString(line)
		}
	}

	if frame := readFrame(); !strings.Contains(frame, "event: connected") {
		t.Fatalf("Expected connected frame, got %q", frame)
	}

	deadline := time.Now().Add(2 * time.Second)
	for clients.Count("abc") == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	clients.Broadcast("abc", Message{Event: EventNotice, Data: "hello"})

	if frame := readFrame(); frame != "event: notice\ndata: hello\n" {
		t.Errorf("Unexpected frame %q", frame)
	}
}
