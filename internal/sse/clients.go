// Package sse pushes authoring session changes to open editor pages over
// Server-Sent Events.
package sse

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-press/internal/config"
)

const (
	EventConnected = "connected"
	EventContent   = "content"
	EventNotice    = "notice"
	EventFields    = "fields"
	EventRedirect  = "redirect"

	KeepAlive = 25 * time.Second
)

// Message is one event frame.
type Message struct {
	Event string
	Data  string
}

func (m Message) String() string {
	var b strings.Builder
	if m.Event != "" {
		fmt.Fprintf(&b, "event: %s\n", m.Event)
	}
	for _, line := range strings.Split(m.Data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteByte('\n')
	return b.String()
}

type Client struct {
	Msg     chan Message
	Session string
}

func NewClient(session string) *Client {
	return &Client{Msg: make(chan Message, 8), Session: session}
}

type SSEClients struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewSSEClients() *SSEClients {
	return &SSEClients{
		clients: make(map[*Client]bool),
	}
}

func (s *SSEClients) Add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

func (s *SSEClients) Delete(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[client] {
		delete(s.clients, client)
		close(client.Msg)
	}
}

// Broadcast sends msg to every client of session without blocking. It
// returns how many clients took it.
func (s *SSEClients) Broadcast(session string, msg Message) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sent := 0
	for client := range s.clients {
		if client.Session != session {
			continue
		}
		select {
		case client.Msg <- msg:
			sent++
		default:
		}
	}
	return sent
}

func (s *SSEClients) Count(session string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for client := range s.clients {
		if client.Session == session {
			n++
		}
	}
	return n
}

// Serve streams session's events to w until the request ends.
func (s *SSEClients) Serve(w http.ResponseWriter, r *http.Request, session string) {
	l := zerolog.Ctx(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, "text/event-stream")
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Del("X-Content-Type-Options")

	fmt.Fprint(w, Message{Event: EventConnected, Data: session})
	flusher.Flush()

	client := NewClient(session)
	s.Add(client)
	l.Debug().Str("session", session).Msg("SSE client connected")

	defer func() {
		s.Delete(client)
		l.Debug().Str("session", session).Msg("SSE client disconnected")
	}()

	ticker := time.NewTicker(KeepAlive)
	defer ticker.Stop()

	done := r.Context().Done()
	for {
		select {
		case msg, ok := <-client.Msg:
			if !ok {
				return
			}
			fmt.Fprint(w, msg)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case <-done:
			return
		}
	}
}
