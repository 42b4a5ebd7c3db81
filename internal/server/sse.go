package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

// SSE event names.
const (
	eventFrame  = "frame"
	eventClosed = "closed"
)

// sseKeepaliveInterval is how often keepalive comments are sent.
const sseKeepaliveInterval = 15 * time.Second

// sseEvent is one server-sent event.
type sseEvent struct {
	ID    uint64
	Topic string
	Name  string
	Data  []byte
}

// sseHub fans session frames out to stream clients. Frames supersede each
// other, so nothing is buffered for replay and slow clients drop frames.
type sseHub struct {
	mu      sync.RWMutex
	clients map[*sseClient]struct{}
	nextID  atomic.Uint64
}

// sseClient is one connected stream.
type sseClient struct {
	topic string
	ch    chan *sseEvent
}

func newSSEHub() *sseHub {
	return &sseHub{clients: make(map[*sseClient]struct{})}
}

// broadcast sends an event to every client subscribed to topic.
func (h *sseHub) broadcast(topic, name string, payload []byte) {
	evt := &sseEvent{ID: h.nextID.Add(1), Topic: topic, Name: name, Data: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.topic != topic {
			continue
		}
		select {
		case c.ch <- evt:
		default:
		}
	}
}

// subscribers returns the number of clients subscribed to topic.
func (h *sseHub) subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for c := range h.clients {
		if c.topic == topic {
			n++
		}
	}
	return n
}

func (h *sseHub) subscribe(topic string) *sseClient {
	c := &sseClient{topic: topic, ch: make(chan *sseEvent, 8)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *sseHub) unsubscribe(c *sseClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// handleStream handles GET /api/sessions/{id}/stream. The current frame is
// sent first, then every new one until the client leaves or the session
// closes.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming not supported"})
		return
	}

	topic := sessionTopic(sess.id)
	client := s.hub.subscribe(topic)
	defer s.hub.unsubscribe(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if data, err := json.Marshal(sess.current()); err == nil {
		writeSSEEvent(w, &sseEvent{ID: s.hub.nextID.Add(1), Topic: topic, Name: eventFrame, Data: data})
	}
	flusher.Flush()

	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sess.done:
			writeSSEEvent(w, &sseEvent{ID: s.hub.nextID.Add(1), Topic: topic, Name: eventClosed, Data: []byte(`{}`)})
			flusher.Flush()
			return
		case evt := <-client.ch:
			sess.touch()
			writeSSEEvent(w, evt)
			flusher.Flush()
		case <-keepalive.C:
			sess.touch()
			fmt.Fprintf(w, ":keepalive\n\n")
			flusher.Flush()
		}
	}
}

func writeSSEEvent(w io.Writer, evt *sseEvent) {
	fmt.Fprintf(w, "id:%d\n", evt.ID)
	fmt.Fprintf(w, "event:%s\n", evt.Name)
	fmt.Fprintf(w, "data:%s\n\n", evt.Data)
}
