package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/handpong/internal/gesture"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local debug surface only
	},
}

// DiagnosticsHandler broadcasts gesture snapshots to WebSocket clients:
// per-side presence, smoothed position, label, extension metrics.
type DiagnosticsHandler struct {
	smoother *gesture.Smoother
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	stop     chan struct{}
	stopOnce sync.Once
}

// NewDiagnosticsHandler creates a handler fed by the given smoother.
func NewDiagnosticsHandler(s *gesture.Smoother) *DiagnosticsHandler {
	h := &DiagnosticsHandler{
		smoother: s,
		clients:  make(map[*websocket.Conn]bool),
		stop:     make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// Close stops the broadcast goroutine. Safe to call more than once.
func (h *DiagnosticsHandler) Close() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *DiagnosticsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep the connection alive by reading until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast pushes each fresh snapshot to all connected clients. Already
// seen sequence numbers are skipped so idle pipelines stay quiet.
func (h *DiagnosticsHandler) broadcast() {
	ticker := time.NewTicker(66 * time.Millisecond) // ~15 FPS
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}

		h.mu.RLock()
		empty := len(h.clients) == 0
		h.mu.RUnlock()
		if empty {
			continue
		}

		snap := h.smoother.Latest()
		if snap == nil || snap.Seq == lastSeq {
			continue
		}
		lastSeq = snap.Seq

		h.mu.RLock()
		for conn := range h.clients {
			if err := conn.WriteJSON(snap); err != nil {
				log.Printf("websocket write error: %v", err)
			}
		}
		h.mu.RUnlock()
	}
}
