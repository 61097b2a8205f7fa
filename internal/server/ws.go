package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ayusman/drishti/internal/app"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

const writeWait = 10 * time.Second

// streamError is the one-shot message preceding the stream when the
// camera was never available.
type streamError struct {
	Error        string `json:"error"`
	FaceDetected bool   `json:"faceDetected"`
	FingerCount  int    `json:"fingerCount"`
}

// StreamHandler drives the event stream for one connected consumer:
// each tick reads a frame, runs detection and reduction, and pushes the
// resulting event over the websocket at a fixed ~15Hz cadence.
//
// The capture device is a single shared resource, so only one session
// may be active; concurrent connect attempts are refused with 409.
type StreamHandler struct {
	app      *app.App
	interval time.Duration

	quit     chan struct{}
	quitOnce sync.Once

	mu   sync.Mutex
	busy bool
}

// NewStreamHandler creates a new StreamHandler with the given app and
// tick interval.
func NewStreamHandler(a *app.App, interval time.Duration) *StreamHandler {
	return &StreamHandler{
		app:      a,
		interval: interval,
		quit:     make(chan struct{}),
	}
}

// Shutdown asks the active session, if any, to exit after its current
// tick. Safe to call multiple times.
func (h *StreamHandler) Shutdown() {
	h.quitOnce.Do(func() { close(h.quit) })
}

func (h *StreamHandler) acquire() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.busy {
		return false
	}
	h.busy = true
	return true
}

func (h *StreamHandler) release() {
	h.mu.Lock()
	h.busy = false
	h.mu.Unlock()
}

// ServeHTTP upgrades the connection and runs the session loop until the
// remote end disconnects, a write fails or the service shuts down.
// A session close never tears down the process or the camera; the camera
// is released once, by the app, at service stop.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.acquire() {
		http.Error(w, "stream already in use", http.StatusConflict)
		return
	}
	defer h.release()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	session := uuid.NewString()
	log.Printf("stream session %s connected", session)
	defer log.Printf("stream session %s closed", session)

	// The loop still runs degraded after this; reads simply keep failing
	// and the consumer sees default events as a valid "no signal" state.
	if !h.app.CameraAvailable() {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(streamError{Error: "Camera not available"}); err != nil {
			log.Printf("stream session %s write: %v", session, err)
			return
		}
	}

	// Detect remote disconnect; no inbound messages are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.quit:
			return
		case <-done:
			return
		case <-ticker.C:
			ev := h.app.ProcessFrame()
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("stream session %s write: %v", session, err)
				return
			}
		}
	}
}
