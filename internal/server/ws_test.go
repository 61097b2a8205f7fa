package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"

	"github.com/ayusman/drishti/internal/app"
	"github.com/ayusman/drishti/internal/capture"
	"github.com/ayusman/drishti/internal/detector"
)

func dialStream(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/vision/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial stream: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read event: %v", err)
	}

	var event map[string]any
	if err := json.Unmarshal(payload, &event); err != nil {
		t.Fatalf("failed to decode event %q: %v", payload, err)
	}
	return event
}

func TestStream_CameraUnavailable(t *testing.T) {
	// Degraded service: the first message is the one-shot error event,
	// followed by steady default events.
	s := New(Config{App: app.New(app.Config{}), TickInterval: 10 * time.Millisecond})
	ts := httptest.NewServer(s)
	defer ts.Close()

	conn := dialStream(t, ts)

	errEvent := readEvent(t, conn)
	if errEvent["error"] != "Camera not available" {
		t.Errorf("error = %v, want 'Camera not available'", errEvent["error"])
	}
	if errEvent["faceDetected"] != false {
		t.Errorf("faceDetected = %v, want false", errEvent["faceDetected"])
	}
	if errEvent["fingerCount"] != float64(0) {
		t.Errorf("fingerCount = %v, want 0", errEvent["fingerCount"])
	}

	for i := 0; i < 3; i++ {
		event := readEvent(t, conn)
		if _, hasErr := event["error"]; hasErr {
			t.Fatalf("event %d should not be error-shaped: %v", i, event)
		}
		if event["faceDetected"] != false || event["fingerCount"] != float64(0) ||
			event["handsDetected"] != float64(0) || event["gesture"] != nil {
			t.Errorf("event %d: expected default event, got %v", i, event)
		}
		if _, ok := event["timestamp"].(string); !ok {
			t.Errorf("event %d: missing timestamp", i)
		}
	}
}

func TestStream_EventsFromPipeline(t *testing.T) {
	mat := gocv.NewMatWithSize(capture.DefaultHeight, capture.DefaultWidth, gocv.MatTypeCV8UC3)
	defer mat.Close()

	face := detector.NewMockFaceDetector()
	face.SetFace(true)
	hands := detector.NewMockHandDetector()
	hands.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})

	a := app.New(app.Config{
		Camera: capture.NewMockCamera([]*gocv.Mat{&mat}, true),
		Face:   face,
		Hands:  hands,
	})
	if err := a.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer a.Stop()

	s := New(Config{App: a, TickInterval: 10 * time.Millisecond})
	ts := httptest.NewServer(s)
	defer ts.Close()

	conn := dialStream(t, ts)

	event := readEvent(t, conn)
	if event["faceDetected"] != true {
		t.Errorf("faceDetected = %v, want true", event["faceDetected"])
	}
	if event["fingerCount"] != float64(5) {
		t.Errorf("fingerCount = %v, want 5", event["fingerCount"])
	}
	if event["handsDetected"] != float64(1) {
		t.Errorf("handsDetected = %v, want 1", event["handsDetected"])
	}
	if event["gesture"] != "open" {
		t.Errorf("gesture = %v, want open", event["gesture"])
	}
}

func TestStream_SecondSessionRefused(t *testing.T) {
	s := New(Config{App: app.New(app.Config{}), TickInterval: 10 * time.Millisecond})
	ts := httptest.NewServer(s)
	defer ts.Close()

	conn := dialStream(t, ts)
	readEvent(t, conn) // session is live

	resp, err := http.Get(ts.URL + "/vision/stream")
	if err != nil {
		t.Fatalf("second connect failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, resp.StatusCode)
	}
}

func TestStream_SlotReleasedAfterDisconnect(t *testing.T) {
	s := New(Config{App: app.New(app.Config{}), TickInterval: 10 * time.Millisecond})
	ts := httptest.NewServer(s)
	defer ts.Close()

	conn := dialStream(t, ts)
	readEvent(t, conn)
	conn.Close()

	// The slot frees once the session loop observes the disconnect.
	deadline := time.Now().Add(2 * time.Second)
	for {
		conn2, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/vision/stream", nil)
		if err == nil {
			conn2.Close()
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("stream slot never released: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestStream_ShutdownClosesSession(t *testing.T) {
	s := New(Config{App: app.New(app.Config{}), TickInterval: 10 * time.Millisecond})
	ts := httptest.NewServer(s)
	defer ts.Close()

	conn := dialStream(t, ts)
	readEvent(t, conn)

	s.stream.Shutdown()

	// After shutdown the server stops writing; reads eventually fail.
	conn.SetReadDeadline(time.Now().Add(time.Second))
	for i := 0; i < 10; i++ {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
	t.Error("expected session to close after shutdown")
}
