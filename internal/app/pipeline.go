package app

import (
	"log"
	"time"

	"github.com/ayusman/drishti/internal/detector"
)

// Event is the immutable output record for one tick, serialized as-is
// onto the stream transport. Gesture is null when no label applies.
type Event struct {
	FaceDetected  bool    `json:"faceDetected"`
	FingerCount   int     `json:"fingerCount"`
	HandsDetected int     `json:"handsDetected"`
	Gesture       *string `json:"gesture"`
	Timestamp     string  `json:"timestamp"`
}

// ProcessFrame runs one tick of the pipeline: read a frame, detect face
// and hands, reduce to a stabilized summary, update the status snapshot
// and return the event.
//
// Nothing here may take down the process. A degraded camera or a failed
// read yields a default event; a failed detector counts as no detection
// this frame. Reducer state is touched only here, from the single
// session's tick goroutine.
func (a *App) ProcessFrame() Event {
	ev := Event{
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if !a.available || a.camera == nil {
		return ev
	}

	frame, err := a.camera.ReadFrame()
	if err != nil {
		log.Printf("frame read failed: %v", err)
		return ev
	}
	defer frame.Close()

	width := frame.Cols()
	height := frame.Rows()

	faceDetected := false
	if a.face != nil {
		detected, err := a.face.Detect(frame)
		if err != nil {
			log.Printf("face detection failed: %v", err)
		} else {
			faceDetected = detected
		}
	}

	var hands []detector.HandLandmarks
	if a.hands != nil {
		detected, err := a.hands.Detect(frame)
		if err != nil {
			log.Printf("hand detection failed: %v", err)
		} else {
			hands = detected
		}
	}

	summary := a.reducer.Reduce(faceDetected, hands, width, height)

	ev.FaceDetected = summary.FaceDetected
	ev.FingerCount = summary.FingerCount
	ev.HandsDetected = summary.HandsDetected
	if summary.Gesture != "" {
		g := summary.Gesture
		ev.Gesture = &g
	}

	a.mu.Lock()
	a.lastFace = summary.FaceDetected
	if summary.HandsDetected > 0 {
		a.lastFingers = summary.FingerCount
		a.lastGesture = summary.Gesture
	}
	a.mu.Unlock()

	return ev
}
