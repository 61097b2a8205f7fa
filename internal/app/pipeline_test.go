package app

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/drishti/internal/capture"
	"github.com/ayusman/drishti/internal/detector"
)

func newTestApp(t *testing.T, face *detector.MockFaceDetector, hands *detector.MockHandDetector) (*App, *capture.MockCamera) {
	t.Helper()

	mat := gocv.NewMatWithSize(capture.DefaultHeight, capture.DefaultWidth, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { mat.Close() })

	cam := capture.NewMockCamera([]*gocv.Mat{&mat}, true)

	a := New(Config{
		Camera: cam,
		Face:   face,
		Hands:  hands,
	})
	if err := a.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	t.Cleanup(a.Stop)

	return a, cam
}

func TestProcessFrame_Event(t *testing.T) {
	face := detector.NewMockFaceDetector()
	hands := detector.NewMockHandDetector()
	a, _ := newTestApp(t, face, hands)

	face.SetFace(true)
	hands.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})

	ev := a.ProcessFrame()

	if !ev.FaceDetected {
		t.Error("FaceDetected should be true")
	}
	if ev.FingerCount != 5 {
		t.Errorf("FingerCount = %d, want 5", ev.FingerCount)
	}
	if ev.HandsDetected != 1 {
		t.Errorf("HandsDetected = %d, want 1", ev.HandsDetected)
	}
	if ev.Gesture == nil || *ev.Gesture != "open" {
		t.Errorf("Gesture = %v, want open", ev.Gesture)
	}
	if _, err := time.Parse(time.RFC3339, ev.Timestamp); err != nil {
		t.Errorf("Timestamp %q is not RFC3339: %v", ev.Timestamp, err)
	}
}

func TestProcessFrame_EventJSON(t *testing.T) {
	face := detector.NewMockFaceDetector()
	hands := detector.NewMockHandDetector()
	a, _ := newTestApp(t, face, hands)

	ev := a.ProcessFrame()

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}

	for _, key := range []string{"faceDetected", "fingerCount", "handsDetected", "gesture", "timestamp"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("event JSON missing %q field", key)
		}
	}

	// No hands, so gesture serializes as null
	if decoded["gesture"] != nil {
		t.Errorf("gesture = %v, want null", decoded["gesture"])
	}
}

func TestProcessFrame_ReadFailureDegrades(t *testing.T) {
	face := detector.NewMockFaceDetector()
	hands := detector.NewMockHandDetector()
	a, cam := newTestApp(t, face, hands)

	face.SetFace(true)
	hands.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})
	a.ProcessFrame()

	cam.FailNextReads(1)
	ev := a.ProcessFrame()

	// A transient read failure produces a default event, not a teardown.
	if ev.FaceDetected || ev.FingerCount != 0 || ev.HandsDetected != 0 || ev.Gesture != nil {
		t.Errorf("expected default event on read failure, got %+v", ev)
	}

	// The next successful read resumes from the untouched history.
	ev = a.ProcessFrame()
	if ev.FingerCount != 5 {
		t.Errorf("FingerCount after recovery = %d, want 5", ev.FingerCount)
	}
}

func TestProcessFrame_DetectorFailureIsNoDetection(t *testing.T) {
	face := detector.NewMockFaceDetector()
	hands := detector.NewMockHandDetector()
	a, _ := newTestApp(t, face, hands)

	face.SetError(errors.New("model crashed"))
	hands.SetError(errors.New("model crashed"))

	ev := a.ProcessFrame()

	if ev.FaceDetected {
		t.Error("failed face detector should report no face")
	}
	if ev.HandsDetected != 0 {
		t.Errorf("failed hand detector should report no hands, got %d", ev.HandsDetected)
	}
}

func TestProcessFrame_CameraNeverAvailable(t *testing.T) {
	a := New(Config{})

	ev := a.ProcessFrame()

	if ev.FaceDetected || ev.FingerCount != 0 || ev.HandsDetected != 0 || ev.Gesture != nil {
		t.Errorf("expected default event without camera, got %+v", ev)
	}
	if ev.Timestamp == "" {
		t.Error("default event should still carry a timestamp")
	}
	if a.CameraAvailable() {
		t.Error("CameraAvailable() should be false")
	}
}

func TestStatus_UpdatedByTick(t *testing.T) {
	face := detector.NewMockFaceDetector()
	hands := detector.NewMockHandDetector()
	a, _ := newTestApp(t, face, hands)

	face.SetFace(true)
	hands.SetHands([]detector.HandLandmarks{detector.PeaceLandmarks()})
	a.ProcessFrame()

	st := a.Status()
	if !st.CameraAvailable {
		t.Error("CameraAvailable should be true")
	}
	if !st.LastFaceDetected {
		t.Error("LastFaceDetected should be true")
	}
	if st.LastFingerCount != 2 {
		t.Errorf("LastFingerCount = %d, want 2", st.LastFingerCount)
	}
	if a.LastGesture() != "peace" {
		t.Errorf("LastGesture() = %q, want peace", a.LastGesture())
	}

	// A zero-hands tick updates face but keeps the last finger count.
	face.SetFace(false)
	hands.SetHands(nil)
	a.ProcessFrame()

	st = a.Status()
	if st.LastFaceDetected {
		t.Error("LastFaceDetected should be false")
	}
	if st.LastFingerCount != 2 {
		t.Errorf("LastFingerCount = %d, want 2 (unchanged)", st.LastFingerCount)
	}
}

func TestStop_Idempotent(t *testing.T) {
	face := detector.NewMockFaceDetector()
	hands := detector.NewMockHandDetector()
	a, cam := newTestApp(t, face, hands)

	a.Stop()
	a.Stop()

	if cam.IsOpen() {
		t.Error("camera should be released after Stop()")
	}
}
