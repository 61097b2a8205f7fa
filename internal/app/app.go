// Package app owns the vision pipeline: the camera, the detector
// boundaries and the gesture reducer, plus the process-wide status
// snapshot updated by the most recent tick.
package app

import (
	"log"
	"sync"

	"github.com/ayusman/drishti/internal/capture"
	"github.com/ayusman/drishti/internal/detector"
	"github.com/ayusman/drishti/internal/gesture"
)

// Config holds configuration options for the application.
type Config struct {
	// Camera injects a camera directly, bypassing device probing.
	// Used by tests and by single-index configurations.
	Camera capture.Camera

	// CameraIndices is the probe order when no Camera is injected.
	// Empty means indices 0..capture.ProbeLimit-1.
	CameraIndices []int

	Face  detector.FaceDetector
	Hands detector.HandDetector
}

// Status is a snapshot of process-wide state from the most recent tick.
type Status struct {
	CameraAvailable  bool `json:"camera_available"`
	LastFaceDetected bool `json:"last_face_detected"`
	LastFingerCount  int  `json:"last_finger_count"`
}

// App is the main application value. The camera is owned here: it is
// acquired in Start and released exactly once in Stop, regardless of how
// many stream sessions come and go.
type App struct {
	config  Config
	camera  capture.Camera
	face    detector.FaceDetector
	hands   detector.HandDetector
	reducer *gesture.Reducer

	deviceID  int
	available bool

	mu          sync.RWMutex
	lastFace    bool
	lastFingers int
	lastGesture string
	stopped     bool
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	return &App{
		config:   config,
		face:     config.Face,
		hands:    config.Hands,
		reducer:  gesture.NewReducer(),
		deviceID: -1,
	}
}

// Start acquires the camera. A missing camera is not an error: the
// service starts degraded and every tick produces default events until
// the process is restarted.
func (a *App) Start() error {
	if a.config.Camera != nil {
		if err := a.config.Camera.Open(); err != nil {
			log.Printf("camera unavailable: %v", err)
			return nil
		}
		a.camera = a.config.Camera
		a.available = true
		return nil
	}

	candidates := a.config.CameraIndices
	if len(candidates) == 0 {
		for i := 0; i < capture.ProbeLimit; i++ {
			candidates = append(candidates, i)
		}
	}

	cam, id, err := capture.OpenFirstAvailable(candidates...)
	if err != nil {
		log.Printf("no camera available, starting degraded: %v", err)
		return nil
	}

	a.camera = cam
	a.deviceID = id
	a.available = true
	return nil
}

// Stop releases the camera and the detectors. Safe to call multiple times.
func (a *App) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	a.mu.Unlock()

	if a.camera != nil {
		if err := a.camera.Close(); err != nil {
			log.Printf("error closing camera: %v", err)
		}
	}

	if a.face != nil {
		if err := a.face.Close(); err != nil {
			log.Printf("error closing face detector: %v", err)
		}
	}

	if a.hands != nil {
		if err := a.hands.Close(); err != nil {
			log.Printf("error closing hand detector: %v", err)
		}
	}

	log.Println("vision pipeline stopped")
}

// CameraAvailable reports whether a camera was acquired at startup.
func (a *App) CameraAvailable() bool {
	return a.available
}

// DeviceID returns the retained camera device index, or -1 when degraded.
func (a *App) DeviceID() int {
	return a.deviceID
}

// Camera returns the owned camera, or nil when degraded.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Status returns the process-wide snapshot updated by the most recent tick.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return Status{
		CameraAvailable:  a.available,
		LastFaceDetected: a.lastFace,
		LastFingerCount:  a.lastFingers,
	}
}

// LastGesture returns the most recent non-empty tick's gesture label.
func (a *App) LastGesture() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastGesture
}
