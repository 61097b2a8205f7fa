// Package capture provides camera capture functionality using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"gocv.io/x/gocv"
)

// Default camera settings
const (
	DefaultWidth  = 640
	DefaultHeight = 480

	// ProbeLimit is the number of device indices tried when scanning
	// for a usable camera (indices 0..ProbeLimit-1).
	ProbeLimit = 3
)

// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// ErrNoCamera is returned by OpenFirstAvailable when no candidate device
// yields a readable frame.
var ErrNoCamera = errors.New("no camera available")

// Camera defines the interface for camera capture implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	IsOpen() bool
}

// cameraImpl manages video capture from a camera device using GoCV.
// Frames are mirrored horizontally so the stream behaves like a mirror.
type cameraImpl struct {
	deviceID int
	capture  *gocv.VideoCapture
	mu       sync.Mutex
	running  bool
}

// NewCamera creates a new Camera with the given device ID.
func NewCamera(deviceID int) Camera {
	return &cameraImpl{
		deviceID: deviceID,
		running:  false,
		capture:  nil,
	}
}

// Open opens the camera for capturing frames.
// It sets the resolution to 640x480 for performance.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return err
	}

	// Set resolution for performance
	capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
// It is safe to call multiple times.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame from the camera and mirrors it.
// The caller is responsible for closing the returned Mat.
// A failed read is a per-call signal; the device is not rescanned.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, fmt.Errorf("failed to read frame from device %d", c.deviceID)
	}

	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	// Mirror for a natural selfie view
	gocv.Flip(mat, &mat, 1)

	return &mat, nil
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

// OpenFirstAvailable tries the given device indices in order and returns
// the first camera that both opens and yields a non-empty frame, together
// with its device index. Candidates that fail either step are released
// immediately. Returns ErrNoCamera if no candidate qualifies.
func OpenFirstAvailable(candidates ...int) (Camera, int, error) {
	for _, id := range candidates {
		cam := NewCamera(id)
		if err := cam.Open(); err != nil {
			log.Printf("camera %d: open failed: %v", id, err)
			continue
		}

		frame, err := cam.ReadFrame()
		if err != nil {
			log.Printf("camera %d: probe read failed: %v", id, err)
			cam.Close()
			continue
		}
		frame.Close()

		log.Printf("camera initialized at index %d", id)
		return cam, id, nil
	}

	return nil, -1, ErrNoCamera
}
