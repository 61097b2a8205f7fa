package detector

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gocv.io/x/gocv"
)

// CascadeFaceDetector detects face presence using an OpenCV Haar cascade.
// It runs fully in-process and comfortably fits the tick budget.
type CascadeFaceDetector struct {
	classifier gocv.CascadeClassifier
	mu         sync.Mutex
	closed     bool
}

// NewCascadeFaceDetector loads the cascade definition from the given XML
// file. If path is empty, well-known locations are searched.
func NewCascadeFaceDetector(path string) (*CascadeFaceDetector, error) {
	if path == "" {
		path = findCascadeFile()
	}
	if path == "" {
		return nil, fmt.Errorf("haar cascade file not found")
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("load cascade %s failed", path)
	}

	return &CascadeFaceDetector{classifier: classifier}, nil
}

// Detect reports whether the cascade finds at least one face in the frame.
func (d *CascadeFaceDetector) Detect(frame *gocv.Mat) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false, fmt.Errorf("cascade detector is closed")
	}
	if frame == nil || frame.Empty() {
		return false, fmt.Errorf("empty frame")
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	rects := d.classifier.DetectMultiScale(gray)
	return len(rects) > 0, nil
}

// Close releases the cascade classifier.
func (d *CascadeFaceDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	return d.classifier.Close()
}

// findCascadeFile looks for the frontal-face cascade in common locations.
func findCascadeFile() string {
	candidates := []string{
		"data/haarcascade_frontalface_default.xml",
		"../data/haarcascade_frontalface_default.xml",
		filepath.Join(os.Getenv("HOME"), ".drishti/data/haarcascade_frontalface_default.xml"),
		"/usr/share/opencv4/haarcascades/haarcascade_frontalface_default.xml",
		"/usr/local/share/opencv4/haarcascades/haarcascade_frontalface_default.xml",
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}
