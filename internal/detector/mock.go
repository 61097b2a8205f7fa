package detector

import (
	"gocv.io/x/gocv"
)

// MockFaceDetector is a test implementation of the FaceDetector interface.
type MockFaceDetector struct {
	face bool
	err  error
}

// NewMockFaceDetector creates a new MockFaceDetector instance.
func NewMockFaceDetector() *MockFaceDetector {
	return &MockFaceDetector{}
}

// SetFace sets the result that will be returned by Detect.
func (m *MockFaceDetector) SetFace(face bool) {
	m.face = face
}

// SetError sets the error that will be returned by Detect.
func (m *MockFaceDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured result or error.
func (m *MockFaceDetector) Detect(frame *gocv.Mat) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.face, nil
}

// Close is a no-op for the mock detector.
func (m *MockFaceDetector) Close() error {
	return nil
}

// MockHandDetector is a test implementation of the HandDetector interface.
// It allows tests to control the detection results, optionally as a
// scripted per-call sequence.
type MockHandDetector struct {
	hands    []HandLandmarks
	sequence [][]HandLandmarks
	calls    int
	err      error
}

// NewMockHandDetector creates a new MockHandDetector instance.
func NewMockHandDetector() *MockHandDetector {
	return &MockHandDetector{}
}

// SetHands sets the hands that will be returned by every Detect call.
func (m *MockHandDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
	m.sequence = nil
}

// SetSequence sets per-call results; once exhausted, the last entry repeats.
func (m *MockHandDetector) SetSequence(sequence [][]HandLandmarks) {
	m.sequence = sequence
	m.calls = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockHandDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockHandDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) > 0 {
		i := m.calls
		if i >= len(m.sequence) {
			i = len(m.sequence) - 1
		}
		m.calls++
		return m.sequence[i], nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockHandDetector) Close() error {
	return nil
}

// handFixture builds a right-hand landmark set with the requested digits
// raised. Coordinates are normalized; at 640x480 a raised thumb tip sits
// 64px right of the thumb joint and raised fingertips sit well above
// their mid joints, so the fixtures clear the counting thresholds with
// room to spare.
func handFixture(thumb bool, fingers [4]bool) HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	// Palm cluster around the center of the frame
	lm.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}
	lm.Points[ThumbCMC] = Point3D{X: 0.54, Y: 0.75}
	lm.Points[ThumbMCP] = Point3D{X: 0.56, Y: 0.68}

	if thumb {
		lm.Points[ThumbIP] = Point3D{X: 0.58, Y: 0.62}
		lm.Points[ThumbTip] = Point3D{X: 0.68, Y: 0.58}
	} else {
		// Tucked across the palm, tip level with the joint
		lm.Points[ThumbIP] = Point3D{X: 0.54, Y: 0.64}
		lm.Points[ThumbTip] = Point3D{X: 0.54, Y: 0.66}
	}

	mcps := [4]int{IndexMCP, MiddleMCP, RingMCP, PinkyMCP}
	pips := [4]int{IndexPIP, MiddlePIP, RingPIP, PinkyPIP}
	dips := [4]int{IndexDIP, MiddleDIP, RingDIP, PinkyDIP}
	tips := [4]int{IndexTip, MiddleTip, RingTip, PinkyTip}

	for i := 0; i < 4; i++ {
		x := 0.55 - 0.05*float64(i)
		lm.Points[mcps[i]] = Point3D{X: x, Y: 0.68}
		if fingers[i] {
			lm.Points[pips[i]] = Point3D{X: x, Y: 0.55}
			lm.Points[dips[i]] = Point3D{X: x, Y: 0.45}
			lm.Points[tips[i]] = Point3D{X: x, Y: 0.34}
		} else {
			// Curled: tip folded back below its mid joint
			lm.Points[pips[i]] = Point3D{X: x, Y: 0.62}
			lm.Points[dips[i]] = Point3D{X: x - 0.02, Y: 0.66}
			lm.Points[tips[i]] = Point3D{X: x - 0.03, Y: 0.70}
		}
	}

	return lm
}

// OpenPalmLandmarks returns a hand with all five digits raised.
func OpenPalmLandmarks() HandLandmarks {
	return handFixture(true, [4]bool{true, true, true, true})
}

// FistLandmarks returns a hand with no digits raised.
func FistLandmarks() HandLandmarks {
	return handFixture(false, [4]bool{})
}

// PointingLandmarks returns a hand with only the index finger raised.
func PointingLandmarks() HandLandmarks {
	return handFixture(false, [4]bool{true, false, false, false})
}

// PeaceLandmarks returns a hand with index and middle fingers raised.
func PeaceLandmarks() HandLandmarks {
	return handFixture(false, [4]bool{true, true, false, false})
}

// FourFingerLandmarks returns a hand with the four non-thumb fingers raised.
func FourFingerLandmarks() HandLandmarks {
	return handFixture(false, [4]bool{true, true, true, true})
}
