package gesture

import (
	"testing"

	"github.com/ayusman/drishti/internal/detector"
)

const (
	testWidth  = 640
	testHeight = 480
)

// neutralHand returns a hand where no counting rule fires: every
// landmark sits at the frame center.
func neutralHand() detector.HandLandmarks {
	var lm detector.HandLandmarks
	for i := range lm.Points {
		lm.Points[i] = detector.Point3D{X: 0.5, Y: 0.5}
	}
	return lm
}

// px converts pixel coordinates to the normalized space of a test frame.
func px(x, y float64) detector.Point3D {
	return detector.Point3D{X: x / testWidth, Y: y / testHeight}
}

func TestCountFingers_ThumbRule(t *testing.T) {
	tests := []struct {
		name string
		tipX float64
		ipX  float64
		want int
	}{
		{name: "right-hand excess over threshold", tipX: 120, ipX: 90, want: 1},
		{name: "right-hand excess under threshold", tipX: 100, ipX: 90, want: 0},
		{name: "right-hand excess exactly threshold", tipX: 110, ipX: 90, want: 0},
		{name: "left-hand excess over threshold", tipX: 60, ipX: 90, want: 1},
		{name: "left-hand excess under threshold", tipX: 80, ipX: 90, want: 0},
		{name: "tip level with joint", tipX: 90, ipX: 90, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hand := neutralHand()
			hand.Points[detector.ThumbTip] = px(tt.tipX, 240)
			hand.Points[detector.ThumbIP] = px(tt.ipX, 240)

			if got := CountFingers(&hand, testWidth, testHeight); got != tt.want {
				t.Errorf("CountFingers() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCountFingers_FingertipRule(t *testing.T) {
	tests := []struct {
		name string
		tipY float64
		pipY float64
		want int
	}{
		{name: "tip well above joint", tipY: 50, pipY: 70, want: 1},
		{name: "tip slightly above joint", tipY: 65, pipY: 70, want: 0},
		{name: "tip exactly at threshold", tipY: 60, pipY: 70, want: 0},
		{name: "tip below joint", tipY: 80, pipY: 70, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hand := neutralHand()
			hand.Points[detector.IndexTip] = px(320, tt.tipY)
			hand.Points[detector.IndexPIP] = px(320, tt.pipY)

			if got := CountFingers(&hand, testWidth, testHeight); got != tt.want {
				t.Errorf("CountFingers() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCountFingers_Fixtures(t *testing.T) {
	tests := []struct {
		name string
		hand detector.HandLandmarks
		want int
	}{
		{name: "open palm", hand: detector.OpenPalmLandmarks(), want: 5},
		{name: "fist", hand: detector.FistLandmarks(), want: 0},
		{name: "pointing", hand: detector.PointingLandmarks(), want: 1},
		{name: "peace", hand: detector.PeaceLandmarks(), want: 2},
		{name: "four fingers", hand: detector.FourFingerLandmarks(), want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountFingers(&tt.hand, testWidth, testHeight); got != tt.want {
				t.Errorf("CountFingers() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCountFingers_NilHand(t *testing.T) {
	if got := CountFingers(nil, testWidth, testHeight); got != 0 {
		t.Errorf("CountFingers(nil) = %d, want 0", got)
	}
}
