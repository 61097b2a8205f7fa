// Package gesture reduces per-frame hand landmarks to a stabilized
// scene summary: raised-finger counts smoothed over a short history
// window and mapped to coarse gesture labels.
package gesture

import (
	"github.com/ayusman/drishti/internal/detector"
)

// Pixel thresholds for the finger-counting rules. Landmark coordinates
// are normalized, so they are scaled to the frame dimensions first.
const (
	// ThumbThresholdPx is the minimum horizontal tip-to-joint excess for
	// the thumb to count as raised.
	ThumbThresholdPx = 20.0
	// FingerThresholdPx is the minimum vertical distance a fingertip
	// must sit above its mid joint to count as raised.
	FingerThresholdPx = 10.0
)

var fingerTips = [4]int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
var fingerPIPs = [4]int{detector.IndexPIP, detector.MiddlePIP, detector.RingPIP, detector.PinkyPIP}

// CountFingers returns the number of raised digits on one hand, judged
// purely from current-frame pixel geometry.
//
// The thumb is orientation-relative: if the tip sits right of the IP
// joint the hand is treated as right-hand-like and the thumb counts only
// when the excess exceeds ThumbThresholdPx; mirrored otherwise. The four
// remaining fingers count when their tip is more than FingerThresholdPx
// above the corresponding mid joint (image y grows downward).
func CountFingers(hand *detector.HandLandmarks, width, height int) int {
	if hand == nil {
		return 0
	}

	w := float64(width)
	h := float64(height)
	raised := 0

	thumbTipX := hand.Points[detector.ThumbTip].X * w
	thumbIPX := hand.Points[detector.ThumbIP].X * w

	if thumbTipX > thumbIPX {
		if thumbTipX > thumbIPX+ThumbThresholdPx {
			raised++
		}
	} else {
		if thumbTipX < thumbIPX-ThumbThresholdPx {
			raised++
		}
	}

	for i := 0; i < 4; i++ {
		tipY := hand.Points[fingerTips[i]].Y * h
		pipY := hand.Points[fingerPIPs[i]].Y * h
		if tipY < pipY-FingerThresholdPx {
			raised++
		}
	}

	return raised
}
