package gesture

import (
	"github.com/ayusman/drishti/internal/detector"
)

// HistorySize is the number of recent raw finger totals kept for
// stabilization.
const HistorySize = 5

// Gesture labels derived from the stabilized finger count.
const (
	LabelFist     = "fist"
	LabelPointing = "pointing"
	LabelPeace    = "peace"
	LabelOpen     = "open"
)

// Summary is the reduced result for one frame.
type Summary struct {
	FaceDetected  bool
	FingerCount   int // stabilized total across hands, 0-10
	HandsDetected int // raw per-frame hand count, not stabilized
	Gesture       string
}

// Reducer converts raw per-frame landmark sets into a stabilized scene
// summary. It keeps a FIFO window of recent raw totals and reports the
// mode over that window, which debounces frame-to-frame detection noise.
//
// State is mutated only by Reduce; the single streaming session calls it
// from one goroutine, so no locking is needed.
type Reducer struct {
	history []int
}

// NewReducer creates a Reducer with an empty history window.
func NewReducer() *Reducer {
	return &Reducer{
		history: make([]int, 0, HistorySize),
	}
}

// Reduce processes one frame's detections. Face presence passes through
// unchanged. When at least one hand is present, the summed raw finger
// count is appended to the history (evicting the oldest entry beyond
// capacity) and the stabilized count is the mode of the window. A frame
// with zero hands reports a momentary zero without touching the history,
// so the next frame with hands resumes smoothing from the same window.
func (r *Reducer) Reduce(faceDetected bool, hands []detector.HandLandmarks, width, height int) Summary {
	s := Summary{
		FaceDetected:  faceDetected,
		HandsDetected: len(hands),
	}

	if len(hands) == 0 {
		return s
	}

	rawTotal := 0
	for i := range hands {
		rawTotal += CountFingers(&hands[i], width, height)
	}

	r.push(rawTotal)
	s.FingerCount = r.mode()
	s.Gesture = LabelFor(s.FingerCount)

	return s
}

// History returns a copy of the current stabilization window, oldest first.
func (r *Reducer) History() []int {
	out := make([]int, len(r.history))
	copy(out, r.history)
	return out
}

// Reset clears the stabilization window.
func (r *Reducer) Reset() {
	r.history = r.history[:0]
}

// push appends a raw total, evicting the oldest entry when full.
func (r *Reducer) push(v int) {
	if len(r.history) == HistorySize {
		copy(r.history, r.history[1:])
		r.history = r.history[:HistorySize-1]
	}
	r.history = append(r.history, v)
}

// mode returns the most frequent value in the history window. Ties are
// broken in favor of the value that first appears earliest in the window.
func (r *Reducer) mode() int {
	counts := make(map[int]int, len(r.history))
	for _, v := range r.history {
		counts[v]++
	}

	best := 0
	bestCount := 0
	seen := make(map[int]bool, len(counts))
	for _, v := range r.history {
		if seen[v] {
			continue
		}
		seen[v] = true
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}

	return best
}

// LabelFor maps a stabilized finger count to its gesture label.
// Counts without a named gesture map to the empty string.
func LabelFor(fingerCount int) string {
	switch fingerCount {
	case 0:
		return LabelFist
	case 1:
		return LabelPointing
	case 2:
		return LabelPeace
	case 5:
		return LabelOpen
	default:
		return ""
	}
}
