package engine

import (
	"fmt"
	"math"
	"time"
)

// FlickerPeriod returns the number of frames in one on/off cycle of a
// stimulus flickering at freq Hz on a display refreshing at refresh Hz.
// Halves round to even, and the result is never below one frame.
func FlickerPeriod(refresh, freq float64) (int, error) {
	if refresh <= 0 || math.IsNaN(refresh) || math.IsInf(refresh, 0) {
		return 0, fmt.Errorf("invalid refresh rate %v", refresh)
	}
	if freq <= 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, fmt.Errorf("invalid flicker frequency %v", freq)
	}
	p := int(math.RoundToEven(refresh / freq))
	if p < 1 {
		p = 1
	}
	return p, nil
}

// Visible reports whether a square-wave stimulus with the given period is
// drawn on frame n. The first half of each cycle is on; for odd periods the
// on phase is one frame longer.
func Visible(n, period int) bool {
	if period <= 1 {
		return true
	}
	m := n % period
	if m < 0 {
		m += period
	}
	return 2*m < period
}

// FrameBudget is the number of flips in d at the given refresh rate.
func FrameBudget(refresh float64, d time.Duration) int {
	if refresh <= 0 || d <= 0 {
		return 0
	}
	return int(math.Round(refresh * d.Seconds()))
}

// CompleteCycles counts whole flicker cycles that fit in frames.
func CompleteCycles(frames, period int) int {
	if period <= 0 {
		return 0
	}
	return frames / period
}
