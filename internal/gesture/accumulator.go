// Package gesture classifies multi-touch pointer input into trackpad intents.
package gesture

import "math"

// maxStep bounds a single emitted step so it always fits an int32.
const maxStep = math.MaxInt32

// accumulator carries fractional motion until it adds up to whole units.
type accumulator struct {
	x float64
	y float64
}

// reset drops any carried fraction.
func (a *accumulator) reset() {
	a.x = 0
	a.y = 0
}

// step adds a scaled delta and returns the whole-unit part, keeping the
// remainder so |x| and |y| stay below 1. A sum that is not finite drops the
// carry and emits nothing.
func (a *accumulator) step(dx, dy, k float64) (int, int) {
	x := a.x + dx*k
	y := a.y + dy*k
	if !finite(x) || !finite(y) {
		a.reset()
		return 0, 0
	}
	sx := math.Trunc(x)
	sy := math.Trunc(y)
	a.x = x - sx
	a.y = y - sy
	return clampStep(sx), clampStep(sy)
}

// clampStep converts v to int within ±maxStep.
func clampStep(v float64) int {
	if v > maxStep {
		return maxStep
	}
	if v < -maxStep {
		return -maxStep
	}
	return int(v)
}

// finite reports whether v is neither NaN nor infinite.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
