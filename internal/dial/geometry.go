// Package dial maps pointer positions on the 24-hour circular timeline to
// wall-clock times and runs the drag/resize state machine for editing
// session boundaries. It has no rendering dependency; the UI feeds it
// pointer coordinates in its own unit space and a units-per-pixel scale.
package dial

import "math"

const tau = 2 * math.Pi

// AngleFromPoint returns the clockwise angle of (x, y) around (cx, cy),
// with zero at 12 o'clock (midnight).
func AngleFromPoint(x, y, cx, cy float64) float64 {
	a := math.Atan2(y-cy, x-cx) + math.Pi/2
	return math.Mod(math.Mod(a, tau)+tau, tau)
}

// AngleFromTime maps a timestamp within the day to its dial angle.
func AngleFromTime(ms, dayStart int64) float64 {
	seconds := float64(ms-dayStart) / 1000
	return seconds / 86400 * tau
}

// TimeFromAngle maps a dial angle back to a timestamp, rounded to whole
// seconds.
func TimeFromAngle(theta float64, dayStart int64) int64 {
	seconds := theta / tau * 86400
	return dayStart + int64(math.Round(seconds))*1000
}
