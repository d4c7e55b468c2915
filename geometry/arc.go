package geometry

import "math"

// NormalizeAngle maps degrees into [0, 360).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a == 360 {
		a = 0
	}
	return a
}

// SweepEnd normalizes both angles and returns the start together with an end
// adjusted so that moving from start to end travels in the requested
// direction. Equal angles describe a full ring.
func SweepEnd(start, end float64, counterClockwise bool) (float64, float64) {
	start = NormalizeAngle(start)
	end = NormalizeAngle(end)
	if counterClockwise {
		if end >= start {
			end -= 360
		}
	} else if end <= start {
		end += 360
	}
	return start, end
}

// ProgressAngle returns the angle reached after covering progress of the
// sweep from start to end in the given direction.
func ProgressAngle(start, end float64, counterClockwise bool, progress float64) float64 {
	s, e := SweepEnd(start, end, counterClockwise)
	return s + (e-s)*Clamp01(progress)
}

// Clamp01 clamps v into [0, 1].
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
