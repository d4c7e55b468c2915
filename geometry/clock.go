package geometry

import "time"

// Hand selects which clock hand an angle is computed for.
type Hand int

const (
	HourHand Hand = iota
	MinuteHand
	SecondHand
)

// HandAngle returns the clockwise rotation in degrees from twelve o'clock of
// the given hand at t. Hands sweep continuously rather than ticking.
func HandAngle(h Hand, t time.Time) float64 {
	sec := float64(t.Second()) + float64(t.Nanosecond())/1e9
	minutes := float64(t.Minute()) + sec/60
	switch h {
	case HourHand:
		return (float64(t.Hour()%12) + minutes/60) * 30
	case MinuteHand:
		return minutes * 6
	default:
		return sec * 6
	}
}
