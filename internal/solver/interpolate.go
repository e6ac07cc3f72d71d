package solver

import "github.com/thurmanmarka/miqat/internal/timeutil"

// Interpolate evaluates the three-point interpolation of Meeus (3.3) for
// y1 (previous day), y2 (target day) and y3 (next day) at the day
// fraction n. Use it for quantities that do not wrap, such as declination.
func Interpolate(y2, y1, y3, n float64) float64 {
	a := y2 - y1
	b := y3 - y2
	c := b - a
	return y2 + (n/2)*(a+b+n*c)
}

// InterpolateAngles is Interpolate for quantities that wrap at 360 degrees,
// such as right ascension. The first differences are shifted into
// [-180, 180] so a wrap between two samples does not count as a full turn.
func InterpolateAngles(y2, y1, y3, n float64) float64 {
	a := timeutil.ShiftAngle(y2 - y1)
	b := timeutil.ShiftAngle(y3 - y2)
	c := b - a
	return y2 + (n/2)*(a+b+n*c)
}
