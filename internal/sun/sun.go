package sun

import (
	"math"

	"github.com/thurmanmarka/miqat/internal/solver"
	"github.com/thurmanmarka/miqat/internal/timeutil"
)

// ApparentHorizonAltitude is the altitude (in degrees) of the Sun's center
// when the apparent upper limb is on the horizon under "standard"
// conditions: refraction plus the Sun's apparent radius.
const ApparentHorizonAltitude = -0.833

// Day holds the solar data needed to solve events for one calendar day at
// one observer: the positions at 0h UT of the previous, target and next
// day, and the approximate transit.
type Day struct {
	lat, lon float64
	window   solver.Window
	m0       float64
}

// NewDay computes the three-day solar window for the Gregorian date
// (year, month, day) and an observer at lat, lon (degrees, east positive).
func NewDay(year, month, day int, lat, lon float64) Day {
	jd := timeutil.JulianDay(year, month, day, 0)

	curr := PositionAt(jd)
	prev := PositionAt(jd - 1)
	next := PositionAt(jd + 1)

	w := solver.Window{
		Prev:     sample(prev),
		Curr:     sample(curr),
		Next:     sample(next),
		Sidereal: curr.ApparentSiderealTime,
	}

	return Day{
		lat:    lat,
		lon:    lon,
		window: w,
		m0:     solver.ApproximateTransit(lon, w),
	}
}

func sample(p Position) solver.Sample {
	return solver.Sample{RA: p.RightAscension, Dec: p.Declination}
}

// Declination returns the Sun's declination at 0h UT of the day.
func (d Day) Declination() float64 {
	return d.window.Curr.Dec
}

// Transit returns the corrected time of solar transit (local apparent
// noon) in UT hours from 0h of the day.
func (d Day) Transit() float64 {
	return solver.CorrectedTransit(d.m0, d.lon, d.window)
}

// HourAngle returns the UT hours at which the Sun's center crosses
// altitude (degrees, negative below the horizon), before transit for
// morning events and after it otherwise. It fails with
// solver.ErrAltitudeUnreachable if the Sun never reaches the altitude.
func (d Day) HourAngle(altitude float64, afterTransit bool) (solver.Result, error) {
	return solver.CorrectedHourAngle(d.m0, altitude, d.lat, d.lon, afterTransit, d.window)
}

// ShadowAltitude returns the solar altitude (degrees) at which a vertical
// object's shadow equals factor times its height plus its noon shadow.
func (d Day) ShadowAltitude(factor float64) float64 {
	tangent := math.Abs(d.lat - d.Declination())
	inverse := factor + timeutil.TanD(tangent)
	return timeutil.Rad2Deg(math.Atan(1 / inverse))
}
