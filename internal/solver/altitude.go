package solver

import (
	"errors"
	"math"

	"github.com/thurmanmarka/miqat/internal/timeutil"
)

// siderealRate is the Earth's rotation in sidereal degrees per solar day.
const siderealRate = 360.985647

// degenerateDenominator bounds the Newton step denominator below which the
// altitude correction is skipped.
const degenerateDenominator = 1e-9

// ErrAltitudeUnreachable is returned when the Sun never reaches the
// requested altitude on the day (polar day or polar night).
var ErrAltitudeUnreachable = errors.New("solar altitude is not reached on this date")

// Sample is the Sun's equatorial position on one day, in degrees.
type Sample struct {
	RA  float64 // right ascension, [0, 360)
	Dec float64 // declination
}

// Window is the three-day set of solar samples the corrections interpolate
// across, plus the apparent sidereal time at 0h UT of the target day.
type Window struct {
	Prev     Sample
	Curr     Sample
	Next     Sample
	Sidereal float64 // apparent sidereal time, degrees
}

// Result holds a solved event time.
type Result struct {
	Hours      float64 // UT hours from 0h of the target day
	Degenerate bool    // true if the Newton correction was skipped
}

// Altitude returns the altitude (degrees) of a body at declination dec and
// local hour angle h seen from latitude lat. All inputs are degrees.
func Altitude(lat, dec, h float64) float64 {
	sinAlt := timeutil.SinD(lat)*timeutil.SinD(dec) +
		timeutil.CosD(lat)*timeutil.CosD(dec)*timeutil.CosD(h)
	return timeutil.Rad2Deg(math.Asin(sinAlt))
}

// ApproximateTransit returns the fraction of the day [0, 1) at which the
// Sun crosses the meridian of longitude lon (east positive), before any
// correction for the Sun's motion during the day.
func ApproximateTransit(lon float64, w Window) float64 {
	lw := -lon
	return timeutil.NormalizeToScale((w.Curr.RA+lw-w.Sidereal)/360, 1)
}

// CorrectedTransit refines the approximate transit m0 once and returns the
// time of solar transit in UT hours.
func CorrectedTransit(m0, lon float64, w Window) float64 {
	lw := -lon
	theta := timeutil.Normalize360(w.Sidereal + siderealRate*m0)
	ra := timeutil.Normalize360(InterpolateAngles(w.Curr.RA, w.Prev.RA, w.Next.RA, m0))
	h := timeutil.ShiftAngle(theta - lw - ra)
	dm := h / -360
	return (m0 + dm) * 24
}

// CorrectedHourAngle returns the UT hours at which the Sun's center passes
// altitude h0 (degrees, negative below the horizon) before or after the
// transit m0.
//
// One fixed refinement is applied: the day fraction is moved to where the
// interpolated position predicts h0, then a single Newton step corrects
// the residual altitude. If the step's denominator vanishes (hour angle
// near 0 or 180 degrees) the step is skipped and Result.Degenerate is set.
func CorrectedHourAngle(m0, h0, lat, lon float64, afterTransit bool, w Window) (Result, error) {
	lw := -lon

	cosH0 := (timeutil.SinD(h0) - timeutil.SinD(lat)*timeutil.SinD(w.Curr.Dec)) /
		(timeutil.CosD(lat) * timeutil.CosD(w.Curr.Dec))
	if math.IsNaN(cosH0) || cosH0 < -1 || cosH0 > 1 {
		return Result{}, ErrAltitudeUnreachable
	}
	h0Angle := timeutil.Rad2Deg(math.Acos(cosH0))

	m := m0 - h0Angle/360
	if afterTransit {
		m = m0 + h0Angle/360
	}

	theta := timeutil.Normalize360(w.Sidereal + siderealRate*m)
	ra := timeutil.Normalize360(InterpolateAngles(w.Curr.RA, w.Prev.RA, w.Next.RA, m))
	dec := Interpolate(w.Curr.Dec, w.Prev.Dec, w.Next.Dec, m)
	h := theta - lw - ra
	alt := Altitude(lat, dec, h)

	denom := 360 * timeutil.CosD(dec) * timeutil.CosD(lat) * timeutil.SinD(h)
	if math.Abs(denom) < degenerateDenominator {
		return Result{Hours: m * 24, Degenerate: true}, nil
	}
	dm := (alt - h0) / denom

	return Result{Hours: (m + dm) * 24}, nil
}
