package timeutil

import (
	"math"
	"time"
)

// FractionalHoursToTime converts fractional hours since midnight of the
// given date in loc into a time.Time. h can be negative or >24; time.Add
// handles the day rollover.
func FractionalHoursToTime(year int, month time.Month, day int, h float64, loc *time.Location) time.Time {
	base := time.Date(year, month, day, 0, 0, 0, 0, loc)

	// Round to nearest second to avoid nanosecond noise.
	sec := int64(math.Round(h * 3600))

	return base.Add(time.Duration(sec) * time.Second)
}

// -----------------------------
// Julian day and century
// -----------------------------

// J2000 is the Julian day of the J2000.0 epoch (2000-01-01 12:00 TT).
const J2000 = 2451545.0

// JulianDay returns the Julian day for a Gregorian calendar date plus a
// fraction of a day given in hours (UT).
//
// January and February are treated as months 13 and 14 of the previous
// year. No range checks are applied; out of range components produce a
// meaningless but finite value.
func JulianDay(year, month, day int, hours float64) float64 {
	y := year
	m := month

	if m <= 2 {
		y -= 1
		m += 12
	}

	a := y / 100
	b := 2 - a + a/4

	jd := math.Trunc(365.25*float64(y+4716)) +
		math.Trunc(30.6001*float64(m+1)) +
		float64(day) + hours/24.0 +
		float64(b) - 1524.5

	return jd
}

// JulianCentury returns centuries since J2000.0 for the given Julian day.
func JulianCentury(jd float64) float64 {
	return (jd - J2000) / 36525.0
}

// -----------------------------
// Basic degree/radian helpers and trig with degree inputs.
// -----------------------------

func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180.0
}

func Rad2Deg(r float64) float64 {
	return r * 180.0 / math.Pi
}

func SinD(deg float64) float64 {
	return math.Sin(Deg2Rad(deg))
}

func CosD(deg float64) float64 {
	return math.Cos(Deg2Rad(deg))
}

func TanD(deg float64) float64 {
	return math.Tan(Deg2Rad(deg))
}

// Normalize360 wraps d into [0, 360).
func Normalize360(d float64) float64 {
	d = math.Mod(d, 360.0)
	if d < 0 {
		d += 360.0
	}
	return d
}

// Normalize24 wraps h into [0, 24).
func Normalize24(h float64) float64 {
	h = math.Mod(h, 24.0)
	if h < 0 {
		h += 24.0
	}
	return h
}

// NormalizeToScale wraps x into [0, scale) using floor, so negative
// dividends land on the positive side.
func NormalizeToScale(x, scale float64) float64 {
	return x - scale*math.Floor(x/scale)
}

// ShiftAngle returns the signed equivalent of d in [-180, 180], i.e. the
// shortest rotation with the same direction.
func ShiftAngle(d float64) float64 {
	if d >= -180 && d <= 180 {
		return d
	}
	return d - 360*math.Round(d/360)
}
