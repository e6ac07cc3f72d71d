package sun

import (
	"math"

	"github.com/thurmanmarka/miqat/internal/timeutil"
)

// Position is the Sun's apparent geocentric position at an instant.
// All values are in degrees.
type Position struct {
	Declination          float64
	RightAscension       float64 // [0, 360)
	ApparentSiderealTime float64 // Greenwich, corrected for nutation
}

// PositionAt returns the Sun's apparent position for Julian day jd.
//
// The series follow Meeus, Astronomical Algorithms (2nd ed.), chapters 12,
// 22 and 25. The coefficients are literal; prayer times are sensitive to
// the higher order terms.
func PositionAt(jd float64) Position {
	t := timeutil.JulianCentury(jd)

	l0 := MeanSolarLongitude(t)
	lp := MeanLunarLongitude(t)
	omega := AscendingLunarNodeLongitude(t)
	lambda := timeutil.Deg2Rad(ApparentSolarLongitude(t, l0))

	theta0 := MeanSiderealTime(t)
	dPsi := NutationInLongitude(l0, lp, omega)
	dEps := NutationInObliquity(l0, lp, omega)

	eps0 := MeanObliquityOfTheEcliptic(t)
	epsApp := timeutil.Deg2Rad(ApparentObliquityOfTheEcliptic(t, eps0))

	dec := timeutil.Rad2Deg(math.Asin(math.Sin(epsApp) * math.Sin(lambda)))
	ra := timeutil.Normalize360(timeutil.Rad2Deg(
		math.Atan2(math.Cos(epsApp)*math.Sin(lambda), math.Cos(lambda))))

	return Position{
		Declination:          dec,
		RightAscension:       ra,
		ApparentSiderealTime: theta0 + dPsi*timeutil.CosD(eps0+dEps),
	}
}

// MeanSolarLongitude is L0, the geometric mean longitude of the Sun
// referred to the mean equinox of the date (Meeus 25.2).
func MeanSolarLongitude(t float64) float64 {
	term1 := 280.4664567
	term2 := 36000.76983 * t
	term3 := 0.0003032 * t * t
	return timeutil.Normalize360(term1 + term2 + term3)
}

// MeanLunarLongitude is L', the mean longitude of the Moon (Meeus ch. 22).
func MeanLunarLongitude(t float64) float64 {
	term1 := 218.3165
	term2 := 481267.8813 * t
	return timeutil.Normalize360(term1 + term2)
}

// AscendingLunarNodeLongitude is Ω, the longitude of the ascending node of
// the Moon's mean orbit on the ecliptic (Meeus ch. 22).
func AscendingLunarNodeLongitude(t float64) float64 {
	term1 := 125.04452
	term2 := 1934.136261 * t
	term3 := 0.0020708 * t * t
	term4 := t * t * t / 450000
	return timeutil.Normalize360(term1 - term2 + term3 + term4)
}

// MeanSolarAnomaly is M (Meeus 25.3).
func MeanSolarAnomaly(t float64) float64 {
	term1 := 357.52911
	term2 := 35999.05029 * t
	term3 := 0.0001537 * t * t
	return timeutil.Normalize360(term1 + term2 - term3)
}

// SolarEquationOfTheCenter is C for mean anomaly m (degrees).
func SolarEquationOfTheCenter(t, m float64) float64 {
	mrad := timeutil.Deg2Rad(m)
	term1 := (1.914602 - 0.004817*t - 0.000014*t*t) * math.Sin(mrad)
	term2 := (0.019993 - 0.000101*t) * math.Sin(2*mrad)
	term3 := 0.000289 * math.Sin(3*mrad)
	return term1 + term2 + term3
}

// ApparentSolarLongitude is λ, the true longitude corrected for nutation
// and aberration.
func ApparentSolarLongitude(t, l0 float64) float64 {
	longitude := l0 + SolarEquationOfTheCenter(t, MeanSolarAnomaly(t))
	omega := 125.04 - 1934.136*t
	lambda := longitude - 0.00569 - 0.00478*timeutil.SinD(omega)
	return timeutil.Normalize360(lambda)
}

// MeanObliquityOfTheEcliptic is ε0 (Meeus 22.2).
func MeanObliquityOfTheEcliptic(t float64) float64 {
	term1 := 23.439291
	term2 := 0.013004167 * t
	term3 := 0.0000001639 * t * t
	term4 := 0.0000005036 * t * t * t
	return term1 - term2 - term3 + term4
}

// ApparentObliquityOfTheEcliptic is ε corrected with the dominant nutation
// term (Meeus 25.8).
func ApparentObliquityOfTheEcliptic(t, eps0 float64) float64 {
	o := 125.04 - 1934.136*t
	return eps0 + 0.00256*timeutil.CosD(o)
}

// MeanSiderealTime is θ0, the mean sidereal time at Greenwich (Meeus 12.4).
func MeanSiderealTime(t float64) float64 {
	jd := t*36525 + timeutil.J2000
	term1 := 280.46061837
	term2 := 360.98564736629 * (jd - timeutil.J2000)
	term3 := 0.000387933 * t * t
	term4 := t * t * t / 38710000
	return timeutil.Normalize360(term1 + term2 + term3 - term4)
}

// NutationInLongitude is ΔΨ in degrees, from the four largest terms of the
// nutation series (arcseconds / 3600).
func NutationInLongitude(l0, lp, omega float64) float64 {
	term1 := (-17.2 / 3600) * timeutil.SinD(omega)
	term2 := (1.32 / 3600) * timeutil.SinD(2*l0)
	term3 := (0.23 / 3600) * timeutil.SinD(2*lp)
	term4 := (0.21 / 3600) * timeutil.SinD(2*omega)
	return term1 - term2 - term3 + term4
}

// NutationInObliquity is Δε in degrees.
func NutationInObliquity(l0, lp, omega float64) float64 {
	term1 := (9.2 / 3600) * timeutil.CosD(omega)
	term2 := (0.57 / 3600) * timeutil.CosD(2*l0)
	term3 := (0.10 / 3600) * timeutil.CosD(2*lp)
	term4 := (0.09 / 3600) * timeutil.CosD(2*omega)
	return term1 + term2 + term3 - term4
}
