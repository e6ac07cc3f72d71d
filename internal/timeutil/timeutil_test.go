package timeutil

import (
	"testing"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestJulianDay(t *testing.T) {
	tests := []struct {
		name             string
		year, month, day int
		hours            float64
		want             float64
	}{
		{"J2000 epoch", 2000, 1, 1, 12, 2451545.0},
		{"Sputnik launch", 1957, 10, 4, 0.81 * 24, 2436116.31},
		{"January rolls back a year", 1987, 1, 27, 0, 2446822.5},
		{"mid year noon", 1988, 6, 19, 12, 2447332.0},
		{"leap day", 2024, 2, 29, 0, 2460369.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JulianDay(tt.year, tt.month, tt.day, tt.hours)
			if !scalar.EqualWithinAbs(got, tt.want, 1e-6) {
				t.Errorf("JulianDay(%d, %d, %d, %.3f) = %.6f, want %.6f",
					tt.year, tt.month, tt.day, tt.hours, got, tt.want)
			}
		})
	}
}

func TestJulianDayMatchesMeeus(t *testing.T) {
	for year := 1900; year <= 2100; year += 7 {
		for month := 1; month <= 12; month++ {
			for _, day := range []int{1, 15, 28} {
				for _, hours := range []float64{0, 6.5, 23.75} {
					got := JulianDay(year, month, day, hours)
					want := julian.CalendarGregorianToJD(year, month, float64(day)+hours/24)
					if !scalar.EqualWithinAbs(got, want, 1e-6) {
						t.Fatalf("%04d-%02d-%02d %+.2fh: got %.6f, meeus %.6f",
							year, month, day, hours, got, want)
					}
				}
			}
		}
	}
}

func TestJulianCentury(t *testing.T) {
	if got := JulianCentury(J2000); got != 0 {
		t.Errorf("JulianCentury(J2000) = %v, want 0", got)
	}
	if got := JulianCentury(J2000 + 36525); !scalar.EqualWithinAbs(got, 1, 1e-12) {
		t.Errorf("JulianCentury(J2000+36525) = %v, want 1", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		fn   func(float64) float64
		in   float64
		want float64
	}{
		{"360 positive", Normalize360, 725, 5},
		{"360 negative", Normalize360, -30, 330},
		{"360 exact", Normalize360, 360, 0},
		{"24 negative", Normalize24, -1.5, 22.5},
		{"24 overflow", Normalize24, 25.25, 1.25},
		{"shift small", ShiftAngle, 179, 179},
		{"shift large", ShiftAngle, 359, -1},
		{"shift negative", ShiftAngle, -358, 2},
		{"scale negative dividend", func(x float64) float64 { return NormalizeToScale(x, 1) }, -0.25, 0.75},
		{"scale positive dividend", func(x float64) float64 { return NormalizeToScale(x, 1) }, 1.25, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); !scalar.EqualWithinAbs(got, tt.want, 1e-9) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFractionalHoursToTime(t *testing.T) {
	zone := time.FixedZone("EST", -5*3600)

	tests := []struct {
		name string
		h    float64
		want time.Time
	}{
		{"morning", 6.5, time.Date(2026, time.February, 15, 6, 30, 0, 0, zone)},
		{"past midnight", 24.25, time.Date(2026, time.February, 16, 0, 15, 0, 0, zone)},
		{"previous day", -0.5, time.Date(2026, time.February, 14, 23, 30, 0, 0, zone)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FractionalHoursToTime(2026, time.February, 15, tt.h, zone)
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
