package miqat_test

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/thurmanmarka/miqat"
)

var (
	waterloo = miqat.Coordinates{Lat: 43.4414, Lon: -80.4867}
	phoenix  = miqat.Coordinates{Lat: 33.4484, Lon: -112.0740}
	quito    = miqat.Coordinates{Lat: -0.1807, Lon: -78.4678}
	capeTown = miqat.Coordinates{Lat: -33.9249, Lon: 18.4241}
	makkah   = miqat.Coordinates{Lat: 21.4225, Lon: 39.8262}
)

func mustHours(t *testing.T, times miqat.Times, e miqat.Event) float64 {
	t.Helper()
	h, err := times.Hours(e)
	if err != nil {
		t.Fatalf("%s: %v", e, err)
	}
	return h
}

func TestOrdering(t *testing.T) {
	cases := []struct {
		name string
		loc  miqat.Coordinates
		tz   float64
		date miqat.Date
	}{
		{"Waterloo summer", waterloo, -4, miqat.Date{Year: 2026, Month: time.June, Day: 21}},
		{"Waterloo winter", waterloo, -5, miqat.Date{Year: 2026, Month: time.February, Day: 15}},
		{"Phoenix autumn", phoenix, -7, miqat.Date{Year: 2025, Month: time.November, Day: 28}},
		{"Quito equinox", quito, -5, miqat.Date{Year: 2025, Month: time.March, Day: 20}},
		{"Cape Town winter", capeTown, 2, miqat.Date{Year: 2025, Month: time.June, Day: 21}},
		{"Makkah", makkah, 3, miqat.Date{Year: 2026, Month: time.January, Day: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			times, err := miqat.Compute(tc.date, tc.loc, tc.tz, miqat.DefaultConfig())
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}

			events := miqat.Events()
			prev := math.Inf(-1)
			for _, e := range events[:len(events)-1] { // midnight is after isha by construction
				h := mustHours(t, times, e)
				if h < prev {
					t.Errorf("%s at %.4f is before the previous event at %.4f", e, h, prev)
				}
				prev = h
			}

			midnight := mustHours(t, times, miqat.Midnight)
			if midnight < mustHours(t, times, miqat.Sunset) {
				t.Errorf("midnight %.4f before sunset", midnight)
			}
		})
	}
}

func TestDeterminism(t *testing.T) {
	date := miqat.Date{Year: 2026, Month: time.June, Day: 21}
	cfg := miqat.DefaultConfig()

	a, errA := miqat.Calculate(date, waterloo, -4, cfg)
	b, errB := miqat.Calculate(date, waterloo, -4, cfg)
	if errA != nil || errB != nil {
		t.Fatalf("Calculate errors: %v, %v", errA, errB)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("outputs differ:\n%v\n%v", a, b)
	}

	ta, _ := miqat.Compute(date, waterloo, -4, cfg)
	tb, _ := miqat.Compute(date, waterloo, -4, cfg)
	if ta != tb {
		t.Errorf("Times differ: %+v vs %+v", ta, tb)
	}
}

func TestSunriseSunsetSymmetry(t *testing.T) {
	dates := []miqat.Date{
		{Year: 2026, Month: time.June, Day: 21},
		{Year: 2026, Month: time.December, Day: 21},
	}

	for _, date := range dates {
		t.Run(date.String(), func(t *testing.T) {
			times, err := miqat.Compute(date, waterloo, -5, miqat.DefaultConfig())
			if err != nil {
				t.Fatal(err)
			}
			noon := mustHours(t, times, miqat.Dhuhr)
			morning := noon - mustHours(t, times, miqat.Sunrise)
			evening := mustHours(t, times, miqat.Sunset) - noon

			if d := math.Abs(morning-evening) * 60; d > 0.5 {
				t.Errorf("sunrise is %.2f min from noon, sunset %.2f min (diff %.2f)",
					morning*60, evening*60, d)
			}
		})
	}
}

func minutesOf(t *testing.T, hhmm string) int {
	t.Helper()
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		t.Fatalf("parse %q: %v", hhmm, err)
	}
	return parsed.Hour()*60 + parsed.Minute()
}

func TestTimezoneLinearity(t *testing.T) {
	date := miqat.Date{Year: 2026, Month: time.June, Day: 21}
	const base = -4.0

	ref, err := miqat.Compute(date, waterloo, base, miqat.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	refStrings, err := ref.Format(miqat.FormatMixed)
	if err != nil {
		t.Fatal(err)
	}

	for _, k := range []float64{1, 0.5, -3.75, 5.5, 12, -10} {
		shifted, err := miqat.Compute(date, waterloo, base+k, miqat.DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range miqat.Events() {
			got := mustHours(t, shifted, e) - mustHours(t, ref, e)
			if !scalar.EqualWithinAbs(got, k, 1e-9) {
				t.Errorf("k=%v %s: shifted by %v hours", k, e, got)
			}
		}

		if k != math.Trunc(k) {
			continue
		}
		shiftedStrings, err := shifted.Format(miqat.FormatMixed)
		if err != nil {
			t.Fatal(err)
		}
		for name, s := range refStrings {
			diff := minutesOf(t, shiftedStrings[name]) - minutesOf(t, s)
			want := int(k) * 60
			if ((diff-want)%1440+1440)%1440 != 0 {
				t.Errorf("k=%v %s: %s -> %s", k, name, s, shiftedStrings[name])
			}
		}
	}
}

func TestPolarDayAndNight(t *testing.T) {
	north := miqat.Coordinates{Lat: 70, Lon: 25}

	t.Run("winter solstice", func(t *testing.T) {
		date := miqat.Date{Year: 2025, Month: time.December, Day: 21}
		times, err := miqat.Compute(date, north, 1, miqat.DefaultConfig())
		if !errors.Is(err, miqat.ErrAltitudeUnreachable) {
			t.Fatalf("err = %v, want ErrAltitudeUnreachable", err)
		}

		var evErr *miqat.EventError
		_, err = times.Hours(miqat.Sunrise)
		if !errors.As(err, &evErr) || evErr.Event != miqat.Sunrise {
			t.Fatalf("Hours(Sunrise) err = %v, want *EventError for sunrise", err)
		}
		if _, err := times.Hours(miqat.Midnight); !errors.Is(err, miqat.ErrAltitudeUnreachable) {
			t.Errorf("midnight without sunset: err = %v", err)
		}
		if _, err := times.Hours(miqat.Fajr); err != nil {
			t.Errorf("fajr should still occur: %v", err)
		}
		if _, err := times.Hours(miqat.Dhuhr); err != nil {
			t.Errorf("dhuhr always occurs: %v", err)
		}
	})

	t.Run("summer solstice", func(t *testing.T) {
		date := miqat.Date{Year: 2025, Month: time.June, Day: 21}
		out, err := miqat.Calculate(date, north, 2, miqat.DefaultConfig())
		if !errors.Is(err, miqat.ErrAltitudeUnreachable) {
			t.Fatalf("err = %v, want ErrAltitudeUnreachable", err)
		}
		for _, name := range []string{"fajr", "sunrise", "sunset", "isha", "midnight"} {
			if s, ok := out[name]; ok {
				t.Errorf("%s = %q, want missing", name, s)
			}
		}
		if _, ok := out["dhuhr"]; !ok {
			t.Errorf("dhuhr missing from %v", out)
		}
		for name, s := range out {
			if len(s) != 5 || s[2] != ':' {
				t.Errorf("%s = %q, not HH:MM", name, s)
			}
		}
	})
}

func TestInvalidInput(t *testing.T) {
	date := miqat.Date{Year: 2026, Month: time.June, Day: 21}

	tests := []struct {
		name string
		loc  miqat.Coordinates
		tz   float64
		cfg  func(*miqat.Config)
	}{
		{"NaN latitude", miqat.Coordinates{Lat: math.NaN(), Lon: 0}, 0, nil},
		{"infinite longitude", miqat.Coordinates{Lat: 0, Lon: math.Inf(1)}, 0, nil},
		{"NaN offset", waterloo, math.NaN(), nil},
		{"NaN fajr", waterloo, -4, func(c *miqat.Config) { c.FajrAngle = math.NaN() }},
		{"negative shadow", waterloo, -4, func(c *miqat.Config) { c.AsrShadowFactor = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := miqat.DefaultConfig()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			out, err := miqat.Calculate(date, tt.loc, tt.tz, cfg)
			if !errors.Is(err, miqat.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
			if out != nil {
				t.Errorf("out = %v, want nil", out)
			}
		})
	}
}

func TestAsrShadowFactor(t *testing.T) {
	date := miqat.Date{Year: 2026, Month: time.June, Day: 21}

	standard, err := miqat.Compute(date, waterloo, -4, miqat.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	cfg := miqat.DefaultConfig()
	cfg.AsrShadowFactor = 2
	hanafi, err := miqat.Compute(date, waterloo, -4, cfg)
	if err != nil {
		t.Fatal(err)
	}

	a1 := mustHours(t, standard, miqat.Asr)
	a2 := mustHours(t, hanafi, miqat.Asr)
	if !(a2 > a1 && a2 < mustHours(t, hanafi, miqat.Sunset)) {
		t.Errorf("two-shadow asr %.4f should fall between one-shadow asr %.4f and sunset", a2, a1)
	}

	cfg.AsrShadowFactor = 0 // zero means one shadow length
	zero, err := miqat.Compute(date, waterloo, -4, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := mustHours(t, zero, miqat.Asr); got != a1 {
		t.Errorf("zero shadow factor asr = %v, want %v", got, a1)
	}
}

func TestTimesTime(t *testing.T) {
	date := miqat.Date{Year: 2026, Month: time.February, Day: 15}
	times, err := miqat.Compute(date, waterloo, -5, miqat.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	noon, err := times.Time(miqat.Dhuhr)
	if err != nil {
		t.Fatal(err)
	}
	if _, off := noon.Zone(); off != -5*3600 {
		t.Errorf("zone offset = %d, want %d", off, -5*3600)
	}
	if noon.Day() != 15 || noon.Hour() != 12 {
		t.Errorf("dhuhr = %v, want around 12:36 on the 15th", noon)
	}

	midnight, err := times.Time(miqat.Midnight)
	if err != nil {
		t.Fatal(err)
	}
	fajr, _ := times.Time(miqat.Fajr)
	sunset, _ := times.Time(miqat.Sunset)
	want := sunset.Add(fajr.Add(24 * time.Hour).Sub(sunset) / 2)
	if d := midnight.Sub(want); d < -time.Second || d > time.Second {
		t.Errorf("midnight = %v, want %v", midnight, want)
	}
}

func TestCalculateAt(t *testing.T) {
	loc, err := time.LoadLocation("America/Toronto")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}

	c := miqat.NewCalculator()
	summer, err := c.CalculateAt(time.Date(2026, time.June, 21, 8, 0, 0, 0, loc), waterloo)
	if err != nil {
		t.Fatal(err)
	}
	if summer.Offset != -4 {
		t.Errorf("summer offset = %v, want -4", summer.Offset)
	}

	winter, err := c.CalculateAt(time.Date(2026, time.February, 15, 23, 30, 0, 0, loc), waterloo)
	if err != nil {
		t.Fatal(err)
	}
	if winter.Offset != -5 || winter.Date != (miqat.Date{Year: 2026, Month: time.February, Day: 15}) {
		t.Errorf("winter = %v offset %v, want 2026-02-15 offset -5", winter.Date, winter.Offset)
	}

	direct, _ := miqat.Compute(winter.Date, waterloo, -5, miqat.DefaultConfig())
	if direct != winter {
		t.Errorf("CalculateAt differs from Compute")
	}
}

func TestMethodByName(t *testing.T) {
	cfg, err := miqat.MethodByName(" Calibrated ")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FajrAngle != 17.98 || cfg.MaghribAngle != 3.79 || cfg.IshaAngle != 14 {
		t.Errorf("calibrated = %+v", cfg)
	}

	if _, err := miqat.MethodByName("nope"); !errors.Is(err, miqat.ErrUnknownMethod) {
		t.Errorf("err = %v, want ErrUnknownMethod", err)
	}

	names := miqat.MethodNames()
	if !reflect.DeepEqual(names, []string{"astronomical", "calibrated", "default"}) {
		t.Errorf("MethodNames() = %v", names)
	}

	def, _ := miqat.MethodByName("default")
	if def != miqat.DefaultConfig() {
		t.Errorf("default method %+v != DefaultConfig()", def)
	}
}

func TestEventString(t *testing.T) {
	want := []string{"fajr", "sunrise", "dhuhr", "asr", "sunset", "maghrib", "isha", "midnight"}
	for i, e := range miqat.Events() {
		if e.String() != want[i] {
			t.Errorf("Events()[%d] = %q, want %q", i, e, want[i])
		}
	}
	if s := miqat.Event(42).String(); s != "Event(42)" {
		t.Errorf("unknown event String() = %q", s)
	}
}
