package miqat_test

import (
	"errors"
	"fmt"
	"time"

	"github.com/thurmanmarka/miqat"
)

// ExampleCalculate demonstrates computing a day's prayer times.
func ExampleCalculate() {
	loc := miqat.Coordinates{
		Lat: 43.4414,  // Waterloo, ON
		Lon: -80.4867, // Waterloo longitude
	}
	date := miqat.Date{Year: 2026, Month: time.June, Day: 21}

	times, err := miqat.Calculate(date, loc, -4, miqat.DefaultConfig())
	if err != nil {
		panic(err)
	}

	for _, e := range miqat.Events() {
		fmt.Printf("%-8s %s\n", e, times[e.String()])
	}
	// Intentionally no // Output: block so this stays a documentation example
	// and is not validated as a test.
}

// ExampleCalculator_CalculateAt demonstrates taking the offset from an
// IANA time zone and using a named method.
func ExampleCalculator_CalculateAt() {
	cfg, err := miqat.MethodByName("calibrated")
	if err != nil {
		panic(err)
	}
	c := miqat.NewCalculator(miqat.WithConfig(cfg))

	tz, _ := time.LoadLocation("America/Toronto")
	times, err := c.CalculateAt(time.Date(2026, time.February, 15, 0, 0, 0, 0, tz),
		miqat.Coordinates{Lat: 43.4296, Lon: -80.4214})
	if err != nil {
		panic(err)
	}

	fajr, _ := times.Time(miqat.Fajr)
	isha, _ := times.Time(miqat.Isha)
	fmt.Println("Fajr:", fajr.Format(time.RFC3339))
	fmt.Println("Isha:", isha.Format(time.RFC3339))
}

// ExampleTimes_Hours demonstrates telling a missing event apart from a
// computed one.
func ExampleTimes_Hours() {
	tromso := miqat.Coordinates{Lat: 69.6496, Lon: 18.9560}
	date := miqat.Date{Year: 2025, Month: time.June, Day: 21}

	times, _ := miqat.Compute(date, tromso, 2, miqat.DefaultConfig())

	if _, err := times.Hours(miqat.Sunset); errors.Is(err, miqat.ErrAltitudeUnreachable) {
		fmt.Println("no sunset today")
	}
	// Output: no sunset today
}
