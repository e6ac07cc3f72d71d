// Package miqat computes daily Islamic prayer times from an observer's
// coordinates, a Gregorian date and a timezone offset.
//
// Times are derived from the Sun's apparent position (Meeus): the solar
// transit gives dhuhr, and the moments the Sun's center crosses configured
// altitudes give fajr, sunrise, asr, sunset, maghrib and isha. Midnight is
// the midpoint between sunset and fajr.
//
// Every computation is pure: the same inputs always give the same output,
// and all functions are safe for concurrent use.
package miqat

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/thurmanmarka/miqat/internal/solver"
	"github.com/thurmanmarka/miqat/internal/sun"
	"github.com/thurmanmarka/miqat/internal/timeutil"
)

// Event identifies one of the daily prayer-time events.
type Event int

const (
	Fajr Event = iota
	Sunrise
	Dhuhr
	Asr
	Sunset
	Maghrib
	Isha
	Midnight

	eventCount = iota
)

var eventNames = [eventCount]string{
	"fajr", "sunrise", "dhuhr", "asr", "sunset", "maghrib", "isha", "midnight",
}

func (e Event) String() string {
	if e < 0 || e >= eventCount {
		return fmt.Sprintf("Event(%d)", int(e))
	}
	return eventNames[e]
}

// Events returns all events in chronological order.
func Events() []Event {
	return []Event{Fajr, Sunrise, Dhuhr, Asr, Sunset, Maghrib, Isha, Midnight}
}

// Coordinates represent an observer's location.
type Coordinates struct {
	Lat float64 // degrees, north positive
	Lon float64 // degrees, east positive (west negative, e.g. -80.5 for 80.5°W)
}

// Date is a Gregorian calendar date. The astronomical day starts at 0h UT
// of this date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

var (
	// ErrAltitudeUnreachable is returned when the Sun does not reach an
	// event's altitude on that date at that location (polar day or night).
	ErrAltitudeUnreachable = solver.ErrAltitudeUnreachable

	// ErrInvalidInput is returned for NaN or infinite inputs.
	ErrInvalidInput = errors.New("invalid input")
)

// EventError reports that one event could not be computed.
type EventError struct {
	Event Event
	Err   error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("%s: %v", e.Event, e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}

// Times holds the local times of one day's events as decimal hours from
// local midnight of Date. Values are not wrapped: midnight is often past
// 24, and a large offset can push an event outside [0, 24).
type Times struct {
	Date   Date
	Offset float64 // hours east of UTC

	hours [eventCount]float64
	errs  [eventCount]error
}

// Hours returns the local decimal hour of e, or an *EventError if the
// event does not occur.
func (t Times) Hours(e Event) (float64, error) {
	if e < 0 || e >= eventCount {
		return 0, fmt.Errorf("unknown event %v", e)
	}
	if t.errs[e] != nil {
		return 0, &EventError{Event: e, Err: t.errs[e]}
	}
	return t.hours[e], nil
}

// Time returns e as an instant in a fixed zone at the Times offset.
func (t Times) Time(e Event) (time.Time, error) {
	h, err := t.Hours(e)
	if err != nil {
		return time.Time{}, err
	}
	zone := time.FixedZone("", int(math.Round(t.Offset*3600)))
	return timeutil.FractionalHoursToTime(t.Date.Year, t.Date.Month, t.Date.Day, h, zone), nil
}

// Err joins the errors of all events that do not occur, or returns nil.
func (t Times) Err() error {
	var errs []error
	for _, e := range Events() {
		if t.errs[e] != nil {
			errs = append(errs, &EventError{Event: e, Err: t.errs[e]})
		}
	}
	return errors.Join(errs...)
}

// Calculator computes prayer times with a fixed Config. It is immutable
// and safe for concurrent use.
type Calculator struct {
	cfg    Config
	logger *zap.Logger
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithConfig sets the angles and output format.
func WithConfig(cfg Config) Option {
	return func(c *Calculator) {
		c.cfg = cfg
	}
}

// WithLogger makes the Calculator report events that do not occur and
// degenerate corrections at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(c *Calculator) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCalculator returns a Calculator using DefaultConfig unless overridden.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		cfg:    DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cfg = c.cfg.withDefaults()
	return c
}

// Config returns the Calculator's configuration.
func (c *Calculator) Config() Config {
	return c.cfg
}

// Compute returns the events for date at loc with local times tz hours
// east of UTC. The returned error is non-nil if some events do not occur;
// the remaining events in Times are still valid.
func (c *Calculator) Compute(date Date, loc Coordinates, tz float64) (Times, error) {
	if err := validate(loc, tz, c.cfg); err != nil {
		return Times{}, err
	}

	day := sun.NewDay(date.Year, int(date.Month), date.Day, loc.Lat, loc.Lon)

	out := Times{Date: date, Offset: tz}
	out.hours[Dhuhr] = day.Transit() + tz

	events := []struct {
		event    Event
		altitude float64
		after    bool
	}{
		{Fajr, -c.cfg.FajrAngle, false},
		{Sunrise, -c.cfg.SunriseAngle, false},
		{Asr, day.ShadowAltitude(c.cfg.AsrShadowFactor), true},
		{Sunset, -c.cfg.SunriseAngle, true},
		{Maghrib, -c.cfg.MaghribAngle, true},
		{Isha, -c.cfg.IshaAngle, true},
	}

	for _, ev := range events {
		res, err := day.HourAngle(ev.altitude, ev.after)
		if err != nil {
			out.errs[ev.event] = err
			c.logger.Debug("event does not occur",
				zap.Stringer("event", ev.event),
				zap.Stringer("date", date),
				zap.Float64("lat", loc.Lat),
				zap.Float64("altitude", ev.altitude),
				zap.Error(err))
			continue
		}
		if res.Degenerate {
			c.logger.Debug("altitude correction skipped",
				zap.Stringer("event", ev.event),
				zap.Stringer("date", date),
				zap.Float64("altitude", ev.altitude))
		}
		out.hours[ev.event] = res.Hours + tz
	}

	switch {
	case out.errs[Fajr] != nil:
		out.errs[Midnight] = out.errs[Fajr]
	case out.errs[Sunset] != nil:
		out.errs[Midnight] = out.errs[Sunset]
	default:
		sunset := out.hours[Sunset]
		out.hours[Midnight] = sunset + (out.hours[Fajr]+24-sunset)/2
	}

	return out, out.Err()
}

// CalculateAt computes the events for t's calendar date, taking the
// offset from t's location at local noon.
func (c *Calculator) CalculateAt(t time.Time, loc Coordinates) (Times, error) {
	date := DateOf(t)
	noon := time.Date(date.Year, date.Month, date.Day, 12, 0, 0, 0, t.Location())
	_, offset := noon.Zone()
	return c.Compute(date, loc, float64(offset)/3600)
}

func validate(loc Coordinates, tz float64, cfg Config) error {
	values := []struct {
		name string
		v    float64
	}{
		{"latitude", loc.Lat},
		{"longitude", loc.Lon},
		{"timezone offset", tz},
		{"fajr angle", cfg.FajrAngle},
		{"sunrise angle", cfg.SunriseAngle},
		{"maghrib angle", cfg.MaghribAngle},
		{"isha angle", cfg.IshaAngle},
		{"asr shadow factor", cfg.AsrShadowFactor},
	}
	for _, v := range values {
		if math.IsNaN(v.v) || math.IsInf(v.v, 0) {
			return fmt.Errorf("%w: %s is %v", ErrInvalidInput, v.name, v.v)
		}
	}
	if cfg.AsrShadowFactor < 0 {
		return fmt.Errorf("%w: asr shadow factor %v is negative", ErrInvalidInput, cfg.AsrShadowFactor)
	}
	return nil
}

// Compute returns the events for date at loc, tz hours east of UTC, using
// cfg. See Calculator.Compute.
func Compute(date Date, loc Coordinates, tz float64, cfg Config) (Times, error) {
	return NewCalculator(WithConfig(cfg)).Compute(date, loc, tz)
}

// Calculate returns the events for date at loc as "HH:MM" strings keyed by
// event name, formatted with cfg.Format. Events that do not occur are
// missing from the map and reported in the error.
func Calculate(date Date, loc Coordinates, tz float64, cfg Config) (map[string]string, error) {
	t, err := Compute(date, loc, tz, cfg)
	if errors.Is(err, ErrInvalidInput) {
		return nil, err
	}
	return t.Format(cfg.Format)
}
