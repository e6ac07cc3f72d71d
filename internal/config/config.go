// Package config resolves the binaries' settings from layered sources: a
// YAML file, a .env file plus MIQAT_* environment variables, and command
// line flags. Later layers win; a method name picks the base angles and
// explicit angles always override it.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/thurmanmarka/miqat"
)

// ErrNoLocation is returned when no layer sets both latitude and longitude.
var ErrNoLocation = errors.New("latitude and longitude are required")

// Overrides is one configuration layer. Nil fields are left unset.
type Overrides struct {
	Lat    *float64
	Lon    *float64
	Zone   *string  // IANA time zone name
	Offset *float64 // hours east of UTC, wins over Zone

	Method *string

	FajrAngle       *float64
	SunriseAngle    *float64
	MaghribAngle    *float64
	IshaAngle       *float64
	AsrShadowFactor *float64

	Format *miqat.OutputFormat
}

// Settings is the resolved configuration.
type Settings struct {
	Coordinates miqat.Coordinates
	Zone        string
	Offset      *float64
	Method      string
	Config      miqat.Config
}

// file mirrors the YAML layout:
//
//	location:
//	  lat: 43.4414
//	  lon: -80.4867
//	  zone: America/Toronto
//	method: calibrated
//	angles:
//	  fajr: 17.98
//	  isha: 14
//	format: mixed
type file struct {
	Location struct {
		Lat    *float64 `yaml:"lat"`
		Lon    *float64 `yaml:"lon"`
		Zone   *string  `yaml:"zone"`
		Offset *float64 `yaml:"offset"`
	} `yaml:"location"`
	Method *string `yaml:"method"`
	Angles struct {
		Fajr            *float64 `yaml:"fajr"`
		Sunrise         *float64 `yaml:"sunrise"`
		Maghrib         *float64 `yaml:"maghrib"`
		Isha            *float64 `yaml:"isha"`
		AsrShadowFactor *float64 `yaml:"asr_shadow_factor"`
	} `yaml:"angles"`
	Format *miqat.OutputFormat `yaml:"format"`
}

// ParseYAML decodes a YAML configuration, rejecting unknown fields.
func ParseYAML(data []byte) (Overrides, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Overrides{}, fmt.Errorf("parsing config: %w", err)
	}
	return Overrides{
		Lat:             f.Location.Lat,
		Lon:             f.Location.Lon,
		Zone:            f.Location.Zone,
		Offset:          f.Location.Offset,
		Method:          f.Method,
		FajrAngle:       f.Angles.Fajr,
		SunriseAngle:    f.Angles.Sunrise,
		MaghribAngle:    f.Angles.Maghrib,
		IshaAngle:       f.Angles.Isha,
		AsrShadowFactor: f.Angles.AsrShadowFactor,
		Format:          f.Format,
	}, nil
}

// ParseFile reads and decodes the YAML file at path.
func ParseFile(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, fmt.Errorf("reading config %q: %w", path, err)
	}
	o, err := ParseYAML(data)
	if err != nil {
		return Overrides{}, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}

// LoadEnvFile loads variables from a .env file into the process
// environment without overriding variables that are already set. A
// missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %q: %w", path, err)
	}
	return nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromEnv reads the MIQAT_* variables through lookup (os.LookupEnv when
// nil).
func FromEnv(lookup LookupFunc) (Overrides, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var o Overrides
	floats := []struct {
		key string
		dst **float64
	}{
		{"MIQAT_LAT", &o.Lat},
		{"MIQAT_LON", &o.Lon},
		{"MIQAT_TZ_OFFSET", &o.Offset},
		{"MIQAT_FAJR_ANGLE", &o.FajrAngle},
		{"MIQAT_SUNRISE_ANGLE", &o.SunriseAngle},
		{"MIQAT_MAGHRIB_ANGLE", &o.MaghribAngle},
		{"MIQAT_ISHA_ANGLE", &o.IshaAngle},
		{"MIQAT_ASR_FACTOR", &o.AsrShadowFactor},
	}
	for _, f := range floats {
		v, ok := lookup(f.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Overrides{}, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = &parsed
	}

	if v, ok := lookup("MIQAT_ZONE"); ok && v != "" {
		o.Zone = &v
	}
	if v, ok := lookup("MIQAT_METHOD"); ok && v != "" {
		o.Method = &v
	}
	if v, ok := lookup("MIQAT_FORMAT"); ok && v != "" {
		f, err := miqat.ParseOutputFormat(v)
		if err != nil {
			return Overrides{}, fmt.Errorf("MIQAT_FORMAT: %w", err)
		}
		o.Format = &f
	}
	return o, nil
}

// Resolve merges layers in order and builds the Settings.
func Resolve(layers ...Overrides) (Settings, error) {
	var merged Overrides
	for _, l := range layers {
		merged.merge(l)
	}

	if merged.Lat == nil || merged.Lon == nil {
		return Settings{}, ErrNoLocation
	}

	method := "default"
	if merged.Method != nil {
		method = *merged.Method
	}
	cfg, err := miqat.MethodByName(method)
	if err != nil {
		return Settings{}, err
	}

	setFloat(&cfg.FajrAngle, merged.FajrAngle)
	setFloat(&cfg.SunriseAngle, merged.SunriseAngle)
	setFloat(&cfg.MaghribAngle, merged.MaghribAngle)
	setFloat(&cfg.IshaAngle, merged.IshaAngle)
	setFloat(&cfg.AsrShadowFactor, merged.AsrShadowFactor)
	if merged.Format != nil {
		cfg.Format = *merged.Format
	}

	s := Settings{
		Coordinates: miqat.Coordinates{Lat: *merged.Lat, Lon: *merged.Lon},
		Offset:      merged.Offset,
		Method:      method,
		Config:      cfg,
	}
	if merged.Zone != nil {
		s.Zone = *merged.Zone
	}
	return s, nil
}

// OffsetFor returns the timezone offset in hours for date: the explicit
// offset if set, otherwise the offset of Zone (or the local zone) at local
// noon.
func (s Settings) OffsetFor(date miqat.Date) (float64, error) {
	if s.Offset != nil {
		return *s.Offset, nil
	}

	loc := time.Local
	if s.Zone != "" {
		var err error
		loc, err = time.LoadLocation(s.Zone)
		if err != nil {
			return 0, fmt.Errorf("invalid time zone %q: %w", s.Zone, err)
		}
	}

	noon := time.Date(date.Year, date.Month, date.Day, 12, 0, 0, 0, loc)
	_, offset := noon.Zone()
	return float64(offset) / 3600, nil
}

func (o *Overrides) merge(l Overrides) {
	pick(&o.Lat, l.Lat)
	pick(&o.Lon, l.Lon)
	// A zone on its own replaces an offset from an earlier layer.
	if l.Zone != nil && l.Offset == nil {
		o.Offset = nil
	}
	pick(&o.Zone, l.Zone)
	pick(&o.Offset, l.Offset)
	pick(&o.Method, l.Method)
	pick(&o.FajrAngle, l.FajrAngle)
	pick(&o.SunriseAngle, l.SunriseAngle)
	pick(&o.MaghribAngle, l.MaghribAngle)
	pick(&o.IshaAngle, l.IshaAngle)
	pick(&o.AsrShadowFactor, l.AsrShadowFactor)
	pick(&o.Format, l.Format)
}

func pick[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
