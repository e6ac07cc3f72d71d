package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/thurmanmarka/miqat"
	"github.com/thurmanmarka/miqat/internal/config"
	"github.com/thurmanmarka/miqat/internal/log"
)

const missingTime = "--:--"

func main() {
	code, err := run(os.Args[1:], os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Sync()
	os.Exit(code)
}

// run computes and prints one day. The exit code is 1 when some event does
// not occur and 2 for bad flags.
func run(args []string, stdout io.Writer) (int, error) {
	fs := flag.NewFlagSet("miqat", flag.ContinueOnError)

	lat := fs.Float64("lat", 0, "latitude in degrees (north positive)")
	lon := fs.Float64("lon", 0, "longitude in degrees (east positive, west negative)")
	dateS := fs.String("date", "", "date in YYYY-MM-DD (optional, defaults to today in local time)")
	tz := fs.Float64("tz", 0, "timezone offset in hours east of UTC, e.g. -4 or 5.5 (wins over -zone)")
	zone := fs.String("zone", "", "IANA time zone name, e.g. America/Toronto (default local zone)")
	method := fs.String("method", "", "calculation method: "+strings.Join(miqat.MethodNames(), ", "))
	fajr := fs.Float64("fajr", 0, "fajr depression angle in degrees")
	sunrise := fs.Float64("sunrise", 0, "sunrise/sunset depression angle in degrees")
	maghrib := fs.Float64("maghrib", 0, "maghrib depression angle in degrees")
	isha := fs.Float64("isha", 0, "isha depression angle in degrees")
	asrFactor := fs.Float64("asr-factor", 0, "asr shadow factor (1 standard, 2 Hanafi)")
	var format miqat.OutputFormat
	fs.TextVar(&format, "format", miqat.FormatMixed, "rounding: mixed, floor or round")
	configPath := fs.String("config", "", "path to a YAML config file")
	envPath := fs.String("env", ".env", "path to a .env file (ignored if missing)")
	jsonOut := fs.Bool("json", false, "output result as JSON")
	debug := fs.Bool("debug", false, "enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `Usage: miqat [flags]

Settings are read from -config, then .env and MIQAT_* variables, then flags.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0, nil
		}
		return 2, nil
	}

	if err := log.Init(*debug); err != nil {
		return 1, err
	}

	var flagLayer config.Overrides
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lat":
			flagLayer.Lat = lat
		case "lon":
			flagLayer.Lon = lon
		case "tz":
			flagLayer.Offset = tz
		case "zone":
			flagLayer.Zone = zone
		case "method":
			flagLayer.Method = method
		case "fajr":
			flagLayer.FajrAngle = fajr
		case "sunrise":
			flagLayer.SunriseAngle = sunrise
		case "maghrib":
			flagLayer.MaghribAngle = maghrib
		case "isha":
			flagLayer.IshaAngle = isha
		case "asr-factor":
			flagLayer.AsrShadowFactor = asrFactor
		case "format":
			flagLayer.Format = &format
		}
	})

	settings, err := loadSettings(*configPath, *envPath, flagLayer)
	if err != nil {
		return 1, err
	}

	date := miqat.DateOf(time.Now())
	if *dateS != "" {
		d, err := time.Parse("2006-01-02", *dateS)
		if err != nil {
			return 1, fmt.Errorf("invalid -date %q: %w", *dateS, err)
		}
		date = miqat.DateOf(d)
	}

	offset, err := settings.OffsetFor(date)
	if err != nil {
		return 1, err
	}

	log.Debugw("computing prayer times",
		"date", date.String(),
		"lat", settings.Coordinates.Lat,
		"lon", settings.Coordinates.Lon,
		"offset", offset,
		"method", settings.Method,
		"config", fmt.Sprintf("%+v", settings.Config))

	calc := miqat.NewCalculator(
		miqat.WithConfig(settings.Config),
		miqat.WithLogger(log.Logger()),
	)
	times, err := calc.Compute(date, settings.Coordinates, offset)
	if errors.Is(err, miqat.ErrInvalidInput) {
		return 1, err
	}

	formatted, err := times.Format(settings.Config.Format)
	if errors.Is(err, miqat.ErrInvalidInput) {
		return 1, err
	}

	missing := map[string]string{}
	for _, e := range miqat.Events() {
		if _, err := times.Hours(e); err != nil {
			missing[e.String()] = err.Error()
			log.Warnw("event does not occur", "event", e.String(), "date", date.String(), "error", err)
		}
	}

	if *jsonOut {
		err = printJSON(stdout, settings, times, formatted, missing)
	} else {
		err = printHuman(stdout, settings, times, formatted)
	}
	if err != nil {
		return 1, err
	}

	if len(missing) > 0 {
		return 1, nil
	}
	return 0, nil
}

func loadSettings(configPath, envPath string, flagLayer config.Overrides) (config.Settings, error) {
	var layers []config.Overrides

	if configPath != "" {
		fileLayer, err := config.ParseFile(configPath)
		if err != nil {
			return config.Settings{}, err
		}
		layers = append(layers, fileLayer)
	}

	if err := config.LoadEnvFile(envPath); err != nil {
		return config.Settings{}, err
	}
	envLayer, err := config.FromEnv(nil)
	if err != nil {
		return config.Settings{}, err
	}
	layers = append(layers, envLayer, flagLayer)

	settings, err := config.Resolve(layers...)
	if errors.Is(err, config.ErrNoLocation) {
		return config.Settings{}, fmt.Errorf("%w: use -lat and -lon, MIQAT_LAT/MIQAT_LON or a config file", err)
	}
	return settings, err
}

func formatOffset(hours float64) string {
	zone := time.FixedZone("", int(math.Round(hours*3600)))
	return time.Date(2000, 1, 1, 0, 0, 0, 0, zone).Format("-07:00")
}

func printHuman(w io.Writer, s config.Settings, times miqat.Times, formatted map[string]string) error {
	fmt.Fprintf(w, "Prayer times for lat=%.6f lon=%.6f\n", s.Coordinates.Lat, s.Coordinates.Lon)
	fmt.Fprintf(w, "Date: %s (UTC%s, method %s, %s)\n\n", times.Date, formatOffset(times.Offset), s.Method, s.Config.Format)

	for _, e := range miqat.Events() {
		v, ok := formatted[e.String()]
		if !ok {
			v = missingTime
		}
		name := e.String()
		if _, err := fmt.Fprintf(w, "%-9s %s\n", strings.ToUpper(name[:1])+name[1:]+":", v); err != nil {
			return err
		}
	}
	return nil
}

type jsonOutput struct {
	Latitude  float64            `json:"latitude"`
	Longitude float64            `json:"longitude"`
	Date      string             `json:"date"` // YYYY-MM-DD
	Offset    float64            `json:"offset"`
	Zone      string             `json:"zone,omitempty"`
	Method    string             `json:"method"`
	Format    miqat.OutputFormat `json:"format"`
	Times     map[string]string  `json:"times"`
	Hours     map[string]float64 `json:"hours"`
	Missing   map[string]string  `json:"missing,omitempty"`
}

func printJSON(w io.Writer, s config.Settings, times miqat.Times, formatted, missing map[string]string) error {
	out := jsonOutput{
		Latitude:  s.Coordinates.Lat,
		Longitude: s.Coordinates.Lon,
		Date:      times.Date.String(),
		Offset:    times.Offset,
		Zone:      s.Zone,
		Method:    s.Method,
		Format:    s.Config.Format,
		Times:     formatted,
		Hours:     map[string]float64{},
		Missing:   missing,
	}
	for _, e := range miqat.Events() {
		if h, err := times.Hours(e); err == nil {
			out.Hours[e.String()] = h
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
