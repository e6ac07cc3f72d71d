package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/thurmanmarka/miqat"
	"github.com/thurmanmarka/miqat/internal/config"
	"github.com/thurmanmarka/miqat/internal/log"
)

// columns lists the reference CSV's event columns after the date.
var columns = []miqat.Event{
	miqat.Fajr,
	miqat.Sunrise,
	miqat.Dhuhr,
	miqat.Asr,
	miqat.Maghrib,
	miqat.Isha,
}

// errorStats collects per-event differences in minutes (ours - reference).
type errorStats struct {
	signed []float64
	abs    []float64
}

func (s *errorStats) add(v float64) {
	if math.IsNaN(v) {
		return
	}
	s.signed = append(s.signed, v)
	s.abs = append(s.abs, math.Abs(v))
}

type summary struct {
	count        int
	min, max     float64
	mean, stddev float64
}

func summarize(xs []float64) summary {
	if len(xs) == 0 {
		return summary{}
	}
	return summary{
		count:  len(xs),
		min:    floats.Min(xs),
		max:    floats.Max(xs),
		mean:   stat.Mean(xs, nil),
		stddev: stat.StdDev(xs, nil),
	}
}

// diffMinutes returns got - ref in minutes, taking the shorter way around
// the clock so 23:59 against 00:01 is -2, not 1438.
func diffMinutes(got, ref float64) float64 {
	return math.Remainder(got-ref, 24) * 60
}

// parseClock parses HH:MM or HH:MM:SS into decimal hours.
func parseClock(s string) (float64, error) {
	layout := "15:04"
	if strings.Count(s, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, err
	}
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600, nil
}

// profiler compares computed times against reference rows.
type profiler struct {
	calc     *miqat.Calculator
	settings config.Settings
	verbose  bool
	stdout   io.Writer
	out      *csv.Writer

	stats   map[miqat.Event]*errorStats
	rows    int
	skipped int
}

func newProfiler(calc *miqat.Calculator, settings config.Settings, stdout io.Writer) *profiler {
	p := &profiler{
		calc:     calc,
		settings: settings,
		stdout:   stdout,
		stats:    map[miqat.Event]*errorStats{},
	}
	for _, e := range columns {
		p.stats[e] = &errorStats{}
	}
	return p
}

func (p *profiler) writeHeader() error {
	if p.out == nil {
		return nil
	}
	header := []string{"date", "offset"}
	for _, e := range columns {
		header = append(header, e.String()+"_signed")
	}
	return p.out.Write(header)
}

// CSV format:
//
//	date,fajr,sunrise,dhuhr,asr,maghrib,isha
//	2026-02-15,05:50,07:21,12:36,15:30,17:55,19:13
//
// The header row is optional. Times are local HH:MM (24-hour clock) in the
// configured zone; an empty cell skips that event for the row.
func (p *profiler) process(records [][]string) {
	startIdx := 0
	if len(records) > 0 && len(records[0]) >= 1 && strings.EqualFold(strings.TrimSpace(records[0][0]), "date") {
		startIdx = 1
	}

	for i := startIdx; i < len(records); i++ {
		row := records[i]
		p.rows++

		if len(row) < 1+len(columns) {
			log.Warnw("skipping short row", "row", i+1, "columns", len(row), "want", 1+len(columns))
			p.skipped++
			continue
		}

		dateStr := strings.TrimSpace(row[0])
		d, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			log.Warnw("skipping row with invalid date", "row", i+1, "date", dateStr, "error", err)
			p.skipped++
			continue
		}
		date := miqat.DateOf(d)

		offset, err := p.settings.OffsetFor(date)
		if err != nil {
			log.Warnw("skipping row", "row", i+1, "error", err)
			p.skipped++
			continue
		}

		times, err := p.calc.Compute(date, p.settings.Coordinates, offset)
		if errors.Is(err, miqat.ErrInvalidInput) {
			log.Warnw("skipping row", "row", i+1, "error", err)
			p.skipped++
			continue
		}

		rec := []string{dateStr, fmt.Sprintf("%g", offset)}
		var line strings.Builder
		for j, e := range columns {
			cell := strings.TrimSpace(row[1+j])
			signed := math.NaN()

			if cell != "" {
				ref, perr := parseClock(cell)
				got, gerr := times.Hours(e)
				switch {
				case perr != nil:
					log.Warnw("invalid reference time", "row", i+1, "event", e.String(), "value", cell, "error", perr)
				case gerr != nil:
					log.Debugw("event does not occur", "row", i+1, "event", e.String(), "error", gerr)
				default:
					signed = diffMinutes(got, ref)
					fmt.Fprintf(&line, " %s=%+.2f", e, signed)
				}
			}

			p.stats[e].add(signed)
			if math.IsNaN(signed) {
				rec = append(rec, "")
			} else {
				rec = append(rec, fmt.Sprintf("%.6f", signed))
			}
		}

		if p.verbose {
			fmt.Fprintf(p.stdout, "%s%s\n", dateStr, line.String())
		}

		if p.out != nil {
			if err := p.out.Write(rec); err != nil {
				log.Errorw("failed to write outcsv row", "row", i+1, "error", err)
			}
		}
	}
}

func (p *profiler) report() {
	w := p.stdout
	fmt.Fprintln(w, "=== miqat profiler summary ===")
	fmt.Fprintf(w, "Method:  %s %+v\n", p.settings.Method, p.settings.Config)
	fmt.Fprintf(w, "Lat/Lon: %.4f / %.4f\n", p.settings.Coordinates.Lat, p.settings.Coordinates.Lon)
	fmt.Fprintf(w, "Rows:    %d (processed), %d skipped\n", p.rows-p.skipped, p.skipped)

	for _, e := range columns {
		st := p.stats[e]
		if len(st.signed) == 0 {
			fmt.Fprintf(w, "\n%s: no data\n", e)
			continue
		}
		abs := summarize(st.abs)
		signed := summarize(st.signed)

		fmt.Fprintf(w, "\n%s error (minutes):\n", e)
		fmt.Fprintf(w, "  count:  %d\n", abs.count)
		fmt.Fprintf(w, "  min:    %.3f\n", abs.min)
		fmt.Fprintf(w, "  max:    %.3f\n", abs.max)
		fmt.Fprintf(w, "  mean:   %.3f\n", abs.mean)
		fmt.Fprintf(w, "  stddev: %.3f\n", abs.stddev)
		fmt.Fprintf(w, "%s signed error (minutes, ours - ref):\n", e)
		fmt.Fprintf(w, "  min:    %.3f\n", signed.min)
		fmt.Fprintf(w, "  max:    %.3f\n", signed.max)
		fmt.Fprintf(w, "  mean:   %.3f\n", signed.mean)
		fmt.Fprintf(w, "  stddev: %.3f\n", signed.stddev)
	}
}

func main() {
	var (
		lat        = flag.Float64("lat", 0, "latitude in degrees (north positive)")
		lon        = flag.Float64("lon", 0, "longitude in degrees (east positive, west negative)")
		tz         = flag.Float64("tz", 0, "fixed timezone offset in hours (wins over -zone)")
		zone       = flag.String("zone", "", "IANA time zone name of the reference timetable (e.g. America/Toronto)")
		method     = flag.String("method", "", "calculation method: "+strings.Join(miqat.MethodNames(), ", "))
		configPath = flag.String("config", "", "path to a YAML config file")
		refCSV     = flag.String("refcsv", "", "path to reference CSV file (date,fajr,sunrise,dhuhr,asr,maghrib,isha)")
		outCSV     = flag.String("outcsv", "", "optional path to write per-row signed errors")
		verbose    = flag.Bool("verbose", false, "print per-day errors instead of only the summary")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)

	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if *refCSV == "" {
		log.Fatalf("missing -refcsv (path to reference CSV)")
	}

	var flagLayer config.Overrides
	flag.Visit(func(f *flag.Flag) {
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
		}
	})

	var layers []config.Overrides
	if *configPath != "" {
		fileLayer, err := config.ParseFile(*configPath)
		if err != nil {
			log.Fatalf("%v", err)
		}
		layers = append(layers, fileLayer)
	}
	if err := config.LoadEnvFile(".env"); err != nil {
		log.Fatalf("%v", err)
	}
	envLayer, err := config.FromEnv(nil)
	if err != nil {
		log.Fatalf("%v", err)
	}
	settings, err := config.Resolve(append(layers, envLayer, flagLayer)...)
	if err != nil {
		log.Fatalf("%v", err)
	}

	f, err := os.Open(*refCSV)
	if err != nil {
		log.Fatalf("failed to open refcsv %q: %v", *refCSV, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // validated per row
	records, err := r.ReadAll()
	if err != nil {
		log.Fatalf("failed to read CSV: %v", err)
	}
	if len(records) == 0 {
		log.Fatalf("empty CSV file")
	}

	calc := miqat.NewCalculator(
		miqat.WithConfig(settings.Config),
		miqat.WithLogger(log.Logger()),
	)
	p := newProfiler(calc, settings, os.Stdout)
	p.verbose = *verbose

	if *outCSV != "" {
		outFile, err := os.Create(*outCSV)
		if err != nil {
			log.Fatalf("failed to create outcsv %q: %v", *outCSV, err)
		}
		defer outFile.Close()

		p.out = csv.NewWriter(outFile)
		defer p.out.Flush()

		if err := p.writeHeader(); err != nil {
			log.Fatalf("failed to write outcsv header: %v", err)
		}
	}

	log.Infow("profiling reference timetable", "refcsv", *refCSV, "rows", len(records), "method", settings.Method)
	p.process(records)
	p.report()
}
