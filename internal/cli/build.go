package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/devconf-schedule/internal/agenda"
	"github.com/pfrederiksen/devconf-schedule/internal/calendar"
	"github.com/pfrederiksen/devconf-schedule/internal/config"
	"github.com/pfrederiksen/devconf-schedule/internal/logger"
	"github.com/pfrederiksen/devconf-schedule/internal/pentabarf"
	"github.com/pfrederiksen/devconf-schedule/internal/schedule"
	"github.com/pfrederiksen/devconf-schedule/internal/scraper"
	"github.com/pfrederiksen/devconf-schedule/internal/sessionize"
	"github.com/pfrederiksen/devconf-schedule/internal/storage"
)

// Fetcher downloads the inputs of a location. *scraper.Scraper satisfies it.
type Fetcher interface {
	FetchSessionize(ctx context.Context, id string, day time.Time, archive bool) (*sessionize.Event, error)
	FetchAgenda(ctx context.Context, shortName string, day time.Time, archive bool) (string, error)
}

// Builder turns configured locations into schedule files, one location at
// a time. A failing location is recorded and the run moves on.
type Builder struct {
	Config  *config.Config
	Fetcher Fetcher
	Storage *storage.Storage
	Formats []string
	Archive bool

	datasets map[string]*sessionize.Event
}

// Run builds every event in order and reports the outcome of each.
func (b *Builder) Run(ctx context.Context, events []config.EventConfig) *RunResult {
	result := &RunResult{
		StartedAt: time.Now().UTC(),
		Locations: make([]LocationResult, 0, len(events)),
	}

	logger.SetGauge("scrape.locations", float64(len(events)))
	start := time.Now()
	for _, e := range events {
		loc := b.buildLocation(ctx, e)
		if loc.Error != "" {
			result.Failed++
		} else {
			result.Succeeded++
		}
		result.Locations = append(result.Locations, loc)
	}
	logger.RecordTiming("scrape.total", time.Since(start))

	return result
}

func (b *Builder) buildLocation(ctx context.Context, e config.EventConfig) LocationResult {
	start := time.Now()
	loc := LocationResult{
		Name:      e.Name,
		ShortName: e.ShortName,
		Source:    e.Source,
		Day:       e.Day.Format("2006-01-02"),
	}

	log := logger.Default().With(logger.Fields{
		"location":   e.Name,
		"short_name": e.ShortName,
	})

	fail := func(err error) LocationResult {
		loc.Error = err.Error()
		loc.Duration = time.Since(start)
		logger.IncrCounter("scrape.failed")
		log.Error("Location failed", nil, err)
		return loc
	}

	ev, err := b.Build(ctx, e)
	if err != nil {
		return fail(err)
	}
	loc.Venue = ev.Venue
	loc.Timeslots = len(ev.Timeslots)
	loc.Sessions = ev.SessionCount()

	files, err := b.Write(ev)
	loc.Files = files
	if err != nil {
		return fail(err)
	}

	loc.Duration = time.Since(start)
	logger.IncrCounter("scrape.succeeded")
	log.Info("Location built", logger.Fields{
		"timeslots": loc.Timeslots,
		"sessions":  loc.Sessions,
		"files":     len(files),
	})
	return loc
}

// Build fetches and parses one location into an Event.
func (b *Builder) Build(ctx context.Context, e config.EventConfig) (*agenda.Event, error) {
	opts, err := b.Config.Options(e)
	if err != nil {
		return nil, err
	}

	data, err := b.dataset(ctx, e)
	if err != nil {
		return nil, err
	}
	dir := sessionize.NewDirectory(data)

	if e.Source == config.SourceSessionize {
		ev, err := agenda.FromSessionize(dir, e.Name, opts.Zone)
		if err != nil {
			return nil, fmt.Errorf("building %s from sessionize: %w", e.Name, err)
		}
		return ev, nil
	}

	html, err := b.Fetcher.FetchAgenda(ctx, e.ShortName, e.Day.Time, b.Archive)
	if scraper.IsNotFound(err) {
		return nil, fmt.Errorf("%w (set source: sessionize if %s publishes no agenda page)", err, e.Name)
	}
	if err != nil {
		return nil, err
	}
	ev, err := agenda.Parse(strings.NewReader(html), dir, opts)
	if err != nil {
		return nil, fmt.Errorf("parsing %s agenda: %w", e.Name, err)
	}
	return ev, nil
}

// dataset fetches the Sessionize data once per snapshot. Live data is shared
// by every location; archived data is per day.
func (b *Builder) dataset(ctx context.Context, e config.EventConfig) (*sessionize.Event, error) {
	key := "live"
	if b.Archive {
		key = e.Day.Format("20060102")
	}
	if data, ok := b.datasets[key]; ok {
		return data, nil
	}

	data, err := b.Fetcher.FetchSessionize(ctx, b.Config.SessionizeID, e.Day.Time, b.Archive)
	if err != nil {
		return nil, err
	}
	if b.datasets == nil {
		b.datasets = make(map[string]*sessionize.Event)
	}
	b.datasets[key] = data
	return data, nil
}

// Write renders ev in every selected format and stores the files. It
// returns the paths written before any failure.
func (b *Builder) Write(ev *agenda.Event) ([]string, error) {
	var files []string
	for _, format := range b.Formats {
		var (
			path string
			err  error
		)
		if format == storage.FormatJSON {
			path, err = b.Storage.SaveEvent(ev)
		} else {
			var data []byte
			data, err = b.Render(ev, format)
			if err == nil {
				path, err = b.Storage.Write(storage.FileName(ev.StartsAt.Year(), ev.Location, format), data)
			}
		}
		if err != nil {
			return files, fmt.Errorf("writing %s output: %w", format, err)
		}
		logger.Debug("Wrote schedule", logger.Fields{"path": path, "format": format})
		files = append(files, path)
	}
	return files, nil
}

// Render serializes ev in one format.
func (b *Builder) Render(ev *agenda.Event, format string) ([]byte, error) {
	switch format {
	case storage.FormatPentabarf:
		s := schedule.Project(ev,
			schedule.WithTitlePrefix(b.Config.TitlePrefix),
			schedule.WithLanguage(b.Config.Language),
		)
		logger.Debug("Projected schedule", logger.Fields{
			"location": ev.Location,
			"days":     len(s.Days),
			"events":   s.EventCount(),
		})
		return pentabarf.Marshal(s)
	case storage.FormatXCal:
		return calendar.MarshalXCal(schedule.Flatten(ev))
	case storage.FormatICS:
		return []byte(calendar.GenerateICS(ev, b.Config.TitlePrefix)), nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// ParseFormats reads a comma-separated format list. "all" selects every
// format.
func ParseFormats(s string) ([]string, error) {
	known := make(map[string]bool)
	for _, f := range storage.Formats() {
		known[f] = true
	}

	var formats []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		f := strings.ToLower(strings.TrimSpace(part))
		if f == "" {
			continue
		}
		if f == "all" {
			return storage.Formats(), nil
		}
		if !known[f] {
			return nil, fmt.Errorf("invalid format: %s (must be one of %s or 'all')", f, strings.Join(storage.Formats(), ", "))
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("no output format selected")
	}
	return formats, nil
}
