// Package config loads the YAML file listing which DevConf locations to
// scrape and how their output should be labelled.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/devconf-schedule/internal/agenda"
	"github.com/pfrederiksen/devconf-schedule/internal/schedule"
)

// Defaults applied by Normalize.
const (
	DefaultBaseURL  = "https://devconf.co.za"
	DefaultTimezone = "Africa/Johannesburg"
)

// Event sources.
const (
	// SourceAgenda parses the location's published agenda page.
	SourceAgenda = "agenda"
	// SourceSessionize builds the schedule from the dataset alone.
	SourceSessionize = "sessionize"
)

const dateLayout = "2006-01-02"

// Date is a calendar date written as YYYY-MM-DD.
type Date struct {
	time.Time
}

// UnmarshalYAML parses a YYYY-MM-DD scalar.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("line %d: invalid date %q, want YYYY-MM-DD", value.Line, s)
	}
	d.Time = t
	return nil
}

// MarshalYAML writes the date as YYYY-MM-DD.
func (d Date) MarshalYAML() (interface{}, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.Format(dateLayout), nil
}

// EventConfig is one DevConf location.
type EventConfig struct {
	// Name is the location label used in titles and file names, e.g. "Cape Town".
	Name string `yaml:"name"`
	// ShortName is the agenda page path on the DevConf site, e.g. "cpt".
	ShortName string `yaml:"short_name"`
	// Day is the date the location's conference runs on.
	Day Date `yaml:"day"`
	// Source is SourceAgenda or SourceSessionize.
	Source string `yaml:"source,omitempty"`
}

// Config is the top-level configuration.
type Config struct {
	SessionizeID string `yaml:"sessionize_id"`
	UseArchive   bool   `yaml:"use_archive"`
	BaseURL      string `yaml:"base_url"`
	Timezone     string `yaml:"timezone"`
	TitlePrefix  string `yaml:"title_prefix"`
	Language     string `yaml:"language"`
	// Strict makes a missing slot id, room label or speaker fail the whole
	// location instead of skipping the row.
	Strict       bool          `yaml:"strict"`
	RequireVenue bool          `yaml:"require_venue"`
	Render       bool          `yaml:"render"`
	Events       []EventConfig `yaml:"events"`
}

// Normalize fills in defaults for unset fields.
func (c *Config) Normalize() {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.TitlePrefix == "" {
		c.TitlePrefix = schedule.DefaultTitlePrefix
	}
	if c.Events == nil {
		c.Events = []EventConfig{}
	}
	for i := range c.Events {
		e := &c.Events[i]
		e.Name = strings.TrimSpace(e.Name)
		e.ShortName = strings.TrimSpace(e.ShortName)
		e.Source = strings.ToLower(strings.TrimSpace(e.Source))
		if e.Source == "" {
			e.Source = SourceAgenda
		}
	}
}

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.SessionizeID) == "" {
		errs = append(errs, errors.New("sessionize_id is required"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
	}
	if len(c.Events) == 0 {
		errs = append(errs, errors.New("at least one event is required"))
	}

	seen := make(map[string]bool)
	for i, e := range c.Events {
		if e.Name == "" {
			errs = append(errs, fmt.Errorf("events[%d]: name is required", i))
		}
		if e.ShortName == "" {
			errs = append(errs, fmt.Errorf("events[%d]: short_name is required", i))
		} else if seen[e.ShortName] {
			errs = append(errs, fmt.Errorf("events[%d]: duplicate short_name %q", i, e.ShortName))
		}
		seen[e.ShortName] = true
		if e.Day.IsZero() {
			errs = append(errs, fmt.Errorf("events[%d]: day is required", i))
		}
		if e.Source != SourceAgenda && e.Source != SourceSessionize {
			errs = append(errs, fmt.Errorf("events[%d]: unknown source %q", i, e.Source))
		}
	}

	return errors.Join(errs...)
}

// Location loads the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Options builds the agenda parser options for one event.
func (c *Config) Options(e EventConfig) (agenda.Options, error) {
	loc, err := c.Location()
	if err != nil {
		return agenda.Options{}, err
	}
	return agenda.Options{
		Location:     e.Name,
		Day:          time.Date(e.Day.Year(), e.Day.Month(), e.Day.Day(), 0, 0, 0, 0, loc),
		Zone:         loc,
		Strict:       c.Strict,
		RequireVenue: c.RequireVenue,
	}, nil
}

// Select returns the events whose short names are listed, in config order.
// An empty list selects every event. Unknown names are an error.
func (c *Config) Select(shortNames []string) ([]EventConfig, error) {
	if len(shortNames) == 0 {
		return c.Events, nil
	}

	wanted := make(map[string]bool, len(shortNames))
	for _, name := range shortNames {
		wanted[strings.TrimSpace(name)] = true
	}

	var selected []EventConfig
	for _, e := range c.Events {
		if wanted[e.ShortName] {
			selected = append(selected, e)
			delete(wanted, e.ShortName)
		}
	}
	if len(wanted) > 0 {
		var unknown []string
		for _, name := range shortNames {
			if wanted[strings.TrimSpace(name)] {
				unknown = append(unknown, strings.TrimSpace(name))
			}
		}
		return nil, fmt.Errorf("unknown event(s): %s", strings.Join(unknown, ", "))
	}
	return selected, nil
}

// Parse decodes, normalizes and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Load reads the configuration at path.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}
