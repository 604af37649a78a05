package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pfrederiksen/devconf-schedule/internal/logger"
)

// OutputFormat specifies the summary format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// LocationResult is the outcome of one location.
type LocationResult struct {
	Name      string        `json:"name"`
	ShortName string        `json:"short_name"`
	Source    string        `json:"source"`
	Day       string        `json:"day"`
	Venue     string        `json:"venue,omitempty"`
	Timeslots int           `json:"timeslots"`
	Sessions  int           `json:"sessions"`
	Files     []string      `json:"files,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
	Error     string        `json:"error,omitempty"`
}

// RunResult summarizes a whole run.
type RunResult struct {
	StartedAt time.Time        `json:"started_at"`
	Locations []LocationResult `json:"locations"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Metrics   *logger.Snapshot `json:"metrics,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *RunResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *RunResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *RunResult, verbose bool) error {
	if len(result.Locations) == 0 {
		fmt.Fprintln(w, "No locations selected.")
		return nil
	}

	for _, loc := range result.Locations {
		if loc.Error != "" {
			fmt.Fprintf(w, "FAIL %s (%s): %s\n", loc.Name, loc.ShortName, loc.Error)
		} else {
			fmt.Fprintf(w, "OK   %s (%s): %d timeslots, %d sessions\n", loc.Name, loc.ShortName, loc.Timeslots, loc.Sessions)
		}
		if verbose {
			fmt.Fprintf(w, "       Day: %s\n", loc.Day)
			fmt.Fprintf(w, "       Source: %s\n", loc.Source)
			if loc.Venue != "" {
				fmt.Fprintf(w, "       Venue: %s\n", loc.Venue)
			}
			fmt.Fprintf(w, "       Took: %s\n", loc.Duration.Round(time.Millisecond))
		}
		for _, file := range loc.Files {
			fmt.Fprintf(w, "       %s\n", file)
		}
	}

	fmt.Fprintf(w, "\nTotal: %d built, %d failed\n", result.Succeeded, result.Failed)

	if verbose && result.Metrics != nil && !result.Metrics.Empty() {
		fmt.Fprintln(w, "\nMetrics:")
		writeSection(w, "counters", result.Metrics.Counters)
		writeSection(w, "gauges", result.Metrics.Gauges)
		writeSection(w, "timings", result.Metrics.Timings)
	}

	return nil
}

// writeSection prints one metrics map with its names sorted.
func writeSection[V any](w io.Writer, title string, values map[string]V) {
	if len(values) == 0 {
		return
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "  %s:\n", title)
	for _, name := range names {
		fmt.Fprintf(w, "    %s: %v\n", name, values[name])
	}
}
