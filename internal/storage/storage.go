package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/devconf-schedule/internal/agenda"
)

// Output formats.
const (
	FormatPentabarf = "pentabarf"
	FormatXCal      = "xcal"
	FormatICS       = "ics"
	FormatJSON      = "json"
)

var extensions = map[string]string{
	FormatPentabarf: ".pentabarf.xml",
	FormatXCal:      ".xcal.xml",
	FormatICS:       ".ics",
	FormatJSON:      ".json",
}

// Formats lists every output format in the order they are written.
func Formats() []string {
	return []string{FormatPentabarf, FormatXCal, FormatICS, FormatJSON}
}

// Storage writes generated schedules to an output directory
type Storage struct {
	dir string
}

// New creates a new Storage instance
func New(dir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Storage{
		dir: dir,
	}, nil
}

// Dir is the output directory.
func (s *Storage) Dir() string {
	return s.dir
}

// Slug lowercases a location and joins its words with dashes.
func Slug(location string) string {
	return strings.Join(strings.Fields(strings.ToLower(location)), "-")
}

// FileName is the conventional file name of one location's schedule,
// e.g. devconf-2022-cape-town.pentabarf.xml.
func FileName(year int, location, format string) string {
	ext, ok := extensions[format]
	if !ok {
		ext = "." + format
	}
	return fmt.Sprintf("devconf-%d-%s%s", year, Slug(location), ext)
}

// Path is where name is written.
func (s *Storage) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Write stores data under name, replacing any previous file in one rename
// so readers never see a partial schedule. It returns the final path.
func (s *Storage) Write(name string, data []byte) (string, error) {
	path := s.Path(name)

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return "", fmt.Errorf("setting permissions on %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("renaming %s: %w", name, err)
	}

	return path, nil
}

// SaveEvent writes the parsed event as indented JSON next to its schedules.
func (s *Storage) SaveEvent(ev *agenda.Event) (string, error) {
	data, err := json.MarshalIndent(ev, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding event: %w", err)
	}
	return s.Write(FileName(ev.StartsAt.Year(), ev.Location, FormatJSON), append(data, '\n'))
}
