// Package storage writes generated schedules to the output directory.
//
// Each location produces one file per format, named
// devconf-<year>-<location-slug> plus the format's extension
// (.pentabarf.xml, .xcal.xml, .ics, .json). Files are replaced atomically.
// The JSON file is the parsed event itself and can be loaded back.
package storage
