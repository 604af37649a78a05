// Package cli implements the command-line interface for devconf-schedule.
//
// The cli package provides the Cobra root command and the Builder that runs
// a batch: for each configured location it fetches the Sessionize data and
// agenda page, parses them into an event, renders the selected formats and
// writes them through storage. A failing location is reported in the run
// summary (text or JSON) and makes the process exit non-zero once every
// location has been attempted.
package cli
