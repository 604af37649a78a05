// Package agenda turns a DevConf agenda page into timeslots and sessions.
//
// Agenda rows carry only a free-text time range and numeric slot ids; each
// slot id is resolved against a Directory (the Sessionize dataset) to get the
// session title, description and speakers. Rows are parsed independently so
// that one malformed row never aborts the scrape of an otherwise valid page.
package agenda
