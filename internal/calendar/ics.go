// Package calendar renders agenda sessions as calendars: an iCalendar (.ics)
// file for calendar apps and the xCal XML dialect read by schedule apps.
package calendar

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/pfrederiksen/devconf-schedule/internal/agenda"
	"github.com/pfrederiksen/devconf-schedule/internal/schedule"
)

const (
	productName = "devconf-schedule"
	uidDomain   = "devconf.co.za"
)

// now stamps DTSTAMP; tests pin it.
var now = time.Now

// GenerateICS renders every session of ev, placeholders included, as one
// VEVENT with CRLF line endings. Speakers are listed as CONTACT properties.
// titlePrefix names the calendar like the pentabarf conference title; empty
// means schedule.DefaultTitlePrefix.
func GenerateICS(ev *agenda.Event, titlePrefix string) string {
	cal := ics.NewCalendarFor(productName)
	cal.SetMethod(ics.MethodPublish)
	cal.SetCalscale("GREGORIAN")
	cal.SetXWRCalName(CalendarName(ev, titlePrefix))

	stamp := now().UTC()
	for _, s := range schedule.Flatten(ev) {
		vevent := cal.AddEvent(fmt.Sprintf("%s@%s", s.ID, uidDomain))
		vevent.SetDtStampTime(stamp)
		vevent.SetStartAt(s.StartsAt)
		vevent.SetEndAt(s.EndsAt)
		vevent.SetSummary(s.Title)
		if s.Description != "" {
			vevent.SetDescription(s.Description)
		}
		if loc := eventLocation(s.Room, ev.Venue); loc != "" {
			vevent.SetLocation(loc)
		}
		vevent.SetStatus(ics.ObjectStatusConfirmed)
		for _, name := range s.Speakers {
			vevent.AddProperty(ics.ComponentPropertyContact, name)
		}
	}

	return cal.Serialize(ics.WithNewLineWindows)
}

// CalendarName is the X-WR-CALNAME of an event's calendar.
func CalendarName(ev *agenda.Event, titlePrefix string) string {
	if titlePrefix == "" {
		titlePrefix = schedule.DefaultTitlePrefix
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s %d", titlePrefix, ev.Location, ev.StartsAt.Year()))
}

func eventLocation(room, venue string) string {
	switch {
	case room != "" && venue != "":
		return room + ", " + venue
	case room != "":
		return room
	default:
		return venue
	}
}
