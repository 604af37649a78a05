// Package schedule projects a parsed agenda onto the generic conference
// schedule model (conference, days, rooms, events) that the pentabarf
// writer renders.
package schedule

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/pfrederiksen/devconf-schedule/internal/agenda"
)

// DefaultTitlePrefix prefixes the conference title.
const DefaultTitlePrefix = "DevConf"

const dateKeyLayout = "2006-01-02"

// Conference is the schedule's header.
type Conference struct {
	Title string
	City  string
	Venue string
	Start time.Time
	End   time.Time
}

// Event is one talk, break or placeholder in a room.
type Event struct {
	ID          string
	Start       time.Time
	Duration    time.Duration
	Room        string
	Title       string
	Description string
	Track       string
	Language    string
	Persons     []string
}

// Room groups one day's events held in the same room.
type Room struct {
	Name   string
	Events []Event
}

// Day is one calendar date of the conference. Index is 1-based.
type Day struct {
	Index int
	Date  time.Time
	Rooms []Room
}

// Schedule is the whole projected conference.
type Schedule struct {
	Conference Conference
	Days       []Day
}

// EventCount is the number of events across all days and rooms.
func (s *Schedule) EventCount() int {
	n := 0
	for _, day := range s.Days {
		for _, room := range day.Rooms {
			n += len(room.Events)
		}
	}
	return n
}

type options struct {
	titlePrefix string
	language    string
}

// Option customises Project.
type Option func(*options)

// WithTitlePrefix replaces DefaultTitlePrefix in the conference title.
func WithTitlePrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.titlePrefix = prefix
		}
	}
}

// WithLanguage sets the language of every event.
func WithLanguage(language string) Option {
	return func(o *options) {
		o.language = language
	}
}

// PlaceholderID is the stable id of a timeslot that carries no sessions: the
// hex MD5 of its title.
func PlaceholderID(title string) string {
	sum := md5.Sum([]byte(title))
	return hex.EncodeToString(sum[:])
}

// Flatten lists every session of ev in timeslot order. A timeslot without
// sessions contributes one placeholder with no room, description or
// speakers, so rows like "Lunch" still appear in the output.
func Flatten(ev *agenda.Event) []agenda.Session {
	var sessions []agenda.Session
	for _, slot := range ev.Timeslots {
		if len(slot.Sessions) > 0 {
			sessions = append(sessions, slot.Sessions...)
			continue
		}
		sessions = append(sessions, agenda.Session{
			ID:          PlaceholderID(slot.Title),
			Title:       slot.Title,
			Description: "",
			Room:        "",
			StartsAt:    slot.StartsAt,
			EndsAt:      slot.EndsAt,
			Speakers:    []string{},
		})
	}
	return sessions
}

// Project builds the Schedule of ev. Every day lists every room seen
// anywhere in the event, sorted by name, and each session is placed under
// the day of its start and the room it is held in.
func Project(ev *agenda.Event, opts ...Option) *Schedule {
	o := options{titlePrefix: DefaultTitlePrefix}
	for _, opt := range opts {
		opt(&o)
	}

	sessions := Flatten(ev)

	dates := make(map[string]time.Time)
	addDate := func(t time.Time) {
		key := t.Format(dateKeyLayout)
		if _, ok := dates[key]; !ok {
			dates[key] = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		}
	}
	for _, slot := range ev.Timeslots {
		addDate(slot.StartsAt)
	}
	for _, s := range sessions {
		addDate(s.StartsAt)
	}

	dateKeys := make([]string, 0, len(dates))
	for key := range dates {
		dateKeys = append(dateKeys, key)
	}
	sort.Strings(dateKeys)

	roomSet := make(map[string]bool)
	for _, s := range sessions {
		roomSet[s.Room] = true
	}
	rooms := make([]string, 0, len(roomSet))
	for name := range roomSet {
		rooms = append(rooms, name)
	}
	sort.Strings(rooms)

	days := make([]Day, 0, len(dateKeys))
	for i, key := range dateKeys {
		day := Day{
			Index: i + 1,
			Date:  dates[key],
			Rooms: make([]Room, 0, len(rooms)),
		}
		for _, name := range rooms {
			room := Room{Name: name, Events: []Event{}}
			for _, s := range sessions {
				if s.Room != name || s.StartsAt.Format(dateKeyLayout) != key {
					continue
				}
				room.Events = append(room.Events, toEvent(s, o.language))
			}
			day.Rooms = append(day.Rooms, room)
		}
		days = append(days, day)
	}

	return &Schedule{
		Conference: Conference{
			Title: fmt.Sprintf("%s %s %d", o.titlePrefix, ev.Location, ev.StartsAt.Year()),
			City:  ev.Location,
			Venue: ev.Venue,
			Start: ev.StartsAt,
			End:   ev.EndsAt,
		},
		Days: days,
	}
}

func toEvent(s agenda.Session, language string) Event {
	persons := make([]string, len(s.Speakers))
	copy(persons, s.Speakers)
	return Event{
		ID:          s.ID,
		Start:       s.StartsAt,
		Duration:    s.EndsAt.Sub(s.StartsAt),
		Room:        s.Room,
		Title:       s.Title,
		Description: s.Description,
		Language:    language,
		Persons:     persons,
	}
}
