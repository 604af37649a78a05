package agenda

import (
	"time"
)

// Session is one talk resolved from the agenda and the Directory.
type Session struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Room        string    `json:"room"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Speakers    []string  `json:"speakers"`
}

// Timeslot is one agenda row. Sessions may be empty for informational rows
// such as "Lunch".
type Timeslot struct {
	Title    string    `json:"title"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Sessions []Session `json:"sessions"`
}

// Event is the whole agenda of one location. StartsAt and EndsAt are always
// derived from Timeslots by Assemble.
type Event struct {
	Location  string     `json:"location"`
	Venue     string     `json:"venue"`
	Timeslots []Timeslot `json:"timeslots"`
	StartsAt  time.Time  `json:"starts_at"`
	EndsAt    time.Time  `json:"ends_at"`
}

// Assemble builds an Event whose bounds span all timeslots.
func Assemble(location, venue string, slots []Timeslot) (*Event, error) {
	if len(slots) == 0 {
		return nil, ErrNoTimeslots
	}

	start, end := slots[0].StartsAt, slots[0].EndsAt
	for _, slot := range slots[1:] {
		if slot.StartsAt.Before(start) {
			start = slot.StartsAt
		}
		if slot.EndsAt.After(end) {
			end = slot.EndsAt
		}
	}

	return &Event{
		Location:  location,
		Venue:     venue,
		Timeslots: slots,
		StartsAt:  start,
		EndsAt:    end,
	}, nil
}

// SessionCount is the number of sessions across all timeslots.
func (e *Event) SessionCount() int {
	n := 0
	for _, slot := range e.Timeslots {
		n += len(slot.Sessions)
	}
	return n
}
