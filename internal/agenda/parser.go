package agenda

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pfrederiksen/devconf-schedule/internal/htmlquery"
	"github.com/pfrederiksen/devconf-schedule/internal/logger"
	"github.com/pfrederiksen/devconf-schedule/internal/sessionize"
)

// Markup hooks used by the DevConf agenda page.
const (
	selAgenda          = "div.agenda"
	selKeynoteSession  = "div.agenda-keynote-session"
	selSession         = "div.agenda-session"
	selSessionRoom     = "div.agenda-session-room"
	selVenue           = "div.sponsor-content-detail-location"
	rowClassPrefix     = "agenda-row-"
	classKeynoteRow    = "agenda-row-style-keynote"
	classGroupRow      = "agenda-row-style-key"
	classTimeslotGroup = "agenda-row-timeslot"
	attrSlotID         = "data-slot-id"
)

// KeynoteRoom is the room assigned to plenary sessions.
const KeynoteRoom = "Other"

// KeynoteTitle is the timeslot title of a keynote row.
const KeynoteTitle = "Keynote"

// Example: "09h00 → Opening Keynote ← 10h00"
var rowPattern = regexp.MustCompile(`^\s*(\d\dh\d\d) → (.*) ← (\d\dh\d\d)`)

var clockPattern = regexp.MustCompile(`^(\d\d)h(\d\d)$`)

// Directory resolves slot ids and speaker ids. *sessionize.Directory
// satisfies it.
type Directory interface {
	Session(id int) (*sessionize.Session, bool)
	Speaker(id uuid.UUID) (*sessionize.Speaker, bool)
}

// Options configures one location's parse.
type Options struct {
	// Location labels the resulting Event, e.g. "Cape Town".
	Location string
	// Day is the calendar date every row's clock times are placed on.
	Day time.Time
	// Zone is the time zone of the agenda's clock times. Nil means UTC.
	Zone *time.Location
	// Strict turns a row's LookupError into a failure of the whole parse
	// instead of skipping the row.
	Strict bool
	// RequireVenue makes a missing venue block an error.
	RequireVenue bool
}

// Parser converts agenda markup into timeslots.
type Parser struct {
	dir  Directory
	opts Options
}

// NewParser creates a Parser resolving ids through dir.
func NewParser(dir Directory, opts Options) *Parser {
	if opts.Zone == nil {
		opts.Zone = time.UTC
	}
	return &Parser{dir: dir, opts: opts}
}

// Parse reads an agenda page and assembles the location's Event.
func Parse(r io.Reader, dir Directory, opts Options) (*Event, error) {
	root, err := htmlquery.Parse(r)
	if err != nil {
		return nil, err
	}
	return NewParser(dir, opts).Event(root)
}

// Event parses the venue and timeslots of a parsed page.
func (p *Parser) Event(root htmlquery.Node) (*Event, error) {
	venue, ok := Venue(root)
	if !ok {
		if p.opts.RequireVenue {
			return nil, ErrVenueNotFound
		}
		logger.Debug("No venue on agenda page", logger.Fields{"location": p.opts.Location})
	}

	slots, err := p.Timeslots(root)
	if err != nil {
		return nil, err
	}

	return Assemble(p.opts.Location, venue, slots)
}

// Timeslots parses every agenda row of the first agenda container, in
// document order. Rows that do not carry a time range, or whose style is
// neither keynote nor grouped, produce nothing. A row that fails is logged
// and skipped.
func (p *Parser) Timeslots(root htmlquery.Node) ([]Timeslot, error) {
	agenda, ok := root.FindFirst(selAgenda)
	if !ok {
		return nil, ErrStructureNotFound
	}

	var slots []Timeslot
	for i, row := range agendaRows(agenda) {
		slot, err := p.parseRow(row)
		if err != nil {
			var lookup *LookupError
			if p.opts.Strict && errors.As(err, &lookup) {
				return nil, fmt.Errorf("agenda row %d: %w", i, err)
			}
			logger.Warn("Skipping agenda row", logger.Fields{
				"location": p.opts.Location,
				"row":      i,
				"error":    err.Error(),
			})
			logger.IncrCounter("agenda.rows.failed")
			continue
		}
		if slot == nil {
			logger.IncrCounter("agenda.rows.ignored")
			continue
		}
		logger.IncrCounter("agenda.rows.parsed")
		slots = append(slots, *slot)
	}

	if len(slots) == 0 {
		return nil, ErrNoTimeslots
	}
	return slots, nil
}

// Venue returns the text of the first link in the sponsor location block.
func Venue(root htmlquery.Node) (string, bool) {
	block, ok := root.FindFirst(selVenue)
	if !ok {
		return "", false
	}
	link, ok := block.FindFirst("a")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(link.Text()), true
}

func agendaRows(agenda htmlquery.Node) []htmlquery.Node {
	var rows []htmlquery.Node
	for _, div := range agenda.FindAll("div") {
		if div.HasClassPrefix(rowClassPrefix) {
			rows = append(rows, div)
		}
	}
	return rows
}

func (p *Parser) parseRow(row htmlquery.Node) (*Timeslot, error) {
	m := rowPattern.FindStringSubmatch(row.Text())
	if m == nil {
		return nil, nil
	}

	startsAt, err := p.clock(m[1])
	if err != nil {
		return nil, err
	}
	endsAt, err := p.clock(m[3])
	if err != nil {
		return nil, err
	}
	if !endsAt.After(startsAt) {
		return nil, fmt.Errorf("row ends at %s, not after it starts at %s", m[3], m[1])
	}

	switch {
	case row.HasClass(classKeynoteRow):
		return p.parseKeynoteRow(row, startsAt, endsAt)
	case row.HasClass(classGroupRow):
		return p.parseGroupRow(row, strings.TrimSpace(m[2]), startsAt, endsAt)
	}
	return nil, nil
}

func (p *Parser) parseKeynoteRow(row htmlquery.Node, startsAt, endsAt time.Time) (*Timeslot, error) {
	block, ok := row.FindFirst(selKeynoteSession)
	if !ok {
		return nil, &LookupError{What: "keynote session"}
	}
	id, err := slotID(block)
	if err != nil {
		return nil, err
	}

	record, ok := p.dir.Session(id)
	if !ok {
		return nil, &LookupError{What: "keynote in session data", SlotID: id}
	}
	session, err := p.session(id, record, KeynoteRoom, startsAt, endsAt)
	if err != nil {
		return nil, err
	}

	return &Timeslot{
		Title:    KeynoteTitle,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Sessions: []Session{session},
	}, nil
}

func (p *Parser) parseGroupRow(row htmlquery.Node, title string, startsAt, endsAt time.Time) (*Timeslot, error) {
	slot := &Timeslot{
		Title:    title,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Sessions: []Session{},
	}

	group, ok := row.Next()
	if !ok || !group.HasClass(classTimeslotGroup) {
		return slot, nil
	}

	for _, block := range group.FindAll(selSession) {
		if block.Empty() {
			continue
		}

		id, err := slotID(block)
		if err != nil {
			return nil, err
		}
		roomLabel, ok := block.FindFirst(selSessionRoom)
		if !ok {
			return nil, &LookupError{What: "room", SlotID: id}
		}

		record, ok := p.dir.Session(id)
		if !ok {
			// Cancelled sessions linger in the markup after leaving the dataset.
			logger.Debug("Unknown session in agenda", logger.Fields{
				"location": p.opts.Location,
				"slot_id":  id,
			})
			logger.IncrCounter("agenda.sessions.unknown")
			continue
		}

		session, err := p.session(id, record, strings.TrimSpace(roomLabel.Text()), startsAt, endsAt)
		if err != nil {
			return nil, err
		}
		slot.Sessions = append(slot.Sessions, session)
	}

	return slot, nil
}

func (p *Parser) session(id int, record *sessionize.Session, room string, startsAt, endsAt time.Time) (Session, error) {
	speakers, err := speakerNames(p.dir, id, record.Speakers)
	if err != nil {
		return Session{}, err
	}
	return Session{
		ID:          strconv.Itoa(id),
		Title:       record.Title,
		Description: record.Description,
		Room:        room,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Speakers:    speakers,
	}, nil
}

func speakerNames(dir Directory, sessionID int, ids []uuid.UUID) ([]string, error) {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		speaker, ok := dir.Speaker(id)
		if !ok {
			return nil, &LookupError{What: "speaker " + id.String(), SlotID: sessionID}
		}
		names = append(names, speaker.DisplayName())
	}
	return names, nil
}

func slotID(block htmlquery.Node) (int, error) {
	raw, ok := block.Attr(attrSlotID)
	if !ok {
		return 0, &LookupError{What: "session ID"}
	}
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid session ID %q: %w", raw, err)
	}
	return id, nil
}

// clock places an "HHhMM" reading on the configured day.
func (p *Parser) clock(text string) (time.Time, error) {
	hour, minute, err := ParseClock(text)
	if err != nil {
		return time.Time{}, err
	}
	day := p.opts.Day
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, p.opts.Zone), nil
}

// ParseClock parses a 24-hour "HHhMM" value such as "09h30".
func ParseClock(text string) (hour, minute int, err error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, 0, fmt.Errorf("invalid time format: %q", text)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("time out of range: %q", text)
	}
	return hour, minute, nil
}
