package sessionize

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimeLayout is the wall-clock layout Sessionize uses for startsAt/endsAt.
// The values carry no zone; they are local to the event.
const TimeLayout = "2006-01-02T15:04:05"

// ID is a session identifier. Sessionize emits it either as a JSON number or
// as a quoted numeric string depending on the endpoint.
type ID int

// UnmarshalJSON accepts 42 and "42".
func (id *ID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("parsing session id %s: %w", data, err)
	}
	*id = ID(n)
	return nil
}

// LocalTime is a zone-less Sessionize timestamp.
type LocalTime struct {
	time.Time
}

// UnmarshalJSON parses TimeLayout, falling back to RFC 3339. null and "" leave
// the zero value.
func (t *LocalTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parsing timestamp: %w", err)
	}
	if s == "" {
		return nil
	}
	parsed, err := time.Parse(TimeLayout, s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("parsing timestamp %q: %w", s, err)
		}
	}
	t.Time = parsed
	return nil
}

// MarshalJSON writes TimeLayout, or null for the zero value.
func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(TimeLayout))
}

// In reinterprets the wall clock reading in loc.
func (t LocalTime) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

// Session is one entry of the dataset's sessions list.
type Session struct {
	ID               ID          `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	StartsAt         LocalTime   `json:"startsAt"`
	EndsAt           LocalTime   `json:"endsAt"`
	RoomID           *int        `json:"roomId"`
	IsServiceSession bool        `json:"isServiceSession"`
	IsPlenumSession  bool        `json:"isPlenumSession"`
	Speakers         []uuid.UUID `json:"speakers"`
	LiveURL          string      `json:"liveUrl,omitempty"`
	RecordingURL     string      `json:"recordingUrl,omitempty"`
}

// Scheduled reports whether the session carries both timestamps.
func (s *Session) Scheduled() bool {
	return !s.StartsAt.IsZero() && !s.EndsAt.IsZero()
}

// Link is a speaker's external profile link.
type Link struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	LinkType string `json:"linkType"`
}

// Speaker is one entry of the dataset's speakers list.
type Speaker struct {
	ID             uuid.UUID `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	FullName       string    `json:"fullName"`
	Bio            string    `json:"bio,omitempty"`
	TagLine        string    `json:"tagLine,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	IsTopSpeaker   bool      `json:"isTopSpeaker"`
	Links          []Link    `json:"links,omitempty"`
	Sessions       []ID      `json:"sessions"`
}

// DisplayName prefers fullName and falls back to first + last name.
func (s *Speaker) DisplayName() string {
	if s.FullName != "" {
		return s.FullName
	}
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Room is one entry of the dataset's rooms list.
type Room struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Sort int    `json:"sort"`
}

// Event is the whole "view/all" response. Categories and questions are kept
// raw since nothing downstream reads them.
type Event struct {
	Sessions   []Session         `json:"sessions"`
	Speakers   []Speaker         `json:"speakers"`
	Rooms      []Room            `json:"rooms"`
	Categories []json.RawMessage `json:"categories"`
	Questions  []json.RawMessage `json:"questions"`
}

// Decode reads a "view/all" document.
func Decode(r io.Reader) (*Event, error) {
	var ev Event
	if err := json.NewDecoder(r).Decode(&ev); err != nil {
		return nil, fmt.Errorf("decoding sessionize data: %w", err)
	}
	return &ev, nil
}
