package calendar

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/pfrederiksen/devconf-schedule/internal/agenda"
)

const (
	xcalNamespace      = "urn:ietf:params:xml:ns:xcal"
	pentabarfNamespace = "http://pentabarf.org"
	xcalTimeLayout     = "20060102T150405"
)

type xcalDocument struct {
	XMLName   xml.Name      `xml:"iCalendar"`
	XCal      string        `xml:"xmlns:xCal,attr"`
	Pentabarf string        `xml:"xmlns:pentabarf,attr"`
	Calendar  xcalVCalendar `xml:"vcalendar"`
}

type xcalVCalendar struct {
	Version string       `xml:"version"`
	Events  []xcalVEvent `xml:"vevent"`
}

type xcalVEvent struct {
	UID         string   `xml:"uid"`
	Start       string   `xml:"dtstart"`
	End         string   `xml:"dtend"`
	Summary     string   `xml:"summary"`
	Description string   `xml:"description"`
	Location    string   `xml:"location"`
	Duration    string   `xml:"duration"`
	Attendees   []string `xml:"attendee"`
}

// MarshalXCal renders sessions as tab-indented xCal XML, one vevent per
// session in the given order. Times are written as local wall-clock times.
func MarshalXCal(sessions []agenda.Session) ([]byte, error) {
	doc := xcalDocument{
		XCal:      xcalNamespace,
		Pentabarf: pentabarfNamespace,
		Calendar: xcalVCalendar{
			Version: "2.0",
			Events:  make([]xcalVEvent, 0, len(sessions)),
		},
	}

	for _, s := range sessions {
		doc.Calendar.Events = append(doc.Calendar.Events, xcalVEvent{
			UID:         s.ID,
			Start:       s.StartsAt.Format(xcalTimeLayout),
			End:         s.EndsAt.Format(xcalTimeLayout),
			Summary:     s.Title,
			Description: s.Description,
			Location:    s.Room,
			Duration:    FormatXCalDuration(s.EndsAt.Sub(s.StartsAt)),
			Attendees:   s.Speakers,
		})
	}

	out, err := xml.MarshalIndent(doc, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("encoding xcal calendar: %w", err)
	}

	data := make([]byte, 0, len(xml.Header)+len(out)+1)
	data = append(data, xml.Header...)
	data = append(data, out...)
	data = append(data, '\n')
	return data, nil
}

// FormatXCalDuration renders d as "D:HH:MM:SS" with an unpadded day count.
// Negative durations render as "0:00:00:00".
func FormatXCalDuration(d time.Duration) string {
	seconds := int64(d / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	days := seconds / 86400
	seconds %= 86400
	return fmt.Sprintf("%d:%02d:%02d:%02d", days, seconds/3600, (seconds%3600)/60, seconds%60)
}
