// Package pentabarf renders a projected schedule as pentabarf XML, the
// conference schedule format read by Giggity, Confy and similar apps.
package pentabarf

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/pfrederiksen/devconf-schedule/internal/schedule"
)

const dateLayout = "2006-01-02"

type xmlSchedule struct {
	XMLName    xml.Name      `xml:"schedule"`
	Conference xmlConference `xml:"conference"`
	Days       []xmlDay      `xml:"day"`
}

type xmlConference struct {
	Title string `xml:"title"`
	City  string `xml:"city"`
	Venue string `xml:"venue,omitempty"`
	Start string `xml:"start"`
	End   string `xml:"end"`
}

type xmlDay struct {
	Index int       `xml:"index,attr"`
	Date  string    `xml:"date,attr"`
	Rooms []xmlRoom `xml:"room"`
}

type xmlRoom struct {
	Name   string     `xml:"name,attr"`
	Events []xmlEvent `xml:"event"`
}

type xmlEvent struct {
	ID          string     `xml:"id,attr"`
	Start       string     `xml:"start"`
	Duration    string     `xml:"duration"`
	Room        string     `xml:"room"`
	Title       string     `xml:"title"`
	Description string     `xml:"description"`
	Track       string     `xml:"track,omitempty"`
	Language    string     `xml:"language"`
	Persons     xmlPersons `xml:"persons"`
}

type xmlPersons struct {
	Person []string `xml:"person"`
}

// Marshal renders s as tab-indented pentabarf XML with an XML declaration.
// Days and rooms are written in the order the schedule holds them.
func Marshal(s *schedule.Schedule) ([]byte, error) {
	doc := xmlSchedule{
		Conference: xmlConference{
			Title: s.Conference.Title,
			City:  s.Conference.City,
			Venue: s.Conference.Venue,
			Start: s.Conference.Start.Format(dateLayout),
			End:   s.Conference.End.Format(dateLayout),
		},
		Days: make([]xmlDay, 0, len(s.Days)),
	}

	for _, day := range s.Days {
		d := xmlDay{
			Index: day.Index,
			Date:  day.Date.Format(dateLayout),
			Rooms: make([]xmlRoom, 0, len(day.Rooms)),
		}
		for _, room := range day.Rooms {
			r := xmlRoom{Name: room.Name, Events: make([]xmlEvent, 0, len(room.Events))}
			for _, e := range room.Events {
				r.Events = append(r.Events, xmlEvent{
					ID:          e.ID,
					Start:       e.Start.Format("15:04"),
					Duration:    FormatDuration(e.Duration),
					Room:        room.Name,
					Title:       e.Title,
					Description: e.Description,
					Track:       e.Track,
					Language:    e.Language,
					Persons:     xmlPersons{Person: e.Persons},
				})
			}
			d.Rooms = append(d.Rooms, r)
		}
		doc.Days = append(doc.Days, d)
	}

	out, err := xml.MarshalIndent(doc, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("encoding pentabarf schedule: %w", err)
	}

	data := make([]byte, 0, len(xml.Header)+len(out)+1)
	data = append(data, xml.Header...)
	data = append(data, out...)
	data = append(data, '\n')
	return data, nil
}

// FormatDuration renders d as zero-padded "HH:MM". Leftover seconds are
// dropped, hours are not wrapped at a day, and negative durations render
// as "00:00".
func FormatDuration(d time.Duration) string {
	seconds := int64(d / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}
