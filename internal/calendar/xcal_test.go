package calendar

import (
	"bytes"
	"encoding/xml"
	"testing"
	"time"

	"github.com/pfrederiksen/devconf-schedule/internal/agenda"
	"github.com/pfrederiksen/devconf-schedule/internal/schedule"
)

func TestFormatXCalDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"ninety minutes", 90 * time.Minute, "0:01:30:00"},
		{"zero", 0, "0:00:00:00"},
		{"seconds kept", 2*time.Hour + 5*time.Second, "0:02:00:05"},
		{"multi-day", 50 * time.Hour, "2:02:00:00"},
		{"negative", -time.Hour, "0:00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatXCalDuration(tt.duration); got != tt.want {
				t.Errorf("FormatXCalDuration(%v) = %q, want %q", tt.duration, got, tt.want)
			}
		})
	}
}

func TestMarshalXCal(t *testing.T) {
	sessions := schedule.Flatten(testEvent(t))

	data, err := MarshalXCal(sessions)
	if err != nil {
		t.Fatalf("MarshalXCal() error = %v", err)
	}

	for _, want := range []string{
		`xmlns:xCal="urn:ietf:params:xml:ns:xcal"`,
		`xmlns:pentabarf="http://pentabarf.org"`,
		"<version>2.0</version>",
		"<dtstart>20220512T090000</dtstart>",
		"<dtend>20220512T100000</dtend>",
		"<duration>0:01:00:00</duration>",
		"<attendee>Bob Jones</attendee>",
	} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("xCal output missing %s", want)
		}
	}

	var doc struct {
		Events []xcalVEvent `xml:"vcalendar>vevent"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not well-formed: %v", err)
	}
	if len(doc.Events) != 2 {
		t.Fatalf("vevent count = %d, want 2", len(doc.Events))
	}

	keynote := doc.Events[0]
	if keynote.UID != "42" || keynote.Location != "Other" || len(keynote.Attendees) != 2 {
		t.Errorf("keynote = %+v", keynote)
	}
	if keynote.Summary != "Welcome, friends; all" || keynote.Description != "Opening\nremarks" {
		t.Errorf("text fields = %q/%q", keynote.Summary, keynote.Description)
	}

	lunch := doc.Events[1]
	if lunch.UID != schedule.PlaceholderID("Lunch") || lunch.Location != "" || len(lunch.Attendees) != 0 {
		t.Errorf("placeholder = %+v", lunch)
	}
}

func TestMarshalXCal_Escaping(t *testing.T) {
	data, err := MarshalXCal([]agenda.Session{{ID: "1", Title: "Rust & <Go>"}})
	if err != nil {
		t.Fatalf("MarshalXCal() error = %v", err)
	}
	if !bytes.Contains(data, []byte("<summary>Rust &amp; &lt;Go&gt;</summary>")) {
		t.Errorf("summary not escaped:\n%s", data)
	}
}
