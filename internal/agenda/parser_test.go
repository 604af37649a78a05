package agenda

import (
	"errors"
	"io"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pfrederiksen/devconf-schedule/internal/htmlquery"
	"github.com/pfrederiksen/devconf-schedule/internal/logger"
	"github.com/pfrederiksen/devconf-schedule/internal/sessionize"
)

var (
	speakerAlice = uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")
	speakerBob   = uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	testDay      = time.Date(2022, 5, 12, 0, 0, 0, 0, time.UTC)
)

func TestMain(m *testing.M) {
	logger.SetDefault(logger.New(logger.LevelError, io.Discard))
	os.Exit(m.Run())
}

func testDirectory() *sessionize.Directory {
	return sessionize.NewDirectory(&sessionize.Event{
		Sessions: []sessionize.Session{
			{ID: 42, Title: "Welcome", Description: "Opening words", Speakers: []uuid.UUID{speakerAlice}},
			{ID: 43, Title: "Go in Production", Description: "Lessons", Speakers: []uuid.UUID{speakerBob}},
			{ID: 44, Title: "Rust for Gophers", Speakers: []uuid.UUID{speakerAlice, speakerBob}},
			{ID: 45, Title: "Ghost Talk", Speakers: []uuid.UUID{uuid.MustParse("11111111-1111-1111-1111-111111111111")}},
		},
		Speakers: []sessionize.Speaker{
			{ID: speakerAlice, FullName: "Alice"},
			{ID: speakerBob, FirstName: "Bob", LastName: "Jones"},
		},
	})
}

const fixturePage = `
<html><body>
<div class="sponsor-content-detail-location"><p>Venue</p><a href="/venue">CTICC</a></div>
<div class="agenda">
	<div class="agenda-row-style-keynote">09h00 → Opening Keynote ← 10h00
		<div class="agenda-keynote-session" data-slot-id="42">Welcome</div>
	</div>
	<div class="agenda-row-divider">Morning tracks</div>
	<div class="agenda-row-style-key">10h00 → Track Sessions ← 10h45</div>
	<div class="agenda-row-timeslot">
		<div class="agenda-session" data-slot-id="43"><div class="agenda-session-room">Room 1</div>Go</div>
		<div class="agenda-session"></div>
		<div class="agenda-session" data-slot-id="99"><div class="agenda-session-room">Room 2</div>Cancelled</div>
		<div class="agenda-session" data-slot-id="44"><div class="agenda-session-room"> Room 2 </div>Rust</div>
	</div>
	<div class="agenda-row-style-key">12h00 → Lunch ← 13h00</div>
</div>
</body></html>`

func at(hour, minute int) time.Time {
	return time.Date(2022, 5, 12, hour, minute, 0, 0, time.UTC)
}

func agendaPage(rows string) string {
	return `<html><body><div class="agenda">` + rows + `</div></body></html>`
}

func parseTimeslots(t *testing.T, html string, opts Options) ([]Timeslot, error) {
	t.Helper()
	root, err := htmlquery.Parse(strings.NewReader(html))
	if err != nil {
		t.Fatalf("htmlquery.Parse() error = %v", err)
	}
	if opts.Day.IsZero() {
		opts.Day = testDay
	}
	return NewParser(testDirectory(), opts).Timeslots(root)
}

func TestParse_Fixture(t *testing.T) {
	ev, err := Parse(strings.NewReader(fixturePage), testDirectory(), Options{
		Location: "Cape Town",
		Day:      testDay,
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if ev.Location != "Cape Town" {
		t.Errorf("Location = %q, want Cape Town", ev.Location)
	}
	if ev.Venue != "CTICC" {
		t.Errorf("Venue = %q, want CTICC", ev.Venue)
	}
	if !ev.StartsAt.Equal(at(9, 0)) || !ev.EndsAt.Equal(at(13, 0)) {
		t.Errorf("bounds = %v - %v, want 09:00 - 13:00", ev.StartsAt, ev.EndsAt)
	}

	if len(ev.Timeslots) != 3 {
		t.Fatalf("len(Timeslots) = %d, want 3", len(ev.Timeslots))
	}

	track := ev.Timeslots[1]
	if track.Title != "Track Sessions" {
		t.Errorf("Title = %q, want Track Sessions", track.Title)
	}
	if len(track.Sessions) != 2 {
		t.Fatalf("track sessions = %d, want 2 (empty and unknown skipped)", len(track.Sessions))
	}

	wantGo := Session{
		ID:          "43",
		Title:       "Go in Production",
		Description: "Lessons",
		Room:        "Room 1",
		StartsAt:    at(10, 0),
		EndsAt:      at(10, 45),
		Speakers:    []string{"Bob Jones"},
	}
	if !reflect.DeepEqual(track.Sessions[0], wantGo) {
		t.Errorf("session = %+v, want %+v", track.Sessions[0], wantGo)
	}

	rust := track.Sessions[1]
	if rust.Room != "Room 2" {
		t.Errorf("Room = %q, want trimmed Room 2", rust.Room)
	}
	if !reflect.DeepEqual(rust.Speakers, []string{"Alice", "Bob Jones"}) {
		t.Errorf("Speakers = %v, want dataset order", rust.Speakers)
	}

	lunch := ev.Timeslots[2]
	if lunch.Title != "Lunch" || len(lunch.Sessions) != 0 {
		t.Errorf("lunch = %+v, want empty Lunch timeslot", lunch)
	}
}

func TestParse_KeynoteRow(t *testing.T) {
	html := agendaPage(`
		<div class="agenda-row-style-keynote">09h00 → Opening Keynote ← 10h00
			<div class="agenda-keynote-session" data-slot-id="42"></div>
		</div>`)

	slots, err := parseTimeslots(t, html, Options{})
	if err != nil {
		t.Fatalf("Timeslots() error = %v", err)
	}

	want := []Timeslot{{
		Title:    "Keynote",
		StartsAt: at(9, 0),
		EndsAt:   at(10, 0),
		Sessions: []Session{{
			ID:          "42",
			Title:       "Welcome",
			Description: "Opening words",
			Room:        "Other",
			StartsAt:    at(9, 0),
			EndsAt:      at(10, 0),
			Speakers:    []string{"Alice"},
		}},
	}}
	if !reflect.DeepEqual(slots, want) {
		t.Errorf("Timeslots() = %+v, want %+v", slots, want)
	}
}

func TestParse_NonMatchingRowIgnored(t *testing.T) {
	html := agendaPage(`
		<div class="agenda-row-style-key">Registration opens at nine</div>
		<div class="agenda-row-style-key">12h00 → Lunch ← 13h00</div>`)

	slots, err := parseTimeslots(t, html, Options{})
	if err != nil {
		t.Fatalf("Timeslots() error = %v", err)
	}
	if len(slots) != 1 || slots[0].Title != "Lunch" {
		t.Errorf("Timeslots() = %+v, want only Lunch", slots)
	}
}

func TestParse_UnknownOnlySubSession(t *testing.T) {
	html := agendaPage(`
		<div class="agenda-row-style-key">11h00 → Afternoon ← 12h00</div>
		<div class="agenda-row-timeslot">
			<div class="agenda-session" data-slot-id="99"><div class="agenda-session-room">Room 9</div></div>
		</div>`)

	slots, err := parseTimeslots(t, html, Options{})
	if err != nil {
		t.Fatalf("Timeslots() error = %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("len(Timeslots) = %d, want 1", len(slots))
	}
	if slots[0].Sessions == nil || len(slots[0].Sessions) != 0 {
		t.Errorf("Sessions = %#v, want empty non-nil list", slots[0].Sessions)
	}
}

func TestParse_StructureNotFound(t *testing.T) {
	_, err := parseTimeslots(t, `<html><body><div class="agendas"></div></body></html>`, Options{})
	if !errors.Is(err, ErrStructureNotFound) {
		t.Errorf("error = %v, want ErrStructureNotFound", err)
	}
}

func TestParse_NoTimeslots(t *testing.T) {
	tests := []struct {
		name string
		rows string
	}{
		{"empty agenda", ""},
		{"only decorative rows", `<div class="agenda-row-divider">Day one</div>`},
		{"unstyled rows", `<div class="agenda-row-plain">09h00 → Spacer ← 10h00</div>`},
		{"every row fails", `<div class="agenda-row-style-keynote">09h00 → Keynote ← 10h00</div>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTimeslots(t, agendaPage(tt.rows), Options{})
			if !errors.Is(err, ErrNoTimeslots) {
				t.Errorf("error = %v, want ErrNoTimeslots", err)
			}
		})
	}
}

func TestParse_RowErrorsSkipped(t *testing.T) {
	lunch := `<div class="agenda-row-style-key">12h00 → Lunch ← 13h00</div>`

	tests := []struct {
		name       string
		row        string
		wantLookup bool
	}{
		{
			name:       "keynote without session block",
			row:        `<div class="agenda-row-style-keynote">09h00 → Keynote ← 10h00</div>`,
			wantLookup: true,
		},
		{
			name: "keynote without slot id",
			row: `<div class="agenda-row-style-keynote">09h00 → Keynote ← 10h00
				<div class="agenda-keynote-session">Welcome</div></div>`,
			wantLookup: true,
		},
		{
			name: "keynote not in dataset",
			row: `<div class="agenda-row-style-keynote">09h00 → Keynote ← 10h00
				<div class="agenda-keynote-session" data-slot-id="7"></div></div>`,
			wantLookup: true,
		},
		{
			name: "session without room label",
			row: `<div class="agenda-row-style-key">10h00 → Tracks ← 11h00</div>
				<div class="agenda-row-timeslot"><div class="agenda-session" data-slot-id="43">Go</div></div>`,
			wantLookup: true,
		},
		{
			name: "session without slot id",
			row: `<div class="agenda-row-style-key">10h00 → Tracks ← 11h00</div>
				<div class="agenda-row-timeslot"><div class="agenda-session"><div class="agenda-session-room">Room 1</div></div></div>`,
			wantLookup: true,
		},
		{
			name: "speaker missing from dataset",
			row: `<div class="agenda-row-style-key">10h00 → Tracks ← 11h00</div>
				<div class="agenda-row-timeslot"><div class="agenda-session" data-slot-id="45"><div class="agenda-session-room">Room 1</div></div></div>`,
			wantLookup: true,
		},
		{
			name: "non-numeric slot id",
			row: `<div class="agenda-row-style-keynote">09h00 → Keynote ← 10h00
				<div class="agenda-keynote-session" data-slot-id="abc"></div></div>`,
		},
		{
			name: "clock out of range",
			row:  `<div class="agenda-row-style-key">24h00 → Late ← 25h00</div>`,
		},
		{
			name: "ends before it starts",
			row:  `<div class="agenda-row-style-key">11h00 → Backwards ← 10h00</div>`,
		},
		{
			name: "ends when it starts",
			row:  `<div class="agenda-row-style-key">17h00 → Close ← 17h00</div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := parseTimeslots(t, agendaPage(tt.row+lunch), Options{})
			if err != nil {
				t.Fatalf("Timeslots() error = %v, want row skipped", err)
			}
			if len(slots) != 1 || slots[0].Title != "Lunch" {
				t.Errorf("Timeslots() = %+v, want only Lunch", slots)
			}

			_, err = parseTimeslots(t, agendaPage(tt.row+lunch), Options{Strict: true})
			var lookup *LookupError
			if tt.wantLookup {
				if !errors.As(err, &lookup) {
					t.Errorf("strict error = %v, want *LookupError", err)
				}
			} else if err != nil {
				t.Errorf("strict error = %v, want row skipped", err)
			}
		})
	}
}

func TestParse_AtMostOneTimeslotPerRow(t *testing.T) {
	root, err := htmlquery.Parse(strings.NewReader(fixturePage))
	if err != nil {
		t.Fatal(err)
	}
	agenda, _ := root.FindFirst("div.agenda")
	rows := agendaRows(agenda)

	slots, err := NewParser(testDirectory(), Options{Day: testDay}).Timeslots(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 {
		t.Fatalf("agendaRows() = %d, want 5", len(rows))
	}
	if len(slots) >= len(rows) {
		t.Errorf("got %d timeslots from %d rows, want fewer", len(slots), len(rows))
	}
}

func TestParse_Deterministic(t *testing.T) {
	opts := Options{Location: "Durban", Day: testDay}

	first, err := Parse(strings.NewReader(fixturePage), testDirectory(), opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Parse(strings.NewReader(fixturePage), testDirectory(), opts)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("parsing the same page twice produced different events")
	}
}

func TestParse_Venue(t *testing.T) {
	noVenue := agendaPage(`<div class="agenda-row-style-key">12h00 → Lunch ← 13h00</div>`)

	ev, err := Parse(strings.NewReader(noVenue), testDirectory(), Options{Day: testDay})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if ev.Venue != "" {
		t.Errorf("Venue = %q, want empty", ev.Venue)
	}

	_, err = Parse(strings.NewReader(noVenue), testDirectory(), Options{Day: testDay, RequireVenue: true})
	if !errors.Is(err, ErrVenueNotFound) {
		t.Errorf("error = %v, want ErrVenueNotFound", err)
	}

	blockWithoutLink := `<html><body><div class="sponsor-content-detail-location">TBA</div></body></html>`
	root, _ := htmlquery.Parse(strings.NewReader(blockWithoutLink))
	if venue, ok := Venue(root); ok || venue != "" {
		t.Errorf("Venue() = %q, %v, want empty and false", venue, ok)
	}
}

func TestParse_Zone(t *testing.T) {
	zone := time.FixedZone("SAST", 2*60*60)
	html := agendaPage(`<div class="agenda-row-style-key">09h30 → Coffee ← 10h00</div>`)

	slots, err := parseTimeslots(t, html, Options{Zone: zone})
	if err != nil {
		t.Fatal(err)
	}

	got := slots[0].StartsAt
	if got.Location() != zone || got.Hour() != 9 || got.Minute() != 30 {
		t.Errorf("StartsAt = %v, want 09:30 SAST", got)
	}
	if got.UTC().Hour() != 7 {
		t.Errorf("StartsAt UTC hour = %d, want 7", got.UTC().Hour())
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in         string
		wantHour   int
		wantMinute int
		wantErr    bool
	}{
		{"09h00", 9, 0, false},
		{" 23h59 ", 23, 59, false},
		{"00h00", 0, 0, false},
		{"9h00", 0, 0, true},
		{"09:00", 0, 0, true},
		{"24h00", 0, 0, true},
		{"12h60", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			hour, minute, err := ParseClock(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if hour != tt.wantHour || minute != tt.wantMinute {
				t.Errorf("ParseClock(%q) = %d:%d, want %d:%d", tt.in, hour, minute, tt.wantHour, tt.wantMinute)
			}
		})
	}
}

func TestLookupError_Message(t *testing.T) {
	tests := []struct {
		err  *LookupError
		want string
	}{
		{&LookupError{What: "keynote session"}, "could not find keynote session"},
		{&LookupError{What: "room", SlotID: 43}, "could not find room for session 43"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
