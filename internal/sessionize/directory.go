package sessionize

import (
	"github.com/google/uuid"
)

// Directory is an immutable index over a decoded Event.
type Directory struct {
	sessions []*Session
	byID     map[int]*Session
	speakers map[uuid.UUID]*Speaker
	rooms    map[int]*Room
}

// NewDirectory indexes ev. Later duplicates of an id win, matching how the
// dataset is read top to bottom.
func NewDirectory(ev *Event) *Directory {
	d := &Directory{
		byID:     make(map[int]*Session),
		speakers: make(map[uuid.UUID]*Speaker),
		rooms:    make(map[int]*Room),
	}
	if ev == nil {
		return d
	}

	for i := range ev.Sessions {
		s := &ev.Sessions[i]
		d.sessions = append(d.sessions, s)
		d.byID[int(s.ID)] = s
	}
	for i := range ev.Speakers {
		sp := &ev.Speakers[i]
		d.speakers[sp.ID] = sp
	}
	for i := range ev.Rooms {
		r := &ev.Rooms[i]
		d.rooms[r.ID] = r
	}
	return d
}

// Session looks up a session by its numeric id.
func (d *Directory) Session(id int) (*Session, bool) {
	s, ok := d.byID[id]
	return s, ok
}

// Speaker looks up a speaker by UUID.
func (d *Directory) Speaker(id uuid.UUID) (*Speaker, bool) {
	sp, ok := d.speakers[id]
	return sp, ok
}

// RoomName resolves a room id to its display name.
func (d *Directory) RoomName(id int) (string, bool) {
	r, ok := d.rooms[id]
	if !ok {
		return "", false
	}
	return r.Name, true
}

// Sessions returns the sessions in dataset order.
func (d *Directory) Sessions() []*Session {
	out := make([]*Session, len(d.sessions))
	copy(out, d.sessions)
	return out
}
