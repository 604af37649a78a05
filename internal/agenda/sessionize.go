package agenda

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/pfrederiksen/devconf-schedule/internal/logger"
	"github.com/pfrederiksen/devconf-schedule/internal/sessionize"
)

// FromSessionize builds an Event from the dataset alone, using each session's
// own startsAt, endsAt and roomId. It is the fallback for locations whose
// agenda page is not published. Unscheduled sessions are left out, and
// sessions sharing a start and end share a timeslot.
func FromSessionize(dir *sessionize.Directory, location string, zone *time.Location) (*Event, error) {
	if zone == nil {
		zone = time.UTC
	}

	type span struct {
		start, end time.Time
	}
	index := make(map[span]int)
	var slots []Timeslot

	for _, record := range dir.Sessions() {
		if !record.Scheduled() {
			logger.Debug("Skipping unscheduled session", logger.Fields{
				"location":   location,
				"session_id": int(record.ID),
			})
			continue
		}

		speakers, err := speakerNames(dir, int(record.ID), record.Speakers)
		if err != nil {
			logger.Warn("Skipping session", logger.Fields{
				"location": location,
				"error":    err.Error(),
			})
			continue
		}

		room := ""
		if record.RoomID != nil {
			room, _ = dir.RoomName(*record.RoomID)
		}

		key := span{start: record.StartsAt.In(zone), end: record.EndsAt.In(zone)}
		if !key.end.After(key.start) {
			logger.Warn("Skipping session", logger.Fields{
				"location":   location,
				"session_id": int(record.ID),
				"error":      "session does not end after it starts",
			})
			continue
		}

		i, ok := index[key]
		if !ok {
			i = len(slots)
			index[key] = i
			slots = append(slots, Timeslot{
				Title:    slotTitle(record, key.start, key.end),
				StartsAt: key.start,
				EndsAt:   key.end,
				Sessions: []Session{},
			})
		}

		slots[i].Sessions = append(slots[i].Sessions, Session{
			ID:          strconv.Itoa(int(record.ID)),
			Title:       record.Title,
			Description: record.Description,
			Room:        room,
			StartsAt:    key.start,
			EndsAt:      key.end,
			Speakers:    speakers,
		})
	}

	sort.SliceStable(slots, func(i, j int) bool {
		if !slots[i].StartsAt.Equal(slots[j].StartsAt) {
			return slots[i].StartsAt.Before(slots[j].StartsAt)
		}
		return slots[i].EndsAt.Before(slots[j].EndsAt)
	})

	return Assemble(location, "", slots)
}

// slotTitle names a timeslot after its first service or plenum session, and
// otherwise after its clock range.
func slotTitle(record *sessionize.Session, start, end time.Time) string {
	if record.IsServiceSession || record.IsPlenumSession {
		return record.Title
	}
	return fmt.Sprintf("%s - %s", start.Format("15:04"), end.Format("15:04"))
}
