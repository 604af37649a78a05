package agenda

import (
	"errors"
	"fmt"
)

var (
	// ErrStructureNotFound means the page has no agenda container at all.
	ErrStructureNotFound = errors.New("could not find agenda")
	// ErrNoTimeslots means every agenda row was skipped or failed.
	ErrNoTimeslots = errors.New("could not find timeslots")
	// ErrVenueNotFound is only returned when a venue is required.
	ErrVenueNotFound = errors.New("could not find venue")
)

// LookupError reports markup or dataset references a row needs but lacks:
// a missing keynote block, slot id attribute, room label, or an id the
// Directory does not know.
type LookupError struct {
	What   string
	SlotID int
}

func (e *LookupError) Error() string {
	if e.SlotID != 0 {
		return fmt.Sprintf("could not find %s for session %d", e.What, e.SlotID)
	}
	return "could not find " + e.What
}
