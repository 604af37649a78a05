package cli

import (
	"fmt"
	"sort"
	"strings"
)

// SortOrder represents the available summary orderings
type SortOrder string

const (
	SortByConfig   SortOrder = "config"
	SortByName     SortOrder = "name"
	SortByDay      SortOrder = "day"
	SortBySessions SortOrder = "sessions"
)

// ParseSortOrder validates a --sort value.
func ParseSortOrder(s string) (SortOrder, error) {
	order := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	switch order {
	case "":
		return SortByConfig, nil
	case SortByConfig, SortByName, SortByDay, SortBySessions:
		return order, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'config', 'name', 'day' or 'sessions')", s)
	}
}

// sortLocations orders summary lines. Failed locations always come last so
// they are easy to spot at the end of the output.
func sortLocations(locations []LocationResult, order SortOrder) {
	failedLast := func(i, j int) (bool, bool) {
		fi, fj := locations[i].Error != "", locations[j].Error != ""
		if fi != fj {
			return !fi, true
		}
		return false, false
	}

	switch order {
	case SortByName:
		sort.SliceStable(locations, func(i, j int) bool {
			if less, decided := failedLast(i, j); decided {
				return less
			}
			return strings.ToLower(locations[i].Name) < strings.ToLower(locations[j].Name)
		})
	case SortByDay:
		sort.SliceStable(locations, func(i, j int) bool {
			if less, decided := failedLast(i, j); decided {
				return less
			}
			// Days are YYYY-MM-DD, so string order is date order.
			return locations[i].Day < locations[j].Day
		})
	case SortBySessions:
		sort.SliceStable(locations, func(i, j int) bool {
			if less, decided := failedLast(i, j); decided {
				return less
			}
			return locations[i].Sessions > locations[j].Sessions
		})
	}
}
