package models

import (
	"strings"
	"time"

	"shareit/internal/apperr"
)

// State selects which bookings a listing returns. Unlike Status it is
// evaluated against the current time.
type State int

const (
	StateAll State = iota
	StateCurrent
	StatePast
	StateFuture
	StateWaiting
	StateRejected
)

var stateNames = map[State]string{
	StateAll:      "ALL",
	StateCurrent:  "CURRENT",
	StatePast:     "PAST",
	StateFuture:   "FUTURE",
	StateWaiting:  "WAITING",
	StateRejected: "REJECTED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseState accepts any letter case; an empty value means ALL.
func ParseState(raw string) (State, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return StateAll, nil
	}
	upper := strings.ToUpper(trimmed)
	for state, name := range stateNames {
		if name == upper {
			return state, nil
		}
	}
	return StateAll, apperr.BadRequestf("Unknown state: %s", raw)
}

// StatusFilter reports the status a storage query should filter on.
// Time-based states return false and are filtered by Includes instead.
func (s State) StatusFilter() (Status, bool) {
	switch s {
	case StateWaiting:
		return StatusWaiting, true
	case StateRejected:
		return StatusRejected, true
	}
	return "", false
}

// Includes reports whether b belongs to the state at the given moment.
// FUTURE only looks at the end, so bookings in progress are FUTURE as well
// as CURRENT.
func (s State) Includes(b *Booking, now time.Time) bool {
	switch s {
	case StatePast:
		return b.End.Before(now)
	case StateCurrent:
		return b.Start.Before(now) && b.End.After(now)
	case StateFuture:
		return b.End.After(now)
	case StateWaiting:
		return b.Status == StatusWaiting
	case StateRejected:
		return b.Status == StatusRejected
	default:
		return true
	}
}
