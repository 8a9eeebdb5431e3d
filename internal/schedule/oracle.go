// Package schedule implements the schedule oracle (C3): converting trip
// start times and per-stop offsets into per-stop arrival/departure
// times, applying service-day and Friday-blackout filters, and finding
// the next departure at or after a query time, rolling over to
// subsequent days when needed.
package schedule

import (
	"strconv"
	"strings"

	"github.com/campusshuttle/planner/internal/static"
)

// DefaultDwellMinutesPerStop is the single named fallback used when
// route_durations lacks segment coverage for a trip (spec.md §9's open
// question, resolved: one constant, used nowhere else).
const DefaultDwellMinutesPerStop = 2

// Friday blackout window, minutes since midnight: [12:40, 14:00).
const (
	fridayBlackoutStart = 12*60 + 40
	fridayBlackoutEnd   = 14 * 60
)

var weekdayOrder = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// Oracle answers schedule queries against a *static.Data. It holds no
// mutable state of its own.
type Oracle struct {
	data *static.Data
}

func New(data *static.Data) *Oracle {
	return &Oracle{data: data}
}

// Departure is the result of a successful next-departure query.
type Departure struct {
	AbsoluteTime int // minutes since midnight of QueryDay, may be >= 1440 on rollover within the same call
	WaitMins     int
	TripStart    int // minutes since midnight
	Day          string
}

// DynamicOffset sums per-segment seconds up to targetIndex, rounding to
// minutes; falls back to DefaultDwellMinutesPerStop*targetIndex when
// route_durations lacks coverage for this trip.
func (o *Oracle) DynamicOffset(trip *static.Trip, targetIndex int) int {
	if minutes, ok := trip.Offset(targetIndex, o.data.RouteDurations); ok {
		return minutes
	}
	return DefaultDwellMinutesPerStop * targetIndex
}

// NextDepartureAt finds the first scheduled arrival at stopIndex, on
// queryDay, at or after queryTime (minutes since midnight), skipping the
// Friday blackout window. Returns ok=false when the service doesn't run
// on queryDay or no trip qualifies.
func (o *Oracle) NextDepartureAt(svc *static.Service, trip *static.Trip, stopIndex int, queryDay string, queryTime int) (Departure, bool) {
	day := strings.ToLower(queryDay)
	if !svc.Serves(day) {
		return Departure{}, false
	}

	offset := o.DynamicOffset(trip, stopIndex)

	for _, startStr := range trip.Times {
		startTime, ok := parseHHMM(startStr)
		if !ok {
			continue
		}
		arrival := startTime + offset
		if day == "friday" && inFridayBlackout(arrival) {
			continue
		}
		if arrival >= queryTime {
			return Departure{
				AbsoluteTime: arrival,
				WaitMins:     arrival - queryTime,
				TripStart:    startTime,
				Day:          day,
			}, true
		}
	}
	return Departure{}, false
}

// NextDepartureAnyDay searches day-by-day for up to 7 days forward,
// starting at queryDay/queryTime, and returns the first qualifying
// departure together with the day it falls on.
func (o *Oracle) NextDepartureAnyDay(svc *static.Service, trip *static.Trip, stopIndex int, queryDay string, queryTime int) (Departure, bool) {
	startIdx := dayIndex(queryDay)
	if startIdx < 0 {
		return Departure{}, false
	}

	for offset := 0; offset < 7; offset++ {
		day := weekdayOrder[(startIdx+offset)%7]
		qt := queryTime
		if offset > 0 {
			qt = 0
		}
		if dep, ok := o.NextDepartureAt(svc, trip, stopIndex, day, qt); ok {
			dep.AbsoluteTime += 1440 * offset
			dep.WaitMins = dep.AbsoluteTime - queryTime
			dep.Day = day
			return dep, true
		}
	}
	return Departure{}, false
}

// AdvanceDay returns the weekday name n days after day (n may be 0).
// Exposed for callers, like the pathfinder, that must translate a
// rolling elapsed-minutes clock back into a day-of-week for schedule
// queries without re-deriving the weekday table themselves.
func AdvanceDay(day string, n int) string {
	idx := dayIndex(day)
	if idx < 0 {
		return day
	}
	return weekdayOrder[(idx+n)%7]
}

func inFridayBlackout(arrivalMinute int) bool {
	m := arrivalMinute % 1440
	return m >= fridayBlackoutStart && m < fridayBlackoutEnd
}

// FridayBlackout reports whether arrivalMinute (minutes since midnight)
// falls inside the Friday blackout window when day is Friday. Exposed
// for callers outside this package — the pathfinder — that must reject
// ride-through and goal arrivals landing in the window, not just the
// boarding departure NextDepartureAt already filters (spec.md §4.1: "no
// trip may be reported as a valid departure, even for intermediate
// stops where the arrival falls inside that window").
func FridayBlackout(day string, arrivalMinute int) bool {
	if strings.ToLower(day) != "friday" {
		return false
	}
	return inFridayBlackout(arrivalMinute)
}

func dayIndex(day string) int {
	day = strings.ToLower(day)
	for i, d := range weekdayOrder {
		if d == day {
			return i
		}
	}
	return -1
}

// parseHHMM parses "HH:MM" into minutes since midnight.
func parseHHMM(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, false
	}
	return h*60 + m, true
}
