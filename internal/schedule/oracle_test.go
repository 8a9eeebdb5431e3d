package schedule

import (
	"testing"

	"github.com/campusshuttle/planner/internal/static"
)

func weekdaySvc() *static.Service {
	return &static.Service{
		ServiceID:   "weekday",
		ServiceDays: map[string]bool{"monday": true, "tuesday": true, "wednesday": true, "thursday": true, "friday": true},
	}
}

func tripAB(times ...string) *static.Trip {
	return &static.Trip{
		RouteName:     "Route A",
		Headsign:      "To KDOJ",
		StopsSequence: []string{"KP1", "CP", "KDOJ"},
		Times:         times,
	}
}

func TestNextDepartureAt_FirstQualifying(t *testing.T) {
	o := New(&static.Data{RouteDurations: map[string][]int{}})
	svc := weekdaySvc()
	trip := tripAB("07:00", "07:30", "08:00")

	dep, ok := o.NextDepartureAt(svc, trip, 0, "monday", 7*60+15)
	if !ok {
		t.Fatal("expected a qualifying departure")
	}
	if dep.AbsoluteTime != 7*60+30 {
		t.Errorf("AbsoluteTime = %d, want %d", dep.AbsoluteTime, 7*60+30)
	}
	if dep.WaitMins != 15 {
		t.Errorf("WaitMins = %d, want 15", dep.WaitMins)
	}
}

func TestNextDepartureAt_ExactMatchZeroWait(t *testing.T) {
	o := New(&static.Data{RouteDurations: map[string][]int{}})
	svc := weekdaySvc()
	trip := tripAB("07:30")

	dep, ok := o.NextDepartureAt(svc, trip, 0, "monday", 7*60+30)
	if !ok || dep.WaitMins != 0 {
		t.Fatalf("expected zero-wait exact match, got %+v ok=%v", dep, ok)
	}
}

func TestNextDepartureAt_ServiceDayMismatch(t *testing.T) {
	o := New(&static.Data{RouteDurations: map[string][]int{}})
	svc := weekdaySvc()
	trip := tripAB("07:30")

	if _, ok := o.NextDepartureAt(svc, trip, 0, "saturday", 7*60); ok {
		t.Fatal("service should not serve saturday")
	}
}

func TestNextDepartureAt_FridayBlackoutSkipsArrival(t *testing.T) {
	o := New(&static.Data{RouteDurations: map[string][]int{
		static.DurationsKey("Route A", "To KDOJ"): {0, 0}, // CP and KDOJ at offset 0 for this test
	}})
	svc := weekdaySvc()
	// Trip starting at 12:30 would "arrive" at stop index 0 (KP1) at 12:30 — fine,
	// but a trip starting inside the window itself must be skipped for Friday.
	trip := tripAB("12:50")

	if _, ok := o.NextDepartureAt(svc, trip, 0, "friday", 12*60+30); ok {
		t.Fatal("arrival inside the Friday blackout window must never be returned")
	}
}

func TestNextDepartureAt_FridayAllowsOutsideBlackout(t *testing.T) {
	o := New(&static.Data{RouteDurations: map[string][]int{}})
	svc := weekdaySvc()
	trip := tripAB("14:00")

	dep, ok := o.NextDepartureAt(svc, trip, 0, "friday", 13*60)
	if !ok {
		t.Fatal("14:00 is the first minute after the blackout window and must qualify")
	}
	if dep.AbsoluteTime != 14*60 {
		t.Errorf("AbsoluteTime = %d, want 840", dep.AbsoluteTime)
	}
}

func TestNextDepartureAnyDay_RollsOverToNextDay(t *testing.T) {
	data := &static.Data{RouteDurations: map[string][]int{}}
	o := New(data)
	svc := weekdaySvc()
	trip := tripAB("07:00") // only one early trip

	dep, ok := o.NextDepartureAnyDay(svc, trip, 0, "monday", 20*60) // 20:00, too late today
	if !ok {
		t.Fatal("expected rollover to find tuesday's 07:00 trip")
	}
	if dep.Day != "tuesday" {
		t.Errorf("Day = %q, want tuesday", dep.Day)
	}
	if dep.AbsoluteTime != 1440+7*60 {
		t.Errorf("AbsoluteTime = %d, want %d", dep.AbsoluteTime, 1440+7*60)
	}
}

func TestDynamicOffset_FallsBackToNamedConstant(t *testing.T) {
	o := New(&static.Data{RouteDurations: map[string][]int{}})
	trip := tripAB("07:00")

	got := o.DynamicOffset(trip, 2)
	want := DefaultDwellMinutesPerStop * 2
	if got != want {
		t.Errorf("DynamicOffset fallback = %d, want %d", got, want)
	}
}

func TestDynamicOffset_UsesRouteDurationsWhenPresent(t *testing.T) {
	data := &static.Data{RouteDurations: map[string][]int{
		static.DurationsKey("Route A", "To KDOJ"): {180, 300}, // 3min, 5min
	}}
	o := New(data)
	trip := tripAB("07:00")

	if got := o.DynamicOffset(trip, 1); got != 3 {
		t.Errorf("offset(1) = %d, want 3", got)
	}
	if got := o.DynamicOffset(trip, 2); got != 8 {
		t.Errorf("offset(2) = %d, want 8", got)
	}
}

func TestOffsetMonotonic(t *testing.T) {
	data := &static.Data{RouteDurations: map[string][]int{
		static.DurationsKey("Route A", "To KDOJ"): {180, 300},
	}}
	trip := tripAB("07:00")
	prev := 0
	for i := 0; i <= 2; i++ {
		got, ok := trip.Offset(i, data.RouteDurations)
		if !ok {
			t.Fatalf("offset(%d) missing coverage", i)
		}
		if got < prev {
			t.Errorf("offset(%d) = %d, not monotonic after %d", i, got, prev)
		}
		prev = got
	}
}
