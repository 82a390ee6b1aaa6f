package schedule

import (
	"testing"
	"time"
)

func TestMeetingSlots_TwoAttendees(t *testing.T) {
	a := Attendee{Availability: sundayWeekly(TimeOfDay{9, 0}, TimeOfDay{12, 0})}
	b := Attendee{Availability: sundayWeekly(TimeOfDay{10, 0}, TimeOfDay{11, 0})}

	slots := MeetingSlots([]Attendee{a, b}, sunday, at(23, 59), 30)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if !slots[0].Start.Equal(at(10, 0)) || !slots[1].Start.Equal(at(10, 30)) {
		t.Fatalf("expected 10:00 and 10:30, got %s and %s",
			slots[0].Start.Format(time.RFC3339), slots[1].Start.Format(time.RFC3339))
	}
}

func TestMeetingSlots_MissingWeekdayEliminatesDay(t *testing.T) {
	a := Attendee{Availability: Weekly{Days: []DayWindows{
		{Weekday: time.Monday, Times: []TimeOfDay{{9, 0}, {17, 0}}},
	}}}
	b := Attendee{Availability: sundayWeekly(TimeOfDay{0, 0}, TimeOfDay{23, 59})}

	if slots := MeetingSlots([]Attendee{a, b}, sunday, at(23, 59), 30); len(slots) != 0 {
		t.Fatalf("expected 0 slots when one attendee lacks the weekday, got %d", len(slots))
	}
}

func TestMeetingSlots_UnanimousEventRejection(t *testing.T) {
	a := Attendee{
		Availability: sundayWeekly(TimeOfDay{9, 0}, TimeOfDay{11, 0}),
		Events:       []Event{{Start: at(9, 0), End: at(9, 30), Buffer: Buffer{After: 15}}},
	}
	b := Attendee{
		Availability: sundayWeekly(TimeOfDay{9, 0}, TimeOfDay{11, 0}),
		Events:       []Event{{Start: at(10, 30), End: at(11, 0)}},
	}

	slots := MeetingSlots([]Attendee{a, b}, sunday, at(23, 59), 30)
	// a blocks 09:00 and 09:30 (buffer tail to 09:45), b blocks 10:30.
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if !slots[0].Start.Equal(at(10, 0)) {
		t.Fatalf("expected 10:00, got %s", slots[0].Start.Format(time.RFC3339))
	}
}

func TestMeetingSlots_ThreeWayIntersection(t *testing.T) {
	a := Attendee{Availability: sundayWeekly(TimeOfDay{8, 0}, TimeOfDay{12, 0})}
	b := Attendee{Availability: sundayWeekly(TimeOfDay{9, 0}, TimeOfDay{11, 0}, TimeOfDay{14, 0}, TimeOfDay{16, 0})}
	c := Attendee{Availability: sundayWeekly(TimeOfDay{9, 30}, TimeOfDay{15, 0})}

	slots := MeetingSlots([]Attendee{a, b, c}, sunday, at(23, 59), 30)
	// Common availability is 09:30-11:00: three half-hour slots.
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	if !slots[0].Start.Equal(at(9, 30)) || !slots[2].Start.Equal(at(10, 30)) {
		t.Fatalf("expected 09:30..10:30, got %s..%s",
			slots[0].Start.Format(time.RFC3339), slots[2].Start.Format(time.RFC3339))
	}
}

func TestMeetingSlots_EmptyIntersectionSkipsDay(t *testing.T) {
	a := Attendee{Availability: sundayWeekly(TimeOfDay{9, 0}, TimeOfDay{10, 0})}
	b := Attendee{Availability: sundayWeekly(TimeOfDay{10, 0}, TimeOfDay{11, 0})}

	if slots := MeetingSlots([]Attendee{a, b}, sunday, at(23, 59), 30); len(slots) != 0 {
		t.Fatalf("expected 0 slots for disjoint availability, got %d", len(slots))
	}
}

func TestMeetingSlots_BoundedByRangeEnd(t *testing.T) {
	a := Attendee{Availability: sundayWeekly(TimeOfDay{9, 0}, TimeOfDay{12, 0})}

	slots := MeetingSlots([]Attendee{a}, sunday, at(10, 0), 30)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots before the range end, got %d", len(slots))
	}
	if !slots[1].End().Equal(at(10, 0)) {
		t.Fatalf("expected last slot to end at the range end, got %s", slots[1].End().Format(time.RFC3339))
	}
}

func TestMeetingSlots_NoAttendees(t *testing.T) {
	if slots := MeetingSlots(nil, sunday, at(23, 59), 30); slots != nil {
		t.Fatalf("expected nil for no attendees, got %v", slots)
	}
}

func TestMeetingSlots_SingleAttendeeMatchesPairRange(t *testing.T) {
	w := sundayWeekly(TimeOfDay{9, 0}, TimeOfDay{11, 0})
	events := []Event{{Start: at(9, 30), End: at(10, 0)}}

	meeting := MeetingSlots([]Attendee{{Availability: w, Events: events}}, sunday, at(23, 59), 30)
	single := PairRangeSlots(w, events, sunday, at(23, 59), 30)
	if len(meeting) != len(single) {
		t.Fatalf("single-attendee meeting disagrees with pair-range enumeration: %d vs %d", len(meeting), len(single))
	}
	for i := range meeting {
		if !meeting[i].Start.Equal(single[i].Start) {
			t.Fatalf("slot %d differs: %s vs %s", i,
				meeting[i].Start.Format(time.RFC3339), single[i].Start.Format(time.RFC3339))
		}
	}
}
