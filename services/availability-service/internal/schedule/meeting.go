package schedule

import "time"

// Attendee pairs one calendar's recurring availability with its booked events.
type Attendee struct {
	Availability Weekly
	Events       []Event
}

// MeetingSlots enumerates slots of slotMinutes where every attendee is free,
// walking UTC days from from to to inclusive. A day is skipped outright when
// any attendee has no template entry for its weekday; otherwise all
// attendees' pair-sequences are folded through Intersect and each resulting
// window is walked in slotMinutes steps, bounded by [from, to]. A sub-slot survives
// only when it overlaps no attendee's buffered event interval.
//
// Results are ascending: day-major, window-major, then time-major.
func MeetingSlots(attendees []Attendee, from, to time.Time, slotMinutes int) []Slot {
	if len(attendees) == 0 || slotMinutes <= 0 {
		return nil
	}
	from, to = from.UTC(), to.UTC()
	if !to.After(from) {
		return nil
	}
	step := time.Duration(slotMinutes) * time.Minute

	var slots []Slot
	for day := midnightUTC(from); !day.After(to); day = day.AddDate(0, 0, 1) {
		common, ok := commonWindows(attendees, day.Weekday())
		if !ok || len(common) == 0 {
			continue
		}
		for i := 0; i+1 < len(common); i += 2 {
			winStart := common[i].On(day)
			winEnd := common[i+1].On(day)
			for cur := winStart; !cur.Add(step).After(winEnd); cur = cur.Add(step) {
				if cur.Before(from) {
					continue
				}
				if cur.Add(step).After(to) {
					break
				}
				if anyAttendeeBusy(attendees, cur, cur.Add(step)) {
					continue
				}
				slots = append(slots, Slot{Start: cur, Minutes: slotMinutes})
			}
		}
	}
	return slots
}

// commonWindows folds every attendee's pair-sequence for the weekday through
// Intersect, left to right. One missing template entry eliminates the day.
func commonWindows(attendees []Attendee, weekday time.Weekday) ([]TimeOfDay, bool) {
	var common []TimeOfDay
	for i, a := range attendees {
		dw, ok := a.Availability.ForWeekday(weekday)
		if !ok {
			return nil, false
		}
		if i == 0 {
			common = dw.Times
			continue
		}
		common = Intersect(common, dw.Times)
		if len(common) == 0 {
			return nil, true
		}
	}
	return common, true
}

func anyAttendeeBusy(attendees []Attendee, slotStart, slotEnd time.Time) bool {
	for _, a := range attendees {
		if conflictsAny(slotStart, slotEnd, a.Events, true) {
			return true
		}
	}
	return false
}
