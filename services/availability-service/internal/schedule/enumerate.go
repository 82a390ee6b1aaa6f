package schedule

import "time"

// PairRangeSlots enumerates every non-conflicting slot of slotMinutes for one
// calendar between from and to (inclusive days, UTC). Each (start, end) pair
// in the day's template is walked in slotMinutes steps; a sub-slot is kept
// when it lies inside [from, to] and does not overlap any event's buffered
// interval. Results are ascending by start time.
func PairRangeSlots(w Weekly, events []Event, from, to time.Time, slotMinutes int) []Slot {
	if slotMinutes <= 0 {
		return nil
	}
	from, to = from.UTC(), to.UTC()
	if !to.After(from) {
		return nil
	}
	step := time.Duration(slotMinutes) * time.Minute

	var slots []Slot
	for day := midnightUTC(from); !day.After(to); day = day.AddDate(0, 0, 1) {
		dw, ok := w.ForWeekday(day.Weekday())
		if !ok {
			continue
		}
		for i := 0; i+1 < len(dw.Times); i += 2 {
			winStart := dw.Times[i].On(day)
			winEnd := dw.Times[i+1].On(day)
			for cur := winStart; !cur.Add(step).After(winEnd); cur = cur.Add(step) {
				if cur.Before(from) {
					continue
				}
				if cur.Add(step).After(to) {
					break
				}
				if conflictsAny(cur, cur.Add(step), events, true) {
					continue
				}
				slots = append(slots, Slot{Start: cur, Minutes: slotMinutes})
			}
		}
	}
	return slots
}

// FixedBlockSlots is the legacy enumeration behavior: every template entry is
// one fixed block of slotMinutes starting at that entry's time of day, start
// and end entries alike. The walk stops early once a sub-slot would start
// before from or end after to.
//
// PairRangeSlots treats the same template as (start, end) pairs; the two
// behaviors are deliberately kept as separate operations.
func FixedBlockSlots(w Weekly, events []Event, from, to time.Time, slotMinutes int) []Slot {
	if slotMinutes <= 0 {
		return nil
	}
	from, to = from.UTC(), to.UTC()
	if !to.After(from) {
		return nil
	}
	step := time.Duration(slotMinutes) * time.Minute

	var slots []Slot
	for day := midnightUTC(from); !day.After(to); day = day.AddDate(0, 0, 1) {
		dw, ok := w.ForWeekday(day.Weekday())
		if !ok {
			continue
		}
		for _, t := range dw.Times {
			blockStart := t.On(day)
			blockEnd := blockStart.Add(step)
			for cur := blockStart; !cur.Add(step).After(blockEnd); cur = cur.Add(step) {
				if cur.Before(from) || cur.Add(step).After(to) {
					break
				}
				if conflictsAny(cur, cur.Add(step), events, true) {
					continue
				}
				slots = append(slots, Slot{Start: cur, Minutes: slotMinutes})
			}
		}
	}
	return slots
}
