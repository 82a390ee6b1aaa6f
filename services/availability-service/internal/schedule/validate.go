package schedule

// Fits reports whether the proposed slot lies inside the calendar's
// availability for its UTC weekday and conflicts with no event's buffered
// interval. Only the first (start, end) pair of the day is consulted; a day
// with no template entry rejects the slot.
func Fits(w Weekly, events []Event, s Slot) bool {
	return fits(w, events, s, true)
}

// FitsIgnoringBuffers is the sibling of Fits that checks events against their
// nominal start/end only, with no buffer padding.
func FitsIgnoringBuffers(w Weekly, events []Event, s Slot) bool {
	return fits(w, events, s, false)
}

func fits(w Weekly, events []Event, s Slot, useBuffers bool) bool {
	if s.Minutes <= 0 {
		return false
	}
	start := s.Start.UTC()
	end := start.Add(s.End().Sub(s.Start))

	dw, ok := w.ForWeekday(start.Weekday())
	if !ok || len(dw.Times) < 2 {
		return false
	}

	day := midnightUTC(start)
	availStart := dw.Times[0].On(day)
	availEnd := dw.Times[1].On(day)
	if start.Before(availStart) || end.After(availEnd) {
		return false
	}

	return !conflictsAny(start, end, events, useBuffers)
}
