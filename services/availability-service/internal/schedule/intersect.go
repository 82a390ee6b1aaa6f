package schedule

// Intersect merges two sorted, non-overlapping pair-sequences into their
// intersection using a two-pointer sweep over (start, end) pairs in
// O(|a|+|b|). The result is itself a valid sorted, non-overlapping
// pair-sequence. Odd trailing entries are ignored.
func Intersect(a, b []TimeOfDay) []TimeOfDay {
	var out []TimeOfDay
	i, j := 0, 0
	for i+1 < len(a) && j+1 < len(b) {
		aStart, aEnd := a[i].MinuteOfDay(), a[i+1].MinuteOfDay()
		bStart, bEnd := b[j].MinuteOfDay(), b[j+1].MinuteOfDay()

		start := aStart
		if bStart > start {
			start = bStart
		}
		end := aEnd
		if bEnd < end {
			end = bEnd
		}
		if start < end {
			out = append(out, timeOfDayFromMinutes(start), timeOfDayFromMinutes(end))
		}

		// Advance whichever pair ends earlier; it cannot overlap anything further.
		if aEnd < bEnd {
			i += 2
		} else {
			j += 2
		}
	}
	return out
}
