// Package schedule computes bookable time slots from recurring weekly
// availability templates and already-booked events. All day and weekday
// arithmetic is done in UTC; callers must not rely on local-time instants.
//
// Every function is pure: inputs are never mutated and no references are
// retained across calls.
package schedule

import "time"

// TimeOfDay is a wall-clock instant within a UTC day, no date component.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// MinuteOfDay returns the time as minutes since midnight.
func (t TimeOfDay) MinuteOfDay() int {
	return t.Hour*60 + t.Minute
}

// On places the time of day onto the UTC date of day, returning a fresh instant.
func (t TimeOfDay) On(day time.Time) time.Time {
	day = day.UTC()
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, time.UTC)
}

func timeOfDayFromMinutes(m int) TimeOfDay {
	return TimeOfDay{Hour: m / 60, Minute: m % 60}
}

// DayWindows maps one weekday to its open intervals, encoded as a
// pair-sequence: even indices are window starts, odd indices the paired ends,
// ascending and non-overlapping. A trailing unpaired entry is ignored.
type DayWindows struct {
	Weekday time.Weekday
	Times   []TimeOfDay
}

// Weekly is the full recurring availability template for one calendar.
// A weekday appears at most once; lookup takes the first match.
type Weekly struct {
	Days []DayWindows
}

// ForWeekday returns the template entry for d, if any.
func (w Weekly) ForWeekday(d time.Weekday) (DayWindows, bool) {
	for _, dw := range w.Days {
		if dw.Weekday == d {
			return dw, true
		}
	}
	return DayWindows{}, false
}

// Buffer is extra blocked padding around an event, in minutes.
type Buffer struct {
	Before int
	After  int
}

// Event is a booked interval (Start < End) with optional buffer padding.
type Event struct {
	Start  time.Time
	End    time.Time
	Buffer Buffer
}

// Blocked returns the effective conflict interval [Start-Before, End+After].
func (e Event) Blocked() Interval {
	return Interval{
		Start: e.Start.Add(-time.Duration(e.Buffer.Before) * time.Minute),
		End:   e.End.Add(time.Duration(e.Buffer.After) * time.Minute),
	}
}

// Slot is a candidate or resulting booking window; its end is always derived.
type Slot struct {
	Start   time.Time
	Minutes int
}

// End returns Start plus the slot duration.
func (s Slot) End() time.Time {
	return s.Start.Add(time.Duration(s.Minutes) * time.Minute)
}

// Interval is a half-open [Start, End) span of instants.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the two intervals conflict under the half-open
// test: startA < endB && startB < endA. Touching endpoints do not conflict.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// conflictsAny is the single conflict primitive shared by the enumerators and
// validators. When useBuffers is false events block only their nominal span.
func conflictsAny(slotStart, slotEnd time.Time, events []Event, useBuffers bool) bool {
	candidate := Interval{Start: slotStart, End: slotEnd}
	for _, e := range events {
		blocked := Interval{Start: e.Start, End: e.End}
		if useBuffers {
			blocked = e.Blocked()
		}
		if candidate.Overlaps(blocked) {
			return true
		}
	}
	return false
}

// midnightUTC truncates t to the start of its UTC day.
func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
