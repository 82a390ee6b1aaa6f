package model

import "time"

// AvailabilityDay is one stored weekday of a calendar's recurring template.
// Times is the pair-sequence encoded as minutes since midnight UTC.
type AvailabilityDay struct {
	CalendarID string
	Weekday    int16
	Times      []int32
}

type CalendarEvent struct {
	ID           string
	CalendarID   string
	StartTime    time.Time
	EndTime      time.Time
	BufferBefore int
	BufferAfter  int
	Status       string
	CancelledAt  *time.Time
	CreatedAt    time.Time
}
