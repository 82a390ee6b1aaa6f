package storage

import (
	"time"

	"github.com/nazmul-hq/freebusy/services/availability-service/internal/model"
	"github.com/nazmul-hq/freebusy/services/availability-service/internal/schedule"
)

// ToWeekly converts stored availability rows into the engine's template type.
// Out-of-range weekdays and negative minute values are dropped rather than
// surfaced as errors; the engine treats malformed shapes as "no availability".
func ToWeekly(days []model.AvailabilityDay) schedule.Weekly {
	var weekly schedule.Weekly
	for _, day := range days {
		if day.Weekday < 0 || day.Weekday > 6 {
			continue
		}
		times := make([]schedule.TimeOfDay, 0, len(day.Times))
		for _, m := range day.Times {
			if m < 0 || m >= 24*60 {
				continue
			}
			times = append(times, schedule.TimeOfDay{Hour: int(m) / 60, Minute: int(m) % 60})
		}
		weekly.Days = append(weekly.Days, schedule.DayWindows{
			Weekday: time.Weekday(day.Weekday),
			Times:   times,
		})
	}
	return weekly
}
