package storage

import (
	"testing"
	"time"

	"github.com/nazmul-hq/freebusy/services/availability-service/internal/model"
	"github.com/nazmul-hq/freebusy/services/availability-service/internal/schedule"
)

func TestToWeekly(t *testing.T) {
	days := []model.AvailabilityDay{
		{Weekday: 0, Times: []int32{540, 720}},          // Sunday 09:00-12:00
		{Weekday: 1, Times: []int32{600, 630, 840, 900}}, // Monday 10:00-10:30, 14:00-15:00
	}

	weekly := ToWeekly(days)
	if len(weekly.Days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(weekly.Days))
	}

	sun, ok := weekly.ForWeekday(time.Sunday)
	if !ok {
		t.Fatal("expected Sunday entry")
	}
	if sun.Times[0] != (schedule.TimeOfDay{Hour: 9}) || sun.Times[1] != (schedule.TimeOfDay{Hour: 12}) {
		t.Fatalf("unexpected Sunday times: %v", sun.Times)
	}

	mon, ok := weekly.ForWeekday(time.Monday)
	if !ok {
		t.Fatal("expected Monday entry")
	}
	if len(mon.Times) != 4 || mon.Times[2] != (schedule.TimeOfDay{Hour: 14}) {
		t.Fatalf("unexpected Monday times: %v", mon.Times)
	}
}

func TestToWeekly_DropsOutOfRangeValues(t *testing.T) {
	days := []model.AvailabilityDay{
		{Weekday: 9, Times: []int32{540, 720}},
		{Weekday: 0, Times: []int32{-10, 540, 1500, 720}},
	}

	weekly := ToWeekly(days)
	if len(weekly.Days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(weekly.Days))
	}
	sun := weekly.Days[0]
	if len(sun.Times) != 2 {
		t.Fatalf("expected invalid minutes dropped, got %v", sun.Times)
	}
}

func TestToWeekly_MinuteConversion(t *testing.T) {
	back := ToWeekly([]model.AvailabilityDay{{Weekday: 0, Times: []int32{540, 750}}})
	if back.Days[0].Times[1] != (schedule.TimeOfDay{Hour: 12, Minute: 30}) {
		t.Fatalf("unexpected conversion: %v", back.Days[0].Times)
	}
}
