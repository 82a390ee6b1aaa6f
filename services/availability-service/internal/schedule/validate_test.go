package schedule

import (
	"testing"
	"time"
)

func TestFits_InsideFirstWindow(t *testing.T) {
	w := sundayWeekly(TimeOfDay{9, 0}, TimeOfDay{12, 0})

	if !Fits(w, nil, Slot{Start: at(9, 0), Minutes: 30}) {
		t.Fatal("slot at window start should fit")
	}
	if !Fits(w, nil, Slot{Start: at(11, 30), Minutes: 30}) {
		t.Fatal("slot ending exactly at window end should fit")
	}
	if Fits(w, nil, Slot{Start: at(11, 45), Minutes: 30}) {
		t.Fatal("slot overrunning window end should not fit")
	}
	if Fits(w, nil, Slot{Start: at(8, 45), Minutes: 30}) {
		t.Fatal("slot starting before window should not fit")
	}
}

func TestFits_NoWeekdayEntry(t *testing.T) {
	w := Weekly{Days: []DayWindows{{Weekday: time.Monday, Times: []TimeOfDay{{9, 0}, {17, 0}}}}}

	if Fits(w, nil, Slot{Start: at(10, 0), Minutes: 30}) {
		t.Fatal("day without availability should reject")
	}
}

func TestFits_OnlyFirstPairConsulted(t *testing.T) {
	// The validator deliberately ignores windows beyond the first pair.
	w := sundayWeekly(TimeOfDay{9, 0}, TimeOfDay{10, 0}, TimeOfDay{14, 0}, TimeOfDay{15, 0})

	if Fits(w, nil, Slot{Start: at(14, 0), Minutes: 30}) {
		t.Fatal("second window should not be consulted")
	}
	if !Fits(w, nil, Slot{Start: at(9, 0), Minutes: 30}) {
		t.Fatal("first window should accept")
	}
}

func TestFits_BufferedConflict(t *testing.T) {
	w := sundayWeekly(TimeOfDay{9, 0}, TimeOfDay{12, 0})
	events := []Event{{Start: at(9, 0), End: at(9, 30), Buffer: Buffer{After: 15}}}

	// Buffered interval runs to 09:45: 09:30 conflicts, 09:45 does not.
	if Fits(w, events, Slot{Start: at(9, 30), Minutes: 30}) {
		t.Fatal("slot inside buffer tail should be rejected")
	}
	if !Fits(w, events, Slot{Start: at(9, 45), Minutes: 30}) {
		t.Fatal("slot starting exactly at buffered end should be accepted")
	}
}

func TestFits_BoundaryExactness(t *testing.T) {
	w := sundayWeekly(TimeOfDay{9, 0}, TimeOfDay{12, 0})
	events := []Event{{Start: at(10, 0), End: at(10, 30), Buffer: Buffer{Before: 15, After: 15}}}

	// Buffered interval is [09:45, 10:45). Touching endpoints never conflict.
	if !Fits(w, events, Slot{Start: at(9, 15), Minutes: 30}) {
		t.Fatal("slot ending exactly at buffered start should be accepted")
	}
	if !Fits(w, events, Slot{Start: at(10, 45), Minutes: 30}) {
		t.Fatal("slot starting exactly at buffered end should be accepted")
	}
	if Fits(w, events, Slot{Start: at(9, 16), Minutes: 30}) {
		t.Fatal("one minute of overlap should conflict")
	}
}

func TestFitsIgnoringBuffers(t *testing.T) {
	w := sundayWeekly(TimeOfDay{9, 0}, TimeOfDay{12, 0})
	events := []Event{{Start: at(9, 0), End: at(9, 30), Buffer: Buffer{After: 30}}}

	if !FitsIgnoringBuffers(w, events, Slot{Start: at(9, 30), Minutes: 30}) {
		t.Fatal("unbuffered variant should ignore the after-buffer")
	}
	if FitsIgnoringBuffers(w, events, Slot{Start: at(9, 15), Minutes: 30}) {
		t.Fatal("nominal overlap should still conflict")
	}
}

func TestFits_Idempotent(t *testing.T) {
	w := sundayWeekly(TimeOfDay{9, 0}, TimeOfDay{12, 0})
	events := []Event{{Start: at(10, 0), End: at(10, 30)}}
	s := Slot{Start: at(9, 30), Minutes: 30}

	first := Fits(w, events, s)
	second := Fits(w, events, s)
	if first != second {
		t.Fatalf("validation is not idempotent: %v then %v", first, second)
	}
}

func TestFits_MalformedInputs(t *testing.T) {
	if Fits(Weekly{}, nil, Slot{Start: at(9, 0), Minutes: 30}) {
		t.Fatal("empty template should reject")
	}
	w := sundayWeekly(TimeOfDay{9, 0}) // odd pair-sequence
	if Fits(w, nil, Slot{Start: at(9, 0), Minutes: 30}) {
		t.Fatal("odd pair-sequence should reject")
	}
	full := sundayWeekly(TimeOfDay{9, 0}, TimeOfDay{12, 0})
	if Fits(full, nil, Slot{Start: at(9, 0), Minutes: 0}) {
		t.Fatal("non-positive duration should reject")
	}
}
