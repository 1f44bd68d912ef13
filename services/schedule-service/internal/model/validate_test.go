package model

import (
	"errors"
	"testing"
	"time"
)

func slot(start, end int) TimeSlot {
	return TimeSlot{StartMinute: start, EndMinute: end}
}

func TestValidate_EmptyAvailableDay(t *testing.T) {
	err := Validate(DayTemplate{Day: Monday, IsAvailable: true})
	if !errors.Is(err, ErrEmptyAvailableDay) {
		t.Fatalf("expected ErrEmptyAvailableDay, got %v", err)
	}
}

func TestValidate_UnavailableDayPasses(t *testing.T) {
	if err := Validate(DayTemplate{Day: Sunday}); err != nil {
		t.Fatalf("unavailable day should validate, got %v", err)
	}
}

func TestValidate_InvalidSlotBounds(t *testing.T) {
	cases := []TimeSlot{
		slot(600, 600),
		slot(600, 540),
		slot(-10, 60),
		slot(1380, 1500),
	}
	for _, s := range cases {
		err := Validate(DayTemplate{Day: Monday, IsAvailable: true, Slots: []TimeSlot{s}})
		var bounds *SlotBoundsError
		if !errors.As(err, &bounds) {
			t.Fatalf("slot %v: expected SlotBoundsError, got %v", s, err)
		}
		if bounds.Slot != s {
			t.Fatalf("expected offending slot %v, got %v", s, bounds.Slot)
		}
	}
}

func TestValidate_OverlappingSlots(t *testing.T) {
	// 09:00-12:00 then 11:00-13:00.
	err := Validate(DayTemplate{
		Day:         Monday,
		IsAvailable: true,
		Slots:       []TimeSlot{slot(540, 720), slot(660, 780)},
	})
	var overlap *SlotOverlapError
	if !errors.As(err, &overlap) {
		t.Fatalf("expected SlotOverlapError, got %v", err)
	}
	if overlap.A != slot(540, 720) || overlap.B != slot(660, 780) {
		t.Fatalf("unexpected overlap pair: %v / %v", overlap.A, overlap.B)
	}
}

func TestValidate_OverlapDetectedRegardlessOfInputOrder(t *testing.T) {
	err := Validate(DayTemplate{
		Day:         Monday,
		IsAvailable: true,
		Slots:       []TimeSlot{slot(660, 780), slot(540, 720)},
	})
	var overlap *SlotOverlapError
	if !errors.As(err, &overlap) {
		t.Fatalf("expected SlotOverlapError, got %v", err)
	}
}

func TestValidate_AdjacentSlotsAllowed(t *testing.T) {
	err := Validate(DayTemplate{
		Day:         Tuesday,
		IsAvailable: true,
		Slots:       []TimeSlot{slot(540, 720), slot(720, 840)},
	})
	if err != nil {
		t.Fatalf("back-to-back slots should validate, got %v", err)
	}
}

func TestValidate_OutOfOrder(t *testing.T) {
	err := Validate(DayTemplate{
		Day:         Wednesday,
		IsAvailable: true,
		Slots:       []TimeSlot{slot(780, 840), slot(540, 600)},
	})
	if !errors.Is(err, ErrSlotsOutOfOrder) {
		t.Fatalf("expected ErrSlotsOutOfOrder, got %v", err)
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"09:00", 540, true},
		{"00:00", 0, true},
		{"24:00", 1440, true},
		{"23:59", 1439, true},
		{"24:01", 0, false},
		{"9am", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, err := ParseClock(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Fatalf("ParseClock(%q) = %d, %v; want %d", c.in, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Fatalf("ParseClock(%q) should fail", c.in)
		}
	}
}

func TestTimeSlotJSONRoundTrip(t *testing.T) {
	s := slot(540, 570)
	data, err := s.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"start":"09:00","end":"09:30"}` {
		t.Fatalf("unexpected JSON: %s", data)
	}
	var back TimeSlot
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back != s {
		t.Fatalf("round trip mismatch: %v != %v", back, s)
	}
}

func TestDayTemplateEqual(t *testing.T) {
	a := DayTemplate{Day: Monday, IsAvailable: true, Slots: []TimeSlot{slot(540, 720)}}
	b := a.CloneSlots()
	if !a.Equal(b) {
		t.Fatal("clone should be structurally equal")
	}
	b.Slots[0].EndMinute = 700
	if a.Equal(b) {
		t.Fatal("edited clone should not be equal")
	}
}

func TestFromTimeWeekday(t *testing.T) {
	if FromTimeWeekday(time.Sunday) != Sunday {
		t.Fatal("time.Sunday should map to Sunday")
	}
	if FromTimeWeekday(time.Monday) != Monday {
		t.Fatal("time.Monday should map to Monday")
	}
	if FromTimeWeekday(time.Saturday) != Saturday {
		t.Fatal("time.Saturday should map to Saturday")
	}
}
