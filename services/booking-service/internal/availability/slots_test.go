package availability

import "testing"

func TestUnits_PartitionsWindow(t *testing.T) {
	units := Units([]Window{{StartMinute: 9 * 60, EndMinute: 12 * 60}}, 30)
	if len(units) != 6 {
		t.Fatalf("expected 6 units, got %d", len(units))
	}
	if units[0] != (Window{StartMinute: 540, EndMinute: 570}) {
		t.Fatalf("expected first unit 09:00-09:30, got %+v", units[0])
	}
	if units[5] != (Window{StartMinute: 690, EndMinute: 720}) {
		t.Fatalf("expected last unit 11:30-12:00, got %+v", units[5])
	}
}

func TestUnits_DropsRemainder(t *testing.T) {
	// 09:00-10:15 with 30-minute units: the 10:00-10:15 tail is unusable.
	units := Units([]Window{{StartMinute: 540, EndMinute: 615}}, 30)
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if units[1].EndMinute != 600 {
		t.Fatalf("expected last unit to end at 10:00, got %d", units[1].EndMinute)
	}
}

func TestUnits_WindowShorterThanDuration(t *testing.T) {
	if units := Units([]Window{{StartMinute: 540, EndMinute: 560}}, 30); units != nil {
		t.Fatalf("expected no units, got %v", units)
	}
}

func TestAvailableUnits_RemovesBookedUnit(t *testing.T) {
	windows := []Window{{StartMinute: 9 * 60, EndMinute: 12 * 60}}
	busy := []Window{{StartMinute: 600, EndMinute: 630}}

	units := AvailableUnits(windows, 30, busy, 0)
	if len(units) != 5 {
		t.Fatalf("expected 5 units, got %d", len(units))
	}
	for _, u := range units {
		if u.StartMinute == 600 {
			t.Fatalf("10:00 unit should be removed, got %v", units)
		}
	}
}

func TestAvailableUnits_RemovesOverlappingBusy(t *testing.T) {
	// A busy interval that straddles two units knocks out both.
	windows := []Window{{StartMinute: 540, EndMinute: 660}}
	busy := []Window{{StartMinute: 585, EndMinute: 615}}

	units := AvailableUnits(windows, 30, busy, 0)
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d: %v", len(units), units)
	}
	if units[0].StartMinute != 540 || units[1].StartMinute != 630 {
		t.Fatalf("expected 09:00 and 10:30 to survive, got %v", units)
	}
}

func TestAvailableUnits_SkipsPast(t *testing.T) {
	windows := []Window{{StartMinute: 540, EndMinute: 600}}

	// 09:31 local time: both the 09:00 unit and anything started are gone.
	units := AvailableUnits(windows, 30, nil, 571)
	if len(units) != 0 {
		t.Fatalf("expected no units, got %v", units)
	}

	units = AvailableUnits(windows, 30, nil, 540)
	if len(units) != 1 || units[0].StartMinute != 540 {
		t.Fatalf("a unit starting exactly now should remain, got %v", units)
	}
}

func TestAvailableUnits_MultipleWindows(t *testing.T) {
	windows := []Window{
		{StartMinute: 540, EndMinute: 660},
		{StartMinute: 840, EndMinute: 900},
	}
	units := AvailableUnits(windows, 60, nil, 0)
	if len(units) != 3 {
		t.Fatalf("expected 3 units, got %v", units)
	}
	if units[2] != (Window{StartMinute: 840, EndMinute: 900}) {
		t.Fatalf("expected afternoon unit, got %+v", units[2])
	}
}
