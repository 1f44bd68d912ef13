package schedule

import "testing"

func TestParseStoredSlots(t *testing.T) {
	windows, err := parseStoredSlots([]byte(`[{"start":"09:00","end":"12:00"},{"start":"14:00","end":"24:00"}]`))
	if err != nil {
		t.Fatalf("parseStoredSlots failed: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	if windows[0].StartMinute != 540 || windows[0].EndMinute != 720 {
		t.Fatalf("unexpected first window: %+v", windows[0])
	}
	if windows[1].EndMinute != 1440 {
		t.Fatalf("24:00 should map to 1440, got %d", windows[1].EndMinute)
	}

	if _, err := parseStoredSlots([]byte(`[{"start":"9am","end":"12:00"}]`)); err == nil {
		t.Fatal("expected error for malformed clock value")
	}

	windows, err = parseStoredSlots(nil)
	if err != nil || windows != nil {
		t.Fatalf("empty input should yield nothing, got %v / %v", windows, err)
	}
}
