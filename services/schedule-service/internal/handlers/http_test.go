package handlers

import (
	"testing"

	"github.com/medsched/medsched/services/schedule-service/internal/model"
)

func TestParseDates(t *testing.T) {
	dates, err := parseDates([]string{"2026-09-01", " 2026-09-02 "})
	if err != nil {
		t.Fatalf("parseDates failed: %v", err)
	}
	if len(dates) != 2 {
		t.Fatalf("expected 2 dates, got %d", len(dates))
	}
	if dates[0].Format("2006-01-02") != "2026-09-01" {
		t.Fatalf("unexpected first date: %v", dates[0])
	}

	if _, err := parseDates(nil); err == nil {
		t.Fatal("empty input should fail")
	}
	if _, err := parseDates([]string{"09/01/2026"}); err == nil {
		t.Fatal("non ISO date should fail")
	}

	many := make([]string, maxDatesPerRequest+1)
	for i := range many {
		many[i] = "2026-09-01"
	}
	if _, err := parseDates(many); err == nil {
		t.Fatal("oversized batch should fail")
	}
}

func TestValidationCode(t *testing.T) {
	cases := []struct {
		tpl  model.DayTemplate
		code string
	}{
		{model.DayTemplate{Day: model.Monday, IsAvailable: true}, "empty_available_day"},
		{model.DayTemplate{Day: model.Monday, IsAvailable: true, Slots: []model.TimeSlot{{StartMinute: 600, EndMinute: 600}}}, "slot_out_of_bounds"},
		{model.DayTemplate{Day: model.Monday, IsAvailable: true, Slots: []model.TimeSlot{{StartMinute: 540, EndMinute: 660}, {StartMinute: 600, EndMinute: 720}}}, "slot_overlap"},
	}
	for _, tc := range cases {
		err := model.Validate(tc.tpl)
		if err == nil {
			t.Fatalf("expected validation error for %+v", tc.tpl)
		}
		if got := validationCode(err); got != tc.code {
			t.Fatalf("validationCode(%v) = %q, want %q", err, got, tc.code)
		}
	}
}

func TestToDayResponseNeverReturnsNilSlots(t *testing.T) {
	resp := toDayResponse(model.VersionedDay{Template: model.Unavailable(model.Sunday), Version: 0})
	if resp.Slots == nil {
		t.Fatal("slots should encode as an empty array, not null")
	}
	if resp.Day != model.Sunday || resp.IsAvailable {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
