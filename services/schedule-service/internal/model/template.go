package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Weekday is the provider-facing day-of-week enum, Monday through Sunday.
// It deliberately does not follow time.Weekday's Sunday-first numbering;
// FromTimeWeekday converts.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range weekdayNames {
		if name == s {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func FromTimeWeekday(wd time.Weekday) Weekday {
	if wd == time.Sunday {
		return Sunday
	}
	return Weekday(int(wd) - 1)
}

func (d Weekday) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid weekday %d", int(d))
	}
	return json.Marshal(d.String())
}

func (d *Weekday) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	wd, err := ParseWeekday(s)
	if err != nil {
		return err
	}
	*d = wd
	return nil
}

// TimeSlot is a half-open wall-clock interval [StartMinute, EndMinute),
// minutes from midnight, minute granularity. Immutable value.
type TimeSlot struct {
	StartMinute int `json:"-"`
	EndMinute   int `json:"-"`
}

func (s TimeSlot) Bounded() bool {
	return s.StartMinute >= 0 && s.EndMinute <= 24*60 && s.StartMinute < s.EndMinute
}

func (s TimeSlot) String() string {
	return FormatClock(s.StartMinute) + "-" + FormatClock(s.EndMinute)
}

type slotJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (s TimeSlot) MarshalJSON() ([]byte, error) {
	return json.Marshal(slotJSON{
		Start: FormatClock(s.StartMinute),
		End:   FormatClock(s.EndMinute),
	})
}

func (s *TimeSlot) UnmarshalJSON(data []byte) error {
	var raw slotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := ParseClock(raw.Start)
	if err != nil {
		return fmt.Errorf("slot start: %w", err)
	}
	end, err := ParseClock(raw.End)
	if err != nil {
		return fmt.Errorf("slot end: %w", err)
	}
	s.StartMinute = start
	s.EndMinute = end
	return nil
}

// ParseClock parses an HH:MM 24-hour string into minutes from midnight.
// "24:00" is accepted as an end-of-day boundary.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%02d:%02d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	if m < 0 || m > 59 || h < 0 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	return h*60 + m, nil
}

func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// DayTemplate is the recurring availability pattern for one day-of-week.
// When IsAvailable is false Slots is empty; when true Slots is non-empty,
// sorted ascending by start, and pairwise non-overlapping.
type DayTemplate struct {
	Day         Weekday    `json:"day"`
	IsAvailable bool       `json:"is_available"`
	Slots       []TimeSlot `json:"time_slots"`
}

// Unavailable returns the default template for a day no template has been
// saved for yet.
func Unavailable(day Weekday) DayTemplate {
	return DayTemplate{Day: day, IsAvailable: false}
}

// Normalize enforces the unavailable-implies-empty invariant before
// validation or persistence.
func (t DayTemplate) Normalize() DayTemplate {
	if !t.IsAvailable {
		t.Slots = nil
	}
	return t
}

// Equal is a field-by-field structural compare, used for dirty tracking.
func (t DayTemplate) Equal(other DayTemplate) bool {
	if t.Day != other.Day || t.IsAvailable != other.IsAvailable || len(t.Slots) != len(other.Slots) {
		return false
	}
	for i := range t.Slots {
		if t.Slots[i] != other.Slots[i] {
			return false
		}
	}
	return true
}

// CloneSlots returns a copy safe to hand to another owner.
func (t DayTemplate) CloneSlots() DayTemplate {
	if t.Slots == nil {
		return t
	}
	slots := make([]TimeSlot, len(t.Slots))
	copy(slots, t.Slots)
	t.Slots = slots
	return t
}

// SortedSlots returns a copy of the slots sorted ascending by start minute.
func (t DayTemplate) SortedSlots() []TimeSlot {
	slots := make([]TimeSlot, len(t.Slots))
	copy(slots, t.Slots)
	sort.Slice(slots, func(i, j int) bool { return slots[i].StartMinute < slots[j].StartMinute })
	return slots
}

// VersionedDay pairs a day template with its optimistic-concurrency version.
type VersionedDay struct {
	Template DayTemplate `json:"template"`
	Version  int64       `json:"version"`
}
