package model

import (
	"errors"
	"fmt"
)

// ErrEmptyAvailableDay rejects a day marked available with no slots.
var ErrEmptyAvailableDay = errors.New("available day must have at least one time slot")

// SlotBoundsError reports a slot whose start does not precede its end,
// or that falls outside 00:00-24:00.
type SlotBoundsError struct {
	Slot TimeSlot
}

func (e *SlotBoundsError) Error() string {
	return fmt.Sprintf("invalid slot bounds %s", e.Slot)
}

// SlotOverlapError reports two slots that overlap. A starts before B.
type SlotOverlapError struct {
	A TimeSlot
	B TimeSlot
}

func (e *SlotOverlapError) Error() string {
	return fmt.Sprintf("slots %s and %s overlap", e.A, e.B)
}

// ErrSlotsOutOfOrder rejects a slot list not sorted ascending by start.
// Non-overlap already implies a unique chronological order; this catches
// callers that bypassed sorting.
var ErrSlotsOutOfOrder = errors.New("time slots must be sorted ascending by start")

// Validate checks a day template for internal consistency. Rules apply in
// order and the first failure wins. Pure: no side effects, t is not mutated.
func Validate(t DayTemplate) error {
	if t.IsAvailable && len(t.Slots) == 0 {
		return ErrEmptyAvailableDay
	}
	for _, s := range t.Slots {
		if !s.Bounded() {
			return &SlotBoundsError{Slot: s}
		}
	}

	sorted := t.SortedSlots()
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].EndMinute > sorted[i].StartMinute {
			return &SlotOverlapError{A: sorted[i-1], B: sorted[i]}
		}
	}

	for i := range t.Slots {
		if t.Slots[i] != sorted[i] {
			return ErrSlotsOutOfOrder
		}
	}
	return nil
}
