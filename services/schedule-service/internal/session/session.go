package session

import (
	"time"

	"github.com/medsched/medsched/services/schedule-service/internal/model"
)

// Session is a provider's draft copy of the weekly schedule. Edits land in
// Draft only; Baseline remembers what each day looked like (and its version)
// when the session opened, so a save can detect concurrent changes per day.
type Session struct {
	ID         string                               `json:"id"`
	ProviderID string                               `json:"provider_id"`
	Draft      map[model.Weekday]model.DayTemplate  `json:"draft"`
	Baseline   map[model.Weekday]model.VersionedDay `json:"baseline"`
	CreatedAt  time.Time                            `json:"created_at"`
	UpdatedAt  time.Time                            `json:"updated_at"`
}

// IsDirty reports whether the draft for day differs from its baseline.
func (s *Session) IsDirty(day model.Weekday) bool {
	return !s.Draft[day].Equal(s.Baseline[day].Template)
}

// DirtyDays returns the edited days in weekday order.
func (s *Session) DirtyDays() []model.Weekday {
	var days []model.Weekday
	for d := model.Monday; d <= model.Sunday; d++ {
		if s.IsDirty(d) {
			days = append(days, d)
		}
	}
	return days
}

// SetDay replaces the draft template for its day.
func (s *Session) SetDay(tpl model.DayTemplate) {
	s.Draft[tpl.Day] = tpl.Normalize().CloneSlots()
	s.UpdatedAt = time.Now().UTC()
}

// Revert restores a single day's draft to its baseline.
func (s *Session) Revert(day model.Weekday) {
	s.Draft[day] = s.Baseline[day].Template.CloneSlots()
	s.UpdatedAt = time.Now().UTC()
}
