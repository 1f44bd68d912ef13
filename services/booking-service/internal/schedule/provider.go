package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/medsched/medsched/services/booking-service/internal/availability"
)

// ErrProviderNotFound marks a provider id with no profile and no schedule
// data at all, as opposed to one who simply has not published availability.
var ErrProviderNotFound = errors.New("provider not found")

// DayAvailability is a provider's resolved schedule for one calendar date:
// the weekly template's windows with blocked dates already applied.
type DayAvailability struct {
	Bookable            bool
	Windows             []availability.Window
	ConsultationMinutes int
	Timezone            string
	ScheduleVersion     int64
}

// Provider resolves day availability from the schedule service's data,
// either over gRPC or straight from its tables.
type Provider interface {
	DayAvailability(ctx context.Context, providerID, date string) (DayAvailability, error)
}

// Location returns the provider's timezone, falling back to UTC when the
// stored name does not resolve.
func (d DayAvailability) Location() *time.Location {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
