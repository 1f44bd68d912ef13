package model

import "time"

const (
	StatusActive   = "active"
	StatusReleased = "released"
)

// Booking holds one consultation slot on a provider's calendar. BookedOn is
// the calendar date in the provider's timezone; start and end are minutes
// from local midnight.
type Booking struct {
	ID            string
	ProviderID    string
	PatientID     string
	PatientName   string
	PatientEmail  string
	BookedOn      time.Time
	StartMinute   int
	EndMinute     int
	Status        string
	ReleasedAt    *time.Time
	ReleaseReason string
	CreatedAt     time.Time
}
