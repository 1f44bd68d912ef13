package outbox

import (
	"encoding/json"
	"time"

	"github.com/medsched/medsched/services/booking-service/internal/model"
)

// Event types double as Kafka topic names.
const (
	EventBookingCreated  = "booking.created.v1"
	EventBookingReleased = "booking.released.v1"
)

// Event is the domain event envelope written to the outbox table.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

func NewBookingCreated(id string, b *model.Booking) Event {
	payload, _ := json.Marshal(map[string]any{
		"booking_id":    id,
		"provider_id":   b.ProviderID,
		"patient_id":    b.PatientID,
		"patient_email": b.PatientEmail,
		"booked_on":     b.BookedOn.Format("2006-01-02"),
		"start_minute":  b.StartMinute,
		"end_minute":    b.EndMinute,
	})
	return Event{
		AggregateType: "booking",
		AggregateID:   id,
		EventType:     EventBookingCreated,
		Payload:       payload,
	}
}

func NewBookingReleased(b model.Booking, releasedAt time.Time, reason string) Event {
	payload, _ := json.Marshal(map[string]any{
		"booking_id":   b.ID,
		"provider_id":  b.ProviderID,
		"booked_on":    b.BookedOn.Format("2006-01-02"),
		"start_minute": b.StartMinute,
		"end_minute":   b.EndMinute,
		"released_at":  releasedAt.UTC().Format(time.RFC3339),
		"reason":       reason,
	})
	return Event{
		AggregateType: "booking",
		AggregateID:   b.ID,
		EventType:     EventBookingReleased,
		Payload:       payload,
	}
}
