package outbox

import (
	"encoding/json"
	"time"
)

// Event types double as Kafka topic names.
const (
	EventDayUpdated     = "schedule.day.updated.v1"
	EventDatesBlocked   = "schedule.dates.blocked.v1"
	EventDatesUnblocked = "schedule.dates.unblocked.v1"
)

// Event is the domain event envelope written to the outbox table.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

type dayUpdatedPayload struct {
	ProviderID  string `json:"provider_id"`
	Weekday     string `json:"weekday"`
	IsAvailable bool   `json:"is_available"`
	Version     int64  `json:"version"`
}

func NewDayUpdated(providerID, weekday string, isAvailable bool, version int64) Event {
	payload, _ := json.Marshal(dayUpdatedPayload{
		ProviderID:  providerID,
		Weekday:     weekday,
		IsAvailable: isAvailable,
		Version:     version,
	})
	return Event{
		AggregateType: "provider_schedule",
		AggregateID:   providerID,
		EventType:     EventDayUpdated,
		Payload:       payload,
	}
}

type blockedDatesPayload struct {
	ProviderID string   `json:"provider_id"`
	Dates      []string `json:"dates"`
	Version    int64    `json:"blocked_version"`
}

func NewDatesBlocked(providerID string, dates []time.Time, version int64) Event {
	return datesEvent(EventDatesBlocked, providerID, dates, version)
}

func NewDatesUnblocked(providerID string, dates []time.Time, version int64) Event {
	return datesEvent(EventDatesUnblocked, providerID, dates, version)
}

func datesEvent(eventType, providerID string, dates []time.Time, version int64) Event {
	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, d.Format("2006-01-02"))
	}
	payload, _ := json.Marshal(blockedDatesPayload{
		ProviderID: providerID,
		Dates:      formatted,
		Version:    version,
	})
	return Event{
		AggregateType: "provider_schedule",
		AggregateID:   providerID,
		EventType:     eventType,
		Payload:       payload,
	}
}
