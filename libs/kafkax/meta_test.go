package kafkax

import (
	"reflect"
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestEventHeadersRoundTrip(t *testing.T) {
	msg := kafka.Message{
		Topic:   "schedule.day.updated.v1",
		Headers: EventHeaders("evt-123", "schedule.day.updated.v1"),
	}
	meta := ExtractEventMeta(msg)
	want := EventMeta{EventID: "evt-123", EventType: "schedule.day.updated.v1"}
	if !reflect.DeepEqual(meta, want) {
		t.Fatalf("ExtractEventMeta = %+v, want %+v", meta, want)
	}
}

func TestExtractEventMetaFallbacks(t *testing.T) {
	msg := kafka.Message{
		Topic: "booking.created.v1",
		Key:   []byte("provider-1"),
	}
	meta := ExtractEventMeta(msg)
	if meta.EventID != "provider-1" {
		t.Fatalf("event id fallback = %q, want message key", meta.EventID)
	}
	if meta.EventType != "booking.created.v1" {
		t.Fatalf("event type fallback = %q, want topic", meta.EventType)
	}
}

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" kafka-1:9092, ,kafka-2:9092 ")
	want := []string{"kafka-1:9092", "kafka-2:9092"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitBrokers = %v, want %v", got, want)
	}
	if SplitBrokers("") != nil {
		t.Fatal("empty input should yield no brokers")
	}
}
