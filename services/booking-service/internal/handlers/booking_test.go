package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/medsched/medsched/services/booking-service/internal/availability"
	"github.com/medsched/medsched/services/booking-service/internal/model"
	"github.com/medsched/medsched/services/booking-service/internal/outbox"
	"github.com/medsched/medsched/services/booking-service/internal/schedule"
	"github.com/medsched/medsched/services/booking-service/internal/storage"
)

// A date far enough out that the past-start filter never fires.
const testDate = "2030-06-10"

type fakeTx struct {
	pgx.Tx
}

func (fakeTx) Commit(ctx context.Context) error   { return nil }
func (fakeTx) Rollback(ctx context.Context) error { return nil }

type fakeProvider struct {
	day schedule.DayAvailability
	err error
}

func (p *fakeProvider) DayAvailability(ctx context.Context, providerID, date string) (schedule.DayAvailability, error) {
	return p.day, p.err
}

// fakeStore keeps bookings in memory and enforces the active-slot
// uniqueness the partial index provides in Postgres.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int
	bookings map[string]model.Booking
	lockRec  storage.IdempotencyRecord
	creates  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{bookings: map[string]model.Booking{}}
}

func (s *fakeStore) Begin(ctx context.Context) (pgx.Tx, error) {
	return fakeTx{}, nil
}

func (s *fakeStore) LockIdempotencyKey(ctx context.Context, tx pgx.Tx, providerID, key string) (storage.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lockRec, false, nil
}

func (s *fakeStore) FinalizeIdempotency(ctx context.Context, tx pgx.Tx, providerID, key, bookingID string, statusCode int, response []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockRec = storage.IdempotencyRecord{
		ProviderID:      providerID,
		IdempotencyKey:  key,
		BookingID:       bookingID,
		StatusCode:      statusCode,
		ResponsePayload: response,
	}
	return nil
}

func (s *fakeStore) Create(ctx context.Context, tx pgx.Tx, b *model.Booking) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	for _, existing := range s.bookings {
		if existing.Status == model.StatusActive &&
			existing.ProviderID == b.ProviderID &&
			existing.BookedOn.Equal(b.BookedOn) &&
			existing.StartMinute == b.StartMinute {
			return "", &pgconn.PgError{Code: "23505", ConstraintName: "uq_bookings_active_slot"}
		}
	}
	s.nextID++
	id := fmt.Sprintf("booking-%d", s.nextID)
	stored := *b
	stored.ID = id
	stored.CreatedAt = time.Now()
	s.bookings[id] = stored
	return id, nil
}

func (s *fakeStore) GetForUpdate(ctx context.Context, tx pgx.Tx, providerID, bookingID string) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok || b.ProviderID != providerID {
		return model.Booking{}, pgx.ErrNoRows
	}
	return b, nil
}

func (s *fakeStore) Release(ctx context.Context, tx pgx.Tx, providerID, bookingID, reason string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bookings[bookingID]
	now := time.Now()
	b.Status = model.StatusReleased
	b.ReleasedAt = &now
	b.ReleaseReason = reason
	s.bookings[bookingID] = b
	return now, nil
}

func (s *fakeStore) ListActiveWindows(ctx context.Context, providerID string, bookedOn time.Time) ([]availability.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var busy []availability.Window
	for _, b := range s.bookings {
		if b.Status == model.StatusActive && b.ProviderID == providerID && b.BookedOn.Equal(bookedOn) {
			busy = append(busy, availability.Window{StartMinute: b.StartMinute, EndMinute: b.EndMinute})
		}
	}
	return busy, nil
}

func (s *fakeStore) ListByProvider(ctx context.Context, providerID string, from, to *time.Time, limit int) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.ProviderID == providerID {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []outbox.Event
}

func (r *fakeRecorder) Insert(ctx context.Context, tx pgx.Tx, evt outbox.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func newTestHandler(store *fakeStore) (*BookingHandler, *fakeRecorder) {
	recorder := &fakeRecorder{}
	provider := &fakeProvider{day: schedule.DayAvailability{
		Bookable:            true,
		Windows:             []availability.Window{{StartMinute: 540, EndMinute: 720}},
		ConsultationMinutes: 30,
		Timezone:            "UTC",
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBookingHandler(store, recorder, logger, provider), recorder
}

func postBooking(h *BookingHandler, startMinute int, headers map[string]string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(createBookingRequest{
		ProviderID:  "prov-1",
		Date:        testDate,
		StartMinute: startMinute,
		PatientName: "Pat Doe",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/book", bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.Create(rr, req)
	return rr
}

func getAvailability(h *BookingHandler) availabilityResponse {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/availability?provider_id=prov-1&date="+testDate, nil)
	rr := httptest.NewRecorder()
	h.Availability(rr, req)
	var resp availabilityResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	return resp
}

func hasUnit(resp availabilityResponse, startMinute int) bool {
	for _, s := range resp.Slots {
		if s.StartMinute == startMinute {
			return true
		}
	}
	return false
}

func TestCreateBookedSlotReturnsConflict(t *testing.T) {
	store := newFakeStore()
	h, _ := newTestHandler(store)

	if rr := postBooking(h, 600, nil); rr.Code != http.StatusCreated {
		t.Fatalf("first booking: status %d, body %s", rr.Code, rr.Body.String())
	}

	// Second caller holds a stale snapshot that still lists 10:00.
	rr := postBooking(h, 600, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("stale rebooking: status %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestCreateOnBlockedDateReturnsConflict(t *testing.T) {
	store := newFakeStore()
	h, _ := newTestHandler(store)
	h.schedule = &fakeProvider{day: schedule.DayAvailability{Bookable: false, Timezone: "UTC", ConsultationMinutes: 30}}

	rr := postBooking(h, 600, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("blocked date booking: status %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
	store := newFakeStore()
	h, _ := newTestHandler(store)

	const callers = 8
	results := make(chan int, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- postBooking(h, 600, nil).Code
		}()
	}
	wg.Wait()
	close(results)

	var created, conflicted int
	for code := range results {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicted++
		default:
			t.Fatalf("unexpected status %d", code)
		}
	}
	if created != 1 {
		t.Fatalf("winners = %d, want exactly 1", created)
	}
	if conflicted != callers-1 {
		t.Fatalf("conflicts = %d, want %d", conflicted, callers-1)
	}
}

func TestReleaseReopensSlot(t *testing.T) {
	store := newFakeStore()
	h, recorder := newTestHandler(store)

	rr := postBooking(h, 600, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("booking failed: status %d", rr.Code)
	}
	var created createBookingResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode booking response: %v", err)
	}

	if resp := getAvailability(h); hasUnit(resp, 600) {
		t.Fatal("booked unit should be absent from availability")
	}

	body, _ := json.Marshal(releaseBookingRequest{BookingID: created.BookingID})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/release", bytes.NewReader(body))
	req.Header.Set("X-Provider-Id", "prov-1")
	release := httptest.NewRecorder()
	h.Release(release, req)
	if release.Code != http.StatusOK {
		t.Fatalf("release failed: status %d, body %s", release.Code, release.Body.String())
	}

	if resp := getAvailability(h); !hasUnit(resp, 600) {
		t.Fatal("released unit should reappear in availability")
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.events) != 2 {
		t.Fatalf("events = %d, want created + released", len(recorder.events))
	}
	if recorder.events[1].EventType != outbox.EventBookingReleased {
		t.Fatalf("second event = %q, want %q", recorder.events[1].EventType, outbox.EventBookingReleased)
	}
}

func TestIdempotencyReplaysFinalizedRecord(t *testing.T) {
	store := newFakeStore()
	h, _ := newTestHandler(store)

	// A concurrent holder finalized this key before our first SELECT could
	// see its row; the locked record must replay regardless.
	store.lockRec = storage.IdempotencyRecord{
		ProviderID:      "prov-1",
		IdempotencyKey:  "key-1",
		BookingID:       "booking-9",
		StatusCode:      http.StatusCreated,
		ResponsePayload: []byte(`{"booking_id":"booking-9"}`),
	}

	rr := postBooking(h, 600, map[string]string{"Idempotency-Key": "key-1"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("replay status = %d, want %d", rr.Code, http.StatusCreated)
	}
	if rr.Body.String() != `{"booking_id":"booking-9"}` {
		t.Fatalf("replay body = %s, want stored payload", rr.Body.String())
	}
	if store.creates != 0 {
		t.Fatalf("creates = %d, replay must not re-insert", store.creates)
	}
}

func TestUnknownProviderReturnsNotFound(t *testing.T) {
	store := newFakeStore()
	h, _ := newTestHandler(store)
	h.schedule = &fakeProvider{err: schedule.ErrProviderNotFound}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/availability?provider_id=ghost&date="+testDate, nil)
	rr := httptest.NewRecorder()
	h.Availability(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("availability status = %d, want %d", rr.Code, http.StatusNotFound)
	}

	if rr := postBooking(h, 600, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("booking status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}
