package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/medsched/medsched/services/booking-service/internal/availability"
	"github.com/medsched/medsched/services/booking-service/internal/model"
	"github.com/medsched/medsched/services/booking-service/internal/outbox"
	"github.com/medsched/medsched/services/booking-service/internal/schedule"
	"github.com/medsched/medsched/services/booking-service/internal/storage"
)

// BookingStore is the ledger surface the handler drives; satisfied by
// storage.BookingRepository.
type BookingStore interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	LockIdempotencyKey(ctx context.Context, tx pgx.Tx, providerID, key string) (storage.IdempotencyRecord, bool, error)
	FinalizeIdempotency(ctx context.Context, tx pgx.Tx, providerID, key, bookingID string, statusCode int, response []byte) error
	Create(ctx context.Context, tx pgx.Tx, b *model.Booking) (string, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, providerID, bookingID string) (model.Booking, error)
	Release(ctx context.Context, tx pgx.Tx, providerID, bookingID, reason string) (time.Time, error)
	ListActiveWindows(ctx context.Context, providerID string, bookedOn time.Time) ([]availability.Window, error)
	ListByProvider(ctx context.Context, providerID string, from, to *time.Time, limit int) ([]model.Booking, error)
}

// EventRecorder writes domain events inside the booking transaction;
// satisfied by outbox.Repository.
type EventRecorder interface {
	Insert(ctx context.Context, tx pgx.Tx, evt outbox.Event) error
}

type BookingHandler struct {
	repo       BookingStore
	outboxRepo EventRecorder
	logger     *slog.Logger
	schedule   schedule.Provider
}

func NewBookingHandler(repo BookingStore, outboxRepo EventRecorder, logger *slog.Logger, scheduleProvider schedule.Provider) *BookingHandler {
	return &BookingHandler{
		repo:       repo,
		outboxRepo: outboxRepo,
		logger:     logger,
		schedule:   scheduleProvider,
	}
}

type slotItem struct {
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

type availabilityResponse struct {
	ProviderID          string     `json:"provider_id"`
	Date                string     `json:"date"`
	Timezone            string     `json:"timezone"`
	ConsultationMinutes int        `json:"consultation_minutes"`
	Bookable            bool       `json:"bookable"`
	Slots               []slotItem `json:"slots"`
}

type createBookingRequest struct {
	ProviderID   string `json:"provider_id"`
	Date         string `json:"date"`
	StartMinute  int    `json:"start_minute"`
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
}

type createBookingResponse struct {
	BookingID   string `json:"booking_id"`
	Date        string `json:"date"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
}

type releaseBookingRequest struct {
	BookingID string `json:"booking_id"`
	Reason    string `json:"reason"`
}

type releaseBookingResponse struct {
	BookingID  string `json:"booking_id"`
	Status     string `json:"status"`
	ReleasedAt string `json:"released_at"`
}

type listBookingItem struct {
	BookingID   string `json:"booking_id"`
	PatientName string `json:"patient_name"`
	Date        string `json:"date"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	Status      string `json:"status"`
	ReleasedAt  string `json:"released_at,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func formatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// Availability lists the open consultation units for one provider date.
func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	providerID := strings.TrimSpace(r.URL.Query().Get("provider_id"))
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if providerID == "" || dateStr == "" {
		http.Error(w, "provider_id and date are required", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse("2006-01-02", dateStr); err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	units, day, err := h.resolveOpenUnits(r, providerID, dateStr)
	if err != nil {
		if errors.Is(err, schedule.ErrProviderNotFound) {
			http.Error(w, "provider not found", http.StatusNotFound)
			return
		}
		h.logger.Warn("availability resolution failed", "err", err)
		http.Error(w, "schedule service unavailable", http.StatusServiceUnavailable)
		return
	}

	resp := availabilityResponse{
		ProviderID:          providerID,
		Date:                dateStr,
		Timezone:            day.Timezone,
		ConsultationMinutes: day.ConsultationMinutes,
		Bookable:            day.Bookable,
		Slots:               make([]slotItem, 0, len(units)),
	}
	for _, u := range units {
		resp.Slots = append(resp.Slots, slotItem{
			StartMinute: u.StartMinute,
			EndMinute:   u.EndMinute,
			Start:       formatClock(u.StartMinute),
			End:         formatClock(u.EndMinute),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// resolveOpenUnits applies the full pipeline: the provider's day windows,
// cut into consultation-length units, minus active bookings, minus units
// already started when the date is today in the provider's timezone.
func (h *BookingHandler) resolveOpenUnits(r *http.Request, providerID, dateStr string) ([]availability.Window, schedule.DayAvailability, error) {
	ctx := r.Context()

	day, err := h.schedule.DayAvailability(ctx, providerID, dateStr)
	if err != nil {
		return nil, schedule.DayAvailability{}, err
	}
	if !day.Bookable {
		return nil, day, nil
	}

	loc := day.Location()
	date, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		return nil, day, err
	}

	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if date.Before(today) {
		day.Bookable = false
		return nil, day, nil
	}
	nowMinute := 0
	if date.Equal(today) {
		nowMinute = now.Hour()*60 + now.Minute()
	}

	busy, err := h.repo.ListActiveWindows(ctx, providerID, date)
	if err != nil {
		return nil, day, err
	}

	return availability.AvailableUnits(day.Windows, day.ConsultationMinutes, busy, nowMinute), day, nil
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ProviderID = strings.TrimSpace(req.ProviderID)
	req.Date = strings.TrimSpace(req.Date)
	req.PatientName = strings.TrimSpace(req.PatientName)
	if req.ProviderID == "" || req.Date == "" || req.PatientName == "" {
		http.Error(w, "provider_id, date, and patient_name are required", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	if req.StartMinute < 0 || req.StartMinute >= 24*60 {
		http.Error(w, "invalid start_minute", http.StatusBadRequest)
		return
	}

	units, day, err := h.resolveOpenUnits(r, req.ProviderID, req.Date)
	if err != nil {
		if errors.Is(err, schedule.ErrProviderNotFound) {
			http.Error(w, "provider not found", http.StatusNotFound)
			return
		}
		http.Error(w, "schedule service unavailable", http.StatusServiceUnavailable)
		return
	}

	var requested *availability.Window
	for i := range units {
		if units[i].StartMinute == req.StartMinute {
			requested = &units[i]
			break
		}
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey != "" {
		rec, _, err := h.repo.LockIdempotencyKey(ctx, tx, req.ProviderID, idempotencyKey)
		if err != nil {
			http.Error(w, "failed to lock idempotency key", http.StatusInternalServerError)
			return
		}
		// A finalized record always replays, even when this transaction's
		// first SELECT missed the row because a concurrent holder had not
		// committed yet.
		if rec.StatusCode > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(rec.StatusCode)
			if len(rec.ResponsePayload) > 0 {
				_, _ = w.Write(rec.ResponsePayload)
			}
			return
		}
	}

	// Any failed re-validation is a conflict: the caller's snapshot went
	// stale (slot booked meanwhile, date blocked, start already passed) and
	// the remedy is the same, re-fetch availability and pick again.
	if requested == nil {
		if idempotencyKey != "" {
			if h.finalizeIdempotencyError(ctx, tx, req.ProviderID, idempotencyKey, http.StatusConflict, "slot unavailable") {
				_ = tx.Commit(ctx)
				return
			}
		}
		http.Error(w, "slot unavailable", http.StatusConflict)
		return
	}

	date, _ := time.ParseInLocation("2006-01-02", req.Date, day.Location())
	booking := &model.Booking{
		ProviderID:   req.ProviderID,
		PatientID:    strings.TrimSpace(r.Header.Get("X-User-Id")),
		PatientName:  req.PatientName,
		PatientEmail: strings.TrimSpace(req.PatientEmail),
		BookedOn:     date,
		StartMinute:  requested.StartMinute,
		EndMinute:    requested.EndMinute,
		Status:       model.StatusActive,
	}

	id, err := h.repo.Create(ctx, tx, booking)
	if err != nil {
		if storage.IsSlotTaken(err) {
			http.Error(w, "slot already booked", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create booking", http.StatusInternalServerError)
		return
	}

	if err := h.outboxRepo.Insert(ctx, tx, outbox.NewBookingCreated(id, booking)); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	respBody, err := json.Marshal(createBookingResponse{
		BookingID:   id,
		Date:        req.Date,
		StartMinute: booking.StartMinute,
		EndMinute:   booking.EndMinute,
	})
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	if idempotencyKey != "" {
		if err := h.repo.FinalizeIdempotency(ctx, tx, req.ProviderID, idempotencyKey, id, http.StatusCreated, respBody); err != nil {
			http.Error(w, "failed to finalize idempotency key", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(respBody)
}

func (h *BookingHandler) finalizeIdempotencyError(ctx context.Context, tx pgx.Tx, providerID, key string, statusCode int, message string) bool {
	payload, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return false
	}
	if err := h.repo.FinalizeIdempotency(ctx, tx, providerID, key, "", statusCode, payload); err != nil {
		return false
	}
	return true
}

// Release frees a booking's slot. Releasing an already-released booking
// returns the original release, so retries are safe.
func (h *BookingHandler) Release(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	providerID := strings.TrimSpace(r.Header.Get("X-Provider-Id"))
	if providerID == "" {
		http.Error(w, "missing X-Provider-Id", http.StatusBadRequest)
		return
	}

	var req releaseBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BookingID = strings.TrimSpace(req.BookingID)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.BookingID == "" {
		http.Error(w, "booking_id is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	booking, err := h.repo.GetForUpdate(ctx, tx, providerID, req.BookingID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load booking", http.StatusInternalServerError)
		return
	}

	if booking.Status == model.StatusReleased && booking.ReleasedAt != nil {
		h.writeReleaseResponse(w, booking.ID, booking.ReleasedAt.UTC())
		return
	}
	if booking.Status != model.StatusActive {
		http.Error(w, "booking cannot be released", http.StatusConflict)
		return
	}

	releasedAt, err := h.repo.Release(ctx, tx, providerID, booking.ID, req.Reason)
	if err != nil {
		http.Error(w, "failed to release booking", http.StatusInternalServerError)
		return
	}

	if err := h.outboxRepo.Insert(ctx, tx, outbox.NewBookingReleased(booking, releasedAt, req.Reason)); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	h.writeReleaseResponse(w, booking.ID, releasedAt.UTC())
}

func (h *BookingHandler) writeReleaseResponse(w http.ResponseWriter, bookingID string, releasedAt time.Time) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(releaseBookingResponse{
		BookingID:  bookingID,
		Status:     model.StatusReleased,
		ReleasedAt: releasedAt.Format(time.RFC3339),
	})
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	providerID := strings.TrimSpace(r.Header.Get("X-Provider-Id"))
	if providerID == "" {
		http.Error(w, "missing X-Provider-Id", http.StatusBadRequest)
		return
	}

	var from, to *time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "invalid from date", http.StatusBadRequest)
			return
		}
		from = &d
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "invalid to date", http.StatusBadRequest)
			return
		}
		to = &d
	}
	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	bookings, err := h.repo.ListByProvider(r.Context(), providerID, from, to, limit)
	if err != nil {
		http.Error(w, "failed to list bookings", http.StatusInternalServerError)
		return
	}

	items := make([]listBookingItem, 0, len(bookings))
	for _, b := range bookings {
		item := listBookingItem{
			BookingID:   b.ID,
			PatientName: b.PatientName,
			Date:        b.BookedOn.Format("2006-01-02"),
			StartMinute: b.StartMinute,
			EndMinute:   b.EndMinute,
			Status:      b.Status,
			CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
		}
		if b.ReleasedAt != nil {
			item.ReleasedAt = b.ReleasedAt.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(items)
}
