package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/medsched/medsched/services/schedule-service/internal/model"
	"github.com/medsched/medsched/services/schedule-service/internal/session"
	"github.com/medsched/medsched/services/schedule-service/internal/storage"
)

const maxDatesPerRequest = 100

type Handler struct {
	store    *storage.Store
	sessions *session.Manager
}

func New(store *storage.Store, sessions *session.Manager) *Handler {
	return &Handler{store: store, sessions: sessions}
}

func providerIDFromHeader(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Provider-Id"))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error":   code,
		"message": message,
	})
}

// validationCode maps template validation failures to stable error codes.
func validationCode(err error) string {
	var bounds *model.SlotBoundsError
	var overlap *model.SlotOverlapError
	switch {
	case errors.Is(err, model.ErrEmptyAvailableDay):
		return "empty_available_day"
	case errors.As(err, &bounds):
		return "slot_out_of_bounds"
	case errors.As(err, &overlap):
		return "slot_overlap"
	case errors.Is(err, model.ErrSlotsOutOfOrder):
		return "slots_out_of_order"
	default:
		return "invalid_template"
	}
}

type dayResponse struct {
	Day         model.Weekday    `json:"day"`
	IsAvailable bool             `json:"is_available"`
	Slots       []model.TimeSlot `json:"time_slots"`
	Version     int64            `json:"version"`
}

func toDayResponse(vd model.VersionedDay) dayResponse {
	slots := vd.Template.Slots
	if slots == nil {
		slots = []model.TimeSlot{}
	}
	return dayResponse{
		Day:         vd.Template.Day,
		IsAvailable: vd.Template.IsAvailable,
		Slots:       slots,
		Version:     vd.Version,
	}
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	providerID := providerIDFromHeader(r)
	if providerID == "" {
		http.Error(w, "missing X-Provider-Id", http.StatusBadRequest)
		return
	}

	p, err := h.store.GetOrCreateProfile(r.Context(), providerID)
	if err != nil {
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	providerID := providerIDFromHeader(r)
	if providerID == "" {
		http.Error(w, "missing X-Provider-Id", http.StatusBadRequest)
		return
	}

	var req struct {
		DisplayName         string `json:"display_name"`
		Timezone            string `json:"timezone"`
		ConsultationMinutes int    `json:"consultation_minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	req.Timezone = strings.TrimSpace(req.Timezone)
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		http.Error(w, "invalid timezone", http.StatusBadRequest)
		return
	}
	if req.ConsultationMinutes <= 0 || req.ConsultationMinutes > 24*60 {
		http.Error(w, "invalid consultation_minutes", http.StatusBadRequest)
		return
	}

	if err := h.store.UpdateProfile(r.Context(), providerID, req.DisplayName, req.Timezone, req.ConsultationMinutes); err != nil {
		http.Error(w, "failed to update profile", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	providerID := providerIDFromHeader(r)
	if providerID == "" {
		http.Error(w, "missing X-Provider-Id", http.StatusBadRequest)
		return
	}

	week, err := h.store.GetWeek(r.Context(), providerID)
	if err != nil {
		http.Error(w, "failed to load schedule", http.StatusInternalServerError)
		return
	}

	days := make([]dayResponse, 0, 7)
	for d := model.Monday; d <= model.Sunday; d++ {
		days = append(days, toDayResponse(week[d]))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"provider_id": providerID,
		"days":        days,
	})
}

func (h *Handler) Day(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getDay(w, r)
	case http.MethodPut:
		h.saveDay(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) getDay(w http.ResponseWriter, r *http.Request) {
	providerID := providerIDFromHeader(r)
	if providerID == "" {
		http.Error(w, "missing X-Provider-Id", http.StatusBadRequest)
		return
	}

	day, err := model.ParseWeekday(r.URL.Query().Get("weekday"))
	if err != nil {
		http.Error(w, "invalid weekday", http.StatusBadRequest)
		return
	}

	vd, err := h.store.GetDay(r.Context(), providerID, day)
	if err != nil {
		http.Error(w, "failed to load day", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toDayResponse(vd))
}

// saveDay writes a single day directly, without a draft session. The caller
// supplies the version it last saw; a stale version is rejected so two tabs
// cannot silently overwrite each other.
func (h *Handler) saveDay(w http.ResponseWriter, r *http.Request) {
	providerID := providerIDFromHeader(r)
	if providerID == "" {
		http.Error(w, "missing X-Provider-Id", http.StatusBadRequest)
		return
	}

	var req struct {
		Template        model.DayTemplate `json:"template"`
		ExpectedVersion int64             `json:"expected_version"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if !req.Template.Day.Valid() {
		http.Error(w, "invalid day", http.StatusBadRequest)
		return
	}
	if req.ExpectedVersion < 0 {
		http.Error(w, "invalid expected_version", http.StatusBadRequest)
		return
	}

	tpl := req.Template.Normalize()
	if err := model.Validate(tpl); err != nil {
		writeError(w, http.StatusBadRequest, validationCode(err), err.Error())
		return
	}

	version, err := h.store.SaveDay(r.Context(), providerID, tpl, req.ExpectedVersion)
	if errors.Is(err, storage.ErrVersionConflict) {
		current, gerr := h.store.GetDay(r.Context(), providerID, tpl.Day)
		if gerr != nil {
			http.Error(w, "failed to save day", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":            "version_conflict",
			"day":              tpl.Day,
			"expected_version": req.ExpectedVersion,
			"current_version":  current.Version,
		})
		return
	}
	if err != nil {
		http.Error(w, "failed to save day", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"day":     tpl.Day,
		"version": version,
	})
}

func (h *Handler) ListBlocked(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	providerID := providerIDFromHeader(r)
	if providerID == "" {
		http.Error(w, "missing X-Provider-Id", http.StatusBadRequest)
		return
	}

	dates, version, err := h.store.ListBlocked(r.Context(), providerID)
	if err != nil {
		http.Error(w, "failed to list blocked dates", http.StatusInternalServerError)
		return
	}

	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, d.Format("2006-01-02"))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"provider_id":     providerID,
		"dates":           formatted,
		"blocked_version": version,
	})
}

func (h *Handler) BlockDates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	providerID := providerIDFromHeader(r)
	if providerID == "" {
		http.Error(w, "missing X-Provider-Id", http.StatusBadRequest)
		return
	}

	var req struct {
		Dates  []string `json:"dates"`
		Reason string   `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	dates, err := parseDates(req.Dates)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	version, err := h.store.BlockDates(r.Context(), providerID, dates, strings.TrimSpace(req.Reason))
	if err != nil {
		http.Error(w, "failed to block dates", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"blocked_version": version,
	})
}

func (h *Handler) UnblockDates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	providerID := providerIDFromHeader(r)
	if providerID == "" {
		http.Error(w, "missing X-Provider-Id", http.StatusBadRequest)
		return
	}

	var req struct {
		Dates []string `json:"dates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	dates, err := parseDates(req.Dates)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	version, err := h.store.UnblockDates(r.Context(), providerID, dates)
	if err != nil {
		http.Error(w, "failed to unblock dates", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"blocked_version": version,
	})
}

func parseDates(raw []string) ([]time.Time, error) {
	if len(raw) == 0 {
		return nil, errors.New("dates is required")
	}
	if len(raw) > maxDatesPerRequest {
		return nil, errors.New("too many dates in one request")
	}
	dates := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		d, err := time.Parse("2006-01-02", strings.TrimSpace(s))
		if err != nil {
			return nil, errors.New("invalid date: " + s)
		}
		dates = append(dates, d)
	}
	return dates, nil
}
