package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/medsched/medsched/services/schedule-service/internal/model"
	"github.com/medsched/medsched/services/schedule-service/internal/session"
)

type sessionResponse struct {
	SessionID  string          `json:"session_id"`
	ProviderID string          `json:"provider_id"`
	Draft      []dayResponse   `json:"draft"`
	DirtyDays  []model.Weekday `json:"dirty_days"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
}

func toSessionResponse(s *session.Session) sessionResponse {
	draft := make([]dayResponse, 0, 7)
	for d := model.Monday; d <= model.Sunday; d++ {
		tpl := s.Draft[d]
		slots := tpl.Slots
		if slots == nil {
			slots = []model.TimeSlot{}
		}
		draft = append(draft, dayResponse{
			Day:         d,
			IsAvailable: tpl.IsAvailable,
			Slots:       slots,
			Version:     s.Baseline[d].Version,
		})
	}
	dirty := s.DirtyDays()
	if dirty == nil {
		dirty = []model.Weekday{}
	}
	return sessionResponse{
		SessionID:  s.ID,
		ProviderID: s.ProviderID,
		Draft:      draft,
		DirtyDays:  dirty,
		CreatedAt:  s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:  s.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.openSession(w, r)
	case http.MethodGet:
		h.getSession(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) openSession(w http.ResponseWriter, r *http.Request) {
	providerID := providerIDFromHeader(r)
	if providerID == "" {
		http.Error(w, "missing X-Provider-Id", http.StatusBadRequest)
		return
	}

	sess, err := h.sessions.Open(r.Context(), providerID)
	if err != nil {
		http.Error(w, "failed to open session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(sess))
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r, r.URL.Query().Get("session_id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// loadSession fetches a session and enforces that it belongs to the caller.
func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request, id string) (*session.Session, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return nil, false
	}

	sess, err := h.sessions.Get(r.Context(), id)
	if errors.Is(err, session.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return nil, false
	}

	if providerID := providerIDFromHeader(r); providerID == "" || providerID != sess.ProviderID {
		http.Error(w, "session does not belong to caller", http.StatusForbidden)
		return nil, false
	}
	return sess, true
}

func (h *Handler) SessionDay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		SessionID string            `json:"session_id"`
		Template  model.DayTemplate `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if !req.Template.Day.Valid() {
		http.Error(w, "invalid day", http.StatusBadRequest)
		return
	}

	sess, ok := h.loadSession(w, r, req.SessionID)
	if !ok {
		return
	}

	sess, err := h.sessions.Edit(r.Context(), sess.ID, req.Template)
	if err != nil {
		http.Error(w, "failed to update draft", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (h *Handler) SessionRevert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
		Day       string `json:"day"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	day, err := model.ParseWeekday(req.Day)
	if err != nil {
		http.Error(w, "invalid day", http.StatusBadRequest)
		return
	}

	sess, ok := h.loadSession(w, r, req.SessionID)
	if !ok {
		return
	}

	sess, err = h.sessions.Revert(r.Context(), sess.ID, day)
	if err != nil {
		http.Error(w, "failed to revert draft", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (h *Handler) SessionSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	sess, ok := h.loadSession(w, r, req.SessionID)
	if !ok {
		return
	}

	result, sess, err := h.sessions.Save(r.Context(), sess.ID)
	var verr *session.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   validationCode(verr.Err),
			"day":     verr.Day,
			"message": verr.Error(),
		})
		return
	}
	if err != nil {
		http.Error(w, "failed to save session", http.StatusInternalServerError)
		return
	}

	saved := result.Saved
	if saved == nil {
		saved = []model.Weekday{}
	}
	conflicts := result.Conflicts
	if conflicts == nil {
		conflicts = []session.DayConflict{}
	}

	status := http.StatusOK
	if len(conflicts) > 0 {
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]any{
		"saved":     saved,
		"conflicts": conflicts,
		"session":   toSessionResponse(sess),
	})
}

func (h *Handler) SessionDiscard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	sess, ok := h.loadSession(w, r, req.SessionID)
	if !ok {
		return
	}

	if err := h.sessions.Discard(r.Context(), sess.ID); err != nil {
		http.Error(w, "failed to discard session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
