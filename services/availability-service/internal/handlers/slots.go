package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nazmul-hq/freebusy/services/availability-service/internal/cache"
	"github.com/nazmul-hq/freebusy/services/availability-service/internal/schedule"
)

const (
	defaultSlotMinutes = 30
	maxSlotMinutes     = 8 * 60
	maxRangeDays       = 92
	maxAttendees       = 20
)

// CalendarStore is the read surface the slot queries need.
type CalendarStore interface {
	WeeklyAvailability(ctx context.Context, calendarID string) (schedule.Weekly, error)
	EventsOverlapping(ctx context.Context, calendarID string, from, to time.Time) ([]schedule.Event, error)
}

type SlotsHandler struct {
	store  CalendarStore
	cache  *cache.SlotCache
	logger *slog.Logger
}

func NewSlotsHandler(store CalendarStore, slotCache *cache.SlotCache, logger *slog.Logger) *SlotsHandler {
	return &SlotsHandler{store: store, cache: slotCache, logger: logger}
}

type slotItem struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type checkSlotRequest struct {
	CalendarID      string `json:"calendar_id"`
	Start           string `json:"start"`
	DurationMinutes int    `json:"duration_minutes"`
	IgnoreBuffers   bool   `json:"ignore_buffers"`
}

type checkSlotResponse struct {
	Available bool `json:"available"`
}

type meetingSlotsRequest struct {
	CalendarIDs     []string `json:"calendar_ids"`
	From            string   `json:"from"`
	To              string   `json:"to"`
	DurationMinutes int      `json:"duration_minutes"`
}

// List handles GET /api/v1/slots: enumerate open slots for one calendar.
// mode=pairs (default) walks (start, end) template pairs; mode=block keeps
// the legacy fixed-block reading where each template entry is one slot.
func (h *SlotsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	calendarID := strings.TrimSpace(r.URL.Query().Get("calendar_id"))
	if calendarID == "" {
		http.Error(w, "calendar_id required", http.StatusBadRequest)
		return
	}
	from, to, ok := parseRange(w, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if !ok {
		return
	}
	slotMinutes, ok := parseDuration(w, r.URL.Query().Get("duration_minutes"))
	if !ok {
		return
	}
	mode := strings.TrimSpace(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = "pairs"
	}
	if mode != "pairs" && mode != "block" {
		http.Error(w, "mode must be pairs or block", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	cacheKey, err := h.cache.Key(ctx, calendarID, mode, from, to, slotMinutes)
	if err != nil {
		h.logger.Warn("slot cache key lookup failed", "err", err)
	}
	if payload, hit := h.cache.Get(ctx, cacheKey); hit {
		writeJSONBytes(w, http.StatusOK, payload)
		return
	}

	weekly, err := h.store.WeeklyAvailability(ctx, calendarID)
	if err != nil {
		http.Error(w, "failed to load availability", http.StatusInternalServerError)
		return
	}
	events, err := h.store.EventsOverlapping(ctx, calendarID, from, to)
	if err != nil {
		http.Error(w, "failed to load events", http.StatusInternalServerError)
		return
	}

	var slots []schedule.Slot
	if mode == "block" {
		slots = schedule.FixedBlockSlots(weekly, events, from, to, slotMinutes)
	} else {
		slots = schedule.PairRangeSlots(weekly, events, from, to, slotMinutes)
	}

	payload, err := json.Marshal(slotItems(slots))
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	if err := h.cache.Set(ctx, cacheKey, payload); err != nil {
		h.logger.Warn("slot cache store failed", "err", err)
	}
	writeJSONBytes(w, http.StatusOK, payload)
}

// Check handles POST /api/v1/slots/check: a yes/no verdict for one proposed slot.
func (h *SlotsHandler) Check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req checkSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.CalendarID = strings.TrimSpace(req.CalendarID)
	if req.CalendarID == "" {
		http.Error(w, "calendar_id required", http.StatusBadRequest)
		return
	}
	start, err := parseInstant(req.Start)
	if err != nil {
		http.Error(w, "invalid start", http.StatusBadRequest)
		return
	}
	if req.DurationMinutes == 0 {
		req.DurationMinutes = defaultSlotMinutes
	}
	if req.DurationMinutes < 0 || req.DurationMinutes > maxSlotMinutes {
		http.Error(w, "invalid duration_minutes", http.StatusBadRequest)
		return
	}

	slot := schedule.Slot{Start: start, Minutes: req.DurationMinutes}

	ctx := r.Context()
	weekly, err := h.store.WeeklyAvailability(ctx, req.CalendarID)
	if err != nil {
		http.Error(w, "failed to load availability", http.StatusInternalServerError)
		return
	}
	events, err := h.store.EventsOverlapping(ctx, req.CalendarID, start, slot.End())
	if err != nil {
		http.Error(w, "failed to load events", http.StatusInternalServerError)
		return
	}

	available := false
	if req.IgnoreBuffers {
		available = schedule.FitsIgnoringBuffers(weekly, events, slot)
	} else {
		available = schedule.Fits(weekly, events, slot)
	}
	writeJSON(w, http.StatusOK, checkSlotResponse{Available: available})
}

// Meeting handles POST /api/v1/slots/meeting: slots where every calendar is free.
func (h *SlotsHandler) Meeting(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req meetingSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	ids := make([]string, 0, len(req.CalendarIDs))
	for _, id := range req.CalendarIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	if len(ids) == 0 {
		http.Error(w, "calendar_ids required", http.StatusBadRequest)
		return
	}
	if len(ids) > maxAttendees {
		http.Error(w, "too many calendars", http.StatusBadRequest)
		return
	}
	from, to, ok := parseRange(w, req.From, req.To)
	if !ok {
		return
	}
	if req.DurationMinutes == 0 {
		req.DurationMinutes = defaultSlotMinutes
	}
	if req.DurationMinutes < 0 || req.DurationMinutes > maxSlotMinutes {
		http.Error(w, "invalid duration_minutes", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	attendees := make([]schedule.Attendee, 0, len(ids))
	for _, id := range ids {
		weekly, err := h.store.WeeklyAvailability(ctx, id)
		if err != nil {
			http.Error(w, "failed to load availability", http.StatusInternalServerError)
			return
		}
		events, err := h.store.EventsOverlapping(ctx, id, from, to)
		if err != nil {
			http.Error(w, "failed to load events", http.StatusInternalServerError)
			return
		}
		attendees = append(attendees, schedule.Attendee{Availability: weekly, Events: events})
	}

	slots := schedule.MeetingSlots(attendees, from, to, req.DurationMinutes)
	writeJSON(w, http.StatusOK, slotItems(slots))
}

func slotItems(slots []schedule.Slot) []slotItem {
	items := make([]slotItem, 0, len(slots))
	for _, s := range slots {
		items = append(items, slotItem{
			StartTime: s.Start.UTC().Format(time.RFC3339),
			EndTime:   s.End().UTC().Format(time.RFC3339),
		})
	}
	return items
}

// parseInstant accepts RFC3339 or a bare date (midnight UTC).
func parseInstant(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func parseRange(w http.ResponseWriter, rawFrom, rawTo string) (time.Time, time.Time, bool) {
	from, err := parseInstant(rawFrom)
	if err != nil {
		http.Error(w, "invalid from", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	to, err := parseInstant(rawTo)
	if err != nil {
		http.Error(w, "invalid to", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	if !to.After(from) {
		http.Error(w, "to must be after from", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	if to.Sub(from) > maxRangeDays*24*time.Hour {
		http.Error(w, "range too large", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func parseDuration(w http.ResponseWriter, raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultSlotMinutes, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > maxSlotMinutes {
		http.Error(w, "invalid duration_minutes", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	writeJSONBytes(w, status, body)
}

func writeJSONBytes(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
