package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nazmul-hq/freebusy/services/availability-service/internal/cache"
	"github.com/nazmul-hq/freebusy/services/availability-service/internal/model"
	"github.com/nazmul-hq/freebusy/services/availability-service/internal/outbox"
	"github.com/nazmul-hq/freebusy/services/availability-service/internal/storage"
)

const maxBufferMinutes = 24 * 60

// AdminHandler owns the mutating endpoints: availability templates and events.
// Every mutation commits an outbox event with the change and bumps the slot
// cache version for the calendar.
type AdminHandler struct {
	repo       *storage.CalendarRepository
	outboxRepo *outbox.Repository
	cache      *cache.SlotCache
	logger     *slog.Logger
}

func NewAdminHandler(repo *storage.CalendarRepository, outboxRepo *outbox.Repository, slotCache *cache.SlotCache, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{repo: repo, outboxRepo: outboxRepo, cache: slotCache, logger: logger}
}

type availabilityDayInput struct {
	Weekday int      `json:"weekday"`
	Times   []string `json:"times"`
}

type updateAvailabilityRequest struct {
	CalendarID string                 `json:"calendar_id"`
	Days       []availabilityDayInput `json:"days"`
}

type createEventRequest struct {
	CalendarID          string `json:"calendar_id"`
	Start               string `json:"start"`
	End                 string `json:"end"`
	BufferBeforeMinutes int    `json:"buffer_before_minutes"`
	BufferAfterMinutes  int    `json:"buffer_after_minutes"`
}

type createEventResponse struct {
	EventID string `json:"event_id"`
}

type cancelEventRequest struct {
	CalendarID string `json:"calendar_id"`
	EventID    string `json:"event_id"`
}

type cancelEventResponse struct {
	EventID     string `json:"event_id"`
	Status      string `json:"status"`
	CancelledAt string `json:"cancelled_at"`
}

// UpdateAvailability handles PUT /api/v1/availability, replacing a calendar's
// whole weekly template.
func (h *AdminHandler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req updateAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.CalendarID = strings.TrimSpace(req.CalendarID)
	if req.CalendarID == "" {
		http.Error(w, "calendar_id required", http.StatusBadRequest)
		return
	}

	days, errMsg := parseAvailabilityDays(req.CalendarID, req.Days)
	if errMsg != "" {
		http.Error(w, errMsg, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := h.repo.ReplaceAvailability(ctx, tx, req.CalendarID, days); err != nil {
		http.Error(w, "failed to store availability", http.StatusInternalServerError)
		return
	}

	payload, err := json.Marshal(map[string]any{
		"calendar_id": req.CalendarID,
		"days":        len(days),
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "calendar",
		AggregateID:   req.CalendarID,
		EventType:     outbox.EventAvailabilityUpdated,
		Payload:       payload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	h.invalidate(r, req.CalendarID)

	writeJSON(w, http.StatusOK, map[string]any{"calendar_id": req.CalendarID, "days": len(days)})
}

// CreateEvent handles POST /api/v1/events.
func (h *AdminHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createEventRequest
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
	end, err := parseInstant(req.End)
	if err != nil {
		http.Error(w, "invalid end", http.StatusBadRequest)
		return
	}
	if !end.After(start) {
		http.Error(w, "end must be after start", http.StatusBadRequest)
		return
	}
	if req.BufferBeforeMinutes < 0 || req.BufferBeforeMinutes > maxBufferMinutes ||
		req.BufferAfterMinutes < 0 || req.BufferAfterMinutes > maxBufferMinutes {
		http.Error(w, "buffers must be between 0 and 1440 minutes", http.StatusBadRequest)
		return
	}

	evt := &model.CalendarEvent{
		ID:           uuid.NewString(),
		CalendarID:   req.CalendarID,
		StartTime:    start,
		EndTime:      end,
		BufferBefore: req.BufferBeforeMinutes,
		BufferAfter:  req.BufferAfterMinutes,
		Status:       "booked",
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := h.repo.CreateEvent(ctx, tx, evt); err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "time slot already booked", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create event", http.StatusInternalServerError)
		return
	}

	payload, err := json.Marshal(map[string]any{
		"event_id":              evt.ID,
		"calendar_id":           evt.CalendarID,
		"start_time":            evt.StartTime.UTC().Format(time.RFC3339),
		"end_time":              evt.EndTime.UTC().Format(time.RFC3339),
		"buffer_before_minutes": evt.BufferBefore,
		"buffer_after_minutes":  evt.BufferAfter,
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "calendar_event",
		AggregateID:   evt.ID,
		EventType:     outbox.EventCreated,
		Payload:       payload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	h.invalidate(r, evt.CalendarID)

	writeJSON(w, http.StatusCreated, createEventResponse{EventID: evt.ID})
}

// CancelEvent handles POST /api/v1/events/cancel. Cancelled events stop
// blocking slots immediately.
func (h *AdminHandler) CancelEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cancelEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.CalendarID = strings.TrimSpace(req.CalendarID)
	req.EventID = strings.TrimSpace(req.EventID)
	if req.CalendarID == "" || req.EventID == "" {
		http.Error(w, "calendar_id and event_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cancelledAt, err := h.repo.CancelEvent(ctx, tx, req.CalendarID, req.EventID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to cancel event", http.StatusInternalServerError)
		return
	}

	payload, err := json.Marshal(map[string]any{
		"event_id":     req.EventID,
		"calendar_id":  req.CalendarID,
		"cancelled_at": cancelledAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "calendar_event",
		AggregateID:   req.EventID,
		EventType:     outbox.EventCancelled,
		Payload:       payload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	h.invalidate(r, req.CalendarID)

	writeJSON(w, http.StatusOK, cancelEventResponse{
		EventID:     req.EventID,
		Status:      "cancelled",
		CancelledAt: cancelledAt.UTC().Format(time.RFC3339),
	})
}

func (h *AdminHandler) invalidate(r *http.Request, calendarID string) {
	if err := h.cache.Invalidate(r.Context(), calendarID); err != nil {
		h.logger.Warn("slot cache invalidation failed", "err", err, "calendar_id", calendarID)
	}
}

// parseAvailabilityDays validates and converts the request template. Times are
// "HH:MM" strings forming a pair-sequence: even count, strictly ascending.
func parseAvailabilityDays(calendarID string, inputs []availabilityDayInput) ([]model.AvailabilityDay, string) {
	seen := map[int]bool{}
	days := make([]model.AvailabilityDay, 0, len(inputs))
	for _, in := range inputs {
		if in.Weekday < 0 || in.Weekday > 6 {
			return nil, "weekday must be 0 (Sunday) through 6 (Saturday)"
		}
		if seen[in.Weekday] {
			return nil, "duplicate weekday"
		}
		seen[in.Weekday] = true
		if len(in.Times)%2 != 0 {
			return nil, "times must contain start/end pairs"
		}

		minutes := make([]int32, 0, len(in.Times))
		prev := int32(-1)
		for _, raw := range in.Times {
			clock, err := time.Parse("15:04", strings.TrimSpace(raw))
			if err != nil {
				return nil, "times must be HH:MM"
			}
			m := int32(clock.Hour()*60 + clock.Minute())
			if m <= prev {
				return nil, "times must be strictly ascending"
			}
			prev = m
			minutes = append(minutes, m)
		}
		days = append(days, model.AvailabilityDay{
			CalendarID: calendarID,
			Weekday:    int16(in.Weekday),
			Times:      minutes,
		})
	}
	return days, ""
}
