package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nazmul-hq/freebusy/libs/db"
	"github.com/nazmul-hq/freebusy/services/availability-service/internal/model"
	"github.com/nazmul-hq/freebusy/services/availability-service/internal/schedule"
)

// eventLoadSlack widens the SQL overlap window so buffered intervals near the
// range edges are not missed. Buffers are capped below this at the API.
const eventLoadSlack = 24 * time.Hour

type CalendarRepository struct {
	pool *db.Pool
}

func NewCalendarRepository(pool *db.Pool) *CalendarRepository {
	return &CalendarRepository{pool: pool}
}

func (r *CalendarRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// WeeklyAvailability loads the full recurring template for a calendar.
// A calendar with no rows yields an empty template, not an error.
func (r *CalendarRepository) WeeklyAvailability(ctx context.Context, calendarID string) (schedule.Weekly, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday, times
		FROM availability_days
		WHERE calendar_id = $1
		ORDER BY weekday
	`, calendarID)
	if err != nil {
		return schedule.Weekly{}, err
	}
	defer rows.Close()

	var days []model.AvailabilityDay
	for rows.Next() {
		day := model.AvailabilityDay{CalendarID: calendarID}
		if err := rows.Scan(&day.Weekday, &day.Times); err != nil {
			return schedule.Weekly{}, err
		}
		days = append(days, day)
	}
	if rows.Err() != nil {
		return schedule.Weekly{}, rows.Err()
	}
	return ToWeekly(days), nil
}

// EventsOverlapping loads booked events whose buffered interval could touch
// [from, to]. Cancelled events never block.
func (r *CalendarRepository) EventsOverlapping(ctx context.Context, calendarID string, from, to time.Time) ([]schedule.Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT start_time, end_time, buffer_before, buffer_after
		FROM calendar_events
		WHERE calendar_id = $1
			AND status = 'booked'
			AND start_time < $3
			AND end_time > $2
		ORDER BY start_time ASC
	`, calendarID, from.Add(-eventLoadSlack), to.Add(eventLoadSlack))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []schedule.Event
	for rows.Next() {
		var evt schedule.Event
		var before, after int
		if err := rows.Scan(&evt.Start, &evt.End, &before, &after); err != nil {
			return nil, err
		}
		evt.Buffer = schedule.Buffer{Before: before, After: after}
		events = append(events, evt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return events, nil
}

// ReplaceAvailability swaps the calendar's whole template in one transaction.
func (r *CalendarRepository) ReplaceAvailability(ctx context.Context, tx pgx.Tx, calendarID string, days []model.AvailabilityDay) error {
	if _, err := tx.Exec(ctx, `
		DELETE FROM availability_days WHERE calendar_id = $1
	`, calendarID); err != nil {
		return err
	}
	for _, day := range days {
		if _, err := tx.Exec(ctx, `
			INSERT INTO availability_days (calendar_id, weekday, times)
			VALUES ($1, $2, $3)
		`, calendarID, day.Weekday, day.Times); err != nil {
			return err
		}
	}
	return nil
}

func (r *CalendarRepository) CreateEvent(ctx context.Context, tx pgx.Tx, evt *model.CalendarEvent) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO calendar_events
			(id, calendar_id, start_time, end_time, buffer_before, buffer_after, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'booked')
	`, evt.ID, evt.CalendarID, evt.StartTime, evt.EndTime, evt.BufferBefore, evt.BufferAfter)
	return err
}

func (r *CalendarRepository) CancelEvent(ctx context.Context, tx pgx.Tx, calendarID, eventID string) (time.Time, error) {
	var cancelledAt time.Time
	err := tx.QueryRow(ctx, `
		UPDATE calendar_events
		SET status = 'cancelled',
			cancelled_at = now()
		WHERE id = $1 AND calendar_id = $2 AND status = 'booked'
		RETURNING cancelled_at
	`, eventID, calendarID).Scan(&cancelledAt)
	return cancelledAt, err
}

// IsConflict reports a Postgres exclusion-constraint violation (overlapping
// booked events on the same calendar).
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
