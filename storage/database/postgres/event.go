package postgresdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/campusconnect/hub/core"
	"github.com/campusconnect/hub/core/event"
)

type eventRepository struct {
	db core.DB
}

func NewEventRepository(db core.DB) event.Repository {
	return &eventRepository{db: db}
}

// eventViewColumns projects an event row with the creator's display name,
// its confirmed count and whether the viewer ($1) holds a confirmed RSVP.
const eventViewColumns = `
e.id, e.title, e.description, e.event_date, e.location, e.created_by, e.max_attendees, e.created_at,
TRIM(u.first_name || ' ' || u.last_name) AS created_by_name,
(SELECT COUNT(*) FROM event_rsvp r WHERE r.event_id = e.id AND r.status = 'Confirmed') AS current_attendees,
EXISTS (SELECT 1 FROM event_rsvp r WHERE r.event_id = e.id AND r.user_id::text = $1 AND r.status = 'Confirmed') AS is_user_rsvped`

func (repo *eventRepository) CreateEvent(ctx context.Context, evt event.Event, exec ...core.DBExecutor) (event.Event, error) {
	ex := executor(repo.db, exec)

	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO event (id, title, description, event_date, location, created_by, max_attendees, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		evt.ID, evt.Title, evt.Description, evt.EventDate, evt.Location, evt.CreatedBy, evt.MaxAttendees, evt.CreatedAt,
	)
	if err != nil {
		return event.Event{}, errors.Wrap(err, "inserting event")
	}
	return evt, nil
}

func (repo *eventRepository) GetEvent(ctx context.Context, id string, exec ...core.DBExecutor) (event.Event, error) {
	return repo.getEvent(ctx, id, "", exec)
}

func (repo *eventRepository) GetEventLocked(ctx context.Context, id string, exec ...core.DBExecutor) (event.Event, error) {
	return repo.getEvent(ctx, id, " FOR UPDATE", exec)
}

func (repo *eventRepository) getEvent(ctx context.Context, id, locking string, exec []core.DBExecutor) (event.Event, error) {
	ex := executor(repo.db, exec)

	var evt event.Event
	err := ex.GetContext(ctx, &evt, `SELECT * FROM event WHERE id = $1`+locking, id)
	if err == sql.ErrNoRows {
		return event.Event{}, event.ErrNotFound
	}
	if err != nil {
		return event.Event{}, errors.Wrap(err, "getting event")
	}
	return evt, nil
}

func (repo *eventRepository) GetEventView(ctx context.Context, id, viewerID string, exec ...core.DBExecutor) (event.View, error) {
	ex := executor(repo.db, exec)

	var view event.View
	err := ex.GetContext(ctx, &view,
		`SELECT `+eventViewColumns+`
		 FROM event e JOIN app_user u ON u.id = e.created_by
		 WHERE e.id = $2`,
		viewerID, id)
	if err == sql.ErrNoRows {
		return event.View{}, event.ErrNotFound
	}
	if err != nil {
		return event.View{}, errors.Wrap(err, "getting event view")
	}
	return view, nil
}

func (repo *eventRepository) QueryEvents(ctx context.Context, filter event.QueryFilter, viewerID string, exec ...core.DBExecutor) ([]event.View, error) {
	ex := executor(repo.db, exec)

	where := "TRUE"
	args := []interface{}{viewerID}
	if filter.Upcoming() {
		where += " AND e.event_date >= NOW()"
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where += fmt.Sprintf(" AND (e.title ILIKE $%d OR e.description ILIKE $%d)", n, n)
	}
	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		where += fmt.Sprintf(" AND e.location ILIKE $%d", len(args))
	}
	if !filter.StartDate.IsZero() {
		args = append(args, filter.StartDate)
		where += fmt.Sprintf(" AND e.event_date >= $%d", len(args))
	}
	if !filter.EndDate.IsZero() {
		args = append(args, filter.EndDate)
		where += fmt.Sprintf(" AND e.event_date <= $%d", len(args))
	}

	query := fmt.Sprintf(
		`SELECT %s FROM event e JOIN app_user u ON u.id = e.created_by WHERE %s ORDER BY e.event_date ASC`,
		eventViewColumns, where,
	)
	views := []event.View{}
	if err := ex.SelectContext(ctx, &views, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying events")
	}
	return views, nil
}

func (repo *eventRepository) UpdateEvent(ctx context.Context, evt event.Event, exec ...core.DBExecutor) (event.Event, error) {
	ex := executor(repo.db, exec)

	res, err := ex.ExecContext(ctx,
		`UPDATE event
		 SET title = $2, description = $3, event_date = $4, location = $5, max_attendees = $6
		 WHERE id = $1`,
		evt.ID, evt.Title, evt.Description, evt.EventDate, evt.Location, evt.MaxAttendees,
	)
	if err != nil {
		return event.Event{}, errors.Wrap(err, "updating event")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return event.Event{}, event.ErrNotFound
	}
	return evt, nil
}

func (repo *eventRepository) DeleteEvent(ctx context.Context, id string, exec ...core.DBExecutor) error {
	ex := executor(repo.db, exec)

	res, err := ex.ExecContext(ctx, `DELETE FROM event WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting event")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return event.ErrNotFound
	}
	return nil
}

func (repo *eventRepository) GetRSVP(ctx context.Context, eventID, userID string, exec ...core.DBExecutor) (event.RSVP, error) {
	ex := executor(repo.db, exec)

	var rsvp event.RSVP
	err := ex.GetContext(ctx, &rsvp,
		`SELECT * FROM event_rsvp WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err == sql.ErrNoRows {
		return event.RSVP{}, event.ErrRSVPNotFound
	}
	if err != nil {
		return event.RSVP{}, errors.Wrap(err, "getting RSVP")
	}
	return rsvp, nil
}

func (repo *eventRepository) CreateRSVP(ctx context.Context, rsvp event.RSVP, exec ...core.DBExecutor) (event.RSVP, error) {
	ex := executor(repo.db, exec)

	if rsvp.ID == "" {
		rsvp.ID = uuid.NewString()
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO event_rsvp (id, event_id, user_id, status, rsvp_date)
		 VALUES ($1, $2, $3, $4, $5)`,
		rsvp.ID, rsvp.EventID, rsvp.UserID, rsvp.Status, rsvp.RsvpDate,
	)
	if err != nil {
		if isPqError(err, pqUniqueViolation) {
			return event.RSVP{}, event.ErrDuplicateRSVP
		}
		return event.RSVP{}, errors.Wrap(err, "inserting RSVP")
	}
	return rsvp, nil
}

func (repo *eventRepository) UpdateRSVP(ctx context.Context, rsvp event.RSVP, exec ...core.DBExecutor) (event.RSVP, error) {
	ex := executor(repo.db, exec)

	res, err := ex.ExecContext(ctx,
		`UPDATE event_rsvp SET status = $2, rsvp_date = $3 WHERE id = $1`,
		rsvp.ID, rsvp.Status, rsvp.RsvpDate,
	)
	if err != nil {
		return event.RSVP{}, errors.Wrap(err, "updating RSVP")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return event.RSVP{}, event.ErrRSVPNotFound
	}
	return rsvp, nil
}

func (repo *eventRepository) CountConfirmed(ctx context.Context, eventID string, exec ...core.DBExecutor) (int, error) {
	ex := executor(repo.db, exec)

	var count int
	err := ex.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM event_rsvp WHERE event_id = $1 AND status = 'Confirmed'`, eventID)
	return count, errors.Wrap(err, "counting confirmed RSVPs")
}

func (repo *eventRepository) QueryUserRSVPs(ctx context.Context, userID string, exec ...core.DBExecutor) ([]event.RSVPView, error) {
	ex := executor(repo.db, exec)

	views := []event.RSVPView{}
	err := ex.SelectContext(ctx, &views,
		`SELECT r.id, r.event_id, e.title AS event_title, e.event_date,
		        r.user_id, TRIM(u.first_name || ' ' || u.last_name) AS user_name,
		        r.rsvp_date, r.status
		 FROM event_rsvp r
		 JOIN event e ON e.id = r.event_id
		 JOIN app_user u ON u.id = r.user_id
		 WHERE r.user_id = $1 AND r.status = 'Confirmed'
		 ORDER BY e.event_date ASC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying user RSVPs")
	}
	return views, nil
}

func (repo *eventRepository) QueryAttendees(ctx context.Context, eventID string, exec ...core.DBExecutor) ([]event.Attendee, error) {
	ex := executor(repo.db, exec)

	attendees := []event.Attendee{}
	err := ex.SelectContext(ctx, &attendees,
		`SELECT r.id AS rsvp_id, r.user_id,
		        TRIM(u.first_name || ' ' || u.last_name) AS user_name,
		        u.email AS user_email, r.rsvp_date, r.status
		 FROM event_rsvp r
		 JOIN app_user u ON u.id = r.user_id
		 WHERE r.event_id = $1 AND r.status = 'Confirmed'
		 ORDER BY r.rsvp_date ASC`, eventID)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendees")
	}
	return attendees, nil
}
