package event

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/campusconnect/hub/core"
	"github.com/campusconnect/hub/core/user"
)

var (
	// errors
	ErrNotFound      = errors.New("event not found")
	ErrRSVPNotFound  = errors.New("RSVP not found")
	ErrDuplicateRSVP = errors.New("an RSVP for this event and user already exists")

	// conflict messages
	msgAlreadyRSVPed = "you have already RSVPed to this event"
	msgEventFull     = "event is full"
)

type (
	Repository interface {
		CreateEvent(ctx context.Context, evt Event, exec ...core.DBExecutor) (Event, error)
		GetEvent(ctx context.Context, id string, exec ...core.DBExecutor) (Event, error)
		// GetEventLocked fetches the event row under an exclusive lock so the
		// capacity check and the subsequent RSVP write see a stable confirmed
		// count for the duration of the transaction.
		GetEventLocked(ctx context.Context, id string, exec ...core.DBExecutor) (Event, error)
		GetEventView(ctx context.Context, id, viewerID string, exec ...core.DBExecutor) (View, error)
		// QueryEvents applies AND on available QueryFilter fields, ordered by
		// event date ascending.
		QueryEvents(ctx context.Context, filter QueryFilter, viewerID string, exec ...core.DBExecutor) ([]View, error)
		UpdateEvent(ctx context.Context, evt Event, exec ...core.DBExecutor) (Event, error)
		DeleteEvent(ctx context.Context, id string, exec ...core.DBExecutor) error

		GetRSVP(ctx context.Context, eventID, userID string, exec ...core.DBExecutor) (RSVP, error)
		// CreateRSVP returns ErrDuplicateRSVP when the (event, user) pair
		// already exists (unique constraint).
		CreateRSVP(ctx context.Context, rsvp RSVP, exec ...core.DBExecutor) (RSVP, error)
		UpdateRSVP(ctx context.Context, rsvp RSVP, exec ...core.DBExecutor) (RSVP, error)
		CountConfirmed(ctx context.Context, eventID string, exec ...core.DBExecutor) (int, error)
		// QueryUserRSVPs returns the user's Confirmed records, event date ascending.
		QueryUserRSVPs(ctx context.Context, userID string, exec ...core.DBExecutor) ([]RSVPView, error)
		// QueryAttendees returns the event's Confirmed records, RSVP date ascending.
		QueryAttendees(ctx context.Context, eventID string, exec ...core.DBExecutor) ([]Attendee, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, ne NewEvent, creator user.User) (View, error)
		Get(ctx context.Context, id, viewerID string) (View, error)
		Query(ctx context.Context, filter QueryFilter, viewerID string) ([]View, error)
		Update(ctx context.Context, id string, ne NewEvent) error
		Delete(ctx context.Context, id string) error
		Rsvp(ctx context.Context, eventID string, usr user.User) (RSVPView, error)
		CancelRsvp(ctx context.Context, eventID, userID string) error
		MyRsvps(ctx context.Context, userID string) ([]RSVPView, error)
		Attendees(ctx context.Context, eventID string) ([]Attendee, error)
		ExportAttendees(ctx context.Context, eventID string) (ExportFile, error)
	}

	Service struct {
		db   core.Transactor
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(db core.Transactor, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) Create(ctx context.Context, ne NewEvent, creator user.User) (View, error) {
	evt := Event{
		Title:        ne.Title,
		Description:  ne.Description,
		EventDate:    ne.EventDate.UTC(),
		Location:     ne.Location,
		CreatedBy:    creator.ID,
		MaxAttendees: ne.MaxAttendees,
		CreatedAt:    time.Now().UTC(),
	}
	evt, err := svc.repo.CreateEvent(ctx, evt)
	if err != nil {
		return View{}, errors.Wrap(err, "creating event")
	}
	return View{Event: evt, CreatedByName: creator.FullName()}, nil
}

func (svc *Service) Get(ctx context.Context, id, viewerID string) (View, error) {
	return svc.repo.GetEventView(ctx, id, viewerID)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, viewerID string) ([]View, error) {
	return svc.repo.QueryEvents(ctx, filter, viewerID)
}

func (svc *Service) Update(ctx context.Context, id string, ne NewEvent) error {
	evt, err := svc.repo.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	evt.Title = ne.Title
	evt.Description = ne.Description
	evt.EventDate = ne.EventDate.UTC()
	evt.Location = ne.Location
	evt.MaxAttendees = ne.MaxAttendees
	_, err = svc.repo.UpdateEvent(ctx, evt)
	return errors.Wrap(err, "updating event")
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteEvent(ctx, id)
}

// Rsvp confirms the caller's attendance. A Cancelled record for the pair is
// reactivated in place (same ID, fresh timestamp); capacity is enforced on
// both the fresh-insert and the reactivation path. The event row stays
// locked for the whole check-then-write sequence, and the (event, user)
// unique constraint backstops concurrent inserts.
func (svc *Service) Rsvp(ctx context.Context, eventID string, usr user.User) (RSVPView, error) {
	var rsvp RSVP
	var evt Event

	err := core.RunInTx(ctx, svc.db, func(exec ...core.DBExecutor) error {
		var err error
		evt, err = svc.repo.GetEventLocked(ctx, eventID, exec...)
		if err != nil {
			return err
		}

		existing, err := svc.repo.GetRSVP(ctx, eventID, usr.ID, exec...)
		switch errors.Cause(err) {
		case nil:
			if existing.Status == StatusConfirmed {
				return core.NewConflictError(msgAlreadyRSVPed)
			}
			if err = svc.checkCapacity(ctx, evt, exec...); err != nil {
				return err
			}
			existing.Status = StatusConfirmed
			existing.RsvpDate = time.Now().UTC()
			rsvp, err = svc.repo.UpdateRSVP(ctx, existing, exec...)
			return errors.Wrap(err, "reactivating RSVP")
		case ErrRSVPNotFound:
			if err = svc.checkCapacity(ctx, evt, exec...); err != nil {
				return err
			}
			rsvp, err = svc.repo.CreateRSVP(ctx, RSVP{
				EventID:  eventID,
				UserID:   usr.ID,
				Status:   StatusConfirmed,
				RsvpDate: time.Now().UTC(),
			}, exec...)
			if errors.Cause(err) == ErrDuplicateRSVP {
				return core.NewConflictError(msgAlreadyRSVPed)
			}
			return errors.Wrap(err, "creating RSVP")
		default:
			return errors.Wrap(err, "finding RSVP")
		}
	})
	if err != nil {
		return RSVPView{}, err
	}

	return RSVPView{
		ID:         rsvp.ID,
		EventID:    evt.ID,
		EventTitle: evt.Title,
		EventDate:  evt.EventDate,
		UserID:     usr.ID,
		UserName:   usr.FullName(),
		RsvpDate:   rsvp.RsvpDate,
		Status:     rsvp.Status,
	}, nil
}

func (svc *Service) checkCapacity(ctx context.Context, evt Event, exec ...core.DBExecutor) error {
	if evt.MaxAttendees == nil {
		return nil
	}
	count, err := svc.repo.CountConfirmed(ctx, evt.ID, exec...)
	if err != nil {
		return errors.Wrap(err, "counting confirmed RSVPs")
	}
	if count >= *evt.MaxAttendees {
		return core.NewConflictError(msgEventFull)
	}
	return nil
}

// CancelRsvp marks the caller's record Cancelled. The record is kept so a
// later RSVP reuses it. Cancelling an already-Cancelled record succeeds.
func (svc *Service) CancelRsvp(ctx context.Context, eventID, userID string) error {
	rsvp, err := svc.repo.GetRSVP(ctx, eventID, userID)
	if err != nil {
		return err
	}
	rsvp.Status = StatusCancelled
	_, err = svc.repo.UpdateRSVP(ctx, rsvp)
	return errors.Wrap(err, "cancelling RSVP")
}

func (svc *Service) MyRsvps(ctx context.Context, userID string) ([]RSVPView, error) {
	return svc.repo.QueryUserRSVPs(ctx, userID)
}

func (svc *Service) Attendees(ctx context.Context, eventID string) ([]Attendee, error) {
	if _, err := svc.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return svc.repo.QueryAttendees(ctx, eventID)
}
