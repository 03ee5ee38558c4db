package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/campusconnect/hub/core"
	"github.com/campusconnect/hub/core/event"
)

type eventRepository struct {
	db *DB
}

func NewEventRepository(db *DB) event.Repository {
	return &eventRepository{db: db}
}

func (repo *eventRepository) CreateEvent(ctx context.Context, evt event.Event, exec ...core.DBExecutor) (event.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	repo.db.events[evt.ID] = &evt
	return evt, nil
}

func (repo *eventRepository) GetEvent(ctx context.Context, id string, exec ...core.DBExecutor) (event.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if evt, ok := repo.db.events[id]; ok {
		return *evt, nil
	}
	return event.Event{}, event.ErrNotFound
}

// GetEventLocked needs no row lock here: the DB's InTx serializes the whole
// capacity sequence instead.
func (repo *eventRepository) GetEventLocked(ctx context.Context, id string, exec ...core.DBExecutor) (event.Event, error) {
	return repo.GetEvent(ctx, id, exec...)
}

func (repo *eventRepository) GetEventView(ctx context.Context, id, viewerID string, exec ...core.DBExecutor) (event.View, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	evt, ok := repo.db.events[id]
	if !ok {
		return event.View{}, event.ErrNotFound
	}
	return repo.view(*evt, viewerID), nil
}

// view must be called with the DB lock held.
func (repo *eventRepository) view(evt event.Event, viewerID string) event.View {
	view := event.View{Event: evt}
	if creator, ok := repo.db.users[evt.CreatedBy]; ok {
		view.CreatedByName = creator.FullName()
	}
	for _, rsvp := range repo.db.rsvps {
		if rsvp.EventID == evt.ID && rsvp.Status == event.StatusConfirmed {
			view.CurrentAttendees++
			if rsvp.UserID == viewerID {
				view.IsUserRsvped = true
			}
		}
	}
	return view
}

func (repo *eventRepository) QueryEvents(ctx context.Context, filter event.QueryFilter, viewerID string, exec ...core.DBExecutor) ([]event.View, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	now := nowFunc().UTC()
	views := make([]event.View, 0, len(repo.db.events))
	for _, evt := range repo.db.events {
		if filter.Upcoming() && evt.EventDate.Before(now) {
			continue
		}
		if filter.Search != "" && !containsFold(evt.Title, filter.Search) && !containsFold(evt.Description, filter.Search) {
			continue
		}
		if filter.Location != "" && !containsFold(evt.Location, filter.Location) {
			continue
		}
		if !filter.StartDate.IsZero() && evt.EventDate.Before(filter.StartDate) {
			continue
		}
		if !filter.EndDate.IsZero() && evt.EventDate.After(filter.EndDate) {
			continue
		}
		views = append(views, repo.view(*evt, viewerID))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].EventDate.Before(views[j].EventDate) })
	return views, nil
}

func (repo *eventRepository) UpdateEvent(ctx context.Context, evt event.Event, exec ...core.DBExecutor) (event.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.events[evt.ID]; !ok {
		return event.Event{}, event.ErrNotFound
	}
	repo.db.events[evt.ID] = &evt
	return evt, nil
}

func (repo *eventRepository) DeleteEvent(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.events[id]; !ok {
		return event.ErrNotFound
	}
	for rsvpID, rsvp := range repo.db.rsvps {
		if rsvp.EventID == id {
			delete(repo.db.rsvps, rsvpID)
		}
	}
	delete(repo.db.events, id)
	return nil
}

func (repo *eventRepository) GetRSVP(ctx context.Context, eventID, userID string, exec ...core.DBExecutor) (event.RSVP, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, rsvp := range repo.db.rsvps {
		if rsvp.EventID == eventID && rsvp.UserID == userID {
			return *rsvp, nil
		}
	}
	return event.RSVP{}, event.ErrRSVPNotFound
}

func (repo *eventRepository) CreateRSVP(ctx context.Context, rsvp event.RSVP, exec ...core.DBExecutor) (event.RSVP, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.rsvps {
		if existing.EventID == rsvp.EventID && existing.UserID == rsvp.UserID {
			return event.RSVP{}, event.ErrDuplicateRSVP
		}
	}
	if rsvp.ID == "" {
		rsvp.ID = uuid.NewString()
	}
	repo.db.rsvps[rsvp.ID] = &rsvp
	return rsvp, nil
}

func (repo *eventRepository) UpdateRSVP(ctx context.Context, rsvp event.RSVP, exec ...core.DBExecutor) (event.RSVP, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rsvps[rsvp.ID]; !ok {
		return event.RSVP{}, event.ErrRSVPNotFound
	}
	repo.db.rsvps[rsvp.ID] = &rsvp
	return rsvp, nil
}

func (repo *eventRepository) CountConfirmed(ctx context.Context, eventID string, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	for _, rsvp := range repo.db.rsvps {
		if rsvp.EventID == eventID && rsvp.Status == event.StatusConfirmed {
			count++
		}
	}
	return count, nil
}

func (repo *eventRepository) QueryUserRSVPs(ctx context.Context, userID string, exec ...core.DBExecutor) ([]event.RSVPView, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	views := []event.RSVPView{}
	for _, rsvp := range repo.db.rsvps {
		if rsvp.UserID != userID || rsvp.Status != event.StatusConfirmed {
			continue
		}
		evt, ok := repo.db.events[rsvp.EventID]
		if !ok {
			continue
		}
		view := event.RSVPView{
			ID:         rsvp.ID,
			EventID:    rsvp.EventID,
			EventTitle: evt.Title,
			EventDate:  evt.EventDate,
			UserID:     rsvp.UserID,
			RsvpDate:   rsvp.RsvpDate,
			Status:     rsvp.Status,
		}
		if usr, ok := repo.db.users[userID]; ok {
			view.UserName = usr.FullName()
		}
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].EventDate.Before(views[j].EventDate) })
	return views, nil
}

func (repo *eventRepository) QueryAttendees(ctx context.Context, eventID string, exec ...core.DBExecutor) ([]event.Attendee, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	attendees := []event.Attendee{}
	for _, rsvp := range repo.db.rsvps {
		if rsvp.EventID != eventID || rsvp.Status != event.StatusConfirmed {
			continue
		}
		attendee := event.Attendee{
			RSVPID:   rsvp.ID,
			UserID:   rsvp.UserID,
			RsvpDate: rsvp.RsvpDate,
			Status:   rsvp.Status,
		}
		if usr, ok := repo.db.users[rsvp.UserID]; ok {
			attendee.UserName = usr.FullName()
			attendee.UserEmail = usr.Email
		}
		attendees = append(attendees, attendee)
	}
	sort.Slice(attendees, func(i, j int) bool { return attendees[i].RsvpDate.Before(attendees[j].RsvpDate) })
	return attendees, nil
}
