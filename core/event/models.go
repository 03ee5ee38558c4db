package event

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusconnect/hub/core"
)

// RSVPStatus is the closed set of states an RSVP record may be in.
// Cancelled records are kept so a later RSVP reactivates them in place.
type RSVPStatus string

const (
	StatusConfirmed RSVPStatus = "Confirmed"
	StatusCancelled RSVPStatus = "Cancelled"
)

type Event struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	EventDate    time.Time `json:"eventDate" db:"event_date"` // UTC
	Location     string    `json:"location" db:"location"`
	CreatedBy    string    `json:"createdBy" db:"created_by"`
	MaxAttendees *int      `json:"maxAttendees" db:"max_attendees"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"` // UTC
}

// RSVP is one (event, user) attendance record. At most one exists per pair.
type RSVP struct {
	ID       string     `json:"id" db:"id"`
	EventID  string     `json:"eventId" db:"event_id"`
	UserID   string     `json:"userId" db:"user_id"`
	Status   RSVPStatus `json:"status" db:"status"`
	RsvpDate time.Time  `json:"rsvpDate" db:"rsvp_date"` // UTC
}

// View is an Event annotated for listings: creator display name, current
// confirmed count and whether the requesting caller holds a Confirmed RSVP.
type View struct {
	Event
	CreatedByName    string `json:"createdByName" db:"created_by_name"`
	CurrentAttendees int    `json:"currentAttendees" db:"current_attendees"`
	IsUserRsvped     bool   `json:"isUserRsvped" db:"is_user_rsvped"`
}

// RSVPView is an RSVP merged with event title/date and the attendee's name.
type RSVPView struct {
	ID         string     `json:"id" db:"id"`
	EventID    string     `json:"eventId" db:"event_id"`
	EventTitle string     `json:"eventTitle" db:"event_title"`
	EventDate  time.Time  `json:"eventDate" db:"event_date"`
	UserID     string     `json:"userId" db:"user_id"`
	UserName   string     `json:"userName" db:"user_name"`
	RsvpDate   time.Time  `json:"rsvpDate" db:"rsvp_date"`
	Status     RSVPStatus `json:"status" db:"status"`
}

// Attendee is a Confirmed RSVP joined with the attendee's identity,
// used by the admin attendee listing and CSV export.
type Attendee struct {
	RSVPID    string     `json:"rsvpId" db:"rsvp_id"`
	UserID    string     `json:"userId" db:"user_id"`
	UserName  string     `json:"userName" db:"user_name"`
	UserEmail string     `json:"userEmail" db:"user_email"`
	RsvpDate  time.Time  `json:"rsvpDate" db:"rsvp_date"`
	Status    RSVPStatus `json:"status" db:"status"`
}

// NewEvent contains information needed to create or update an Event.
type NewEvent struct {
	Title        string    `json:"title" validate:"required,max=200"`
	Description  string    `json:"description" validate:"required"`
	EventDate    time.Time `json:"eventDate" validate:"required"`
	Location     string    `json:"location" validate:"required,max=200"`
	MaxAttendees *int      `json:"maxAttendees" validate:"omitempty,min=1"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	ne.Location = core.CleanString(ne.Location)
	return validate.Struct(ne)
}

// QueryFilter fields are AND-combined. Search matches title or description,
// Location matches location; both case-insensitive substrings. The date
// range is inclusive on both ends. UpcomingOnly defaults to true.
type QueryFilter struct {
	UpcomingOnly *bool     `query:"upcomingOnly"`
	Search       string    `query:"search"`
	Location     string    `query:"location"`
	StartDate    time.Time `query:"startDate"`
	EndDate      time.Time `query:"endDate"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Location = core.CleanString(qf.Location)
}

func (qf *QueryFilter) Upcoming() bool {
	return qf.UpcomingOnly == nil || *qf.UpcomingOnly
}
