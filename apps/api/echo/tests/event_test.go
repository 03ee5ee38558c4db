package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/campusconnect/hub/core/event"
	"github.com/campusconnect/hub/core/user"
)

func Test_eventApi_query(t *testing.T) {
	resetDB(t)

	admin := createUser(t, "admin@test.edu", user.RoleAdministrator)
	student := createUser(t, "awe@test.edu", user.RoleStudent)

	now := time.Now().UTC()
	past := createEvent(t, "Last Semester Gala", admin.ID, now.AddDate(0, -1, 0), nil)
	soon := createEvent(t, "Career Fair", admin.ID, now.AddDate(0, 0, 7), nil)
	later := createEvent(t, "Spring Concert", admin.ID, now.AddDate(0, 1, 0), intPtr(100))
	createRSVP(t, soon.ID, student.ID, event.StatusConfirmed)

	view := func(evt event.Event, attendees int, rsvped bool) event.View {
		return event.View{
			Event:            evt,
			CreatedByName:    admin.FullName(),
			CurrentAttendees: attendees,
			IsUserRsvped:     rsvped,
		}
	}

	tests := []httpTest{
		{
			name: "upcoming only by default", path: "/v1/events",
			wantData: marchallList(t, view(soon, 1, false), view(later, 0, false)),
		},
		{
			name: "all events on demand", path: "/v1/events?upcomingOnly=false",
			wantData: marchallList(t, view(past, 0, false), view(soon, 1, false), view(later, 0, false)),
		},
		{
			name: "token marks own RSVPs", path: "/v1/events", token: getToken(t, student),
			wantData: marchallList(t, view(soon, 1, true), view(later, 0, false)),
		},
		{
			name: "search", path: "/v1/events?search=fair",
			wantData: marchallList(t, view(soon, 1, false)),
		},
		{
			name: "search matches nothing", path: "/v1/events?search=lol",
			wantData: marchallList(t),
		},
	}
	for _, tt := range tests {
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_eventApi_retrieve(t *testing.T) {
	resetDB(t)

	admin := createUser(t, "admin@test.edu", user.RoleAdministrator)
	student := createUser(t, "awe@test.edu", user.RoleStudent)
	evt := createEvent(t, "Career Fair", admin.ID, time.Now().AddDate(0, 0, 7), intPtr(50))
	createRSVP(t, evt.ID, student.ID, event.StatusConfirmed)

	tests := []httpTest{
		{
			name: "anonymous", path: "/v1/events/" + evt.ID, wantCode: http.StatusOK,
			wantData: marchallObj(t, event.View{Event: evt, CreatedByName: admin.FullName(), CurrentAttendees: 1}),
		},
		{
			name: "own RSVP marked", path: "/v1/events/" + evt.ID, token: getToken(t, student), wantCode: http.StatusOK,
			wantData: marchallObj(t, event.View{Event: evt, CreatedByName: admin.FullName(), CurrentAttendees: 1, IsUserRsvped: true}),
		},
		{
			name: "not found", path: "/v1/events/lol", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "event not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_eventApi_create(t *testing.T) {
	resetDB(t)

	admin := createUser(t, "admin@test.edu", user.RoleAdministrator)
	student := createUser(t, "awe@test.edu", user.RoleStudent)

	eventDate := time.Now().UTC().AddDate(0, 0, 14).Truncate(time.Second)
	body := func(title string, maxAttendees interface{}) []byte {
		return marchallObj(t, map[string]interface{}{
			"title":        title,
			"description":  "details to follow",
			"eventDate":    eventDate,
			"location":     "Main Quad",
			"maxAttendees": maxAttendees,
		})
	}

	tests := []httpTest{
		{name: "Auth required", body: body("T", nil), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, student), body: body("T", nil),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "missing title", token: getToken(t, admin), body: body("", nil), wantCode: http.StatusBadRequest},
		{name: "zero capacity rejected", token: getToken(t, admin), body: body("T", 0), wantCode: http.StatusBadRequest},
		{name: "created unlimited", token: getToken(t, admin), body: body("Orientation Day", nil), wantCode: http.StatusCreated},
		{name: "created with capacity", token: getToken(t, admin), body: body("Workshop", 30), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/events", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			checkCode(t, tt.wantCode, rec)
			if rec.Code != http.StatusCreated {
				return
			}
			var view event.View
			if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
				t.Fatalf("Unmarshal(): %v", err)
			}
			if view.CreatedBy != admin.ID {
				t.Errorf("createdBy = %s; want %s", view.CreatedBy, admin.ID)
			}
			if view.CreatedByName != admin.FullName() {
				t.Errorf("createdByName = %s; want %s", view.CreatedByName, admin.FullName())
			}
		})
	}
}

func Test_eventApi_rsvp(t *testing.T) {
	resetDB(t)

	admin := createUser(t, "admin@test.edu", user.RoleAdministrator)
	first := createUser(t, "first@test.edu", user.RoleStudent)
	second := createUser(t, "second@test.edu", user.RoleStudent)

	tiny := createEvent(t, "Tiny Workshop", admin.ID, time.Now().AddDate(0, 0, 7), intPtr(1))

	alreadyRSVPed := marchallObj(t, httpErr{Error: "you have already RSVPed to this event"})
	eventFull := marchallObj(t, httpErr{Error: "event is full"})

	rsvp := func(t *testing.T, usr user.User, wantCode int, wantData []byte) event.RSVPView {
		t.Helper()
		req, rec := newAuthRequest(http.MethodPost, "/v1/events/"+tiny.ID+"/rsvp", getToken(t, usr))
		app.ServeHTTP(rec, req)
		if wantData != nil {
			checkCodeAndData(t, httpTest{wantCode: wantCode, wantData: wantData}, rec)
			return event.RSVPView{}
		}
		checkCode(t, wantCode, rec)
		var view event.RSVPView
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			t.Fatalf("Unmarshal(): %v", err)
		}
		return view
	}
	cancel := func(t *testing.T, usr user.User, wantCode int) {
		t.Helper()
		req, rec := newAuthRequest(http.MethodDelete, "/v1/events/"+tiny.ID+"/rsvp", getToken(t, usr))
		app.ServeHTTP(rec, req)
		checkCode(t, wantCode, rec)
	}

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/events/"+tiny.ID+"/rsvp")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("unknown event", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/events/lol/rsvp", getToken(t, first))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "event not found"})}, rec)
	})

	var firstRSVP event.RSVPView
	t.Run("confirmed", func(t *testing.T) {
		firstRSVP = rsvp(t, first, http.StatusOK, nil)
		if firstRSVP.Status != event.StatusConfirmed {
			t.Errorf("status = %s; want %s", firstRSVP.Status, event.StatusConfirmed)
		}
		if firstRSVP.EventTitle != tiny.Title {
			t.Errorf("eventTitle = %s; want %s", firstRSVP.EventTitle, tiny.Title)
		}
	})

	t.Run("already RSVPed", func(t *testing.T) {
		rsvp(t, first, http.StatusConflict, alreadyRSVPed)
	})

	t.Run("event full", func(t *testing.T) {
		rsvp(t, second, http.StatusConflict, eventFull)
	})

	t.Run("cancel frees a seat", func(t *testing.T) {
		cancel(t, first, http.StatusNoContent)
		rsvp(t, second, http.StatusOK, nil)
	})

	t.Run("cancelling twice is fine", func(t *testing.T) {
		cancel(t, second, http.StatusNoContent)
		cancel(t, second, http.StatusNoContent)
	})

	t.Run("cancel without an RSVP", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/events/"+tiny.ID+"/rsvp", getToken(t, admin))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "RSVP not found"})}, rec)
	})

	t.Run("reactivation reuses the record", func(t *testing.T) {
		view := rsvp(t, first, http.StatusOK, nil)
		if view.ID != firstRSVP.ID {
			t.Errorf("reactivated RSVP ID = %s; want %s", view.ID, firstRSVP.ID)
		}
	})

	t.Run("reactivation respects capacity", func(t *testing.T) {
		rsvp(t, second, http.StatusConflict, eventFull)
	})
}

func Test_eventApi_myRsvps(t *testing.T) {
	resetDB(t)

	admin := createUser(t, "admin@test.edu", user.RoleAdministrator)
	student := createUser(t, "awe@test.edu", user.RoleStudent)

	now := time.Now().UTC()
	soon := createEvent(t, "Career Fair", admin.ID, now.AddDate(0, 0, 7), nil)
	later := createEvent(t, "Spring Concert", admin.ID, now.AddDate(0, 1, 0), nil)
	cancelled := createEvent(t, "Gala", admin.ID, now.AddDate(0, 2, 0), nil)

	// listed by event date ascending; cancelled records are left out
	laterRSVP := createRSVP(t, later.ID, student.ID, event.StatusConfirmed)
	soonRSVP := createRSVP(t, soon.ID, student.ID, event.StatusConfirmed)
	createRSVP(t, cancelled.ID, student.ID, event.StatusCancelled)

	wantData := marchallList(t,
		event.RSVPView{
			ID: soonRSVP.ID, EventID: soon.ID, EventTitle: soon.Title, EventDate: soon.EventDate,
			UserID: student.ID, UserName: student.FullName(), RsvpDate: soonRSVP.RsvpDate, Status: event.StatusConfirmed,
		},
		event.RSVPView{
			ID: laterRSVP.ID, EventID: later.ID, EventTitle: later.Title, EventDate: later.EventDate,
			UserID: student.ID, UserName: student.FullName(), RsvpDate: laterRSVP.RsvpDate, Status: event.StatusConfirmed,
		},
	)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "mine", token: getToken(t, student), wantCode: http.StatusOK, wantData: wantData},
		{name: "none", token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallList(t)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/rsvps/mine", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_eventApi_attendees(t *testing.T) {
	resetDB(t)

	admin := createUser(t, "admin@test.edu", user.RoleAdministrator)
	student1 := createUser(t, "awe@test.edu", user.RoleStudent)
	student2 := createUser(t, "king@test.edu", user.RoleStudent)
	evt := createEvent(t, "Career Fair", admin.ID, time.Now().AddDate(0, 0, 7), nil)

	now := time.Now().UTC().Truncate(time.Second)
	rsvp2 := createRSVP(t, evt.ID, student2.ID, event.StatusConfirmed, now.Add(time.Minute))
	rsvp1 := createRSVP(t, evt.ID, student1.ID, event.StatusConfirmed, now)
	createRSVP(t, evt.ID, admin.ID, event.StatusCancelled, now.Add(2*time.Minute))

	// RSVP date ascending, cancelled records left out
	wantData := marchallList(t,
		event.Attendee{RSVPID: rsvp1.ID, UserID: student1.ID, UserName: student1.FullName(), UserEmail: student1.Email, RsvpDate: rsvp1.RsvpDate, Status: event.StatusConfirmed},
		event.Attendee{RSVPID: rsvp2.ID, UserID: student2.ID, UserName: student2.FullName(), UserEmail: student2.Email, RsvpDate: rsvp2.RsvpDate, Status: event.StatusConfirmed},
	)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/events/" + evt.ID + "/attendees", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/events/" + evt.ID + "/attendees", token: getToken(t, student1),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "unknown event", path: "/v1/events/lol/attendees", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "event not found"}),
		},
		{name: "listed", path: "/v1/events/" + evt.ID + "/attendees", token: getToken(t, admin), wantCode: http.StatusOK, wantData: wantData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_eventApi_exportAttendees(t *testing.T) {
	resetDB(t)

	admin := createUser(t, "admin@test.edu", user.RoleAdministrator)
	student := createUser(t, "awe@test.edu", user.RoleStudent)
	evt := createEvent(t, "Career Fair", admin.ID, time.Now().AddDate(0, 0, 7), nil)

	rsvpDate := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	createRSVP(t, evt.ID, student.ID, event.StatusConfirmed, rsvpDate)

	req, rec := newAuthRequest(http.MethodGet, "/v1/events/"+evt.ID+"/attendees/export", getToken(t, admin))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusOK, rec)

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %s; want text/csv", ct)
	}
	disposition := rec.Header().Get("Content-Disposition")
	wantFilename := fmt.Sprintf("event-%s-attendees-%s.csv", evt.ID, time.Now().UTC().Format("20060102"))
	if !strings.Contains(disposition, wantFilename) {
		t.Errorf("Content-Disposition = %s; want filename %s", disposition, wantFilename)
	}

	want := "Name,Email,RSVP Date\n" +
		fmt.Sprintf("%q,%q,%q\n", student.FullName(), student.Email, "2026-03-15 09:30:00")
	if rec.Body.String() != want {
		t.Errorf("body = %q; want %q", rec.Body.String(), want)
	}
}
