package tests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campusconnect/hub/core/event"
	"github.com/campusconnect/hub/core/news"
	"github.com/campusconnect/hub/core/resource"
	"github.com/campusconnect/hub/core/user"
)

func createUser(t *testing.T, email string, role user.Role, createdAt ...time.Time) user.User {
	t.Helper()

	usr := user.User{
		Email:     email,
		Role:      role,
		FirstName: "Test",
		LastName:  "User",
		CreatedAt: time.Now().UTC(),
	}
	if len(createdAt) > 0 {
		usr.CreatedAt = createdAt[0].UTC()
	}
	if err := usr.SetPassword("test-pwd-123"); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func createNewsPost(t *testing.T, title, authorID string, published bool, createdAt ...time.Time) news.Post {
	t.Helper()

	post := news.Post{
		ID:          uuid.NewString(),
		Title:       title,
		Content:     "content of " + title,
		AuthorID:    authorID,
		IsPublished: published,
		CreatedAt:   time.Now().UTC(),
	}
	if len(createdAt) > 0 {
		post.CreatedAt = createdAt[0].UTC()
	}
	if err := newsRepo.CreatePost(context.Background(), &post); err != nil {
		t.Fatalf("CreatePost(): %v", err)
	}
	return post
}

func createEvent(t *testing.T, title, createdBy string, eventDate time.Time, maxAttendees *int) event.Event {
	t.Helper()

	evt, err := eventRepo.CreateEvent(context.Background(), event.Event{
		Title:        title,
		Description:  "description of " + title,
		EventDate:    eventDate.UTC(),
		Location:     "Main Hall",
		CreatedBy:    createdBy,
		MaxAttendees: maxAttendees,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateEvent(): %v", err)
	}
	return evt
}

func createRSVP(t *testing.T, eventID, userID string, status event.RSVPStatus, rsvpDate ...time.Time) event.RSVP {
	t.Helper()

	rsvp := event.RSVP{
		EventID:  eventID,
		UserID:   userID,
		Status:   status,
		RsvpDate: time.Now().UTC(),
	}
	if len(rsvpDate) > 0 {
		rsvp.RsvpDate = rsvpDate[0].UTC()
	}
	rsvp, err := eventRepo.CreateRSVP(context.Background(), rsvp)
	if err != nil {
		t.Fatalf("CreateRSVP(): %v", err)
	}
	return rsvp
}

func createResource(t *testing.T, title, category string, displayOrder int, active bool) resource.Resource {
	t.Helper()

	res := resource.Resource{
		ID:           uuid.NewString(),
		Title:        title,
		Description:  "description of " + title,
		Url:          "https://campus.edu/" + uuid.NewString(),
		Category:     category,
		DisplayOrder: displayOrder,
		IsActive:     active,
		CreatedAt:    time.Now().UTC(),
	}
	if err := resourceRepo.CreateResource(context.Background(), &res); err != nil {
		t.Fatalf("CreateResource(): %v", err)
	}
	return res
}

func intPtr(n int) *int { return &n }
