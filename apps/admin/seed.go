package main

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/campusconnect/hub/core"
	"github.com/campusconnect/hub/core/event"
	"github.com/campusconnect/hub/core/news"
	"github.com/campusconnect/hub/core/resource"
	"github.com/campusconnect/hub/core/user"
)

// seed loads demo data. It refuses to run against a database that
// already has users, so re-running it is safe.
func (cli *commandLine) seed() error {
	ctx := context.Background()

	_, count, err := cli.usrRepo.FilterUsers(ctx, user.QueryFilter{}, core.Page{Number: 1, Size: 1})
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Println("seed: database is not empty, nothing to do")
		return nil
	}

	now := time.Now().UTC()

	admin := user.User{
		Email:     "admin@campus.edu",
		Role:      user.RoleAdministrator,
		FirstName: "Alice",
		LastName:  "Admin",
		CreatedAt: now,
	}
	if err = admin.SetPassword("ChangeMe!2024"); err != nil {
		return err
	}
	if admin, err = cli.usrRepo.CreateUser(ctx, admin); err != nil {
		return err
	}

	student := user.User{
		Email:     "student@campus.edu",
		Role:      user.RoleStudent,
		FirstName: "Sam",
		LastName:  "Student",
		CreatedAt: now,
	}
	if err = student.SetPassword("ChangeMe!2024"); err != nil {
		return err
	}
	if student, err = cli.usrRepo.CreateUser(ctx, student); err != nil {
		return err
	}

	posts := []news.Post{
		{
			Title:       "Welcome to the new campus portal",
			Content:     "The campus portal is live. Check back here for announcements, events and student resources.",
			IsPublished: true,
		},
		{
			Title:       "Library hours extended during finals",
			Content:     "The main library will stay open until 2am from the 8th through the 19th.",
			IsPublished: true,
		},
		{
			Title:       "Draft: parking changes",
			Content:     "Lot B closes for resurfacing next month. Details to follow.",
			IsPublished: false,
		},
	}
	for i, post := range posts {
		post.ID = uuid.NewString()
		post.AuthorID = admin.ID
		post.CreatedAt = now.Add(time.Duration(i) * time.Minute)
		if err = cli.newsRepo.CreatePost(ctx, &post); err != nil {
			return err
		}
	}

	caps := []int{100, 200, 50}
	events := []event.Event{
		{
			Title:       "Orientation Day",
			Description: "Campus tour, club fair and a welcome talk from the dean.",
			EventDate:   now.AddDate(0, 0, 14),
			Location:    "Main Quad",
		},
		{
			Title:       "Spring Concert",
			Description: "Live music on the lawn. Bring a blanket.",
			EventDate:   now.AddDate(0, 1, 0),
			Location:    "South Lawn",
		},
		{
			Title:       "Career Fair",
			Description: "Meet recruiters from forty companies. Bring copies of your resume.",
			EventDate:   now.AddDate(0, 2, 0),
			Location:    "Sports Hall",
		},
	}
	for i, evt := range events {
		evt.CreatedBy = admin.ID
		evt.MaxAttendees = &caps[i]
		evt.CreatedAt = now
		if _, err = cli.eventRepo.CreateEvent(ctx, evt); err != nil {
			return err
		}
	}

	resources := []resource.Resource{
		{Title: "Student Handbook", Description: "Policies, academic calendar and campus services.", Url: "https://campus.edu/handbook", Category: "Academics", DisplayOrder: 1, IsActive: true},
		{Title: "Course Catalog", Description: "Browse and search all course offerings.", Url: "https://campus.edu/catalog", Category: "Academics", DisplayOrder: 2, IsActive: true},
		{Title: "Counseling Services", Description: "Free and confidential counseling for students.", Url: "https://campus.edu/counseling", Category: "Wellbeing", DisplayOrder: 1, IsActive: true},
		{Title: "Gym Timetable", Description: "Opening hours and class schedule.", Url: "https://campus.edu/gym", Category: "Wellbeing", DisplayOrder: 2, IsActive: false},
	}
	for _, res := range resources {
		res.ID = uuid.NewString()
		res.CreatedAt = now
		if err = cli.resourceRepo.CreateResource(ctx, &res); err != nil {
			return err
		}
	}

	logger.Printf("seed: created %d users, %d news posts, %d events, %d resources\n",
		2, len(posts), len(events), len(resources))
	return nil
}
