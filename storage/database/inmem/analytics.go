package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/campusconnect/hub/core"
	"github.com/campusconnect/hub/core/analytics"
	"github.com/campusconnect/hub/core/event"
)

type analyticsRepository struct {
	db *DB
}

func NewAnalyticsRepository(db *DB) analytics.Repository {
	return &analyticsRepository{db: db}
}

func (repo *analyticsRepository) CountTotals(ctx context.Context, now time.Time, exec ...core.DBExecutor) (analytics.Totals, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var totals analytics.Totals
	totals.TotalUsers = len(repo.db.users)
	for _, usr := range repo.db.users {
		if !usr.CreatedAt.Before(monthStart) {
			totals.NewUsersThisMonth++
		}
	}
	totals.TotalNewsPosts = len(repo.db.news)
	for _, post := range repo.db.news {
		if post.IsPublished {
			totals.PublishedNewsPosts++
		}
	}
	totals.TotalEvents = len(repo.db.events)
	for _, evt := range repo.db.events {
		if !evt.EventDate.Before(now) {
			totals.UpcomingEvents++
		}
	}
	for _, rsvp := range repo.db.rsvps {
		if rsvp.Status == event.StatusConfirmed {
			totals.TotalRSVPs++
		}
	}
	totals.TotalResources = len(repo.db.resources)
	return totals, nil
}

func (repo *analyticsRepository) AverageConfirmedRSVPs(ctx context.Context, exec ...core.DBExecutor) (float64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	confirmedByEvent := make(map[string]int)
	for _, rsvp := range repo.db.rsvps {
		if _, ok := confirmedByEvent[rsvp.EventID]; !ok {
			confirmedByEvent[rsvp.EventID] = 0
		}
		if rsvp.Status == event.StatusConfirmed {
			confirmedByEvent[rsvp.EventID]++
		}
	}
	if len(confirmedByEvent) == 0 {
		return 0, nil
	}

	var sum int
	for _, count := range confirmedByEvent {
		sum += count
	}
	return float64(sum) / float64(len(confirmedByEvent)), nil
}

func (repo *analyticsRepository) MonthlyCounts(ctx context.Context, series analytics.Series, from time.Time, exec ...core.DBExecutor) (map[time.Time]int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	counts := make(map[time.Time]int)
	add := func(t time.Time) {
		if t.Before(from) {
			return
		}
		t = t.UTC()
		counts[time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)]++
	}

	switch series {
	case analytics.SeriesUsers:
		for _, usr := range repo.db.users {
			add(usr.CreatedAt)
		}
	case analytics.SeriesEvents:
		for _, evt := range repo.db.events {
			add(evt.CreatedAt)
		}
	case analytics.SeriesRSVPs:
		for _, rsvp := range repo.db.rsvps {
			if rsvp.Status == event.StatusConfirmed {
				add(rsvp.RsvpDate)
			}
		}
	}
	return counts, nil
}

func (repo *analyticsRepository) TopEvents(ctx context.Context, limit int, exec ...core.DBExecutor) ([]analytics.EventPopularity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	top := make([]analytics.EventPopularity, 0, len(repo.db.events))
	for _, evt := range repo.db.events {
		pop := analytics.EventPopularity{
			EventID:    evt.ID,
			EventTitle: evt.Title,
			EventDate:  evt.EventDate,
		}
		for _, rsvp := range repo.db.rsvps {
			if rsvp.EventID == evt.ID && rsvp.Status == event.StatusConfirmed {
				pop.RSVPCount++
			}
		}
		top = append(top, pop)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].RSVPCount != top[j].RSVPCount {
			return top[i].RSVPCount > top[j].RSVPCount
		}
		return top[i].EventID < top[j].EventID
	})
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}
