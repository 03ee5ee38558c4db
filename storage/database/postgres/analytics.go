package postgresdb

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/campusconnect/hub/core"
	"github.com/campusconnect/hub/core/analytics"
)

type analyticsRepository struct {
	db core.DB
}

func NewAnalyticsRepository(db core.DB) analytics.Repository {
	return &analyticsRepository{db: db}
}

func (repo *analyticsRepository) CountTotals(ctx context.Context, now time.Time, exec ...core.DBExecutor) (analytics.Totals, error) {
	ex := executor(repo.db, exec)

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var totals struct {
		TotalUsers         int `db:"total_users"`
		NewUsersThisMonth  int `db:"new_users_this_month"`
		TotalNewsPosts     int `db:"total_news_posts"`
		PublishedNewsPosts int `db:"published_news_posts"`
		TotalEvents        int `db:"total_events"`
		UpcomingEvents     int `db:"upcoming_events"`
		TotalRSVPs         int `db:"total_rsvps"`
		TotalResources     int `db:"total_resources"`
	}
	err := ex.GetContext(ctx, &totals,
		`SELECT
		 (SELECT COUNT(*) FROM app_user) AS total_users,
		 (SELECT COUNT(*) FROM app_user WHERE created_at >= $1) AS new_users_this_month,
		 (SELECT COUNT(*) FROM news_post) AS total_news_posts,
		 (SELECT COUNT(*) FROM news_post WHERE is_published) AS published_news_posts,
		 (SELECT COUNT(*) FROM event) AS total_events,
		 (SELECT COUNT(*) FROM event WHERE event_date >= $2) AS upcoming_events,
		 (SELECT COUNT(*) FROM event_rsvp WHERE status = 'Confirmed') AS total_rsvps,
		 (SELECT COUNT(*) FROM resource) AS total_resources`,
		monthStart, now)
	if err != nil {
		return analytics.Totals{}, errors.Wrap(err, "counting totals")
	}
	return analytics.Totals(totals), nil
}

func (repo *analyticsRepository) AverageConfirmedRSVPs(ctx context.Context, exec ...core.DBExecutor) (float64, error) {
	ex := executor(repo.db, exec)

	// averaged over events that have at least one RSVP record of any status
	var avg float64
	err := ex.GetContext(ctx, &avg,
		`SELECT COALESCE(AVG(confirmed), 0) FROM (
			SELECT COUNT(*) FILTER (WHERE r.status = 'Confirmed') AS confirmed
			FROM event_rsvp r GROUP BY r.event_id
		 ) pe`)
	return avg, errors.Wrap(err, "averaging confirmed RSVPs")
}

func (repo *analyticsRepository) MonthlyCounts(ctx context.Context, series analytics.Series, from time.Time, exec ...core.DBExecutor) (map[time.Time]int, error) {
	ex := executor(repo.db, exec)

	var query string
	switch series {
	case analytics.SeriesUsers:
		query = `SELECT date_trunc('month', created_at AT TIME ZONE 'UTC') AS month, COUNT(*) AS count
		         FROM app_user WHERE created_at >= $1 GROUP BY 1`
	case analytics.SeriesEvents:
		query = `SELECT date_trunc('month', created_at AT TIME ZONE 'UTC') AS month, COUNT(*) AS count
		         FROM event WHERE created_at >= $1 GROUP BY 1`
	case analytics.SeriesRSVPs:
		query = `SELECT date_trunc('month', rsvp_date AT TIME ZONE 'UTC') AS month, COUNT(*) AS count
		         FROM event_rsvp WHERE rsvp_date >= $1 AND status = 'Confirmed' GROUP BY 1`
	}

	var rows []struct {
		Month time.Time `db:"month"`
		Count int       `db:"count"`
	}
	if err := ex.SelectContext(ctx, &rows, query, from); err != nil {
		return nil, errors.Wrap(err, "counting per month")
	}

	counts := make(map[time.Time]int, len(rows))
	for _, row := range rows {
		// normalize so the key compares equal to a time.Date-built month start
		m := row.Month.UTC()
		counts[time.Date(m.Year(), m.Month(), 1, 0, 0, 0, 0, time.UTC)] = row.Count
	}
	return counts, nil
}

func (repo *analyticsRepository) TopEvents(ctx context.Context, limit int, exec ...core.DBExecutor) ([]analytics.EventPopularity, error) {
	ex := executor(repo.db, exec)

	top := []analytics.EventPopularity{}
	err := ex.SelectContext(ctx, &top,
		`SELECT e.id AS event_id, e.title AS event_title, e.event_date,
		        (SELECT COUNT(*) FROM event_rsvp r WHERE r.event_id = e.id AND r.status = 'Confirmed') AS rsvp_count
		 FROM event e
		 ORDER BY rsvp_count DESC, e.id ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "ranking events by RSVPs")
	}
	return top, nil
}
