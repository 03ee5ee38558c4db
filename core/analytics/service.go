package analytics

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/campusconnect/hub/core"
)

const (
	trendMonths  = 6
	topEventsCap = 5
	monthFormat  = "Jan 2006"
)

type Repository interface {
	CountTotals(ctx context.Context, now time.Time, exec ...core.DBExecutor) (Totals, error)
	// AverageConfirmedRSVPs averages confirmed RSVP counts over events
	// that have at least one RSVP record; 0 when there are none.
	AverageConfirmedRSVPs(ctx context.Context, exec ...core.DBExecutor) (float64, error)
	// MonthlyCounts returns per-calendar-month counts for the series,
	// keyed by month start (UTC), from `from` onwards. Months with no
	// records may be absent from the map.
	MonthlyCounts(ctx context.Context, series Series, from time.Time, exec ...core.DBExecutor) (map[time.Time]int, error)
	// TopEvents returns the events with the highest confirmed RSVP
	// counts, ordered by count descending then event id ascending.
	TopEvents(ctx context.Context, limit int, exec ...core.DBExecutor) ([]EventPopularity, error)
}

type ServiceInterface interface {
	Summary(ctx context.Context) (Summary, error)
	Report(ctx context.Context) (Report, error)
}

type Service struct {
	db   core.Transactor
	repo Repository

	// mocked in tests
	NowFunc func() time.Time
}

var _ ServiceInterface = (*Service)(nil)

func NewService(db core.Transactor, repo Repository) *Service {
	return &Service{db: db, repo: repo, NowFunc: time.Now}
}

// Summary returns the dashboard totals.
func (svc *Service) Summary(ctx context.Context) (Summary, error) {
	totals, err := svc.repo.CountTotals(ctx, svc.NowFunc().UTC())
	if err != nil {
		return Summary{}, errors.Wrap(err, "counting totals")
	}
	return Summary{
		TotalNewsPosts:     totals.TotalNewsPosts,
		PublishedNewsPosts: totals.PublishedNewsPosts,
		TotalEvents:        totals.TotalEvents,
		UpcomingEvents:     totals.UpcomingEvents,
		TotalRSVPs:         totals.TotalRSVPs,
		TotalUsers:         totals.TotalUsers,
		TotalResources:     totals.TotalResources,
	}, nil
}

// Report assembles the admin analytics report: overall totals,
// trailing six-month trends (current month included) and the most
// popular events by confirmed RSVP count.
func (svc *Service) Report(ctx context.Context) (Report, error) {
	now := svc.NowFunc().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	from := monthStart.AddDate(0, -(trendMonths - 1), 0)

	totals, err := svc.repo.CountTotals(ctx, now)
	if err != nil {
		return Report{}, errors.Wrap(err, "counting totals")
	}
	avg, err := svc.repo.AverageConfirmedRSVPs(ctx)
	if err != nil {
		return Report{}, errors.Wrap(err, "averaging RSVPs")
	}

	rpt := Report{
		TotalUsers:           totals.TotalUsers,
		NewUsersThisMonth:    totals.NewUsersThisMonth,
		TotalNewsPosts:       totals.TotalNewsPosts,
		PublishedNewsPosts:   totals.PublishedNewsPosts,
		TotalEvents:          totals.TotalEvents,
		UpcomingEvents:       totals.UpcomingEvents,
		TotalRSVPs:           totals.TotalRSVPs,
		TotalResources:       totals.TotalResources,
		AverageRSVPsPerEvent: math.Round(avg*100) / 100,
	}

	for _, series := range []struct {
		s    Series
		dest *[]MonthlyTrend
	}{
		{SeriesUsers, &rpt.UserGrowthTrend},
		{SeriesEvents, &rpt.EventTrend},
		{SeriesRSVPs, &rpt.RSVPTrend},
	} {
		counts, err := svc.repo.MonthlyCounts(ctx, series.s, from)
		if err != nil {
			return Report{}, errors.Wrap(err, "counting monthly trend")
		}
		*series.dest = bucketize(counts, from)
	}

	if rpt.MostPopularEvents, err = svc.repo.TopEvents(ctx, topEventsCap); err != nil {
		return Report{}, errors.Wrap(err, "ranking events")
	}
	return rpt, nil
}

// bucketize lays the sparse month counts out over the full six-month
// window so empty months show up as zeros.
func bucketize(counts map[time.Time]int, from time.Time) []MonthlyTrend {
	trend := make([]MonthlyTrend, 0, trendMonths)
	for i := 0; i < trendMonths; i++ {
		month := from.AddDate(0, i, 0)
		trend = append(trend, MonthlyTrend{
			Month: month.Format(monthFormat),
			Count: counts[month],
		})
	}
	return trend
}
