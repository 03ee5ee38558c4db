package analytics

import "time"

// Series identifies which creation-date series a monthly trend counts.
type Series int

const (
	SeriesUsers Series = iota
	SeriesEvents
	SeriesRSVPs
)

type Totals struct {
	TotalUsers         int
	NewUsersThisMonth  int
	TotalNewsPosts     int
	PublishedNewsPosts int
	TotalEvents        int
	UpcomingEvents     int
	TotalRSVPs         int
	TotalResources     int
}

type MonthlyTrend struct {
	Month string `json:"month"` // "Jan 2006"
	Count int    `json:"count"`
}

type EventPopularity struct {
	EventID    string    `json:"eventId" db:"event_id"`
	EventTitle string    `json:"eventTitle" db:"event_title"`
	EventDate  time.Time `json:"eventDate" db:"event_date"`
	RSVPCount  int       `json:"rsvpCount" db:"rsvp_count"`
}

// Summary is the lightweight dashboard payload: overall totals only.
type Summary struct {
	TotalNewsPosts     int `json:"totalNewsPosts"`
	PublishedNewsPosts int `json:"publishedNewsPosts"`
	TotalEvents        int `json:"totalEvents"`
	UpcomingEvents     int `json:"upcomingEvents"`
	TotalRSVPs         int `json:"totalRsvps"`
	TotalUsers         int `json:"totalUsers"`
	TotalResources     int `json:"totalResources"`
}

type Report struct {
	TotalUsers           int               `json:"totalUsers"`
	NewUsersThisMonth    int               `json:"newUsersThisMonth"`
	TotalNewsPosts       int               `json:"totalNewsPosts"`
	PublishedNewsPosts   int               `json:"publishedNewsPosts"`
	TotalEvents          int               `json:"totalEvents"`
	UpcomingEvents       int               `json:"upcomingEvents"`
	TotalRSVPs           int               `json:"totalRSVPs"`
	TotalResources       int               `json:"totalResources"`
	AverageRSVPsPerEvent float64           `json:"averageRsvpsPerEvent"`
	UserGrowthTrend      []MonthlyTrend    `json:"userGrowthTrend"`
	EventTrend           []MonthlyTrend    `json:"eventTrend"`
	RSVPTrend            []MonthlyTrend    `json:"rsvpTrend"`
	MostPopularEvents    []EventPopularity `json:"mostPopularEvents"`
}
