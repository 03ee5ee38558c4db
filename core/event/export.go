package event

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
)

// ExportFile is a rendered attendee export ready to be served as a download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

var exportNowFunc = time.Now // mockable

// ExportAttendees renders the event's Confirmed RSVPs as CSV, ordered by
// RSVP date ascending. Every field is double-quoted, matching the format
// the campus office's spreadsheet imports expect.
func (svc *Service) ExportAttendees(ctx context.Context, eventID string) (ExportFile, error) {
	attendees, err := svc.Attendees(ctx, eventID)
	if err != nil {
		return ExportFile{}, err
	}

	var buf bytes.Buffer
	buf.WriteString("Name,Email,RSVP Date\n")
	for _, a := range attendees {
		fmt.Fprintf(&buf, "%s,%s,%s\n",
			csvQuote(a.UserName),
			csvQuote(a.UserEmail),
			csvQuote(a.RsvpDate.UTC().Format("2006-01-02 15:04:05")))
	}

	return ExportFile{
		Filename:    fmt.Sprintf("event-%s-attendees-%s.csv", eventID, exportNowFunc().UTC().Format("20060102")),
		ContentType: "text/csv",
		Content:     buf.Bytes(),
	}, nil
}

func csvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
