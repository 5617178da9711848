package ical

import (
	"fmt"
	"time"

	"maisonette/models"

	ics "github.com/arran4/golang-ical"
)

const (
	DefaultProductID = "-//La Maisonette di Paestum//Booking Calendar//EN"
	DefaultUIDDomain = "maisonette.local"
)

// ExportOptions describes the generated calendar.
type ExportOptions struct {
	ProductID    string
	CalendarName string
	UIDDomain    string
	Now          time.Time
}

// Export renders the bookings and blocks of one unit as an all-day
// iCalendar document. The library handles folding, escaping and CRLF
// line endings.
func Export(opts ExportOptions, bookings []models.Booking, blocks []models.DateBlock) (string, error) {
	if opts.ProductID == "" {
		opts.ProductID = DefaultProductID
	}
	if opts.UIDDomain == "" {
		opts.UIDDomain = DefaultUIDDomain
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	stamp := opts.Now.UTC()

	cal := ics.NewCalendar()
	cal.SetProductId(opts.ProductID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)
	if opts.CalendarName != "" {
		cal.SetXWRCalName(opts.CalendarName)
	}

	for _, b := range bookings {
		name := b.GuestInfo.Name
		if name == "" {
			name = "Guest"
		}
		uid := fmt.Sprintf("booking-%s@%s", b.ID, opts.UIDDomain)
		if err := addEvent(cal, uid, b.DateRange, "Booking - "+name, stamp); err != nil {
			return "", fmt.Errorf("ical: booking %s: %w", b.ID, err)
		}
	}
	for _, bl := range blocks {
		uid := fmt.Sprintf("block-%s@%s", bl.ID, opts.UIDDomain)
		if err := addEvent(cal, uid, bl.DateRange, blockSummary(bl), stamp); err != nil {
			return "", fmt.Errorf("ical: block %s: %w", bl.ID, err)
		}
	}
	return cal.Serialize(), nil
}

func addEvent(cal *ics.Calendar, uid string, r models.DateRange, summary string, stamp time.Time) error {
	start, err := models.ParseDate(r.Start)
	if err != nil {
		return err
	}
	end, err := models.ParseDate(r.End)
	if err != nil {
		return err
	}

	event := cal.AddEvent(uid)
	event.SetDtStampTime(stamp)
	event.SetAllDayStartAt(start)
	event.SetAllDayEndAt(end)
	event.SetSummary(summary)
	event.SetStatus(ics.ObjectStatusConfirmed)
	event.SetTimeTransparency(ics.TransparencyOpaque)
	return nil
}

func blockSummary(b models.DateBlock) string {
	if b.Source == models.BlockSourceManual || b.Source == "" {
		reason := b.Reason
		if reason == "" {
			reason = "Unavailable"
		}
		return "Blocked - " + reason
	}
	return fmt.Sprintf("Occupied (%s)", b.Source)
}
