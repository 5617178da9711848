package feed

import (
	"context"
	"strings"

	"maisonette/services/ical"
)

// ExportCalendar renders the occupying bookings and the blocks of a unit.
func (s *DefaultFeedService) ExportCalendar(ctx context.Context, unitID string) (string, error) {
	unit, err := s.Units.GetByID(ctx, unitID)
	if err != nil {
		return "", notFoundOr(err, "unit")
	}
	occ, err := s.Store.Unit(ctx, unitID)
	if err != nil {
		return "", err
	}
	return ical.Export(ical.ExportOptions{
		ProductID:    s.ProductID,
		CalendarName: unit.Name,
		UIDDomain:    s.UIDDomain,
		Now:          s.now(),
	}, occ.Bookings, occ.Blocks)
}

// ExportURL is the public address platforms subscribe to.
func (s *DefaultFeedService) ExportURL(ctx context.Context, unitID string) (string, error) {
	if _, err := s.Units.GetByID(ctx, unitID); err != nil {
		return "", notFoundOr(err, "unit")
	}
	return strings.TrimRight(s.PublicBaseURL, "/") + "/api/ical/" + unitID + ".ics", nil
}
