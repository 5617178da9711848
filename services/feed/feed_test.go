package feed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"maisonette/database/repository/repotest"
	"maisonette/models"
	"maisonette/services/calendar"
	"maisonette/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fetcherMock struct {
	bodies map[string]string
	calls  int
}

func (m *fetcherMock) Fetch(_ context.Context, url string) (string, error) {
	m.calls++
	body, ok := m.bodies[url]
	if !ok {
		return "", utils.NewUpstreamError("feed request failed", errors.New("unexpected status 404"))
	}
	return body, nil
}

const feedBody = "BEGIN:VCALENDAR\r\n" +
	"BEGIN:VEVENT\r\nDTSTART;VALUE=DATE:20250701\r\nDTEND;VALUE=DATE:20250705\r\nSUMMARY:Past stay\r\nUID:past@airbnb.com\r\nEND:VEVENT\r\n" +
	"BEGIN:VEVENT\r\nDTSTART;VALUE=DATE:20250901\r\nDTEND;VALUE=DATE:20250905\r\nSUMMARY:Reserved\r\nUID:one@airbnb.com\r\nEND:VEVENT\r\n" +
	"BEGIN:VEVENT\r\nDTSTART;VALUE=DATE:20251010\r\nDTEND;VALUE=DATE:20251012\r\nUID:two@airbnb.com\r\nEND:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

type fixture struct {
	svc      *DefaultFeedService
	feeds    *repotest.Feeds
	blocks   *repotest.Blocks
	bookings *repotest.Bookings
	fetcher  *fetcherMock
}

func newFixture() *fixture {
	f := &fixture{
		feeds:    repotest.NewFeeds(),
		blocks:   repotest.NewBlocks(),
		bookings: repotest.NewBookings(),
		fetcher: &fetcherMock{bodies: map[string]string{
			"https://www.airbnb.com/calendar/ical/1.ics": feedBody,
		}},
	}
	f.svc = &DefaultFeedService{
		Units:         repotest.NewUnits(models.Unit{ID: "U1", Name: "Casa Mare", Active: true, MaxOccupancy: 4, BasePrice: 90}),
		Feeds:         f.feeds,
		Blocks:        f.blocks,
		Store:         calendar.NewStore(f.bookings, f.blocks),
		Locker:        calendar.NewMemoryUnitLocker(),
		Fetcher:       f.fetcher,
		Logger:        zap.NewNop(),
		PublicBaseURL: "https://maisonette.example/",
		Now:           func() time.Time { return time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC) },
	}
	return f
}

func (f *fixture) addFeed(t *testing.T, name, url string) *models.CalendarFeed {
	t.Helper()
	feed, err := f.svc.CreateFeed(context.Background(), models.FeedInput{UnitID: "U1", Name: name, URL: url})
	require.NoError(t, err)
	return feed
}

func TestSyncIsIdempotent(t *testing.T) {
	f := newFixture()
	feed := f.addFeed(t, "Airbnb", "https://www.airbnb.com/calendar/ical/1.ics")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		results, err := f.svc.Sync(ctx, "", "")
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.Empty(t, results[0].Error)
		require.Equal(t, 3, results[0].EventsFound)
		require.Equal(t, 2, results[0].BlocksCreated)
	}

	blocks := f.blocks.All()
	require.Len(t, blocks, 2)
	for _, b := range blocks {
		require.Equal(t, feed.ID, b.FeedID)
		require.Equal(t, models.BlockSourceAirbnb, b.Source)
		require.NotEmpty(t, b.EventUID)
	}
	reasons := []string{blocks[0].Reason, blocks[1].Reason}
	require.ElementsMatch(t, []string{"Reserved", "Reservation Airbnb"}, reasons)

	stored, err := f.svc.GetFeed(ctx, feed.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastSyncedAt)
	require.Equal(t, 2, stored.EventsImported)
}

func TestSyncFailureIsPerFeed(t *testing.T) {
	f := newFixture()
	f.addFeed(t, "Booking.com", "https://admin.booking.com/broken.ics")
	good := f.addFeed(t, "Airbnb", "https://www.airbnb.com/calendar/ical/1.ics")

	results, err := f.svc.Sync(context.Background(), "", "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Contains(t, results[0].Error, "feed request failed")
	require.Empty(t, results[1].Error)
	require.Equal(t, good.ID, results[1].FeedID)
	require.Len(t, f.blocks.All(), 2)
}

func TestSyncSkipsInactiveAndFilters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	feed := f.addFeed(t, "Airbnb", "https://www.airbnb.com/calendar/ical/1.ics")
	inactive := false
	_, err := f.svc.UpdateFeed(ctx, feed.ID, models.FeedUpdate{Active: &inactive})
	require.NoError(t, err)

	results, err := f.svc.Sync(ctx, "U1", "")
	require.NoError(t, err)
	require.Empty(t, results)
	require.Zero(t, f.fetcher.calls)
}

func TestImportedBlocksAffectAvailability(t *testing.T) {
	f := newFixture()
	f.addFeed(t, "Airbnb", "https://www.airbnb.com/calendar/ical/1.ics")
	ctx := context.Background()
	_, err := f.svc.Sync(ctx, "", "")
	require.NoError(t, err)

	checker := calendar.NewChecker(f.svc.Store)
	avail, err := checker.IsAvailable(ctx, "U1", models.DateRange{Start: "2025-09-03", End: "2025-09-06"})
	require.NoError(t, err)
	require.False(t, avail.Available)
	require.Equal(t, "Reserved", avail.Reason)

	avail, err = checker.IsAvailable(ctx, "U1", models.DateRange{Start: "2025-09-05", End: "2025-09-06"})
	require.NoError(t, err)
	require.True(t, avail.Available)
}

func TestDeleteFeedCascadesBlocks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	feed := f.addFeed(t, "Airbnb", "https://www.airbnb.com/calendar/ical/1.ics")
	require.NoError(t, f.blocks.Create(ctx, &models.DateBlock{
		ID: "M1", UnitID: "U1", DateRange: models.DateRange{Start: "2025-12-01", End: "2025-12-02"}, Source: models.BlockSourceManual,
	}))
	_, err := f.svc.Sync(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, f.blocks.All(), 3)

	require.NoError(t, f.svc.DeleteFeed(ctx, feed.ID))
	remaining := f.blocks.All()
	require.Len(t, remaining, 1)
	require.Equal(t, "M1", remaining[0].ID)

	require.True(t, utils.IsKind(f.svc.DeleteFeed(ctx, feed.ID), utils.KindNotFound))
}

func TestCreateFeedValidatesURL(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for _, url := range []string{"ftp://example.com/cal.ics", "not a url", "webcal://example.com/cal.ics"} {
		_, err := f.svc.CreateFeed(ctx, models.FeedInput{UnitID: "U1", Name: "X", URL: url})
		require.True(t, utils.IsKind(err, utils.KindValidation), "url %q", url)
	}
	_, err := f.svc.CreateFeed(ctx, models.FeedInput{UnitID: "missing", Name: "X", URL: "https://example.com/a.ics"})
	require.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestExportCalendar(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.bookings.Create(ctx, &models.Booking{
		ID: "BK1", UnitID: "U1", Code: "MDP-AAAAAA", Status: models.StatusConfirmed,
		DateRange: models.DateRange{Start: "2025-09-01", End: "2025-09-04"},
		GuestInfo: models.GuestInfo{Name: "Anna"},
	}))
	require.NoError(t, f.bookings.Create(ctx, &models.Booking{
		ID: "BK2", UnitID: "U1", Code: "MDP-BBBBBB", Status: models.StatusCancelled,
		DateRange: models.DateRange{Start: "2025-09-10", End: "2025-09-12"},
	}))

	out, err := f.svc.ExportCalendar(ctx, "U1")
	require.NoError(t, err)
	require.Contains(t, out, "SUMMARY:Booking - Anna")
	require.Equal(t, 1, strings.Count(out, "BEGIN:VEVENT"))

	url, err := f.svc.ExportURL(ctx, "U1")
	require.NoError(t, err)
	require.Equal(t, "https://maisonette.example/api/ical/U1.ics", url)

	_, err = f.svc.ExportCalendar(ctx, "missing")
	require.True(t, utils.IsKind(err, utils.KindNotFound))
}

type syncerFunc func(ctx context.Context, unitID, feedID string) ([]models.SyncResult, error)

func (f syncerFunc) Sync(ctx context.Context, unitID, feedID string) ([]models.SyncResult, error) {
	return f(ctx, unitID, feedID)
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewScheduler("every tuesday", syncerFunc(nil), zap.NewNop(), time.Minute)
	require.Error(t, err)

	called := false
	s, err := NewScheduler("*/5 * * * *", syncerFunc(func(ctx context.Context, unitID, feedID string) ([]models.SyncResult, error) {
		called = true
		require.Empty(t, unitID)
		return []models.SyncResult{{FeedID: "F1"}, {FeedID: "F2", Error: "boom"}}, nil
	}), zap.NewNop(), time.Minute)
	require.NoError(t, err)
	s.run()
	require.True(t, called)
}
