package booking

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"maisonette/database/repository/repotest"
	"maisonette/models"
	"maisonette/services/calendar"
	"maisonette/services/pricing"
	"maisonette/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var codePattern = regexp.MustCompile(`^MDP-[A-Z0-9]{6}$`)

type notifierFunc func(ctx context.Context, n models.BookingNotification) error

func (f notifierFunc) NotifyBookingCreated(ctx context.Context, n models.BookingNotification) error {
	return f(ctx, n)
}

type fixture struct {
	svc      *DefaultBookingService
	units    *repotest.Units
	bookings *repotest.Bookings
	blocks   *repotest.Blocks
	guests   *repotest.Guests

	mu       sync.Mutex
	notified []models.BookingNotification
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		units: repotest.NewUnits(models.Unit{
			ID: "U1", Name: "Casa Mare", BasePrice: 90, MaxOccupancy: 4, Active: true,
		}),
		bookings: repotest.NewBookings(),
		blocks:   repotest.NewBlocks(),
		guests:   repotest.NewGuests(),
	}
	rates := repotest.NewRates()
	f.svc = &DefaultBookingService{
		Units:    f.units,
		Bookings: f.bookings,
		Guests:   f.guests,
		Checker:  calendar.NewChecker(calendar.NewStore(f.bookings, f.blocks)),
		Pricing:  pricing.NewPeriodStrategy(f.units, rates),
		Locker:   calendar.NewMemoryUnitLocker(),
		Codes:    NewCodeGenerator("MDP", 20, f.bookings.CodeExists),
		Notifier: notifierFunc(func(_ context.Context, n models.BookingNotification) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.notified = append(f.notified, n)
			return nil
		}),
		Logger:        zap.NewNop(),
		NotifyTimeout: time.Second,
	}
	return f
}

func request(start, end string) models.BookingRequest {
	return models.BookingRequest{
		UnitID:    "U1",
		Start:     start,
		End:       end,
		PartySize: 2,
		GuestInfo: models.GuestInfo{Name: "Anna Rossi", Email: "anna@example.com"},
	}
}

func TestCreateBookingFullScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.CreateBooking(ctx, request("2025-09-01", "2025-09-04"))
	require.NoError(t, err)
	require.Equal(t, 270.0, b.TotalPrice)
	require.Equal(t, models.StatusPending, b.Status)
	require.Regexp(t, codePattern, b.Code)
	require.Equal(t, "Casa Mare", b.UnitName)
	require.Empty(t, b.GuestID)
	require.Len(t, f.notified, 1)
	require.Equal(t, b.Code, f.notified[0].Code)
	require.Equal(t, createdByGuest, f.notified[0].CreatedBy)

	_, err = f.svc.UpdateBookingStatus(ctx, b.ID, models.StatusConfirmed)
	require.NoError(t, err)

	_, err = f.svc.CreateBooking(ctx, request("2025-09-03", "2025-09-05"))
	require.Error(t, err)
	require.True(t, utils.IsKind(err, utils.KindConflict))
	require.Contains(t, err.Error(), calendar.ReasonBooked)

	// Checkout day is free for the next arrival.
	_, err = f.svc.CreateBooking(ctx, request("2025-09-04", "2025-09-06"))
	require.NoError(t, err)
	require.Equal(t, 2, f.bookings.Len())
}

func TestCreateBookingRejectsBlockedDates(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.blocks.Create(context.Background(), &models.DateBlock{
		ID: "B1", UnitID: "U1", DateRange: models.DateRange{Start: "2025-10-10", End: "2025-10-12"},
		Reason: "maintenance", Source: models.BlockSourceManual,
	}))

	_, err := f.svc.CreateBooking(context.Background(), request("2025-10-11", "2025-10-13"))
	require.True(t, utils.IsKind(err, utils.KindConflict))
	require.Contains(t, err.Error(), "maintenance")
	require.Zero(t, f.bookings.Len())
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		edit func(r *models.BookingRequest)
		kind utils.ErrorKind
	}{
		{"end before start", func(r *models.BookingRequest) { r.End = "2025-08-30" }, utils.KindValidation},
		{"zero nights", func(r *models.BookingRequest) { r.End = r.Start }, utils.KindValidation},
		{"bad date", func(r *models.BookingRequest) { r.Start = "2025-13-01" }, utils.KindValidation},
		{"bad email", func(r *models.BookingRequest) { r.Email = "nope" }, utils.KindValidation},
		{"party over capacity", func(r *models.BookingRequest) { r.PartySize = 5 }, utils.KindValidation},
		{"party too large", func(r *models.BookingRequest) { r.PartySize = 6 }, utils.KindValidation},
		{"unknown unit", func(r *models.BookingRequest) { r.UnitID = "nope" }, utils.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request("2025-09-01", "2025-09-04")
			tt.edit(&req)
			_, err := f.svc.CreateBooking(ctx, req)
			require.Error(t, err)
			require.True(t, utils.IsKind(err, tt.kind), "got %v", err)
		})
	}
	require.Zero(t, f.bookings.Len())
}

func TestConcurrentCreatesNeverDoubleBook(t *testing.T) {
	f := newFixture(t)
	f.bookings.CreateDelay = 2 * time.Millisecond

	const workers = 50
	var (
		wg        sync.WaitGroup
		successes = make(chan *models.Booking, workers)
		failures  = make(chan error, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := f.svc.CreateBooking(context.Background(), request("2025-11-01", "2025-11-05"))
			if err != nil {
				failures <- err
				return
			}
			successes <- b
		}()
	}
	wg.Wait()
	close(successes)
	close(failures)

	require.Len(t, successes, 1)
	require.Len(t, failures, workers-1)
	for err := range failures {
		require.True(t, utils.IsKind(err, utils.KindConflict), "got %v", err)
	}
	require.Equal(t, 1, f.bookings.Len())
}

func TestCodeGeneratorAvoidsTakenCodes(t *testing.T) {
	used := map[string]bool{}
	var mu sync.Mutex
	exists := func(_ context.Context, code string) (bool, error) {
		mu.Lock()
		defer mu.Unlock()
		return used[code], nil
	}
	gen := NewCodeGenerator("MDP", 20, exists)

	for i := 0; i < 900; i++ {
		code, err := gen.Generate(context.Background())
		require.NoError(t, err)
		used[code] = true
	}
	require.Len(t, used, 900)

	fresh := map[string]bool{}
	for i := 0; i < 1000; i++ {
		code, err := gen.Generate(context.Background())
		require.NoError(t, err)
		require.Regexp(t, codePattern, code)
		require.False(t, used[code])
		require.False(t, fresh[code])
		fresh[code] = true
		used[code] = true
	}
}

func TestCodeGeneratorGivesUp(t *testing.T) {
	calls := 0
	gen := NewCodeGenerator("MDP", 20, func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	})
	_, err := gen.Generate(context.Background())
	require.True(t, utils.IsKind(err, utils.KindConflict))
	require.Equal(t, 20, calls)
}

func TestCodeExhaustionFailsBooking(t *testing.T) {
	f := newFixture(t)
	f.svc.Codes = NewCodeGenerator("MDP", 3, func(context.Context, string) (bool, error) { return true, nil })

	_, err := f.svc.CreateBooking(context.Background(), request("2025-09-01", "2025-09-04"))
	require.True(t, utils.IsKind(err, utils.KindConflict))
	require.Zero(t, f.bookings.Len())
	require.Empty(t, f.notified)
}

func TestNotificationFailureKeepsBooking(t *testing.T) {
	f := newFixture(t)
	f.svc.Notifier = notifierFunc(func(context.Context, models.BookingNotification) error {
		return errors.New("smtp down")
	})

	b, err := f.svc.CreateBooking(context.Background(), request("2025-09-01", "2025-09-04"))
	require.NoError(t, err)
	stored, err := f.svc.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	require.Equal(t, b.Code, stored.Code)
}

func TestAdminCreateBookingCreatesGuestAccount(t *testing.T) {
	f := newFixture(t)
	total := 500.0
	req := models.AdminBookingRequest{
		BookingRequest: request("2025-09-01", "2025-09-04"),
		TotalPrice:     &total,
	}
	req.Note = "[airbnb] late arrival"

	b, err := f.svc.AdminCreateBooking(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, models.StatusConfirmed, b.Status)
	require.Equal(t, 500.0, b.TotalPrice)
	require.NotEmpty(t, b.GuestID)

	guest, err := f.guests.GetByEmail(context.Background(), "anna@example.com")
	require.NoError(t, err)
	require.Equal(t, b.GuestID, guest.ID)
	require.Equal(t, b.Code, guest.BookingCode)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(guest.PasswordHash), []byte(b.Code)))

	stored, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	require.Equal(t, guest.ID, stored.GuestID)

	require.Len(t, f.notified, 1)
	require.Equal(t, createdByAdmin, f.notified[0].CreatedBy)
	require.Equal(t, "airbnb", f.notified[0].Source)
}

func TestAdminCreateBookingReusesGuest(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.guests.Create(context.Background(), &models.Guest{ID: "G1", Email: "anna@example.com"}))

	req := models.AdminBookingRequest{BookingRequest: request("2025-09-01", "2025-09-04"), Status: models.StatusPending}
	b, err := f.svc.AdminCreateBooking(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "G1", b.GuestID)
	require.Equal(t, models.StatusPending, b.Status)
	require.Equal(t, 270.0, b.TotalPrice)

	g, err := f.guests.GetByID(context.Background(), "G1")
	require.NoError(t, err)
	require.Equal(t, b.Code, g.BookingCode)

	req.GuestID = "missing"
	req.Start, req.End = "2025-12-01", "2025-12-03"
	_, err = f.svc.AdminCreateBooking(context.Background(), req)
	require.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to models.BookingStatus
		ok       bool
	}{
		{models.StatusPending, models.StatusConfirmed, true},
		{models.StatusPending, models.StatusCancelled, true},
		{models.StatusConfirmed, models.StatusCompleted, true},
		{models.StatusConfirmed, models.StatusCancelled, true},
		{models.StatusConfirmed, models.StatusConfirmed, true},
		{models.StatusPending, models.StatusCompleted, false},
		{models.StatusCancelled, models.StatusConfirmed, false},
		{models.StatusCompleted, models.StatusPending, false},
		{models.StatusConfirmed, models.StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.bookings.Create(context.Background(), &models.Booking{
				ID: "BK1", UnitID: "U1", Code: "MDP-AAAAAA", Status: tt.from,
				DateRange: models.DateRange{Start: "2025-09-01", End: "2025-09-03"},
			}))

			b, err := f.svc.UpdateBookingStatus(context.Background(), "BK1", tt.to)
			if tt.ok {
				require.NoError(t, err)
				require.Equal(t, tt.to, b.Status)
				return
			}
			require.True(t, utils.IsKind(err, utils.KindConflict), "got %v", err)
			stored, _ := f.bookings.GetByID(context.Background(), "BK1")
			require.Equal(t, tt.from, stored.Status)
		})
	}
}

func TestCancelledBookingReleasesDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, request("2025-09-01", "2025-09-04"))
	require.NoError(t, err)

	_, err = f.svc.UpdateBookingStatus(ctx, b.ID, models.StatusCancelled)
	require.NoError(t, err)

	avail, err := f.svc.CheckAvailability(ctx, "U1", "2025-09-01", "2025-09-04")
	require.NoError(t, err)
	require.True(t, avail.Available)
	require.NotNil(t, avail.Price)
	require.Equal(t, 270.0, avail.Price.Total)
}

func TestUpdateBookingDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.svc.CreateBooking(ctx, request("2025-09-01", "2025-09-04"))
	require.NoError(t, err)
	_, err = f.svc.CreateBooking(ctx, request("2025-09-10", "2025-09-12"))
	require.NoError(t, err)

	// Shifting within its own dates does not conflict with itself.
	end := "2025-09-05"
	b, err := f.svc.UpdateBooking(ctx, first.ID, models.BookingUpdate{End: &end})
	require.NoError(t, err)
	require.Equal(t, 4, b.Nights())
	require.Equal(t, 360.0, b.TotalPrice)

	end = "2025-09-11"
	_, err = f.svc.UpdateBooking(ctx, first.ID, models.BookingUpdate{End: &end})
	require.True(t, utils.IsKind(err, utils.KindConflict))

	stored, err := f.svc.GetBooking(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, "2025-09-05", stored.End)

	total := 99.0
	name := "Anna Bianchi"
	b, err = f.svc.UpdateBooking(ctx, first.ID, models.BookingUpdate{TotalPrice: &total, GuestName: &name})
	require.NoError(t, err)
	require.Equal(t, 99.0, b.TotalPrice)
	require.Equal(t, "Anna Bianchi", b.GuestInfo.Name)
}

func TestDeleteBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, request("2025-09-01", "2025-09-04"))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteBooking(ctx, b.ID))
	_, err = f.svc.GetBooking(ctx, b.ID)
	require.True(t, utils.IsKind(err, utils.KindNotFound))
	require.True(t, utils.IsKind(f.svc.DeleteBooking(ctx, b.ID), utils.KindNotFound))
}

// pausedReads parks the first GetByID after arm, holding the copy it read,
// until release is closed.
type pausedReads struct {
	*repotest.Bookings

	mu      sync.Mutex
	armed   bool
	reached chan struct{}
	release chan struct{}
}

func (p *pausedReads) arm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.armed = true
	p.reached = make(chan struct{})
	p.release = make(chan struct{})
}

func (p *pausedReads) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	b, err := p.Bookings.GetByID(ctx, id)
	p.mu.Lock()
	pause := p.armed
	p.armed = false
	p.mu.Unlock()
	if pause {
		close(p.reached)
		<-p.release
	}
	return b, err
}

func TestEditsDoNotWriteBackStaleDates(t *testing.T) {
	note := "late check-in"
	tests := []struct {
		name string
		edit func(svc *DefaultBookingService, id string) error
	}{
		{"status change", func(svc *DefaultBookingService, id string) error {
			_, err := svc.UpdateBookingStatus(context.Background(), id, models.StatusConfirmed)
			return err
		}},
		{"note edit", func(svc *DefaultBookingService, id string) error {
			_, err := svc.UpdateBooking(context.Background(), id, models.BookingUpdate{Note: &note})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			reads := &pausedReads{Bookings: f.bookings}
			f.svc.Bookings = reads
			ctx := context.Background()

			first, err := f.svc.CreateBooking(ctx, request("2025-07-01", "2025-07-05"))
			require.NoError(t, err)

			reads.arm()
			done := make(chan error, 1)
			go func() { done <- tt.edit(f.svc, first.ID) }()
			<-reads.reached

			// While the edit holds a July copy, move the booking to August
			// and let a second guest take July.
			start, end := "2025-08-01", "2025-08-05"
			_, err = f.svc.UpdateBooking(ctx, first.ID, models.BookingUpdate{Start: &start, End: &end})
			require.NoError(t, err)
			_, err = f.svc.CreateBooking(ctx, request("2025-07-01", "2025-07-05"))
			require.NoError(t, err)

			close(reads.release)
			require.NoError(t, <-done)

			july := models.DateRange{Start: "2025-07-01", End: "2025-07-05"}
			overlapping, err := f.bookings.FindOverlapping(ctx, "U1", july, "")
			require.NoError(t, err)
			require.Len(t, overlapping, 1)

			stored, err := f.bookings.GetByID(ctx, first.ID)
			require.NoError(t, err)
			require.Equal(t, "2025-08-01", stored.Start)
			require.Equal(t, "2025-08-05", stored.End)
		})
	}
}

func TestAdminCreateBookingFillsDetailsFromGuest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.guests.Create(ctx, &models.Guest{
		ID: "G2", Name: "Marco Neri", Email: "marco@example.com", Phone: "+39 333 1234567",
	}))

	req := models.AdminBookingRequest{
		BookingRequest: models.BookingRequest{UnitID: "U1", Start: "2025-09-01", End: "2025-09-04", PartySize: 2},
		GuestID:        "G2",
	}
	b, err := f.svc.AdminCreateBooking(ctx, req)
	require.NoError(t, err)
	require.Equal(t, "G2", b.GuestID)
	require.Equal(t, "Marco Neri", b.GuestInfo.Name)
	require.Equal(t, "marco@example.com", b.GuestInfo.Email)
	require.Equal(t, "+39 333 1234567", b.GuestInfo.Phone)

	g, err := f.guests.GetByID(ctx, "G2")
	require.NoError(t, err)
	require.Equal(t, b.Code, g.BookingCode)
}

func TestCheckAvailabilityHidesInactiveUnits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.units.Create(ctx, &models.Unit{ID: "U2", Name: "Casa Chiusa", BasePrice: 80, MaxOccupancy: 2}))

	_, err := f.svc.CheckAvailability(ctx, "U2", "2025-09-01", "2025-09-04")
	require.True(t, utils.IsKind(err, utils.KindNotFound), "got %v", err)
}
