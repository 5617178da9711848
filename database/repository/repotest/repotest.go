// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"maisonette/database/repository"
	blockedRepo "maisonette/database/repository/blocked"
	bookingRepo "maisonette/database/repository/booking"
	feedRepo "maisonette/database/repository/feed"
	guestRepo "maisonette/database/repository/guest"
	ratesRepo "maisonette/database/repository/rates"
	unitRepo "maisonette/database/repository/unit"
	"maisonette/models"
)

var (
	_ unitRepo.UnitRepository       = (*Units)(nil)
	_ bookingRepo.BookingRepository = (*Bookings)(nil)
	_ blockedRepo.BlockRepository   = (*Blocks)(nil)
	_ ratesRepo.RatesRepository     = (*Rates)(nil)
	_ feedRepo.FeedRepository       = (*Feeds)(nil)
	_ guestRepo.GuestRepository     = (*Guests)(nil)
)

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, repository.ErrNotFound)
}

// Units is an in-memory UnitRepository.
type Units struct {
	mu    sync.Mutex
	units map[string]models.Unit
}

func NewUnits(units ...models.Unit) *Units {
	r := &Units{units: map[string]models.Unit{}}
	for _, u := range units {
		r.units[u.ID] = u
	}
	return r
}

func (r *Units) Create(_ context.Context, unit *models.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.units[unit.ID]; ok {
		return repository.ErrDuplicate
	}
	r.units[unit.ID] = *unit
	return nil
}

func (r *Units) GetByID(_ context.Context, id string) (*models.Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[id]
	if !ok {
		return nil, notFound("unit", id)
	}
	return &u, nil
}

func (r *Units) List(_ context.Context, activeOnly bool) ([]models.Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Unit{}
	for _, u := range r.units {
		if activeOnly && !u.Active {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Units) Update(_ context.Context, unit *models.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.units[unit.ID]; !ok {
		return notFound("unit", unit.ID)
	}
	r.units[unit.ID] = *unit
	return nil
}

func (r *Units) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.units[id]; !ok {
		return notFound("unit", id)
	}
	delete(r.units, id)
	return nil
}

// Bookings is an in-memory BookingRepository.
type Bookings struct {
	mu       sync.Mutex
	bookings []models.Booking

	// CreateDelay widens the window between a caller's availability check
	// and the insert, to expose missing locking.
	CreateDelay time.Duration
}

func NewBookings(bookings ...models.Booking) *Bookings {
	return &Bookings{bookings: append([]models.Booking(nil), bookings...)}
}

func (r *Bookings) Create(_ context.Context, booking *models.Booking) error {
	if r.CreateDelay > 0 {
		time.Sleep(r.CreateDelay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == booking.ID || b.Code == booking.Code {
			return repository.ErrDuplicate
		}
	}
	r.bookings = append(r.bookings, *booking)
	return nil
}

func (r *Bookings) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, notFound("booking", id)
}

func (r *Bookings) List(_ context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Booking{}
	for _, b := range r.bookings {
		if filter.UnitID != "" && b.UnitID != filter.UnitID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, b.Status) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *Bookings) FindOverlapping(_ context.Context, unitID string, dr models.DateRange, excludeID string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Booking{}
	for _, b := range r.bookings {
		if b.UnitID == unitID && b.Status.Occupying() && b.ID != excludeID && b.DateRange.Overlaps(dr) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *Bookings) CountOccupying(_ context.Context, unitID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if b.UnitID == unitID && b.Status.Occupying() {
			n++
		}
	}
	return n, nil
}

func (r *Bookings) CodeExists(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *Bookings) Update(_ context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, b := range r.bookings {
		if b.ID == booking.ID {
			r.bookings[i] = *booking
			return nil
		}
	}
	return notFound("booking", booking.ID)
}

func (r *Bookings) SetGuestID(_ context.Context, id, guestID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, b := range r.bookings {
		if b.ID == id {
			r.bookings[i].GuestID = guestID
			r.bookings[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return notFound("booking", id)
}

func (r *Bookings) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, b := range r.bookings {
		if b.ID == id {
			r.bookings = append(r.bookings[:i], r.bookings[i+1:]...)
			return nil
		}
	}
	return notFound("booking", id)
}

// Len returns the number of stored bookings.
func (r *Bookings) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

func containsStatus(list []models.BookingStatus, s models.BookingStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Blocks is an in-memory BlockRepository.
type Blocks struct {
	mu     sync.Mutex
	blocks []models.DateBlock
}

func NewBlocks(blocks ...models.DateBlock) *Blocks {
	return &Blocks{blocks: append([]models.DateBlock(nil), blocks...)}
}

func (r *Blocks) Create(_ context.Context, block *models.DateBlock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks = append(r.blocks, *block)
	return nil
}

func (r *Blocks) GetByID(_ context.Context, id string) (*models.DateBlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.blocks {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, notFound("date block", id)
}

func (r *Blocks) ListByUnit(_ context.Context, unitID string) ([]models.DateBlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.DateBlock{}
	for _, b := range r.blocks {
		if b.UnitID == unitID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *Blocks) FindOverlapping(_ context.Context, unitID string, dr models.DateRange) ([]models.DateBlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.DateBlock{}
	for _, b := range r.blocks {
		if b.UnitID == unitID && b.DateRange.Overlaps(dr) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *Blocks) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, b := range r.blocks {
		if b.ID == id {
			r.blocks = append(r.blocks[:i], r.blocks[i+1:]...)
			return nil
		}
	}
	return notFound("date block", id)
}

func (r *Blocks) ReplaceFeedBlocks(ctx context.Context, feedID string, blocks []models.DateBlock) (int, error) {
	if _, err := r.DeleteByFeed(ctx, feedID); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range blocks {
		b.FeedID = feedID
		r.blocks = append(r.blocks, b)
	}
	return len(blocks), nil
}

func (r *Blocks) DeleteByFeed(_ context.Context, feedID string) (int64, error) {
	return r.deleteWhere(func(b models.DateBlock) bool { return b.FeedID == feedID }), nil
}

func (r *Blocks) DeleteByUnit(_ context.Context, unitID string) (int64, error) {
	return r.deleteWhere(func(b models.DateBlock) bool { return b.UnitID == unitID }), nil
}

func (r *Blocks) deleteWhere(match func(models.DateBlock) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.blocks[:0]
	var n int64
	for _, b := range r.blocks {
		if match(b) {
			n++
			continue
		}
		kept = append(kept, b)
	}
	r.blocks = kept
	return n
}

// All returns a copy of every stored block.
func (r *Blocks) All() []models.DateBlock {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.DateBlock(nil), r.blocks...)
}

// Rates is an in-memory RatesRepository keeping insertion order.
type Rates struct {
	mu        sync.Mutex
	periods   []models.RatePeriod
	discounts []models.LongStayDiscount
	settings  *models.PricingSettings
}

func NewRates() *Rates {
	return &Rates{}
}

func (r *Rates) CreatePeriod(_ context.Context, p *models.RatePeriod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.periods = append(r.periods, *p)
	return nil
}

func (r *Rates) GetPeriod(_ context.Context, id string) (*models.RatePeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.periods {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, notFound("rate period", id)
}

func (r *Rates) ListPeriods(_ context.Context, unitID string) ([]models.RatePeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.RatePeriod{}
	for _, p := range r.periods {
		if p.UnitID == unitID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *Rates) UpdatePeriod(_ context.Context, p *models.RatePeriod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.periods {
		if r.periods[i].ID == p.ID {
			r.periods[i] = *p
			return nil
		}
	}
	return notFound("rate period", p.ID)
}

func (r *Rates) DeletePeriod(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.periods {
		if p.ID == id {
			r.periods = append(r.periods[:i], r.periods[i+1:]...)
			return nil
		}
	}
	return notFound("rate period", id)
}

func (r *Rates) CreateDiscount(_ context.Context, d *models.LongStayDiscount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discounts = append(r.discounts, *d)
	return nil
}

func (r *Rates) ListDiscounts(_ context.Context, unitID string) ([]models.LongStayDiscount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.LongStayDiscount{}
	for _, d := range r.discounts {
		if d.UnitID == unitID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *Rates) DeleteDiscount(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range r.discounts {
		if d.ID == id {
			r.discounts = append(r.discounts[:i], r.discounts[i+1:]...)
			return nil
		}
	}
	return notFound("discount", id)
}

func (r *Rates) DeleteByUnit(_ context.Context, unitID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	periods := r.periods[:0]
	for _, p := range r.periods {
		if p.UnitID != unitID {
			periods = append(periods, p)
		}
	}
	r.periods = periods
	discounts := r.discounts[:0]
	for _, d := range r.discounts {
		if d.UnitID != unitID {
			discounts = append(discounts, d)
		}
	}
	r.discounts = discounts
	return nil
}

func (r *Rates) GetSettings(_ context.Context) (*models.PricingSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		return nil, notFound("pricing settings", models.PricingSettingsID)
	}
	s := *r.settings
	return &s, nil
}

func (r *Rates) SaveSettings(_ context.Context, s *models.PricingSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	cp.ID = models.PricingSettingsID
	r.settings = &cp
	return nil
}

// Feeds is an in-memory FeedRepository.
type Feeds struct {
	mu    sync.Mutex
	feeds []models.CalendarFeed
}

func NewFeeds(feeds ...models.CalendarFeed) *Feeds {
	return &Feeds{feeds: append([]models.CalendarFeed(nil), feeds...)}
}

func (r *Feeds) Create(_ context.Context, feed *models.CalendarFeed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feeds = append(r.feeds, *feed)
	return nil
}

func (r *Feeds) GetByID(_ context.Context, id string) (*models.CalendarFeed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.feeds {
		if f.ID == id {
			return &f, nil
		}
	}
	return nil, notFound("feed", id)
}

func (r *Feeds) List(_ context.Context, filter models.FeedFilter) ([]models.CalendarFeed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.CalendarFeed{}
	for _, f := range r.feeds {
		if filter.UnitID != "" && f.UnitID != filter.UnitID {
			continue
		}
		if filter.FeedID != "" && f.ID != filter.FeedID {
			continue
		}
		if filter.ActiveOnly && !f.Active {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (r *Feeds) Update(_ context.Context, feed *models.CalendarFeed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.feeds {
		if r.feeds[i].ID == feed.ID {
			r.feeds[i] = *feed
			return nil
		}
	}
	return notFound("feed", feed.ID)
}

func (r *Feeds) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range r.feeds {
		if f.ID == id {
			r.feeds = append(r.feeds[:i], r.feeds[i+1:]...)
			return nil
		}
	}
	return notFound("feed", id)
}

func (r *Feeds) RecordSync(_ context.Context, id string, at time.Time, imported int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.feeds {
		if r.feeds[i].ID == id {
			t := at
			r.feeds[i].LastSyncedAt = &t
			r.feeds[i].EventsImported = imported
			return nil
		}
	}
	return notFound("feed", id)
}

// Guests is an in-memory GuestRepository.
type Guests struct {
	mu     sync.Mutex
	guests map[string]models.Guest
}

func NewGuests(guests ...models.Guest) *Guests {
	r := &Guests{guests: map[string]models.Guest{}}
	for _, g := range guests {
		r.guests[g.ID] = g
	}
	return r
}

func (r *Guests) Create(_ context.Context, guest *models.Guest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	guest.Email = strings.ToLower(guest.Email)
	for _, g := range r.guests {
		if g.Email == guest.Email {
			return repository.ErrDuplicate
		}
	}
	r.guests[guest.ID] = *guest
	return nil
}

func (r *Guests) GetByID(_ context.Context, id string) (*models.Guest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.guests[id]
	if !ok {
		return nil, notFound("guest", id)
	}
	return &g, nil
}

func (r *Guests) GetByEmail(_ context.Context, email string) (*models.Guest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.guests {
		if g.Email == strings.ToLower(email) {
			return &g, nil
		}
	}
	return nil, notFound("guest", email)
}

func (r *Guests) SetBookingCode(_ context.Context, id, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.guests[id]
	if !ok {
		return notFound("guest", id)
	}
	g.BookingCode = code
	r.guests[id] = g
	return nil
}
