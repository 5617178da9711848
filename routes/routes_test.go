package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"maisonette/database/repository/repotest"
	"maisonette/handlers"
	"maisonette/middleware"
	"maisonette/models"
	"maisonette/services/booking"
	"maisonette/services/calendar"
	"maisonette/services/feed"
	"maisonette/services/pricing"
	"maisonette/services/unit"
	"maisonette/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type fetcherFunc func(ctx context.Context, url string) (string, error)

func (f fetcherFunc) Fetch(ctx context.Context, url string) (string, error) { return f(ctx, url) }

func newTestRouter(t *testing.T, limiter *middleware.RateLimiterStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	units := repotest.NewUnits(models.Unit{ID: "U1", Name: "Casa Mare", BasePrice: 90, MaxOccupancy: 4, Active: true})
	bookings := repotest.NewBookings()
	blocks := repotest.NewBlocks()
	rates := repotest.NewRates()
	feeds := repotest.NewFeeds()
	guests := repotest.NewGuests()

	store := calendar.NewStore(bookings, blocks)
	locker := calendar.NewMemoryUnitLocker()
	periods := pricing.NewPeriodStrategy(units, rates)
	settings := pricing.NewSettingsService(rates, logger)

	bookingSvc := &booking.DefaultBookingService{
		Units: units, Bookings: bookings, Guests: guests,
		Checker: calendar.NewChecker(store), Pricing: periods, Locker: locker,
		Codes:  booking.NewCodeGenerator("MDP", 20, bookings.CodeExists),
		Logger: logger,
	}
	unitSvc := &unit.DefaultUnitService{
		Units: units, Bookings: bookings, Blocks: blocks, Rates: rates, Feeds: feeds,
		Store: store, Locker: locker, Logger: logger,
	}
	feedSvc := &feed.DefaultFeedService{
		Units: units, Feeds: feeds, Blocks: blocks, Store: store, Locker: locker,
		Fetcher:       fetcherFunc(func(context.Context, string) (string, error) { return "", nil }),
		Logger:        logger,
		PublicBaseURL: "https://maisonette.example",
	}

	hb := &handlers.HandlerBundle{
		Units:    handlers.NewUnitHandler(unitSvc, logger),
		Bookings: handlers.NewBookingHandler(bookingSvc, logger),
		Feeds:    handlers.NewFeedHandler(feedSvc, logger),
		Pricing:  handlers.NewPricingHandler(periods, pricing.NewSettingsStrategy(settings), settings, logger),
	}
	r := gin.New()
	RegisterRoutes(r, hb, Options{JWTSecret: testSecret, Limiter: limiter, Logger: logger})
	return r
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := utils.GenerateAdminToken(testSecret, "admin@maisonette", time.Hour)
	require.NoError(t, err)
	return token
}

func do(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bookingBody(start, end string) map[string]interface{} {
	return map[string]interface{}{
		"unit_id":     "U1",
		"start":       start,
		"end":         end,
		"party_size":  2,
		"guest_name":  "Anna Rossi",
		"guest_email": "anna@example.com",
	}
}

func TestGuestBookingFlow(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/api/bookings/check-availability?unit_id=U1&start=2025-09-01&end=2025-09-04", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var avail models.Availability
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &avail))
	require.True(t, avail.Available)
	require.Equal(t, 270.0, avail.Price.Total)

	w = do(r, http.MethodPost, "/api/bookings", bookingBody("2025-09-01", "2025-09-04"), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, models.StatusPending, created.Status)
	require.Equal(t, 270.0, created.TotalPrice)

	w = do(r, http.MethodPost, "/api/bookings", bookingBody("2025-09-03", "2025-09-05"), "")
	require.Equal(t, http.StatusConflict, w.Code)
	var errResp utils.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	require.Contains(t, errResp.Message, calendar.ReasonBooked)

	w = do(r, http.MethodGet, "/api/bookings/check-availability?unit_id=U1&start=2025-09-03&end=2025-09-05", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var taken models.Availability
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &taken))
	require.False(t, taken.Available)
	require.Nil(t, taken.Price)
}

func TestUnitCalendarHidesGuestDetails(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/api/bookings", bookingBody("2025-09-01", "2025-09-04"), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(r, http.MethodGet, "/api/units/U1/availability", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	require.NotContains(t, body, created.Code)
	require.NotContains(t, body, "anna@example.com")
	require.NotContains(t, body, "Anna Rossi")

	var cal models.UnitCalendar
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cal))
	require.Len(t, cal.Bookings, 1)
	require.Equal(t, created.ID, cal.Bookings[0].ID)
	require.Equal(t, "2025-09-01", cal.Bookings[0].Start)
	require.Equal(t, models.StatusPending, cal.Bookings[0].Status)
}

func TestErrorMapping(t *testing.T) {
	r := newTestRouter(t, nil)
	token := adminToken(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		token  string
		status int
	}{
		{"bad range", http.MethodPost, "/api/bookings", bookingBody("2025-09-04", "2025-09-01"), "", http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/api/bookings", "nope", "", http.StatusBadRequest},
		{"unknown unit", http.MethodGet, "/api/units/nope", nil, "", http.StatusNotFound},
		{"unknown booking", http.MethodGet, "/api/admin/bookings/nope", nil, token, http.StatusNotFound},
		{"missing token", http.MethodGet, "/api/admin/bookings", nil, "", http.StatusUnauthorized},
		{"wrong token", http.MethodGet, "/api/admin/bookings", nil, "garbage", http.StatusUnauthorized},
		{"bad status filter", http.MethodGet, "/api/admin/bookings?status=archived", nil, token, http.StatusBadRequest},
		{"bad feed url", http.MethodPost, "/api/admin/ical/feeds", map[string]interface{}{"unit_id": "U1", "name": "X", "url": "ftp://x.example/a.ics"}, token, http.StatusBadRequest},
		{"export without suffix", http.MethodGet, "/api/ical/U1", nil, "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, tt.path, tt.body, tt.token)
			require.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestAdminStatusAndDelete(t *testing.T) {
	r := newTestRouter(t, nil)
	token := adminToken(t)

	w := do(r, http.MethodPost, "/api/admin/bookings", bookingBody("2025-09-01", "2025-09-04"), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var b models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	require.Equal(t, models.StatusConfirmed, b.Status)

	w = do(r, http.MethodPut, "/api/admin/bookings/"+b.ID+"/status", map[string]string{"status": "pending"}, token)
	require.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPut, "/api/admin/bookings/"+b.ID+"/status", map[string]string{"status": "completed"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodDelete, "/api/admin/units/U1", nil, token)
	require.Equal(t, http.StatusOK, w.Code, "completed bookings do not hold the unit")

	w = do(r, http.MethodDelete, "/api/admin/bookings/"+b.ID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteUnitWithActiveBookingIsConflict(t *testing.T) {
	r := newTestRouter(t, nil)
	w := do(r, http.MethodPost, "/api/bookings", bookingBody("2025-09-01", "2025-09-04"), "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodDelete, "/api/admin/units/U1", nil, adminToken(t))
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestCalendarExport(t *testing.T) {
	r := newTestRouter(t, nil)
	w := do(r, http.MethodPost, "/api/bookings", bookingBody("2025-09-01", "2025-09-04"), "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodGet, "/api/ical/U1.ics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/calendar"))
	require.Equal(t, `attachment; filename="U1.ics"`, w.Header().Get("Content-Disposition"))
	require.Contains(t, w.Header().Get("Cache-Control"), "no-cache")
	require.Contains(t, w.Body.String(), "BEGIN:VCALENDAR")
	require.Contains(t, w.Body.String(), "SUMMARY:Booking - Anna Rossi")

	w = do(r, http.MethodGet, "/api/admin/ical/export-url/U1", nil, adminToken(t))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "https://maisonette.example/api/ical/U1.ics")
}

func TestPricingEndpoints(t *testing.T) {
	r := newTestRouter(t, nil)
	token := adminToken(t)

	w := do(r, http.MethodGet, "/api/units/U1/price?start=2025-09-01&end=2025-09-04&guests=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var q models.PriceQuote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	require.Equal(t, 270.0, q.Total)

	w = do(r, http.MethodGet, "/api/units/U1/price?start=2025-09-01&end=2025-09-04&guests=zero", nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/admin/pricing/settings", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/api/admin/pricing/calculate", map[string]interface{}{"start": "2025-07-05", "end": "2025-07-08", "guests": 4}, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	require.Equal(t, 600.0, q.Total)
}

func TestRateLimit(t *testing.T) {
	r := newTestRouter(t, middleware.NewRateLimiterStore(2))
	require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/units", nil, "").Code)
	require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/units", nil, "").Code)
	require.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/api/units", nil, "").Code)
}

func TestRateLimitIgnoresUntrustedForwardedFor(t *testing.T) {
	r := newTestRouter(t, middleware.NewRateLimiterStore(2))

	codes := make([]int, 0, 3)
	for _, forwarded := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/units", nil)
		req.Header.Set("X-Forwarded-For", forwarded)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
