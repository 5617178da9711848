package routes

import (
	"net/http"
	"time"

	"maisonette/handlers"
	"maisonette/middleware"
	"maisonette/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options carries what route registration needs besides handlers.
type Options struct {
	JWTSecret string
	Limiter   *middleware.RateLimiterStore
	Logger    *zap.Logger

	// TrustedProxies lists the proxies whose X-Forwarded-For is believed.
	// Empty means client addresses come from the connection only.
	TrustedProxies []string
}

// RegisterPublicRoutes registers guest-facing endpoints.
func RegisterPublicRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.GET("/units", hb.Units.List)
		api.GET("/units/:unitID", hb.Units.Get)
		api.GET("/units/:unitID/availability", hb.Units.Calendar)
		api.GET("/units/:unitID/price", hb.Pricing.UnitQuote)

		api.GET("/bookings/check-availability", hb.Bookings.CheckAvailability)
		api.POST("/bookings", hb.Bookings.Create)

		// Subscribed to by booking platforms; no auth.
		api.GET("/ical/:file", hb.Feeds.Export)
	}
}

// RegisterAdminRoutes registers calendar, pricing and booking management.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	admin := r.Group("/api/admin")
	admin.Use(middleware.JWTAuthAdminMiddleware(opts.JWTSecret, opts.Logger))
	{
		admin.GET("/units", hb.Units.AdminList)
		admin.POST("/units", hb.Units.Create)
		admin.PUT("/units/:unitID", hb.Units.Update)
		admin.DELETE("/units/:unitID", hb.Units.Delete)
		admin.GET("/units/:unitID/pricing", hb.Units.GetPricing)
		admin.PUT("/units/:unitID/pricing", hb.Units.UpdatePricing)

		admin.GET("/units/:unitID/periods", hb.Units.ListPeriods)
		admin.POST("/periods", hb.Units.CreatePeriod)
		admin.PUT("/periods/:id", hb.Units.UpdatePeriod)
		admin.DELETE("/periods/:id", hb.Units.DeletePeriod)

		admin.GET("/units/:unitID/discounts", hb.Units.ListDiscounts)
		admin.POST("/discounts", hb.Units.CreateDiscount)
		admin.DELETE("/discounts/:id", hb.Units.DeleteDiscount)

		admin.GET("/units/:unitID/blocks", hb.Units.ListBlocks)
		admin.POST("/blocks", hb.Units.CreateBlock)
		admin.DELETE("/blocks/:id", hb.Units.DeleteBlock)

		admin.GET("/bookings", hb.Bookings.AdminList)
		admin.POST("/bookings", hb.Bookings.AdminCreate)
		admin.GET("/bookings/:id", hb.Bookings.AdminGet)
		admin.PUT("/bookings/:id", hb.Bookings.AdminUpdate)
		admin.PUT("/bookings/:id/status", hb.Bookings.AdminUpdateStatus)
		admin.DELETE("/bookings/:id", hb.Bookings.AdminDelete)

		admin.GET("/ical/feeds", hb.Feeds.List)
		admin.POST("/ical/feeds", hb.Feeds.Create)
		admin.PUT("/ical/feeds/:id", hb.Feeds.Update)
		admin.DELETE("/ical/feeds/:id", hb.Feeds.Delete)
		admin.POST("/ical/sync", hb.Feeds.Sync)
		admin.GET("/ical/export-url/:unitID", hb.Feeds.ExportURL)

		admin.GET("/pricing/settings", hb.Pricing.GetSettings)
		admin.PUT("/pricing/settings", hb.Pricing.UpdateSettings)
		admin.POST("/pricing/calculate", hb.Pricing.Calculate)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.Health == nil {
		r.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		return
	}
	r.GET("/health", hb.Health.Health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		opts.Logger.Warn("invalid trusted proxies, trusting none", zap.Strings("proxies", opts.TrustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(utils.ErrorHandler(opts.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}))
	if opts.Limiter != nil {
		r.Use(middleware.RateLimitMiddleware(opts.Limiter, opts.Logger))
	}

	RegisterHealthRoute(r, hb)
	RegisterPublicRoutes(r, hb)
	RegisterAdminRoutes(r, hb, opts)
}
