package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maisonette/config"
	"maisonette/cron"
	"maisonette/database"
	blockedRepo "maisonette/database/repository/blocked"
	bookingRepo "maisonette/database/repository/booking"
	feedRepo "maisonette/database/repository/feed"
	guestRepo "maisonette/database/repository/guest"
	ratesRepo "maisonette/database/repository/rates"
	unitRepo "maisonette/database/repository/unit"
	"maisonette/handlers"
	"maisonette/middleware"
	"maisonette/routes"
	"maisonette/services/booking"
	"maisonette/services/calendar"
	"maisonette/services/feed"
	"maisonette/services/ical"
	"maisonette/services/notification"
	"maisonette/services/pricing"
	"maisonette/services/unit"
	"maisonette/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger, err := utils.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// Storage.
	mongoClient, err := database.Connect(rootCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
	}
	db := mongoClient.Database(cfg.DatabaseName)

	units := unitRepo.NewMongoUnitRepo(db)
	bookings := bookingRepo.NewMongoBookingRepo(db)
	blocks := blockedRepo.NewMongoBlockRepo(db)
	rates := ratesRepo.NewMongoRatesRepo(db)
	feeds := feedRepo.NewMongoFeedRepo(db)
	guests := guestRepo.NewMongoGuestRepo(db)

	for name, repo := range map[string]interface {
		EnsureIndexes(ctx context.Context) error
	}{"units": units, "bookings": bookings, "blocks": blocks, "rates": rates, "feeds": feeds, "guests": guests} {
		if err := repo.EnsureIndexes(rootCtx); err != nil {
			logger.Fatal("main: failed to create indexes", zap.String("collection", name), zap.Error(err))
		}
	}

	// Unit locks.
	var redisClients []*redis.Client
	var locker calendar.UnitLocker = calendar.NewMemoryUnitLocker()
	if cfg.RedisLocksEnabled() {
		lockClient, err := utils.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisLockDB)
		if err != nil {
			logger.Fatal("main: redis unit locks requested but redis is unreachable", zap.Error(err))
		}
		redisClients = append(redisClients, lockClient)
		locker = calendar.NewRedisUnitLocker(lockClient, cfg.UnitLockTTL, logger)
		logger.Info("main: using redis unit locks")
	}

	// Notifications: queued through asynq when redis answers, inline otherwise.
	dispatcher := buildDispatcher(rootCtx, cfg, logger)
	var notifier notification.BookingNotifier = dispatcher
	var worker *cron.NotificationWorker
	if queueClient, err := utils.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisQueueDB); err != nil {
		logger.Warn("main: redis queue unavailable, notifications are sent inline", zap.Error(err))
	} else {
		redisClients = append(redisClients, queueClient)
		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisQueueDB}
		asynqClient := asynq.NewClient(redisOpts)
		defer asynqClient.Close()

		worker = cron.NewNotificationWorker(redisOpts, dispatcher, logger)
		if err := worker.Start(rootCtx); err != nil {
			logger.Warn("main: notification worker unavailable, notifications are sent inline", zap.Error(err))
			worker = nil
		} else {
			notifier = &notification.QueueNotifier{Client: asynqClient}
		}
	}

	// Services.
	store := calendar.NewStore(bookings, blocks)
	checker := calendar.NewChecker(store)
	periodPricing := pricing.NewPeriodStrategy(units, rates)
	settingsSvc := pricing.NewSettingsService(rates, logger)

	bookingService := &booking.DefaultBookingService{
		Units:         units,
		Bookings:      bookings,
		Guests:        guests,
		Checker:       checker,
		Pricing:       periodPricing,
		Locker:        locker,
		Codes:         booking.NewCodeGenerator(cfg.BookingCodePrefix, cfg.BookingCodeAttempts, bookings.CodeExists),
		Notifier:      notifier,
		Logger:        logger,
		NotifyTimeout: 10 * time.Second,
	}
	unitService := &unit.DefaultUnitService{
		Units:    units,
		Bookings: bookings,
		Blocks:   blocks,
		Rates:    rates,
		Feeds:    feeds,
		Store:    store,
		Locker:   locker,
		Logger:   logger,
	}
	feedService := &feed.DefaultFeedService{
		Units:         units,
		Feeds:         feeds,
		Blocks:        blocks,
		Store:         store,
		Locker:        locker,
		Fetcher:       ical.NewHTTPFetcher(cfg.FeedFetchTimeout, cfg.FeedFetchInterval),
		Logger:        logger,
		PublicBaseURL: cfg.PublicBaseURL,
		ProductID:     cfg.CalendarProductID,
	}

	// Background jobs.
	monitor := utils.NewHealthMonitor(mongoClient, redisClients, 30*time.Second)
	monitor.Start(rootCtx)

	if cfg.FeedSyncCron != "" {
		scheduler, err := feed.NewScheduler(cfg.FeedSyncCron, feedService, logger, 10*time.Minute)
		if err != nil {
			logger.Fatal("main: invalid FEED_SYNC_CRON", zap.Error(err))
		}
		go scheduler.Start(rootCtx)
	}

	// HTTP.
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())

	handlerBundle := &handlers.HandlerBundle{
		Units:    handlers.NewUnitHandler(unitService, logger),
		Bookings: handlers.NewBookingHandler(bookingService, logger),
		Feeds:    handlers.NewFeedHandler(feedService, logger),
		Pricing:  handlers.NewPricingHandler(periodPricing, pricing.NewSettingsStrategy(settingsSvc), settingsSvc, logger),
		Health:   handlers.NewHealthHandler(monitor),
	}
	routes.RegisterRoutes(router, handlerBundle, routes.Options{
		JWTSecret: cfg.JWTSecret,
		Limiter:   middleware.NewRateLimiterStore(cfg.MaxRequestsPerMin),
		Logger:    logger,

		TrustedProxies: cfg.TrustedProxies,
	})
	if cfg.JWTSecret == "" {
		logger.Warn("main: JWT_SECRET is empty, admin routes will reject every request")
	}

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.AppPort,
		Handler: router,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	if worker != nil {
		worker.Shutdown()
	}
	for _, c := range redisClients {
		_ = c.Close()
	}
	if err := mongoClient.Disconnect(ctx); err != nil {
		logger.Warn("main: mongo disconnect", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}

// buildDispatcher wires e-mail (SMTP or log) and, when credentials are
// configured, Firebase push to the admin topic.
func buildDispatcher(ctx context.Context, cfg *config.Config, logger *zap.Logger) *notification.Dispatcher {
	d := &notification.Dispatcher{
		AdminEmail: cfg.NotifyEmail,
		AdminTopic: cfg.FirebaseAdminTopic,
		Logger:     logger,
	}
	if cfg.SMTPHost != "" {
		d.Mailer = &notification.SMTPMailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}
	} else {
		d.Mailer = &notification.LogMailer{Logger: logger}
	}

	if cfg.FirebaseCredentialsFile != "" {
		client, err := notification.NewFCMClient(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Warn("main: firebase push disabled", zap.Error(err))
		} else {
			d.Push = &notification.FCMPushSender{Client: client}
		}
	}
	return d
}
