package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// TrustedProxies is a comma separated list of proxy IPs or CIDRs.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Unit calendar locking.
	UnitLockBackend string        `mapstructure:"UNIT_LOCK_BACKEND"`
	UnitLockTTL     time.Duration `mapstructure:"UNIT_LOCK_TTL"`

	// Calendar feeds.
	FeedFetchTimeout  time.Duration `mapstructure:"FEED_FETCH_TIMEOUT"`
	FeedFetchInterval time.Duration `mapstructure:"FEED_FETCH_INTERVAL"`
	FeedSyncCron      string        `mapstructure:"FEED_SYNC_CRON"`
	PublicBaseURL     string        `mapstructure:"PUBLIC_BASE_URL"`
	CalendarProductID string        `mapstructure:"CALENDAR_PRODUCT_ID"`

	// Booking codes.
	BookingCodePrefix   string `mapstructure:"BOOKING_CODE_PREFIX"`
	BookingCodeAttempts int    `mapstructure:"BOOKING_CODE_ATTEMPTS"`

	// Admin notifications.
	NotifyEmail             string `mapstructure:"NOTIFY_EMAIL"`
	SMTPHost                string `mapstructure:"SMTP_HOST"`
	SMTPPort                int    `mapstructure:"SMTP_PORT"`
	SMTPUser                string `mapstructure:"SMTP_USER"`
	SMTPPassword            string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom                string `mapstructure:"SMTP_FROM"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseAdminTopic      string `mapstructure:"FIREBASE_ADMIN_TOPIC"`
}

// LoadConfig reads config.yaml (current or ./config directory) overlaid by
// environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	// Automatically use environment variables where available.
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "maisonette")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("TRUSTED_PROXIES", []string{})

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_LOCK_DB", 1)
	v.SetDefault("REDIS_QUEUE_DB", 2)

	v.SetDefault("UNIT_LOCK_BACKEND", "memory")
	v.SetDefault("UNIT_LOCK_TTL", "15s")

	v.SetDefault("FEED_FETCH_TIMEOUT", "30s")
	v.SetDefault("FEED_FETCH_INTERVAL", "2s")
	v.SetDefault("FEED_SYNC_CRON", "")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("CALENDAR_PRODUCT_ID", "-//Maisonette//Booking Calendar//IT")

	v.SetDefault("BOOKING_CODE_PREFIX", "MDP")
	v.SetDefault("BOOKING_CODE_ATTEMPTS", 20)

	v.SetDefault("NOTIFY_EMAIL", "")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	v.SetDefault("FIREBASE_ADMIN_TOPIC", "admin-bookings")
}

// IsProduction reports whether the process runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// RedisLocksEnabled reports whether unit locks are shared through Redis.
func (c *Config) RedisLocksEnabled() bool {
	return c.UnitLockBackend == "redis"
}
