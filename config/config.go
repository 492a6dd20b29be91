package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Booking   BookingConfig
	Payment   PaymentConfig
	Kafka     KafkaConfig
	SlotCache SlotCacheConfig
}

type AppConfig struct {
	Port        string
	Env         string
	LogLevel    string
	CORSOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
	MaxIdle  int
	MaxOpen  int
}

// DSN returns the key/value DSN used by gorm's postgres driver.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode, c.TimeZone,
	)
}

// MigrationURL returns the URL understood by golang-migrate's pgx/v5 driver.
func (c DBConfig) MigrationURL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// BookingConfig holds clinic-wide scheduling defaults. Doctors created without
// explicit hours get DefaultStart..DefaultEnd.
type BookingConfig struct {
	Timezone     string
	Currency     string
	DefaultStart string // HH:MM
	DefaultEnd   string // HH:MM
	SlotMinutes  int
}

// Location loads the configured time zone, falling back to UTC.
func (c BookingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type PaymentConfig struct {
	StripeSecretKey     string
	StripeWebhookSecret string
	Timeout             time.Duration
}

type KafkaConfig struct {
	Brokers   string
	Topic     string
	PollEvery time.Duration
	BatchSize int
}

type SlotCacheConfig struct {
	TTL time.Duration
}

func LoadConfig() (*Config, error) {
	setDefaults()

	viper.AutomaticEnv()
	if _, err := os.Stat(".env"); err == nil {
		viper.SetConfigFile(".env")
		if err := viper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Port:        viper.GetString("APP_PORT"),
			Env:         viper.GetString("APP_ENV"),
			LogLevel:    viper.GetString("LOG_LEVEL"),
			CORSOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
			TimeZone: viper.GetString("DB_TIMEZONE"),
			MaxIdle:  viper.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpen:  viper.GetInt("DB_MAX_OPEN_CONNS"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  durationOr("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: durationOr("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Booking: BookingConfig{
			Timezone:     viper.GetString("BOOKING_TIMEZONE"),
			Currency:     viper.GetString("BOOKING_CURRENCY"),
			DefaultStart: viper.GetString("BOOKING_DEFAULT_START"),
			DefaultEnd:   viper.GetString("BOOKING_DEFAULT_END"),
			SlotMinutes:  viper.GetInt("BOOKING_SLOT_MINUTES"),
		},
		Payment: PaymentConfig{
			StripeSecretKey:     viper.GetString("STRIPE_SECRET_KEY"),
			StripeWebhookSecret: viper.GetString("STRIPE_WEBHOOK_SECRET"),
			Timeout:             durationOr("PAYMENT_TIMEOUT", 10*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:   viper.GetString("KAFKA_BROKERS"),
			Topic:     viper.GetString("KAFKA_TOPIC"),
			PollEvery: durationOr("OUTBOX_POLL_INTERVAL", 2*time.Second),
			BatchSize: viper.GetInt("OUTBOX_BATCH_SIZE"),
		},
		SlotCache: SlotCacheConfig{
			TTL: durationOr("SLOT_CACHE_TTL", 10*time.Minute),
		},
	}

	if config.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 100)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("BOOKING_TIMEZONE", "UTC")
	viper.SetDefault("BOOKING_CURRENCY", "usd")
	viper.SetDefault("BOOKING_DEFAULT_START", "10:00")
	viper.SetDefault("BOOKING_DEFAULT_END", "21:00")
	viper.SetDefault("BOOKING_SLOT_MINUTES", 30)
	viper.SetDefault("OUTBOX_BATCH_SIZE", 50)
	viper.SetDefault("KAFKA_TOPIC", "appointment.events")
}

func durationOr(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
