package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/mamadbah2/libdesk/internal/domain/models"
)

// Config represents the full application configuration surface.
type Config struct {
	Env       string
	LogLevel  string
	Server    ServerConfig
	Owner     OwnerConfig
	Library   LibraryConfig
	Auth      AuthConfig
	WhatsApp  WhatsAppConfig
	Reminders ReminderConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// OwnerConfig is the owner's login and WhatsApp number.
type OwnerConfig struct {
	Mobile   string
	Password string
}

// LibraryConfig holds the initial library settings.
type LibraryConfig struct {
	TotalSeats    int
	Timezone      string
	DefaultLat    float64
	DefaultLng    float64
	DefaultRadius float64
}

// AuthConfig holds JWT signing options.
type AuthConfig struct {
	Issuer     string
	SigningKey string
	TokenTTL   time.Duration
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API. The
// integration is disabled when AccessToken is empty.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	BaseURL       string
	APIVersion    string
	CountryCode   string
}

// Enabled reports whether outbound WhatsApp messages can be sent.
func (w WhatsAppConfig) Enabled() bool {
	return w.AccessToken != "" && w.PhoneNumberID != ""
}

// ReminderConfig holds scheduler-related settings.
type ReminderConfig struct {
	CronSchedule string
	Enabled      bool
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when the environment is already set.
		_ = godotenv.Load()
	}

	var perr error
	cfg := &Config{
		Env:      getenvWithDefault("APP_ENV", "development"),
		LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Owner: OwnerConfig{
			Mobile:   os.Getenv("OWNER_MOBILE"),
			Password: os.Getenv("OWNER_PASSWORD"),
		},
		Library: LibraryConfig{
			TotalSeats:    getInt("LIBRARY_TOTAL_SEATS", models.DefaultTotalSeats, &perr),
			Timezone:      getenvWithDefault("LIBRARY_TIMEZONE", "Asia/Kolkata"),
			DefaultLat:    getFloat("LIBRARY_LAT", 0, &perr),
			DefaultLng:    getFloat("LIBRARY_LNG", 0, &perr),
			DefaultRadius: getFloat("LIBRARY_RADIUS_METERS", 20, &perr),
		},
		Auth: AuthConfig{
			Issuer:     getenvWithDefault("JWT_ISSUER", "libdesk"),
			SigningKey: os.Getenv("JWT_SIGNING_KEY"),
			TokenTTL:   getDuration("JWT_TTL", 12*time.Hour, &perr),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:   os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			CountryCode:   getenvWithDefault("WHATSAPP_COUNTRY_CODE", "91"),
		},
		Reminders: ReminderConfig{
			CronSchedule: getenvWithDefault("REMINDER_CRON_SCHEDULE", "0 9 5 * *"),
			Enabled:      getBool("REMINDERS_ENABLED", true, &perr),
		},
	}
	if perr != nil {
		return nil, perr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case !models.ValidMobile(c.Owner.Mobile):
		return errors.New("OWNER_MOBILE must be a 10 digit mobile number")
	case c.Owner.Password == "":
		return errors.New("OWNER_PASSWORD must be provided")
	}

	if c.Library.TotalSeats < 1 || c.Library.TotalSeats > models.MaxSeats {
		return fmt.Errorf("LIBRARY_TOTAL_SEATS must be between 1 and %d", models.MaxSeats)
	}
	if _, err := time.LoadLocation(c.Library.Timezone); err != nil {
		return fmt.Errorf("LIBRARY_TIMEZONE %q: %w", c.Library.Timezone, err)
	}

	if len(c.Auth.SigningKey) < 16 {
		return errors.New("JWT_SIGNING_KEY must be at least 16 characters")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.VerifyToken == "":
			return errors.New("META_VERIFY_TOKEN must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if c.Reminders.Enabled && c.Reminders.CronSchedule == "" {
		return errors.New("REMINDER_CRON_SCHEDULE must be provided")
	}

	return nil
}

// Location returns the library time zone. Validate has already checked it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Library.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LibraryLocation returns the initial geofence. It counts as configured only when
// coordinates were provided.
func (c *Config) LibraryLocation() models.LibraryLocation {
	return models.LibraryLocation{
		GeoPoint:     models.GeoPoint{Lat: c.Library.DefaultLat, Lng: c.Library.DefaultLng},
		RadiusMeters: c.Library.DefaultRadius,
		QRToken:      models.StaticQRToken,
		Configured:   c.Library.DefaultLat != 0 || c.Library.DefaultLng != 0,
	}
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int, perr *error) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		setErr(perr, key, err)
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64, perr *error) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		setErr(perr, key, err)
		return fallback
	}
	return v
}

func getBool(key string, fallback bool, perr *error) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		setErr(perr, key, err)
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration, perr *error) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		setErr(perr, key, err)
		return fallback
	}
	return v
}

func setErr(perr *error, key string, err error) {
	if *perr == nil {
		*perr = fmt.Errorf("invalid %s: %w", key, err)
	}
}
