package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env     string
	Port    string
	OTel    OTelConfig
	Redis   RedisConfig
	NEF     NEFConfig
	Sources SourceConfig
	OTP     OTPConfig
	SMS     SMSConfig
	Sweep   SweepConfig
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

type RedisConfig struct {
	URL string
}

type NEFConfig struct {
	// URL is the root of the NEF deployment, used for the login endpoint.
	URL      string
	Username string
	Password string
	// AFID identifies this gateway as an application function on
	// monitoring-event calls.
	AFID string
	// NotificationURL is the externally reachable base URL of this gateway,
	// registered with NEF as the notification destination.
	NotificationURL string
}

// SourceConfig carries the per-domain CloudEvents `source` URIs stamped on
// outbound notifications.
type SourceConfig struct {
	Geofencing   string
	Roaming      string
	Reachability string
}

type OTPConfig struct {
	CodeSize    int
	MaxAttempts int
	Expiry      time.Duration
}

type SMSBackend string

const (
	SMSBackendMock SMSBackend = "mock"
	SMSBackendSMSC SMSBackend = "smsc"
)

type SMSConfig struct {
	Backend SMSBackend
	SMSCURL string
}

type SweepConfig struct {
	Interval time.Duration
}

// Load loads configuration from environment variables. In development it
// first loads a .env file if one is present.
func Load() (Config, error) {
	if getEnv("GATEWAY_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:  getEnv("GATEWAY_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "camara-gateway"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		NEF: NEFConfig{
			URL:             getEnv("NEF_URL", "http://localhost:8888"),
			Username:        getEnv("NEF_USERNAME", ""),
			Password:        getEnv("NEF_PASSWORD", ""),
			AFID:            getEnv("NEF_AF_ID", "camara-gateway"),
			NotificationURL: getEnv("GATEWAY_NOTIFICATION_URL", "http://localhost:8080"),
		},
		Sources: SourceConfig{
			Geofencing:   getEnv("GEOFENCING_SOURCE", "https://localhost/geofencing-subscriptions/v0.3"),
			Roaming:      getEnv("ROAMING_SOURCE", "https://localhost/device-roaming-status-subscriptions/v0.7"),
			Reachability: getEnv("REACHABILITY_SOURCE", "https://localhost/device-reachability-status-subscriptions/v0.7"),
		},
		OTP: OTPConfig{
			CodeSize:    getEnvInt("OTP_CODE_SIZE", 6),
			MaxAttempts: getEnvInt("OTP_MAX_ATTEMPTS", 5),
			Expiry:      time.Duration(getEnvInt("OTP_EXPIRY_SECS", 300)) * time.Second,
		},
		SMS: SMSConfig{
			Backend: SMSBackend(getEnv("SMS_BACKEND", "mock")),
			SMSCURL: getEnv("SMSC_URL", ""),
		},
		Sweep: SweepConfig{
			Interval: time.Duration(getEnvInt("SWEEP_INTERVAL_SECS", 5)) * time.Second,
		},
	}

	if cfg.SMS.Backend != SMSBackendMock && cfg.SMS.Backend != SMSBackendSMSC {
		return Config{}, fmt.Errorf("unknown SMS backend %q", cfg.SMS.Backend)
	}
	if cfg.SMS.Backend == SMSBackendSMSC && cfg.SMS.SMSCURL == "" {
		return Config{}, fmt.Errorf("SMSC_URL is required when SMS_BACKEND=smsc")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
