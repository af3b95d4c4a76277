/*
Package configs loads the runtime configuration for the mentorlink gateway,
the relay hub and the terminal client.

Every value comes from an environment variable with an explicit default.
Values that only make sense in combination (the S3 settings) are enabled as
a group or not at all.
*/
package configs

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBackendURL        = "http://localhost:5001"
	DefaultSocketURL         = "ws://localhost:8080/ws"
	DefaultGatewayTimeout    = 5 * time.Second
	DefaultReconnectAttempts = 5
	DefaultReconnectDelay    = time.Second
	DefaultLoginPath         = "/login"
)

const (
	developmentEnvironment = "development"
	defaultPort            = "8080"
	minPort                = 1024
	maxPort                = 65535
)

// AppConfig contains all configuration parameters required by the binaries.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Backend Settings
	BackendURL     string
	PublicAPIURL   string
	GatewayTimeout time.Duration

	// Relay and socket client settings
	SocketURL         string
	ReconnectAttempts int
	ReconnectDelay    time.Duration
	RelayJWTSecret    string

	// Client settings
	LoginPath string

	// Security Settings
	AllowedOrigins []string

	// S3 Storage Settings (optional as a group)
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	AssetBaseURL      string
}

// IsDevelopment reports whether the process runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == developmentEnvironment
}

// StorageEnabled reports whether every S3 setting needed for presigned uploads is present.
func (c *AppConfig) StorageEnabled() bool {
	return c.S3BucketName != "" && c.S3Endpoint != "" && c.S3AccessKeyID != "" && c.S3SecretAccessKey != ""
}

// LoadConfig reads and validates the configuration from environment variables.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = envOr("ENVIRONMENT", developmentEnvironment)

	port, err := strconv.Atoi(envOr("PORT", defaultPort))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	if port < minPort || port > maxPort {
		return nil, fmt.Errorf("port number %d is outside the allowed range (%d-%d)", port, minPort, maxPort)
	}
	cfg.Port = port

	// --- Backend Settings ---
	cfg.BackendURL, err = parseBaseURL("BACKEND_URL", envOr("BACKEND_URL", DefaultBackendURL))
	if err != nil {
		return nil, err
	}

	cfg.PublicAPIURL, err = parseBaseURL("NEXT_PUBLIC_API_URL", envOr("NEXT_PUBLIC_API_URL", cfg.BackendURL))
	if err != nil {
		return nil, err
	}

	cfg.GatewayTimeout, err = durationEnv("GATEWAY_TIMEOUT", DefaultGatewayTimeout)
	if err != nil {
		return nil, err
	}

	// --- Relay Settings ---
	cfg.SocketURL = envOr("SOCKET_URL", DefaultSocketURL)
	if u, err := url.Parse(cfg.SocketURL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return nil, fmt.Errorf("SOCKET_URL must be a ws:// or wss:// URL, got %q", cfg.SocketURL)
	}

	attempts, err := strconv.Atoi(envOr("SOCKET_RECONNECT_ATTEMPTS", strconv.Itoa(DefaultReconnectAttempts)))
	if err != nil || attempts < 0 {
		return nil, fmt.Errorf("invalid SOCKET_RECONNECT_ATTEMPTS environment variable: %q", os.Getenv("SOCKET_RECONNECT_ATTEMPTS"))
	}
	cfg.ReconnectAttempts = attempts

	cfg.ReconnectDelay, err = durationEnv("SOCKET_RECONNECT_DELAY", DefaultReconnectDelay)
	if err != nil {
		return nil, err
	}

	cfg.RelayJWTSecret = os.Getenv("RELAY_JWT_SECRET")
	cfg.LoginPath = envOr("LOGIN_PATH", DefaultLoginPath)

	// --- Security Settings ---
	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}
	if !cfg.IsDevelopment() && len(cfg.AllowedOrigins) == 0 {
		return nil, fmt.Errorf("ALLOWED_ORIGINS environment variable is required in %s environment", cfg.Environment)
	}

	// --- S3 Storage Settings ---
	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.S3SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	cfg.AssetBaseURL = strings.TrimRight(os.Getenv("ASSET_BASE_URL"), "/")

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}

func parseBaseURL(key, raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%s must be an absolute URL, got %q", key, raw)
	}
	return strings.TrimRight(raw, "/"), nil
}
