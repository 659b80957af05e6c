package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables
// Provide sane defaults for local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// Frontend files and user data
	StaticDir string
	UsersFile string
	LoginPage string

	// Sessions
	SessionSecret     string
	SessionTTL        time.Duration
	SessionCookieName string

	// Cookies
	CookieDomain string
	CookieSecure bool

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Redis (sessions + rate limiting); empty addr keeps sessions in memory
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RateLimitEnabled bool
	RateLimitMax     int // requests per window per IP and route
	RateLimitWindow  time.Duration

	// Skip limits for loopback/private clients
	RateLimitSkipPrivate bool

	// Honour CF-Connecting-IP / X-Forwarded-For
	TrustProxyHeaders bool

	// How often expired in-memory sessions are swept
	SessionSweepInterval time.Duration

	// Store new passwords as bcrypt hashes
	PasswordHashing bool

	// RabbitMQ
	RabbitMQURL        string
	RabbitMQEventQueue string

	// Elasticsearch
	ElasticsearchAddrs string // comma-separated
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESEventsIndex      string

	// Mailgun
	MailgunDomain   string
	MailgunAPIKey   string
	MailgunSender   string
	HRNotifyEmail   string
	MailSendEnabled bool

	// Google Cloud Storage snapshots of the users file
	GCSBucket              string
	GCSCredentialsJSONPath string // optional; if empty, Application Default Credentials are used
	GCSPrefix              string

	// HTTP access log toggle (Gin logger)
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "cohesia-portal"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "3000"),
		GinMode: getenv("GIN_MODE", "release"),

		StaticDir: getenv("STATIC_DIR", "web"),
		UsersFile: getenv("USERS_FILE", "data/users.json"),
		LoginPage: getenv("LOGIN_PAGE", "/login.html"),

		SessionSecret:     getenv("SESSION_SECRET", "cohesia-secret-key-change-this-in-production"),
		SessionTTL:        getdur("SESSION_TTL", 24*time.Hour),
		SessionCookieName: getenv("SESSION_COOKIE_NAME", "cohesia.sid"),

		CookieDomain: getenv("COOKIE_DOMAIN", ""),
		CookieSecure: getbool("COOKIE_SECURE", false),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),

		RedisAddr:        getenv("REDIS_ADDR", ""),
		RedisPassword:    getenv("REDIS_PASSWORD", ""),
		RedisDB:          getint("REDIS_DB", 0),
		RateLimitEnabled: getbool("RATE_LIMIT_ENABLED", true),
		RateLimitMax:     getint("RATE_LIMIT_MAX", 20),
		RateLimitWindow:  getdur("RATE_LIMIT_WINDOW", time.Minute),

		RateLimitSkipPrivate: getbool("RATE_LIMIT_SKIP_PRIVATE", false),
		TrustProxyHeaders:    getbool("TRUST_PROXY_HEADERS", false),

		SessionSweepInterval: getdur("SESSION_SWEEP_INTERVAL", 10*time.Minute),

		PasswordHashing: getbool("PASSWORD_HASHING", false),

		RabbitMQURL:        getenv("RABBITMQ_URL", ""),
		RabbitMQEventQueue: getenv("RABBITMQ_EVENT_QUEUE", "auth_events"),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESEventsIndex:      getenv("ES_EVENTS_INDEX", "auth-events"),

		MailgunDomain:   getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:   getenv("MAILGUN_API_KEY", ""),
		MailgunSender:   getenv("MAILGUN_SENDER", ""),
		HRNotifyEmail:   getenv("HR_NOTIFY_EMAIL", ""),
		MailSendEnabled: getbool("MAIL_SEND_ENABLED", false),

		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),
		GCSPrefix:              getenv("GCS_PREFIX", "snapshots"),

		// HTTP access log toggle (default false; enable when needed)
		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),
	}
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string {
	return splitList(c.ElasticsearchAddrs)
}

// MailgunConfigured reports whether every Mailgun setting needed for HR notices is present.
func (c *Config) MailgunConfigured() bool {
	return c.MailgunDomain != "" && c.MailgunAPIKey != "" && c.MailgunSender != "" && c.HRNotifyEmail != ""
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
