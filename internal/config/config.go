package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"demowallet/internal/log"
)

type Config struct {
	// HTTP Server
	Port           string
	LogLevel       string
	TrustedProxies []string

	// Demo credential pair
	WalletUsername string
	WalletPIN      string

	// Generative insight service
	InsightEndpoint         string
	InsightModel            string
	InsightAPIKey           string
	InsightTimeout          time.Duration
	InsightBreakerThreshold int
	InsightBreakerTimeout   time.Duration

	// Sessions
	SessionTTL         time.Duration
	SessionMax         int
	RateLimitPerMinute int

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),

		WalletUsername: getEnv("WALLET_USERNAME", "user"),
		WalletPIN:      getEnv("WALLET_PIN", "1234"),

		InsightEndpoint:         getEnv("INSIGHT_ENDPOINT", "https://generativelanguage.googleapis.com/v1beta"),
		InsightModel:            getEnv("INSIGHT_MODEL", "gemini-2.0-flash"),
		InsightAPIKey:           getEnv("INSIGHT_API_KEY", ""),
		InsightTimeout:          getEnvDuration("INSIGHT_TIMEOUT", 15*time.Second),
		InsightBreakerThreshold: getEnvInt("INSIGHT_BREAKER_THRESHOLD", 5),
		InsightBreakerTimeout:   getEnvDuration("INSIGHT_BREAKER_TIMEOUT", 30*time.Second),

		SessionTTL:         getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionMax:         getEnvInt("SESSION_MAX", 1000),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "wallet"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "wallet_transactions"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if strings.TrimSpace(c.WalletUsername) == "" {
		errors = append(errors, "wallet username cannot be empty")
	}
	if strings.TrimSpace(c.WalletPIN) == "" {
		errors = append(errors, "wallet PIN cannot be empty")
	}

	if parsedURL, err := url.Parse(c.InsightEndpoint); err != nil || c.InsightEndpoint == "" {
		errors = append(errors, fmt.Sprintf("invalid insight endpoint '%s'", c.InsightEndpoint))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid insight endpoint scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}
	if strings.TrimSpace(c.InsightModel) == "" {
		errors = append(errors, "insight model cannot be empty")
	}
	if c.InsightTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid insight timeout %v: must be at least 100ms", c.InsightTimeout))
	} else if c.InsightTimeout > 2*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid insight timeout %v: must be at most 2 minutes", c.InsightTimeout))
	}
	if c.InsightBreakerThreshold < 1 {
		errors = append(errors, fmt.Sprintf("invalid insight breaker threshold %d: must be at least 1", c.InsightBreakerThreshold))
	}
	if c.InsightBreakerTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid insight breaker timeout %v: must be at least 1 second", c.InsightBreakerTimeout))
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	} else if c.SessionTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at most 24 hours", c.SessionTTL))
	}
	if c.SessionMax < 1 {
		errors = append(errors, fmt.Sprintf("invalid session max %d: must be at least 1", c.SessionMax))
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// InsightConfigured reports whether an API key is present.
func (c *Config) InsightConfigured() bool {
	return c.InsightAPIKey != ""
}

// AMQPEnabled reports whether transaction events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
