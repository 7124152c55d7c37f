package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultDatabaseURL = "file:marketplace.db?_pragma=busy_timeout(5000)"

type Config struct {
	DatabaseURL string

	LogLevel string
	LogFile  string

	ServerPort   int
	CookieSecure bool
	JWTSecret    []byte
	AccessTTL    time.Duration
	AdminUsers   []string
	HTTPTimeout  time.Duration

	KafkaBrokers     []string
	KafkaTopicPrefix string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	LoginRate  float64
	LoginBurst int

	CheckoutMaxAttempts int
	ImageWidth          int
}

func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return Config{
		DatabaseURL: EnvDefault("DATABASE_URL", DefaultDatabaseURL),

		LogLevel: EnvDefault("LOG_LEVEL", "info"),
		LogFile:  EnvDefault("LOG_FILE", "marketplace.log"),

		ServerPort:   EnvIntDefault("SERVER_PORT", 8080),
		CookieSecure: EnvBoolDefault("COOKIE_SECURE", false),
		JWTSecret:    []byte(os.Getenv("JWT_SECRET")),
		AccessTTL:    EnvDurationDefault("ACCESS_TTL", 15*time.Minute),
		AdminUsers:   CSV(os.Getenv("ADMIN_USERNAMES")),
		HTTPTimeout:  EnvDurationDefault("HTTP_TIMEOUT", 10*time.Second),

		KafkaBrokers:     CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicPrefix: os.Getenv("KAFKA_TOPIC_PREFIX"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		LoginRate:  EnvFloatDefault("LOGIN_RATE", 0.2),
		LoginBurst: EnvIntDefault("LOGIN_BURST", 5),

		CheckoutMaxAttempts: EnvIntDefault("CHECKOUT_MAX_ATTEMPTS", 3),
		ImageWidth:          EnvIntDefault("IMAGE_WIDTH", 100),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func EnvFloatDefault(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
