package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Payment PaymentConfig
	Channel ChannelConfig
	Storage StorageConfig
	Ledger  LedgerConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Observ  ObservabilityConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type PaymentConfig struct {
	AccessToken    string
	APIBaseURL     string
	PublicHostname string
	WebhookSecret  string
}

type ChannelConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	APIBaseURL string
}

type StorageConfig struct {
	AccessToken    string
	ParentFolderID string
	UploadBaseURL  string
}

type LedgerConfig struct {
	// Backend is "memory" or "redis".
	Backend string
	// TTL of zero keeps pending orders indefinitely.
	TTL           time.Duration
	SweepInterval time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	// Empty Brokers disables event publishing.
	Brokers     []string
	TopicOrders string
}

type ObservabilityConfig struct {
	// Empty JaegerEndpoint disables tracing export.
	JaegerEndpoint string
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Payment: PaymentConfig{
			AccessToken:    getEnv("MP_ACCESS_TOKEN", ""),
			APIBaseURL:     getEnv("MP_API_BASE_URL", "https://api.mercadopago.com"),
			PublicHostname: getEnv("PUBLIC_HOSTNAME", ""),
			WebhookSecret:  getEnv("PAYMENT_WEBHOOK_SECRET", ""),
		},
		Channel: ChannelConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
			APIBaseURL: getEnv("TWILIO_API_BASE_URL", "https://api.twilio.com"),
		},
		Storage: StorageConfig{
			AccessToken:    getEnv("DRIVE_ACCESS_TOKEN", ""),
			ParentFolderID: getEnv("DRIVE_PARENT_FOLDER_ID", ""),
			UploadBaseURL:  getEnv("DRIVE_UPLOAD_BASE_URL", "https://www.googleapis.com"),
		},
		Ledger: LedgerConfig{
			Backend:       getEnv("LEDGER_BACKEND", "memory"),
			TTL:           parseDuration("LEDGER_TTL", 24*time.Hour),
			SweepInterval: parseDuration("LEDGER_SWEEP_INTERVAL", time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:     splitNonEmpty(getEnv("KAFKA_BROKERS", "")),
			TopicOrders: getEnv("KAFKA_TOPIC_ORDER_EVENTS", "order-events"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
		},
	}

	log.Printf("Config loaded: env=%s, port=%s, ledger=%s", cfg.Server.Env, cfg.Server.Port, cfg.Ledger.Backend)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		log.Printf("Invalid duration for %s: %q, using default %s", key, val, defaultVal)
		return defaultVal
	}
	return d
}

func splitNonEmpty(val string) []string {
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
