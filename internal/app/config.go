package app

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string
	Env  string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	RedisAddr   string
	KafkaBroker string

	RBACModelPath string

	OpenAIKey         string
	OpenAIBaseURL     string
	NarrativePrimary  string
	NarrativeFallback string
	NarrativeTimeout  time.Duration

	OutboxPollInterval time.Duration
	ConsumerGroupID    string
}

// LoadConfig membaca env (setelah godotenv.Load di main).
func LoadConfig() Config {
	return Config{
		Port: getenv("PORT", "3000"),
		Env:  getenv("APP_ENV", "development"),

		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),

		RedisAddr:   getenv("REDIS_ADDR", "localhost:6379"),
		KafkaBroker: os.Getenv("KAFKA_BROKER"),

		RBACModelPath: getenv("RBAC_MODEL_PATH", "internal/rbac/infra/model.conf"),

		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		NarrativePrimary:  getenv("NARRATIVE_PRIMARY_MODEL", "gpt-4o"),
		NarrativeFallback: getenv("NARRATIVE_FALLBACK_MODEL", "gpt-4o-mini"),
		NarrativeTimeout:  getDuration("NARRATIVE_TIMEOUT", 20*time.Second),

		OutboxPollInterval: getDuration("OUTBOX_POLL_INTERVAL", 3*time.Second),
		ConsumerGroupID:    getenv("KAFKA_CONSUMER_GROUP", "aisg-audit-aggregation"),
	}
}

func (c Config) requireKafka() error {
	if c.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration menerima "20s"/"1m" atau angka detik.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
