package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures infrastructure-level configuration. Domain settings
// (active term, enrollment window, formula coefficients) live in the settings
// document in MongoDB, not here.
type Server struct {
	Addr string

	MongoURI      string
	MongoDatabase string

	Redis RedisConfig

	// KafkaBrokers is optional; when empty, enrollment events are dropped.
	KafkaBrokers []string
	KafkaTopic   string

	JWTSigningKey string
	SessionTTL    time.Duration

	// ScoreFetchInsecureTLS disables certificate verification against the
	// upstream scoring service, which serves an incomplete chain.
	ScoreFetchInsecureTLS bool
}

// RedisConfig captures Redis connection tuning.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays
// lean. A .env file is loaded first when present.
func FromEnv() (Server, error) {
	_ = godotenv.Load()

	addr := os.Getenv("ENROLLD_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		return Server{}, fmt.Errorf("MONGO_URI is required")
	}
	mongoDB := os.Getenv("MONGO_DATABASE")
	if mongoDB == "" {
		mongoDB = "enrolld"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "enrollments"
	}

	return Server{
		Addr:          addr,
		MongoURI:      mongoURI,
		MongoDatabase: mongoDB,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		KafkaBrokers:          brokers,
		KafkaTopic:            topic,
		JWTSigningKey:         jwtSigningKey,
		SessionTTL:            time.Hour,
		ScoreFetchInsecureTLS: os.Getenv("SCORE_FETCH_INSECURE_TLS") == "true",
	}, nil
}
