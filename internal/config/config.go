package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port           string
	BackendURL     string
	DatabaseURL    string
	RedisURL       string
	KafkaBrokers   string
	NatsURL        string
	JaegerEndpoint string

	DeepLinkSubject string
	ResultTopic     string

	CacheLookupTimeout time.Duration
	OrderLookupTimeout time.Duration
	CartClearTimeout   time.Duration
	CartClearClaimTTL  time.Duration
	PendingSignalTTL   time.Duration
	WorkerPoolSize     int
}

func defaults(v *viper.Viper) {
	v.SetDefault("port", "8084")
	v.SetDefault("backend_url", "http://localhost:3000")
	v.SetDefault("database_url", "")
	v.SetDefault("redis_url", "localhost:6379")
	v.SetDefault("kafka_brokers", "localhost:9092")
	v.SetDefault("nats_url", "nats://localhost:4222")
	v.SetDefault("jaeger_endpoint", "")
	v.SetDefault("deeplink_subject", "deeplink.payment-result")
	v.SetDefault("result_topic", "payment.result.resolved")
	v.SetDefault("cache_lookup_timeout", 3*time.Second)
	v.SetDefault("order_lookup_timeout", 5*time.Second)
	v.SetDefault("cart_clear_timeout", 5*time.Second)
	v.SetDefault("cart_clear_claim_ttl", 24*time.Hour)
	v.SetDefault("pending_signal_ttl", 10*time.Minute)
	v.SetDefault("worker_pool_size", 16)
}

// Load reads configuration from the environment. A .env file in the working
// directory is honoured when present.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	defaults(v)

	poolSize := v.GetInt("worker_pool_size")
	if poolSize <= 0 {
		poolSize = 16
	}

	return &Config{
		Port:               v.GetString("port"),
		BackendURL:         strings.TrimRight(v.GetString("backend_url"), "/"),
		DatabaseURL:        v.GetString("database_url"),
		RedisURL:           v.GetString("redis_url"),
		KafkaBrokers:       v.GetString("kafka_brokers"),
		NatsURL:            v.GetString("nats_url"),
		JaegerEndpoint:     v.GetString("jaeger_endpoint"),
		DeepLinkSubject:    v.GetString("deeplink_subject"),
		ResultTopic:        v.GetString("result_topic"),
		CacheLookupTimeout: v.GetDuration("cache_lookup_timeout"),
		OrderLookupTimeout: v.GetDuration("order_lookup_timeout"),
		CartClearTimeout:   v.GetDuration("cart_clear_timeout"),
		CartClearClaimTTL:  v.GetDuration("cart_clear_claim_ttl"),
		PendingSignalTTL:   v.GetDuration("pending_signal_ttl"),
		WorkerPoolSize:     poolSize,
	}
}
