package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tripora-travel/service-booking/pkg/database"
)

// JWTConfig holds token validation settings shared with the auth service.
type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// KafkaConfig holds broker addresses and the consumer group prefix.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// MidtransConfig holds payment gateway credentials. An empty ServerKey means
// the gateway is not configured and refunds are queued for manual processing.
type MidtransConfig struct {
	ServerKey  string
	Production bool
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port     string
	AppEnv   string
	Currency string

	DB       database.PostgresConfig
	JWT      JWTConfig
	Kafka    KafkaConfig
	Midtrans MidtransConfig
}

// Load reads configuration from BOOKING_-prefixed environment variables.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("BOOKING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("service_port", "8080")
	v.SetDefault("app_env", "development")
	v.SetDefault("currency", "USD")

	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "postgres")
	v.SetDefault("db_name", "tripora_bookings")
	v.SetDefault("db_sslmode", "disable")

	v.SetDefault("jwt_access_ttl", 15*time.Minute)
	v.SetDefault("jwt_refresh_ttl", 7*24*time.Hour)

	v.SetDefault("kafka_brokers", "localhost:9092")
	v.SetDefault("kafka_group_prefix", "tripora.")

	v.SetDefault("midtrans_server_key", "")
	v.SetDefault("midtrans_production", false)

	cfg := &ServiceConfig{
		Port:     ":" + v.GetString("service_port"),
		AppEnv:   v.GetString("app_env"),
		Currency: v.GetString("currency"),
		DB: database.PostgresConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			DBName:   v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt_secret"),
			AccessTTL:  v.GetDuration("jwt_access_ttl"),
			RefreshTTL: v.GetDuration("jwt_refresh_ttl"),
		},
		Kafka: KafkaConfig{
			Brokers:     strings.Split(v.GetString("kafka_brokers"), ","),
			GroupPrefix: v.GetString("kafka_group_prefix"),
		},
		Midtrans: MidtransConfig{
			ServerKey:  v.GetString("midtrans_server_key"),
			Production: v.GetBool("midtrans_production"),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("BOOKING_JWT_SECRET is required")
	}
	return cfg, nil
}
