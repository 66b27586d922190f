package config

import (
	"log"
	"time"

	"nursesrent/models"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string        `mapstructure:"APP_PORT"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	DatabaseName      string        `mapstructure:"DATABASE_NAME"`
	StoreDriver       string        `mapstructure:"STORE_DRIVER"`
	Env               string        `mapstructure:"ENV"`
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	JWTExpiresIn      time.Duration `mapstructure:"JWT_EXPIRES_IN"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int           `mapstructure:"MAX_REQUESTS_PER_MIN"`
	FrontendURL       string        `mapstructure:"FRONTEND_URL"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB   int    `mapstructure:"REDIS_AUTH_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Payment ledger.
	StripeKey                      string        `mapstructure:"STRIPE_SECRET_KEY"`
	PropertyBookingWebhookSecret   string        `mapstructure:"STRIPE_PROPERTY_BOOKING_WEBHOOK_SECRET"`
	HostSubscriptionWebhookSecret  string        `mapstructure:"STRIPE_HOST_SUBSCRIPTION_WEBHOOK_SECRET"`
	NurseSubscriptionWebhookSecret string        `mapstructure:"STRIPE_NURSE_SUBSCRIPTION_WEBHOOK_SECRET"`
	Currency                       string        `mapstructure:"CURRENCY"`
	ApplicationFeePercent          float64       `mapstructure:"APPLICATION_FEE_PERCENT"`
	LedgerTimeout                  time.Duration `mapstructure:"LEDGER_TIMEOUT"`
	LedgerMaxRetries               uint64        `mapstructure:"LEDGER_MAX_RETRIES"`
	StoreMaxRetries                uint64        `mapstructure:"STORE_MAX_RETRIES"`
	BreakerFailureThreshold        uint32        `mapstructure:"BREAKER_FAILURE_THRESHOLD"`

	// Subscription pricing seeds.
	HostSubscriptionAmount   float64 `mapstructure:"HOST_SUBSCRIPTION_AMOUNT"`
	HostSubscriptionInterval string  `mapstructure:"HOST_SUBSCRIPTION_INTERVAL"`
	NurseSubscriptionAmount  float64 `mapstructure:"NURSE_SUBSCRIPTION_AMOUNT"`

	RequireEmailVerification bool `mapstructure:"REQUIRE_EMAIL_VERIFICATION"`
	TaskQueueEnabled         bool `mapstructure:"TASK_QUEUE_ENABLED"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("FRONTEND_URL", "http://localhost:3000")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017/?replicaSet=rs0")
	viper.SetDefault("DATABASE_NAME", "nursesrent")
	viper.SetDefault("STORE_DRIVER", "mongo")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_EXPIRES_IN", "720h")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("STRIPE_SECRET_KEY", "")
	viper.SetDefault("STRIPE_PROPERTY_BOOKING_WEBHOOK_SECRET", "")
	viper.SetDefault("STRIPE_HOST_SUBSCRIPTION_WEBHOOK_SECRET", "")
	viper.SetDefault("STRIPE_NURSE_SUBSCRIPTION_WEBHOOK_SECRET", "")
	viper.SetDefault("CURRENCY", "usd")
	viper.SetDefault("APPLICATION_FEE_PERCENT", 10)
	viper.SetDefault("LEDGER_TIMEOUT", "10s")
	viper.SetDefault("LEDGER_MAX_RETRIES", 3)
	viper.SetDefault("STORE_MAX_RETRIES", 3)
	viper.SetDefault("BREAKER_FAILURE_THRESHOLD", 5)
	viper.SetDefault("HOST_SUBSCRIPTION_AMOUNT", 29)
	viper.SetDefault("HOST_SUBSCRIPTION_INTERVAL", "month")
	viper.SetDefault("NURSE_SUBSCRIPTION_AMOUNT", 49)
	viper.SetDefault("REQUIRE_EMAIL_VERIFICATION", false)
	viper.SetDefault("TASK_QUEUE_ENABLED", true)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// WebhookSecrets returns the signing secret of every webhook channel.
func WebhookSecrets() map[models.WebhookChannel]string {
	return map[models.WebhookChannel]string{
		models.ChannelPropertyBooking:   AppConfig.PropertyBookingWebhookSecret,
		models.ChannelHostSubscription:  AppConfig.HostSubscriptionWebhookSecret,
		models.ChannelNurseSubscription: AppConfig.NurseSubscriptionWebhookSecret,
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
