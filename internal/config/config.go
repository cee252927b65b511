package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env           string
	Port          string
	DatabaseURL   string
	RedisURL      string
	SessionSecret string
	// PaymentQRURL is the static QR image shown on completed orders (payment is
	// settled out of band; the restaurant marks the order paid afterwards).
	PaymentQRURL string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	return &Config{
		Env:           env,
		Port:          port,
		DatabaseURL:   dbURL,
		RedisURL:      viper.GetString("REDIS_URL"),
		SessionSecret: viper.GetString("SESSION_SECRET"),
		PaymentQRURL:  viper.GetString("PAYMENT_QR_URL"),
	}, nil
}
