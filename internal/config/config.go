package config

import (
	"github.com/spf13/viper"

	"github.com/maker-atelier/service-booking/pkg/config"
)

// StripeConfig holds Stripe-specific configuration. An empty SecretKey
// switches the service to the mock checkout adapter for local development.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// CheckoutConfig holds the redirect targets for hosted checkout sessions.
type CheckoutConfig struct {
	SuccessURL string
	CancelURL  string
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port           string
	AppEnv         string
	Currency       string
	DBConfig       config.DatabaseConfig
	JWTConfig      config.JWTConfig
	KafkaConfig    config.KafkaConfig
	StripeConfig   StripeConfig
	CheckoutConfig CheckoutConfig
}

// Load reads configuration from environment variables and returns a ServiceConfig.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("booking")
	if err != nil {
		return nil, err
	}

	currency := v.GetString("CURRENCY")
	if currency == "" {
		currency = "JPY"
	}

	return &ServiceConfig{
		Port:           config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:         config.GetAppEnv(v),
		Currency:       currency,
		DBConfig:       config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:      config.LoadJWTConfig(v),
		KafkaConfig:    config.LoadKafkaConfig(v),
		StripeConfig:   loadStripeConfig(v),
		CheckoutConfig: loadCheckoutConfig(v),
	}, nil
}

// loadStripeConfig extracts Stripe configuration from Viper.
func loadStripeConfig(v *viper.Viper) StripeConfig {
	return StripeConfig{
		SecretKey:     v.GetString("STRIPE_SECRET_KEY"),
		WebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
	}
}

// loadCheckoutConfig extracts checkout redirect URLs from Viper.
func loadCheckoutConfig(v *viper.Viper) CheckoutConfig {
	successURL := v.GetString("CHECKOUT_SUCCESS_URL")
	if successURL == "" {
		successURL = "http://localhost:3000/bookings/success?session_id={CHECKOUT_SESSION_ID}"
	}
	cancelURL := v.GetString("CHECKOUT_CANCEL_URL")
	if cancelURL == "" {
		cancelURL = "http://localhost:3000/bookings/cancelled"
	}
	return CheckoutConfig{SuccessURL: successURL, CancelURL: cancelURL}
}
