/**
 * @description
 * This file handles configuration management for the Horizon API server.
 * It uses the Viper library to read settings from environment variables or a
 * .env file.
 *
 * @dependencies
 * - github.com/spf13/viper: For configuration management.
 */
package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	MongoURI      string `mapstructure:"MONGODB_URI"`
	MongoDatabase string `mapstructure:"MONGODB_DATABASE"`

	AuthServiceURL string `mapstructure:"AUTH_SERVICE_URL"`

	PlaidBaseURL  string `mapstructure:"PLAID_BASE_URL"`
	PlaidClientID string `mapstructure:"PLAID_CLIENT_ID"`
	PlaidSecret   string `mapstructure:"PLAID_SECRET"`

	DwollaBaseURL string `mapstructure:"DWOLLA_BASE_URL"`
	DwollaAPIKey  string `mapstructure:"DWOLLA_API_KEY"`

	ShareableIDSecret string `mapstructure:"SHAREABLE_ID_SECRET"`

	// RabbitMQURL is optional; when empty the server falls back to a no-op
	// event producer and only logs the events it would have published.
	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`

	SessionCookieName   string `mapstructure:"SESSION_COOKIE_NAME"`
	SessionCookieSecure bool   `mapstructure:"SESSION_COOKIE_SECURE"`

	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("MONGODB_DATABASE", "horizonBank")
	viper.SetDefault("PLAID_BASE_URL", "https://sandbox.plaid.com")
	viper.SetDefault("SESSION_COOKIE_NAME", "horizon.session_token")
	viper.SetDefault("SESSION_COOKIE_SECURE", true)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "https://*,http://*")

	// Bind envs explicitly so containers pick them up reliably
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("MONGODB_URI")
	_ = viper.BindEnv("MONGODB_DATABASE")
	_ = viper.BindEnv("AUTH_SERVICE_URL")
	_ = viper.BindEnv("PLAID_BASE_URL")
	_ = viper.BindEnv("PLAID_CLIENT_ID")
	_ = viper.BindEnv("PLAID_SECRET")
	_ = viper.BindEnv("DWOLLA_BASE_URL")
	_ = viper.BindEnv("DWOLLA_API_KEY")
	_ = viper.BindEnv("SHAREABLE_ID_SECRET")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("SESSION_COOKIE_NAME")
	_ = viper.BindEnv("SESSION_COOKIE_SECURE")
	_ = viper.BindEnv("CORS_ALLOWED_ORIGINS")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Error reading config file: %s", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.MongoURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if config.ShareableIDSecret == "" {
		return nil, fmt.Errorf("SHAREABLE_ID_SECRET is required")
	}

	return &config, nil
}

// AllowedOrigins splits the comma-separated CORS origin list.
func (c *Config) AllowedOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
