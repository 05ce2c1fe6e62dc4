package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Payment  PaymentConfig
	Order    OrderConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type PaymentConfig struct {
	ProviderBaseURL string
	RequestTimeout  time.Duration
	PollInterval    time.Duration
	SettleDelay     time.Duration
	MaxPollDuration time.Duration
}

type OrderConfig struct {
	// TaxRate is the estimated tax applied to cart subtotals and the
	// rate the order store uses server-side, e.g. "0.12".
	TaxRate string
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	viper.SetDefault("SERVER_IDLE_TIMEOUT", "30s")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "comanda")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "comanda")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("PAYMENT_PROVIDER_BASE_URL", "http://localhost:9090")
	viper.SetDefault("PAYMENT_REQUEST_TIMEOUT", "10s")
	viper.SetDefault("PAYMENT_POLL_INTERVAL", "2s")
	viper.SetDefault("PAYMENT_SETTLE_DELAY", "1s")
	viper.SetDefault("PAYMENT_MAX_POLL_DURATION", "5m")
	viper.SetDefault("ORDER_TAX_RATE", "0.12")
	viper.SetDefault("LOG_LEVEL", "info")

	readTimeout, err := time.ParseDuration(viper.GetString("SERVER_READ_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	writeTimeout, err := time.ParseDuration(viper.GetString("SERVER_WRITE_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	idleTimeout, err := time.ParseDuration(viper.GetString("SERVER_IDLE_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, err
	}
	requestTimeout, err := time.ParseDuration(viper.GetString("PAYMENT_REQUEST_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	pollInterval, err := time.ParseDuration(viper.GetString("PAYMENT_POLL_INTERVAL"))
	if err != nil {
		return nil, err
	}
	settleDelay, err := time.ParseDuration(viper.GetString("PAYMENT_SETTLE_DELAY"))
	if err != nil {
		return nil, err
	}
	maxPollDuration, err := time.ParseDuration(viper.GetString("PAYMENT_MAX_POLL_DURATION"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("SERVER_PORT"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Payment: PaymentConfig{
			ProviderBaseURL: viper.GetString("PAYMENT_PROVIDER_BASE_URL"),
			RequestTimeout:  requestTimeout,
			PollInterval:    pollInterval,
			SettleDelay:     settleDelay,
			MaxPollDuration: maxPollDuration,
		},
		Order: OrderConfig{
			TaxRate: viper.GetString("ORDER_TAX_RATE"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	return cfg, nil
}
