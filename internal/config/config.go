package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Coinbase   Coinbase   `mapstructure:"coinbase"`
	Investment Investment `mapstructure:"investment"`
	Trading    Trading    `mapstructure:"trading"`
	Risk       Risk       `mapstructure:"risk"`
	Schedule   Schedule   `mapstructure:"schedule"`
	Logger     Logger     `mapstructure:"logger"`
	Database   Database   `mapstructure:"database"`
}

// Coinbase holds credentials and identifiers for both Coinbase API surfaces:
// the Advanced Trade API (JWT, key_name + private_key) used for orders and
// candles, and the v2 wallet API (HMAC, api_key + api_secret) used for
// account balances.
type Coinbase struct {
	KeyName        string  `mapstructure:"key_name"`
	PrivateKey     string  `mapstructure:"private_key"`
	APIKey         string  `mapstructure:"api_key"`
	APISecret      string  `mapstructure:"api_secret"`
	ProductID      string  `mapstructure:"product_id"`
	FiatCurrency   string  `mapstructure:"fiat_currency"`
	AssetCurrency  string  `mapstructure:"asset_currency"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Investment holds the configuration for the cost-averaging cycle.
type Investment struct {
	MonthlyLimit  float64 `mapstructure:"monthly_limit"`
	Frequency     int     `mapstructure:"frequency"`
	Strategy      string  `mapstructure:"strategy"`
	DropThreshold float64 `mapstructure:"drop_threshold"`
	OrderTimeout  int     `mapstructure:"order_timeout"`
	PollInterval  int     `mapstructure:"poll_interval"`
}

// Trading holds the configuration for the signal-driven trading loop.
type Trading struct {
	Enabled      bool    `mapstructure:"enabled"`
	TickInterval int     `mapstructure:"tick_interval"`
	OrderQuote   float64 `mapstructure:"order_quote"`
	ShortWindow  int     `mapstructure:"short_window"`
	LongWindow   int     `mapstructure:"long_window"`
	RSIPeriod    int     `mapstructure:"rsi_period"`
	RSIThreshold float64 `mapstructure:"rsi_threshold"`
	HistoryDays  int     `mapstructure:"history_days"`
}

// Risk holds the thresholds for the risk guard, all in percent.
type Risk struct {
	StopLossPct    float64 `mapstructure:"stop_loss_pct"`
	TakeProfitPct  float64 `mapstructure:"take_profit_pct"`
	MaxDrawdownPct float64 `mapstructure:"max_drawdown_pct"`
}

// Schedule holds the cron expressions driving the bot.
type Schedule struct {
	InvestmentCron   string `mapstructure:"investment_cron"`
	PriceDropCron    string `mapstructure:"price_drop_cron"`
	PriceDropEnabled bool   `mapstructure:"price_drop_enabled"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Database holds the configuration for the ledger database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("coinbase.product_id", "BTC-EUR")
	viper.SetDefault("coinbase.fiat_currency", "EUR")
	viper.SetDefault("coinbase.asset_currency", "BTC")
	viper.SetDefault("coinbase.rate_limit", 10) // requests per second
	viper.SetDefault("coinbase.rate_limit_burst", 5)
	viper.SetDefault("investment.frequency", 4)
	viper.SetDefault("investment.strategy", "adaptive_cost_average")
	viper.SetDefault("investment.drop_threshold", 5)
	viper.SetDefault("investment.order_timeout", 30) // seconds
	viper.SetDefault("investment.poll_interval", 5)  // seconds
	viper.SetDefault("trading.tick_interval", 3600)
	viper.SetDefault("trading.short_window", 14)
	viper.SetDefault("trading.long_window", 50)
	viper.SetDefault("trading.rsi_period", 14)
	viper.SetDefault("trading.rsi_threshold", 70)
	viper.SetDefault("trading.history_days", 90)
	viper.SetDefault("risk.stop_loss_pct", 10)
	viper.SetDefault("risk.take_profit_pct", 15)
	viper.SetDefault("risk.max_drawdown_pct", 20)
	viper.SetDefault("schedule.investment_cron", "0 9 * * 1") // Monday 09:00
	viper.SetDefault("schedule.price_drop_cron", "0 * * * *") // hourly
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("database.dsn", "trading_app.db")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	err = config.Validate()
	return
}

// Validate rejects configurations the investment cycle cannot run with.
func (c *Config) Validate() error {
	if c.Investment.MonthlyLimit <= 0 {
		return fmt.Errorf("investment.monthly_limit must be positive, got %v", c.Investment.MonthlyLimit)
	}
	if c.Investment.Frequency <= 0 {
		return fmt.Errorf("investment.frequency must be positive, got %d", c.Investment.Frequency)
	}
	if c.Investment.OrderTimeout <= 0 || c.Investment.PollInterval <= 0 {
		return fmt.Errorf("investment.order_timeout and investment.poll_interval must be positive")
	}
	if c.Coinbase.ProductID == "" {
		return fmt.Errorf("coinbase.product_id must be set")
	}
	return nil
}
