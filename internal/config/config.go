package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/newthinker/quantlab/internal/core"
	"github.com/newthinker/quantlab/internal/indicator"
	"github.com/newthinker/quantlab/internal/position"
	"github.com/newthinker/quantlab/internal/signal"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Collector CollectorConfig `mapstructure:"collector"`
	Backtest  BacktestConfig  `mapstructure:"backtest"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Mode           string        `mapstructure:"mode"`
	APIKey         string        `mapstructure:"api_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type StorageConfig struct {
	Cache CacheConfig `mapstructure:"cache"`
}

// CacheConfig selects where fetched price history is cached.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Type    string        `mapstructure:"type"` // "localfs" or "s3"
	Path    string        `mapstructure:"path"` // For localfs
	TTL     time.Duration `mapstructure:"ttl"`
	S3      S3Config      `mapstructure:"s3"` // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// CollectorConfig selects and configures the price source.
type CollectorConfig struct {
	Default string      `mapstructure:"default"` // "yahoo" or "csv"
	Yahoo   YahooConfig `mapstructure:"yahoo"`
	CSV     CSVConfig   `mapstructure:"csv"`
}

type YahooConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	RawClose bool          `mapstructure:"raw_close"`
}

type CSVConfig struct {
	Dir string `mapstructure:"dir"`
}

// BacktestConfig holds the strategy parameters.
type BacktestConfig struct {
	SMAFast        int     `mapstructure:"sma_fast"`
	SMASlow        int     `mapstructure:"sma_slow"`
	RSIPeriod      int     `mapstructure:"rsi_period"`
	RSIOversold    float64 `mapstructure:"rsi_oversold"`
	RSIOverbought  float64 `mapstructure:"rsi_overbought"`
	MACDFast       int     `mapstructure:"macd_fast"`
	MACDSlow       int     `mapstructure:"macd_slow"`
	MACDSignal     int     `mapstructure:"macd_signal"`
	BBWindow       int     `mapstructure:"bb_window"`
	BBNumStdDev    float64 `mapstructure:"bb_num_std_dev"`
	ZWindow        int     `mapstructure:"z_window"`
	EntryThreshold float64 `mapstructure:"entry_threshold"`
	PeriodsPerYear int     `mapstructure:"periods_per_year"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load reads configuration from file. Keys missing from the file keep their
// Defaults value.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v, Defaults())

	// Support environment variable overrides
	v.SetEnvPrefix("QUANTLAB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)

	v.SetDefault("storage.cache.enabled", d.Storage.Cache.Enabled)
	v.SetDefault("storage.cache.type", d.Storage.Cache.Type)
	v.SetDefault("storage.cache.path", d.Storage.Cache.Path)
	v.SetDefault("storage.cache.ttl", d.Storage.Cache.TTL)

	v.SetDefault("collector.default", d.Collector.Default)
	v.SetDefault("collector.yahoo.timeout", d.Collector.Yahoo.Timeout)
	v.SetDefault("collector.yahoo.raw_close", d.Collector.Yahoo.RawClose)

	b := d.Backtest
	v.SetDefault("backtest.sma_fast", b.SMAFast)
	v.SetDefault("backtest.sma_slow", b.SMASlow)
	v.SetDefault("backtest.rsi_period", b.RSIPeriod)
	v.SetDefault("backtest.rsi_oversold", b.RSIOversold)
	v.SetDefault("backtest.rsi_overbought", b.RSIOverbought)
	v.SetDefault("backtest.macd_fast", b.MACDFast)
	v.SetDefault("backtest.macd_slow", b.MACDSlow)
	v.SetDefault("backtest.macd_signal", b.MACDSignal)
	v.SetDefault("backtest.bb_window", b.BBWindow)
	v.SetDefault("backtest.bb_num_std_dev", b.BBNumStdDev)
	v.SetDefault("backtest.z_window", b.ZWindow)
	v.SetDefault("backtest.entry_threshold", b.EntryThreshold)
	v.SetDefault("backtest.periods_per_year", b.PeriodsPerYear)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
	v.SetDefault("log.level", d.Log.Level)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			Mode:           "release",
			RequestTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Cache: CacheConfig{
				Enabled: false,
				Type:    "localfs",
				Path:    "data/cache",
				TTL:     12 * time.Hour,
			},
		},
		Collector: CollectorConfig{
			Default: "yahoo",
			Yahoo: YahooConfig{
				Timeout: 30 * time.Second,
			},
		},
		Backtest: DefaultBacktest(),
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultBacktest returns the classic parameter set: 50/200 SMA, RSI(14)
// at 30/70, MACD(12,26,9), Bollinger(20, 2) and a 30-bar z-score at ±2.
func DefaultBacktest() BacktestConfig {
	return BacktestConfig{
		SMAFast:        50,
		SMASlow:        200,
		RSIPeriod:      14,
		RSIOversold:    signal.DefaultOversold,
		RSIOverbought:  signal.DefaultOverbought,
		MACDFast:       indicator.DefaultMACDFast,
		MACDSlow:       indicator.DefaultMACDSlow,
		MACDSignal:     indicator.DefaultMACDSignal,
		BBWindow:       20,
		BBNumStdDev:    2,
		ZWindow:        30,
		EntryThreshold: 2.0,
		PeriodsPerYear: 252,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.RequestTimeout < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("request_timeout cannot be negative, got %s", c.Server.RequestTimeout))
	}

	// Cache validation - if enabled, check backend config exists
	if c.Storage.Cache.Enabled {
		switch c.Storage.Cache.Type {
		case "localfs":
			if c.Storage.Cache.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("storage.cache.path required when type is localfs"))
			}
		case "s3":
			if c.Storage.Cache.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("storage.cache.s3.bucket required when type is s3"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown cache type %q", c.Storage.Cache.Type))
		}
	}

	switch c.Collector.Default {
	case "yahoo":
	case "csv":
		if c.Collector.CSV.Dir == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("collector.csv.dir required when default collector is csv"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown collector %q", c.Collector.Default))
	}

	return c.Backtest.Validate()
}

// Validate checks every strategy parameter and returns ErrInvalidParameter
// naming the first offending key.
func (b BacktestConfig) Validate() error {
	if b.SMAFast < 1 {
		return core.InvalidParameter("sma_fast", b.SMAFast, "must be >= 1")
	}
	if b.SMASlow <= b.SMAFast {
		return core.InvalidParameter("sma_slow", b.SMASlow, "must be greater than sma_fast")
	}
	if b.RSIPeriod < 1 {
		return core.InvalidParameter("rsi_period", b.RSIPeriod, "must be >= 1")
	}
	if err := signal.ValidateRSIThresholds(b.RSIOversold, b.RSIOverbought); err != nil {
		return err
	}
	if err := indicator.ValidateMACDSpans(b.MACDFast, b.MACDSlow, b.MACDSignal); err != nil {
		return err
	}
	if b.BBWindow < 2 {
		return core.InvalidParameter("bb_window", b.BBWindow, "must be >= 2")
	}
	if !(b.BBNumStdDev > 0) {
		return core.InvalidParameter("bb_num_std_dev", b.BBNumStdDev, "must be > 0")
	}
	if b.ZWindow < 2 {
		return core.InvalidParameter("z_window", b.ZWindow, "must be >= 2")
	}
	if err := position.ValidateThreshold(b.EntryThreshold); err != nil {
		return err
	}
	if b.PeriodsPerYear < 1 {
		return core.InvalidParameter("periods_per_year", b.PeriodsPerYear, "must be >= 1")
	}
	return nil
}
