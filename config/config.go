package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is everything the commands need, read from config.yaml, the environment and .env
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	DataDir   string `mapstructure:"data_dir"`
	StoreFile string `mapstructure:"store_file"`

	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Binance  BinanceConfig  `mapstructure:"binance"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DatabaseConfig is optional, an empty url means no postgres
type DatabaseConfig struct {
	Url string `mapstructure:"url"`
}

// RedisConfig is optional, an empty addr means no ranking cache
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type BinanceConfig struct {
	ApiBase           string        `mapstructure:"api_base"`
	WebBase           string        `mapstructure:"web_base"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Workers           int           `mapstructure:"workers"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("data_dir", ".")
	v.SetDefault("store_file", "binance_crypto_data.json")

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "15m")

	v.SetDefault("binance.api_base", "https://api.binance.com")
	v.SetDefault("binance.web_base", "https://www.binance.com")
	v.SetDefault("binance.timeout", "30s")
	v.SetDefault("binance.requests_per_second", 10)
	v.SetDefault("binance.workers", 4)
}

// Load reads .env when present, then an optional config file, then the environment.
// An empty configFile searches for config.yaml in the working directory.
func Load(configFile string) (*Config, error) {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CRYPTOSTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// standard names used by the deploy environment
	_ = v.BindEnv("database.url", "CRYPTOSTATS_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("redis.addr", "CRYPTOSTATS_REDIS_ADDR", "REDIS_ADDR")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Binance.Workers <= 0 {
		return fmt.Errorf("binance.workers must be positive, got %d", c.Binance.Workers)
	}
	if c.Binance.RequestsPerSecond <= 0 {
		return fmt.Errorf("binance.requests_per_second must be positive, got %v", c.Binance.RequestsPerSecond)
	}
	if c.StoreFile == "" {
		return errors.New("store_file cannot be empty")
	}
	return nil
}
