package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Pricing  PricingConfig  `yaml:"pricing"`
	Fares    FaresConfig    `yaml:"fares"`
	Amadeus  AmadeusConfig  `yaml:"amadeus"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address             string `yaml:"address"`
	SwaggerFile         string `yaml:"swagger_file"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	IDPrefix    string `yaml:"id_prefix"`
	ExpiryHours int    `yaml:"expiry_hours"`
}

type PricingConfig struct {
	Currency          string `yaml:"currency"`
	FallbackToEconomy bool   `yaml:"fallback_to_economy"`
	MarkupPercent     int    `yaml:"markup_percent"`
}

type FaresConfig struct {
	// Source selects the flight catalog: static, postgres or amadeus.
	Source          string `yaml:"source"`
	CatalogFile     string `yaml:"catalog_file"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

func (f FaresConfig) CacheTTL() time.Duration {
	return time.Duration(f.CacheTTLSeconds) * time.Second
}

type AmadeusConfig struct {
	BaseURL              string `yaml:"base_url"`
	ClientID             string `yaml:"client_id"`
	ClientSecret         string `yaml:"client_secret"`
	SearchTimeoutSeconds int    `yaml:"search_timeout_seconds"`
	CallTimeoutSeconds   int    `yaml:"call_timeout_seconds"`
	MaxResults           int    `yaml:"max_results"`
}

type AuthConfig struct {
	// JWTSecret enables bearer-token checks when set.
	JWTSecret string `yaml:"jwt_secret"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type WorkerConfig struct {
	ExpirySweepMinutes int `yaml:"expiry_sweep_minutes"`
}

func (w WorkerConfig) ExpirySweepInterval() time.Duration {
	return time.Duration(w.ExpirySweepMinutes) * time.Minute
}

const (
	FareSourceStatic   = "static"
	FareSourcePostgres = "postgres"
	FareSourceAmadeus  = "amadeus"
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.HTTP.Address, ":8080")
	setDefaultInt(&c.HTTP.ReadTimeoutSeconds, 15)
	setDefaultInt(&c.HTTP.WriteTimeoutSeconds, 45)
	setDefault(&c.GRPC.Address, ":9090")
	setDefault(&c.Database.SSLMode, "disable")
	setDefaultInt(&c.Database.Port, 5432)
	setDefault(&c.Kafka.GroupID, "skybooker-notifier")
	setDefault(&c.Booking.IDPrefix, "BK")
	setDefaultInt(&c.Booking.ExpiryHours, 24)
	setDefault(&c.Pricing.Currency, "INR")
	setDefaultInt(&c.Pricing.MarkupPercent, 5)
	setDefault(&c.Fares.Source, FareSourceStatic)
	setDefaultInt(&c.Fares.CacheTTLSeconds, 3600)
	setDefault(&c.Amadeus.BaseURL, "https://test.api.amadeus.com")
	setDefaultInt(&c.Amadeus.SearchTimeoutSeconds, 30)
	setDefaultInt(&c.Amadeus.CallTimeoutSeconds, 10)
	setDefaultInt(&c.Amadeus.MaxResults, 10)
	setDefault(&c.Log.Level, "info")
	setDefaultInt(&c.Worker.ExpirySweepMinutes, 10)
}

// applyEnv lets secrets and deployment addresses come from the environment.
func (c *Config) applyEnv() {
	envString(&c.HTTP.Address, "SKYBOOKER_HTTP_ADDRESS")
	envString(&c.GRPC.Address, "SKYBOOKER_GRPC_ADDRESS")
	envString(&c.Database.Host, "SKYBOOKER_DB_HOST")
	envString(&c.Database.Password, "SKYBOOKER_DB_PASSWORD")
	envString(&c.Redis.Addr, "SKYBOOKER_REDIS_ADDR")
	envString(&c.Fares.Source, "SKYBOOKER_FARE_SOURCE")
	envString(&c.Amadeus.ClientID, "AMADEUS_CLIENT_ID")
	envString(&c.Amadeus.ClientSecret, "AMADEUS_CLIENT_SECRET")
	envString(&c.Auth.JWTSecret, "JWT_SECRET")
	envString(&c.Log.Level, "SKYBOOKER_LOG_LEVEL")
	if v := os.Getenv("SKYBOOKER_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("SKYBOOKER_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Fares.Source {
	case FareSourceStatic, FareSourcePostgres:
	case FareSourceAmadeus:
		if c.Amadeus.ClientID == "" || c.Amadeus.ClientSecret == "" {
			errs = append(errs, errors.New("amadeus fare source requires client_id and client_secret"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown fares.source %q", c.Fares.Source))
	}
	if len(c.Pricing.Currency) != 3 {
		errs = append(errs, fmt.Errorf("pricing.currency must be a 3-letter code, got %q", c.Pricing.Currency))
	}
	if c.Pricing.MarkupPercent < 0 || c.Pricing.MarkupPercent > 100 {
		errs = append(errs, fmt.Errorf("pricing.markup_percent must be within 0..100, got %d", c.Pricing.MarkupPercent))
	}
	if c.Booking.ExpiryHours <= 0 {
		errs = append(errs, errors.New("booking.expiry_hours must be positive"))
	}
	if c.Worker.ExpirySweepMinutes < 0 {
		errs = append(errs, errors.New("worker.expiry_sweep_minutes must not be negative"))
	}
	if c.Fares.CacheTTLSeconds < 0 {
		errs = append(errs, errors.New("fares.cache_ttl_seconds must not be negative"))
	}
	return errors.Join(errs...)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func setDefaultInt(field *int, value int) {
	if *field == 0 {
		*field = value
	}
}

func envString(field *string, key string) {
	if v := os.Getenv(key); v != "" {
		*field = v
	}
}
