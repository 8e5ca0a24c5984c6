// Package config resolves runtime settings: defaults, then an optional YAML file, then
// environment variables (a .env file is loaded into the environment first by main).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string

	JWTSecret   string
	TokenTTL    time.Duration
	AdminAPIKey string

	CartStore       string // redis, postgres or memory
	CartSnapshotTTL time.Duration
	CartIdleTTL     time.Duration // open carts untouched this long are dropped from memory

	ImageStore    string // local or s3
	UploadsDir    string
	PublicBaseURL string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string

	CODShippingFee decimal.Decimal
	PageSize       int

	TrackRPS   float64
	TrackBurst int

	LogLevel    string
	LogDev      bool
	CORSOrigins []string
}

// configFile mirrors the YAML layout. Zero values leave the defaults alone.
type configFile struct {
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
		LogLevel    string   `yaml:"log_level"`
	} `yaml:"server"`
	Dependencies struct {
		DatabaseURL  string   `yaml:"database_url"`
		RedisURL     string   `yaml:"redis_url"`
		KafkaBrokers []string `yaml:"kafka_brokers"`
		KafkaTopic   string   `yaml:"kafka_topic_orders"`
	} `yaml:"dependencies"`
	Cart struct {
		Store       string `yaml:"store"`
		TTLHours    int    `yaml:"ttl_hours"`
		IdleMinutes int    `yaml:"idle_minutes"`
	} `yaml:"cart"`
	Images struct {
		Store      string `yaml:"store"`
		UploadsDir string `yaml:"uploads_dir"`
		BaseURL    string `yaml:"public_base_url"`
		S3Bucket   string `yaml:"s3_bucket"`
		S3Region   string `yaml:"s3_region"`
		S3Endpoint string `yaml:"s3_endpoint"`
	} `yaml:"images"`
	Shop struct {
		CODShippingFee string `yaml:"cod_shipping_fee"`
		PageSize       int    `yaml:"page_size"`
	} `yaml:"shop"`
	Tracking struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"tracking"`
}

func defaults() Config {
	return Config{
		Port:            "8080",
		KafkaTopic:      "pawshop.orders",
		TokenTTL:        24 * time.Hour,
		CartStore:       "postgres",
		CartSnapshotTTL: 30 * 24 * time.Hour,
		CartIdleTTL:     30 * time.Minute,
		ImageStore:      "local",
		UploadsDir:      "./uploads",
		S3Region:        "us-east-1",
		CODShippingFee:  decimal.NewFromInt(5),
		PageSize:        6,
		TrackRPS:        1,
		TrackBurst:      5,
		LogLevel:        "info",
		CORSOrigins:     []string{"*"},
	}
}

// Load resolves configuration in priority order: defaults, file, env. A missing file
// is not an error; an unreadable or invalid one is.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := cfg.applyFile(raw); err != nil {
				return Config{}, err
			}
		case !os.IsNotExist(err):
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.validate()
}

func (c *Config) applyFile(raw []byte) error {
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	setString(&c.Port, f.Server.Port)
	setString(&c.LogLevel, f.Server.LogLevel)
	if len(f.Server.CORSOrigins) > 0 {
		c.CORSOrigins = f.Server.CORSOrigins
	}
	setString(&c.DatabaseURL, f.Dependencies.DatabaseURL)
	setString(&c.RedisURL, f.Dependencies.RedisURL)
	if len(f.Dependencies.KafkaBrokers) > 0 {
		c.KafkaBrokers = f.Dependencies.KafkaBrokers
	}
	setString(&c.KafkaTopic, f.Dependencies.KafkaTopic)
	setString(&c.CartStore, f.Cart.Store)
	if f.Cart.TTLHours > 0 {
		c.CartSnapshotTTL = time.Duration(f.Cart.TTLHours) * time.Hour
	}
	if f.Cart.IdleMinutes > 0 {
		c.CartIdleTTL = time.Duration(f.Cart.IdleMinutes) * time.Minute
	}
	setString(&c.ImageStore, f.Images.Store)
	setString(&c.UploadsDir, f.Images.UploadsDir)
	setString(&c.PublicBaseURL, f.Images.BaseURL)
	setString(&c.S3Bucket, f.Images.S3Bucket)
	setString(&c.S3Region, f.Images.S3Region)
	setString(&c.S3Endpoint, f.Images.S3Endpoint)
	if f.Shop.CODShippingFee != "" {
		fee, err := decimal.NewFromString(f.Shop.CODShippingFee)
		if err != nil {
			return fmt.Errorf("parse config file: shop.cod_shipping_fee: %w", err)
		}
		c.CODShippingFee = fee
	}
	if f.Shop.PageSize > 0 {
		c.PageSize = f.Shop.PageSize
	}
	if f.Tracking.RPS > 0 {
		c.TrackRPS = f.Tracking.RPS
	}
	if f.Tracking.Burst > 0 {
		c.TrackBurst = f.Tracking.Burst
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = envOrDefault("PORT", c.Port)
	c.DatabaseURL = envOrDefault("DATABASE_URL", c.DatabaseURL)
	c.DBHost = envOrDefault("DB_HOST", c.DBHost)
	c.DBPort = envOrDefault("DB_PORT", c.DBPort)
	c.DBUser = envOrDefault("DB_USER", c.DBUser)
	c.DBPassword = envOrDefault("DB_PASSWORD", c.DBPassword)
	c.DBName = envOrDefault("DB_NAME", c.DBName)
	c.RedisURL = envOrDefault("REDIS_URL", c.RedisURL)
	c.KafkaBrokers = envCSV("KAFKA_BROKERS", c.KafkaBrokers)
	c.KafkaTopic = envOrDefault("KAFKA_TOPIC_ORDERS", c.KafkaTopic)
	c.JWTSecret = envOrDefault("JWT_SECRET", c.JWTSecret)
	c.TokenTTL = time.Duration(envInt("TOKEN_EXPIRY_HOURS", int(c.TokenTTL.Hours()))) * time.Hour
	c.AdminAPIKey = envOrDefault("ADMIN_API_KEY", c.AdminAPIKey)
	c.CartStore = strings.ToLower(envOrDefault("CART_STORE", c.CartStore))
	c.CartSnapshotTTL = time.Duration(envInt("CART_TTL_HOURS", int(c.CartSnapshotTTL.Hours()))) * time.Hour
	c.CartIdleTTL = time.Duration(envInt("CART_IDLE_MINUTES", int(c.CartIdleTTL.Minutes()))) * time.Minute
	c.ImageStore = strings.ToLower(envOrDefault("IMAGE_STORE", c.ImageStore))
	c.UploadsDir = envOrDefault("UPLOADS_DIR", c.UploadsDir)
	c.PublicBaseURL = envOrDefault("PUBLIC_BASE_URL", c.PublicBaseURL)
	c.S3Bucket = envOrDefault("S3_BUCKET", c.S3Bucket)
	c.S3Region = envOrDefault("S3_REGION", c.S3Region)
	c.S3Endpoint = envOrDefault("S3_ENDPOINT", c.S3Endpoint)
	c.PageSize = envInt("PAGE_SIZE", c.PageSize)
	c.TrackRPS = envFloat("TRACK_RPS", c.TrackRPS)
	c.TrackBurst = envInt("TRACK_BURST", c.TrackBurst)
	c.LogLevel = envOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogDev = envBool("LOG_DEV", c.LogDev)
	c.CORSOrigins = envCSV("CORS_ORIGINS", c.CORSOrigins)

	if v := strings.TrimSpace(os.Getenv("COD_SHIPPING_FEE")); v != "" {
		fee, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("COD_SHIPPING_FEE: %w", err)
		}
		c.CODShippingFee = fee
	}
	return nil
}

func (c *Config) validate() error {
	switch c.CartStore {
	case "redis", "postgres", "memory":
	default:
		return fmt.Errorf("CART_STORE must be redis, postgres or memory, got %q", c.CartStore)
	}
	switch c.ImageStore {
	case "local", "s3":
	default:
		return fmt.Errorf("IMAGE_STORE must be local or s3, got %q", c.ImageStore)
	}
	if c.CartStore == "redis" && c.RedisURL == "" {
		return fmt.Errorf("CART_STORE=redis requires REDIS_URL")
	}
	if c.ImageStore == "s3" && c.S3Bucket == "" {
		return fmt.Errorf("IMAGE_STORE=s3 requires S3_BUCKET")
	}
	if c.CODShippingFee.IsNegative() {
		return fmt.Errorf("COD_SHIPPING_FEE must not be negative")
	}
	return nil
}

// DSN is DATABASE_URL when set, otherwise a key/value DSN built from the DB_* settings.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envCSV(key string, fallback []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
