package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when CONFIG_FILE is unset. It may be absent.
const DefaultFile = "config.yaml"

type Config struct {
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Auth     Auth     `yaml:"auth"`
	Email    Email    `yaml:"email"`
	Storage  Storage  `yaml:"storage"`
	Checkout Checkout `yaml:"checkout"`
}

type Server struct {
	Port        string   `yaml:"port"`
	BaseURL     string   `yaml:"base_url"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type Database struct {
	Driver       string `yaml:"driver"`
	MongoURI     string `yaml:"mongo_uri"`
	PostgresURL  string `yaml:"postgres_url"`
	Name         string `yaml:"name"`
	Transactions bool   `yaml:"transactions"`
}

type Auth struct {
	JWTSecret      string        `yaml:"jwt_secret"`
	ServiceRoleKey string        `yaml:"service_role_key"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
}

type Email struct {
	Provider      string `yaml:"provider"`
	PostmarkToken string `yaml:"postmark_token"`
	SendGridKey   string `yaml:"sendgrid_key"`
	Sender        string `yaml:"sender"`
	Mailbox       string `yaml:"mailbox"`
}

type Storage struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PublicBaseURL   string `yaml:"public_base_url"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type Checkout struct {
	TaxRate                decimal.Decimal `yaml:"tax_rate"`
	Shipping               decimal.Decimal `yaml:"shipping"`
	CreateOrderFunctionURL string          `yaml:"create_order_function_url"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: Server{Port: "8000", BaseURL: "http://localhost:8000", CORSOrigins: []string{"*"}},
		Database: Database{
			Driver:   "mongo",
			MongoURI: "mongodb://localhost:27017",
			Name:     "ecommerce",
		},
		Auth:     Auth{TokenTTL: 24 * time.Hour},
		Email:    Email{Provider: "postmark"},
		Storage:  Storage{Region: "us-east-1"},
		Checkout: Checkout{TaxRate: decimal.RequireFromString("0.10"), Shipping: decimal.Zero},
	}
}

// Load applies path over the defaults and then environment overrides. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("PORT", &c.Server.Port)
	str("APP_BASE_URL", &c.Server.BaseURL)
	str("DB_DRIVER", &c.Database.Driver)
	str("MONGO_URI", &c.Database.MongoURI)
	str("DATABASE_URL", &c.Database.PostgresURL)
	str("DB_NAME", &c.Database.Name)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("SERVICE_ROLE_KEY", &c.Auth.ServiceRoleKey)
	str("EMAIL_PROVIDER", &c.Email.Provider)
	str("POSTMARK_API_TOKEN", &c.Email.PostmarkToken)
	str("SENDGRID_API_KEY", &c.Email.SendGridKey)
	str("EMAIL_SENDER", &c.Email.Sender)
	str("EMAIL_MAILBOX", &c.Email.Mailbox)
	str("S3_BUCKET", &c.Storage.Bucket)
	str("AWS_REGION", &c.Storage.Region)
	str("S3_ENDPOINT", &c.Storage.Endpoint)
	str("S3_PUBLIC_BASE_URL", &c.Storage.PublicBaseURL)
	str("AWS_ACCESS_KEY_ID", &c.Storage.AccessKeyID)
	str("AWS_SECRET_ACCESS_KEY", &c.Storage.SecretAccessKey)
	str("CREATE_ORDER_FUNCTION_URL", &c.Checkout.CreateOrderFunctionURL)

	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		c.Server.CORSOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.Server.CORSOrigins = append(c.Server.CORSOrigins, origin)
			}
		}
	}
	if v, ok := lookup("DB_TRANSACTIONS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DB_TRANSACTIONS: %w", err)
		}
		c.Database.Transactions = b
	}
	if v, ok := lookup("TOKEN_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL: %w", err)
		}
		c.Auth.TokenTTL = d
	}
	for key, dst := range map[string]*decimal.Decimal{"TAX_RATE": &c.Checkout.TaxRate, "SHIPPING_FLAT": &c.Checkout.Shipping} {
		if v, ok := lookup(key); ok && v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}
	return nil
}

// Validate reports the first setting the server cannot start with.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	switch c.Database.Driver {
	case "mongo", "postgres", "memory":
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	if c.Database.Driver == "postgres" && c.Database.PostgresURL == "" {
		return errors.New("config: DATABASE_URL is required for the postgres driver")
	}
	if c.Checkout.TaxRate.IsNegative() || c.Checkout.Shipping.IsNegative() {
		return errors.New("config: tax rate and shipping must not be negative")
	}
	if c.Server.Port == "" {
		return errors.New("config: port is required")
	}
	return nil
}

// StoreURI returns the connection string of the configured driver.
func (c *Config) StoreURI() string {
	if c.Database.Driver == "postgres" {
		return c.Database.PostgresURL
	}
	return c.Database.MongoURI
}

// File returns CONFIG_FILE or DefaultFile.
func File() string {
	if v := os.Getenv("CONFIG_FILE"); v != "" {
		return v
	}
	return DefaultFile
}
