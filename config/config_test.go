package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "mongo", cfg.Database.Driver)
	assert.Equal(t, "0.1", cfg.Checkout.TaxRate.String())
	assert.True(t, cfg.Checkout.Shipping.IsZero())
	assert.False(t, cfg.Database.Transactions)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(lookupFrom(map[string]string{
		"PORT":             "9000",
		"DB_DRIVER":        "postgres",
		"DATABASE_URL":     "postgres://localhost/shop",
		"DB_TRANSACTIONS":  "true",
		"JWT_SECRET":       "s3cret",
		"SERVICE_ROLE_KEY": "service",
		"CORS_ORIGINS":     "https://a.example.com, https://b.example.com,",
		"TAX_RATE":         "0.2",
		"SHIPPING_FLAT":    "4.99",
		"TOKEN_TTL":        "2h",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/shop", cfg.StoreURI())
	assert.True(t, cfg.Database.Transactions)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "0.2", cfg.Checkout.TaxRate.String())
	assert.Equal(t, "4.99", cfg.Checkout.Shipping.String())
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnvRejectsBadValues(t *testing.T) {
	for key, value := range map[string]string{
		"DB_TRANSACTIONS": "maybe",
		"TOKEN_TTL":       "soon",
		"TAX_RATE":        "ten percent",
	} {
		cfg := Default()
		assert.Error(t, cfg.applyEnv(lookupFrom(map[string]string{key: value})), key)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate(), "jwt secret is required")

	cfg.Auth.JWTSecret = "s"
	require.NoError(t, cfg.Validate())

	cfg.Database.Driver = "sqlite"
	assert.Error(t, cfg.Validate())

	cfg.Database.Driver = "postgres"
	assert.Error(t, cfg.Validate(), "postgres needs a url")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "7000"
database:
  driver: memory
auth:
  jwt_secret: from-file
checkout:
  tax_rate: "0.05"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "0.05", cfg.Checkout.TaxRate.String())
	assert.Equal(t, "http://localhost:8000", cfg.Server.BaseURL, "defaults survive")
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}
