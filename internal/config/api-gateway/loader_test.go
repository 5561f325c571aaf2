package api_gateway_config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api-gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeYAML(t, `
app:
  env: prod
auth:
  access_secret: acc
  refresh_secret: ref
  access_ttl: 5m
kafka:
  enable: true
  brokers: ["k1:9092", "k2:9092"]
http:
  cors_origins: ["https://crm.example.com"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.App.Env)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 168*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "crm-events", cfg.Kafka.Topic)
	assert.Equal(t, []string{"https://crm.example.com"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, int64(5<<10), cfg.HTTP.MaxBodyBytes)
	assert.Equal(t, 100, cfg.HTTP.RateLimitPerHour)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2*time.Second, cfg.DB.QueryTimeout)

	lc := cfg.Log.AsLoggerConfig(cfg.App)
	assert.Equal(t, "crmdesk/api-gateway", lc.App)
	assert.Equal(t, "prod", lc.Env)

	pc := cfg.Kafka.AsProducerConfig()
	assert.Equal(t, 3, pc.NumPartitions)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AUTH_ACCESS_SECRET", "from-env-a")
	t.Setenv("AUTH_REFRESH_SECRET", "from-env-r")
	t.Setenv("SERVER_HTTP_ADDR", ":9999")
	t.Setenv("HTTP_RATE_LIMIT_PER_HOUR", "0")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env-a", cfg.Auth.AccessSecret)
	assert.Equal(t, ":9999", cfg.Server.HTTPAddr)
	assert.Equal(t, 0, cfg.HTTP.AsRateLimitConfig().PerHour)
}

func TestLoad_SecretsRequired(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want error
	}{
		{"no access secret", map[string]string{"AUTH_REFRESH_SECRET": "r"}, ErrNoAccessSecret},
		{"no refresh secret", map[string]string{"AUTH_ACCESS_SECRET": "a"}, ErrNoRefreshSecret},
		{"equal secrets", map[string]string{"AUTH_ACCESS_SECRET": "s", "AUTH_REFRESH_SECRET": "s"}, ErrSecretsEqual},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var c Config
		c.DB.DSN = "postgres://x"
		c.Redis.Addr = "localhost:6379"
		c.Auth.AccessSecret, c.Auth.RefreshSecret = "a", "r"
		c.Auth.AccessTTL, c.Auth.RefreshTTL = time.Minute, time.Hour
		return c
	}

	c := valid()
	require.NoError(t, c.Validate())

	c = valid()
	c.DB.DSN = ""
	require.ErrorIs(t, c.Validate(), ErrNoDSN)

	c = valid()
	c.Redis.Addr = ""
	require.ErrorIs(t, c.Validate(), ErrNoRedis)
	c.Redis.URL = "redis://localhost:6379/0"
	require.NoError(t, c.Validate())

	c = valid()
	c.Auth.RefreshTTL = 0
	require.ErrorIs(t, c.Validate(), ErrNonPositiveTTL)

	c = valid()
	c.Kafka.Enable = true
	require.ErrorIs(t, c.Validate(), ErrNoKafkaBrokers)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
