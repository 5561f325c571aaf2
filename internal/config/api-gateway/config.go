package api_gateway_config

import (
	"time"

	"github.com/NordCoder/crmdesk/internal/httpx"
	"github.com/NordCoder/crmdesk/internal/obs"
	kafkarepo "github.com/NordCoder/crmdesk/internal/repository/kafka"
	pg "github.com/NordCoder/crmdesk/internal/repository/postgres"
	redisrepo "github.com/NordCoder/crmdesk/internal/repository/redis"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type Server struct {
	HTTPAddr          string        `mapstructure:"http_addr"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	GracefulTimeout   time.Duration `mapstructure:"graceful_timeout"`
}

type Kafka struct {
	Enable            bool     `mapstructure:"enable"`
	Brokers           []string `mapstructure:"brokers"`
	Topic             string   `mapstructure:"topic"`
	NumPartitions     int      `mapstructure:"num_partitions"`
	ReplicationFactor int      `mapstructure:"replication_factor"`
}

func (kc *Kafka) AsProducerConfig() kafkarepo.ProducerConfig {
	return kafkarepo.ProducerConfig{
		Brokers:           kc.Brokers,
		Topic:             kc.Topic,
		NumPartitions:     kc.NumPartitions,
		ReplicationFactor: kc.ReplicationFactor,
	}
}

type Outbox struct {
	Workers       int           `mapstructure:"workers"`
	BatchSize     int           `mapstructure:"batch_size"`
	WaitTime      time.Duration `mapstructure:"wait_time"`
	InProgressTTL time.Duration `mapstructure:"in_progress_ttl"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func (lc *Log) AsLoggerConfig(app App) *obs.LogConfig {
	return &obs.LogConfig{
		Level:  lc.Level,
		Pretty: lc.Pretty,
		App:    "crmdesk/" + app.Name,
		Env:    app.Env,
		Ver:    app.Version,
	}
}

type Auth struct {
	AccessSecret   string        `mapstructure:"access_secret"`
	RefreshSecret  string        `mapstructure:"refresh_secret"`
	AccessTTL      time.Duration `mapstructure:"access_ttl"`
	RefreshTTL     time.Duration `mapstructure:"refresh_ttl"`
	AdminToken     string        `mapstructure:"admin_token"`
	BcryptCost     int           `mapstructure:"bcrypt_cost"`
	CookieDomain   string        `mapstructure:"cookie_domain"`
	CookiePath     string        `mapstructure:"cookie_path"`
	CookieSecure   bool          `mapstructure:"cookie_secure"`
	CookieSameSite string        `mapstructure:"cookie_same_site"`
}

type HTTP struct {
	RateLimitPerHour int      `mapstructure:"rate_limit_per_hour"`
	TrustForwarded   bool     `mapstructure:"trust_forwarded"`
	CORSOrigins      []string `mapstructure:"cors_origins"`
	MaxBodyBytes     int64    `mapstructure:"max_body_bytes"`
}

func (hc *HTTP) AsRateLimitConfig() httpx.RateLimitConfig {
	return httpx.RateLimitConfig{PerHour: hc.RateLimitPerHour, TrustForwarded: hc.TrustForwarded}
}

type Config struct {
	App    App              `mapstructure:"app"`
	Server Server           `mapstructure:"server"`
	DB     pg.Config        `mapstructure:"db"`
	Redis  redisrepo.Config `mapstructure:"redis"`
	Kafka  Kafka            `mapstructure:"kafka"`
	Outbox Outbox           `mapstructure:"outbox"`
	OTEL   OTEL             `mapstructure:"otel"`
	Log    Log              `mapstructure:"log"`
	Auth   Auth             `mapstructure:"auth"`
	HTTP   HTTP             `mapstructure:"http"`
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }

const (
	ErrNoDSN           ErrConfig = "config: db.dsn is required"
	ErrNoRedis         ErrConfig = "config: redis.addr or redis.url is required"
	ErrNoAccessSecret  ErrConfig = "config: auth.access_secret is required"
	ErrNoRefreshSecret ErrConfig = "config: auth.refresh_secret is required"
	ErrSecretsEqual    ErrConfig = "config: auth.access_secret and auth.refresh_secret must differ"
	ErrNoKafkaBrokers  ErrConfig = "config: kafka.brokers is required when kafka is enabled"
	ErrNonPositiveTTL  ErrConfig = "config: auth token ttls must be positive"
)

func (c *Config) Validate() error {
	switch {
	case c.DB.DSN == "":
		return ErrNoDSN
	case c.Redis.Addr == "" && c.Redis.URL == "":
		return ErrNoRedis
	case c.Auth.AccessSecret == "":
		return ErrNoAccessSecret
	case c.Auth.RefreshSecret == "":
		return ErrNoRefreshSecret
	case c.Auth.AccessSecret == c.Auth.RefreshSecret:
		return ErrSecretsEqual
	case c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0:
		return ErrNonPositiveTTL
	case c.Kafka.Enable && len(c.Kafka.Brokers) == 0:
		return ErrNoKafkaBrokers
	}
	return nil
}
