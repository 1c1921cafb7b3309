package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr            string   `mapstructure:"addr"`
		AllowedOrigins  []string `mapstructure:"allowed_origins"`
		CookieName      string   `mapstructure:"cookie_name"`
		CookieSecure    bool     `mapstructure:"cookie_secure"`
		ShutdownSeconds int      `mapstructure:"shutdown_seconds"`
	} `mapstructure:"http"`
	Upstream struct {
		BaseURL        string `mapstructure:"base_url"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
		UserAgent      string `mapstructure:"user_agent"`
	} `mapstructure:"upstream"`
	Session struct {
		// Driver redis|postgres|memory
		Driver     string `mapstructure:"driver"`
		TTLSeconds int    `mapstructure:"ttl_seconds"`
		KeyPrefix  string `mapstructure:"key_prefix"`
	} `mapstructure:"session"`
	Cache struct {
		ListTTLSeconds int `mapstructure:"list_ttl_seconds"`
		L1TTLSeconds   int `mapstructure:"l1_ttl_seconds"`
	} `mapstructure:"cache"`
	RateLimit struct {
		LoginPerMinute int `mapstructure:"login_per_minute"`
		LoginBurst     int `mapstructure:"login_burst"`
	} `mapstructure:"rate_limit"`
	Postgres struct {
		DSN         string `mapstructure:"dsn"`
		MaxOpen     int    `mapstructure:"max_open"`
		MaxIdle     int    `mapstructure:"max_idle"`
		AutoMigrate bool   `mapstructure:"auto_migrate"`
		LogLevel    string `mapstructure:"log_level"`
	} `mapstructure:"postgres"`
	Redis struct {
		Addr           string `mapstructure:"addr"`
		Password       string `mapstructure:"password"`
		DB             int    `mapstructure:"db"`
		DialTimeoutMS  int    `mapstructure:"dial_timeout_ms"`
		ReadTimeoutMS  int    `mapstructure:"read_timeout_ms"`
		WriteTimeoutMS int    `mapstructure:"write_timeout_ms"`
		PingTimeoutMS  int    `mapstructure:"ping_timeout_ms"`
		HeartbeatSec   int    `mapstructure:"heartbeat_sec"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers    []string `mapstructure:"brokers"`
		AuditTopic string   `mapstructure:"audit_topic"`
		QueueSize  int      `mapstructure:"queue_size"`
		Workers    int      `mapstructure:"workers"`
		MaxBatch   int      `mapstructure:"max_batch"`
		MaxWaitMS  int      `mapstructure:"max_wait_ms"`
	} `mapstructure:"kafka"`
	Etcd struct {
		Endpoints []string `mapstructure:"endpoints"`
		TTL       int      `mapstructure:"ttl"`
		Prefix    string   `mapstructure:"prefix"`
	} `mapstructure:"etcd"`
	JWT struct {
		Secret        string `mapstructure:"secret"`
		ExpireSeconds int    `mapstructure:"expire_seconds"`
		Issuer        string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	AppMeta struct {
		Name    string `mapstructure:"name"`
		Version string `mapstructure:"version"`
		Env     string `mapstructure:"env"`
	} `mapstructure:"app_meta"`
	OTel struct {
		Endpoint     string  `mapstructure:"endpoint"`
		Insecure     bool    `mapstructure:"insecure"`
		SamplerRatio float64 `mapstructure:"sampler_ratio"`
		Enable       bool    `mapstructure:"enable"`
	} `mapstructure:"otel"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cookie_name", "garden_console")
	v.SetDefault("http.shutdown_seconds", 10)
	v.SetDefault("upstream.base_url", "http://localhost:8081")
	v.SetDefault("upstream.timeout_seconds", 15)
	v.SetDefault("upstream.user_agent", "garden-console")
	v.SetDefault("session.driver", "redis")
	v.SetDefault("session.ttl_seconds", 7200)
	v.SetDefault("session.key_prefix", "console:")
	v.SetDefault("cache.list_ttl_seconds", 5)
	v.SetDefault("cache.l1_ttl_seconds", 60)
	v.SetDefault("rate_limit.login_per_minute", 10)
	v.SetDefault("rate_limit.login_burst", 5)
	v.SetDefault("redis.dial_timeout_ms", 1000)
	v.SetDefault("redis.read_timeout_ms", 500)
	v.SetDefault("redis.write_timeout_ms", 500)
	v.SetDefault("redis.ping_timeout_ms", 500)
	v.SetDefault("redis.heartbeat_sec", 10)
	v.SetDefault("postgres.log_level", "warn")
	v.SetDefault("kafka.audit_topic", "garden-console-audit")
	v.SetDefault("kafka.queue_size", 10000)
	v.SetDefault("kafka.workers", 1)
	v.SetDefault("kafka.max_batch", 50)
	v.SetDefault("kafka.max_wait_ms", 20)
	v.SetDefault("etcd.ttl", 10)
	v.SetDefault("etcd.prefix", "/services/garden-console")
	// 환경 변수만으로도 지정할 수 있도록 빈 기본값을 둔다
	for _, k := range []string{"jwt.secret", "redis.addr", "redis.password", "postgres.dsn", "kafka.brokers", "etcd.endpoints", "otel.endpoint"} {
		v.SetDefault(k, "")
	}
	v.SetDefault("jwt.expire_seconds", 7200)
	v.SetDefault("jwt.issuer", "garden-console")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("app_meta.name", "garden-console")
	v.SetDefault("app_meta.version", "v1")
	v.SetDefault("app_meta.env", "dev")
	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.sampler_ratio", 1.0)
	v.SetDefault("otel.insecure", true)
}

// Load path 의 YAML 을 읽는다. GARDEN_ 접두사 환경 변수가 파일 값을 덮어쓴다 (예: GARDEN_UPSTREAM_BASE_URL).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("GARDEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr required")
	}
	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("upstream.base_url must be an absolute url: %q", c.Upstream.BaseURL)
	}
	if c.Upstream.TimeoutSeconds <= 0 {
		return errors.New("upstream.timeout_seconds must >0")
	}
	switch c.Session.Driver {
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("redis.addr required when session.driver=redis")
		}
	case "postgres":
		if c.Postgres.DSN == "" {
			return errors.New("postgres.dsn required when session.driver=postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("session.driver must be redis|postgres|memory, got %q", c.Session.Driver)
	}
	if c.Session.TTLSeconds <= 0 {
		return errors.New("session.ttl_seconds must >0")
	}
	if len(c.JWT.Secret) < 16 {
		return errors.New("jwt.secret too short (>=16)")
	}
	if c.JWT.ExpireSeconds <= 0 {
		return errors.New("jwt.expire_seconds must >0")
	}
	if c.OTel.Enable {
		if c.OTel.Endpoint == "" {
			return errors.New("otel.endpoint required when otel.enable=true")
		}
		if c.OTel.SamplerRatio < 0 || c.OTel.SamplerRatio > 1 {
			return errors.New("otel.sampler_ratio must be in [0,1]")
		}
	}
	return nil
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLSeconds) * time.Second
}

func (c *Config) ListCacheTTL() time.Duration {
	return time.Duration(c.Cache.ListTTLSeconds) * time.Second
}
