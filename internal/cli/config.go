package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config gardenctl 설정. 파일은 선택이며 GARDEN_ 환경 변수가 우선한다.
type Config struct {
	Upstream struct {
		BaseURL        string `mapstructure:"base_url"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
		UserAgent      string `mapstructure:"user_agent"`
	} `mapstructure:"upstream"`
	Session struct {
		Dir    string `mapstructure:"dir"`
		Secret string `mapstructure:"secret"`
	} `mapstructure:"session"`
	Postgres struct {
		DSN      string `mapstructure:"dsn"`
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"postgres"`
	Kafka struct {
		Brokers    []string `mapstructure:"brokers"`
		AuditTopic string   `mapstructure:"audit_topic"`
		GroupID    string   `mapstructure:"archive_group"`
	} `mapstructure:"kafka"`
	Etcd struct {
		Endpoints []string `mapstructure:"endpoints"`
		Prefix    string   `mapstructure:"prefix"`
	} `mapstructure:"etcd"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

func defaultSessionDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "gardenctl")
	}
	return ".gardenctl"
}

// LoadConfig path 가 비어 있으면 기본값과 환경 변수만 쓴다.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("upstream.base_url", "http://localhost:8081")
	v.SetDefault("upstream.timeout_seconds", 15)
	v.SetDefault("upstream.user_agent", "gardenctl")
	v.SetDefault("session.dir", defaultSessionDir())
	v.SetDefault("session.secret", "")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.log_level", "warn")
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.audit_topic", "garden-console-audit")
	v.SetDefault("kafka.archive_group", "garden-audit-archiver")
	v.SetDefault("etcd.endpoints", "")
	v.SetDefault("etcd.prefix", "/services/garden-console")
	v.SetDefault("log.level", "warn")
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
	// 환경 변수의 콤마 목록
	c.Kafka.Brokers = splitList(c.Kafka.Brokers)
	c.Etcd.Endpoints = splitList(c.Etcd.Endpoints)
	if c.Upstream.BaseURL == "" {
		return nil, errors.New("upstream.base_url required")
	}
	if c.Session.Dir == "" {
		return nil, errors.New("session.dir required")
	}
	return &c, nil
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}

func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
