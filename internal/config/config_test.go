package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadDefaults(t *testing.T) {
	p := writeConfig(t, `
session:
  driver: memory
jwt:
  secret: "0123456789abcdef-secret"
`)
	c, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if c.HTTP.Addr != ":8080" || c.Upstream.BaseURL != "http://localhost:8081" || c.UpstreamTimeout().Seconds() != 15 {
		t.Fatalf("defaults = %+v", c)
	}
	if c.Cache.ListTTLSeconds != 5 || c.RateLimit.LoginBurst != 5 {
		t.Fatalf("defaults = %+v", c)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	p := writeConfig(t, `
session:
  driver: memory
jwt:
  secret: "0123456789abcdef-secret"
upstream:
  base_url: "http://file-value:8081"
`)
	t.Setenv("GARDEN_UPSTREAM_BASE_URL", "https://memorial.example.com")
	c, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if c.Upstream.BaseURL != "https://memorial.example.com" {
		t.Fatalf("base_url = %q", c.Upstream.BaseURL)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "짧은 jwt secret", body: "session:\n  driver: memory\njwt:\n  secret: short\n", wantErr: "jwt.secret"},
		{name: "redis 주소 없음", body: "jwt:\n  secret: 0123456789abcdef-secret\n", wantErr: "redis.addr"},
		{name: "알 수 없는 세션 드라이버", body: "session:\n  driver: file\njwt:\n  secret: 0123456789abcdef-secret\n", wantErr: "session.driver"},
		{name: "상대 경로 업스트림", body: "session:\n  driver: memory\nupstream:\n  base_url: /api\njwt:\n  secret: 0123456789abcdef-secret\n", wantErr: "upstream.base_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
