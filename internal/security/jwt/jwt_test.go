package jwt

import (
	"testing"
	"time"
)

func TestGenerateParse(t *testing.T) {
	m := NewManager("0123456789abcdef0123", 60, "garden-console")
	tok, err := m.Generate("sid-1", "admin1")
	if err != nil {
		t.Fatal(err)
	}
	c, err := m.Parse(tok)
	if err != nil {
		t.Fatal(err)
	}
	if c.SessionID != "sid-1" || c.AdminID != "admin1" {
		t.Fatalf("claims = %+v", c)
	}

	other := NewManager("another-secret-0123456", 60, "garden-console")
	if _, err := other.Parse(tok); err == nil {
		t.Fatal("token signed with another secret must fail")
	}
}

func TestExpiredToken(t *testing.T) {
	m := &Manager{secret: []byte("0123456789abcdef0123"), expire: -time.Minute, issuer: "garden-console"}
	tok, err := m.Generate("sid", "a")
	if err != nil {
		t.Fatal(err)
	}
	_, err = m.Parse(tok)
	if !IsExpired(err) {
		t.Fatalf("err = %v, want expired", err)
	}
}
