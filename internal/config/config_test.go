package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.JWTIssuer != "workspace-auth" || cfg.JWTAudience != "workspace-api" {
		t.Errorf("JWT defaults wrong: iss=%q aud=%q", cfg.JWTIssuer, cfg.JWTAudience)
	}
	if cfg.KafkaTopic != "workspace-events" {
		t.Errorf("KafkaTopic = %q, want workspace-events", cfg.KafkaTopic)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("INVITE_TTL", "24h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q, want :9999", cfg.HTTPAddr)
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("BcryptCost = %d, want 10", cfg.BcryptCost)
	}
	if got := cfg.InvitationTTL(); got != 24*time.Hour {
		t.Errorf("InvitationTTL() = %v, want 24h", got)
	}
}

func TestLoadRejectsBadBcryptCost(t *testing.T) {
	t.Setenv("BCRYPT_COST", "99")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for out-of-range bcrypt cost")
	}
}

func TestAccessTTLFallback(t *testing.T) {
	cfg := &Config{JWTAccessTTL: "garbage"}
	if got := cfg.AccessTTL(); got != 15*time.Minute {
		t.Errorf("AccessTTL() = %v, want 15m fallback", got)
	}
}

func TestInvitationTTLFallback(t *testing.T) {
	cfg := &Config{}
	if got := cfg.InvitationTTL(); got != 168*time.Hour {
		t.Errorf("InvitationTTL() = %v, want 168h fallback", got)
	}
}

func TestKafkaBrokerList(t *testing.T) {
	cfg := &Config{KafkaBrokers: "localhost:9092, kafka-2:9092 ,"}
	got := cfg.KafkaBrokerList()
	if len(got) != 2 || got[0] != "localhost:9092" || got[1] != "kafka-2:9092" {
		t.Errorf("KafkaBrokerList() = %v", got)
	}
	if list := (&Config{}).KafkaBrokerList(); list != nil {
		t.Errorf("empty brokers should yield nil, got %v", list)
	}
}
