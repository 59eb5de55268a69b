package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		MongoURI:          DefaultMongoURI,
		MongoDatabaseName: DefaultMongoDatabaseName,
		MongoConnTimeout:  DefaultMongoConnTimeout,
		Port:              DefaultPort,
		RateLimitRequests: DefaultRateLimitRequests,
		RateLimitWindow:   DefaultRateLimitWindow,
		RequestTimeout:    DefaultRequestTimeout,
		IdempotencyTTL:    DefaultIdempotencyTTL,
		MaxRequestSize:    DefaultMaxRequestSize,
		ReadTimeout:       DefaultReadTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		ShutdownTimeout:   DefaultShutdownTimeout,
		RoomLockEnabled:   DefaultRoomLockEnabled,
		RoomLockTTL:       DefaultRoomLockTTL,
	}
}

func TestValidate_Defaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantMsg string
	}{
		{"bad port", func(cfg *Config) { cfg.Port = "0" }, "Port must be between"},
		{"non-numeric port", func(cfg *Config) { cfg.Port = "http" }, "Port must be between"},
		{"empty mongo uri", func(cfg *Config) { cfg.MongoURI = "" }, "MongoURI cannot be empty"},
		{"bad mongo scheme", func(cfg *Config) { cfg.MongoURI = "postgres://localhost" }, "MongoURI must start with"},
		{"empty database", func(cfg *Config) { cfg.MongoDatabaseName = "" }, "MongoDatabaseName cannot be empty"},
		{"zero read timeout", func(cfg *Config) { cfg.ReadTimeout = 0 }, "ReadTimeout must be positive"},
		{"zero lock ttl", func(cfg *Config) { cfg.RoomLockTTL = 0 }, "RoomLockTTL must be positive"},
		{"zero rate limit", func(cfg *Config) { cfg.RateLimitRequests = 0 }, "RateLimitRequests must be positive"},
		{"events without topic", func(cfg *Config) {
			cfg.EventsEnabled = true
			cfg.BookingEventsTopic = " "
		}, "BookingEventsTopic cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error containing %q", tt.wantMsg)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got: %v", tt.wantMsg, err)
			}
		})
	}
}

func TestValidate_LockTTLIgnoredWhenDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.RoomLockEnabled = false
	cfg.RoomLockTTL = 0

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error with locking disabled, got: %v", err)
	}
}

func TestValidate_AccumulatesAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "99999"
	cfg.MongoDatabaseName = ""
	cfg.WriteTimeout = -time.Second

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"1. ", "2. ", "3. "} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected numbered entry %q in %v", want, err)
		}
	}
}

func TestRedactMongoURI(t *testing.T) {
	got := redactMongoURI("mongodb://admin:s3cret@db:27017")
	if strings.Contains(got, "s3cret") || strings.Contains(got, "admin") {
		t.Errorf("expected credentials to be redacted, got %s", got)
	}
	if got != "mongodb://***:***@db:27017" {
		t.Errorf("unexpected redaction result: %s", got)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv(EnvRoomLockEnabled, "false")
	t.Setenv(EnvRoomLockTTL, "3s")
	t.Setenv(EnvRateLimitRequests, "not-a-number")

	if getEnvBool(EnvRoomLockEnabled, true) {
		t.Errorf("expected ROOM_LOCK_ENABLED=false to be parsed")
	}
	if got := getEnvDuration(EnvRoomLockTTL, time.Second); got != 3*time.Second {
		t.Errorf("expected 3s, got %s", got)
	}
	if got := getEnvNum(EnvRateLimitRequests, 7); got != 7 {
		t.Errorf("expected fallback 7 for unparsable value, got %d", got)
	}
}
