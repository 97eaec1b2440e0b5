package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := cfg.HTTPAddr(); got != ":80" {
		t.Errorf("HTTPAddr = %q, want %q", got, ":80")
	}
	if cfg.StaticDir != "./static" {
		t.Errorf("StaticDir = %q, want ./static", cfg.StaticDir)
	}
	if cfg.EntryDocument != "/index.html" {
		t.Errorf("EntryDocument = %q, want /index.html", cfg.EntryDocument)
	}
	if cfg.NotFoundDocument != "/not-found.html" {
		t.Errorf("NotFoundDocument = %q, want /not-found.html", cfg.NotFoundDocument)
	}
	if cfg.RestartDelay != time.Millisecond {
		t.Errorf("RestartDelay = %s, want 1ms", cfg.RestartDelay)
	}
	if !cfg.Compress {
		t.Error("Compress = false, want true")
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want INFO", cfg.LogLevel)
	}
}

func TestHTTPAddrPortPrecedence(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "default", env: nil, want: ":80"},
		{name: "legacy port", env: map[string]string{"REACT_APP_PORT": "3000"}, want: ":3000"},
		{name: "port wins", env: map[string]string{"PORT": "8080", "REACT_APP_PORT": "3000"}, want: ":8080"},
		{name: "host", env: map[string]string{"PORT": "9000", "HTTP_HOST": "127.0.0.1"}, want: "127.0.0.1:9000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got := cfg.HTTPAddr(); got != tt.want {
				t.Errorf("HTTPAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "port out of range", key: "PORT", val: "70000"},
		{name: "zero concurrency", key: "BUILD_CONCURRENCY", val: "0"},
		{name: "negative delay", key: "RESTART_DELAY", val: "-1s"},
		{name: "bad duration", key: "READ_TIMEOUT", val: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("Load with %s=%s: expected error", tt.key, tt.val)
			}
		})
	}
}
