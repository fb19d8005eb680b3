package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.SmallTimeout != 10*time.Second || cfg.LargeTimeout != 20*time.Second {
		t.Errorf("unexpected timeouts: %v / %v", cfg.SmallTimeout, cfg.LargeTimeout)
	}
	if cfg.Pause != 500*time.Millisecond || cfg.MiniPause != 300*time.Millisecond || cfg.SyncInterval != 50*time.Millisecond {
		t.Errorf("unexpected pause tiers: %v %v %v", cfg.Pause, cfg.MiniPause, cfg.SyncInterval)
	}
	if !cfg.Scroll {
		t.Error("expected scrolling to be enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate: %v", err)
	}
}

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
small_timeout: 3s
scroll: false
pause: 100ms
screen_wait: 2s
log:
  level: debug
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SmallTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.SmallTimeout)
	}
	if cfg.Scroll {
		t.Error("expected scroll to be disabled")
	}
	if cfg.Pause != 100*time.Millisecond {
		t.Errorf("expected 100ms, got %v", cfg.Pause)
	}
	if cfg.ScreenWait != 2*time.Second {
		t.Errorf("expected 2s, got %v", cfg.ScreenWait)
	}
	if cfg.LargeTimeout != 20*time.Second {
		t.Errorf("expected untouched default, got %v", cfg.LargeTimeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug, got %q", cfg.Log.Level)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero pause", "pause: 0s"},
		{"negative timeout", "small_timeout: -1s"},
		{"negative screen wait", "screen_wait: -5s"},
		{"empty backend", `backend: ""`},
		{"bad level", "log: {level: loud}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}

	if _, err := Parse([]byte("pause: [")); err == nil || errors.Is(err, ErrInvalid) {
		t.Errorf("expected a parse error, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uisync.yaml")
	if err := os.WriteFile(path, []byte("backend: scene\nscene: demo.yaml\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scene != "demo.yaml" {
		t.Errorf("expected scene path, got %q", cfg.Scene)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}
