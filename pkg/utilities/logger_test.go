package utilities

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

func TestLevelFromString(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := levelFromString(in); got != want {
			t.Fatalf("levelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConfigFromEnvDevDefaultsToDebug(t *testing.T) {
	t.Setenv("LOG_DEV", "1")
	t.Setenv("LOG_LEVEL", "")
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !cfg.Dev || cfg.Level != "debug" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestInitWritesRotatingFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "service.log")
	lg, err := Init(Config{Level: "info", File: file, RotateEvery: time.Hour, MaxAge: 24 * time.Hour})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	lg.Sugar().Infow("hello", "component", "test")
	_ = lg.Sync()

	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log link: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"hello"`) {
		t.Fatalf("log line missing: %s", b)
	}
}

func TestInitDevModeAlsoWritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "dev.log")
	lg, err := Init(Config{Level: "debug", Dev: true, File: file, RotateEvery: time.Hour, MaxAge: 24 * time.Hour})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	lg.Sugar().Debugw("dev hello", "component", "test")
	_ = lg.Sync()

	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log link: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"dev hello"`) || !strings.Contains(string(b), `"level":"debug"`) {
		t.Fatalf("dev log line missing from file: %s", b)
	}
}
