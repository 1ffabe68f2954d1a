package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"

	"solidus/sitemap/internal/config"
)

func TestSetupRejectsBadLevel(t *testing.T) {
	if _, err := Setup(config.LogConfig{Level: "loud"}); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestSetupRejectsBadFormat(t *testing.T) {
	if _, err := Setup(config.LogConfig{Level: "info", Format: "xml"}); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestSetupWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitemap.log")

	closeLog, err := Setup(config.LogConfig{Level: "debug", Format: "json", File: path, MaxSize: 1})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	})

	if log.GetLevel() != log.DebugLevel {
		t.Fatalf("unexpected level %s", log.GetLevel())
	}

	log.WithField("run_id", "abc").Info("sitemap generated")
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"run_id":"abc"`) {
		t.Fatalf("log line missing from file: %s", data)
	}
}
