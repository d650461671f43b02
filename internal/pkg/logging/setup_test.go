package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Vodeneev/nbaprops/internal/pkg/config"
)

func TestSetupLoggerWritesStdoutAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "props.log")
	var stdout bytes.Buffer

	logger, closer, err := setupLogger(config.LoggingConfig{Level: "info", File: path}, "props", &stdout)
	if err != nil {
		t.Fatalf("setupLogger: %v", err)
	}
	logger.Info("market stored", "market", "Points o/u", "rows", 12)
	logger.Debug("hidden")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	fileData, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for name, out := range map[string]string{"stdout": stdout.String(), "file": string(fileData)} {
		if !strings.Contains(out, "market stored") || !strings.Contains(out, "service=props") {
			t.Errorf("%s output missing record: %q", name, out)
		}
		if strings.Contains(out, "hidden") {
			t.Errorf("%s output contains debug record at info level", name)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"", false},
		{"debug", false},
		{"INFO", false},
		{"warning", false},
		{"error", false},
		{"verbose", true},
	}
	for _, tt := range tests {
		_, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}
