package logger

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		logFile string
	}{
		{name: "debug level, no file", level: "debug"},
		{name: "info level, no file", level: "info"},
		{name: "warn level, no file", level: "warn"},
		{name: "error level, no file", level: "error"},
		{name: "unknown level defaults to info", level: "loud"},
		{name: "with log file", level: "info", logFile: filepath.Join(t.TempDir(), "test.log")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Log = nil

			if err := Init(tt.level, tt.logFile); err != nil {
				t.Fatalf("Init() error = %v", err)
			}
			if Log == nil {
				t.Fatal("Init() succeeded but Log is nil")
			}

			_ = Sync()
			if tt.logFile != "" {
				_ = os.Remove(tt.logFile)
			}
		})
	}
}

func TestSync(t *testing.T) {
	Log, _ = zap.NewDevelopment()
	_ = Sync()

	Log = nil
	if err := Sync(); err != nil {
		t.Errorf("Sync() with nil logger returned %v, want nil", err)
	}
}

func TestInitWritesToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "app.log")

	if err := Init("info", logFile); err != nil {
		t.Fatalf("Init() with log file failed: %v", err)
	}

	Log.Info("test message")
	_ = Sync()

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		t.Error("log file was not created")
	}
}
