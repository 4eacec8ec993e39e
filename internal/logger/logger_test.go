package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/Adda-Baaj/wirecard-go/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestInitWritesJSONWithLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log, err := initWithWriter(&config.Config{AppName: "wirecard", LogLevel: "warn"}, &buf)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer func() { S = nil }()

	log.InfoObj("hidden", "k", 1)
	log.ErrorObj("wirecard call failed", "wirecard_error", map[string]any{"status": "error", "message": "boom"})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["msg"] != "wirecard call failed" || entry["app"] != "wirecard" {
		t.Fatalf("unexpected entry %#v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("ts key missing: %#v", entry)
	}
	payload, ok := entry["wirecard_error"].(map[string]any)
	if !ok || payload["status"] != "error" || payload["message"] != "boom" {
		t.Fatalf("unexpected payload %#v", entry["wirecard_error"])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPackageHelpersAreSafeBeforeInit(t *testing.T) {
	S = nil
	InfoObj("x", "k", 1)
	ErrorObj("x", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
