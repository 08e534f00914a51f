package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"chatty":  zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestReplaceCoreCapturesEntries(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	restore := ReplaceCore(core)
	defer restore()

	Infof("Loaded rows %d to %d", 0, 10)
	Debugf("hidden")
	With("table", "zones").Warn("skipped column", "column", "x")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "Loaded rows 0 to 10" {
		t.Errorf("unexpected message %q", entries[0].Message)
	}
	fields := entries[1].ContextMap()
	if fields["table"] != "zones" || fields["column"] != "x" {
		t.Errorf("unexpected fields %v", fields)
	}
}

func TestChildLoggerKeyValueSemantics(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	defer ReplaceCore(core)()

	log := With("run_id", "abc").With("source", "green")
	log.Info("Pipeline finished", "rows", 2)
	log.Error("Pipeline failed", "table", "green_tripdata_2025_11")
	log.Warnf("skipped %d columns", 3)
	Warnf("partial download %s", "data/zones.csv")
	Errorf("rollback of %s failed", "zones")

	entries := logs.All()
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	first := entries[0].ContextMap()
	if entries[0].Message != "Pipeline finished" || first["run_id"] != "abc" || first["source"] != "green" || first["rows"] != int64(2) {
		t.Errorf("unexpected first entry %q %v", entries[0].Message, first)
	}
	if entries[1].Level != zapcore.ErrorLevel || entries[1].ContextMap()["table"] != "green_tripdata_2025_11" {
		t.Errorf("unexpected error entry %v", entries[1].ContextMap())
	}
	want := []string{"skipped 3 columns", "partial download data/zones.csv", "rollback of zones failed"}
	for i, msg := range want {
		if got := entries[i+2].Message; got != msg {
			t.Errorf("entry %d = %q, want %q", i+2, got, msg)
		}
	}
	if entries[3].Level != zapcore.WarnLevel || entries[4].Level != zapcore.ErrorLevel {
		t.Errorf("levels = %v, %v", entries[3].Level, entries[4].Level)
	}
}

func TestInitLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ingest.log")
	if err := InitLogger(path, "info"); err != nil {
		t.Fatalf("InitLogger: %v", err)
	}
	Info("hello", "rows", 3)
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Errorf("log file missing entry: %s", data)
	}
}
