// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/supportdesk/lib/config"
	"github.com/bureau-foundation/supportdesk/lib/process"
	"github.com/bureau-foundation/supportdesk/lib/schema/support"
)

func TestBuildSessionConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Console.ListInterval = "2s"
	cfg.Console.SocketPath = "/run/desk.sock"

	sessionConfig, err := buildSessionConfig(cfg, options{socketPath: "/tmp/other.sock", status: "open", search: "vpn"})
	if err != nil {
		t.Fatalf("buildSessionConfig: %v", err)
	}
	if sessionConfig.ListInterval != 2*time.Second || sessionConfig.DetailInterval != 3*time.Second {
		t.Errorf("intervals = %s/%s", sessionConfig.ListInterval, sessionConfig.DetailInterval)
	}
	want := support.Filters{Status: support.StatusOpen, Search: "vpn"}
	if sessionConfig.Filters != want {
		t.Errorf("filters = %+v, want %+v", sessionConfig.Filters, want)
	}
	if cfg.Console.SocketPath != "/tmp/other.sock" {
		t.Errorf("--socket did not override the configured socket: %s", cfg.Console.SocketPath)
	}
	if sessionConfig.Backend == nil || sessionConfig.ActorRole != support.RoleAdmin {
		t.Errorf("session config = %+v", sessionConfig)
	}
}

func TestBuildSessionConfigRejectsBadFilter(t *testing.T) {
	_, err := buildSessionConfig(config.Default(), options{priority: "whenever"})
	if err == nil {
		t.Fatal("accepted an unknown priority")
	}
	if process.ExitCode(err) != 2 {
		t.Errorf("exit code = %d, want 2 for a usage error", process.ExitCode(err))
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supportdesk.yaml")
	if err := os.WriteFile(path, []byte("console:\n  fetch_timeout: never\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := loadConfig(path); err == nil || !strings.Contains(err.Error(), "console.fetch_timeout") {
		t.Fatalf("loadConfig = %v, want a fetch_timeout validation error", err)
	}

	t.Setenv(config.EnvVar, "")
	if _, err := loadConfig(""); err == nil {
		t.Fatal("loadConfig without --config or SUPPORTDESK_CONFIG succeeded")
	}
}

func TestFanoutHandler(t *testing.T) {
	var warnOnly, everything bytes.Buffer
	handler := fanoutHandler{
		slog.NewTextHandler(&warnOnly, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewTextHandler(&everything, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}
	if !handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("fanout disabled for a level one handler accepts")
	}

	logger := slog.New(handler).With("component", "console")
	logger.Debug("polling")
	logger.Warn("list refresh failed")

	if strings.Contains(warnOnly.String(), "polling") {
		t.Error("warn handler received a debug record")
	}
	if !strings.Contains(warnOnly.String(), "list refresh failed") || !strings.Contains(warnOnly.String(), "component=console") {
		t.Errorf("warn handler output = %q", warnOnly.String())
	}
	if strings.Count(everything.String(), "component=console") != 2 {
		t.Errorf("debug handler output = %q", everything.String())
	}
}
