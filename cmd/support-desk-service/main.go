// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// support-desk-service is the development ticket backend. It holds
// tickets in memory, optionally seeded from a JSONC file, and serves
// the console's socket protocol.
//
// The "post" subcommand writes a message on a ticket as the customer,
// which is how a developer triggers console alerts by hand:
//
//	support-desk-service post --ticket tkt-1 "Any update?"
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/supportdesk/lib/clock"
	"github.com/bureau-foundation/supportdesk/lib/config"
	"github.com/bureau-foundation/supportdesk/lib/process"
	"github.com/bureau-foundation/supportdesk/lib/service"
	"github.com/bureau-foundation/supportdesk/lib/ticketbackend"
	"github.com/bureau-foundation/supportdesk/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

func run(args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "--version":
			version.Print("support-desk-service")
			return nil
		case "post":
			return runPost(args[1:])
		}
	}

	var configPath, socketPath, seedPath string
	flagSet := pflag.NewFlagSet("support-desk-service", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to supportdesk.yaml (default: $SUPPORTDESK_CONFIG)")
	flagSet.StringVar(&socketPath, "socket", "", "listen socket (overrides desk.socket_path)")
	flagSet.StringVar(&seedPath, "seed", "", "JSONC ticket seed file (overrides desk.seed_file)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return process.Usagef("%v", err)
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return process.Usagef("unexpected argument: %s", rest[0])
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if socketPath != "" {
		cfg.Desk.SocketPath = socketPath
	}
	if seedPath != "" {
		cfg.Desk.SeedFile = seedPath
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, clock.Real(), logger)
}

// newServer loads the seed and returns a socket server with the
// desk's actions registered.
func newServer(cfg *config.Config, timeSource clock.Clock, logger *slog.Logger) (*service.SocketServer, error) {
	desk := ticketbackend.New(timeSource, logger)
	if cfg.Desk.SeedFile != "" {
		tickets, err := ticketbackend.LoadSeedFile(cfg.Desk.SeedFile)
		if err != nil {
			return nil, err
		}
		if err := desk.Load(tickets); err != nil {
			return nil, fmt.Errorf("loading seed %s: %w", cfg.Desk.SeedFile, err)
		}
		logger.Info("seed loaded", "path", cfg.Desk.SeedFile, "tickets", desk.Len())
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Desk.SocketPath), 0755); err != nil {
		return nil, fmt.Errorf("creating socket directory: %w", err)
	}

	server := service.NewSocketServer(cfg.Desk.SocketPath, logger)
	desk.Register(server, timeSource.Now())
	return server, nil
}

// serve runs the backend until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, timeSource clock.Clock, logger *slog.Logger) error {
	server, err := newServer(cfg, timeSource, logger)
	if err != nil {
		return err
	}
	logger.Info("support desk service running",
		"socket", cfg.Desk.SocketPath,
		"environment", cfg.Environment,
	)
	err = server.Serve(ctx)
	logger.Info("shutting down")
	return err
}

// loadConfig loads the file named by --config, or by
// SUPPORTDESK_CONFIG when the flag is empty, and validates it.
func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `support-desk-service: in-memory ticket backend for development.

Serves list-tickets, get-ticket, mark-read, post-reply, and
post-user-message on a unix socket. State is lost on exit.

Usage:
  support-desk-service [flags]
  support-desk-service post --ticket ID [--name NAME] MESSAGE

Examples:
  # Serve the tickets in seed.jsonc
  support-desk-service --config dev.yaml --seed seed.jsonc

  # Write on tkt-1 as the customer
  support-desk-service post --ticket tkt-1 "Still broken after the reboot"

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
