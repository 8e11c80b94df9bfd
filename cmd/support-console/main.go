// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// support-console is the administrator console: a terminal UI that
// keeps the ticket list and the open ticket in sync with the ticket
// backend, and rings the terminal bell when a customer writes on a
// ticket the administrator is not looking at.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/supportdesk/lib/clock"
	"github.com/bureau-foundation/supportdesk/lib/config"
	"github.com/bureau-foundation/supportdesk/lib/consoleui"
	"github.com/bureau-foundation/supportdesk/lib/process"
	"github.com/bureau-foundation/supportdesk/lib/schema/support"
	"github.com/bureau-foundation/supportdesk/lib/ticketclient"
	"github.com/bureau-foundation/supportdesk/lib/ticketsync"
	"github.com/bureau-foundation/supportdesk/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

// options holds the command-line flags.
type options struct {
	configPath string
	socketPath string
	logOutput  string
	noBell     bool
	status     string
	priority   string
	search     string
}

func run() error {
	var opts options
	flagSet := pflag.NewFlagSet("support-console", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "path to supportdesk.yaml (default: $SUPPORTDESK_CONFIG)")
	flagSet.StringVar(&opts.socketPath, "socket", "", "ticket backend socket (overrides console.socket_path)")
	flagSet.StringVar(&opts.logOutput, "log-output", "", "write JSON log records to this file (overrides logging.file)")
	flagSet.BoolVar(&opts.noBell, "no-bell", false, "do not ring the terminal bell on new customer messages")
	flagSet.StringVar(&opts.status, "status", "", "initial status filter (open, in_progress, resolved, closed)")
	flagSet.StringVar(&opts.priority, "priority", "", "initial priority filter (low, medium, high, urgent)")
	flagSet.StringVar(&opts.search, "search", "", "initial free-text search")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing to match the other binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("support-console")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
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
	if args := flagSet.Args(); len(args) > 0 {
		return process.Usagef("unexpected argument: %s", args[0])
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	sessionConfig, err := buildSessionConfig(cfg, opts)
	if err != nil {
		return err
	}

	statusHandler := consoleui.NewStatusLogHandler(slog.LevelWarn)
	logger := slog.New(statusHandler)
	logPath := cfg.Logging.File
	if opts.logOutput != "" {
		logPath = opts.logOutput
	}
	if logPath != "" {
		level, err := cfg.LogLevel()
		if err != nil {
			return err
		}
		fileHandler, closeFile, err := openFileLogHandler(logPath, level)
		if err != nil {
			return fmt.Errorf("opening log file %s: %w", logPath, err)
		}
		defer closeFile()
		logger = slog.New(fanoutHandler{statusHandler, fileHandler})
	}
	sessionConfig.Logger = logger

	bellEnabled := false
	if cfg.Console.Bell && !opts.noBell {
		bell := consoleui.NewBell(os.Stderr)
		bellEnabled = bell.Enabled()
		if !bellEnabled {
			logger.Info("stderr is not a terminal, new message alerts are silent")
		}
		sessionConfig.Alerter = bell
	}

	session, err := ticketsync.NewSession(sessionConfig)
	if err != nil {
		return err
	}
	events := session.Subscribe()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := session.Start(ctx); err != nil {
		return err
	}
	defer session.Stop()

	logger.Info("console started", "socket", cfg.Console.SocketPath, "bell", bellEnabled)

	program := tea.NewProgram(consoleui.NewModel(session, events), tea.WithAltScreen(), tea.WithContext(ctx))
	statusHandler.SetProgram(program)

	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
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

// buildSessionConfig maps configuration and flags onto a session
// config. Logger and Alerter are left for the caller.
func buildSessionConfig(cfg *config.Config, opts options) (ticketsync.Config, error) {
	timings, err := cfg.Console.Timings()
	if err != nil {
		return ticketsync.Config{}, err
	}

	if opts.socketPath != "" {
		cfg.Console.SocketPath = opts.socketPath
	}

	filters := support.Filters{
		Status:   support.Status(opts.status),
		Priority: support.Priority(opts.priority),
		Search:   opts.search,
	}
	if err := filters.Validate(); err != nil {
		return ticketsync.Config{}, process.Usagef("%v", err)
	}

	return ticketsync.Config{
		Backend:            ticketclient.New(cfg.Console.SocketPath),
		Clock:              clock.Real(),
		ActorRole:          support.RoleAdmin,
		ListInterval:       timings.ListInterval,
		DetailInterval:     timings.DetailInterval,
		FetchTimeout:       timings.FetchTimeout,
		ReadReceiptTimeout: timings.ReadReceiptTimeout,
		Filters:            filters,
	}, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `support-console: terminal console for the support desk.

Keeps the ticket list and the open ticket in sync with the ticket
backend. The list refreshes every console.list_interval and the open
ticket every console.detail_interval. A new customer message on a
ticket that is not open rings the terminal bell.

Usage:
  support-console [flags]

Examples:
  # Use the config named by $SUPPORTDESK_CONFIG
  support-console

  # Only urgent open tickets, against a local development backend
  support-console --config dev.yaml --status open --priority urgent

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
