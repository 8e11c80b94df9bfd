// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/supportdesk/lib/process"
	"github.com/bureau-foundation/supportdesk/lib/ticketclient"
)

// postTimeout bounds the post subcommand's single request.
const postTimeout = 10 * time.Second

// runPost implements "support-desk-service post": it sends one
// customer message to a running backend.
func runPost(args []string) error {
	var configPath, socketPath, ticketID, senderName string
	flagSet := pflag.NewFlagSet("support-desk-service post", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to supportdesk.yaml (default: $SUPPORTDESK_CONFIG)")
	flagSet.StringVar(&socketPath, "socket", "", "backend socket (overrides desk.socket_path)")
	flagSet.StringVar(&ticketID, "ticket", "", "ticket to write on (required)")
	flagSet.StringVar(&senderName, "name", "", "customer display name")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return process.Usagef("%v", err)
	}
	if ticketID == "" {
		return process.Usagef("--ticket is required")
	}
	text := strings.TrimSpace(strings.Join(flagSet.Args(), " "))
	if text == "" {
		return process.Usagef("a message is required")
	}

	if socketPath == "" {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		socketPath = cfg.Desk.SocketPath
	}

	ctx, cancel := context.WithTimeout(context.Background(), postTimeout)
	defer cancel()
	ticket, err := ticketclient.New(socketPath).PostUserMessage(ctx, ticketID, text, senderName)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s now has %d messages\n", ticket.ID, len(ticket.Messages))
	return nil
}
