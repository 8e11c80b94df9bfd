// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/supportdesk/lib/codec"
	"github.com/bureau-foundation/supportdesk/lib/testutil"
)

// sendRequest connects to a unix socket, sends a CBOR request, and
// returns the decoded response envelope.
func sendRequest(t *testing.T, socketPath string, request any) Response {
	t.Helper()

	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		t.Errorf("connecting to socket: %v", err)
		return Response{}
	}
	defer conn.Close()

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		t.Errorf("writing request: %v", err)
		return Response{}
	}
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	var response Response
	if err := codec.NewDecoder(conn).Decode(&response); err != nil {
		t.Errorf("decoding response: %v", err)
	}
	return response
}

// decodeData unmarshals the Data field of a response into target.
func decodeData(t *testing.T, response Response, target any) {
	t.Helper()
	if len(response.Data) == 0 {
		t.Error("response has no data to decode")
		return
	}
	if err := codec.Unmarshal(response.Data, target); err != nil {
		t.Errorf("decoding response data: %v", err)
	}
}

func testSocketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(testutil.SocketDir(t), "desk.sock")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// startServer runs server.Serve until the test ends and waits for the
// socket to listen.
func startServer(t *testing.T, server *SocketServer) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Serve(ctx); err != nil {
			t.Errorf("Serve: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "socket server ready")
}

func TestSocketServerSuccess(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	server.Handle("count-open", func(ctx context.Context, raw []byte) (any, error) {
		return map[string]any{"open": 3, "urgent": 1}, nil
	})
	startServer(t, server)

	response := sendRequest(t, socketPath, map[string]string{"action": "count-open"})
	if !response.OK {
		t.Fatalf("expected ok=true, got error %q", response.Error)
	}
	var data map[string]any
	decodeData(t, response, &data)
	if data["open"] != uint64(3) {
		t.Errorf("open = %v (%T), want 3", data["open"], data["open"])
	}
	if data["urgent"] != uint64(1) {
		t.Errorf("urgent = %v (%T), want 1", data["urgent"], data["urgent"])
	}
}

func TestSocketServerUnknownAction(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	server.Handle("list-tickets", func(ctx context.Context, raw []byte) (any, error) {
		return nil, nil
	})
	startServer(t, server)

	response := sendRequest(t, socketPath, map[string]string{"action": "delete-everything"})
	if response.OK {
		t.Error("expected ok=false for unknown action")
	}
	if response.Error != `unknown action "delete-everything"` {
		t.Errorf("error = %q", response.Error)
	}
}

func TestSocketServerMissingAction(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	startServer(t, server)

	response := sendRequest(t, socketPath, map[string]string{"ticket_id": "t1"})
	if response.OK {
		t.Error("expected ok=false without an action")
	}
	if response.Error != "missing required field: action" {
		t.Errorf("error = %q", response.Error)
	}
}

func TestSocketServerInvalidCBOR(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	startServer(t, server)

	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer conn.Close()

	conn.Write([]byte{0xff, 0xfe, 0xfd, 0xfc, 0xfb})
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	var response Response
	if err := codec.NewDecoder(conn).Decode(&response); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	if response.OK {
		t.Error("expected ok=false for invalid CBOR")
	}
}

func TestSocketServerHandlerError(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	server.Handle("get-ticket", func(ctx context.Context, raw []byte) (any, error) {
		return nil, fmt.Errorf("ticket t9 not found")
	})
	startServer(t, server)

	response := sendRequest(t, socketPath, map[string]string{"action": "get-ticket"})
	if response.OK {
		t.Error("expected ok=false")
	}
	if response.Error != "ticket t9 not found" {
		t.Errorf("error = %q, want %q", response.Error, "ticket t9 not found")
	}
}

func TestSocketServerNilResult(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	server.Handle("mark-read", func(ctx context.Context, raw []byte) (any, error) {
		return nil, nil
	})
	startServer(t, server)

	response := sendRequest(t, socketPath, map[string]string{"action": "mark-read"})
	if !response.OK {
		t.Errorf("expected ok=true, got error %q", response.Error)
	}
	if len(response.Data) != 0 {
		t.Errorf("expected no data, got %d bytes", len(response.Data))
	}
}

func TestSocketServerConcurrentRequests(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	server.Handle("echo", func(ctx context.Context, raw []byte) (any, error) {
		var request struct {
			Value int `cbor:"value"`
		}
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, err
		}
		return map[string]any{"value": request.Value}, nil
	})
	startServer(t, server)

	const concurrency = 20
	var clients sync.WaitGroup
	for i := range concurrency {
		clients.Add(1)
		go func() {
			defer clients.Done()
			response := sendRequest(t, socketPath, map[string]any{
				"action": "echo",
				"value":  i,
			})
			if !response.OK {
				t.Errorf("request %d: expected ok=true", i)
				return
			}
			var data map[string]any
			decodeData(t, response, &data)
			if data["value"] != uint64(i) {
				t.Errorf("request %d: value = %v", i, data["value"])
			}
		}()
	}
	clients.Wait()
}

func TestSocketServerGracefulShutdown(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())

	handlerStarted := make(chan struct{})
	handlerRelease := make(chan struct{})
	server.Handle("post-reply", func(ctx context.Context, raw []byte) (any, error) {
		close(handlerStarted)
		<-handlerRelease
		return map[string]any{"completed": true}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- server.Serve(ctx)
	}()
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "socket server ready")

	responses := make(chan Response, 1)
	go func() {
		responses <- sendRequest(t, socketPath, map[string]string{"action": "post-reply"})
	}()

	testutil.RequireClosed(t, handlerStarted, 5*time.Second, "handler started")
	close(handlerRelease)
	cancel()

	response := testutil.RequireReceive(t, responses, 5*time.Second, "in-flight response")
	if !response.OK {
		t.Errorf("expected ok=true for in-flight request, got error %q", response.Error)
	}

	if err := testutil.RequireReceive(t, serveDone, 5*time.Second, "Serve did not return after cancellation"); err != nil {
		t.Errorf("Serve returned error: %v", err)
	}
	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Error("socket file not cleaned up after Serve returned")
	}
}

func TestSocketServerRemovesStaleSocket(t *testing.T) {
	socketPath := testSocketPath(t)
	if err := os.WriteFile(socketPath, nil, 0o600); err != nil {
		t.Fatalf("creating stale file: %v", err)
	}
	server := NewSocketServer(socketPath, testLogger())
	server.Handle("ping", func(ctx context.Context, raw []byte) (any, error) {
		return nil, nil
	})
	startServer(t, server)

	if response := sendRequest(t, socketPath, map[string]string{"action": "ping"}); !response.OK {
		t.Fatalf("expected ok=true, got error %q", response.Error)
	}
}

func TestSocketServerDuplicateHandlerPanics(t *testing.T) {
	server := NewSocketServer("/tmp/unused.sock", testLogger())
	server.Handle("list-tickets", func(ctx context.Context, raw []byte) (any, error) {
		return nil, nil
	})

	defer func() {
		if recover() == nil {
			t.Error("expected panic for duplicate handler")
		}
	}()
	server.Handle("list-tickets", func(ctx context.Context, raw []byte) (any, error) {
		return nil, nil
	})
}
