package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"

	"github.com/aretw0/rescuegrid/internal/config"
	"github.com/aretw0/rescuegrid/internal/logging"
	"github.com/aretw0/rescuegrid/internal/session"
	mcpAdapter "github.com/aretw0/rescuegrid/pkg/adapters/mcp"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// MCPOptions configures RunMCP.
type MCPOptions struct {
	Config config.Config
	// Scenario, when set, seeds the session from the store.
	Scenario string

	Transport string
	Version   string
	Logger    *slog.Logger

	// In and Out replace Stdin and Stdout for the stdio transport.
	In  io.Reader
	Out io.Writer
	// Listener overrides Config.HTTP.Addr for the sse transport.
	Listener net.Listener
}

// RunMCP serves an editing session as MCP tools until ctx is cancelled or,
// on stdio, the client closes its input.
func RunMCP(ctx context.Context, opts MCPOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	transport := opts.Transport
	if transport == "" {
		transport = TransportStdio
	}
	if transport != TransportStdio && transport != TransportSSE {
		return fmt.Errorf("unknown transport %q (want %s or %s)", transport, TransportStdio, TransportSSE)
	}

	store, closeStore, err := OpenStore(opts.Config.Store, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	engine, err := newEngine(ctx, store, opts.Scenario, opts.Config.Grid, logger, debugHooks(logger))
	if err != nil {
		return err
	}
	sess := session.New(engine, session.WithStore(store), session.WithLogger(logger))

	sessCtx, stopSession := context.WithCancel(context.Background())
	defer stopSession()
	go func() {
		_ = sess.Run(sessCtx)
	}()

	srv := mcpAdapter.NewServer(sess,
		mcpAdapter.WithStore(store),
		mcpAdapter.WithLogger(logger),
		mcpAdapter.WithVersion(opts.Version),
	)

	if transport == TransportStdio {
		in, out := opts.In, opts.Out
		if in == nil {
			in = os.Stdin
		}
		if out == nil {
			out = os.Stdout
		}
		return handleExecutionError(srv.ServeStdio(ctx, in, out))
	}

	ln := opts.Listener
	if ln == nil {
		if ln, err = net.Listen("tcp", opts.Config.HTTP.Addr); err != nil {
			return fmt.Errorf("failed to listen on %s: %w", opts.Config.HTTP.Addr, err)
		}
	}
	return srv.ServeSSE(ctx, ln)
}
