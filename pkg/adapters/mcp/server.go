// Package mcp exposes a live editing session as Model Context Protocol
// tools, so agents can read and replace the grid, apply gestures and load
// reconstructed trace steps.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/rescuegrid/internal/editor"
	"github.com/aretw0/rescuegrid/internal/logging"
	"github.com/aretw0/rescuegrid/internal/trace"
	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/aretw0/rescuegrid/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SnapshotURI is the resource holding the current snapshot.
const SnapshotURI = "rescuegrid://snapshot"

const shutdownTimeout = 5 * time.Second

// Editor is the session surface the tools drive.
type Editor interface {
	ports.LiveEditor
	Begin(ctx context.Context, pos domain.Coord, button editor.Button) error
	Commit(ctx context.Context, pos domain.Coord, button editor.Button, mods editor.Modifiers) (editor.Effect, error)
}

// GestureArgs are the apply_gesture arguments. A gesture released on its
// anchor is a click.
type GestureArgs struct {
	FromX  int    `json:"from_x"`
	FromY  int    `json:"from_y"`
	ToX    *int   `json:"to_x,omitempty"`
	ToY    *int   `json:"to_y,omitempty"`
	Button string `json:"button,omitempty"`
	Shift  bool   `json:"shift,omitempty"`
}

// GestureResponse reports what a committed gesture did.
type GestureResponse struct {
	Effect string `json:"effect" jsonschema_description:"The resolved tool, e.g. 'paint FIRE', 'clear', 'set_drone'"`
	Min    []int  `json:"min" jsonschema_description:"Top-left [x, y] of the affected rectangle"`
	Max    []int  `json:"max" jsonschema_description:"Bottom-right [x, y] of the affected rectangle"`
}

// ReconstructArgs are the reconstruct_trace arguments.
type ReconstructArgs struct {
	Trace     string `json:"trace"`
	Format    string `json:"format,omitempty"`
	Cols      int    `json:"cols,omitempty"`
	Rows      int    `json:"rows,omitempty"`
	ApplyStep *int   `json:"apply_step,omitempty"`
}

// StepFailure lists the problems of one failed trace step.
type StepFailure struct {
	Step   int      `json:"step"`
	Errors []string `json:"errors"`
}

// ReconstructResponse summarizes a reconstructed trace.
type ReconstructResponse struct {
	Cols        int           `json:"cols"`
	Rows        int           `json:"rows"`
	Steps       int           `json:"steps"`
	Failed      []StepFailure `json:"failed" jsonschema_description:"Steps that could not be reconstructed"`
	AppliedStep *int          `json:"applied_step,omitempty" jsonschema_description:"The step loaded into the editor, if any"`
}

// Server wraps an editing session and exposes it as an MCP server.
type Server struct {
	editor    Editor
	store     ports.ScenarioStore
	logger    *slog.Logger
	version   string
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithStore enables the scenario tools.
func WithStore(store ports.ScenarioStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version reported to clients.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = strings.TrimSpace(version)
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(ed Editor, opts ...Option) *Server {
	s := &Server{
		editor:  ed,
		logger:  logging.NewNop(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("rescuegrid-mcp", s.version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves newline-delimited JSON-RPC from in to out until ctx is
// cancelled or in is exhausted. Protocol errors go to the logger so out
// only ever carries messages.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	s.logger.Info("MCP server listening (stdio)")
	return stdio.Listen(ctx, in, out)
}

// Handler returns the SSE transport: GET /sse opens the stream, POST
// /message carries client requests. baseURL is the externally visible
// address the stream advertises for /message.
func (s *Server) Handler(baseURL string) http.Handler {
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))
	r := chi.NewRouter()
	r.Use(corsMiddleware)
	r.Handle("/sse", sse.SSEHandler())
	r.Handle("/message", sse.MessageHandler())
	return r
}

// ServeSSE serves the SSE transport on ln until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, ln net.Listener) error {
	baseURL := "http://" + ln.Addr().String()
	srv := &http.Server{
		Handler:           s.Handler(baseURL),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "addr", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("could not stop MCP server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_snapshot",
		mcp.WithDescription("Return the current grid snapshot as JSON: cells and drones indexed [x][y], plus first_responders and survivors as [x, y] lists."),
	), s.handleGetSnapshot)

	s.mcpServer.AddTool(mcp.NewTool("replace_snapshot",
		mcp.WithDescription("Replace the whole grid. The snapshot must have the current dimensions."),
		mcp.WithString("snapshot", mcp.Required(), mcp.Description("Snapshot JSON in the get_snapshot format")),
	), s.handleReplaceSnapshot)

	s.mcpServer.AddTool(mcp.NewTool("apply_gesture",
		mcp.WithDescription("Press at (from_x, from_y) and release at (to_x, to_y), as a mouse would. Releasing on the press cell is a click: left cycles FIRE, EXIT, FIRST_RESPONDER, SURVIVOR forward, right backward. A drag stamps the last tool over the rectangle. Middle clears; shift toggles drones."),
		mcp.WithNumber("from_x", mcp.Required(), mcp.Description("Column of the press")),
		mcp.WithNumber("from_y", mcp.Required(), mcp.Description("Row of the press")),
		mcp.WithNumber("to_x", mcp.Description("Column of the release (default: from_x)")),
		mcp.WithNumber("to_y", mcp.Description("Row of the release (default: from_y)")),
		mcp.WithString("button", mcp.Enum("left", "right", "middle"), mcp.Description("Pointer button (default: left)")),
		mcp.WithBoolean("shift", mcp.Description("Hold shift to toggle drones")),
		mcp.WithOutputSchema[GestureResponse](),
	), mcp.NewStructuredToolHandler(s.handleGesture))

	s.mcpServer.AddTool(mcp.NewTool("reconstruct_trace",
		mcp.WithDescription("Reconstruct a simulation trace into grid snapshots and report failed steps. With apply_step, that step is loaded into the editor."),
		mcp.WithString("trace", mcp.Required(), mcp.Description("Trace content")),
		mcp.WithString("format", mcp.Enum("json", "yaml", "text"), mcp.Description("Trace encoding (default: json)")),
		mcp.WithNumber("cols", mcp.Description("Grid columns (default: inferred)")),
		mcp.WithNumber("rows", mcp.Description("Grid rows (default: inferred)")),
		mcp.WithNumber("apply_step", mcp.Description("Trace step to load into the editor")),
		mcp.WithOutputSchema[ReconstructResponse](),
	), mcp.NewStructuredToolHandler(s.handleReconstruct))

	if s.store == nil {
		return
	}

	s.mcpServer.AddTool(mcp.NewTool("list_scenarios",
		mcp.WithDescription("List the stored scenario names."),
	), s.handleListScenarios)

	s.mcpServer.AddTool(mcp.NewTool("save_scenario",
		mcp.WithDescription("Save the current grid under a scenario name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Scenario name")),
	), s.handleSaveScenario)

	s.mcpServer.AddTool(mcp.NewTool("open_scenario",
		mcp.WithDescription("Load a stored scenario into the editor. It must have the current dimensions."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Scenario name")),
	), s.handleOpenScenario)
}

func (s *Server) handleGetSnapshot(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.editor.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("snapshot failed: %v", err)), nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleReplaceSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("snapshot")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid snapshot: %v", err)), nil
	}
	if err := s.editor.Replace(ctx, &snap); err != nil {
		s.logger.Warn("MCP replace_snapshot rejected", "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("replace failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("replaced %dx%d snapshot", snap.Cols(), snap.Rows())), nil
}

func (s *Server) handleGesture(ctx context.Context, _ mcp.CallToolRequest, args GestureArgs) (GestureResponse, error) {
	button, err := parseButton(args.Button)
	if err != nil {
		return GestureResponse{}, err
	}
	mods := editor.ModNone
	if args.Shift {
		mods = editor.ModShift
	}
	from := domain.C(args.FromX, args.FromY)
	to := from
	if args.ToX != nil {
		to.X = *args.ToX
	}
	if args.ToY != nil {
		to.Y = *args.ToY
	}

	if err := s.editor.Begin(ctx, from, button); err != nil {
		return GestureResponse{}, fmt.Errorf("begin failed: %w", err)
	}
	effect, err := s.editor.Commit(ctx, to, button, mods)
	if err != nil {
		return GestureResponse{}, fmt.Errorf("commit failed: %w", err)
	}

	snap, err := s.editor.Snapshot(ctx)
	if err != nil {
		return GestureResponse{}, err
	}
	r := editor.NewRect(editor.Clamp(from, snap.Cols(), snap.Rows()), editor.Clamp(to, snap.Cols(), snap.Rows()))
	s.logger.Debug("MCP gesture committed", "effect", effect.String(), "from", from, "to", to)
	return GestureResponse{
		Effect: effect.String(),
		Min:    []int{r.Min.X, r.Min.Y},
		Max:    []int{r.Max.X, r.Max.Y},
	}, nil
}

func parseButton(name string) (editor.Button, error) {
	switch name {
	case "", "left":
		return editor.ButtonLeft, nil
	case "right":
		return editor.ButtonRight, nil
	case "middle":
		return editor.ButtonMiddle, nil
	default:
		return editor.ButtonNone, fmt.Errorf("unknown button %q (want left, right or middle)", name)
	}
}

func (s *Server) handleReconstruct(ctx context.Context, _ mcp.CallToolRequest, args ReconstructArgs) (ReconstructResponse, error) {
	format := trace.Format(args.Format)
	if format == "" {
		format = trace.FormatJSON
	}
	steps, err := trace.Decode(strings.NewReader(args.Trace), format)
	if err != nil {
		return ReconstructResponse{}, fmt.Errorf("decode trace: %w", err)
	}

	cols, rows := args.Cols, args.Rows
	if cols <= 0 || rows <= 0 {
		ic, ir, ok := trace.InferDimensions(steps)
		if !ok {
			return ReconstructResponse{}, errors.New("cannot infer grid dimensions: pass cols and rows")
		}
		if cols <= 0 {
			cols = ic
		}
		if rows <= 0 {
			rows = ir
		}
	}
	rec, err := trace.New(cols, rows, trace.WithLogger(s.logger))
	if err != nil {
		return ReconstructResponse{}, err
	}
	frames := rec.Reconstruct(steps)

	resp := ReconstructResponse{Cols: cols, Rows: rows, Steps: len(frames), Failed: []StepFailure{}}
	for _, f := range frames {
		if f.Err != nil {
			resp.Failed = append(resp.Failed, StepFailure{Step: f.Index, Errors: errorLines(f.Err)})
		}
	}

	if args.ApplyStep != nil {
		i := *args.ApplyStep
		if i < 0 || i >= len(frames) {
			return ReconstructResponse{}, fmt.Errorf("apply_step %d out of range [0,%d)", i, len(frames))
		}
		if frames[i].Err != nil {
			return ReconstructResponse{}, fmt.Errorf("trace step %d failed: %w", i, frames[i].Err)
		}
		if err := s.editor.Replace(ctx, frames[i].Snapshot); err != nil {
			return ReconstructResponse{}, fmt.Errorf("apply step %d: %w", i, err)
		}
		resp.AppliedStep = &i
	}
	return resp, nil
}

func errorLines(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		out := make([]string, 0, len(joined.Unwrap()))
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

func (s *Server) handleListScenarios(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.store.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	data, err := json.Marshal(names)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleSaveScenario(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.editor.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("snapshot failed: %v", err)), nil
	}
	if err := s.store.Save(ctx, name, snap); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("save failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved scenario %q", name)), nil
}

func (s *Server) handleOpenScenario(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.store.Load(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("open failed: %v", err)), nil
	}
	if err := s.editor.Replace(ctx, snap); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("open failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("opened scenario %q", name)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SnapshotURI, "Current grid snapshot",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		snap, err := s.editor.Snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot: %w", err)
		}
		data, err := json.Marshal(snap)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      SnapshotURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
