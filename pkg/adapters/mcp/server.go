package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const sessionURIPrefix = "arbor://sessions/"

// FrameResponse provides a unified structure across adapters.
type FrameResponse struct {
	ID     string              `json:"id"`
	Markup string              `json:"markup"`
	Tree   *domain.Snapshot    `json:"tree"`
	Report domain.CommitReport `json:"report"`
}

// frameSchema describes FrameResponse. Snapshot trees nest through
// children, which reflection cannot express, so the node is a $ref.
var frameSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string", "description": "The container (session) ID"},
    "markup": {"type": "string", "description": "The committed tree as HTML-like markup"},
    "tree": {"$ref": "#/$defs/node", "description": "The committed host tree"},
    "report": {
      "type": "object",
      "description": "Effects applied by the last commit",
      "properties": {
        "pass": {"type": "integer"},
        "effects": {
          "type": ["array", "null"],
          "items": {
            "type": "object",
            "properties": {
              "tag": {"type": "string", "enum": ["NONE", "PLACEMENT", "UPDATE", "DELETION"]},
              "kind": {"type": "string"},
              "path": {"type": "string"},
              "changed": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["tag", "kind", "path"]
          }
        },
        "deletions": {"type": "integer"},
        "units": {"type": "integer"},
        "duration": {"type": "integer", "description": "Nanoseconds"}
      }
    }
  },
  "required": ["id", "markup", "tree", "report"],
  "$defs": {
    "node": {
      "type": "object",
      "properties": {
        "kind": {"type": "string"},
        "attrs": {"type": "object"},
        "text": {"type": "string"},
        "events": {"type": "array", "items": {"type": "string"}},
        "children": {"type": "array", "items": {"$ref": "#/$defs/node"}}
      },
      "required": ["kind"]
    }
  }
}`)

// OpenArgs are the arguments of the open_session tool.
type OpenArgs struct {
	ID string `json:"id,omitempty"`
}

// DispatchArgs are the arguments of the dispatch_event tool.
type DispatchArgs struct {
	SessionID string `json:"session_id"`
	Target    string `json:"target"`
	Event     string `json:"event"`
	Payload   string `json:"payload,omitempty"`
}

// SnapshotArgs are the arguments of the get_snapshot tool.
type SnapshotArgs struct {
	SessionID string `json:"session_id"`
}

// Server wraps a session manager and exposes it as an MCP Server.
type Server struct {
	sessions  *session.Manager
	views     ports.ViewLoader
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithViews exposes the view catalogue through the list_views tool.
func WithViews(views ports.ViewLoader) Option {
	return func(s *Server) {
		s.views = views
	}
}

// WithLogger configures the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		mcpServer: server.NewMCPServer("arbor-mcp", strings.TrimSpace(arbor.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Baggage, Sentry-Trace")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: open_session
	openTool := mcp.NewTool("open_session",
		mcp.WithDescription("Open (or reattach to) a rendered container and return its committed tree."),
		mcp.WithString("id", mcp.Description("Container ID. A new one is generated when omitted.")),
		mcp.WithRawOutputSchema(frameSchema),
	)
	s.mcpServer.AddTool(openTool, mcp.NewStructuredToolHandler(s.handleOpen))

	// TOOL: dispatch_event
	dispatchTool := mcp.NewTool("dispatch_event",
		mcp.WithDescription("Deliver an event to the node whose id attribute is target, then commit the resulting render."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Container ID")),
		mcp.WithString("target", mcp.Required(), mcp.Description("The id attribute of the node")),
		mcp.WithString("event", mcp.Required(), mcp.Description("Event name, e.g. click")),
		mcp.WithString("payload", mcp.Description("Event payload (optional)")),
		mcp.WithRawOutputSchema(frameSchema),
	)
	s.mcpServer.AddTool(dispatchTool, mcp.NewStructuredToolHandler(s.handleDispatch))

	// TOOL: get_snapshot
	snapshotTool := mcp.NewTool("get_snapshot",
		mcp.WithDescription("Read the last persisted tree of a container."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Container ID")),
		mcp.WithRawOutputSchema(frameSchema),
	)
	s.mcpServer.AddTool(snapshotTool, mcp.NewStructuredToolHandler(s.handleSnapshot))

	// TOOL: list_views
	s.mcpServer.AddTool(mcp.NewTool("list_views",
		mcp.WithDescription("List the view documents that can be rendered."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if s.views == nil {
			return mcp.NewToolResultError("no view catalogue configured"), nil
		}
		ids, err := s.views.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleOpen(ctx context.Context, request mcp.CallToolRequest, args OpenArgs) (FrameResponse, error) {
	sess, err := s.sessions.Open(ctx, args.ID)
	if err != nil {
		return FrameResponse{}, fmt.Errorf("open failed: %w", err)
	}
	frame, err := s.sessions.Frame(ctx, sess.ID)
	if err != nil {
		return FrameResponse{}, err
	}
	return frameResponse(frame), nil
}

func (s *Server) handleDispatch(ctx context.Context, request mcp.CallToolRequest, args DispatchArgs) (FrameResponse, error) {
	var payload any
	if args.Payload != "" {
		clean, err := runner.SanitizeInput(args.Payload)
		if err != nil {
			s.logger.Warn("MCP Dispatch: Payload rejected", "err", err, "size", len(args.Payload))
			return FrameResponse{}, fmt.Errorf("payload rejected: %w", err)
		}
		payload = clean
	}

	frame, handled, err := s.sessions.DispatchFrame(ctx, args.SessionID, args.Target, args.Event, payload)
	if err != nil {
		return FrameResponse{}, fmt.Errorf("dispatch failed: %w", err)
	}
	if !handled {
		return FrameResponse{}, fmt.Errorf("no %q listener on %q", args.Event, args.Target)
	}
	return frameResponse(frame), nil
}

// handleSnapshot answers from the live session when this process holds one,
// and from the store otherwise (without a report).
func (s *Server) handleSnapshot(ctx context.Context, request mcp.CallToolRequest, args SnapshotArgs) (FrameResponse, error) {
	if _, ok := s.sessions.Get(args.SessionID); ok {
		frame, err := s.sessions.Frame(ctx, args.SessionID)
		if err == nil {
			return frameResponse(frame), nil
		}
		if !errors.Is(err, session.ErrSessionNotFound) {
			return FrameResponse{}, fmt.Errorf("snapshot failed: %w", err)
		}
	}
	snap, err := s.sessions.Snapshot(ctx, args.SessionID)
	if err != nil {
		return FrameResponse{}, fmt.Errorf("snapshot failed: %w", err)
	}
	return FrameResponse{ID: args.SessionID, Markup: snap.Markup(), Tree: snap}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: arbor://sessions
	s.mcpServer.AddResource(mcp.NewResource("arbor://sessions", "Persisted Containers",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "arbor://sessions",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	// EXPOSE: arbor://sessions/{id}
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(sessionURIPrefix+"{id}", "Container Markup",
		mcp.WithTemplateMIMEType("text/html"),
	), s.readSession)
}

func (s *Server) readSession(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	id := strings.TrimPrefix(uri, sessionURIPrefix)
	if id == "" || id == uri {
		return nil, fmt.Errorf("invalid session uri: %s", uri)
	}
	snap, err := s.sessions.Snapshot(ctx, id)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		return nil, fmt.Errorf("%w: %s", session.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/html",
			Text:     snap.Markup(),
		},
	}, nil
}

func frameResponse(f session.Frame) FrameResponse {
	return FrameResponse{ID: f.ID, Markup: f.Tree.Markup(), Tree: f.Tree, Report: f.Report}
}
