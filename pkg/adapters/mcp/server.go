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

	"github.com/aretw0/relay"
	"github.com/aretw0/relay/internal/logging"
	"github.com/aretw0/relay/pkg/conversation"
	"github.com/aretw0/relay/pkg/domain"
	"github.com/aretw0/relay/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolsURI is the resource listing the tools the assistant may call.
const ToolsURI = "relay://tools"

// AskArgs are the arguments of the ask tool.
type AskArgs struct {
	ThreadID string `json:"thread_id,omitempty"`
	Message  string `json:"message"`
}

// AskResponse is the structured result of the ask tool.
type AskResponse struct {
	ThreadID string `json:"thread_id" jsonschema_description:"Thread the message was appended to, reuse it to continue the conversation"`
	Reply    string `json:"reply" jsonschema_description:"Text of the newest assistant message"`
}

// Catalog lists the tools the assistant may call.
type Catalog interface {
	Tools() []domain.Tool
}

// Server exposes the relay conversation as an MCP server.
type Server struct {
	threads   runner.ThreadEnsurer
	asker     runner.Asker
	catalog   Catalog
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(threads runner.ThreadEnsurer, asker runner.Asker, catalog Catalog, opts ...Option) *Server {
	s := &Server{
		threads:   threads,
		asker:     asker,
		catalog:   catalog,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("relay-mcp", strings.TrimSpace(relay.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	askTool := mcp.NewTool("ask",
		mcp.WithDescription("Send a message to the assistant and wait for its reply. Omit thread_id to start a new conversation."),
		mcp.WithString("thread_id", mcp.Description("Thread to continue (optional)")),
		mcp.WithString("message", mcp.Required(), mcp.Description("User message")),
		mcp.WithOutputSchema[AskResponse](),
	)
	s.mcpServer.AddTool(askTool, mcp.NewStructuredToolHandler(s.handleAsk))

	s.mcpServer.AddTool(mcp.NewTool("list_tools",
		mcp.WithDescription("List the local tools the assistant may call."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := s.catalogJSON()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	})
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest, args AskArgs) (AskResponse, error) {
	text, err := conversation.Clean(args.Message, 0)
	if err != nil {
		s.logger.Warn("MCP ask: input rejected", "err", err, "size", len(args.Message))
		return AskResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	thread, err := s.threads.EnsureThread(ctx, args.ThreadID)
	if err != nil {
		return AskResponse{}, fmt.Errorf("thread: %w", err)
	}

	reply, err := s.asker.Ask(ctx, thread, text)
	if err != nil {
		s.logger.Error("MCP ask failed", "thread_id", thread.ID, "err", err)
		return AskResponse{}, fmt.Errorf("ask failed: %w", err)
	}
	return AskResponse{ThreadID: thread.ID, Reply: reply}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ToolsURI, "Registered Tools",
		mcp.WithMIMEType("application/json"),
	), s.readTools)
}

func (s *Server) readTools(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	text, err := s.catalogJSON()
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ToolsURI,
			MIMEType: "application/json",
			Text:     text,
		},
	}, nil
}

func (s *Server) catalogJSON() (string, error) {
	tools := s.catalog.Tools()
	if tools == nil {
		tools = []domain.Tool{}
	}
	b, err := json.Marshal(tools)
	if err != nil {
		return "", fmt.Errorf("failed to encode tools: %w", err)
	}
	return string(b), nil
}
