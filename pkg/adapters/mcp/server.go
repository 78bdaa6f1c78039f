package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/leadwizard"
	"github.com/aretw0/leadwizard/pkg/chat"
	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/aretw0/leadwizard/pkg/flow"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// FlowURI is the resource exposing the loaded flow definition.
const FlowURI = "leadwizard://flow"

// ChatService handles one chat turn.
type ChatService interface {
	Handle(ctx context.Context, req chat.Request) (chat.Response, error)
}

// Server wraps the chat service and exposes it as an MCP Server.
type Server struct {
	chat      ChatService
	flow      *flow.Store
	marker    string
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithSelectionMarker overrides the prefix used to encode select_option calls.
func WithSelectionMarker(marker string) Option {
	return func(s *Server) { s.marker = marker }
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a new MCP Server instance.
func NewServer(svc ChatService, f *flow.Store, opts ...Option) *Server {
	s := &Server{
		chat:      svc,
		flow:      f,
		marker:    domain.DefaultSelectionMarker,
		mcpServer: server.NewMCPServer("leadwizard-mcp", strings.TrimSpace(leadwizard.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: chat
	chatTool := mcp.NewTool("chat",
		mcp.WithDescription("Send a message to the lead wizard. Omit session_id to start a new conversation."),
		mcp.WithString("message", mcp.Required(), mcp.Description("Message typed by the user")),
		mcp.WithString("session_id", mcp.Description("Conversation id returned by a previous call")),
		mcp.WithString("name", mcp.Description("Contact name (optional)")),
		mcp.WithString("email", mcp.Description("Contact email (optional)")),
		mcp.WithString("phone", mcp.Description("Contact phone (optional)")),
		mcp.WithString("zip_code", mcp.Description("Five digit ZIP code (optional)")),
	)
	s.mcpServer.AddTool(chatTool, s.handleChat)

	// TOOL: select_option
	selectTool := mcp.NewTool("select_option",
		mcp.WithDescription("Click one of the buttons offered by the previous reply."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation id")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Value of the chosen button")),
	)
	s.mcpServer.AddTool(selectTool, s.handleSelect)

	// TOOL: get_flow
	s.mcpServer.AddTool(mcp.NewTool("get_flow",
		mcp.WithDescription("Get the full flow definition for introspection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := s.flowJSON()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}

func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	req := chat.Request{
		SessionID: request.GetString("session_id", ""),
		Message:   message,
		Name:      request.GetString("name", ""),
		Email:     request.GetString("email", ""),
		Phone:     request.GetString("phone", ""),
		ZipCode:   request.GetString("zip_code", ""),
	}

	fieldErrs, err := req.Validate()
	if err != nil {
		return nil, err
	}
	if len(fieldErrs) > 0 {
		msgs := make([]string, len(fieldErrs))
		for i, fe := range fieldErrs {
			msgs[i] = fe.String()
		}
		return mcp.NewToolResultError("invalid request: " + strings.Join(msgs, "; ")), nil
	}
	return s.turn(ctx, req)
}

func (s *Server) handleSelect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, err := request.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.turn(ctx, chat.Request{
		SessionID: sessionID,
		Message:   domain.SelectionMessage(s.marker, value),
	})
}

func (s *Server) turn(ctx context.Context, req chat.Request) (*mcp.CallToolResult, error) {
	resp, err := s.chat.Handle(ctx, req)
	if err != nil {
		s.logger.Warn("MCP chat turn rejected", "session_id", req.SessionID, "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("chat failed: %v", err)), nil
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) flowJSON() ([]byte, error) {
	if s.flow == nil {
		return nil, fmt.Errorf("no flow loaded")
	}
	data, err := json.Marshal(s.flow)
	if err != nil {
		return nil, fmt.Errorf("failed to encode flow: %w", err)
	}
	return data, nil
}

func (s *Server) registerResources() {
	// EXPOSE: leadwizard://flow
	s.mcpServer.AddResource(mcp.NewResource(FlowURI, "Current Flow Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := s.flowJSON()
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      FlowURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
