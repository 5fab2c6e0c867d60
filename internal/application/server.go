package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"atlassian-suite-mcp/internal/domain"
)

// Server is the main MCP server implementation.
// It orchestrates the transport layer, request routing, and implements the
// MCP protocol methods (initialize, tools/list, tools/call).
type Server struct {
	transport domain.Transport
	router    *RequestRouter
	config    *domain.TransportConfig
	logger    *StructuredLogger
}

// NewServer creates a new MCP server instance.
// All collaborators are injected; the server owns no client construction.
func NewServer(
	transport domain.Transport,
	router *RequestRouter,
	config *domain.TransportConfig,
) *Server {
	return &Server{
		transport: transport,
		router:    router,
		config:    config,
		logger:    NewStructuredLogger(),
	}
}

// Start begins the server operation.
// It starts the transport layer and begins processing incoming requests.
func (s *Server) Start(ctx context.Context) error {
	if err := s.transport.Start(ctx); err != nil {
		s.logger.LogError("failed to start transport", err, map[string]interface{}{
			"transport_type": s.config.Type,
		})
		return fmt.Errorf("failed to start transport: %w", err)
	}

	s.logger.LogInfo("server started", map[string]interface{}{
		"transport_type": s.config.Type,
	})

	go s.processRequests(ctx)

	return nil
}

// processRequests continuously processes incoming JSON-RPC requests.
func (s *Server) processRequests(ctx context.Context) {
	reqChan := s.transport.Receive()

	for {
		select {
		case <-ctx.Done():
			s.logger.LogInfo("server shutting down", nil)
			return
		case req, ok := <-reqChan:
			if !ok {
				// Channel closed, transport is shutting down
				return
			}

			s.handleRequest(ctx, req)
		}
	}
}

// handleRequest processes a single JSON-RPC request.
func (s *Server) handleRequest(ctx context.Context, req *domain.Request) {
	s.logger.LogInfo("received request", map[string]interface{}{
		"method":     req.Method,
		"request_id": req.ID,
	})

	if err := s.validateRequest(req); err != nil {
		s.sendErrorResponse(req.ID, domain.InvalidRequest, "Invalid Request", err.Error())
		return
	}

	var response *domain.Response
	var err error

	switch req.Method {
	case "initialize":
		response, err = s.handleInitialize(req)
	case "tools/list":
		response, err = s.handleToolsList(req)
	case "tools/call":
		response, err = s.handleToolsCall(ctx, req)
	default:
		s.sendErrorResponse(req.ID, domain.MethodNotFound, "Method not found", fmt.Sprintf("unknown method: %s", req.Method))
		return
	}

	if err != nil {
		s.logger.LogError("request processing failed", err, map[string]interface{}{
			"method":     req.Method,
			"request_id": req.ID,
		})
		// Error response already sent by handler
		return
	}

	if err := s.transport.Send(response); err != nil {
		s.logger.LogError("failed to send response", err, map[string]interface{}{
			"request_id": req.ID,
		})
	}
}

// validateRequest validates the basic structure of a JSON-RPC request.
func (s *Server) validateRequest(req *domain.Request) error {
	if req.JSONRPC != "2.0" {
		return fmt.Errorf("invalid jsonrpc version: %s", req.JSONRPC)
	}

	if req.Method == "" {
		return fmt.Errorf("method is required")
	}

	return nil
}

// handleInitialize handles the MCP initialize method.
// This is the initial handshake between client and server.
func (s *Server) handleInitialize(req *domain.Request) (*domain.Response, error) {
	result := map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    "atlassian-suite-mcp",
			"version": "1.0.0",
		},
	}

	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}, nil
}

// handleToolsList handles the MCP tools/list method.
// Returns all available tools from registered handlers.
func (s *Server) handleToolsList(req *domain.Request) (*domain.Response, error) {
	tools := s.router.ListAllTools()

	result := map[string]interface{}{
		"tools": tools,
	}

	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}, nil
}

// handleToolsCall handles the MCP tools/call method.
// Executes a tool call by routing it to the appropriate handler.
func (s *Server) handleToolsCall(ctx context.Context, req *domain.Request) (*domain.Response, error) {
	toolReq, err := s.parseToolRequest(req.Params)
	if err != nil {
		s.sendErrorResponse(req.ID, domain.InvalidParams, "Invalid params", err.Error())
		return nil, err
	}

	toolResp, err := s.router.Route(ctx, toolReq)
	if err != nil {
		s.logger.LogError("tool execution failed", err, map[string]interface{}{
			"tool":       toolReq.Name,
			"request_id": req.ID,
		})

		s.sendMappedError(req.ID, err)
		return nil, err
	}

	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  toolResp,
	}, nil
}

// parseToolRequest parses the params field into a ToolRequest.
func (s *Server) parseToolRequest(params interface{}) (*domain.ToolRequest, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required for tools/call")
	}

	// Convert params to JSON and back to ToolRequest.
	// This handles both map[string]interface{} and already-parsed structs.
	jsonData, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	var toolReq domain.ToolRequest
	if err := json.Unmarshal(jsonData, &toolReq); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tool request: %w", err)
	}

	if toolReq.Name == "" {
		return nil, fmt.Errorf("tool name is required")
	}

	if toolReq.Arguments == nil {
		toolReq.Arguments = make(map[string]interface{})
	}

	return &toolReq, nil
}

// sendErrorResponse sends a JSON-RPC error response.
func (s *Server) sendErrorResponse(id interface{}, code int, message string, data interface{}) {
	response := &domain.Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &domain.Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}

	if err := s.transport.Send(response); err != nil {
		s.logger.LogError("failed to send error response", err, map[string]interface{}{
			"request_id":    id,
			"error_code":    code,
			"error_message": message,
		})
	}
}

// sendMappedError converts a tool failure into a JSON-RPC error response.
// Error categories come from typed errors, never from message text.
func (s *Server) sendMappedError(id interface{}, err error) {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		s.sendErrorResponse(id, domainErr.Code, domainErr.Message, domainErr.Data)
		return
	}

	var configErr *domain.ConfigError
	if errors.As(err, &configErr) {
		s.sendErrorResponse(id, domain.ConfigurationError, "Configuration error", configErr.Error())
		return
	}

	var transportErr *domain.TransportError
	if errors.As(err, &transportErr) {
		mapped := domain.NewResponseMapper().MapError("tool call", err)
		s.sendErrorResponse(id, mapped.Code, mapped.Message, mapped.Data)
		return
	}

	s.sendErrorResponse(id, domain.InternalError, "Internal error", err.Error())
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	s.logger.LogInfo("closing server", nil)
	return s.transport.Close()
}

// StructuredLogger provides structured logging with context.
// Entries go to stderr as single-line JSON, keeping stdout clean for the
// JSON-RPC stream when running over stdio.
type StructuredLogger struct {
	logger *log.Logger
}

// NewStructuredLogger creates a new structured logger.
func NewStructuredLogger() *StructuredLogger {
	return &StructuredLogger{
		logger: log.Default(),
	}
}

// LogInfo logs an informational message with context.
func (l *StructuredLogger) LogInfo(message string, context map[string]interface{}) {
	entry := l.buildLogEntry("INFO", message, nil, context)
	l.logger.Println(entry)
}

// LogError logs an error message with context.
func (l *StructuredLogger) LogError(message string, err error, context map[string]interface{}) {
	entry := l.buildLogEntry("ERROR", message, err, context)
	l.logger.Println(entry)
}

// buildLogEntry constructs a structured log entry.
func (l *StructuredLogger) buildLogEntry(level, message string, err error, context map[string]interface{}) string {
	entry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"level":     level,
		"message":   message,
	}

	if err != nil {
		entry["error"] = err.Error()
	}

	for k, v := range context {
		entry[k] = v
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Sprintf(`{"level":"ERROR","message":"failed to marshal log entry","error":"%s"}`, err.Error())
	}

	return string(jsonData)
}
