package application

import (
	"context"
	"fmt"
	"strings"

	"atlassian-suite-mcp/internal/domain"
)

// RequestRouter dispatches MCP tool requests to the appropriate ToolHandler.
// It maintains a registry of handlers for each service (Jira, Confluence,
// Trello) and routes requests based on tool name prefixes.
type RequestRouter struct {
	handlers map[string]domain.ToolHandler
}

// NewRequestRouter creates a new RequestRouter with the provided handlers.
// Handlers are registered by their ToolName() identifier.
func NewRequestRouter(handlers ...domain.ToolHandler) *RequestRouter {
	router := &RequestRouter{
		handlers: make(map[string]domain.ToolHandler),
	}

	for _, handler := range handlers {
		router.handlers[handler.ToolName()] = handler
	}

	return router
}

// Route dispatches a tool request to the appropriate handler based on the
// tool name. Tool names follow the pattern <service>_<operation>
// (e.g., jira_get_issue, confluence_create_page).
func (r *RequestRouter) Route(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	handlerName := r.extractHandlerName(req.Name)
	if handlerName == "" {
		return nil, &domain.Error{
			Code:    domain.InvalidParams,
			Message: fmt.Sprintf("invalid tool name format: %s (expected format: <service>_<operation>)", req.Name),
		}
	}

	handler, exists := r.handlers[handlerName]
	if !exists {
		return nil, &domain.Error{
			Code:    domain.MethodNotFound,
			Message: fmt.Sprintf("unknown tool: %s (no handler registered for '%s')", req.Name, handlerName),
		}
	}

	return handler.Handle(ctx, req)
}

// ListAllTools aggregates tool definitions from all registered handlers.
// This is used for MCP tool discovery (tools/list method).
func (r *RequestRouter) ListAllTools() []domain.ToolDefinition {
	var allTools []domain.ToolDefinition

	for _, handler := range r.handlers {
		allTools = append(allTools, handler.ListTools()...)
	}

	return allTools
}

// extractHandlerName extracts the service identifier from a tool name.
// For example: "jira_get_issue" -> "jira".
func (r *RequestRouter) extractHandlerName(toolName string) string {
	idx := strings.Index(toolName, "_")
	if idx == -1 {
		return ""
	}

	return toolName[:idx]
}

// GetHandler returns the handler for a specific service name.
// This is useful for testing and debugging.
func (r *RequestRouter) GetHandler(handlerName string) (domain.ToolHandler, bool) {
	handler, exists := r.handlers[handlerName]
	return handler, exists
}
