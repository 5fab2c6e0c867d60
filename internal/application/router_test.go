package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"atlassian-suite-mcp/internal/domain"
)

type stubHandler struct {
	name    string
	tools   []domain.ToolDefinition
	lastReq *domain.ToolRequest
}

func (s *stubHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	s.lastReq = req
	return &domain.ToolResponse{
		Content: []domain.ContentBlock{{Type: "text", Text: s.name}},
	}, nil
}

func (s *stubHandler) ListTools() []domain.ToolDefinition {
	return s.tools
}

func (s *stubHandler) ToolName() string {
	return s.name
}

func TestRouterRoutesByPrefix(t *testing.T) {
	jira := &stubHandler{name: "jira"}
	trello := &stubHandler{name: "trello"}
	router := NewRequestRouter(jira, trello)

	resp, err := router.Route(context.Background(), &domain.ToolRequest{Name: "trello_get_boards"})
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}

	if resp.Content[0].Text != "trello" {
		t.Errorf("Request routed to wrong handler: %q", resp.Content[0].Text)
	}
	if trello.lastReq == nil || trello.lastReq.Name != "trello_get_boards" {
		t.Error("Handler did not receive the original request")
	}
	if jira.lastReq != nil {
		t.Error("Jira handler should not have been called")
	}
}

func TestRouterUnknownService(t *testing.T) {
	router := NewRequestRouter(&stubHandler{name: "jira"})

	_, err := router.Route(context.Background(), &domain.ToolRequest{Name: "bamboo_trigger_build"})
	if err == nil {
		t.Fatal("Expected error for unregistered service")
	}

	var domainErr *domain.Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("Expected *domain.Error, got %T", err)
	}
	if domainErr.Code != domain.MethodNotFound {
		t.Errorf("Expected MethodNotFound, got %d", domainErr.Code)
	}
	if !strings.Contains(domainErr.Message, "unknown tool") {
		t.Errorf("Unexpected error: %v", domainErr.Message)
	}
}

func TestRouterInvalidToolName(t *testing.T) {
	router := NewRequestRouter(&stubHandler{name: "jira"})

	_, err := router.Route(context.Background(), &domain.ToolRequest{Name: "noseparator"})
	if err == nil {
		t.Fatal("Expected error for malformed tool name")
	}

	var domainErr *domain.Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("Expected *domain.Error, got %T", err)
	}
	if domainErr.Code != domain.InvalidParams {
		t.Errorf("Expected InvalidParams, got %d", domainErr.Code)
	}
}

func TestRouterListAllTools(t *testing.T) {
	jira := &stubHandler{
		name:  "jira",
		tools: []domain.ToolDefinition{{Name: "jira_get_issue"}, {Name: "jira_search_issues"}},
	}
	confluence := &stubHandler{
		name:  "confluence",
		tools: []domain.ToolDefinition{{Name: "confluence_get_page"}},
	}
	router := NewRequestRouter(jira, confluence)

	tools := router.ListAllTools()
	if len(tools) != 3 {
		t.Errorf("Expected 3 tools, got %d", len(tools))
	}
}

func TestRouterGetHandler(t *testing.T) {
	jira := &stubHandler{name: "jira"}
	router := NewRequestRouter(jira)

	handler, ok := router.GetHandler("jira")
	if !ok || handler != domain.ToolHandler(jira) {
		t.Error("Expected registered handler")
	}

	if _, ok := router.GetHandler("trello"); ok {
		t.Error("Expected no handler for unregistered service")
	}
}
