package application

import (
	"context"
	"fmt"

	"atlassian-suite-mcp/internal/domain"
	"atlassian-suite-mcp/internal/infrastructure"
)

// ConfluenceHandler implements ToolHandler for Confluence operations.
// It routes MCP tool calls to the ConfluenceClient, projects the raw API
// body into a compact summary and always passes the full body through
// under "raw".
type ConfluenceHandler struct {
	client *infrastructure.ConfluenceClient
	mapper domain.ResponseMapper
}

// NewConfluenceHandler creates a new ConfluenceHandler instance.
func NewConfluenceHandler(client *infrastructure.ConfluenceClient, mapper domain.ResponseMapper) *ConfluenceHandler {
	return &ConfluenceHandler{
		client: client,
		mapper: mapper,
	}
}

// Tool name constants for Confluence operations
const (
	ToolConfluenceGetPage       = "confluence_get_page"
	ToolConfluenceSearchPages   = "confluence_search_pages"
	ToolConfluenceGetSpaces     = "confluence_get_spaces"
	ToolConfluenceCreatePage    = "confluence_create_page"
	ToolConfluenceCreateSpace   = "confluence_create_space"
	ToolConfluenceAddComment    = "confluence_add_comment"
	ToolConfluenceAddAttachment = "confluence_add_attachment"
	ToolConfluenceDeletePage    = "confluence_delete_page"
	ToolConfluenceDeleteSpace   = "confluence_delete_space"
)

// ToolName returns the identifier for this handler.
func (h *ConfluenceHandler) ToolName() string {
	return "confluence"
}

// ListTools returns available tools for Confluence operations.
func (h *ConfluenceHandler) ListTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        ToolConfluenceGetPage,
			Description: "Get a Confluence page by ID, including its storage-format body",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"page_id": map[string]interface{}{
						"type":        "string",
						"description": "The page ID",
					},
				},
				Required: []string{"page_id"},
			},
		},
		{
			Name:        ToolConfluenceSearchPages,
			Description: "Search Confluence content via CQL (e.g. space = \"ENG\" AND type = \"page\")",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"cql": map[string]interface{}{
						"type":        "string",
						"description": "The CQL query string",
					},
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of results to return (default 25)",
					},
					"start": map[string]interface{}{
						"type":        "integer",
						"description": "Index of the first result to return (default 0)",
					},
				},
				Required: []string{"cql"},
			},
		},
		{
			Name:        ToolConfluenceGetSpaces,
			Description: "List Confluence spaces",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of spaces to return (default 100)",
					},
					"start": map[string]interface{}{
						"type":        "integer",
						"description": "Index of the first space to return (default 0)",
					},
				},
				Required: []string{},
			},
		},
		{
			Name:        ToolConfluenceCreatePage,
			Description: "Create a Confluence page (storage format). This creates real content",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"space_key": map[string]interface{}{
						"type":        "string",
						"description": "Key of the space to create the page in",
					},
					"title": map[string]interface{}{
						"type":        "string",
						"description": "The page title",
					},
					"body_storage": map[string]interface{}{
						"type":        "string",
						"description": "Page body in Confluence storage format",
					},
					"parent_page_id": map[string]interface{}{
						"type":        "string",
						"description": "Optional parent page ID",
					},
				},
				Required: []string{"space_key", "title", "body_storage"},
			},
		},
		{
			Name:        ToolConfluenceCreateSpace,
			Description: "Create a Confluence space. This creates a real space",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"key": map[string]interface{}{
						"type":        "string",
						"description": "The space key",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "The space name",
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "Optional plain-text space description",
					},
					"space_type": map[string]interface{}{
						"type":        "string",
						"description": "Space type (default \"global\")",
					},
				},
				Required: []string{"key", "name"},
			},
		},
		{
			Name:        ToolConfluenceAddComment,
			Description: "Add a comment to a Confluence page (storage format)",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"page_id": map[string]interface{}{
						"type":        "string",
						"description": "ID of the page to comment on",
					},
					"body_storage": map[string]interface{}{
						"type":        "string",
						"description": "Comment body in Confluence storage format",
					},
				},
				Required: []string{"page_id", "body_storage"},
			},
		},
		{
			Name:        ToolConfluenceAddAttachment,
			Description: "Upload a local file as an attachment on a Confluence page",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"page_id": map[string]interface{}{
						"type":        "string",
						"description": "ID of the page to attach the file to",
					},
					"file_path": map[string]interface{}{
						"type":        "string",
						"description": "Path of the local file to upload",
					},
					"comment": map[string]interface{}{
						"type":        "string",
						"description": "Optional attachment comment",
					},
				},
				Required: []string{"page_id", "file_path"},
			},
		},
		{
			Name:        ToolConfluenceDeletePage,
			Description: "Delete a Confluence page by ID. This deletes real content",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"page_id": map[string]interface{}{
						"type":        "string",
						"description": "ID of the page to delete",
					},
					"status": map[string]interface{}{
						"type":        "string",
						"description": "Which page status to delete (default \"current\")",
					},
				},
				Required: []string{"page_id"},
			},
		},
		{
			Name:        ToolConfluenceDeleteSpace,
			Description: "Delete a Confluence space by key. This deletes a real space",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"key": map[string]interface{}{
						"type":        "string",
						"description": "Key of the space to delete",
					},
				},
				Required: []string{"key"},
			},
		},
	}
}

// Handle processes an MCP tool call request for Confluence operations.
func (h *ConfluenceHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	switch req.Name {
	case ToolConfluenceGetPage:
		return h.handleGetPage(ctx, req.Arguments)
	case ToolConfluenceSearchPages:
		return h.handleSearchPages(ctx, req.Arguments)
	case ToolConfluenceGetSpaces:
		return h.handleGetSpaces(ctx, req.Arguments)
	case ToolConfluenceCreatePage:
		return h.handleCreatePage(ctx, req.Arguments)
	case ToolConfluenceCreateSpace:
		return h.handleCreateSpace(ctx, req.Arguments)
	case ToolConfluenceAddComment:
		return h.handleAddComment(ctx, req.Arguments)
	case ToolConfluenceAddAttachment:
		return h.handleAddAttachment(ctx, req.Arguments)
	case ToolConfluenceDeletePage:
		return h.handleDeletePage(ctx, req.Arguments)
	case ToolConfluenceDeleteSpace:
		return h.handleDeleteSpace(ctx, req.Arguments)
	default:
		return nil, &domain.Error{
			Code:    domain.MethodNotFound,
			Message: fmt.Sprintf("unknown Confluence tool: %s", req.Name),
		}
	}
}

// handleGetPage handles the confluence_get_page tool call.
func (h *ConfluenceHandler) handleGetPage(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	pageID, err := getStringParam(args, "page_id", true)
	if err != nil {
		return nil, err
	}

	data, err := h.client.GetPage(ctx, pageID)
	if err != nil {
		return nil, h.mapper.MapError(ToolConfluenceGetPage, err)
	}

	summary := map[string]interface{}{
		"id":           data["id"],
		"title":        data["title"],
		"space":        field(data, "space", "key"),
		"version":      field(data, "version", "number"),
		"status":       data["status"],
		"body_storage": field(data, "body", "storage", "value"),
		"raw":          data,
	}
	return h.mapper.MapToToolResponse(summary)
}

// handleSearchPages handles the confluence_search_pages tool call.
func (h *ConfluenceHandler) handleSearchPages(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	cql, err := getStringParam(args, "cql", true)
	if err != nil {
		return nil, err
	}
	limit, err := getIntParam(args, "limit", 25)
	if err != nil {
		return nil, err
	}
	start, err := getIntParam(args, "start", 0)
	if err != nil {
		return nil, err
	}

	data, err := h.client.SearchPages(ctx, cql, limit, start)
	if err != nil {
		return nil, h.mapper.MapError(ToolConfluenceSearchPages, err)
	}

	results := []map[string]interface{}{}
	for _, item := range listField(data, "results") {
		results = append(results, map[string]interface{}{
			"id":      itemField(item, "id"),
			"title":   itemField(item, "title"),
			"space":   itemField(item, "space", "key"),
			"version": itemField(item, "version", "number"),
			"status":  itemField(item, "status"),
			"type":    itemField(item, "type"),
			"url":     itemField(item, "_links", "self"),
		})
	}

	summary := map[string]interface{}{
		"size":    data["size"],
		"limit":   data["limit"],
		"results": results,
		"raw":     data,
	}
	return h.mapper.MapToToolResponse(summary)
}

// handleGetSpaces handles the confluence_get_spaces tool call.
func (h *ConfluenceHandler) handleGetSpaces(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	limit, err := getIntParam(args, "limit", 100)
	if err != nil {
		return nil, err
	}
	start, err := getIntParam(args, "start", 0)
	if err != nil {
		return nil, err
	}

	data, err := h.client.GetSpaces(ctx, limit, start)
	if err != nil {
		return nil, h.mapper.MapError(ToolConfluenceGetSpaces, err)
	}

	spaces := []map[string]interface{}{}
	for _, item := range listField(data, "results") {
		spaces = append(spaces, map[string]interface{}{
			"key":         itemField(item, "key"),
			"name":        itemField(item, "name"),
			"type":        itemField(item, "type"),
			"status":      itemField(item, "status"),
			"description": itemField(item, "description", "plain"),
			"homepage":    itemField(item, "homepage", "id"),
			"url":         itemField(item, "_links", "self"),
		})
	}

	summary := map[string]interface{}{
		"size":   data["size"],
		"limit":  data["limit"],
		"total":  len(spaces),
		"spaces": spaces,
		"raw":    data,
	}
	return h.mapper.MapToToolResponse(summary)
}

// handleCreatePage handles the confluence_create_page tool call.
func (h *ConfluenceHandler) handleCreatePage(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	spaceKey, err := getStringParam(args, "space_key", true)
	if err != nil {
		return nil, err
	}
	title, err := getStringParam(args, "title", true)
	if err != nil {
		return nil, err
	}
	bodyStorage, err := getStringParam(args, "body_storage", true)
	if err != nil {
		return nil, err
	}
	parentPageID, err := getStringParam(args, "parent_page_id", false)
	if err != nil {
		return nil, err
	}

	data, err := h.client.CreatePage(ctx, spaceKey, title, bodyStorage, parentPageID)
	if err != nil {
		return nil, h.mapper.MapError(ToolConfluenceCreatePage, err)
	}

	summary := map[string]interface{}{
		"id":     data["id"],
		"title":  data["title"],
		"space":  field(data, "space", "key"),
		"status": data["status"],
		"links":  data["_links"],
		"raw":    data,
	}
	return h.mapper.MapToToolResponse(summary)
}

// handleCreateSpace handles the confluence_create_space tool call.
func (h *ConfluenceHandler) handleCreateSpace(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	key, err := getStringParam(args, "key", true)
	if err != nil {
		return nil, err
	}
	name, err := getStringParam(args, "name", true)
	if err != nil {
		return nil, err
	}
	description, err := getStringParam(args, "description", false)
	if err != nil {
		return nil, err
	}
	spaceType, err := getStringParamDefault(args, "space_type", "global")
	if err != nil {
		return nil, err
	}

	data, err := h.client.CreateSpace(ctx, key, name, description, spaceType)
	if err != nil {
		return nil, h.mapper.MapError(ToolConfluenceCreateSpace, err)
	}

	summary := map[string]interface{}{
		"key":   data["key"],
		"name":  data["name"],
		"type":  data["type"],
		"links": data["_links"],
		"raw":   data,
	}
	return h.mapper.MapToToolResponse(summary)
}

// handleAddComment handles the confluence_add_comment tool call.
func (h *ConfluenceHandler) handleAddComment(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	pageID, err := getStringParam(args, "page_id", true)
	if err != nil {
		return nil, err
	}
	bodyStorage, err := getStringParam(args, "body_storage", true)
	if err != nil {
		return nil, err
	}

	data, err := h.client.AddComment(ctx, pageID, bodyStorage)
	if err != nil {
		return nil, h.mapper.MapError(ToolConfluenceAddComment, err)
	}

	summary := map[string]interface{}{
		"id":     data["id"],
		"status": data["status"],
		"title":  data["title"],
		"links":  data["_links"],
		"raw":    data,
	}
	return h.mapper.MapToToolResponse(summary)
}

// handleAddAttachment handles the confluence_add_attachment tool call.
// File-open failures surface as-is; only transport errors are mapped.
func (h *ConfluenceHandler) handleAddAttachment(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	pageID, err := getStringParam(args, "page_id", true)
	if err != nil {
		return nil, err
	}
	filePath, err := getStringParam(args, "file_path", true)
	if err != nil {
		return nil, err
	}
	comment, err := getStringParam(args, "comment", false)
	if err != nil {
		return nil, err
	}

	data, err := h.client.AddAttachment(ctx, pageID, filePath, comment)
	if err != nil {
		return nil, h.mapper.MapError(ToolConfluenceAddAttachment, err)
	}

	summary := map[string]interface{}{
		"attachment": firstItem(data),
		"raw":        data,
	}
	return h.mapper.MapToToolResponse(summary)
}

// handleDeletePage handles the confluence_delete_page tool call.
// Confluence answers 204 with no body, so the acknowledgement is synthesized.
func (h *ConfluenceHandler) handleDeletePage(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	pageID, err := getStringParam(args, "page_id", true)
	if err != nil {
		return nil, err
	}
	status, err := getStringParamDefault(args, "status", "current")
	if err != nil {
		return nil, err
	}

	if err := h.client.DeletePage(ctx, pageID, status); err != nil {
		return nil, h.mapper.MapError(ToolConfluenceDeletePage, err)
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"id":                  pageID,
		"status":              "deleted",
		"delete_status_param": status,
	})
}

// handleDeleteSpace handles the confluence_delete_space tool call.
func (h *ConfluenceHandler) handleDeleteSpace(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	key, err := getStringParam(args, "key", true)
	if err != nil {
		return nil, err
	}

	if err := h.client.DeleteSpace(ctx, key); err != nil {
		return nil, h.mapper.MapError(ToolConfluenceDeleteSpace, err)
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"key":     key,
		"deleted": true,
	})
}
