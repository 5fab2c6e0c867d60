package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"atlassian-suite-mcp/internal/domain"
	"atlassian-suite-mcp/internal/infrastructure"
)

// JiraHandler implements ToolHandler for Jira operations.
// It routes MCP tool calls to the JiraClient, projects the raw API body into
// a compact summary and always passes the full body through under "raw".
type JiraHandler struct {
	client *infrastructure.JiraClient
	mapper domain.ResponseMapper
}

// NewJiraHandler creates a new JiraHandler instance.
func NewJiraHandler(client *infrastructure.JiraClient, mapper domain.ResponseMapper) *JiraHandler {
	return &JiraHandler{
		client: client,
		mapper: mapper,
	}
}

// Tool name constants for Jira operations
const (
	ToolJiraGetIssue         = "jira_get_issue"
	ToolJiraSearchIssues     = "jira_search_issues"
	ToolJiraCreateIssue      = "jira_create_issue"
	ToolJiraCreateIssueDebug = "jira_create_issue_debug"
	ToolJiraAddComment       = "jira_add_comment"
	ToolJiraAddAttachment    = "jira_add_attachment"
	ToolJiraGetCreateMeta    = "jira_get_createmeta"
	ToolJiraCreateProject    = "jira_create_project"
	ToolJiraDeleteIssue      = "jira_delete_issue"
	ToolJiraDeleteProject    = "jira_delete_project"
)

// ToolName returns the identifier for this handler.
func (h *JiraHandler) ToolName() string {
	return "jira"
}

// ListTools returns available tools for Jira operations.
func (h *JiraHandler) ListTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        ToolJiraGetIssue,
			Description: "Get a Jira issue by key (e.g., TEST-123)",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"issue_key": map[string]interface{}{
						"type":        "string",
						"description": "The issue key (e.g., TEST-123)",
					},
					"fields": map[string]interface{}{
						"type":        "string",
						"description": "Optional comma-separated field list (e.g., summary,status,assignee)",
					},
				},
				Required: []string{"issue_key"},
			},
		},
		{
			Name:        ToolJiraSearchIssues,
			Description: "Search Jira issues by JQL (e.g. project = L2S AND statusCategory != Done)",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"jql": map[string]interface{}{
						"type":        "string",
						"description": "The JQL query string",
					},
					"max_results": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of issues to return (default 50)",
					},
					"start_at": map[string]interface{}{
						"type":        "integer",
						"description": "Index of the first issue to return (default 0)",
					},
				},
				Required: []string{"jql"},
			},
		},
		{
			Name:        ToolJiraCreateIssue,
			Description: "Create a Jira issue. This creates a real issue",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"project_key": map[string]interface{}{
						"type":        "string",
						"description": "The project key (e.g., TEST)",
					},
					"issue_type": map[string]interface{}{
						"type":        "string",
						"description": "The issue type name (e.g., Bug, Story, Task)",
					},
					"summary": map[string]interface{}{
						"type":        "string",
						"description": "The issue summary/title",
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "Optional issue description",
					},
					"extra_fields": map[string]interface{}{
						"type":        "object",
						"description": "Additional Jira fields (including customfield_*); overrides computed fields on key collision",
					},
				},
				Required: []string{"project_key", "issue_type", "summary"},
			},
		},
		{
			Name:        ToolJiraCreateIssueDebug,
			Description: "Debug helper: send a create-issue payload and return status, payload and response even on failure",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"project_key": map[string]interface{}{
						"type":        "string",
						"description": "The project key (e.g., TEST)",
					},
					"issue_type": map[string]interface{}{
						"type":        "string",
						"description": "The issue type name (e.g., Bug, Story, Task)",
					},
					"summary": map[string]interface{}{
						"type":        "string",
						"description": "The issue summary/title",
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "Optional issue description",
					},
					"extra_fields": map[string]interface{}{
						"type":        "object",
						"description": "Additional Jira fields merged into the payload",
					},
				},
				Required: []string{"project_key", "issue_type", "summary"},
			},
		},
		{
			Name:        ToolJiraAddComment,
			Description: "Add a comment to a Jira issue",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"issue_key": map[string]interface{}{
						"type":        "string",
						"description": "The issue key (e.g., TEST-123)",
					},
					"body": map[string]interface{}{
						"type":        "string",
						"description": "The comment text",
					},
				},
				Required: []string{"issue_key", "body"},
			},
		},
		{
			Name:        ToolJiraAddAttachment,
			Description: "Upload a local file as an attachment on a Jira issue",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"issue_key": map[string]interface{}{
						"type":        "string",
						"description": "The issue key (e.g., TEST-123)",
					},
					"file_path": map[string]interface{}{
						"type":        "string",
						"description": "Path of the local file to upload",
					},
				},
				Required: []string{"issue_key", "file_path"},
			},
		},
		{
			Name:        ToolJiraGetCreateMeta,
			Description: "Get Jira create metadata: required fields and allowed values per project/issue type",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"project_key": map[string]interface{}{
						"type":        "string",
						"description": "The project key (e.g., TEST)",
					},
					"issue_type_name": map[string]interface{}{
						"type":        "string",
						"description": "Optional issue type name to narrow the metadata",
					},
				},
				Required: []string{"project_key"},
			},
		},
		{
			Name:        ToolJiraCreateProject,
			Description: "Create a Jira project. This creates a real project",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"key": map[string]interface{}{
						"type":        "string",
						"description": "The project key",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "The project name",
					},
					"project_type_key": map[string]interface{}{
						"type":        "string",
						"description": "The project type key (e.g., software, business)",
					},
					"lead": map[string]interface{}{
						"type":        "string",
						"description": "Username of the project lead",
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "Optional project description",
					},
					"extra_fields": map[string]interface{}{
						"type":        "object",
						"description": "Additional top-level project fields (e.g., projectTemplateKey)",
					},
				},
				Required: []string{"key", "name", "project_type_key", "lead"},
			},
		},
		{
			Name:        ToolJiraDeleteIssue,
			Description: "Delete a Jira issue by key. This deletes a real issue",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"issue_key": map[string]interface{}{
						"type":        "string",
						"description": "The issue key (e.g., TEST-123)",
					},
					"delete_subtasks": map[string]interface{}{
						"type":        "boolean",
						"description": "Also delete all subtasks (default false)",
					},
				},
				Required: []string{"issue_key"},
			},
		},
		{
			Name:        ToolJiraDeleteProject,
			Description: "Delete a Jira project by key or ID. This deletes a real project",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"key": map[string]interface{}{
						"type":        "string",
						"description": "The project key or ID",
					},
				},
				Required: []string{"key"},
			},
		},
	}
}

// Handle processes an MCP tool call request for Jira operations.
func (h *JiraHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	switch req.Name {
	case ToolJiraGetIssue:
		return h.handleGetIssue(ctx, req.Arguments)
	case ToolJiraSearchIssues:
		return h.handleSearchIssues(ctx, req.Arguments)
	case ToolJiraCreateIssue:
		return h.handleCreateIssue(ctx, req.Arguments)
	case ToolJiraCreateIssueDebug:
		return h.handleCreateIssueDebug(ctx, req.Arguments)
	case ToolJiraAddComment:
		return h.handleAddComment(ctx, req.Arguments)
	case ToolJiraAddAttachment:
		return h.handleAddAttachment(ctx, req.Arguments)
	case ToolJiraGetCreateMeta:
		return h.handleGetCreateMeta(ctx, req.Arguments)
	case ToolJiraCreateProject:
		return h.handleCreateProject(ctx, req.Arguments)
	case ToolJiraDeleteIssue:
		return h.handleDeleteIssue(ctx, req.Arguments)
	case ToolJiraDeleteProject:
		return h.handleDeleteProject(ctx, req.Arguments)
	default:
		return nil, &domain.Error{
			Code:    domain.MethodNotFound,
			Message: fmt.Sprintf("unknown Jira tool: %s", req.Name),
		}
	}
}

// handleGetIssue handles the jira_get_issue tool call.
func (h *JiraHandler) handleGetIssue(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueKey, err := getStringParam(args, "issue_key", true)
	if err != nil {
		return nil, err
	}
	fields, err := getStringParam(args, "fields", false)
	if err != nil {
		return nil, err
	}

	data, err := h.client.GetIssue(ctx, issueKey, fields)
	if err != nil {
		return nil, h.mapper.MapError(ToolJiraGetIssue, err)
	}

	summary := map[string]interface{}{
		"key":         data["key"],
		"id":          data["id"],
		"self":        data["self"],
		"summary":     field(data, "fields", "summary"),
		"status":      field(data, "fields", "status", "name"),
		"issuetype":   field(data, "fields", "issuetype", "name"),
		"project_key": field(data, "fields", "project", "key"),
		"assignee":    field(data, "fields", "assignee", "displayName"),
		"raw":         data,
	}
	return h.mapper.MapToToolResponse(summary)
}

// handleSearchIssues handles the jira_search_issues tool call.
func (h *JiraHandler) handleSearchIssues(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	jql, err := getStringParam(args, "jql", true)
	if err != nil {
		return nil, err
	}
	maxResults, err := getIntParam(args, "max_results", 50)
	if err != nil {
		return nil, err
	}
	startAt, err := getIntParam(args, "start_at", 0)
	if err != nil {
		return nil, err
	}

	data, err := h.client.SearchIssues(ctx, jql, maxResults, startAt)
	if err != nil {
		return nil, h.mapper.MapError(ToolJiraSearchIssues, err)
	}

	issues := []map[string]interface{}{}
	for _, item := range listField(data, "issues") {
		issues = append(issues, map[string]interface{}{
			"key":         itemField(item, "key"),
			"id":          itemField(item, "id"),
			"summary":     itemField(item, "fields", "summary"),
			"status":      itemField(item, "fields", "status", "name"),
			"issuetype":   itemField(item, "fields", "issuetype", "name"),
			"project_key": itemField(item, "fields", "project", "key"),
			"assignee":    itemField(item, "fields", "assignee", "displayName"),
		})
	}

	summary := map[string]interface{}{
		"total":       data["total"],
		"max_results": data["maxResults"],
		"start_at":    data["startAt"],
		"issues":      issues,
		"raw":         data,
	}
	return h.mapper.MapToToolResponse(summary)
}

// handleCreateIssue handles the jira_create_issue tool call.
// On a non-2xx response the remote error body (errorMessages/errors JSON, or
// raw text when the body is not JSON) is appended to the failure message so
// required-field violations are diagnosable from the chat.
func (h *JiraHandler) handleCreateIssue(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	projectKey, err := getStringParam(args, "project_key", true)
	if err != nil {
		return nil, err
	}
	issueType, err := getStringParam(args, "issue_type", true)
	if err != nil {
		return nil, err
	}
	summary, err := getStringParam(args, "summary", true)
	if err != nil {
		return nil, err
	}
	description, err := getStringParam(args, "description", false)
	if err != nil {
		return nil, err
	}
	extraFields, err := getObjectParam(args, "extra_fields")
	if err != nil {
		return nil, err
	}

	data, err := h.client.CreateIssue(ctx, projectKey, issueType, summary, description, extraFields)
	if err != nil {
		mapped := h.mapper.MapError(ToolJiraCreateIssue, err)
		if detail := remoteErrorDetail(err); detail != "" {
			mapped.Message = mapped.Message + detail
		}
		return nil, mapped
	}

	result := map[string]interface{}{
		"key":  data["key"],
		"id":   data["id"],
		"self": data["self"],
		"raw":  data,
	}
	return h.mapper.MapToToolResponse(result)
}

// remoteErrorDetail extracts the remote error body from a transport failure.
// Valid JSON comes back compacted; anything else comes back as trimmed text.
func remoteErrorDetail(err error) string {
	var transportErr *domain.TransportError
	if !errors.As(err, &transportErr) || transportErr.Body == "" {
		return ""
	}

	text := strings.TrimSpace(transportErr.Body)
	if text == "" {
		return ""
	}
	if json.Valid([]byte(text)) {
		return fmt.Sprintf(" | Jira response: %s", text)
	}
	return fmt.Sprintf(" | Jira raw response: %s", text)
}

// handleCreateIssueDebug handles the jira_create_issue_debug tool call.
// This is the only operation that does not fail on a non-2xx response.
func (h *JiraHandler) handleCreateIssueDebug(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	projectKey, err := getStringParam(args, "project_key", true)
	if err != nil {
		return nil, err
	}
	issueType, err := getStringParam(args, "issue_type", true)
	if err != nil {
		return nil, err
	}
	summary, err := getStringParam(args, "summary", true)
	if err != nil {
		return nil, err
	}
	description, err := getStringParam(args, "description", false)
	if err != nil {
		return nil, err
	}
	extraFields, err := getObjectParam(args, "extra_fields")
	if err != nil {
		return nil, err
	}

	result, err := h.client.CreateIssueDebug(ctx, projectKey, issueType, summary, description, extraFields)
	if err != nil {
		return nil, h.mapper.MapError(ToolJiraCreateIssueDebug, err)
	}

	var responseBody interface{}
	if err := json.Unmarshal(result.ResponseBody, &responseBody); err != nil {
		responseBody = map[string]interface{}{"raw_text": string(result.ResponseBody)}
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"status_code":     result.StatusCode,
		"ok":              result.OK,
		"request_payload": result.RequestPayload,
		"response_body":   responseBody,
	})
}

// handleAddComment handles the jira_add_comment tool call.
func (h *JiraHandler) handleAddComment(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueKey, err := getStringParam(args, "issue_key", true)
	if err != nil {
		return nil, err
	}
	body, err := getStringParam(args, "body", true)
	if err != nil {
		return nil, err
	}

	data, err := h.client.AddComment(ctx, issueKey, body)
	if err != nil {
		return nil, h.mapper.MapError(ToolJiraAddComment, err)
	}

	summary := map[string]interface{}{
		"id":      data["id"],
		"self":    data["self"],
		"body":    data["body"],
		"author":  field(data, "author", "displayName"),
		"created": data["created"],
		"raw":     data,
	}
	return h.mapper.MapToToolResponse(summary)
}

// handleAddAttachment handles the jira_add_attachment tool call.
// Jira returns a list of attachment objects; the first is surfaced alongside
// the raw list. File-open failures surface as-is.
func (h *JiraHandler) handleAddAttachment(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueKey, err := getStringParam(args, "issue_key", true)
	if err != nil {
		return nil, err
	}
	filePath, err := getStringParam(args, "file_path", true)
	if err != nil {
		return nil, err
	}

	data, err := h.client.AddAttachment(ctx, issueKey, filePath)
	if err != nil {
		return nil, h.mapper.MapError(ToolJiraAddAttachment, err)
	}

	summary := map[string]interface{}{
		"attachment": firstItem(data),
		"raw":        data,
	}
	return h.mapper.MapToToolResponse(summary)
}

// handleGetCreateMeta handles the jira_get_createmeta tool call.
// The raw metadata is large, so a simplified per-field view (name, required,
// schema, sample allowed value) is built for inspection in chat.
func (h *JiraHandler) handleGetCreateMeta(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	projectKey, err := getStringParam(args, "project_key", true)
	if err != nil {
		return nil, err
	}
	issueTypeName, err := getStringParam(args, "issue_type_name", false)
	if err != nil {
		return nil, err
	}

	data, err := h.client.GetCreateMeta(ctx, projectKey, issueTypeName)
	if err != nil {
		return nil, h.mapper.MapError(ToolJiraGetCreateMeta, err)
	}

	projects := []map[string]interface{}{}
	for _, project := range listField(data, "projects") {
		simpleProject := map[string]interface{}{
			"key":  itemField(project, "key"),
			"id":   itemField(project, "id"),
			"name": itemField(project, "name"),
		}

		issueTypes := []map[string]interface{}{}
		projectObj, _ := project.(map[string]interface{})
		for _, itype := range listField(projectObj, "issuetypes") {
			fields := []map[string]interface{}{}
			fieldDefs, _ := itemField(itype, "fields").(map[string]interface{})
			for fieldID, fieldDef := range fieldDefs {
				fields = append(fields, map[string]interface{}{
					"id":                    fieldID,
					"name":                  itemField(fieldDef, "name"),
					"required":              itemField(fieldDef, "required"),
					"schema":                itemField(fieldDef, "schema"),
					"allowed_values_sample": firstAllowedValue(fieldDef),
				})
			}
			issueTypes = append(issueTypes, map[string]interface{}{
				"id":     itemField(itype, "id"),
				"name":   itemField(itype, "name"),
				"fields": fields,
			})
		}
		simpleProject["issuetypes"] = issueTypes
		projects = append(projects, simpleProject)
	}

	summary := map[string]interface{}{
		"projects": projects,
		"raw":      data,
	}
	return h.mapper.MapToToolResponse(summary)
}

// firstAllowedValue returns the first allowed value of a field definition,
// or nil when the field has none.
func firstAllowedValue(fieldDef interface{}) interface{} {
	allowed, _ := itemField(fieldDef, "allowedValues").([]interface{})
	if len(allowed) == 0 {
		return nil
	}
	return allowed[0]
}

// handleCreateProject handles the jira_create_project tool call.
func (h *JiraHandler) handleCreateProject(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	key, err := getStringParam(args, "key", true)
	if err != nil {
		return nil, err
	}
	name, err := getStringParam(args, "name", true)
	if err != nil {
		return nil, err
	}
	projectTypeKey, err := getStringParam(args, "project_type_key", true)
	if err != nil {
		return nil, err
	}
	lead, err := getStringParam(args, "lead", true)
	if err != nil {
		return nil, err
	}
	description, err := getStringParam(args, "description", false)
	if err != nil {
		return nil, err
	}
	extraFields, err := getObjectParam(args, "extra_fields")
	if err != nil {
		return nil, err
	}

	data, err := h.client.CreateProject(ctx, key, name, projectTypeKey, lead, description, extraFields)
	if err != nil {
		return nil, h.mapper.MapError(ToolJiraCreateProject, err)
	}

	summary := map[string]interface{}{
		"key":  data["key"],
		"id":   data["id"],
		"self": data["self"],
		"raw":  data,
	}
	return h.mapper.MapToToolResponse(summary)
}

// handleDeleteIssue handles the jira_delete_issue tool call.
func (h *JiraHandler) handleDeleteIssue(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueKey, err := getStringParam(args, "issue_key", true)
	if err != nil {
		return nil, err
	}
	deleteSubtasks, err := getBoolParam(args, "delete_subtasks", false)
	if err != nil {
		return nil, err
	}

	if err := h.client.DeleteIssue(ctx, issueKey, deleteSubtasks); err != nil {
		return nil, h.mapper.MapError(ToolJiraDeleteIssue, err)
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"key":             issueKey,
		"deleted":         true,
		"delete_subtasks": deleteSubtasks,
	})
}

// handleDeleteProject handles the jira_delete_project tool call.
func (h *JiraHandler) handleDeleteProject(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	key, err := getStringParam(args, "key", true)
	if err != nil {
		return nil, err
	}

	if err := h.client.DeleteProject(ctx, key); err != nil {
		return nil, h.mapper.MapError(ToolJiraDeleteProject, err)
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"key":     key,
		"deleted": true,
	})
}
