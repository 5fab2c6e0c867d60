package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"atlassian-suite-mcp/internal/domain"
)

// JiraClient talks to the Jira Server/DC REST API under {base_url}/rest/api/2.
// Responses are decoded generically so callers receive the full body exactly
// as the remote returned it.
type JiraClient struct {
	rest *Client
}

// NewJiraClient creates a Jira API client from a credential bundle.
func NewJiraClient(config *domain.JiraConfig, httpClient *http.Client) *JiraClient {
	auth := BasicAuth{Username: config.Username, Password: config.APIToken}
	return &JiraClient{
		rest: NewClient(config.BaseURL+"/rest/api/2", auth, httpClient),
	}
}

// BaseURL returns the REST root for the Jira instance.
func (c *JiraClient) BaseURL() string {
	return c.rest.BaseURL()
}

// GetIssue retrieves an issue by key (e.g., "TEST-123").
// fields is an optional comma-separated projection ("summary,status,assignee").
func (c *JiraClient) GetIssue(ctx context.Context, issueKey, fields string) (map[string]interface{}, error) {
	var query url.Values
	if fields != "" {
		query = url.Values{}
		query.Set("fields", fields)
	}

	var issue map[string]interface{}
	if err := c.rest.DoJSON(ctx, http.MethodGet, "/issue/"+url.PathEscape(issueKey), query, nil, &issue); err != nil {
		return nil, err
	}
	return issue, nil
}

// SearchIssues runs a JQL search via POST /search with pagination.
func (c *JiraClient) SearchIssues(ctx context.Context, jql string, maxResults, startAt int) (map[string]interface{}, error) {
	payload := map[string]interface{}{
		"jql":        jql,
		"maxResults": maxResults,
		"startAt":    startAt,
	}

	var results map[string]interface{}
	if err := c.rest.DoJSON(ctx, http.MethodPost, "/search", nil, payload, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// issueCreatePayload builds the create-issue request body.
// Extra fields are merged after the computed defaults, so caller-supplied
// keys silently overwrite project/summary/issuetype on collision. This is a
// deliberate escape hatch for customfield_* values.
func issueCreatePayload(projectKey, issueType, summary, description string, extraFields map[string]interface{}) map[string]interface{} {
	fields := map[string]interface{}{
		"project":   map[string]interface{}{"key": projectKey},
		"summary":   summary,
		"issuetype": map[string]interface{}{"name": issueType},
	}
	if description != "" {
		fields["description"] = description
	}
	for key, value := range extraFields {
		fields[key] = value
	}

	return map[string]interface{}{"fields": fields}
}

// CreateIssue creates an issue and returns the created key/id response.
func (c *JiraClient) CreateIssue(ctx context.Context, projectKey, issueType, summary, description string, extraFields map[string]interface{}) (map[string]interface{}, error) {
	payload := issueCreatePayload(projectKey, issueType, summary, description, extraFields)

	var issue map[string]interface{}
	if err := c.rest.DoJSON(ctx, http.MethodPost, "/issue", nil, payload, &issue); err != nil {
		return nil, err
	}
	return issue, nil
}

// DebugCreateResult carries the outcome of a non-raising create attempt.
type DebugCreateResult struct {
	StatusCode     int
	OK             bool
	RequestPayload map[string]interface{}
	ResponseBody   []byte
}

// CreateIssueDebug sends the same payload as CreateIssue but never treats a
// non-2xx status as an error. It returns the status code, the exact outgoing
// payload and the raw response body, for schema discovery against a target
// instance.
func (c *JiraClient) CreateIssueDebug(ctx context.Context, projectKey, issueType, summary, description string, extraFields map[string]interface{}) (*DebugCreateResult, error) {
	payload := issueCreatePayload(projectKey, issueType, summary, description, extraFields)

	status, body, err := c.rest.DoRaw(ctx, http.MethodPost, "/issue", nil, payload)
	if err != nil {
		return nil, err
	}

	return &DebugCreateResult{
		StatusCode:     status,
		OK:             status >= 200 && status < 300,
		RequestPayload: payload,
		ResponseBody:   body,
	}, nil
}

// AddComment adds a comment to an issue.
func (c *JiraClient) AddComment(ctx context.Context, issueKey, body string) (map[string]interface{}, error) {
	payload := map[string]interface{}{"body": body}

	var comment map[string]interface{}
	path := fmt.Sprintf("/issue/%s/comment", url.PathEscape(issueKey))
	if err := c.rest.DoJSON(ctx, http.MethodPost, path, nil, payload, &comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// AddAttachment uploads a local file as an issue attachment.
// Jira responds with a list of attachment objects.
func (c *JiraClient) AddAttachment(ctx context.Context, issueKey, filePath string) (interface{}, error) {
	var result interface{}
	path := fmt.Sprintf("/issue/%s/attachments", url.PathEscape(issueKey))
	if err := c.rest.UploadFile(ctx, path, nil, filePath, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetCreateMeta fetches create metadata for a project, with field expansion
// so required fields and their allowed values are visible. issueTypeName
// optionally narrows the result to one issue type.
func (c *JiraClient) GetCreateMeta(ctx context.Context, projectKey, issueTypeName string) (map[string]interface{}, error) {
	query := url.Values{}
	query.Set("projectKeys", projectKey)
	query.Set("expand", "projects.issuetypes.fields")
	if issueTypeName != "" {
		query.Set("issuetypeNames", issueTypeName)
	}

	var meta map[string]interface{}
	if err := c.rest.DoJSON(ctx, http.MethodGet, "/issue/createmeta", query, nil, &meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// CreateProject creates a project. The caller is responsible for a valid
// combination of type/template/lead for the target instance; extra fields
// merge into the top-level payload.
func (c *JiraClient) CreateProject(ctx context.Context, key, name, projectTypeKey, lead, description string, extraFields map[string]interface{}) (map[string]interface{}, error) {
	payload := map[string]interface{}{
		"key":            key,
		"name":           name,
		"projectTypeKey": projectTypeKey,
		"lead":           lead,
	}
	if description != "" {
		payload["description"] = description
	}
	for k, v := range extraFields {
		payload[k] = v
	}

	var project map[string]interface{}
	if err := c.rest.DoJSON(ctx, http.MethodPost, "/project", nil, payload, &project); err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteIssue deletes an issue by key. deleteSubtasks cascades to subtasks.
func (c *JiraClient) DeleteIssue(ctx context.Context, issueKey string, deleteSubtasks bool) error {
	query := url.Values{}
	query.Set("deleteSubtasks", strconv.FormatBool(deleteSubtasks))
	return c.rest.DoJSON(ctx, http.MethodDelete, "/issue/"+url.PathEscape(issueKey), query, nil, nil)
}

// DeleteProject deletes a project by key or ID.
// Jira typically answers 202 Accepted with an empty body.
func (c *JiraClient) DeleteProject(ctx context.Context, key string) error {
	return c.rest.DoJSON(ctx, http.MethodDelete, "/project/"+url.PathEscape(key), nil, nil, nil)
}
