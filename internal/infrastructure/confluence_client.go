package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"atlassian-suite-mcp/internal/domain"
)

// ConfluenceClient talks to the Confluence Server/DC REST API under
// {base_url}/rest/api. Responses are decoded generically so callers receive
// the full body exactly as the remote returned it.
type ConfluenceClient struct {
	rest *Client
}

// NewConfluenceClient creates a Confluence API client from a credential bundle.
func NewConfluenceClient(config *domain.ConfluenceConfig, httpClient *http.Client) *ConfluenceClient {
	auth := BasicAuth{Username: config.Username, Password: config.APIToken}
	return &ConfluenceClient{
		rest: NewClient(config.BaseURL+"/rest/api", auth, httpClient),
	}
}

// BaseURL returns the REST root for the Confluence instance.
func (c *ConfluenceClient) BaseURL() string {
	return c.rest.BaseURL()
}

// GetPage retrieves a page by ID with storage body, version and space expanded.
func (c *ConfluenceClient) GetPage(ctx context.Context, pageID string) (map[string]interface{}, error) {
	query := url.Values{}
	query.Set("expand", "body.storage,version,space")

	var page map[string]interface{}
	if err := c.rest.DoJSON(ctx, http.MethodGet, "/content/"+url.PathEscape(pageID), query, nil, &page); err != nil {
		return nil, err
	}
	return page, nil
}

// SearchPages searches content via CQL with caller-provided pagination.
func (c *ConfluenceClient) SearchPages(ctx context.Context, cql string, limit, start int) (map[string]interface{}, error) {
	query := url.Values{}
	query.Set("cql", cql)
	query.Set("limit", strconv.Itoa(limit))
	query.Set("start", strconv.Itoa(start))
	query.Set("expand", "space,version")

	var results map[string]interface{}
	if err := c.rest.DoJSON(ctx, http.MethodGet, "/content/search", query, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// GetSpaces lists spaces with plain description and homepage expanded.
func (c *ConfluenceClient) GetSpaces(ctx context.Context, limit, start int) (map[string]interface{}, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("start", strconv.Itoa(start))
	query.Set("expand", "description.plain,homepage")

	var results map[string]interface{}
	if err := c.rest.DoJSON(ctx, http.MethodGet, "/space", query, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// CreatePage creates a page in the given space using the storage
// representation. An optional parent page ID makes the new page its child.
func (c *ConfluenceClient) CreatePage(ctx context.Context, spaceKey, title, bodyStorage, parentPageID string) (map[string]interface{}, error) {
	payload := map[string]interface{}{
		"type":  "page",
		"title": title,
		"space": map[string]interface{}{"key": spaceKey},
		"body": map[string]interface{}{
			"storage": map[string]interface{}{
				"value":          bodyStorage,
				"representation": "storage",
			},
		},
	}
	if parentPageID != "" {
		payload["ancestors"] = []map[string]interface{}{{"id": parentPageID}}
	}

	var page map[string]interface{}
	if err := c.rest.DoJSON(ctx, http.MethodPost, "/content", nil, payload, &page); err != nil {
		return nil, err
	}
	return page, nil
}

// CreateSpace creates a space. spaceType defaults to "global" at the tool layer.
func (c *ConfluenceClient) CreateSpace(ctx context.Context, key, name, description, spaceType string) (map[string]interface{}, error) {
	payload := map[string]interface{}{
		"key":  key,
		"name": name,
		"type": spaceType,
	}
	if description != "" {
		payload["description"] = map[string]interface{}{
			"plain": map[string]interface{}{
				"value":          description,
				"representation": "plain",
			},
		}
	}

	var space map[string]interface{}
	if err := c.rest.DoJSON(ctx, http.MethodPost, "/space", nil, payload, &space); err != nil {
		return nil, err
	}
	return space, nil
}

// AddComment adds a comment to a page, in storage format.
// Comments are content of type "comment" contained by the page.
func (c *ConfluenceClient) AddComment(ctx context.Context, pageID, bodyStorage string) (map[string]interface{}, error) {
	payload := map[string]interface{}{
		"type": "comment",
		"container": map[string]interface{}{
			"id":   pageID,
			"type": "page",
		},
		"body": map[string]interface{}{
			"storage": map[string]interface{}{
				"value":          bodyStorage,
				"representation": "storage",
			},
		},
	}

	var comment map[string]interface{}
	if err := c.rest.DoJSON(ctx, http.MethodPost, "/content", nil, payload, &comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// AddAttachment uploads a local file as a page attachment.
// Confluence responds with a result list wrapper; it is returned as-is.
func (c *ConfluenceClient) AddAttachment(ctx context.Context, pageID, filePath, comment string) (interface{}, error) {
	fields := map[string]string{}
	if comment != "" {
		fields["comment"] = comment
	}

	var result interface{}
	path := fmt.Sprintf("/content/%s/child/attachment", url.PathEscape(pageID))
	if err := c.rest.UploadFile(ctx, path, nil, filePath, fields, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DeletePage deletes a page by ID. The status parameter selects which
// version to delete ("current" by default); Confluence returns 204 on success.
func (c *ConfluenceClient) DeletePage(ctx context.Context, pageID, status string) error {
	query := url.Values{}
	query.Set("status", status)
	return c.rest.DoJSON(ctx, http.MethodDelete, "/content/"+url.PathEscape(pageID), query, nil, nil)
}

// DeleteSpace deletes a space by key.
func (c *ConfluenceClient) DeleteSpace(ctx context.Context, key string) error {
	return c.rest.DoJSON(ctx, http.MethodDelete, "/space/"+url.PathEscape(key), nil, nil, nil)
}
