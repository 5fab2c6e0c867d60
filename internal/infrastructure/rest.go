package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"atlassian-suite-mcp/internal/domain"
)

// Authenticator attaches service credentials to an outgoing request.
// Jira and Confluence use HTTP basic auth; Trello passes its key and token
// as query parameters on every call.
type Authenticator interface {
	Decorate(req *http.Request)
}

// BasicAuth authenticates with a username/API-token pair.
type BasicAuth struct {
	Username string
	Password string
}

// Decorate sets the Authorization header.
func (a BasicAuth) Decorate(req *http.Request) {
	req.SetBasicAuth(a.Username, a.Password)
}

// QueryAuth authenticates with API key and token query parameters.
type QueryAuth struct {
	Key   string
	Token string
}

// Decorate appends key/token to the request URL query.
func (a QueryAuth) Decorate(req *http.Request) {
	q := req.URL.Query()
	q.Set("key", a.Key)
	q.Set("token", a.Token)
	req.URL.RawQuery = q.Encode()
}

// Client is a generic REST resource adapter shared by all service clients.
// It owns a base URL, an authenticator and one long-lived http.Client, and
// performs exactly one HTTP call per operation: no retries, no backoff, no
// rate-limit throttling, no timeout beyond the http.Client's own.
type Client struct {
	baseURL    string
	auth       Authenticator
	httpClient *http.Client
}

// NewClient creates a REST adapter for one service.
// The baseURL should already include the service's REST root
// (e.g. "https://jira.example.com/rest/api/2").
func NewClient(baseURL string, auth Authenticator, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    baseURL,
		auth:       auth,
		httpClient: httpClient,
	}
}

// BaseURL returns the configured REST root for the service.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// newRequest builds an authenticated request for path under the base URL.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint = endpoint + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	c.auth.Decorate(req)
	return req, nil
}

// DoJSON executes one JSON call against the service.
// A non-nil body is marshaled as the JSON request payload; a non-nil out
// receives the decoded response body. Any non-2xx status is returned as a
// *domain.TransportError carrying the raw response body.
func (c *Client) DoJSON(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return domain.NewTransportError(resp.StatusCode, respBody)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// DoRaw executes one JSON call and returns the status code and raw response
// body without treating non-2xx statuses as failures. It only errors on
// marshaling or network problems. This is the escape hatch for the debug
// create operation, which must surface failed responses verbatim.
func (c *Client) DoRaw(ctx context.Context, method, path string, query url.Values, body interface{}) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

// UploadFile streams a local file to the service as multipart form data.
// The file becomes a form part named "file"; extra form fields come from
// fields. The request carries the multipart content type, never the JSON
// one, plus the X-Atlassian-Token header the attachment endpoints demand.
// A file that cannot be opened surfaces the os.Open error untouched.
func (c *Client) UploadFile(ctx context.Context, path string, query url.Values, filePath string, fields map[string]string, out interface{}) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer f.Close()
		part, err := mw.CreateFormFile("file", filepath.Base(filePath))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			pw.CloseWithError(err)
			return
		}
		for name, value := range fields {
			if err := mw.WriteField(name, value); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := c.newRequest(ctx, http.MethodPost, path, query, pr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Atlassian-Token", "no-check")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return domain.NewTransportError(resp.StatusCode, respBody)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
