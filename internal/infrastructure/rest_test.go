package infrastructure

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"atlassian-suite-mcp/internal/domain"
)

func TestBasicAuthDecorate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	BasicAuth{Username: "alice", Password: "token"}.Decorate(req)

	username, password, ok := req.BasicAuth()
	if !ok {
		t.Fatal("Expected basic auth header")
	}
	if username != "alice" || password != "token" {
		t.Errorf("Unexpected credentials: %s/%s", username, password)
	}
}

func TestQueryAuthDecorate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/boards?fields=name", nil)
	QueryAuth{Key: "k", Token: "t"}.Decorate(req)

	q := req.URL.Query()
	if q.Get("key") != "k" || q.Get("token") != "t" {
		t.Errorf("Expected key/token query params, got %q", req.URL.RawQuery)
	}
	if q.Get("fields") != "name" {
		t.Error("Existing query params should survive decoration")
	}
}

func TestDoJSON_Success(t *testing.T) {
	var gotPath, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"42","extra":{"nested":true}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{Username: "u", Password: "p"}, nil)

	var out map[string]interface{}
	if err := client.DoJSON(context.Background(), http.MethodGet, "/thing/42", nil, nil, &out); err != nil {
		t.Fatalf("DoJSON failed: %v", err)
	}

	if gotPath != "/thing/42" {
		t.Errorf("Expected path /thing/42, got %q", gotPath)
	}
	if gotAccept != "application/json" {
		t.Errorf("Expected Accept application/json, got %q", gotAccept)
	}
	if out["id"] != "42" {
		t.Errorf("Expected id 42, got %v", out["id"])
	}
	// unknown keys survive the generic decode
	if out["extra"] == nil {
		t.Error("Expected unknown fields to be preserved")
	}
}

func TestDoJSON_RequestBodySetsContentType(t *testing.T) {
	var gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		io.WriteString(w, `{}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{}, nil)

	payload := map[string]interface{}{"jql": "project = TEST"}
	var out map[string]interface{}
	if err := client.DoJSON(context.Background(), http.MethodPost, "/search", nil, payload, &out); err != nil {
		t.Fatalf("DoJSON failed: %v", err)
	}

	if gotContentType != "application/json" {
		t.Errorf("Expected JSON content type, got %q", gotContentType)
	}
	if !strings.Contains(gotBody, `"jql":"project = TEST"`) {
		t.Errorf("Unexpected request body: %q", gotBody)
	}
}

func TestDoJSON_NonSuccessReturnsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"errorMessages":["Issue does not exist"]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{}, nil)

	var out map[string]interface{}
	err := client.DoJSON(context.Background(), http.MethodGet, "/issue/NOPE-1", nil, nil, &out)
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}

	var transportErr *domain.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Expected *domain.TransportError, got %T", err)
	}
	if transportErr.StatusCode != 404 {
		t.Errorf("Expected status 404, got %d", transportErr.StatusCode)
	}
	if !strings.Contains(transportErr.Body, "Issue does not exist") {
		t.Errorf("Expected response body preserved, got %q", transportErr.Body)
	}
}

func TestDoJSON_NilOutDiscardsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{}, nil)

	if err := client.DoJSON(context.Background(), http.MethodDelete, "/content/1", nil, nil, nil); err != nil {
		t.Fatalf("DoJSON failed: %v", err)
	}
}

func TestDoRaw_NonSuccessIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"errors":{"summary":"Summary is required"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{}, nil)

	status, body, err := client.DoRaw(context.Background(), http.MethodPost, "/issue", nil, map[string]interface{}{})
	if err != nil {
		t.Fatalf("DoRaw should not fail on 400: %v", err)
	}
	if status != 400 {
		t.Errorf("Expected status 400, got %d", status)
	}
	if !strings.Contains(string(body), "Summary is required") {
		t.Errorf("Expected raw body preserved, got %q", string(body))
	}
}

func TestUploadFile(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "report.txt")
	if err := os.WriteFile(filePath, []byte("file contents"), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	var gotToken, gotContentType string
	var gotFileName, gotFileBody, gotComment string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Atlassian-Token")
		gotContentType = r.Header.Get("Content-Type")

		_, params, err := mime.ParseMediaType(gotContentType)
		if err != nil {
			t.Errorf("Invalid multipart content type: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		mr := multipart.NewReader(r.Body, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Errorf("Failed to read part: %v", err)
				break
			}
			data, _ := io.ReadAll(part)
			switch part.FormName() {
			case "file":
				gotFileName = part.FileName()
				gotFileBody = string(data)
			case "comment":
				gotComment = string(data)
			}
		}

		io.WriteString(w, `[{"id":"10001","filename":"report.txt"}]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{Username: "u", Password: "p"}, nil)

	var out interface{}
	fields := map[string]string{"comment": "uploaded for review"}
	if err := client.UploadFile(context.Background(), "/issue/TEST-1/attachments", nil, filePath, fields, &out); err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}

	if gotToken != "no-check" {
		t.Errorf("Expected X-Atlassian-Token no-check, got %q", gotToken)
	}
	if !strings.HasPrefix(gotContentType, "multipart/form-data") {
		t.Errorf("Expected multipart content type, got %q", gotContentType)
	}
	if gotFileName != "report.txt" {
		t.Errorf("Expected file name report.txt, got %q", gotFileName)
	}
	if gotFileBody != "file contents" {
		t.Errorf("Expected file contents streamed, got %q", gotFileBody)
	}
	if gotComment != "uploaded for review" {
		t.Errorf("Expected comment field, got %q", gotComment)
	}

	list, ok := out.([]interface{})
	if !ok || len(list) != 1 {
		t.Fatalf("Expected decoded attachment list, got %T", out)
	}
}

func TestUploadFile_MissingFile(t *testing.T) {
	client := NewClient("http://example.invalid", BasicAuth{}, nil)

	err := client.UploadFile(context.Background(), "/upload", nil, "/no/such/file.txt", nil, nil)
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if !os.IsNotExist(err) {
		t.Errorf("Expected os.IsNotExist error, got %v", err)
	}
}

func TestUploadFile_NonSuccessReturnsTransportError(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(filePath, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, "attachments disabled")
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{}, nil)

	err := client.UploadFile(context.Background(), "/upload", nil, filePath, nil, nil)

	var transportErr *domain.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Expected *domain.TransportError, got %v", err)
	}
	if transportErr.StatusCode != 403 {
		t.Errorf("Expected status 403, got %d", transportErr.StatusCode)
	}
}
