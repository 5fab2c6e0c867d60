package domain

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Transport defines the interface for MCP transport mechanisms.
// Implementations handle communication between MCP clients and the server
// using either stdio or HTTP transport.
type Transport interface {
	// Start begins listening for incoming MCP messages.
	// Returns an error if the transport cannot be initialized.
	Start(ctx context.Context) error

	// Send transmits a JSON-RPC response to the client.
	// Returns an error if the response cannot be sent.
	Send(response *Response) error

	// Receive returns a channel for incoming JSON-RPC requests.
	// The channel is closed when the transport is shut down.
	Receive() <-chan *Request

	// Close gracefully shuts down the transport.
	Close() error
}

// StdioTransport implements Transport using stdin/stdout for communication.
// It reads newline-delimited JSON-RPC messages from stdin and writes
// responses to stdout.
type StdioTransport struct {
	reader  *bufio.Reader
	writer  *bufio.Writer
	reqChan chan *Request
	mu      sync.Mutex
	closed  bool
}

// NewStdioTransport creates a new StdioTransport over os.Stdin/os.Stdout.
func NewStdioTransport() *StdioTransport {
	return NewStdioTransportWithIO(os.Stdin, os.Stdout)
}

// NewStdioTransportWithIO creates a new StdioTransport with custom IO streams.
// This is primarily used for testing.
func NewStdioTransportWithIO(reader io.Reader, writer io.Writer) *StdioTransport {
	return &StdioTransport{
		reader:  bufio.NewReader(reader),
		writer:  bufio.NewWriter(writer),
		reqChan: make(chan *Request, 10), // Buffered channel to avoid blocking
	}
}

// Start begins reading JSON-RPC messages from stdin.
func (t *StdioTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return fmt.Errorf("transport is closed")
	}
	t.mu.Unlock()

	go t.readLoop(ctx)
	return nil
}

// readLoop continuously reads from stdin and parses JSON-RPC requests.
func (t *StdioTransport) readLoop(ctx context.Context) {
	defer close(t.reqChan)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			line, err := t.reader.ReadString('\n')
			if err != nil {
				// bufio read errors are sticky; retrying would spin.
				if err != io.EOF {
					log.Printf("stdio transport: read error: %v", err)
				}
				return
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			var req Request
			if err := json.Unmarshal([]byte(line), &req); err != nil {
				t.sendParseError(nil, err)
				continue
			}

			if req.JSONRPC != "2.0" {
				t.sendInvalidRequest(req.ID, "invalid jsonrpc version")
				continue
			}

			select {
			case t.reqChan <- &req:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Send writes a JSON-RPC response to stdout as a single line of JSON
// followed by a newline.
func (t *StdioTransport) Send(response *Response) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transport is closed")
	}

	if response.JSONRPC == "" {
		response.JSONRPC = "2.0"
	}

	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	// The framing is newline-delimited, so the payload must stay on one line.
	jsonStr := string(data)
	if strings.Contains(jsonStr, "\n") {
		return fmt.Errorf("response contains embedded newlines")
	}

	if _, err := t.writer.WriteString(jsonStr + "\n"); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}

	// Flush to ensure immediate delivery
	if err := t.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush response: %w", err)
	}

	return nil
}

// Receive returns the channel for incoming JSON-RPC requests.
func (t *StdioTransport) Receive() <-chan *Request {
	return t.reqChan
}

// Close gracefully shuts down the transport.
func (t *StdioTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}

	t.closed = true
	// reqChan is closed by readLoop
	return nil
}

// sendParseError sends a parse error response.
func (t *StdioTransport) sendParseError(id interface{}, err error) {
	response := &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &Error{
			Code:    ParseError,
			Message: "Parse error",
			Data:    err.Error(),
		},
	}
	_ = t.Send(response)
}

// sendInvalidRequest sends an invalid request error response.
func (t *StdioTransport) sendInvalidRequest(id interface{}, reason string) {
	response := &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &Error{
			Code:    InvalidRequest,
			Message: "Invalid Request",
			Data:    reason,
		},
	}
	_ = t.Send(response)
}

// HTTPTransport implements Transport using HTTP with SSE for communication.
// It exposes two endpoints:
// 1. SSE endpoint (GET) for server-to-client messages
// 2. HTTP POST endpoint for client-to-server messages
type HTTPTransport struct {
	host    string
	port    int
	server  *http.Server
	reqChan chan *Request
	mu      sync.Mutex
	closed  bool
	// Session management for SSE connections
	sessions   map[string]*sseSession
	sessionsMu sync.RWMutex
}

// sseSession represents an active SSE connection
type sseSession struct {
	id          string
	messageChan chan *Response
	done        chan struct{}
	closeOnce   sync.Once
}

// close signals the session's SSE loop to exit. Both the client-disconnect
// path and transport Close call it, so it must be idempotent.
func (s *sseSession) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(host string, port int) *HTTPTransport {
	return &HTTPTransport{
		host:     host,
		port:     port,
		reqChan:  make(chan *Request, 10),
		sessions: make(map[string]*sseSession),
	}
}

// Start begins the HTTP server and starts listening for incoming requests.
func (t *HTTPTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return fmt.Errorf("transport is closed")
	}
	t.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", t.handleSSE)             // SSE endpoint for server-to-client
	mux.HandleFunc("/mcp/message", t.handleMessage) // POST endpoint for client-to-server

	addr := fmt.Sprintf("%s:%d", t.host, t.port)
	t.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := t.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http transport: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		t.Close()
	}()

	return nil
}

// handleSSE handles SSE connections (GET requests) for server-to-client messages.
func (t *HTTPTransport) handleSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	session := &sseSession{
		id:          uuid.NewString(),
		messageChan: make(chan *Response, 10),
		done:        make(chan struct{}),
	}

	t.sessionsMu.Lock()
	t.sessions[session.id] = session
	t.sessionsMu.Unlock()

	// Tell the client where to send messages for this session.
	messageEndpoint := fmt.Sprintf("/mcp/message?sessionId=%s", session.id)
	fmt.Fprintf(w, "event: endpoint\ndata: %s\n\n", messageEndpoint)
	flusher.Flush()

	log.Printf("sse session %s established", session.id)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Printf("sse session %s disconnected", session.id)
			t.sessionsMu.Lock()
			delete(t.sessions, session.id)
			t.sessionsMu.Unlock()
			session.close()
			return
		case <-session.done:
			return
		case response := <-session.messageChan:
			data, err := json.Marshal(response)
			if err != nil {
				log.Printf("sse session %s: failed to marshal response: %v", session.id, err)
				continue
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", string(data))
			flusher.Flush()
		case <-ticker.C:
			// Keep-alive comment
			fmt.Fprintf(w, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}

// handleMessage handles HTTP POST requests for client-to-server messages.
func (t *HTTPTransport) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "Missing sessionId parameter", http.StatusBadRequest)
		return
	}

	t.sessionsMu.RLock()
	session, exists := t.sessions[sessionID]
	t.sessionsMu.RUnlock()

	if !exists {
		http.Error(w, "Invalid session", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		t.sendErrorToSession(session, nil, ParseError, "Parse error", err.Error())
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if req.JSONRPC != "2.0" {
		t.sendErrorToSession(session, req.ID, InvalidRequest, "Invalid Request", "invalid jsonrpc version")
		w.WriteHeader(http.StatusAccepted)
		return
	}

	// Close closes reqChan while holding mu, so the enqueue must happen under
	// the same lock or it could send on a closed channel.
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		http.Error(w, "Transport closed", http.StatusServiceUnavailable)
		return
	}
	select {
	case t.reqChan <- &req:
		t.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	default:
		t.mu.Unlock()
		t.sendErrorToSession(session, req.ID, InternalError, "Internal error", "request queue full")
		w.WriteHeader(http.StatusServiceUnavailable)
	}
}

// sendErrorToSession sends an error response to a specific session.
func (t *HTTPTransport) sendErrorToSession(session *sseSession, id interface{}, code int, message string, data interface{}) {
	response := &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}

	select {
	case session.messageChan <- response:
	default:
		log.Printf("sse session %s: channel full, dropping error response", session.id)
	}
}

// Send transmits a JSON-RPC response to all active SSE sessions.
func (t *HTTPTransport) Send(response *Response) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return fmt.Errorf("transport is closed")
	}
	t.mu.Unlock()

	if response.JSONRPC == "" {
		response.JSONRPC = "2.0"
	}

	t.sessionsMu.RLock()
	defer t.sessionsMu.RUnlock()

	if len(t.sessions) == 0 {
		return fmt.Errorf("no active sessions")
	}

	for _, session := range t.sessions {
		select {
		case session.messageChan <- response:
		default:
			log.Printf("sse session %s: channel full, dropping response", session.id)
		}
	}

	return nil
}

// Receive returns the channel for incoming JSON-RPC requests.
func (t *HTTPTransport) Receive() <-chan *Request {
	return t.reqChan
}

// Close gracefully shuts down the HTTP server and all SSE sessions.
func (t *HTTPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}

	t.closed = true

	t.sessionsMu.Lock()
	for _, session := range t.sessions {
		session.close()
	}
	t.sessions = make(map[string]*sseSession)
	t.sessionsMu.Unlock()

	close(t.reqChan)

	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}

	return nil
}
