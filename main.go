package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"atlassian-suite-mcp/internal/application"
	"atlassian-suite-mcp/internal/domain"
	"atlassian-suite-mcp/internal/infrastructure"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to transport configuration file (optional, defaults to stdio)")
	flag.Parse()

	// Logs go to stderr so stdout stays a clean JSON-RPC stream
	log.SetOutput(os.Stderr)

	// Load .env if present; real environment variables win
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// Load transport configuration
	config, err := domain.LoadTransportConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create response mapper
	mapper := domain.NewResponseMapper()

	// Create API clients and handlers for each configured service.
	// A service with none of its environment variables set is skipped;
	// a partially configured service is a fatal startup error.
	var handlers []domain.ToolHandler

	// Jira
	if domain.JiraConfigured() {
		jiraConfig, err := domain.LoadJiraConfig()
		if err != nil {
			log.Fatalf("Failed to load Jira configuration: %v", err)
		}
		jiraClient := infrastructure.NewJiraClient(jiraConfig, nil)
		handlers = append(handlers, application.NewJiraHandler(jiraClient, mapper))
		log.Println("Jira handler registered")
	} else {
		log.Println("Jira not configured - skipping")
	}

	// Confluence
	if domain.ConfluenceConfigured() {
		confluenceConfig, err := domain.LoadConfluenceConfig()
		if err != nil {
			log.Fatalf("Failed to load Confluence configuration: %v", err)
		}
		confluenceClient := infrastructure.NewConfluenceClient(confluenceConfig, nil)
		handlers = append(handlers, application.NewConfluenceHandler(confluenceClient, mapper))
		log.Println("Confluence handler registered")
	} else {
		log.Println("Confluence not configured - skipping")
	}

	// Trello
	if domain.TrelloConfigured() {
		trelloConfig, err := domain.LoadTrelloConfig()
		if err != nil {
			log.Fatalf("Failed to load Trello configuration: %v", err)
		}
		trelloClient := infrastructure.NewTrelloClient(trelloConfig, nil)
		handlers = append(handlers, application.NewTrelloHandler(trelloClient, mapper))
		log.Println("Trello handler registered")
	} else {
		log.Println("Trello not configured - skipping")
	}

	// Verify at least one handler is registered
	if len(handlers) == 0 {
		log.Fatal("No services configured - set credentials for at least one of Jira, Confluence or Trello")
	}

	// Create request router with all handlers
	router := application.NewRequestRouter(handlers...)
	log.Printf("Request router initialized with %d handler(s)", len(handlers))

	// Create transport based on configuration
	var transport domain.Transport
	switch config.Type {
	case "stdio":
		log.Println("Initializing stdio transport")
		transport = domain.NewStdioTransport()
	case "http":
		log.Printf("Initializing HTTP transport on %s:%d", config.HTTP.Host, config.HTTP.Port)
		transport = domain.NewHTTPTransport(config.HTTP.Host, config.HTTP.Port)
	default:
		log.Fatalf("Invalid transport type: %s", config.Type)
	}

	// Create server with all dependencies
	server := application.NewServer(transport, router, config)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	if config.Type == "stdio" {
		log.Println("MCP server started (stdio transport)")
	} else {
		log.Printf("MCP server started (HTTP transport on %s:%d)", config.HTTP.Host, config.HTTP.Port)
	}

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		cancel()
	case err := <-errChan:
		log.Printf("Server error: %v", err)
		cancel()
		if err := server.Close(); err != nil {
			log.Printf("Error closing server: %v", err)
		}
		os.Exit(1)
	}

	// Close the server
	if err := server.Close(); err != nil {
		log.Printf("Error during server shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server shutdown complete")
}
