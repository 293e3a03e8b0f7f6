// Package main provides the stdio MCP entry point for the risk calculator.
// It requires no external services; history uses a local SQLite file.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/epiverse/bcrat/internal/config"
	"github.com/epiverse/bcrat/internal/mcpserver"
)

func main() {
	cfg := config.LoadLiteConfig()

	log.Printf("Starting risk assessment MCP server (data dir: %s)", cfg.DataDir)

	server, err := mcpserver.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		log.Fatalf("MCP server failed: %v", err)
	}

	log.Println("MCP server stopped")
}
