// Package mcpserver exposes the risk calculator as MCP tools over stdio, so
// assistants can run assessments without the HTTP surface.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/epiverse/bcrat/internal/cache"
	"github.com/epiverse/bcrat/internal/config"
	"github.com/epiverse/bcrat/internal/domain"
	"github.com/epiverse/bcrat/internal/history"
	"github.com/epiverse/bcrat/internal/riskmodel"
	"github.com/epiverse/bcrat/internal/service"
	"github.com/epiverse/bcrat/internal/tables"
)

// Server wires the risk service into an MCP server over stdio.
type Server struct {
	config    *config.LiteConfig
	mcpServer *mcp.Server
	engine    *riskmodel.Calculator
	service   *service.RiskService
	store     domain.AssessmentStore
	logger    *logrus.Logger
}

// Option is a functional option for Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// WithStore sets a custom assessment store.
func WithStore(store domain.AssessmentStore) Option {
	return func(s *Server) error {
		s.store = store
		return nil
	}
}

// NewServer creates a stdio MCP server. It needs no external services; the
// optional SQLite history lives under the data directory.
func NewServer(cfg *config.LiteConfig, opts ...Option) (*Server, error) {
	server := &Server{
		config: cfg,
		logger: logrus.New(),
	}

	if cfg.LogFormat == "text" {
		server.logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		server.logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	server.logger.SetLevel(level)

	for _, opt := range opts {
		if err := opt(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.store == nil && cfg.HistoryEnabled {
		if err := cfg.EnsureDataDir(); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		sqliteStore, err := history.NewSQLiteStore(cfg.HistoryDBPath())
		if err != nil {
			return nil, fmt.Errorf("failed to create history store: %w", err)
		}
		server.store = history.NewResilientStore(sqliteStore, server.logger)
	}

	server.engine = riskmodel.NewCalculator(tables.Default(), server.logger)

	serviceOpts := []service.Option{
		service.WithResultCache(cache.NewMemoryCache(cfg.MemoSize, cfg.MemoTTL)),
	}
	if server.store != nil {
		serviceOpts = append(serviceOpts, service.WithHistory(server.store))
	}
	riskService, err := service.NewRiskService(
		server.engine,
		service.ServiceConfig{MemoSize: cfg.MemoSize},
		server.logger,
		serviceOpts...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create risk service: %w", err)
	}
	server.service = riskService

	serverInfo := &mcp.Implementation{
		Name:    "bcrat-mcp-server",
		Version: "v1.0.0",
	}
	server.mcpServer = mcp.NewServer(serverInfo, nil)

	server.registerTools()

	server.logger.Info("MCP server initialized")
	return server, nil
}

// Start runs the MCP server over stdio until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting MCP server on stdio...")

	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// Close cleans up server resources.
func (s *Server) Close() error {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.WithError(err).Error("Failed to close history store")
			return err
		}
	}
	return nil
}
