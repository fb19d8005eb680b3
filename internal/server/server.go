// Package server exposes the driver's queries and waits as MCP tools.
package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/uisync/internal/driver"
	"github.com/mj1618/uisync/internal/version"
	"go.uber.org/zap"
)

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
	CacheTTL  time.Duration
}

// Server wraps the MCP server with the driver and snapshot cache. Every
// handler holds driverMu for its whole run.
type Server struct {
	driver   *driver.Driver
	driverMu sync.Mutex
	cache    *SnapshotCache
	mcp      *mcpserver.MCPServer
	logger   *zap.Logger
	cfg      Config
}

// New creates and configures an MCP server over d.
func New(d *driver.Driver, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		driver: d,
		cache:  NewSnapshotCache(cfg.CacheTTL, d.Now),
		logger: logger.Named("server"),
		cfg:    cfg,
	}
	s.mcp = mcpserver.NewMCPServer("uisync", version.Version)
	s.registerTools()
	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *mcpserver.MCPServer { return s.mcp }

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve() error {
	s.logger.Info("serving",
		zap.String("transport", s.cfg.Transport),
		zap.String("session", s.driver.Session()),
		zap.String("backend", s.driver.Backend()),
	)
	switch s.cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", s.cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", s.cfg.Transport)
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("current_screen",
			mcp.WithDescription("Report the foreground screen, waiting briefly for transitions to settle"),
		),
		s.handleCurrentScreen,
	)

	s.mcp.AddTool(
		mcp.NewTool("screens",
			mcp.WithDescription("List the live screen stack, bottom first"),
		),
		s.handleScreens,
	)

	s.mcp.AddTool(
		mcp.NewTool("nodes",
			mcp.WithDescription("Extract the UI tree of the foreground screen and its newest overlay"),
			mcp.WithBoolean("visible", mcp.Description("Only include sufficiently shown nodes (default true)")),
			mcp.WithString("type", mcp.Description("Filter by node type or alias (e.g. 'btn', 'TextView')")),
			mcp.WithString("text", mcp.Description("Filter by text, label or hint substring")),
		),
		s.handleNodes,
	)

	s.mcp.AddTool(
		mcp.NewTool("find",
			mcp.WithDescription("Wait for one node by ref, resource id, text pattern, or type and index"),
			mcp.WithString("ref", mcp.Description("Path ref as printed by the nodes tool")),
			mcp.WithString("id", mcp.Description("Resource id or node identity")),
			mcp.WithString("pattern", mcp.Description("Regex (or literal when invalid) matched against text, error and hint")),
			mcp.WithString("type", mcp.Description("Node type the match must descend from")),
			mcp.WithNumber("index", mcp.Description("Zero-based index among distinct matches")),
			mcp.WithNumber("timeout_ms", mcp.Description("Timeout in milliseconds (0 = small timeout)")),
			mcp.WithBoolean("scroll", mcp.Description("Scroll to reveal more nodes (default from config)")),
			mcp.WithBoolean("visible", mcp.Description("Only consider sufficiently shown nodes")),
			mcp.WithBoolean("shown", mcp.Description("Also wait until the match is sufficiently shown")),
		),
		s.handleFind,
	)

	s.mcp.AddTool(
		mcp.NewTool("wait_text",
			mcp.WithDescription("Wait until the expected number of distinct nodes match a text pattern"),
			mcp.WithString("pattern", mcp.Required(), mcp.Description("Regex (or literal when invalid)")),
			mcp.WithString("type", mcp.Description("Node type the match must descend from")),
			mcp.WithNumber("expected", mcp.Description("Distinct matches required (default 1)")),
			mcp.WithNumber("timeout_ms", mcp.Description("Timeout in milliseconds (0 = large timeout)")),
			mcp.WithBoolean("scroll", mcp.Description("Scroll to reveal more nodes (default from config)")),
			mcp.WithBoolean("visible", mcp.Description("Only consider sufficiently shown nodes")),
			mcp.WithBoolean("hard_stop", mcp.Description("Retry scroll passes until the deadline inside one search")),
		),
		s.handleWaitText,
	)

	s.mcp.AddTool(
		mcp.NewTool("wait_screen",
			mcp.WithDescription("Wait for a foreground screen by identity or type name"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Screen identity or type name")),
			mcp.WithNumber("timeout_ms", mcp.Description("Timeout in milliseconds (0 = small timeout)")),
		),
		s.handleWaitScreen,
	)

	s.mcp.AddTool(
		mcp.NewTool("wait_node",
			mcp.WithDescription("Wait for the index-th distinct shown node of a type"),
			mcp.WithString("type", mcp.Required(), mcp.Description("Node type or alias")),
			mcp.WithNumber("index", mcp.Description("Zero-based index")),
			mcp.WithNumber("timeout_ms", mcp.Description("Timeout in milliseconds (0 = small timeout)")),
			mcp.WithBoolean("scroll", mcp.Description("Scroll to reveal more nodes (default from config)")),
		),
		s.handleWaitNode,
	)

	s.mcp.AddTool(
		mcp.NewTool("wait_condition",
			mcp.WithDescription("Wait until a boolean expression over screen, stack, nodes and overlay holds"),
			mcp.WithString("expression", mcp.Required(), mcp.Description(`Expression, e.g. 'screen.type == "Main" && exists("OK")'`)),
			mcp.WithNumber("timeout_ms", mcp.Description("Timeout in milliseconds (0 = small timeout)")),
		),
		s.handleWaitCondition,
	)

	s.mcp.AddTool(
		mcp.NewTool("wait_overlay",
			mcp.WithDescription("Wait for a dialog or popup of the foreground screen to open or close"),
			mcp.WithBoolean("open", mcp.Description("Wait for open (default true) or close (false)")),
			mcp.WithNumber("timeout_ms", mcp.Description("Timeout in milliseconds (0 = small timeout)")),
		),
		s.handleWaitOverlay,
	)

	s.mcp.AddTool(
		mcp.NewTool("pop_screen",
			mcp.WithDescription("Remove the topmost screen from the tracked stack"),
		),
		s.handlePopScreen,
	)

	s.mcp.AddTool(
		mcp.NewTool("render",
			mcp.WithDescription("Render a PNG wireframe of the foreground tree: green nodes are shown, red are clipped"),
			mcp.WithNumber("scale", mcp.Description("Scale factor (default 0.5)")),
			mcp.WithString("labels", mcp.Description("Node labels: none, ids, text (default ids)")),
		),
		s.handleRender,
	)

	s.mcp.AddTool(
		mcp.NewTool("do",
			mcp.WithDescription("Run a batch of steps in order: find, wait_text, wait_screen, wait_overlay, wait_condition, check, search, scroll, pop_screen, sleep"),
			mcp.WithArray("steps", mcp.Required(), mcp.Description("Steps, each an object with one action key")),
			mcp.WithBoolean("stop_on_error", mcp.Description("Stop at the first failed step (default true)")),
		),
		s.handleDo,
	)
}
