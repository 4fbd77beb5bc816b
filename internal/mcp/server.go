package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("posecoach", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("posecoach posture rule server. List exercises, inspect their joint-angle rules, and score a frame of pose landmarks against an exercise."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetExerciseRules, Handler: h.getExerciseRules},
		server.ServerTool{Tool: toolScorePose, Handler: h.scorePose},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCatalog, Handler: h.catalogText},
		server.ServerResource{Resource: resJoints, Handler: h.jointNames},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resCatalog = mcp.NewResource(
	"posecoach://catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("The full exercise catalog in its plain-text rule format"),
	mcp.WithMIMEType("text/plain"),
)

var resJoints = mcp.NewResource(
	"posecoach://joints",
	"Joint Names",
	mcp.WithResourceDescription("The 33 landmark names rules may reference, in provider index order"),
	mcp.WithMIMEType("application/json"),
)
