package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const athleteIDKey contextKey = iota

// AthleteIDFromContext extracts the athlete ID injected by the transport
// layer.
func AthleteIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(athleteIDKey).(int); ok {
		return id
	}
	return 1
}

// WithAthleteID returns a context with the given athlete ID.
func WithAthleteID(ctx context.Context, athleteID int) context.Context {
	return context.WithValue(ctx, athleteIDKey, athleteID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Veloform", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Veloform coaching data server. Query metabolic profiles, power zones, training load, daily readiness, sessions, and biometrics. All data is scoped to the authenticated athlete."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetMetabolicProfile, Handler: h.getMetabolicProfile},
		server.ServerTool{Tool: toolGetZones, Handler: h.getZones},
		server.ServerTool{Tool: toolGetTrainingLoad, Handler: h.getTrainingLoad},
		server.ServerTool{Tool: toolGetReadiness, Handler: h.getReadiness},
		server.ServerTool{Tool: toolGetSessions, Handler: h.getSessions},
		server.ServerTool{Tool: toolGetBiometrics, Handler: h.getBiometrics},
		server.ServerTool{Tool: toolGetPowerCurve, Handler: h.getPowerCurve},
		server.ServerTool{Tool: toolGetDataStats, Handler: h.getDataStats},
		server.ServerTool{Tool: toolListAvailableMetrics, Handler: h.listAvailableMetrics},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resDailyBriefing, Handler: h.dailyBriefing},
		server.ServerResource{Resource: resCurrentProfile, Handler: h.currentProfile},
		server.ServerResource{Resource: resMetricCatalog, Handler: h.metricCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resDailyBriefing = mcp.NewResource(
	"veloform://daily_briefing",
	"Daily Briefing",
	mcp.WithResourceDescription("Today's readiness assessment, current training load, and latest biometrics"),
	mcp.WithMIMEType("application/json"),
)

var resCurrentProfile = mcp.NewResource(
	"veloform://current_profile",
	"Current Metabolic Profile",
	mcp.WithResourceDescription("The athlete's current metabolic profile with the derived power zone table"),
	mcp.WithMIMEType("application/json"),
)

var resMetricCatalog = mcp.NewResource(
	"veloform://metric_catalog",
	"Metric Catalog",
	mcp.WithResourceDescription("All available biometric metrics with categories and enabled status"),
	mcp.WithMIMEType("application/json"),
)
