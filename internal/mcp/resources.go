package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/veloform/veloform/internal/engine/readiness"
)

func (h *handlers) dailyBriefing(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	athleteID := AthleteIDFromContext(ctx)
	now := time.Now()

	assessment, err := h.ds.DailyReadiness(ctx, athleteID, now)
	if err != nil {
		return nil, err
	}

	loadResult, err := h.ds.TrainingLoad(ctx, athleteID, 7)
	if err != nil {
		h.log.Warn("daily_briefing: load query failed", "error", err)
	}

	latest, err := h.ds.LatestBiometrics(ctx, athleteID)
	if err != nil {
		h.log.Warn("daily_briefing: biometrics query failed", "error", err)
	}

	briefing := map[string]any{
		"date":              now.Format("2006-01-02"),
		"readiness":         assessment,
		"training_load":     loadResult,
		"latest_biometrics": latest,
	}
	if assessment.Assessment != nil {
		briefing["readiness_summary"] = readiness.DescribeScore(assessment.Assessment.ReadinessScore)
	}

	data, err := json.Marshal(briefing)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) currentProfile(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	athleteID := AthleteIDFromContext(ctx)

	profile, err := h.ds.MetabolicProfile(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	zones, err := h.ds.ZoneTable(ctx, athleteID)
	if err != nil {
		h.log.Warn("current_profile: zones query failed", "error", err)
	}

	data, err := json.Marshal(map[string]any{
		"profile": profile,
		"zones":   zones,
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) metricCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	metrics, err := h.ds.AllowedMetrics(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(metrics)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
