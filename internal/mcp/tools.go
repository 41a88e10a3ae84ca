package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetMetabolicProfile = mcp.NewTool("get_metabolic_profile",
	mcp.WithDescription("Retrieve the athlete's metabolic profile: critical power, anaerobic work capacities, VLamax, FatMax, LT1/LT2 markers, and the energy system split."),
)

var toolGetZones = mcp.NewTool("get_zones",
	mcp.WithDescription("Retrieve the athlete's seven-zone power table. Each zone carries its watt range and estimated fat/carb oxidation rates, plus FatMax/LT1/LT2 markers."),
)

var toolGetTrainingLoad = mcp.NewTool("get_training_load",
	mcp.WithDescription("Retrieve the chronic/acute training load series (CTL, ATL, TSB) for a trailing window, with window summary stats and a form description."),
	mcp.WithNumber("days", mcp.Description("Window length in days. Defaults to 90.")),
)

var toolGetReadiness = mcp.NewTool("get_readiness",
	mcp.WithDescription("Retrieve the daily readiness assessment: readiness/recovery/stress/strain scores, status strings, and the recommended training intensity with load adjustment."),
	mcp.WithString("date", mcp.Description("Assessment date (YYYY-MM-DD). Defaults to today.")),
)

var toolGetSessions = mcp.NewTool("get_sessions",
	mcp.WithDescription("Query completed training sessions with stress scores, durations, intensity factors, and zone splits."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolGetBiometrics = mcp.NewTool("get_biometrics",
	mcp.WithDescription("Retrieve a daily-bucketed biometric series (avg/min/max/count per day) for one metric."),
	mcp.WithString("metric", mcp.Required(), mcp.Description("Metric name (e.g. hrv_rmssd, resting_hr, sleep_duration_min)")),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolGetPowerCurve = mcp.NewTool("get_power_curve",
	mcp.WithDescription("Retrieve the athlete's latest power-duration curve: the most recent maximal effort at each canonical test duration."),
)

var toolGetDataStats = mcp.NewTool("get_data_stats",
	mcp.WithDescription("Aggregate statistics about the athlete's stored data: row counts, date coverage, and per-session-name totals."),
)

var toolListAvailableMetrics = mcp.NewTool("list_available_metrics",
	mcp.WithDescription("List all available biometric metrics with their categories and enabled status."),
)

// --- Tool handlers ---

func (h *handlers) getMetabolicProfile(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	athleteID := AthleteIDFromContext(ctx)

	profile, err := h.ds.MetabolicProfile(ctx, athleteID)
	if err != nil {
		h.log.Error("mcp get_metabolic_profile", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(profile)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getZones(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	athleteID := AthleteIDFromContext(ctx)

	zones, err := h.ds.ZoneTable(ctx, athleteID)
	if err != nil {
		h.log.Error("mcp get_zones", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(zones)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingLoad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	athleteID := AthleteIDFromContext(ctx)
	days := req.GetInt("days", 90)
	if days <= 0 {
		days = 90
	}

	loadResult, err := h.ds.TrainingLoad(ctx, athleteID, days)
	if err != nil {
		h.log.Error("mcp get_training_load", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(loadResult)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getReadiness(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	athleteID := AthleteIDFromContext(ctx)

	day := time.Now()
	if dateStr := req.GetString("date", ""); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return mcp.NewToolResultError("invalid date (YYYY-MM-DD): " + err.Error()), nil
		}
		day = parsed
	}

	assessment, err := h.ds.DailyReadiness(ctx, athleteID, day)
	if err != nil {
		h.log.Error("mcp get_readiness", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(assessment)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	athleteID := AthleteIDFromContext(ctx)
	sessions, err := h.ds.QuerySessions(ctx, athleteID, start, end)
	if err != nil {
		h.log.Error("mcp get_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getBiometrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metric, err := req.RequireString("metric")
	if err != nil {
		return mcp.NewToolResultError("metric parameter is required"), nil
	}

	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	athleteID := AthleteIDFromContext(ctx)
	points, err := h.ds.BiometricSeries(ctx, athleteID, metric, start, end)
	if err != nil {
		h.log.Error("mcp get_biometrics", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(points)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPowerCurve(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	athleteID := AthleteIDFromContext(ctx)

	curve, err := h.ds.PowerCurve(ctx, athleteID)
	if err != nil {
		h.log.Error("mcp get_power_curve", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(curve)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getDataStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	athleteID := AthleteIDFromContext(ctx)

	stats, err := h.ds.DataStats(ctx, athleteID)
	if err != nil {
		h.log.Error("mcp get_data_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listAvailableMetrics(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metrics, err := h.ds.AllowedMetrics(ctx)
	if err != nil {
		h.log.Error("mcp list_available_metrics", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(metrics)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
