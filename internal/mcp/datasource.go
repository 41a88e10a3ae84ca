package mcp

import (
	"context"
	"time"

	"github.com/veloform/veloform/internal/coach"
	"github.com/veloform/veloform/internal/models"
	"github.com/veloform/veloform/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *coach.Service
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	MetabolicProfile(ctx context.Context, athleteID int) (*coach.MetabolicResult, error)
	ZoneTable(ctx context.Context, athleteID int) (*coach.ZonesResult, error)
	TrainingLoad(ctx context.Context, athleteID, days int) (*coach.LoadResult, error)
	DailyReadiness(ctx context.Context, athleteID int, day time.Time) (*coach.ReadinessResult, error)
	QuerySessions(ctx context.Context, athleteID int, start, end time.Time) ([]models.SessionRow, error)
	BiometricSeries(ctx context.Context, athleteID int, metricName string, start, end time.Time) ([]storage.BiometricSeries, error)
	LatestBiometrics(ctx context.Context, athleteID int) ([]models.BiometricRow, error)
	PowerCurve(ctx context.Context, athleteID int) ([]models.PowerTestRow, error)
	DataStats(ctx context.Context, athleteID int) (*storage.DataStats, error)
	AllowedMetrics(ctx context.Context) ([]storage.AllowedMetric, error)
}

// Compile-time check: *coach.Service satisfies DataSource.
var _ DataSource = (*coach.Service)(nil)
