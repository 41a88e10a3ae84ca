package coach

import (
	"context"
	"time"

	"github.com/veloform/veloform/internal/models"
	"github.com/veloform/veloform/internal/storage"
)

// Pass-through queries so the service covers everything the MCP data
// source needs.

func (s *Service) QuerySessions(ctx context.Context, athleteID int, start, end time.Time) ([]models.SessionRow, error) {
	return s.db.QuerySessions(ctx, athleteID, start, end)
}

func (s *Service) BiometricSeries(ctx context.Context, athleteID int, metricName string, start, end time.Time) ([]storage.BiometricSeries, error) {
	return s.db.GetBiometricSeries(ctx, athleteID, metricName, start, end)
}

func (s *Service) LatestBiometrics(ctx context.Context, athleteID int) ([]models.BiometricRow, error) {
	return s.db.GetLatestBiometrics(ctx, athleteID)
}

func (s *Service) PowerCurve(ctx context.Context, athleteID int) ([]models.PowerTestRow, error) {
	return s.db.LatestPowerCurve(ctx, athleteID)
}

func (s *Service) DataStats(ctx context.Context, athleteID int) (*storage.DataStats, error) {
	return s.db.GetDataStats(ctx, athleteID)
}

func (s *Service) AllowedMetrics(ctx context.Context) ([]storage.AllowedMetric, error) {
	return s.db.GetAllowedMetrics(ctx)
}
