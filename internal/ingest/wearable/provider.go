package wearable

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/veloform/veloform/internal/ingest"
	"github.com/veloform/veloform/internal/models"
	"github.com/veloform/veloform/internal/storage"
)

// Provider processes wearable sync payloads: recovery biometrics posted
// daily by a watch or ring companion app.
type Provider struct {
	db  *storage.DB
	log *slog.Logger
}

// NewProvider creates a new wearable ingest provider.
func NewProvider(db *storage.DB, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest validates metrics against the allowlist and stores accepted data
// points. Rejected metric names are reported back to the client so a
// misconfigured sync shows up on the first post rather than silently.
func (p *Provider) Ingest(ctx context.Context, payload *models.WearablePayload, athleteID int) (*ingest.Result, error) {
	result := &ingest.Result{}

	var rows []models.BiometricRow
	rejectedSet := map[string]bool{}

	for _, m := range payload.Data.Metrics {
		allowed, err := p.db.IsMetricAllowed(ctx, m.Name)
		if err != nil {
			return result, fmt.Errorf("checking allowlist for %s: %w", m.Name, err)
		}
		if !allowed {
			if !rejectedSet[m.Name] {
				result.RejectedNames = append(result.RejectedNames, m.Name)
				rejectedSet[m.Name] = true
			}
			result.MetricsRejected += len(m.Data)
			continue
		}

		for _, dp := range m.Data {
			result.MetricsReceived++
			if dp.Date.IsZero() {
				p.log.Warn("skipping data point with zero timestamp", "metric", m.Name)
				continue
			}
			rows = append(rows, models.BiometricRow{
				Time:       dp.Date.Time,
				AthleteID:  athleteID,
				MetricName: m.Name,
				Source:     "wearable",
				Units:      m.Units,
				Qty:        dp.Qty,
			})
		}
	}

	if len(rows) > 0 {
		inserted, err := p.db.InsertBiometrics(ctx, rows)
		if err != nil {
			return result, fmt.Errorf("inserting biometrics: %w", err)
		}
		result.MetricsInserted = inserted
		result.MetricsSkipped = int64(len(rows)) - inserted
	}

	if len(result.RejectedNames) > 0 {
		result.Message = fmt.Sprintf(
			"Some metrics were rejected because they are not in the allowlist: %v. "+
				"Accepted metrics are stored. Check GET /api/v1/allowlist for the full list.",
			result.RejectedNames)
	}

	return result, nil
}
