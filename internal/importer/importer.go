// Package importer bulk-loads historical exports into the database. An
// archive directory holds gzip-compressed JSON files in two subdirectories:
// wearable/ (biometric exports, one WearablePayload per file) and trainer/
// (session and power-test exports, one TrainerPayload per file).
package importer

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/veloform/veloform/internal/engine/metabolic"
	"github.com/veloform/veloform/internal/models"
	"github.com/veloform/veloform/internal/storage"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	MetricsInserted    int64
	MetricsDuplicated  int64
	SessionsInserted   int64
	SessionsDuplicated int64
	TestsInserted      int64
	TestsDuplicated    int64

	RejectedMetrics []string
}

// Importer reads archive files from an export directory and inserts data
// into the DB. A sqlite state database records which files have already
// been imported so repeated runs only touch new or changed files.
type Importer struct {
	db        *storage.DB
	state     *StateDB
	log       *slog.Logger
	athleteID int
	dryRun    bool
	stats     Stats

	rejectedSet map[string]bool
}

// New creates a new Importer. state may be nil, in which case every file
// is processed (the row-level ON CONFLICT dedupe still applies).
func New(db *storage.DB, state *StateDB, log *slog.Logger, athleteID int, dryRun bool) *Importer {
	return &Importer{
		db:          db,
		state:       state,
		log:         log,
		athleteID:   athleteID,
		dryRun:      dryRun,
		rejectedSet: map[string]bool{},
	}
}

// Import processes all .json.gz files under the given archive directory.
func (imp *Importer) Import(ctx context.Context, archiveDir string) (*Stats, error) {
	wearableDir := filepath.Join(archiveDir, "wearable")
	trainerDir := filepath.Join(archiveDir, "trainer")

	if _, err := os.Stat(wearableDir); err == nil {
		if err := imp.importWearableDir(ctx, wearableDir); err != nil {
			return &imp.stats, fmt.Errorf("importing wearable archives: %w", err)
		}
	}

	if _, err := os.Stat(trainerDir); err == nil {
		if err := imp.importTrainerDir(ctx, trainerDir); err != nil {
			return &imp.stats, fmt.Errorf("importing trainer archives: %w", err)
		}
	}

	return &imp.stats, nil
}

// importWearableDir imports all wearable archive files in a directory.
func (imp *Importer) importWearableDir(ctx context.Context, dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.json.gz"))
	if err != nil {
		return err
	}

	for _, f := range files {
		data, skip, err := imp.readArchive(f, "wearable")
		if err != nil {
			imp.log.Warn("read failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}
		if skip {
			imp.stats.FilesSkipped++
			continue
		}

		var payload models.WearablePayload
		if err := json.Unmarshal(data, &payload); err != nil {
			imp.log.Warn("parse failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}

		var rows []models.BiometricRow
		for _, m := range payload.Data.Metrics {
			allowed, err := imp.db.IsMetricAllowed(ctx, m.Name)
			if err != nil {
				return fmt.Errorf("checking allowlist for %s: %w", m.Name, err)
			}
			if !allowed {
				if !imp.rejectedSet[m.Name] {
					imp.stats.RejectedMetrics = append(imp.stats.RejectedMetrics, m.Name)
					imp.rejectedSet[m.Name] = true
					imp.log.Info("skipping metric (not in allowlist)", "metric", m.Name)
				}
				continue
			}
			for _, dp := range m.Data {
				if dp.Date.IsZero() {
					continue
				}
				rows = append(rows, models.BiometricRow{
					Time:       dp.Date.Time,
					AthleteID:  imp.athleteID,
					MetricName: m.Name,
					Source:     "archive",
					Units:      m.Units,
					Qty:        dp.Qty,
				})
			}
		}

		if len(rows) == 0 {
			imp.stats.FilesSkipped++
			continue
		}

		imp.stats.FilesProcessed++
		if imp.dryRun {
			imp.stats.MetricsInserted += int64(len(rows))
			continue
		}

		inserted, err := imp.batchInsertBiometrics(ctx, rows)
		if err != nil {
			return fmt.Errorf("inserting biometrics from %s: %w", filepath.Base(f), err)
		}
		imp.stats.MetricsInserted += inserted
		imp.stats.MetricsDuplicated += int64(len(rows)) - inserted

		if err := imp.markImported(f, "wearable", inserted); err != nil {
			imp.log.Warn("recording import state failed", "file", f, "error", err)
		}
	}

	return nil
}

// batchInsertBiometrics inserts biometric rows in batches to stay within
// PostgreSQL parameter limits. 6 params per row, max 65535 params →
// ~10922 rows per batch. Use 10000.
func (imp *Importer) batchInsertBiometrics(ctx context.Context, rows []models.BiometricRow) (int64, error) {
	const batchSize = 10000
	var totalInserted int64

	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		inserted, err := imp.db.InsertBiometrics(ctx, rows[i:end])
		if err != nil {
			return totalInserted, err
		}
		totalInserted += inserted
	}
	return totalInserted, nil
}

// importTrainerDir imports all trainer archive files in a directory.
func (imp *Importer) importTrainerDir(ctx context.Context, dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.json.gz"))
	if err != nil {
		return err
	}

	for _, f := range files {
		data, skip, err := imp.readArchive(f, "trainer")
		if err != nil {
			imp.log.Warn("read failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}
		if skip {
			imp.stats.FilesSkipped++
			continue
		}

		var payload models.TrainerPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			imp.log.Warn("parse failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}

		var sessions []models.SessionRow
		for _, s := range payload.Data.Sessions {
			if s.Date.IsZero() || s.TrainingStress < 0 {
				continue
			}
			sessions = append(sessions, sessionRowFrom(s, imp.athleteID))
		}

		var tests []models.PowerTestRow
		for _, t := range payload.Data.PowerTests {
			if t.Date.IsZero() || t.PowerWatts <= 0 || !isCanonicalDuration(t.DurationSec) {
				continue
			}
			tests = append(tests, models.PowerTestRow{
				AthleteID:   imp.athleteID,
				Date:        t.Date.Time,
				DurationSec: t.DurationSec,
				PowerWatts:  t.PowerWatts,
				Source:      "archive",
			})
		}

		if len(sessions) == 0 && len(tests) == 0 {
			imp.stats.FilesSkipped++
			continue
		}

		imp.stats.FilesProcessed++
		if imp.dryRun {
			imp.stats.SessionsInserted += int64(len(sessions))
			imp.stats.TestsInserted += int64(len(tests))
			continue
		}

		var fileRows int64
		if len(sessions) > 0 {
			inserted, err := imp.batchInsertSessions(ctx, sessions)
			if err != nil {
				return fmt.Errorf("inserting sessions from %s: %w", filepath.Base(f), err)
			}
			imp.stats.SessionsInserted += inserted
			imp.stats.SessionsDuplicated += int64(len(sessions)) - inserted
			fileRows += inserted
		}

		if len(tests) > 0 {
			inserted, err := imp.db.InsertPowerTests(ctx, tests)
			if err != nil {
				return fmt.Errorf("inserting power tests from %s: %w", filepath.Base(f), err)
			}
			imp.stats.TestsInserted += inserted
			imp.stats.TestsDuplicated += int64(len(tests)) - inserted
			fileRows += inserted
		}

		if err := imp.markImported(f, "trainer", fileRows); err != nil {
			imp.log.Warn("recording import state failed", "file", f, "error", err)
		}
	}

	return nil
}

// batchInsertSessions inserts session rows in batches. 13 params per row,
// max 65535 params → ~5041 rows per batch. Use 5000.
func (imp *Importer) batchInsertSessions(ctx context.Context, rows []models.SessionRow) (int64, error) {
	const batchSize = 5000
	var totalInserted int64

	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		inserted, err := imp.db.InsertSessions(ctx, rows[i:end])
		if err != nil {
			return totalInserted, err
		}
		totalInserted += inserted
	}
	return totalInserted, nil
}

// readArchive decompresses one archive file, first consulting the state
// database. skip is true when the file was already imported unchanged.
func (imp *Importer) readArchive(path, kind string) (data []byte, skip bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, err
	}

	var hash string
	if imp.state != nil {
		hash, err = HashFile(path)
		if err != nil {
			return nil, false, fmt.Errorf("hashing: %w", err)
		}
		done, err := imp.state.IsImported(filepath.Base(path), kind, info.Size(), hash)
		if err != nil {
			return nil, false, fmt.Errorf("checking state: %w", err)
		}
		if done {
			return nil, true, nil
		}
	}

	data, err = decompressGzip(path)
	if err != nil {
		return nil, false, err
	}
	return data, false, nil
}

// markImported records a successfully imported file in the state database.
func (imp *Importer) markImported(path, kind string, rowsInserted int64) error {
	if imp.state == nil {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hash, err := HashFile(path)
	if err != nil {
		return err
	}
	return imp.state.MarkImported(filepath.Base(path), kind, info.Size(), hash, rowsInserted)
}

// decompressGzip reads and decompresses a gzip file.
func decompressGzip(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompressing: %w", err)
	}
	return data, nil
}

// sessionRowFrom converts a trainer session to a database row.
func sessionRowFrom(s models.TrainerSession, athleteID int) models.SessionRow {
	row := models.SessionRow{
		ID:              uuid.New(),
		AthleteID:       athleteID,
		Date:            s.Date.Time,
		Name:            s.Name,
		DurationMin:     s.DurationMin,
		TrainingStress:  s.TrainingStress,
		IntensityFactor: s.IntensityFactor,
		Source:          "archive",
	}
	if z := s.ZoneMinutes; z != nil {
		row.Z1Min = &z.Z1
		row.Z2Min = &z.Z2
		row.Z3Min = &z.Z3
		row.Z4Min = &z.Z4
		row.Z5Min = &z.Z5
	}
	return row
}

func isCanonicalDuration(sec int) bool {
	for _, d := range metabolic.CanonicalDurations {
		if d == sec {
			return true
		}
	}
	return false
}
