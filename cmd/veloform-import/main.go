package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/veloform/veloform/internal/config"
	"github.com/veloform/veloform/internal/importer"
	"github.com/veloform/veloform/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	archivePath := flag.String("path", "", "path to archive directory (required)")
	stateDir := flag.String("state-dir", "", "directory for the import state database (default: <archive>/.veloform)")
	athleteID := flag.Int("athlete", 1, "athlete ID to import data for")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *archivePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: veloform-import -config config.yaml -path /path/to/archive [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Verify archive directory exists
	info, err := os.Stat(*archivePath)
	if err != nil || !info.IsDir() {
		log.Error("archive path does not exist or is not a directory", "path", *archivePath)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// The default athlete may not exist yet on a fresh database.
	if *athleteID == 1 && !*dryRun {
		if _, err := db.GetOrCreateAthlete(ctx, "local", "Local Dev Athlete"); err != nil {
			log.Error("ensuring default athlete failed", "error", err)
			os.Exit(1)
		}
	}

	// Open import state (skipped in dry-run so reruns see every file)
	var state *importer.StateDB
	if !*dryRun {
		dir := *stateDir
		if dir == "" {
			dir = *archivePath + "/.veloform"
		}
		state, err = importer.OpenStateDB(dir)
		if err != nil {
			log.Error("failed to open state db", "error", err)
			os.Exit(1)
		}
		defer state.Close()
	}

	// Run import
	imp := importer.New(db, state, log, *athleteID, *dryRun)
	stats, err := imp.Import(ctx, *archivePath)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"metrics_inserted", stats.MetricsInserted,
		"metrics_duplicated", stats.MetricsDuplicated,
		"sessions_inserted", stats.SessionsInserted,
		"sessions_duplicated", stats.SessionsDuplicated,
		"tests_inserted", stats.TestsInserted,
		"tests_duplicated", stats.TestsDuplicated,
	)
	if len(stats.RejectedMetrics) > 0 {
		log.Info("rejected metrics (not in allowlist)", "metrics", stats.RejectedMetrics)
	}
}
