package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/veloform/veloform/internal/coach"
	"github.com/veloform/veloform/internal/config"
	"github.com/veloform/veloform/internal/ingest/trainer"
	"github.com/veloform/veloform/internal/ingest/wearable"
	"github.com/veloform/veloform/internal/mcp"
	"github.com/veloform/veloform/internal/server"
	"github.com/veloform/veloform/internal/storage"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	mcpMode := flag.Bool("mcp", false, "serve the coaching MCP interface over stdio instead of HTTP")
	remoteURL := flag.String("remote", "", "with -mcp: query a remote Veloform API instead of the local database")
	flag.Parse()

	// In MCP mode stdout carries the protocol, so logs go to stderr.
	logOut := os.Stdout
	if *mcpMode {
		logOut = os.Stderr
	}
	log := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("Veloform starting", "version", Version)

	// Remote MCP mode needs no config or database at all.
	if *mcpMode && *remoteURL != "" {
		serveMCP(mcp.NewHTTPClient(*remoteURL), log)
		return
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Ensure the default athlete DevIdentity resolves to exists.
	if _, err := db.GetOrCreateAthlete(ctx, "local", "Local Dev Athlete"); err != nil {
		log.Error("ensuring default athlete failed", "error", err)
		os.Exit(1)
	}

	svc := coach.NewService(db, cfg.Engine, log)

	if *mcpMode {
		serveMCP(svc, log)
		return
	}

	// Create providers
	wearableProvider := wearable.NewProvider(db, log)
	trainerProvider := trainer.NewProvider(db, log)

	// Create server
	srv := server.New(db, svc, wearableProvider, trainerProvider, cfg.Auth.APIKey, log)

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

// serveMCP runs the MCP server on stdin/stdout until the client disconnects.
func serveMCP(ds mcp.DataSource, log *slog.Logger) {
	s := mcp.New(ds, Version, log)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
