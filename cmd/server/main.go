package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/openmars/mars-server-go/internal/config"
	"github.com/openmars/mars-server-go/internal/game"
	"github.com/openmars/mars-server-go/internal/game/cards"
	"github.com/openmars/mars-server-go/internal/repository"
	"github.com/openmars/mars-server-go/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting mars server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	registry := cards.NewRegistry()
	engine := game.NewEngine(logger, registry.Resolve)
	logger.Info("match engine initialized", zap.Int("cards", len(registry.Names())))

	// The snapshot store is optional; without it matches live in memory only.
	var snapshots *repository.SnapshotRepository
	if cfg.Database.Enabled {
		db, dbErr := repository.NewDB(ctx, cfg.Database, logger)
		if dbErr != nil {
			logger.Fatal("failed to connect to database", zap.Error(dbErr))
		}
		defer db.Close()

		snapshots = repository.NewSnapshotRepository(db)
		if schemaErr := snapshots.EnsureSchema(ctx); schemaErr != nil {
			logger.Fatal("failed to prepare snapshot schema", zap.Error(schemaErr))
		}
		logger.Info("snapshot repository initialized")

		restoreStoredGames(ctx, engine, snapshots, logger)
	}

	metrics := server.NewMetrics()
	wsServer := server.NewServer(cfg.Server, engine, metrics, logger)

	if snapshots != nil && cfg.Game.SnapshotOnChange {
		attachSnapshotWriter(ctx, engine, wsServer, snapshots, logger)
	}

	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: wsServer.Routes(),
	}
	go func() {
		logger.Info("starting websocket server", zap.String("address", cfg.Server.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Error("websocket server error", zap.Error(serveErr))
		}
	}()

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsServer = &http.Server{Addr: cfg.Metrics.Address, Handler: mux}
		go func() {
			logger.Info("starting metrics server", zap.String("address", cfg.Metrics.Address))
			if serveErr := metricsServer.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
				logger.Error("metrics server error", zap.Error(serveErr))
			}
		}()
	}

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("websocket server shutdown error", zap.Error(err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", zap.Error(err))
		}
	}

	logger.Info("mars server stopped")
}

// restoreStoredGames replays every stored snapshot into the engine so
// suspended matches survive a restart.
func restoreStoredGames(ctx context.Context, engine *game.Engine, snapshots *repository.SnapshotRepository, logger *zap.Logger) {
	stored, err := snapshots.List(ctx)
	if err != nil {
		logger.Error("failed to list stored games", zap.Error(err))
		return
	}
	for _, entry := range stored {
		snap, err := snapshots.Load(ctx, entry.GameID)
		if err != nil {
			logger.Error("failed to load snapshot", zap.String("game_id", entry.GameID), zap.Error(err))
			continue
		}
		if err := engine.RestoreGame(snap); err != nil {
			logger.Error("failed to restore game", zap.String("game_id", entry.GameID), zap.Error(err))
			continue
		}
		logger.Info("game restored", zap.String("game_id", entry.GameID))
	}
}

// attachSnapshotWriter persists a fresh snapshot after every committed
// stimulus, chaining onto the server's notification handler.
func attachSnapshotWriter(ctx context.Context, engine *game.Engine, wsServer *server.Server, snapshots *repository.SnapshotRepository, logger *zap.Logger) {
	engine.SetNotificationHandler(func(n game.GameNotification) {
		wsServer.HandleNotification(n)
		if n.Type != "GAME_STATE_CHANGE" && n.Type != "GAME_CREATED" && n.Type != "GAME_END" {
			return
		}
		snap, err := engine.Snapshot(n.GameID)
		if err != nil {
			logger.Error("failed to snapshot game", zap.String("game_id", n.GameID), zap.Error(err))
			return
		}
		if err := snapshots.Save(ctx, snap); err != nil {
			logger.Error("failed to persist snapshot", zap.String("game_id", n.GameID), zap.Error(err))
		}
	})
}

// initLogger initializes the zap logger based on configuration.
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
