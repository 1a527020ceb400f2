package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"stockroom/internal/config"
	"stockroom/internal/database"

	"github.com/hashicorp/go-hclog"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		hclog.Default().Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	log := newLogger(cfg)

	if cfg.Clear {
		if err := clearStore(cfg); err != nil {
			log.Error("error clearing database", "error", err)
			os.Exit(1)
		}
		log.Info("database cleared successfully")
		return
	}

	app, err := NewApp(cfg, log)
	if err != nil {
		log.Error("failed to start", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("starting server", "addr", cfg.AppPort)
		if err := app.Fiber.Listen(cfg.AppPort); err != nil {
			log.Error("server failed", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := app.Fiber.ShutdownWithContext(ctx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
	if err := app.Close(); err != nil {
		log.Error("error releasing resources", "error", err)
	}
	log.Info("server gracefully stopped")
}

// clearStore drops and recreates the products table.
func clearStore(cfg config.Config) error {
	if cfg.DBDriver == config.DriverMemory {
		return nil
	}
	db, err := database.Open(database.Config{Driver: cfg.DBDriver, DSN: cfg.DatabaseDSN})
	if err != nil {
		return err
	}
	defer database.Close(db)
	return database.Reset(db)
}
