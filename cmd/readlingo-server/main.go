// main package for the readlingo server
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"
	"github.com/readlingo/readlingo/internal/artifactstore"
	"github.com/readlingo/readlingo/internal/config"
	"github.com/readlingo/readlingo/internal/core"
	"github.com/readlingo/readlingo/internal/extract"
	"github.com/readlingo/readlingo/internal/naming"
	"github.com/readlingo/readlingo/internal/narrate"
	"github.com/readlingo/readlingo/internal/server"
	"github.com/readlingo/readlingo/internal/translate"
)

const shutdownGracePeriod = 10 * time.Second

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "readlingo-server.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

// buildStore selects the artifact store backend from the configuration.
func buildStore(cfg *config.Config, log *logger.Logger) (core.ArtifactStore, func(), error) {
	switch cfg.Storage.Backend {
	case "fs":
		store, err := artifactstore.NewFS(cfg.Paths.ArtifactsDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create filesystem store: %w", err)
		}

		return store, func() {}, nil
	case "sqlite":
		store, err := artifactstore.NewSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}

		cleanup := func() {
			closeErr := store.Close()
			if closeErr != nil {
				log.Warn("Failed to close sqlite store: %v", closeErr)
			}
		}

		return store, cleanup, nil
	case "nats":
		conn, err := nats.Connect(cfg.NATS.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
		}

		jetstreamContext, err := conn.JetStream()
		if err != nil {
			conn.Close()

			return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
		}

		store, err := artifactstore.NewNATS(jetstreamContext, cfg.NATS.ObjectStoreBucket)
		if err != nil {
			conn.Close()

			return nil, nil, fmt.Errorf("failed to bind object store bucket: %w", err)
		}

		return store, conn.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown storage backend %q", core.ErrConfiguration, cfg.Storage.Backend)
	}
}

func serverConfig(cfg *config.Config) server.Config {
	return server.Config{
		MaxUploadBytes:     cfg.Server.MaxUploadMB << 20,
		UploadsDir:         cfg.Paths.UploadsDir,
		TranslationService: cfg.Translation.Service,
		TTSService:         cfg.TTS.Service,
		DeepLAPIKey:        cfg.Translation.DeepLAPIKey,
		ProviderTimeout:    time.Duration(cfg.Translation.TimeoutSeconds) * time.Second,
		Translate: translate.ServiceConfig{
			ChunkMaxChars: cfg.Translation.ChunkMaxChars,
			PageWorkers:   cfg.Translation.PageWorkers,
			Strict:        cfg.Translation.Strict,
		},
		Narrate: narrate.ServiceConfig{
			AudioDir:       cfg.Paths.AudioDir,
			WordsPerMinute: cfg.TTS.WordsPerMinute,
		},
		Slow: cfg.TTS.Slow,
	}
}

func run() error {
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	for _, dir := range []string{cfg.Paths.UploadsDir, cfg.Paths.AudioDir} {
		err = naming.EnsureDir(dir)
		if err != nil {
			return err
		}
	}

	store, cleanup, err := buildStore(cfg, finalLog)
	if err != nil {
		finalLog.Error("Failed to build artifact store: %v", err)

		return err
	}
	defer cleanup()

	srv := server.New(serverConfig(cfg), store, extract.NewPDF(), finalLog)

	httpServer := &http.Server{
		Addr:              cfg.Server.ListenAddress,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		finalLog.System("Listening on %s (storage=%s, translation=%s, tts=%s)",
			cfg.Server.ListenAddress, cfg.Storage.Backend,
			cfg.Translation.Service, cfg.TTS.Service)

		serveErr := httpServer.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-errCh:
		finalLog.Error("Server failed: %v", err)

		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		finalLog.System("Received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()

	err = httpServer.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
