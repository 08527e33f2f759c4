package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/caremate/caremate-web/chat"
	"github.com/caremate/caremate-web/config"
	"github.com/caremate/caremate-web/health"
	"github.com/caremate/caremate-web/logging"
	"github.com/caremate/caremate-web/scheduler"
	"github.com/caremate/caremate-web/server"
	"github.com/caremate/caremate-web/session"
	"github.com/caremate/caremate-web/views"
	"github.com/joho/godotenv"
)

func init() {
	// Read the env file from the working directory, or from the executable directory
	if err := godotenv.Load(); err != nil {
		ex, err := os.Executable()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to get executable path: %v\n", err)
			os.Exit(1)
		}
		exPath := filepath.Dir(ex)
		if err := os.Chdir(exPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to change directory: %v\n", err)
			os.Exit(1)
		}
		// A missing file is fine, the environment may already be set
		_ = godotenv.Load()
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logging.InitLogger(logging.Options{
		Dir:            cfg.LogDir,
		Env:            cfg.Env,
		Level:          cfg.LogLevel,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})
	defer logging.Close()

	widget, err := chat.New(cfg.ChatWidget, chat.EmbedOptions{
		ScriptURL:         cfg.ChatScriptURL,
		IntegrationID:     cfg.ChatIntegrationID,
		Region:            cfg.ChatRegion,
		ServiceInstanceID: cfg.ChatServiceInstanceID,
	})
	if err != nil {
		logging.Error("Failed to create chat widget", "error", err)
		os.Exit(1)
	}

	renderer, err := views.NewRenderer()
	if err != nil {
		logging.Error("Failed to parse templates", "error", err)
		os.Exit(1)
	}

	store := session.NewStore(cfg.SessionTTL)

	sched := scheduler.NewScheduler(store, widget, cfg.ChatProbeInterval)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	srv := server.NewServer(cfg, server.Deps{
		Store:    store,
		Widget:   widget,
		Health:   health.NewHealthChecker(store, widget, time.Now()),
		Renderer: renderer,
	})

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-quit:
	case err := <-errCh:
		logging.Error("Server failed to start", "error", err)
		sched.Stop()
		logging.Close()
		os.Exit(1)
	}

	// Stop the jobs first so nothing touches the store during shutdown
	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown failed", "error", err)
	}
}
