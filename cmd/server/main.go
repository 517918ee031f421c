// Command server runs the task management HTTP API.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskdeck/taskdeck/internal/app/server"
	"github.com/taskdeck/taskdeck/internal/platform/config"
	"github.com/taskdeck/taskdeck/internal/platform/otel"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := otel.Setup(ctx, "taskdeck")
	if err != nil {
		config.Exitf("setup tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Printf("shutdown tracing: %v", err)
		}
	}()

	cfg, err := server.LoadConfig()
	if err != nil {
		config.Exitf("load config: %v", err)
	}

	srv, err := server.New(cfg)
	if err != nil {
		config.Exitf("initialize server: %v", err)
	}
	defer srv.Close()

	if err := srv.ListenAndServe(ctx); err != nil {
		config.Exitf("serve: %v", err)
	}
}
