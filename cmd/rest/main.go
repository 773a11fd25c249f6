package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-sqlagent-be/internal/bootstrap"
	"ai-sqlagent-be/internal/config"
	"ai-sqlagent-be/internal/server"
	"ai-sqlagent-be/internal/tracer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Databases
	appDB, targetDB, err := bootstrap.OpenDatabases(cfg)
	if err != nil {
		log.Panicf("Unable to connect to database: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, appDB, targetDB, cfg)
	if err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}
	defer container.Close()

	shutdownTracer := tracer.InitTracer(ctx, tracer.Config{
		Enabled:  cfg.App.OtelEnabled,
		Endpoint: cfg.App.OtelEndpoint,
	}, container.Logger)
	defer shutdownTracer(context.Background())

	// 4. Start Background Services
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Fatalf("Consumer Service Error: %v", err)
	}
	go container.WebSocketHub.Run(ctx)

	// 5. Initialize Server
	srv := server.New(cfg, container)
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown()
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
