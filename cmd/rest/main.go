package main

import (
	"context"
	"log"

	"sparke-core-be/internal/bootstrap"
	"sparke-core-be/internal/config"
	"sparke-core-be/internal/server"
	"sparke-core-be/internal/tracer"
	"sparke-core-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	// 0. Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container, container.Logger)

	color.Cyan("sparke-core-be — document lifecycle / ingestion / search")
	color.Green("env=%s port=%s dim=%d", cfg.App.Environment, cfg.App.Port, cfg.Engine.Dimension)

	// 6. Run Server
	log.Fatal(srv.Run())
}
