package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/autohive/automarket-backend/internal/config"
	"github.com/autohive/automarket-backend/internal/db"
	"github.com/autohive/automarket-backend/internal/model"
	"github.com/autohive/automarket-backend/internal/server"
	"github.com/autohive/automarket-backend/internal/service"
	"github.com/joho/godotenv"
)

var (
	gitSHA    = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	srv := server.New(nil, gitSHA, buildTime)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	errCh := make(chan error, 1)

	go func() {
		log.Printf("starting server on %s", addr)
		errCh <- srv.Start(addr)
	}()

	go func() {
		cfg, err := config.Load()
		if err != nil {
			log.Printf("config load error: %v", err)
			return
		}
		conn, err := db.Connect(cfg)
		if err != nil {
			log.Printf("db connect error: %v", err)
			return
		}
		srv.SetDB(conn)
		if err := conn.AutoMigrate(&model.Notification{}); err != nil {
			log.Printf("auto migrate error: %v", err)
		}

		every, err := time.ParseDuration(cfg.NotificationCleanupEvery)
		if err != nil {
			log.Printf("invalid NOTIFICATION_CLEANUP_EVERY %q: %v", cfg.NotificationCleanupEvery, err)
			every = time.Hour
		}
		runner := service.NewCleanupRunner(srv.Service(), every, cfg.NotificationRetentionDays)
		go runner.Run(context.Background())
	}()

	if err := <-errCh; err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
