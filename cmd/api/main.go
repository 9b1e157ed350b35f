package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/snaplist/snaplist-backend/internal/config"
	"github.com/snaplist/snaplist-backend/internal/db"
	"github.com/snaplist/snaplist-backend/internal/model"
	"github.com/snaplist/snaplist-backend/internal/server"
)

// Set via -ldflags at build time.
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

	// Connect the database after the listener is up so a slow Cloud SQL
	// handshake does not block health checks.
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
		if err := conn.AutoMigrate(&model.Listing{}, &model.Purchase{}, &model.Notification{}); err != nil {
			log.Printf("auto migrate error: %v", err)
		}
	}()

	if err := <-errCh; err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
