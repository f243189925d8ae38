package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"blog/internal/config"
	"blog/internal/db"
	"blog/internal/models"
	"blog/internal/server"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	database, err := db.Open(cfg.DBURI)
	if err != nil {
		logger.Error("open database", "uri", cfg.DBURI, "err", err)
		os.Exit(1)
	}
	srv, err := server.New(models.NewStore(database), "web/templates", logger)
	if err != nil {
		logger.Error("server setup", "err", err)
		os.Exit(1)
	}
	logger.Info("listening", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, srv); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
