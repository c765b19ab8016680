package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/sweepdreams/curbside-notifications/loadtest/internal/stub"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "9021"
	}

	storage := stub.NewStorage()
	handler := stub.NewHandler(storage)

	r := gin.New()
	r.Use(gin.Recovery())
	handler.Register(r)

	slog.Info("starting stub schedule store", slog.String("port", port))
	if err := r.Run(":" + port); err != nil {
		slog.Error("stub server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
