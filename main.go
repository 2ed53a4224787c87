package main

//go:generate swag init

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/satheeshds/facturation/db"
	_ "github.com/satheeshds/facturation/docs"
	"github.com/satheeshds/facturation/handlers"
	"github.com/satheeshds/facturation/mailer"
	"github.com/satheeshds/facturation/storage"
)

// @title           Facturation API
// @version         1.0.0
// @description     Invoicing API for French freelancers: clients, services, invoices, PDF generation and email delivery.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.basic  BasicAuth

func main() {
	// Local development configuration
	godotenv.Load()

	// Configure structured logging
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	// Open database
	database, err := db.Open()
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Run migrations
	if err := db.Migrate(database); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Blob store for generated PDFs and uploaded documents
	blobDir := os.Getenv("BLOB_DIR")
	if blobDir == "" {
		blobDir = "./data/files"
	}
	files, err := storage.New(blobDir)
	if err != nil {
		slog.Error("failed to open blob store", "error", err)
		os.Exit(1)
	}

	mail := mailer.NewFromEnv()
	if !mail.Enabled() {
		slog.Warn("SMTP_HOST not set, invoice email is disabled")
	}

	// Shared dependencies for handlers
	handlers.DB = database
	handlers.Files = files
	handlers.Mail = mail

	// Router setup
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// API routes with basic auth
	r.Mount("/api/v1", handlers.NewRouter())

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := fmt.Sprintf(":%s", port)
	slog.Info("server starting", "address", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
