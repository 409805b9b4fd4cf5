package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/Jay666-max/shapan/internal/config"
	"github.com/Jay666-max/shapan/internal/database"
	"github.com/Jay666-max/shapan/internal/ledger"
	"github.com/Jay666-max/shapan/internal/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Open the ledger database and seed the trader roster
	db, err := database.NewDatabase(&cfg)
	if err != nil {
		log.Fatal("Failed to open ledger database", zap.Error(err))
	}

	book := ledger.New(db, log)

	// Setup HTTP server
	mux := http.NewServeMux()

	apiHandler := NewAPIHandler(log, book)
	apiHandler.Routes(mux)

	// Static file serving for the panel page
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/templates/index.html")
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting web server", zap.String("address", addr))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("Web server failed", zap.Error(err))
	}
}
