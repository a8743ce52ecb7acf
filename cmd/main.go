package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"whatstoeat/internal/analytics"
	"whatstoeat/internal/api"
	"whatstoeat/internal/config"
	"whatstoeat/internal/database"
	"whatstoeat/internal/preferences"
	"whatstoeat/internal/recommend"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
	seed        = flag.Int64("seed", 0, "Random seed for recommendation strategies (0 = time-based)")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Printf("Using default configuration: %v", err)
		cfg = config.Default()
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Server.MetricsPort = *metricsPort
	}

	// Initialize database and load any previously stored menu
	store, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	menu, err := store.LoadCatalog()
	if err != nil {
		log.Fatalf("Failed to load stored menu: %v", err)
	}
	log.Printf("Loaded %d meals from %s", menu.Len(), cfg.Database.Path)

	// Initialize preference model and recommendation engine
	prefs := preferences.New()
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	engine := recommend.New(rand.New(rand.NewSource(rngSeed)))

	// Initialize metrics collector
	metricsCollector := analytics.NewMetricsCollector()
	metricsCollector.ObserveCatalog(menu)

	server := api.NewServer(api.Options{
		Catalog:     menu,
		Preferences: prefs,
		Engine:      engine,
		Metrics:     metricsCollector,
		Store:       store,
		DataDir:     cfg.Data.Dir,
		AuthSecret:  cfg.Auth.Secret,
		DefaultTopK: cfg.Recommend.DefaultTopK,
	})

	// Start metrics server
	go startMetricsServer(cfg.Server.MetricsPort, metricsCollector)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Router(),
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting API server on port %d", cfg.Server.Port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

func startMetricsServer(port int, collector *analytics.MetricsCollector) {
	metricsRouter := gin.Default()
	metricsRouter.GET("/metrics", gin.WrapH(promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{})))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}
