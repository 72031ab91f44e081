package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/pflag"
	"go.mongodb.org/mongo-driver/mongo"

	"redbus_site/config"
	"redbus_site/handlers"
	"redbus_site/middleware"
	"redbus_site/search"
	"redbus_site/session"
	"redbus_site/store"
)

func main() {
	configPath := pflag.StringP("config", "c", os.Getenv("CONFIG_FILE"), "path to YAML config file")
	envFile := pflag.String("env-file", "", "path to .env file (default: search upwards from the working directory)")
	port := pflag.StringP("port", "p", "", "listen port (overrides config and PORT)")
	pflag.Parse()

	startTime := time.Now()
	log.Printf("Starting server initialization at %s", startTime.Format(time.RFC3339))

	if err := config.LoadEnv(*envFile); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	dialect, err := search.DialectFor(cfg.Database.Driver)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	// A failed connection is not fatal: the page reports storage as
	// unavailable instead.
	log.Printf("Initializing %s database...", cfg.Database.Driver)
	db, err := config.InitDBWithRetry(ctx, cfg.Database)
	if err != nil {
		log.Printf("Database unavailable, serving without listings: %v", err)
	} else {
		log.Printf("%s database initialized successfully", cfg.Database.Driver)
	}
	listings := store.NewListingStore(db, dialect, cfg.Database.Table)

	var mongoClient *mongo.Client
	var feedback store.FeedbackStore = store.NewMemoryFeedbackStore()
	if cfg.Mongo.URI != "" {
		mongoClient, err = config.ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			log.Printf("Warning: MongoDB unavailable, keeping feedback in memory: %v", err)
		} else {
			feedback = store.NewMongoFeedbackStore(mongoClient, cfg.Mongo.Database, cfg.Mongo.Collection)
		}
	}
	defer config.CloseDB(db, mongoClient)

	sessions := session.NewManager(config.NewSessionCache(cfg.Search.SessionTTL), cfg.Search.SessionTTL)

	busHandler := handlers.NewBusHandler(listings, feedback, sessions, handlers.Options{
		States:       cfg.Search.States,
		Form:         search.FormDefaults{PriceCeiling: cfg.Search.PriceCeiling},
		QueryTimeout: cfg.Search.QueryTimeout,
	})
	healthHandler := handlers.NewHealthHandler(listings, mongoClient, cfg.Database.Driver, cfg.Database.Table, sessions.Count)

	r := mux.NewRouter()
	if cfg.Server.CORSDebug {
		r.Use(middleware.CORSDebugMiddleware)
	}
	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.CompressHandler)
	handlers.RegisterRoutes(r, busHandler, healthHandler)

	// Preflight requests are answered before routing.
	corsHandler := cors.New(middleware.CORSOptions(cfg.Server.AllowedOrigins, cfg.Server.CORSDebug))

	srv := &http.Server{
		Handler:           corsHandler.Handler(r),
		Addr:              ":" + cfg.Server.Port,
		WriteTimeout:      15 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Printf("Starting server on port %s...", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
			serverErrors <- err
		}
	}()

	log.Printf("Server initialized in %v", time.Since(startTime))
	log.Printf("Search page: http://localhost:%s/", cfg.Server.Port)
	log.Printf("Health check endpoint: http://localhost:%s/api/v1/health", cfg.Server.Port)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("Shutdown signal received")
	case err := <-serverErrors:
		log.Printf("Server error received: %v", err)
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	} else {
		log.Println("Server shutdown completed successfully")
	}
}
