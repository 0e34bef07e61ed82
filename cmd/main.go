package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/swipepad/swipepad-gobackend/internal/config"
	"github.com/swipepad/swipepad-gobackend/internal/currency"
	"github.com/swipepad/swipepad-gobackend/internal/db"
	"github.com/swipepad/swipepad-gobackend/internal/gesture"
	"github.com/swipepad/swipepad-gobackend/internal/handlers"
	"github.com/swipepad/swipepad-gobackend/internal/services"
	"github.com/swipepad/swipepad-gobackend/internal/timer"
)

func main() {
	envFile := flag.String("env", ".env", "path to the .env file")
	issueToken := flag.String("issue-token", "", "print a token for this user id and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of tokens printed by -issue-token")
	flag.Parse()

	// Load .env
	cfg := config.Load(*envFile)
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	if *issueToken != "" {
		token, err := handlers.GenerateToken([]byte(cfg.JWTSecret), *issueToken, *tokenTTL)
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Println(token)
		return
	}

	// Connect to MongoDB
	if cfg.MongoURI == "" {
		log.Fatal("MONGOURI environment variable not set")
	}
	client, err := db.Connect(context.Background(), cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Disconnect(client)

	database := client.Database(cfg.MongoDB)
	if err := db.EnsureIndexes(context.Background(), database); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	profiles, err := gesture.LoadProfiles(cfg.GestureProfilesFile)
	if err != nil {
		log.Fatalf("Failed to load gesture profiles: %v", err)
	}

	defaultCurrency, err := currency.Parse(cfg.DefaultCurrency)
	if err != nil {
		log.Printf("Warning: %v, falling back to %s", err, currency.Cents)
		defaultCurrency = currency.Cents
	}

	// Initialize services and handlers
	campaignService := services.NewCampaignService(database)
	statsService := services.NewStatsService(database)
	donationService := services.NewDonationService(database, campaignService, statsService)
	settingsService := services.NewSettingsService(
		services.NewMongoSettingsStore(database),
		services.DefaultSettings(defaultCurrency),
		profiles,
	)

	sessions := services.NewSessionManager(timer.Real{}, services.SessionConfig{
		BatchWindow:     cfg.BatchWindow,
		DoubleTapWindow: cfg.DoubleTapWindow,
		OverlayDuration: cfg.OverlayDuration,
		IdleTTL:         cfg.SessionIdleTTL,
		FeedSize:        cfg.FeedSize,
		Profiles:        profiles,
		Currency:        defaultCurrency,
	}, donationService, settingsService)

	reaperCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()
	go sessions.Run(reaperCtx, cfg.SessionIdleTTL/2)

	router := handlers.NewRouter(handlers.Handlers{
		Campaigns:    handlers.NewCampaignHandler(campaignService),
		Swipes:       handlers.NewSwipeHandler(sessions),
		Transactions: handlers.NewTransactionHandler(sessions),
		Events:       handlers.NewEventHandler(sessions),
		Stats:        handlers.NewStatsHandler(statsService, donationService),
		Settings:     handlers.NewSettingsHandler(settingsService, sessions),
	}, []byte(cfg.JWTSecret))

	// Start server
	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	stopReaper()
	sessions.Shutdown()
	log.Println("Server exited gracefully")
}
