package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"

	_ "github.com/lib/pq"

	httpapi "podpal-backend/internal/api/http"
	"podpal-backend/internal/config"
	"podpal-backend/internal/gateway"
	"podpal-backend/internal/jobs"
	"podpal-backend/internal/logger"
	"podpal-backend/internal/repository/postgres"
	"podpal-backend/internal/scheduler"
	"podpal-backend/internal/security"
	"podpal-backend/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Podpal backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Gateways. Each can be disabled in config; disabled gateways become
	// no-ops so the workflow keeps its full shape in every environment.
	ctx := context.Background()

	var push gateway.NotificationGateway = gateway.NoopNotificationGateway{}
	if cfg.Push.Enabled {
		fcm, err := gateway.NewFCMGateway(ctx, cfg.Push.CredentialsFile, store.Users())
		if err != nil {
			log.Fatalf("Failed to initialize FCM gateway: %v", err)
		}
		push = fcm
		logger.Info("FCM push gateway enabled")
	}

	var chat gateway.ChatGateway = gateway.NoopChatGateway{}
	if cfg.Chat.Enabled {
		chat = gateway.NewRestChatGateway(cfg.Chat.BaseURL, cfg.Chat.AppID, cfg.Chat.APIToken)
		logger.Info("Chat gateway enabled", "base_url", cfg.Chat.BaseURL)
	}

	var email gateway.EmailSender = gateway.NoopEmailSender{}
	if cfg.Email.Enabled {
		email = gateway.NewSendGridSender(cfg.Email.APIKey, cfg.Email.FromEmail, cfg.Email.FromName)
		logger.Info("SendGrid email sender enabled")
	}

	// Services
	guard := service.NewCapacityGuard(store)
	recruitmentSvc := service.NewRecruitmentService(store, guard)
	podSvc := service.NewPodService(store, chat)
	noteSvc := service.NewNotificationService(store.Notifications())
	dispatcher := service.NewEventDispatcher(store.Users(), store.Notifications(), push, chat, email)

	// Scheduled jobs
	jobRunner := jobs.NewJobRunner(store, cfg)
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	// HTTP surface
	router := httpapi.NewRouter(
		tokenManager,
		httpapi.NewPodHandler(podSvc),
		httpapi.NewRecruitmentHandler(recruitmentSvc, dispatcher),
		httpapi.NewNotificationHandler(noteSvc),
	)

	addr := cfg.GetServerAddress()
	logger.Info("HTTP server listening", "address", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Error("HTTP server exited", "error", err)
		log.Fatalf("HTTP server exited: %v", err)
	}
}
