package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/logging"
	"cloud.google.com/go/storage"

	"palmchat-backend/internal/api"
	"palmchat-backend/internal/audit"
	"palmchat-backend/internal/config"
	"palmchat-backend/internal/handlers"
	slack_integration "palmchat-backend/internal/integrations/slack"
	"palmchat-backend/internal/palm"
	"palmchat-backend/internal/secrets"
	"palmchat-backend/internal/services"
	"palmchat-backend/internal/slackfmt"
	"palmchat-backend/internal/store/gcs"
)

func main() {
	log.Println("Starting PalmChat Backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	ctx := context.Background()

	// 2. Resolve Slack credentials (Secret Manager fills anything not set in env)
	if err := secrets.ResolveSlackCredentials(ctx, cfg); err != nil {
		log.Fatalf("FATAL: Failed to resolve Slack credentials: %v", err)
	}
	log.Println("Slack credentials resolved.")

	// 3. Initialize the conversation store
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		log.Fatalf("FATAL: Failed to create Cloud Storage client: %v", err)
	}
	defer storageClient.Close()
	convStore := gcs.NewStore(storageClient, cfg.BucketName)
	log.Printf("Conversation store initialized (bucket %s).", cfg.BucketName)

	// 4. Initialize the chat completion client
	examples, err := palm.LoadExamples(cfg.SamplesPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to load few-shot examples: %v", err)
	}
	log.Printf("Loaded %d few-shot example pairs.", len(examples))

	palmClient, err := palm.NewClient(ctx, cfg.ProjectID, cfg.Location, cfg.ChatModel, cfg.KeywordModel,
		cfg.ResponseStyle, examples, palm.Params{
			MaxOutputTokens: cfg.MaxOutputTokens,
			Temperature:     cfg.Temperature,
			TopP:            cfg.TopP,
			TopK:            cfg.TopK,
		})
	if err != nil {
		log.Fatalf("FATAL: Failed to create completion client: %v", err)
	}
	log.Println("Completion client initialized.")

	// 5. Initialize the audit sink
	loggingClient, err := logging.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		log.Fatalf("FATAL: Failed to create Cloud Logging client: %v", err)
	}
	defer loggingClient.Close() // Flushes pending audit entries
	auditSink := audit.NewCloudLoggingSink(loggingClient, cfg.AuditLogName)
	log.Printf("Audit sink initialized (log %s).", cfg.AuditLogName)

	// 6. Initialize the Slack dispatcher and resolve the bot's own user id
	dispatcher := slack_integration.NewDispatcher(cfg.SlackBotToken)
	botUserID, err := dispatcher.BotUserID(ctx)
	if err != nil {
		log.Fatalf("FATAL: Slack auth test failed: %v", err)
	}
	log.Printf("Slack dispatcher initialized (bot user %s).", botUserID)

	// 7. Wire services and handlers
	chatService := services.NewChatService(convStore, palmClient, palmClient, dispatcher,
		slackfmt.StripMarkdown, auditSink)
	log.Println("ChatService initialized.")

	slackWebhookHandler := handlers.NewSlackWebhookHandlers(chatService, cfg.SlackSigningSecret, botUserID)
	log.Println("SlackWebhookHandler initialized.")

	router := api.NewRouter(api.RouterDependencies{
		SlackWebhookHandler: slackWebhookHandler,
		Config:              cfg,
	})
	log.Println("HTTP router configured.")

	// 8. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// Production hardening: Set timeouts to avoid Slowloris attacks
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v\n", cfg.HTTPPort, err)
		}
		log.Println("Server listener routine stopped.")
	}()

	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
	}

	log.Println("Server shutdown complete.")
}
