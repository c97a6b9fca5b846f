package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/finance-assistant/internal/analysis"
	"github.com/dvloznov/finance-assistant/internal/api/handlers"
	"github.com/dvloznov/finance-assistant/internal/api/middleware"
	chatmem "github.com/dvloznov/finance-assistant/internal/chat/inmemory"
	"github.com/dvloznov/finance-assistant/internal/classifier"
	"github.com/dvloznov/finance-assistant/internal/config"
	"github.com/dvloznov/finance-assistant/internal/generation"
	infraBQ "github.com/dvloznov/finance-assistant/internal/infra/bigquery"
	jobsmem "github.com/dvloznov/finance-assistant/internal/jobs/inmemory"
	"github.com/dvloznov/finance-assistant/internal/logger"
	"github.com/dvloznov/finance-assistant/internal/router"
	"github.com/dvloznov/finance-assistant/internal/titling"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	// Transaction source is optional: without a BigQuery project the
	// API serves inline-transaction requests only.
	var txSource infraBQ.TransactionSource
	if cfg.BigQueryProject != "" {
		source, err := infraBQ.NewBigQueryTransactionSource(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create transaction source")
		}
		defer source.Close()
		txSource = source
	} else {
		log.Warn().Msg("No BigQuery project configured - grounding uses request-supplied transactions only")
	}

	generator, err := generation.NewGeminiGenerator(ctx, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini generator")
	}

	analyzer := analysis.NewAnalyzer()
	messageRouter := router.New(classifier.New(), analyzer, generator, log)
	chatStore := chatmem.NewStore()

	// Background titling infrastructure.
	jobStore := jobsmem.NewStore()
	jobQueue := jobsmem.NewQueue(cfg.TitleQueueSize, jobStore)
	titler := titling.New(chatStore, generator, log)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	go func() {
		log.Info().Msg("Starting titling worker")
		if err := jobQueue.Start(workerCtx, titler.HandleJob); err != nil {
			log.Error().Err(err).Msg("Titling worker stopped with error")
		}
	}()

	// Initialize handlers
	analysisHandler := handlers.NewAnalysisHandler(txSource, analyzer, cfg.UserID, log)
	conversationsHandler := handlers.NewConversationsHandler(chatStore, messageRouter, txSource, jobQueue, cfg.UserID, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/analysis", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			analysisHandler.GetAnalysis(w, r)
		case http.MethodPost:
			analysisHandler.PostAnalysis(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/conversations", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			conversationsHandler.ListConversations(w, r)
		case http.MethodPost:
			conversationsHandler.CreateConversation(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/conversations/", func(w http.ResponseWriter, r *http.Request) {
		// Path shape: /api/conversations/{id}/messages
		rest := strings.TrimPrefix(r.URL.Path, "/api/conversations/")
		conversationID, tail, found := strings.Cut(rest, "/")
		if conversationID == "" || !found || tail != "messages" {
			middleware.WriteError(w, http.StatusNotFound, "Not found")
			return
		}

		switch r.Method {
		case http.MethodGet:
			conversationsHandler.ListMessages(w, r, conversationID)
		case http.MethodPost:
			conversationsHandler.SendMessage(w, r, conversationID)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop the queue and wait for in-flight titling jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
