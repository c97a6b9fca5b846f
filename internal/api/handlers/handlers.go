package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-assistant/internal/analysis"
	"github.com/dvloznov/finance-assistant/internal/api/middleware"
	"github.com/dvloznov/finance-assistant/internal/chat"
	"github.com/dvloznov/finance-assistant/internal/domain"
	infraBQ "github.com/dvloznov/finance-assistant/internal/infra/bigquery"
	"github.com/dvloznov/finance-assistant/internal/jobs"
	"github.com/dvloznov/finance-assistant/internal/router"
)

// refusalReply is the user-visible text for a refused exchange. The
// underlying cause (no data vs. generator failure) is logged, not exposed.
const refusalReply = "I don't have enough transaction data to answer that. Please connect or supply your transaction history."

// defaultConversationTitle is used until the titling job replaces it.
const defaultConversationTitle = "New chat"

// transactionLookback bounds how far back the transaction source is
// queried when a message needs grounding. The analyzer narrows further.
const transactionLookback = 365 * 24 * time.Hour

// AnalysisHandler handles the windowed-summary endpoint.
type AnalysisHandler struct {
	source   infraBQ.TransactionSource
	analyzer *analysis.Analyzer
	userID   string
	log      zerolog.Logger
}

// NewAnalysisHandler creates a new analysis handler. source may be nil
// when no BigQuery project is configured; the endpoint then only accepts
// inline transactions.
func NewAnalysisHandler(source infraBQ.TransactionSource, analyzer *analysis.Analyzer, userID string, log zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		source:   source,
		analyzer: analyzer,
		userID:   userID,
		log:      log,
	}
}

// GetAnalysis handles GET /api/analysis?period=week
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	period := analysis.ParsePeriod(r.URL.Query().Get("period"))

	if h.source == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "No transaction source configured")
		return
	}

	txs, err := h.source.ListUserTransactions(ctx, h.userID, time.Now().Add(-transactionLookback))
	if err != nil {
		h.log.Error().Err(err).Str("user_id", h.userID).Msg("Failed to load transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, h.analyzer.Analyze(txs, period))
}

// PostAnalysis handles POST /api/analysis with inline transactions.
func (h *AnalysisHandler) PostAnalysis(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Period       string               `json:"period"`
		Transactions []domain.Transaction `json:"transactions"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	period := analysis.ParsePeriod(req.Period)
	middleware.WriteJSON(w, http.StatusOK, h.analyzer.Analyze(req.Transactions, period))
}

// ConversationsHandler handles conversation and message endpoints.
type ConversationsHandler struct {
	store     chat.Store
	router    *router.Router
	source    infraBQ.TransactionSource
	publisher jobs.Publisher
	userID    string
	log       zerolog.Logger
}

// NewConversationsHandler creates a new conversations handler.
func NewConversationsHandler(store chat.Store, rt *router.Router, source infraBQ.TransactionSource, publisher jobs.Publisher, userID string, log zerolog.Logger) *ConversationsHandler {
	return &ConversationsHandler{
		store:     store,
		router:    rt,
		source:    source,
		publisher: publisher,
		userID:    userID,
		log:       log,
	}
}

// ListConversations handles GET /api/conversations
func (h *ConversationsHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.store.ListConversations(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list conversations")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list conversations")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"conversations": conversations,
		"count":         len(conversations),
	})
}

// CreateConversation handles POST /api/conversations
func (h *ConversationsHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	// An empty body is fine; the title just defaults.
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Title == "" {
		req.Title = defaultConversationTitle
	}

	conv, err := h.store.CreateConversation(r.Context(), h.userID, req.Title)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create conversation")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create conversation")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, conv)
}

// ListMessages handles GET /api/conversations/{id}/messages
func (h *ConversationsHandler) ListMessages(w http.ResponseWriter, r *http.Request, conversationID string) {
	messages, err := h.store.ListMessages(r.Context(), conversationID)
	if err != nil {
		if errors.Is(err, chat.ErrConversationNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		h.log.Error().Err(err).Str("conversation_id", conversationID).Msg("Failed to list messages")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list messages")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}

// SendMessage handles POST /api/conversations/{id}/messages
func (h *ConversationsHandler) SendMessage(w http.ResponseWriter, r *http.Request, conversationID string) {
	ctx := r.Context()

	var req struct {
		Text         string               `json:"text"`
		Transactions []domain.Transaction `json:"transactions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" {
		middleware.WriteError(w, http.StatusBadRequest, "text is required")
		return
	}

	if _, err := h.store.GetConversation(ctx, conversationID); err != nil {
		if errors.Is(err, chat.ErrConversationNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		h.log.Error().Err(err).Str("conversation_id", conversationID).Msg("Failed to load conversation")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load conversation")
		return
	}

	userMsg := newMessage(req.Text, true)
	if err := h.store.AppendMessage(ctx, conversationID, userMsg); err != nil {
		h.log.Error().Err(err).Str("conversation_id", conversationID).Msg("Failed to store user message")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store message")
		return
	}

	txs := req.Transactions
	if len(txs) == 0 && h.source != nil {
		loaded, err := h.source.ListUserTransactions(ctx, h.userID, time.Now().Add(-transactionLookback))
		if err != nil {
			// Treated like having no data: the router refuses grounded
			// questions rather than answering without numbers.
			h.log.Error().Err(err).Str("user_id", h.userID).Msg("Failed to load transactions for grounding")
		} else {
			txs = loaded
		}
	}

	result := h.router.Route(ctx, req.Text, txs)

	if result.Kind == router.ResultRefused {
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"conversation_id": conversationID,
			"kind":            result.Kind,
			"reply":           refusalReply,
		})
		return
	}

	assistantMsg := newMessage(result.Text, false)
	if err := h.store.AppendMessage(ctx, conversationID, assistantMsg); err != nil {
		h.log.Error().Err(err).Str("conversation_id", conversationID).Msg("Failed to store assistant message")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store message")
		return
	}

	h.maybeEnqueueTitling(ctx, conversationID, req.Text)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"conversation_id": conversationID,
		"kind":            result.Kind,
		"message":         assistantMsg,
	})
}

// maybeEnqueueTitling publishes a titling job after the first completed
// exchange. Best-effort: failures only log.
func (h *ConversationsHandler) maybeEnqueueTitling(ctx context.Context, conversationID, firstMessage string) {
	if h.publisher == nil {
		return
	}

	messages, err := h.store.ListMessages(ctx, conversationID)
	if err != nil || len(messages) != 2 {
		return
	}

	job := &jobs.TitleConversationJob{
		ConversationID: conversationID,
		FirstMessage:   firstMessage,
	}
	if err := h.publisher.PublishTitleConversation(ctx, job); err != nil {
		h.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("Failed to enqueue titling job")
		return
	}
	h.log.Info().Str("job_id", job.JobID).Str("conversation_id", conversationID).Msg("Titling job enqueued")
}

func newMessage(text string, isMe bool) *chat.Message {
	now := time.Now()
	return &chat.Message{
		ID:          uuid.New().String(),
		Text:        text,
		IsMe:        isMe,
		Timestamp:   now,
		DisplayTime: now.Format("15:04"),
	}
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		ConversationID: query.Get("conversation_id"),
		Status:         jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
