// Package demo serves a self-contained FinSIGHT backend over HTTP. It
// speaks the same wire protocol as the production dashboard (Django-style
// JSON with a csrftoken cookie) but answers from a generated in-memory
// dataset, so the TUI can run without a real account. Session transcripts
// go through [history.Store]; replies come from a [Responder].
package demo

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finsight/finsight"
	"github.com/finsight/finsight/demo/history"
)

// historyWindow caps how many stored records feed each reply prompt.
const historyWindow = 30

// Fallback texts when reply generation fails. The session stays usable.
const (
	openingFallback = "Sorry, unable to generate a summary right now."
	replyFallback   = "Sorry, failed to generate a reply."
)

// Interface compliance check.
var _ http.Handler = (*Server)(nil)

// Server is the demo backend's HTTP handler.
type Server struct {
	router    chi.Router
	fixture   *Fixture
	store     history.Store
	responder Responder
	logger    *zap.Logger
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithStore sets the session history store. Default is the in-memory
// driver.
func WithStore(store history.Store) Option {
	return func(s *Server) { s.store = store }
}

// WithResponder sets the reply generator. Default is a [ScriptResponder]
// over the server's fixture dataset.
func WithResponder(responder Responder) Option {
	return func(s *Server) { s.responder = responder }
}

// WithFixture sets the dataset. Default is a fresh fixture seeded at the
// current time.
func WithFixture(fixture *Fixture) Option {
	return func(s *Server) { s.fixture = fixture }
}

// New creates a demo [Server] with the given options.
func New(opts ...Option) *Server {
	s := &Server{
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.fixture == nil {
		s.fixture = NewFixture(time.Now())
	}
	if s.store == nil {
		// The memory driver never fails to construct.
		store, _ := history.NewStore(history.StoreTypeMemory)
		s.store = store
	}
	if s.responder == nil {
		s.responder = NewScriptResponder(s.fixture)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(csrfCookie)

	r.Post("/api/chat/start/", s.handleChatStart)
	r.Post("/api/chat/{sessionID}/message/", s.handleChatMessage)
	r.Post("/api/sync-transactions/", s.handleSync)
	r.Get("/api/dashboard/", s.handleDashboard)
	r.Post("/api/recurring/{id}/confirm/", s.handleConfirm)
	r.Post("/api/insights/generate/", s.handleInsights)
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases the session store.
func (s *Server) Close() error {
	return s.store.Close()
}

func (s *Server) handleChatStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := uuid.NewString()
	contextText := s.fixture.ContextText()

	opening, err := s.responder.Opening(ctx, contextText)
	if err != nil {
		s.logger.Warn("opening generation failed", zap.Error(err))
		opening = openingFallback
	}

	now := time.Now().UTC().Format(time.RFC3339)
	meta := history.Meta{StartedAt: now, ContextText: contextText}
	preamble := []history.Record{
		{Role: finsight.RoleSystem, Text: openingPrompt, TS: now},
		{Role: finsight.RoleContext, Text: contextText, TS: now},
		{Role: finsight.RoleAssistant, Text: opening, TS: now},
	}
	if err := s.store.Create(ctx, sessionID, meta, preamble); err != nil {
		s.logger.Error("session create failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to start chat session")
		return
	}

	s.logger.Info("chat session started", zap.String("session_id", sessionID))
	respondJSON(w, http.StatusOK, map[string]string{
		"session_id": sessionID,
		"initial":    opening,
	})
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	meta, err := s.store.Meta(ctx, sessionID)
	if errors.Is(err, finsight.ErrSessionNotFound) {
		respondError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		s.logger.Error("session lookup failed", zap.String("session_id", sessionID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load chat session")
		return
	}

	userRec := history.Record{
		Role: finsight.RoleUser,
		Text: payload.Message,
		TS:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.store.Append(ctx, sessionID, userRec); err != nil {
		s.logger.Error("message append failed", zap.String("session_id", sessionID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to store message")
		return
	}

	window, err := s.store.Window(ctx, sessionID, historyWindow)
	if err != nil {
		s.logger.Error("history window failed", zap.String("session_id", sessionID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load chat history")
		return
	}

	reply, err := s.responder.Reply(ctx, meta.ContextText, window)
	if err != nil {
		s.logger.Warn("reply generation failed", zap.String("session_id", sessionID), zap.Error(err))
		reply = replyFallback
	}

	assistantRec := history.Record{
		Role: finsight.RoleAssistant,
		Text: reply,
		TS:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.store.Append(ctx, sessionID, assistantRec); err != nil {
		s.logger.Error("reply append failed", zap.String("session_id", sessionID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to store message")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"response": reply})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ForceSync bool `json:"force_sync"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "invalid request body",
		})
		return
	}

	now := time.Now().UTC()
	added, updated := s.fixture.MarkSynced(now, payload.ForceSync)
	s.logger.Info("transactions synced",
		zap.Int("added", added),
		zap.Bool("force", payload.ForceSync))

	respondJSON(w, http.StatusOK, map[string]any{
		"success":              true,
		"transactions_added":   added,
		"transactions_updated": updated,
		"sync_date":            now.Format(time.RFC3339),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.fixture.Snapshot())
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid confirmation id")
		return
	}

	var payload struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Action != "confirm" && payload.Action != "reject" {
		respondError(w, http.StatusBadRequest, "action must be confirm or reject")
		return
	}

	confirm := payload.Action == "confirm"
	pc, ok := s.fixture.ResolvePending(id, confirm)
	if !ok {
		respondError(w, http.StatusNotFound, "Recurring payment not found")
		return
	}

	message := "Recurring payment rejected"
	if confirm {
		message = "Recurring payment confirmed and added"
	}
	s.logger.Info("pending recurring payment resolved",
		zap.Int("id", pc.ID),
		zap.String("action", payload.Action))

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": message,
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	text, err := s.responder.Insight(r.Context(), s.fixture.ContextText())
	if err != nil {
		s.logger.Error("insight generation failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "failed to generate insight",
		})
		return
	}

	s.fixture.SetInsight(text, finsight.InsightMonthlySummary, time.Now().UTC())
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"insight": text,
	})
}

// csrfCookie hands a csrftoken cookie to clients that lack one, the way
// the production dashboard does on first contact.
func csrfCookie(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("csrftoken"); err != nil {
			http.SetCookie(w, &http.Cookie{
				Name:  "csrftoken",
				Value: strings.ReplaceAll(uuid.NewString(), "-", ""),
				Path:  "/",
			})
		}
		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
