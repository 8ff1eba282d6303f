// Package api exposes the scheduling services as a JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	identityCommands "github.com/felixgeelhaar/quorum/internal/identity/application/commands"
	meetingCommands "github.com/felixgeelhaar/quorum/internal/meetings/application/commands"
	meetingQueries "github.com/felixgeelhaar/quorum/internal/meetings/application/queries"
	"github.com/felixgeelhaar/quorum/pkg/observability"
)

// TokenVerifier resolves a bearer token to the caller's user id.
type TokenVerifier interface {
	Verify(raw string) (uuid.UUID, error)
}

// Handlers are the application handlers the routes dispatch to.
type Handlers struct {
	RegisterUser *identityCommands.RegisterUserHandler
	LoginUser    *identityCommands.LoginUserHandler

	CreateMeeting  *meetingCommands.CreateMeetingHandler
	UpdateMeeting  *meetingCommands.UpdateMeetingHandler
	DeleteMeeting  *meetingCommands.DeleteMeetingHandler
	CreateTimeSlot *meetingCommands.CreateTimeSlotHandler
	UpdateTimeSlot *meetingCommands.UpdateTimeSlotHandler
	DeleteTimeSlot *meetingCommands.DeleteTimeSlotHandler
	CreateVote     *meetingCommands.CreateVoteHandler
	DeleteVote     *meetingCommands.DeleteVoteHandler

	GetMeeting        *meetingQueries.GetMeetingHandler
	ListMeetings      *meetingQueries.ListMeetingsHandler
	ListOwnedMeetings *meetingQueries.ListOwnedMeetingsHandler
}

// Server is the HTTP API server.
type Server struct {
	mux      *http.ServeMux
	server   *http.Server
	logger   *slog.Logger
	handlers Handlers
	verifier TokenVerifier
	health   *observability.HealthRegistry
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string

	// RateLimitRPS is the sustained per-client request rate; zero disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:           "0.0.0.0:8080",
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		RateLimitRPS:   10,
		RateLimitBurst: 20,
	}
}

// NewServer creates a new API server. health may be nil.
func NewServer(cfg ServerConfig, handlers Handlers, verifier TokenVerifier, health *observability.HealthRegistry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		handlers: handlers,
		verifier: verifier,
		health:   health,
	}
	s.registerRoutes()

	var handler http.Handler = s.mux
	if cfg.RateLimitRPS > 0 {
		handler = newRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).middleware(handler)
	}
	handler = cors(cfg.AllowedOrigins, handler)
	handler = s.logRequests(handler)
	handler = requestID(handler)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Accounts
	s.mux.HandleFunc("POST /api/users", s.registerUser)
	s.mux.HandleFunc("POST /api/users/login", s.loginUser)

	// Meetings
	s.mux.HandleFunc("GET /api/meetings", s.authed(s.listMeetings))
	s.mux.HandleFunc("POST /api/meetings", s.authed(s.createMeeting))
	s.mux.HandleFunc("GET /api/meetings/{id}", s.authed(s.getMeeting))
	s.mux.HandleFunc("PUT /api/meetings/{id}", s.authed(s.updateMeeting))
	s.mux.HandleFunc("PATCH /api/meetings/{id}", s.authed(s.updateMeeting))
	s.mux.HandleFunc("DELETE /api/meetings/{id}", s.authed(s.deleteMeeting))

	// Time slots
	s.mux.HandleFunc("POST /api/timeslots", s.authed(s.createTimeSlot))
	s.mux.HandleFunc("PUT /api/timeslots/{id}", s.authed(s.updateTimeSlot))
	s.mux.HandleFunc("PATCH /api/timeslots/{id}", s.authed(s.updateTimeSlot))
	s.mux.HandleFunc("DELETE /api/timeslots/{id}", s.authed(s.deleteTimeSlot))

	// Votes
	s.mux.HandleFunc("POST /api/votes", s.authed(s.createVote))
	s.mux.HandleFunc("DELETE /api/votes/{id}", s.authed(s.deleteVote))
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": string(observability.HealthStatusHealthy),
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	overall := s.health.Check(r.Context())
	status := http.StatusOK
	if overall.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, overall)
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
