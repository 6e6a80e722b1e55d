// Package runtime exposes the assistant over HTTP: POST /invocations
// drives one conversation turn, GET /ping reports liveness.
package runtime

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	contractx "github.com/harborlend/mortgage-assistant/agent/contract"
)

const (
	defaultPrompt = "no prompt"
	defaultActor  = "user"

	// Sessions without an id get a random one in [1, maxRandomSession].
	maxRandomSession = 10000
)

type ServerConfig struct {
	Addr         string        `envconfig:"ADDR" split_words:"true" default:":8080"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" split_words:"true" default:"30s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" split_words:"true" default:"120s"`
}

// InvocationPayload is the inbound request shape. Every field is
// optional; absent fields fall back to defaults instead of failing.
type InvocationPayload struct {
	Prompt    string `json:"prompt"`
	ActorID   string `json:"actor_id"`
	SessionID *int   `json:"session_id"`
}

type InvocationResponse struct {
	Messages    []MessageRecord `json:"messages"`
	ActiveAgent string          `json:"active_agent,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	assistant    contractx.Assistant
	router       *mux.Router
	server       *http.Server
	newSessionID func() int
}

func NewServer(assistant contractx.Assistant, cfg ServerConfig) *Server {
	s := &Server{
		assistant: assistant,
		router:    mux.NewRouter(),
		// Handlers run concurrently; the top-level rand functions are
		// lock-protected, a per-server *rand.Rand is not.
		newSessionID: func() int {
			return rand.Intn(maxRandomSession) + 1
		},
	}
	s.router.HandleFunc("/invocations", s.handleInvocations).Methods(http.MethodPost)
	s.router.HandleFunc("/ping", s.handlePing).Methods(http.MethodGet)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run() error {
	log.Info().Str("addr", s.server.Addr).Msg("assistant runtime listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleInvocations(w http.ResponseWriter, r *http.Request) {
	payload := decodePayload(r.Body)

	prompt := strings.TrimSpace(payload.Prompt)
	if prompt == "" {
		prompt = defaultPrompt
	}
	actor := strings.TrimSpace(payload.ActorID)
	if actor == "" {
		actor = defaultActor
	}
	sessionID := 0
	if payload.SessionID != nil {
		sessionID = *payload.SessionID
	}
	if sessionID <= 0 {
		sessionID = s.newSessionID()
	}

	log.Info().
		Int("session_id", sessionID).
		Str("actor_id", actor).
		Msg("received invocation")

	result, err := s.assistant.Invoke(r.Context(), strconv.Itoa(sessionID), prompt)
	if err != nil {
		log.Error().Err(err).Int("session_id", sessionID).Msg("invocation failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, InvocationResponse{
		Messages:    ConvertMessages(result.Messages),
		ActiveAgent: string(result.ActiveAgent),
	})
}

// decodePayload reads the invocation body field by field: a malformed
// body or a mistyped field degrades that field to its default instead of
// discarding the rest of the payload.
func decodePayload(body io.Reader) InvocationPayload {
	var raw map[string]any
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		log.Debug().Err(err).Msg("unparseable invocation payload, using defaults")
		return InvocationPayload{}
	}

	var payload InvocationPayload
	if v, ok := raw["prompt"].(string); ok {
		payload.Prompt = v
	}
	if v, ok := raw["actor_id"].(string); ok {
		payload.ActorID = v
	}
	switch v := raw["session_id"].(type) {
	case float64:
		id := int(v)
		payload.SessionID = &id
	case string:
		if id, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			payload.SessionID = &id
		}
	}
	return payload
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "Healthy"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("write response")
	}
}
