package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/nanchess/nanchess/internal/auth"
	"github.com/nanchess/nanchess/internal/chess"
	"github.com/nanchess/nanchess/internal/clock"
	"github.com/nanchess/nanchess/internal/config"
	"github.com/nanchess/nanchess/internal/game"
	"github.com/nanchess/nanchess/internal/notation"
)

type Service struct {
	session *game.Session
	signer  *auth.Signer
	config  *config.Config
	hub     *Hub
}

// NewService serves session. A nil signer disables POST /api/actions.
func NewService(session *game.Session, signer *auth.Signer, config *config.Config, hub *Hub) *Service {
	return &Service{
		session: session,
		signer:  signer,
		config:  config,
		hub:     hub,
	}
}

// Router builds the HTTP API. CORS wraps the whole router because mux
// middleware never sees unmatched preflight requests.
func (s *Service) Router() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.HealthHandler).Methods("GET")
	api.HandleFunc("/presets", s.PresetsHandler).Methods("GET")
	api.HandleFunc("/game", s.GetGameHandler).Methods("GET")
	api.HandleFunc("/game", s.CreateGameHandler).Methods("POST")
	api.HandleFunc("/game/pause", s.PauseHandler).Methods("POST")
	api.HandleFunc("/game/resume", s.ResumeHandler).Methods("POST")
	api.HandleFunc("/game/end", s.EndGameHandler).Methods("POST")
	api.HandleFunc("/moves", s.MakeMoveHandler).Methods("POST")
	api.HandleFunc("/spectate", s.SpectatorHandler).Methods("GET")
	if s.signer != nil {
		api.Handle("/actions", s.signer.Middleware(http.HandlerFunc(s.ActionHandler))).Methods("POST")
	}
	if s.hub != nil {
		router.HandleFunc("/ws", s.WebSocketHandler(s.hub)).Methods("GET")
	}
	return corsMiddleware(router)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps session and board errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, game.ErrNotPlaying), errors.Is(err, game.ErrNotYourTurn):
		return http.StatusConflict
	case errors.Is(err, game.ErrIllegalMove):
		return http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrNoPiece),
		errors.Is(err, game.ErrNotYourPiece),
		errors.Is(err, chess.ErrOutOfRange),
		errors.Is(err, chess.ErrInvalidAction),
		errors.Is(err, notation.ErrBadSquare),
		errors.Is(err, clock.ErrUnknownPreset):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg(msg)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// GameResponse is the session status plus its position in FEN.
type GameResponse struct {
	game.Status
	FEN string `json:"fen"`
}

func (s *Service) gameResponse() GameResponse {
	st := s.session.Status()
	return GameResponse{Status: st, FEN: notation.FEN(st.Board)}
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"session": s.session.ID(),
	})
}

func (s *Service) PresetsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, clock.Presets())
}

func (s *Service) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gameResponse())
}

type CreateGameRequest struct {
	Color  string `json:"color"`
	Preset string `json:"preset"`
}

func (s *Service) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Color == "" && s.config != nil {
		req.Color = s.config.Game.PlayerColor
	}
	if req.Preset == "" && s.config != nil {
		req.Preset = s.config.Game.ClockPreset
	}

	color, err := chess.ParseColor(req.Color)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	preset, err := clock.ParsePreset(req.Preset)
	if err != nil {
		writeError(w, err, "Failed to parse preset")
		return
	}
	if err := s.session.NewGame(color, preset); err != nil {
		writeError(w, err, "Failed to create game")
		return
	}

	log.Info().Str("color", color.String()).Str("preset", string(preset)).Msg("Game created")
	writeJSON(w, http.StatusCreated, s.gameResponse())
}

func (s *Service) PauseHandler(w http.ResponseWriter, r *http.Request) {
	s.session.Pause()
	writeJSON(w, http.StatusOK, s.gameResponse())
}

func (s *Service) ResumeHandler(w http.ResponseWriter, r *http.Request) {
	s.session.Resume()
	writeJSON(w, http.StatusOK, s.gameResponse())
}

func (s *Service) EndGameHandler(w http.ResponseWriter, r *http.Request) {
	s.session.EndGame()
	writeJSON(w, http.StatusOK, s.gameResponse())
}

type MakeMoveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// MakeMoveHandler plays the human's move, given in algebraic squares.
func (s *Service) MakeMoveHandler(w http.ResponseWriter, r *http.Request) {
	var req MakeMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	player := s.session.Snapshot().PlayerColor
	from, err := notation.ParseSquare(player, req.From)
	if err != nil {
		writeError(w, err, "Invalid from square")
		return
	}
	to, err := notation.ParseSquare(player, req.To)
	if err != nil {
		writeError(w, err, "Invalid to square")
		return
	}

	if err := s.session.Move(from.X(), from.Y(), to.X(), to.Y()); err != nil {
		log.Debug().Err(err).Str("from", req.From).Str("to", req.To).Msg("Move rejected")
		writeError(w, err, "Failed to make move")
		return
	}
	writeJSON(w, http.StatusOK, s.gameResponse())
}

type ActionRequest struct {
	Code uint32 `json:"code"`
}

// ActionHandler applies an opponent action code from an authenticated agent.
func (s *Service) ActionHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrMissingToken.Error(), http.StatusUnauthorized)
		return
	}
	if claims.Session != "" && claims.Session != s.session.ID() {
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error": fmt.Sprintf("token is bound to session %q", claims.Session),
		})
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.session.PerformAction(chess.ActionCode(req.Code)); err != nil {
		log.Debug().Err(err).Str("agent", claims.Subject).Uint32("code", req.Code).Msg("Action rejected")
		writeError(w, err, "Failed to perform action")
		return
	}
	log.Info().Str("agent", claims.Subject).Uint32("code", req.Code).Msg("Action applied")
	writeJSON(w, http.StatusOK, s.gameResponse())
}
