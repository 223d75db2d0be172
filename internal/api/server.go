package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mgsim/internal/config"
	"mgsim/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type contextKey string

const gameContextKey contextKey = "game"

type Server struct {
	cfg  config.APIConfig
	log  *slog.Logger
	game *game.Service
	mux  *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, gameSvc *game.Service) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:  cfg,
		log:  logger,
		game: gameSvc,
		mux:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/rules", s.handleRules)
		r.Post("/games", s.handleCreateGame)

		r.Route("/games/{id}", func(r chi.Router) {
			r.Use(s.gameMiddleware)
			r.Get("/", s.handleGameState)
			r.Get("/history", s.handleHistory)
			r.Post("/periods/start", s.handleStartPeriod)
			r.Post("/periods/close", s.handleClosePeriod)
			r.Post("/turns", s.handleTakeTurn)
			r.Post("/actions", s.handleAction)
			r.Post("/auctions", s.handleAuction)
			r.Get("/companies/{idx}/actions", s.handleAvailableActions)
			r.Post("/sync/replay", s.handleSyncReplay)
		})
	})
}

func (s *Server) gameMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid game id")
			return
		}
		ctx := context.WithValue(r.Context(), gameContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func gameFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(gameContextKey).(uuid.UUID)
	return id
}

func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.game.Rules())
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Companies []string `json:"companies"`
		Seed      *int64   `json:"seed"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	seed := in.Seed
	if seed == nil {
		seed = s.cfg.Seed
	}
	out, err := s.game.CreateGame(r.Context(), game.CreateGameInput{Companies: in.Companies, Seed: seed})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	out, err := s.game.Game(r.Context(), gameFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	out, err := s.game.History(r.Context(), gameFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"closes": out})
}

func (s *Server) handleStartPeriod(w http.ResponseWriter, r *http.Request) {
	out, err := s.game.StartPeriod(r.Context(), gameFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": out})
}

func (s *Server) handleClosePeriod(w http.ResponseWriter, r *http.Request) {
	out, err := s.game.ClosePeriod(r.Context(), gameFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": out})
}

func (s *Server) handleTakeTurn(w http.ResponseWriter, r *http.Request) {
	out, err := s.game.TakeTurn(r.Context(), gameFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Company int `json:"company"`
		game.ActionRequest
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	kind, err := game.ParseActionKind(string(in.Kind))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in.Kind = kind
	out, err := s.game.ApplyAction(r.Context(), game.ActionInput{
		GameID:         gameFromContext(r.Context()),
		Company:        in.Company,
		Request:        in.ActionRequest,
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAuction(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Market game.Market     `json:"market"`
		Bids   []game.BidInput `json:"bids"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.game.RunAuction(r.Context(), game.AuctionInput{
		GameID:         gameFromContext(r.Context()),
		Market:         in.Market,
		Bids:           in.Bids,
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAvailableActions(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid company index")
		return
	}
	out, err := s.game.AvailableActions(r.Context(), gameFromContext(r.Context()), idx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"actions": out})
}

func (s *Server) handleSyncReplay(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Commands []map[string]any `json:"commands"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.game.ReplaySync(r.Context(), gameFromContext(r.Context()), in.Commands)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrGameNotFound), errors.Is(err, game.ErrCompanyNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrDuplicateIdempotency):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrWrongPhase), errors.Is(err, game.ErrGameFinished):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrInsufficientFunds), errors.Is(err, game.ErrActionNotAvailable):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrInvalidCompanyCount), errors.Is(err, game.ErrInvalidCompanyName):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

func idempotencyKey(r *http.Request) string {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" {
		return key
	}
	return uuid.NewString()
}
