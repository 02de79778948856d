// Package gateway exposes the session over plain HTTP+JSON: intent
// endpoints for players, a wholesale state snapshot for pollers and a
// websocket event feed for spectators.
package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mcdev12/awantura/internal/game"
	"github.com/mcdev12/awantura/internal/server"
)

// Gateway translates HTTP requests into session calls.
type Gateway struct {
	session *server.Session
	feed    *Feed
	logger  zerolog.Logger
}

func New(session *server.Session, feed *Feed, logger zerolog.Logger) *Gateway {
	return &Gateway{
		session: session,
		feed:    feed,
		logger:  logger.With().Str("component", "gateway").Logger(),
	}
}

// RegisterRoutes mounts every endpoint on the mux.
func (g *Gateway) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /register", g.handleRegister)
	mux.HandleFunc("POST /bid", g.handleBid)
	mux.HandleFunc("POST /finish_bidding", g.handleFinishBidding)
	mux.HandleFunc("POST /answer", g.handleAnswer)
	mux.HandleFunc("POST /hint", g.handleHint)
	mux.HandleFunc("POST /select_set", g.handleSelectSet)
	mux.HandleFunc("POST /next_round", g.handleNextRound)
	mux.HandleFunc("POST /heartbeat", g.handleHeartbeat)
	mux.HandleFunc("POST /chat", g.handleChat)
	mux.HandleFunc("GET /state", g.handleState)
	if g.feed != nil {
		mux.HandleFunc("GET /ws", g.feed.HandleWS)
	}
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

type registerRequest struct {
	Name string `json:"name"`
}

type registerResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsAdmin    bool   `json:"is_admin"`
	IsObserver bool   `json:"is_observer"`
}

func (g *Gateway) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !g.decode(w, r, &req) {
		return
	}
	p, err := g.session.Register(req.Name)
	if err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, registerResponse{
		ID:         p.ID.String(),
		Name:       p.Name,
		IsAdmin:    p.IsAdmin,
		IsObserver: p.IsObserver,
	})
}

type bidRequest struct {
	PlayerID string `json:"player_id"`
	Kind     string `json:"kind"`
}

type bidResponse struct {
	Status string `json:"status"`
	Pot    int    `json:"pot"`
}

func (g *Gateway) handleBid(w http.ResponseWriter, r *http.Request) {
	var req bidRequest
	if !g.decode(w, r, &req) {
		return
	}
	id, err := uuid.Parse(req.PlayerID)
	if err != nil {
		g.writeStatus(w, http.StatusBadRequest, "invalid player_id")
		return
	}
	var kind game.BidKind
	switch req.Kind {
	case "normal", "":
		kind = game.BidNormal
	case "allin":
		kind = game.BidAllIn
	default:
		g.writeStatus(w, http.StatusBadRequest, fmt.Sprintf("unknown bid kind %q", req.Kind))
		return
	}
	pot, err := g.session.Bid(r.Context(), id, kind)
	if err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, bidResponse{Status: "ok", Pot: pot})
}

type playerRequest struct {
	PlayerID string `json:"player_id"`
}

func (g *Gateway) handleFinishBidding(w http.ResponseWriter, r *http.Request) {
	id, ok := g.decodePlayerID(w, r)
	if !ok {
		return
	}
	if err := g.session.FinishBidding(r.Context(), id); err != nil {
		g.writeError(w, err)
		return
	}
	g.writeOK(w)
}

type answerRequest struct {
	PlayerID string `json:"player_id"`
	Answer   string `json:"answer"`
}

func (g *Gateway) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !g.decode(w, r, &req) {
		return
	}
	id, err := uuid.Parse(req.PlayerID)
	if err != nil {
		g.writeStatus(w, http.StatusBadRequest, "invalid player_id")
		return
	}
	if err := g.session.SubmitAnswer(r.Context(), id, req.Answer); err != nil {
		g.writeError(w, err)
		return
	}
	g.writeOK(w)
}

type hintRequest struct {
	PlayerID string `json:"player_id"`
	Kind     string `json:"kind"`
}

func (g *Gateway) handleHint(w http.ResponseWriter, r *http.Request) {
	var req hintRequest
	if !g.decode(w, r, &req) {
		return
	}
	id, err := uuid.Parse(req.PlayerID)
	if err != nil {
		g.writeStatus(w, http.StatusBadRequest, "invalid player_id")
		return
	}
	var kind game.HintKind
	switch req.Kind {
	case string(game.HintABCD):
		kind = game.HintABCD
	case string(game.Hint5050):
		kind = game.Hint5050
	default:
		g.writeStatus(w, http.StatusBadRequest, fmt.Sprintf("unknown hint kind %q", req.Kind))
		return
	}
	if err := g.session.PurchaseHint(r.Context(), id, kind); err != nil {
		g.writeError(w, err)
		return
	}
	g.writeOK(w)
}

type selectSetRequest struct {
	PlayerID string `json:"player_id"`
	Set      int    `json:"set"`
}

func (g *Gateway) handleSelectSet(w http.ResponseWriter, r *http.Request) {
	var req selectSetRequest
	if !g.decode(w, r, &req) {
		return
	}
	id, err := uuid.Parse(req.PlayerID)
	if err != nil {
		g.writeStatus(w, http.StatusBadRequest, "invalid player_id")
		return
	}
	if err := g.session.SelectSet(r.Context(), id, req.Set); err != nil {
		g.writeError(w, err)
		return
	}
	g.writeOK(w)
}

func (g *Gateway) handleNextRound(w http.ResponseWriter, r *http.Request) {
	id, ok := g.decodePlayerID(w, r)
	if !ok {
		return
	}
	if err := g.session.NextRound(r.Context(), id); err != nil {
		g.writeError(w, err)
		return
	}
	g.writeOK(w)
}

type heartbeatResponse struct {
	Status  string `json:"status"`
	IsAdmin bool   `json:"is_admin"`
}

func (g *Gateway) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	id, ok := g.decodePlayerID(w, r)
	if !ok {
		return
	}
	isAdmin, err := g.session.Heartbeat(id)
	if err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, heartbeatResponse{Status: "ok", IsAdmin: isAdmin})
}

// chatRequest addresses the player by registration name, not by id.
type chatRequest struct {
	Player  string `json:"player"`
	Message string `json:"message"`
}

func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !g.decode(w, r, &req) {
		return
	}
	if err := g.session.PostChat(r.Context(), req.Player, req.Message); err != nil {
		g.writeError(w, err)
		return
	}
	g.writeOK(w)
}

func (g *Gateway) handleState(w http.ResponseWriter, r *http.Request) {
	g.writeJSON(w, http.StatusOK, g.session.Snapshot())
}

func (g *Gateway) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		g.writeStatus(w, http.StatusBadRequest, "malformed JSON body")
		return false
	}
	return true
}

func (g *Gateway) decodePlayerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var req playerRequest
	if !g.decode(w, r, &req) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.PlayerID)
	if err != nil {
		g.writeStatus(w, http.StatusBadRequest, "invalid player_id")
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps session and engine errors onto HTTP statuses.
func (g *Gateway) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, server.ErrUnknownPlayer):
		g.writeStatus(w, http.StatusNotFound, err.Error())
	case errors.Is(err, server.ErrNotAdmin), errors.Is(err, game.ErrObserver):
		g.writeStatus(w, http.StatusForbidden, err.Error())
	case errors.Is(err, server.ErrNameTaken),
		errors.Is(err, server.ErrReservedName),
		errors.Is(err, server.ErrSetAlreadyChosen),
		errors.Is(err, server.ErrNoGame),
		errors.Is(err, game.ErrWrongPhase),
		errors.Is(err, game.ErrNotAnswering),
		errors.Is(err, game.ErrHintOrder),
		errors.Is(err, game.ErrHintAlreadyOwned),
		errors.Is(err, game.ErrGameFinished):
		g.writeStatus(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrInsufficientFunds),
		errors.Is(err, game.ErrBidCeiling),
		errors.Is(err, game.ErrUnknownHint),
		errors.Is(err, game.ErrUnknownBid),
		errors.Is(err, server.ErrSetOutOfRange),
		errors.Is(err, server.ErrEmptyName):
		g.writeStatus(w, http.StatusBadRequest, err.Error())
	default:
		g.logger.Error().Err(err).Msg("request failed")
		g.writeStatus(w, http.StatusInternalServerError, "internal error")
	}
}

func (g *Gateway) writeOK(w http.ResponseWriter) {
	g.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (g *Gateway) writeStatus(w http.ResponseWriter, code int, msg string) {
	g.writeJSON(w, code, map[string]string{"status": "error", "error": msg})
}

func (g *Gateway) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		g.logger.Error().Err(err).Msg("failed to encode response")
	}
}
