package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/fourrow-backend/internal/apperror"
	"github.com/rocketscienceinc/fourrow-backend/internal/entity"
)

type moveRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type moveResponse struct {
	Result *entity.MoveResult `json:"result"`
	Game   *entity.Game       `json:"game"`
	Error  string             `json:"error,omitempty"`
}

type legalMovesResponse struct {
	Player entity.Mark       `json:"player"`
	Moves  []entity.Position `json:"moves"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (that *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.manager.CreateGame(r.Context())
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, game)
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.manager.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, game)
}

func (that *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := that.manager.DeleteGame(r.Context(), id); err != nil {
		that.writeError(w, r, err)
		return
	}

	that.events.CloseGame(id)

	w.WriteHeader(http.StatusNoContent)
}

func (that *Server) handleResetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.manager.ResetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, game)
}

func (that *Server) handleMakeMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Row == nil || req.Col == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "body must be {\"row\": int, \"col\": int}"})
		return
	}

	result, game, err := that.manager.MakeMove(r.Context(), chi.URLParam(r, "id"), *req.Row, *req.Col)
	if err != nil && result == nil {
		that.writeError(w, r, err)
		return
	}

	if err != nil {
		writeJSON(w, statusFor(err), moveResponse{Result: result, Game: game, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, moveResponse{Result: result, Game: game})
}

func (that *Server) handleLegalMoves(w http.ResponseWriter, r *http.Request) {
	player, moves, err := that.manager.LegalMoves(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, legalMovesResponse{Player: player, Moves: moves})
}

func (that *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := that.manager.GetGame(r.Context(), id); err != nil {
		that.writeError(w, r, err)
		return
	}

	that.events.ServeWS(w, r, id)
}

func (that *Server) handleGetTally(w http.ResponseWriter, r *http.Request) {
	tally, err := that.manager.GetTally(r.Context())
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tally)
}

func (that *Server) handleResetTally(w http.ResponseWriter, r *http.Request) {
	if err := that.manager.ResetTally(r.Context()); err != nil {
		that.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, status, errorBody{Error: "internal server error"})

		return
	}

	writeJSON(w, status, errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidCell):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrAdjacentToLastMove),
		errors.Is(err, apperror.ErrGameFinished):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
