// Package engine implements the rules of the 5x5 line-scoring game: move legality,
// scoring, bonus turns and end-of-game detection. An Engine owns exactly one game and is
// not safe for concurrent use; callers serialize access per instance.
package engine

import (
	"github.com/rocketscienceinc/fourrow-backend/internal/apperror"
	"github.com/rocketscienceinc/fourrow-backend/internal/entity"
)

type Engine struct {
	game entity.Game
}

// New returns an engine holding a freshly reset game.
func New(id string) *Engine {
	return &Engine{game: *entity.NewGame(id)}
}

// Reset discards the current game and starts a new one under the same id.
func (that *Engine) Reset() {
	that.game = *entity.NewGame(that.game.ID)
}

// State returns a copy of the game state.
func (that *Engine) State() entity.Game {
	return that.game
}

func (that *Engine) Board() entity.Board {
	return that.game.Board
}

func (that *Engine) Score() entity.Score {
	return that.game.Score
}

func (that *Engine) CurrentPlayer() entity.Mark {
	return that.game.CurrentPlayer
}

func (that *Engine) IsActive() bool {
	return that.game.Active
}

func (that *Engine) BonusTurn() bool {
	return that.game.BonusTurn
}

// ApplyMove places the current player's mark at (row, col).
//
// Rejected moves leave the game untouched and come back as an OutcomeRejected result together
// with the matching apperror sentinel. Accepted moves return either OutcomeContinued or
// OutcomeGameOver and a nil error.
func (that *Engine) ApplyMove(row, col int) (entity.MoveResult, error) {
	game := &that.game
	pos := entity.Position{Row: row, Col: col}
	player := game.CurrentPlayer

	if reason, err := that.validateMove(player, pos); err != nil {
		return entity.MoveResult{
			Outcome:       entity.OutcomeRejected,
			Reason:        reason,
			Player:        player,
			Position:      pos,
			CurrentPlayer: game.CurrentPlayer,
			Score:         game.Score,
		}, err
	}

	wasBonusTurn := game.BonusTurn
	game.BonusTurn = false

	game.Board[row][col] = player
	game.LastMove.Set(player, pos)

	points := pointsForMove(&game.Board, pos, player)
	game.Score.Add(player, points)

	result := entity.MoveResult{
		Player:   player,
		Position: pos,
		Points:   points,
	}

	// a bonus turn is always the final move of the game
	if wasBonusTurn || isGameOver(game) {
		that.finish()

		result.Outcome = entity.OutcomeGameOver
		result.Winner = game.Winner
		result.Score = game.Score

		return result, nil
	}

	result.Outcome = entity.OutcomeContinued
	result.BonusTurnStarted, result.Skipped = that.advanceTurn(player)
	result.CurrentPlayer = game.CurrentPlayer
	result.Score = game.Score

	return result, nil
}

// validateMove - checks the move in the order the rejections are reported.
func (that *Engine) validateMove(player entity.Mark, pos entity.Position) (entity.RejectReason, error) {
	switch {
	case !that.game.Active:
		return entity.ReasonNotActive, apperror.ErrGameFinished
	case !pos.InBounds():
		return entity.ReasonOutOfBounds, apperror.ErrInvalidCell
	case that.game.Board.At(pos) != entity.EmptyCell:
		return entity.ReasonAlreadyTaken, apperror.ErrCellOccupied
	case that.game.IsRestricted(player, pos):
		return entity.ReasonAdjacentToOwnLastMove, apperror.ErrAdjacentToLastMove
	default:
		return "", nil
	}
}

// advanceTurn - hands the turn to the next player after a move that did not end the game.
//
// Only X running out of moves grants O a bonus turn. O running out of moves simply gives the
// turn back to X.
func (that *Engine) advanceTurn(mover entity.Mark) (bool, entity.Mark) {
	game := &that.game

	if !hasValidMove(game, entity.PlayerX) {
		// both players stuck is caught by isGameOver, so O can still move here
		game.CurrentPlayer = entity.PlayerO
		game.BonusTurn = true

		return true, ""
	}

	if mover == entity.PlayerX && !hasValidMove(game, entity.PlayerO) {
		game.CurrentPlayer = entity.PlayerX

		return false, entity.PlayerO
	}

	game.CurrentPlayer = mover.Opponent()

	return false, ""
}

func (that *Engine) finish() {
	that.game.Active = false
	that.game.BonusTurn = false
	that.game.CurrentPlayer = entity.EmptyCell
	that.game.Winner = that.game.Score.Leader()
}
