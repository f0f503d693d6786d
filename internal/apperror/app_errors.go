package apperror

import "errors"

var (
	ErrGameFinished       = errors.New("game is already finished")
	ErrInvalidCell        = errors.New("invalid cell")
	ErrCellOccupied       = errors.New("cell is already occupied")
	ErrAdjacentToLastMove = errors.New("cell is next to your last move")
	ErrGameNotFound       = errors.New("game not found")
)
