package engine

import "github.com/rocketscienceinc/fourrow-backend/internal/entity"

// IsLegalMove reports whether player may place a mark at (row, col) right now, ignoring whose
// turn it is and whether the game is still running.
func (that *Engine) IsLegalMove(row, col int, player entity.Mark) bool {
	return isLegalMove(&that.game, entity.Position{Row: row, Col: col}, player)
}

// HasValidMove reports whether player has at least one legal cell left.
func (that *Engine) HasValidMove(player entity.Mark) bool {
	return hasValidMove(&that.game, player)
}

// LegalMoves lists every legal cell for player in row-major order.
func (that *Engine) LegalMoves(player entity.Mark) []entity.Position {
	moves := make([]entity.Position, 0, entity.BoardSize*entity.BoardSize)

	for row := 0; row < entity.BoardSize; row++ {
		for col := 0; col < entity.BoardSize; col++ {
			pos := entity.Position{Row: row, Col: col}
			if isLegalMove(&that.game, pos, player) {
				moves = append(moves, pos)
			}
		}
	}

	return moves
}

func isLegalMove(game *entity.Game, pos entity.Position, player entity.Mark) bool {
	if !pos.InBounds() {
		return false
	}

	if game.Board.At(pos) != entity.EmptyCell {
		return false
	}

	return !game.IsRestricted(player, pos)
}

func hasValidMove(game *entity.Game, player entity.Mark) bool {
	for row := 0; row < entity.BoardSize; row++ {
		for col := 0; col < entity.BoardSize; col++ {
			if isLegalMove(game, entity.Position{Row: row, Col: col}, player) {
				return true
			}
		}
	}

	return false
}
