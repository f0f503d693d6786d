package engine

import "github.com/rocketscienceinc/fourrow-backend/internal/entity"

const (
	// minEmptyCells - the game stops once fewer cells than this are empty.
	minEmptyCells = 2

	// potentialScanThreshold - above this many empty cells points are assumed to be reachable.
	potentialScanThreshold = 12

	windowSize = 4
)

// isGameOver - cheapest checks first.
func isGameOver(game *entity.Game) bool {
	if game.Board.EmptyCells() < minEmptyCells {
		return true
	}

	if !hasValidMove(game, entity.PlayerX) && !hasValidMove(game, entity.PlayerO) {
		return true
	}

	return !anyPotentialPoints(game)
}

// anyPotentialPoints - rough estimate of whether either player can still score.
//
// It over-approximates: it does not play out move sequences, so the adjacency rule may keep a
// player from ever using a cell it counts. A stalled game ends rather than being searched deeper.
func anyPotentialPoints(game *entity.Game) bool {
	if game.Board.EmptyCells() > potentialScanThreshold {
		return true
	}

	for _, player := range []entity.Mark{entity.PlayerX, entity.PlayerO} {
		for row := 0; row < entity.BoardSize; row++ {
			for col := 0; col < entity.BoardSize; col++ {
				pos := entity.Position{Row: row, Col: col}
				if !isLegalMove(game, pos, player) {
					continue
				}

				if scoresImmediately(game.Board, pos, player) || hasOpenWindow(&game.Board, pos, player) {
					return true
				}
			}
		}
	}

	return false
}

// scoresImmediately - board is a copy, the placement never reaches the real game.
func scoresImmediately(board entity.Board, pos entity.Position, player entity.Mark) bool {
	board[pos.Row][pos.Col] = player

	return pointsForMove(&board, pos, player) > 0
}

// hasOpenWindow - looks for a 4-cell window through pos that the opponent has not touched.
func hasOpenWindow(board *entity.Board, pos entity.Position, player entity.Mark) bool {
	opponent := player.Opponent()

	for _, dir := range directions {
		for shift := -(windowSize - 1); shift <= 0; shift++ {
			own, empty, blocked := 0, 0, false

			for i := 0; i < windowSize; i++ {
				cell := entity.Position{
					Row: pos.Row + dir.dRow*(shift+i),
					Col: pos.Col + dir.dCol*(shift+i),
				}
				if !cell.InBounds() {
					blocked = true
					break
				}

				switch board.At(cell) {
				case player:
					own++
				case entity.EmptyCell:
					empty++
				case opponent:
					blocked = true
				}

				if blocked {
					break
				}
			}

			if !blocked && own+empty >= windowSize {
				return true
			}
		}
	}

	return false
}
