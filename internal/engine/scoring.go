package engine

import "github.com/rocketscienceinc/fourrow-backend/internal/entity"

const maxScan = entity.BoardSize - 1

type direction struct {
	dRow, dCol int
}

// horizontal, vertical and both diagonals; each is scanned both ways
var directions = [4]direction{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// pointsForMove - scores a mark that was just placed at pos.
//
// A run of exactly 4 through pos is worth 1. A run of 5 is worth 2, unless one side of pos
// already held a run of 4 before this move: that four was paid out earlier, so only 1 is added.
func pointsForMove(board *entity.Board, pos entity.Position, player entity.Mark) int {
	total := 0

	for _, dir := range directions {
		forward := countDirection(board, pos, dir.dRow, dir.dCol, player)
		backward := countDirection(board, pos, -dir.dRow, -dir.dCol, player)

		switch count := 1 + forward + backward; count {
		case 4:
			total++
		case 5:
			if forward == 4 || backward == 4 {
				total++
			} else {
				total += 2
			}
		}
	}

	return total
}

// countDirection - counts consecutive marks of player next to pos, pos itself excluded.
func countDirection(board *entity.Board, pos entity.Position, dRow, dCol int, player entity.Mark) int {
	count := 0

	for i := 1; i <= maxScan; i++ {
		next := entity.Position{Row: pos.Row + dRow*i, Col: pos.Col + dCol*i}
		if !next.InBounds() || board.At(next) != player {
			break
		}
		count++
	}

	return count
}
