package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/fourrow-backend/internal/entity"
)

// boardFromRows builds a board from rows such as "X O . . X".
func boardFromRows(t *testing.T, rows ...string) entity.Board {
	t.Helper()

	require.Len(t, rows, entity.BoardSize)

	var board entity.Board
	for row, line := range rows {
		cells := strings.Fields(line)
		require.Len(t, cells, entity.BoardSize, "row %d", row)

		for col, cell := range cells {
			switch cell {
			case "X":
				board[row][col] = entity.PlayerX
			case "O":
				board[row][col] = entity.PlayerO
			case ".":
				board[row][col] = entity.EmptyCell
			default:
				t.Fatalf("unknown cell %q at %d,%d", cell, row, col)
			}
		}
	}

	return board
}

func at(row, col int) *entity.Position {
	return &entity.Position{Row: row, Col: col}
}

// engineWithBoard returns an active engine positioned mid-game.
func engineWithBoard(board entity.Board, current entity.Mark, lastX, lastO *entity.Position) *Engine {
	eng := New("test")
	eng.game.Board = board
	eng.game.CurrentPlayer = current
	eng.game.LastMove = entity.LastMove{X: lastX, O: lastO}

	return eng
}
