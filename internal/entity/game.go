package entity

const BoardSize = 5

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	PlayerTie Mark = "-"

	EmptyCell Mark = ""
)

// Mark is the content of a board cell, or the winner of a finished game.
type Mark string

// Opponent returns the other player. EmptyCell and PlayerTie have no opponent.
func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

// Position is a (row, col) pair on the board.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether the position lies on the 5x5 board.
func (that Position) InBounds() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

// Touches reports whether other is within one king move of that, the cell itself included.
func (that Position) Touches(other Position) bool {
	return abs(that.Row-other.Row) <= 1 && abs(that.Col-other.Col) <= 1
}

// Board is indexed as Board[row][col].
type Board [BoardSize][BoardSize]Mark

func (that *Board) At(pos Position) Mark {
	return that[pos.Row][pos.Col]
}

func (that *Board) EmptyCells() int {
	empty := 0
	for row := range that {
		for col := range that[row] {
			if that[row][col] == EmptyCell {
				empty++
			}
		}
	}

	return empty
}

// LastMove remembers the latest placement of each player. Nil means the player has not moved yet.
type LastMove struct {
	X *Position `json:"X"`
	O *Position `json:"O"`
}

func (that LastMove) Of(player Mark) *Position {
	switch player {
	case PlayerX:
		return that.X
	case PlayerO:
		return that.O
	default:
		return nil
	}
}

func (that *LastMove) Set(player Mark, pos Position) {
	switch player {
	case PlayerX:
		that.X = &pos
	case PlayerO:
		that.O = &pos
	}
}

// Score holds the points collected by each player in the current game.
type Score struct {
	X int `json:"X"`
	O int `json:"O"`
}

func (that Score) Of(player Mark) int {
	switch player {
	case PlayerX:
		return that.X
	case PlayerO:
		return that.O
	default:
		return 0
	}
}

func (that *Score) Add(player Mark, points int) {
	switch player {
	case PlayerX:
		that.X += points
	case PlayerO:
		that.O += points
	}
}

// Leader returns the player with the higher score, or PlayerTie when both are equal.
func (that Score) Leader() Mark {
	switch {
	case that.X > that.O:
		return PlayerX
	case that.O > that.X:
		return PlayerO
	default:
		return PlayerTie
	}
}

// Game represents the full state of one game.
type Game struct {
	ID            string   `json:"id"`
	Board         Board    `json:"board"`
	CurrentPlayer Mark     `json:"current_player"`
	Active        bool     `json:"active"`
	Score         Score    `json:"score"`
	LastMove      LastMove `json:"last_move"`
	BonusTurn     bool     `json:"bonus_turn"`
	Winner        Mark     `json:"winner,omitempty"`
}

func NewGame(id string) *Game {
	return &Game{
		ID:            id,
		CurrentPlayer: PlayerX,
		Active:        true,
	}
}

func (that *Game) IsFinished() bool {
	return !that.Active
}

// IsRestricted reports whether pos is blocked for player by their own last move.
func (that *Game) IsRestricted(player Mark, pos Position) bool {
	last := that.LastMove.Of(player)
	if last == nil {
		return false
	}

	return last.Touches(pos)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
