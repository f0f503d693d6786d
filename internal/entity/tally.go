package entity

// Tally counts won games per player across games. Ties are not counted.
type Tally struct {
	X int `json:"X"`
	O int `json:"O"`
}

const (
	EventMove     = "move"
	EventReset    = "reset"
	EventGameOver = "game_over"
)

// GameEvent is pushed to everyone watching a game.
type GameEvent struct {
	Type   string      `json:"type"`
	GameID string      `json:"game_id"`
	Result *MoveResult `json:"result,omitempty"`
	Game   *Game       `json:"game,omitempty"`
}
