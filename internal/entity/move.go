package entity

type Outcome string

const (
	OutcomeRejected  Outcome = "rejected"
	OutcomeContinued Outcome = "continued"
	OutcomeGameOver  Outcome = "game_over"
)

type RejectReason string

const (
	ReasonAlreadyTaken          RejectReason = "already_taken"
	ReasonAdjacentToOwnLastMove RejectReason = "adjacent_to_own_last_move"
	ReasonOutOfBounds           RejectReason = "out_of_bounds"
	ReasonNotActive             RejectReason = "not_active"
)

// MoveResult describes what a single ApplyMove call changed.
type MoveResult struct {
	Outcome  Outcome      `json:"outcome"`
	Reason   RejectReason `json:"reason,omitempty"`
	Player   Mark         `json:"player,omitempty"`
	Position Position     `json:"position"`
	Points   int          `json:"points"`

	// CurrentPlayer is the player to move next; empty once the game is over.
	CurrentPlayer    Mark `json:"current_player,omitempty"`
	BonusTurnStarted bool `json:"bonus_turn_started"`
	// Skipped is set when a player lost their ordinary turn for lack of a legal move.
	Skipped Mark `json:"skipped,omitempty"`

	Winner Mark  `json:"winner,omitempty"`
	Score  Score `json:"score"`
}

func (that *MoveResult) IsRejected() bool {
	return that.Outcome == OutcomeRejected
}

func (that *MoveResult) IsGameOver() bool {
	return that.Outcome == OutcomeGameOver
}
