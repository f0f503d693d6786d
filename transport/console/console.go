// Package console runs a hot-seat game in the terminal: both players type moves on one keyboard.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/fourrow-backend/internal/apperror"
	"github.com/rocketscienceinc/fourrow-backend/internal/entity"
)

const (
	msgTaken    = "This spot is already taken!"
	msgAdjacent = "You may not make a move next to your last move."
	msgTie      = "It's a Tie!"
	msgHelp     = "Enter a move as \"row col\" (0-4), or one of: new, hint, tally, quit."
)

var errQuit = errors.New("quit")

type gameManager interface {
	CreateGame(ctx context.Context) (*entity.Game, error)
	ResetGame(ctx context.Context, id string) (*entity.Game, error)
	MakeMove(ctx context.Context, id string, row, col int) (*entity.MoveResult, *entity.Game, error)
	LegalMoves(ctx context.Context, id string) (entity.Mark, []entity.Position, error)
	GetTally(ctx context.Context) (*entity.Tally, error)
}

type Console struct {
	logger  *slog.Logger
	manager gameManager

	out  io.Writer
	game *entity.Game
}

func New(logger *slog.Logger, manager gameManager, out io.Writer) *Console {
	return &Console{
		logger:  logger.With("component", "console"),
		manager: manager,
		out:     out,
	}
}

// Run reads commands from in until quit, end of input or ctx cancellation.
func (that *Console) Run(ctx context.Context, in io.Reader) error {
	game, err := that.manager.CreateGame(ctx)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	that.game = game
	that.printf("%s\n\n", msgHelp)
	that.render()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		if err = that.handleLine(ctx, strings.TrimSpace(scanner.Text())); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}

			return err
		}
	}

	if err = scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	return nil
}

func (that *Console) handleLine(ctx context.Context, line string) error {
	switch strings.ToLower(line) {
	case "":
		return nil
	case "quit", "exit", "q":
		that.printf("Bye!\n")
		return errQuit
	case "new":
		return that.newGame(ctx)
	case "hint":
		return that.hint(ctx)
	case "tally":
		return that.tally(ctx)
	}

	row, col, ok := parseMove(line)
	if !ok {
		that.printf("%s\n", msgHelp)
		return nil
	}

	return that.move(ctx, row, col)
}

func (that *Console) newGame(ctx context.Context) error {
	game, err := that.manager.ResetGame(ctx, that.game.ID)
	if err != nil {
		return fmt.Errorf("failed to reset game: %w", err)
	}

	that.game = game
	that.render()

	return nil
}

func (that *Console) move(ctx context.Context, row, col int) error {
	result, game, err := that.manager.MakeMove(ctx, that.game.ID, row, col)
	if err != nil && result == nil {
		return fmt.Errorf("failed to make move: %w", err)
	}

	if err != nil {
		that.printf("%s\n", rejectionText(err))
		return nil
	}

	that.game = game

	if result.Skipped != "" {
		that.printf("Player %s has no legal move and skips a turn.\n", result.Skipped)
	}

	if result.BonusTurnStarted {
		that.printf("Player %s has no legal move. Player %s gets a bonus turn!\n",
			result.CurrentPlayer.Opponent(), result.CurrentPlayer)
	}

	that.render()

	return nil
}

func (that *Console) hint(ctx context.Context) error {
	player, moves, err := that.manager.LegalMoves(ctx, that.game.ID)
	if err != nil {
		return fmt.Errorf("failed to list legal moves: %w", err)
	}

	if len(moves) == 0 {
		that.printf("No legal moves.\n")
		return nil
	}

	cells := make([]string, 0, len(moves))
	for _, pos := range moves {
		cells = append(cells, fmt.Sprintf("%d %d", pos.Row, pos.Col))
	}

	that.printf("Legal moves for %s: %s\n", player, strings.Join(cells, ", "))

	return nil
}

func (that *Console) tally(ctx context.Context) error {
	tally, err := that.manager.GetTally(ctx)
	if err != nil {
		// the game itself is unaffected by a tally outage
		that.logger.ErrorContext(ctx, "failed to get tally", "error", err)
		that.printf("Total score is unavailable.\n")

		return nil
	}

	that.printf("Total score  X: %d  O: %d\n", tally.X, tally.O)

	return nil
}

func (that *Console) render() {
	that.printf("%s\n", RenderBoard(&that.game.Board))
	that.printf("Score  X: %d  O: %d\n", that.game.Score.X, that.game.Score.O)
	that.printf("%s\n", StatusText(that.game))
}

func (that *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(that.out, format, args...)
}

// StatusText is the line shown under the board.
func StatusText(game *entity.Game) string {
	if game.Active {
		return fmt.Sprintf("Player %s's turn", game.CurrentPlayer)
	}

	if game.Winner == entity.PlayerTie {
		return msgTie
	}

	return fmt.Sprintf("PLAYER %s WINS!", game.Winner)
}

// RenderBoard draws the board with row and column numbers; empty cells are dots.
func RenderBoard(board *entity.Board) string {
	var sb strings.Builder

	sb.WriteString("  ")
	for col := range entity.BoardSize {
		sb.WriteString(" " + strconv.Itoa(col))
	}

	for row := range entity.BoardSize {
		sb.WriteString("\n" + strconv.Itoa(row) + " ")

		for col := range entity.BoardSize {
			cell := board[row][col]
			if cell == entity.EmptyCell {
				cell = "."
			}

			sb.WriteString(" " + string(cell))
		}
	}

	return sb.String()
}

func rejectionText(err error) string {
	switch {
	case errors.Is(err, apperror.ErrCellOccupied):
		return msgTaken
	case errors.Is(err, apperror.ErrAdjacentToLastMove):
		return msgAdjacent
	case errors.Is(err, apperror.ErrInvalidCell):
		return "Row and column must be between 0 and 4."
	case errors.Is(err, apperror.ErrGameFinished):
		return "The game is over. Type \"new\" to play again."
	default:
		return err.Error()
	}
}

func parseMove(line string) (int, int, bool) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(fields) != 2 {
		return 0, 0, false
	}

	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, false
	}

	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, false
	}

	return row, col, true
}
