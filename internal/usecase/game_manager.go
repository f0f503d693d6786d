package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/fourrow-backend/internal/apperror"
	"github.com/rocketscienceinc/fourrow-backend/internal/engine"
	"github.com/rocketscienceinc/fourrow-backend/internal/entity"
)

type tallyRepo interface {
	IncrementWins(ctx context.Context, player entity.Mark) error
	Get(ctx context.Context) (*entity.Tally, error)
	Reset(ctx context.Context) error
}

type publisher interface {
	Publish(gameID string, event entity.GameEvent)
}

// session pairs an engine with the lock that serializes moves on it.
type session struct {
	mu     sync.Mutex
	engine *engine.Engine
}

// GameManager owns every running game and records finished ones in the tally.
type GameManager struct {
	logger    *slog.Logger
	tallyRepo tallyRepo
	publisher publisher

	mu    sync.RWMutex
	games map[string]*session
}

// NewGameManager - publisher may be nil when nobody watches games (console play).
func NewGameManager(logger *slog.Logger, tallyRepo tallyRepo, publisher publisher) *GameManager {
	return &GameManager{
		logger: logger,

		tallyRepo: tallyRepo,
		publisher: publisher,
		games:     make(map[string]*session),
	}
}

func (that *GameManager) CreateGame(ctx context.Context) (*entity.Game, error) {
	id := uuid.NewString()
	sess := &session{engine: engine.New(id)}

	that.mu.Lock()
	that.games[id] = sess
	that.mu.Unlock()

	that.logger.DebugContext(ctx, "game created", "method", "CreateGame", "game_id", id)

	state := sess.engine.State()

	return &state, nil
}

func (that *GameManager) GetGame(_ context.Context, id string) (*entity.Game, error) {
	sess, err := that.getSession(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	state := sess.engine.State()
	sess.mu.Unlock()

	return &state, nil
}

func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[id]; !ok {
		return fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
	}

	delete(that.games, id)

	that.logger.DebugContext(ctx, "game deleted", "method", "DeleteGame", "game_id", id)

	return nil
}

// ResetGame starts the game over under the same id. The tally is left alone.
func (that *GameManager) ResetGame(_ context.Context, id string) (*entity.Game, error) {
	sess, err := that.getSession(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.engine.Reset()
	state := sess.engine.State()

	that.publish(id, entity.GameEvent{Type: entity.EventReset, GameID: id, Game: &state})

	return &state, nil
}

// MakeMove applies the current player's move to the game.
//
// A rejected move returns the rejection result, the unchanged game and the apperror sentinel
// explaining it. A move that ends the game with a winner adds one win to the tally; failing to
// record it is logged and does not fail the move.
func (that *GameManager) MakeMove(ctx context.Context, id string, row, col int) (*entity.MoveResult, *entity.Game, error) {
	log := that.logger.With("method", "MakeMove", "game_id", id)

	sess, err := that.getSession(id)
	if err != nil {
		return nil, nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	result, err := sess.engine.ApplyMove(row, col)
	state := sess.engine.State()

	if err != nil {
		log.DebugContext(ctx, "move rejected", "row", row, "col", col, "reason", result.Reason)

		return &result, &state, fmt.Errorf("move rejected: %w", err)
	}

	event := entity.GameEvent{Type: entity.EventMove, GameID: id, Result: &result, Game: &state}

	if result.IsGameOver() {
		event.Type = entity.EventGameOver

		log.InfoContext(ctx, "game over", "winner", result.Winner, "score_x", result.Score.X, "score_o", result.Score.O)

		if result.Winner.IsPlayer() {
			if err = that.tallyRepo.IncrementWins(ctx, result.Winner); err != nil {
				log.ErrorContext(ctx, "failed to record win", "winner", result.Winner, "error", err)
			}
		}
	}

	that.publish(id, event)

	return &result, &state, nil
}

// LegalMoves returns the player to move and every cell they may play, in row-major order.
func (that *GameManager) LegalMoves(_ context.Context, id string) (entity.Mark, []entity.Position, error) {
	sess, err := that.getSession(id)
	if err != nil {
		return "", nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.engine.IsActive() {
		return "", []entity.Position{}, nil
	}

	player := sess.engine.CurrentPlayer()

	return player, sess.engine.LegalMoves(player), nil
}

func (that *GameManager) GetTally(ctx context.Context) (*entity.Tally, error) {
	tally, err := that.tallyRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tally: %w", err)
	}

	return tally, nil
}

func (that *GameManager) ResetTally(ctx context.Context) error {
	if err := that.tallyRepo.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset tally: %w", err)
	}

	return nil
}

func (that *GameManager) getSession(id string) (*session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	sess, ok := that.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
	}

	return sess, nil
}

func (that *GameManager) publish(id string, event entity.GameEvent) {
	if that.publisher == nil {
		return
	}

	that.publisher.Publish(id, event)
}
