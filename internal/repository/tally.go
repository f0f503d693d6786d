package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/fourrow-backend/internal/entity"
)

var ErrNotAPlayer = errors.New("only X or O can win a game")

// TallyRepository keeps the number of games won by each player across games.
type TallyRepository interface {
	IncrementWins(ctx context.Context, player entity.Mark) error
	Get(ctx context.Context) (*entity.Tally, error)
	Reset(ctx context.Context) error
}

type dbTally struct {
	client *redis.Client
}

func NewTallyRepository(client *redis.Client) TallyRepository {
	return &dbTally{
		client: client,
	}
}

func tallyKey(player entity.Mark) string {
	return "tally:" + string(player)
}

func (that *dbTally) IncrementWins(ctx context.Context, player entity.Mark) error {
	if !player.IsPlayer() {
		return fmt.Errorf("%w: %q", ErrNotAPlayer, player)
	}

	if err := that.client.Incr(ctx, tallyKey(player)).Err(); err != nil {
		return fmt.Errorf("failed to increment wins: %w", err)
	}

	return nil
}

func (that *dbTally) Get(ctx context.Context) (*entity.Tally, error) {
	values, err := that.client.MGet(ctx, tallyKey(entity.PlayerX), tallyKey(entity.PlayerO)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get tally: %w", err)
	}

	wins := make([]int, len(values))
	for i, value := range values {
		// missing keys come back as nil
		if value == nil {
			continue
		}

		raw, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected tally value %v", value)
		}

		if wins[i], err = strconv.Atoi(raw); err != nil {
			return nil, fmt.Errorf("failed to parse tally value: %w", err)
		}
	}

	return &entity.Tally{X: wins[0], O: wins[1]}, nil
}

func (that *dbTally) Reset(ctx context.Context) error {
	if err := that.client.Del(ctx, tallyKey(entity.PlayerX), tallyKey(entity.PlayerO)).Err(); err != nil {
		return fmt.Errorf("failed to reset tally: %w", err)
	}

	return nil
}
